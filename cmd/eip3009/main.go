// Command eip3009 signs and inspects EIP-3009 transfer authorizations
// from the terminal. Signing uses a local private key taken from the
// EIP3009_PRIVATE_KEY environment variable (a .env file is honored).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridpay/eip3009"
	"github.com/gridpay/eip3009/chain"
	"github.com/gridpay/eip3009/codec"
	"github.com/gridpay/eip3009/signers/local"
)

var (
	flagKind      string
	flagTo        string
	flagAmount    string
	flagNetwork   string
	flagToken     string
	flagName      string
	flagVersion   string
	flagValidFor  time.Duration
	flagQRFile    string
	flagRPC       string
	flagSubmitter string
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	root := &cobra.Command{
		Use:   "eip3009",
		Short: "Sign and inspect EIP-3009 transfer authorizations",
	}

	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Build and sign an authorization, printing the wire payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd.Context(), logger)
		},
	}
	signCmd.Flags().StringVar(&flagKind, "kind", "transfer", "authorization kind: transfer or receive")
	signCmd.Flags().StringVar(&flagTo, "to", "", "recipient address (required)")
	signCmd.Flags().StringVar(&flagAmount, "amount", "", "decimal token amount, e.g. 50.00 (required)")
	signCmd.Flags().StringVar(&flagNetwork, "network", "eip155:8453", "network, CAIP-2 or legacy name")
	signCmd.Flags().StringVar(&flagToken, "token", "", "token contract address (default: network USDC)")
	signCmd.Flags().StringVar(&flagName, "token-name", "", "override token EIP-712 name")
	signCmd.Flags().StringVar(&flagVersion, "token-version", "", "override token EIP-712 version")
	signCmd.Flags().DurationVar(&flagValidFor, "valid-for", time.Hour, "validity window length")
	signCmd.Flags().StringVar(&flagQRFile, "qr", "", "also write a QR code PNG to this path")
	_ = signCmd.MarkFlagRequired("to")
	_ = signCmd.MarkFlagRequired("amount")

	validateCmd := &cobra.Command{
		Use:   "validate [payload.json]",
		Short: "Classify a payload against live chain state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), logger, args[0])
		},
	}
	validateCmd.Flags().StringVar(&flagRPC, "rpc", "", "JSON-RPC endpoint (required)")
	validateCmd.Flags().StringVar(&flagToken, "token", "", "token contract address (default: payload contractAddress)")
	validateCmd.Flags().StringVar(&flagSubmitter, "submitter", "", "intended submitter address")
	_ = validateCmd.MarkFlagRequired("rpc")

	root.AddCommand(signCmd, validateCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSign(ctx context.Context, logger *zap.Logger) error {
	keyHex := os.Getenv("EIP3009_PRIVATE_KEY")
	if keyHex == "" {
		return fmt.Errorf("EIP3009_PRIVATE_KEY is not set")
	}
	signer, err := local.NewFromHex(keyHex)
	if err != nil {
		return err
	}

	config, err := eip3009.GetNetworkConfig(flagNetwork)
	if err != nil {
		return err
	}
	asset, err := eip3009.GetAssetInfo(flagNetwork, flagToken)
	if err != nil {
		return err
	}
	tokenName := asset.Name
	if flagName != "" {
		tokenName = flagName
	}
	tokenVersion := asset.Version
	if flagVersion != "" {
		tokenVersion = flagVersion
	}

	domain, err := eip3009.NewDomain(tokenName, tokenVersion, config.ChainID, asset.Address)
	if err != nil {
		return err
	}

	value, err := eip3009.ParseAmount(flagAmount, asset.Decimals)
	if err != nil {
		return err
	}
	validAfter, validBefore := eip3009.NewValidityWindow(flagValidFor)

	auth, err := eip3009.NewAuthorization(
		eip3009.Kind(flagKind), signer.Address(), flagTo, value, validAfter, validBefore)
	if err != nil {
		return err
	}
	if err := eip3009.SignAuthorization(ctx, signer, domain, auth); err != nil {
		return err
	}

	payload, err := codec.FromAuthorization(auth)
	if err != nil {
		return err
	}
	payload.ContractAddress = eip3009.NormalizeAddress(asset.Address)
	payload.ChainID = config.ChainID.String()
	payload.Network = flagNetwork
	payload.ID = codec.NewPaymentID()

	logger.Info("signed authorization",
		zap.String("id", payload.ID),
		zap.String("from", payload.From),
		zap.String("to", payload.To),
		zap.String("value", payload.Value))

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if flagQRFile != "" {
		png, err := codec.QRPNG(payload, 256)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagQRFile, png, 0o644); err != nil {
			return err
		}
		logger.Info("wrote QR code", zap.String("path", flagQRFile))
	}
	return nil
}

func runValidate(ctx context.Context, logger *zap.Logger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	payload, err := codec.Unmarshal(data)
	if err != nil {
		return err
	}
	auth, err := payload.Authorization()
	if err != nil {
		return err
	}

	token := flagToken
	if token == "" {
		token = payload.ContractAddress
	}
	if token == "" {
		return fmt.Errorf("no token address: pass --token or include contractAddress in the payload")
	}

	client, err := ethclient.DialContext(ctx, flagRPC)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", flagRPC, err)
	}
	defer client.Close()

	reader := chain.NewReader(client, logger)
	state, err := reader.State(ctx, token, auth, flagSubmitter)
	if err != nil {
		return err
	}

	status, err := eip3009.Validate(auth, state)
	if err != nil {
		return err
	}
	logger.Info("validated authorization",
		zap.String("status", string(status)),
		zap.String("timestamp", state.Timestamp.String()),
		zap.Bool("nonceUsed", state.NonceUsed))
	fmt.Println(status)

	if status == eip3009.StatusExecutable {
		// Also report whether the signature actually recovers to from.
		chainID, err := reader.ChainID(ctx)
		if err != nil {
			return err
		}
		name, version, _, err := reader.TokenMetadata(ctx, token)
		if err != nil {
			return err
		}
		domain, err := eip3009.NewDomain(name, version, chainID, token)
		if err != nil {
			return err
		}
		ok, err := eip3009.VerifyAuthorization(domain, auth)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("signature does not recover to %s", auth.From)
		}
		logger.Info("signature verified", zap.String("signer", auth.From))
	}
	return nil
}
