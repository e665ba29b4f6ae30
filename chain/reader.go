// Package chain reads the on-chain state an authorization is
// validated against: token domain metadata, authorization (nonce)
// state, balances, and the block timestamp. The core package never
// performs these reads itself; callers pass the results in as plain
// values.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/gridpay/eip3009"
)

// Reader performs view calls against a token contract.
type Reader struct {
	client *ethclient.Client
	log    *zap.Logger
}

// NewReader wraps an ethclient. A nil logger disables logging.
func NewReader(client *ethclient.Client, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{client: client, log: log}
}

// TokenMetadata reads name(), version(), and DOMAIN_SEPARATOR() from
// the token. The separator is the contract's own view of its domain
// and is the authoritative cross-check for a locally built Domain.
func (r *Reader) TokenMetadata(ctx context.Context, token string) (name, version string, separator [32]byte, err error) {
	out, err := r.call(ctx, token, eip3009.TokenMetadataABI, "name")
	if err != nil {
		return "", "", separator, err
	}
	name, _ = out.(string)

	out, err = r.call(ctx, token, eip3009.TokenMetadataABI, "version")
	if err != nil {
		return "", "", separator, err
	}
	version, _ = out.(string)

	out, err = r.call(ctx, token, eip3009.TokenMetadataABI, "DOMAIN_SEPARATOR")
	if err != nil {
		return "", "", separator, err
	}
	if b, ok := out.([32]byte); ok {
		separator = b
	}
	return name, version, separator, nil
}

// AuthorizationState reports whether the (authorizer, nonce) pair has
// been consumed on-chain.
func (r *Reader) AuthorizationState(ctx context.Context, token, authorizer string, nonce [32]byte) (bool, error) {
	out, err := r.call(ctx, token, eip3009.AuthorizationStateABI, "authorizationState",
		common.HexToAddress(authorizer), nonce)
	if err != nil {
		return false, err
	}
	used, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected authorizationState result %T", out)
	}
	return used, nil
}

// BalanceOf reads the token balance of an account.
func (r *Reader) BalanceOf(ctx context.Context, token, account string) (*big.Int, error) {
	out, err := r.call(ctx, token, eip3009.ERC20BalanceOfABI, "balanceOf", common.HexToAddress(account))
	if err != nil {
		return nil, err
	}
	balance, ok := out.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result %T", out)
	}
	return balance, nil
}

// BlockTimestamp returns the latest block's timestamp. Validating
// against this instead of local wall time removes clock skew from the
// pending/expired classification.
func (r *Reader) BlockTimestamp(ctx context.Context) (*big.Int, error) {
	header, err := r.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest header: %w", err)
	}
	return new(big.Int).SetUint64(header.Time), nil
}

// ChainID returns the connected chain's id.
func (r *Reader) ChainID(ctx context.Context) (*big.Int, error) {
	return r.client.ChainID(ctx)
}

// State assembles the ChainState for one authorization in two reads:
// the nonce flag and the block timestamp. submitter may be empty.
func (r *Reader) State(ctx context.Context, token string, auth *eip3009.Authorization, submitter string) (eip3009.ChainState, error) {
	used, err := r.AuthorizationState(ctx, token, auth.From, auth.Nonce)
	if err != nil {
		return eip3009.ChainState{}, err
	}
	timestamp, err := r.BlockTimestamp(ctx)
	if err != nil {
		return eip3009.ChainState{}, err
	}
	r.log.Debug("observed chain state",
		zap.String("token", token),
		zap.Bool("nonceUsed", used),
		zap.String("timestamp", timestamp.String()))
	return eip3009.ChainState{
		Timestamp: timestamp,
		NonceUsed: used,
		Submitter: submitter,
	}, nil
}

func (r *Reader) call(ctx context.Context, contract string, abiJSON []byte, function string, args ...interface{}) (interface{}, error) {
	contractABI, err := abi.JSON(strings.NewReader(string(abiJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	data, err := contractABI.Pack(function, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", function, err)
	}

	addr := common.HexToAddress(contract)
	result, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", function, err)
	}

	outputs, err := contractABI.Unpack(function, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", function, err)
	}
	if len(outputs) == 0 {
		return nil, nil
	}
	return outputs[0], nil
}
