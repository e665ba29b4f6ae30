package eip3009

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// USDCDecimals is the base-unit precision of the USDC token family.
const USDCDecimals = 6

var (
	ChainIDEthereum    = big.NewInt(1)
	ChainIDBase        = big.NewInt(8453)
	ChainIDBaseSepolia = big.NewInt(84532)

	// legacyNetworkChainIDs maps human network names to chain ids.
	legacyNetworkChainIDs = map[string]*big.Int{
		"ethereum":     ChainIDEthereum,
		"base":         ChainIDBase,
		"base-mainnet": ChainIDBase,
		"base-sepolia": ChainIDBaseSepolia,
	}

	// NetworkConfigs holds per-chain defaults for the EIP-3009 capable
	// stablecoins this package is typically used with. The domain
	// version is "2" for the current USDC token generation.
	NetworkConfigs = map[string]NetworkConfig{
		"eip155:1": {
			ChainID: ChainIDEthereum,
			DefaultAsset: AssetInfo{
				Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
				Name:     "USD Coin",
				Version:  "2",
				Decimals: USDCDecimals,
			},
		},
		"eip155:8453": {
			ChainID: ChainIDBase,
			DefaultAsset: AssetInfo{
				Address:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
				Name:     "USD Coin",
				Version:  "2",
				Decimals: USDCDecimals,
			},
		},
		"eip155:84532": {
			ChainID: ChainIDBaseSepolia,
			DefaultAsset: AssetInfo{
				Address:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
				Name:     "USDC",
				Version:  "2",
				Decimals: USDCDecimals,
			},
		},
	}
)

// ChainIDFromNetwork resolves a network identifier to a chain id.
// Accepts CAIP-2 form ("eip155:8453") and the legacy names.
func ChainIDFromNetwork(network string) (*big.Int, error) {
	if id, ok := legacyNetworkChainIDs[network]; ok {
		return id, nil
	}
	raw, ok := strings.CutPrefix(network, "eip155:")
	if !ok {
		return nil, fmt.Errorf("unsupported network: %q", network)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid chain id in network %q", network)
	}
	return big.NewInt(id), nil
}

// GetNetworkConfig returns the configuration for a network. Networks
// without a registered default asset still resolve to a bare config
// carrying only the chain id.
func GetNetworkConfig(network string) (*NetworkConfig, error) {
	if config, ok := NetworkConfigs[network]; ok {
		return &config, nil
	}
	if id, ok := legacyNetworkChainIDs[network]; ok {
		caip := "eip155:" + id.String()
		if config, ok := NetworkConfigs[caip]; ok {
			return &config, nil
		}
	}
	chainID, err := ChainIDFromNetwork(network)
	if err != nil {
		return nil, err
	}
	return &NetworkConfig{ChainID: chainID}, nil
}

// GetAssetInfo resolves token metadata for a network. An explicit
// address matching the network default returns the rich metadata;
// other addresses return a placeholder the caller should override with
// values read from the contract. An empty asset uses the default.
func GetAssetInfo(network, asset string) (*AssetInfo, error) {
	if IsValidAddress(asset) {
		config, err := GetNetworkConfig(network)
		if err == nil && config.DefaultAsset.Address != "" &&
			NormalizeAddress(asset) == NormalizeAddress(config.DefaultAsset.Address) {
			return &config.DefaultAsset, nil
		}
		return &AssetInfo{
			Address:  NormalizeAddress(asset),
			Name:     "Unknown Token",
			Version:  "1",
			Decimals: 18,
		}, nil
	}

	config, err := GetNetworkConfig(network)
	if err != nil {
		return nil, err
	}
	if config.DefaultAsset.Address == "" {
		return nil, fmt.Errorf("no default asset configured for network %q; specify an explicit token address", network)
	}
	return &config.DefaultAsset, nil
}
