package eip3009_test

import (
	"testing"

	"github.com/gridpay/eip3009"
)

func TestChainIDFromNetwork(t *testing.T) {
	tests := []struct {
		network string
		chainID int64
		wantErr bool
	}{
		{"eip155:1", 1, false},
		{"eip155:8453", 8453, false},
		{"eip155:84532", 84532, false},
		{"eip155:42161", 42161, false},
		{"base", 8453, false},
		{"base-sepolia", 84532, false},
		{"ethereum", 1, false},
		{"eip155:0", 0, true},
		{"eip155:abc", 0, true},
		{"solana", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.network, func(t *testing.T) {
			id, err := eip3009.ChainIDFromNetwork(tt.network)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %s", tt.network, id)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if id.Int64() != tt.chainID {
				t.Errorf("Expected %d, got %s", tt.chainID, id)
			}
		})
	}
}

func TestGetNetworkConfig(t *testing.T) {
	t.Run("known network carries a default asset", func(t *testing.T) {
		config, err := eip3009.GetNetworkConfig("eip155:8453")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if config.ChainID.Int64() != 8453 {
			t.Errorf("Expected chain id 8453, got %s", config.ChainID)
		}
		if config.DefaultAsset.Address == "" {
			t.Error("Expected a default asset")
		}
		if config.DefaultAsset.Decimals != eip3009.USDCDecimals {
			t.Errorf("Expected %d decimals, got %d", eip3009.USDCDecimals, config.DefaultAsset.Decimals)
		}
	})

	t.Run("legacy name resolves to the same config", func(t *testing.T) {
		byName, err := eip3009.GetNetworkConfig("base")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		byCAIP, err := eip3009.GetNetworkConfig("eip155:8453")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if byName.DefaultAsset.Address != byCAIP.DefaultAsset.Address {
			t.Error("Legacy and CAIP-2 lookups should agree")
		}
	})

	t.Run("unknown eip155 chain yields a bare config", func(t *testing.T) {
		config, err := eip3009.GetNetworkConfig("eip155:42161")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if config.ChainID.Int64() != 42161 {
			t.Errorf("Expected chain id 42161, got %s", config.ChainID)
		}
		if config.DefaultAsset.Address != "" {
			t.Error("Expected no default asset")
		}
	})

	t.Run("unsupported network errors", func(t *testing.T) {
		if _, err := eip3009.GetNetworkConfig("solana"); err == nil {
			t.Error("Expected error for unsupported network")
		}
	})
}

func TestGetAssetInfo(t *testing.T) {
	t.Run("empty asset uses the network default", func(t *testing.T) {
		asset, err := eip3009.GetAssetInfo("eip155:8453", "")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if asset.Name != "USD Coin" || asset.Version != "2" {
			t.Errorf("Unexpected default asset: %+v", asset)
		}
	})

	t.Run("default address match is case-insensitive", func(t *testing.T) {
		asset, err := eip3009.GetAssetInfo("eip155:8453", "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if asset.Name != "USD Coin" {
			t.Errorf("Expected the registered USDC metadata, got %+v", asset)
		}
	})

	t.Run("unknown token gets a placeholder", func(t *testing.T) {
		asset, err := eip3009.GetAssetInfo("eip155:8453", "0x1111111111111111111111111111111111111111")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if asset.Name != "Unknown Token" || asset.Decimals != 18 {
			t.Errorf("Unexpected placeholder: %+v", asset)
		}
	})

	t.Run("bare network without default asset errors", func(t *testing.T) {
		if _, err := eip3009.GetAssetInfo("eip155:42161", ""); err == nil {
			t.Error("Expected error for network without a default asset")
		}
	})

	t.Run("testnet uses its own USDC deployment", func(t *testing.T) {
		asset, err := eip3009.GetAssetInfo("base-sepolia", "")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if asset.Address != "0x036CbD53842c5426634e7929541eC2318f3dCF7e" {
			t.Errorf("Unexpected testnet USDC address: %s", asset.Address)
		}
	})
}
