package eip3009_test

import (
	"testing"

	"github.com/gridpay/eip3009"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"lowercase with prefix", "0x1234567890123456789012345678901234567890", true},
		{"checksummed", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", true},
		{"without prefix", "833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", true},
		{"empty", "", false},
		{"bare prefix", "0x", false},
		{"too short", "0x1234", false},
		{"too long", "0x12345678901234567890123456789012345678901", false},
		{"non-hex characters", "0xzz34567890123456789012345678901234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eip3009.IsValidAddress(tt.address); got != tt.valid {
				t.Errorf("IsValidAddress(%q): expected %v, got %v", tt.address, tt.valid, got)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	want := "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"
	for _, input := range []string{
		"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		"833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		want,
	} {
		if got := eip3009.NormalizeAddress(input); got != want {
			t.Errorf("NormalizeAddress(%q): expected %s, got %s", input, want, got)
		}
	}
}

func TestNonceHexRoundTrip(t *testing.T) {
	var nonce [32]byte
	nonce[0], nonce[31] = 0xde, 0xad

	encoded := eip3009.NonceToHex(nonce)
	if len(encoded) != 2+64 {
		t.Fatalf("Expected 66 characters, got %d", len(encoded))
	}

	decoded, err := eip3009.NonceFromHex(encoded)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded != nonce {
		t.Error("Round trip mismatch")
	}

	t.Run("rejects wrong lengths", func(t *testing.T) {
		for _, s := range []string{"0x", "0xdead", "0x" + encoded[2:] + "ff"} {
			if _, err := eip3009.NonceFromHex(s); err == nil {
				t.Errorf("Expected error for %q", s)
			}
		}
	})

	t.Run("rejects non-hex", func(t *testing.T) {
		if _, err := eip3009.NonceFromHex("0x" + "zz" + encoded[4:]); err == nil {
			t.Error("Expected error for non-hex nonce")
		}
	})
}

func TestHexToBytes(t *testing.T) {
	t.Run("accepts both prefix conventions", func(t *testing.T) {
		a, err := eip3009.HexToBytes("0xdeadbeef")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		b, err := eip3009.HexToBytes("deadbeef")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if string(a) != string(b) {
			t.Error("Prefixed and bare hex should decode identically")
		}
	})

	t.Run("round trips through BytesToHex", func(t *testing.T) {
		if got := eip3009.BytesToHex([]byte{0xde, 0xad, 0xbe, 0xef}); got != "0xdeadbeef" {
			t.Errorf("Expected 0xdeadbeef, got %s", got)
		}
	})

	t.Run("rejects odd-length hex", func(t *testing.T) {
		if _, err := eip3009.HexToBytes("0xabc"); err == nil {
			t.Error("Expected error for odd-length hex")
		}
	})
}
