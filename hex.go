package eip3009

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexToBytes decodes a hex string with or without a "0x" prefix.
func HexToBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return b, nil
}

// BytesToHex encodes bytes as a lowercase 0x-prefixed hex string.
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// IsValidAddress reports whether s is a 20-byte hex address, with or
// without a "0x" prefix. Checksum casing is not required.
func IsValidAddress(s string) bool {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 40 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// NormalizeAddress lowercases an address and ensures a "0x" prefix.
// Use for map keys and case-insensitive comparison; it does not
// validate.
func NormalizeAddress(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "0x"))
	return "0x" + s
}

// NonceToHex renders a 32-byte nonce as a 0x-prefixed hex string.
func NonceToHex(nonce [32]byte) string {
	return BytesToHex(nonce[:])
}

// NonceFromHex parses a 0x-prefixed hex string into a 32-byte nonce.
func NonceFromHex(s string) ([32]byte, error) {
	var nonce [32]byte
	b, err := HexToBytes(s)
	if err != nil {
		return nonce, err
	}
	if len(b) != 32 {
		return nonce, fmt.Errorf("nonce must be 32 bytes, got %d", len(b))
	}
	copy(nonce[:], b)
	return nonce, nil
}
