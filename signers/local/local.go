// Package local implements the signing capability with an in-process
// secp256k1 private key.
package local

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs digests with a local ECDSA private key. It satisfies
// eip3009.Signer.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewFromHex creates a signer from a hex-encoded private key, with or
// without a "0x" prefix.
func NewFromHex(privateKeyHex string) (*Signer, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return New(privateKey), nil
}

// New wraps an existing private key.
func New(privateKey *ecdsa.PrivateKey) *Signer {
	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// Address returns the signer's Ethereum address.
func (s *Signer) Address() string {
	return s.address.Hex()
}

// SignDigest signs a raw 32-byte digest. The returned signature is
// r||s||v with v in go-ethereum's native 0/1 convention; callers
// normalize to 27/28 before on-chain use.
func (s *Signer) SignDigest(_ context.Context, digest [32]byte) ([]byte, error) {
	signature, err := crypto.Sign(digest[:], s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	return signature, nil
}
