package eip3009

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the canonical on-chain signature size: r (32) ||
// s (32) || v (1).
const SignatureLength = 65

// Signer is an opaque signing capability over a raw 32-byte digest. A
// local private key, a hardware wallet, or a remote key-management
// service can all satisfy it. SignDigest may block; callers impose
// timeouts through ctx. The returned signature is r||s||v with v in
// either the 0/1 or 27/28 convention — callers normalize.
type Signer interface {
	Address() string
	SignDigest(ctx context.Context, digest [32]byte) ([]byte, error)
}

// SignAuthorization computes the EIP-712 digest for auth under domain,
// signs it with the supplied capability, and stores the normalized
// 65-byte signature on auth. The authorization must be treated as
// immutable afterwards.
//
// The digest is signed raw. Prefixed personal-message signing produces
// a signature the token contract rejects.
func SignAuthorization(ctx context.Context, signer Signer, domain Domain, auth *Authorization) error {
	if signer == nil {
		return fmt.Errorf("%w: nil signer", ErrSigningFailed)
	}
	if !strings.EqualFold(signer.Address(), auth.From) {
		return fmt.Errorf("%w: signer %s does not match from %s", ErrSigningFailed, signer.Address(), auth.From)
	}

	digest, err := ComputeDigest(domain, auth)
	if err != nil {
		return err
	}

	raw, err := signer.SignDigest(ctx, digest)
	if err != nil {
		return fmt.Errorf("%w: %s digest %s: %v", ErrSigningFailed, auth.Kind, digest.Hex(), err)
	}

	sig, err := NormalizeSignature(raw)
	if err != nil {
		return err
	}
	auth.Signature = sig
	return nil
}

// NormalizeSignature converts a raw ECDSA signature into the canonical
// 65-byte r||s||v form with v in {27, 28}. Signing libraries disagree
// on the v convention (go-ethereum emits 0/1, most wallets 27/28);
// the verifying contract accepts only 27/28.
func NormalizeSignature(raw []byte) ([]byte, error) {
	if len(raw) != SignatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedSignature, SignatureLength, len(raw))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, raw)
	switch sig[64] {
	case 0, 1:
		sig[64] += 27
	case 27, 28:
	default:
		return nil, fmt.Errorf("%w: recovery id %d", ErrMalformedSignature, sig[64])
	}
	return sig, nil
}

// RecoverSigner derives the address that signed the digest. It accepts
// both v conventions.
func RecoverSigner(digest [32]byte, signature []byte) (string, error) {
	if len(signature) != SignatureLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedSignature, SignatureLength, len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(digest[:], sig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifyAuthorization recomputes the digest and checks that the
// signature recovers to the authorization's from address.
func VerifyAuthorization(domain Domain, auth *Authorization) (bool, error) {
	if auth == nil || !auth.Signed() {
		return false, fmt.Errorf("%w: missing signature", ErrMalformedPayload)
	}
	digest, err := ComputeDigest(domain, auth)
	if err != nil {
		return false, err
	}
	recovered, err := RecoverSigner(digest, auth.Signature)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered, auth.From), nil
}
