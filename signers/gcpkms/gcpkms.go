// Package gcpkms implements the signing capability with a Google
// Cloud KMS key (EC_SIGN_SECP256K1_SHA256, HSM-backed). The private
// key never leaves KMS; only digests cross the wire.
package gcpkms

import (
	"context"
	"crypto/ecdsa"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"math/big"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs digests with a KMS key version. It satisfies
// eip3009.Signer. Calls block on the KMS round trip; cancel through
// the context passed to SignDigest.
type Signer struct {
	client  *kms.KeyManagementClient
	keyName string
	pubKey  *ecdsa.PublicKey
	address common.Address
}

// New connects to Cloud KMS and resolves the key version's public key
// and Ethereum address. keyName is the full resource name
// (projects/.../cryptoKeyVersions/N).
func New(ctx context.Context, keyName string) (*Signer, error) {
	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating KMS client: %w", err)
	}

	resp, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{Name: keyName})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("fetching KMS public key: %w", err)
	}
	pubKey, err := parsePublicKeyPEM([]byte(resp.GetPem()))
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Signer{
		client:  client,
		keyName: keyName,
		pubKey:  pubKey,
		address: crypto.PubkeyToAddress(*pubKey),
	}, nil
}

// Address returns the Ethereum address of the KMS key.
func (s *Signer) Address() string {
	return s.address.Hex()
}

// SignDigest signs a raw 32-byte digest through KMS and converts the
// DER (r, s) result into the 65-byte r||s||v form with v in the 0/1
// convention. KMS does not report a recovery id, so v is found by
// trial recovery against the known public key.
func (s *Signer) SignDigest(ctx context.Context, digest [32]byte) ([]byte, error) {
	resp, err := s.client.AsymmetricSign(ctx, &kmspb.AsymmetricSignRequest{
		Name: s.keyName,
		Digest: &kmspb.Digest{
			Digest: &kmspb.Digest_Sha256{Sha256: digest[:]},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("KMS sign: %w", err)
	}

	r, sv, err := parseDERSignature(resp.GetSignature())
	if err != nil {
		return nil, err
	}

	// Contracts reject high-s signatures (EIP-2); KMS may emit either.
	curveN := crypto.S256().Params().N
	halfN := new(big.Int).Rsh(curveN, 1)
	if sv.Cmp(halfN) > 0 {
		sv = new(big.Int).Sub(curveN, sv)
	}

	sig := make([]byte, 65)
	r.FillBytes(sig[0:32])
	sv.FillBytes(sig[32:64])

	expected := crypto.FromECDSAPub(s.pubKey)
	for _, v := range []byte{0, 1} {
		sig[64] = v
		recovered, err := crypto.Ecrecover(digest[:], sig)
		if err == nil && string(recovered) == string(expected) {
			return sig, nil
		}
	}
	return nil, fmt.Errorf("KMS signature does not recover to key %s", s.address.Hex())
}

// Close releases the underlying KMS client.
func (s *Signer) Close() error {
	return s.client.Close()
}

// subjectPublicKeyInfo is the outer ASN.1 shape of a PKIX public key.
// x509.ParsePKIXPublicKey rejects the secp256k1 curve OID, so the
// point is extracted manually.
type subjectPublicKeyInfo struct {
	Algorithm asn1.RawValue
	PublicKey asn1.BitString
}

func parsePublicKeyPEM(pemBytes []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in KMS public key")
	}
	var spki subjectPublicKeyInfo
	if _, err := asn1.Unmarshal(block.Bytes, &spki); err != nil {
		return nil, fmt.Errorf("parsing KMS public key: %w", err)
	}
	pubKey, err := crypto.UnmarshalPubkey(spki.PublicKey.Bytes)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling secp256k1 point: %w", err)
	}
	return pubKey, nil
}

func parseDERSignature(der []byte) (r, s *big.Int, err error) {
	var parsed struct {
		R, S *big.Int
	}
	if _, err := asn1.Unmarshal(der, &parsed); err != nil {
		return nil, nil, fmt.Errorf("parsing DER signature: %w", err)
	}
	return parsed.R, parsed.S, nil
}
