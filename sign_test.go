package eip3009_test

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpay/eip3009"
	"github.com/gridpay/eip3009/signers/local"
)

// Throwaway test key (the well-known first Hardhat account).
const (
	testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testKeyAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestSignAuthorization(t *testing.T) {
	ctx := context.Background()
	signer, err := local.NewFromHex(testPrivateKey)
	require.NoError(t, err)
	require.Equal(t, testKeyAddress, signer.Address())

	domain := testDomain(t)

	newAuth := func(kind eip3009.Kind) *eip3009.Authorization {
		auth, err := eip3009.NewAuthorization(
			kind, signer.Address(), "0x9876543210987654321098765432109876543210",
			big.NewInt(50000000), big.NewInt(1000), big.NewInt(2000))
		require.NoError(t, err)
		return auth
	}

	t.Run("produces a canonical 65-byte signature", func(t *testing.T) {
		auth := newAuth(eip3009.KindTransfer)
		require.NoError(t, eip3009.SignAuthorization(ctx, signer, domain, auth))

		assert.Len(t, auth.Signature, eip3009.SignatureLength)
		assert.Contains(t, []byte{27, 28}, auth.Signature[64])
		assert.True(t, auth.Signed())
	})

	t.Run("recovers the signer address", func(t *testing.T) {
		auth := newAuth(eip3009.KindTransfer)
		require.NoError(t, eip3009.SignAuthorization(ctx, signer, domain, auth))

		digest, err := eip3009.ComputeDigest(domain, auth)
		require.NoError(t, err)
		recovered, err := eip3009.RecoverSigner(digest, auth.Signature)
		require.NoError(t, err)
		assert.True(t, strings.EqualFold(recovered, signer.Address()))

		ok, err := eip3009.VerifyAuthorization(domain, auth)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tampering any field breaks recovery", func(t *testing.T) {
		tampers := map[string]func(*eip3009.Authorization){
			"value":       func(a *eip3009.Authorization) { a.Value = big.NewInt(60000000) },
			"to":          func(a *eip3009.Authorization) { a.To = "0x1111111111111111111111111111111111111111" },
			"validBefore": func(a *eip3009.Authorization) { a.ValidBefore = big.NewInt(3000) },
			"nonce":       func(a *eip3009.Authorization) { a.Nonce[0] ^= 0xff },
			"kind":        func(a *eip3009.Authorization) { a.Kind = eip3009.KindReceive },
		}

		for name, tamper := range tampers {
			t.Run(name, func(t *testing.T) {
				auth := newAuth(eip3009.KindTransfer)
				require.NoError(t, eip3009.SignAuthorization(ctx, signer, domain, auth))

				tamper(auth)
				ok, err := eip3009.VerifyAuthorization(domain, auth)
				require.NoError(t, err)
				assert.False(t, ok, "tampered %s should not verify", name)
			})
		}
	})

	t.Run("rejects a signer that does not match from", func(t *testing.T) {
		auth := newAuth(eip3009.KindTransfer)
		auth.From = "0x9876543210987654321098765432109876543210"
		auth.To = testKeyAddress
		err := eip3009.SignAuthorization(ctx, signer, domain, auth)
		require.ErrorIs(t, err, eip3009.ErrSigningFailed)
	})

	t.Run("receive kind signs and verifies", func(t *testing.T) {
		auth := newAuth(eip3009.KindReceive)
		require.NoError(t, eip3009.SignAuthorization(ctx, signer, domain, auth))
		ok, err := eip3009.VerifyAuthorization(domain, auth)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestNormalizeSignature(t *testing.T) {
	base := make([]byte, eip3009.SignatureLength)
	for i := range base {
		base[i] = byte(i)
	}

	t.Run("maps native v to 27/28", func(t *testing.T) {
		for _, tc := range []struct{ in, want byte }{{0, 27}, {1, 28}, {27, 27}, {28, 28}} {
			raw := append([]byte(nil), base...)
			raw[64] = tc.in
			sig, err := eip3009.NormalizeSignature(raw)
			require.NoError(t, err)
			assert.Len(t, sig, eip3009.SignatureLength)
			assert.Equal(t, tc.want, sig[64])
		}
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		raw := append([]byte(nil), base...)
		raw[64] = 0
		_, err := eip3009.NormalizeSignature(raw)
		require.NoError(t, err)
		assert.Equal(t, byte(0), raw[64])
	})

	t.Run("rejects wrong lengths", func(t *testing.T) {
		for _, n := range []int{0, 64, 66, 130} {
			_, err := eip3009.NormalizeSignature(make([]byte, n))
			assert.ErrorIs(t, err, eip3009.ErrMalformedSignature, "length %d", n)
		}
	})

	t.Run("rejects unknown recovery ids", func(t *testing.T) {
		raw := append([]byte(nil), base...)
		raw[64] = 29
		_, err := eip3009.NormalizeSignature(raw)
		assert.ErrorIs(t, err, eip3009.ErrMalformedSignature)
	})
}

func TestRecoverSigner(t *testing.T) {
	ctx := context.Background()
	signer, err := local.NewFromHex(testPrivateKey)
	require.NoError(t, err)

	domain := testDomain(t)
	auth, err := eip3009.NewAuthorization(
		eip3009.KindTransfer, signer.Address(), "0x9876543210987654321098765432109876543210",
		big.NewInt(1), big.NewInt(1000), big.NewInt(2000))
	require.NoError(t, err)
	require.NoError(t, eip3009.SignAuthorization(ctx, signer, domain, auth))

	digest, err := eip3009.ComputeDigest(domain, auth)
	require.NoError(t, err)

	t.Run("accepts both v conventions", func(t *testing.T) {
		sig27 := append([]byte(nil), auth.Signature...)
		sig01 := append([]byte(nil), auth.Signature...)
		sig01[64] -= 27

		r27, err := eip3009.RecoverSigner(digest, sig27)
		require.NoError(t, err)
		r01, err := eip3009.RecoverSigner(digest, sig01)
		require.NoError(t, err)
		assert.Equal(t, r27, r01)
		assert.True(t, strings.EqualFold(r27, signer.Address()))
	})

	t.Run("rejects truncated signatures", func(t *testing.T) {
		_, err := eip3009.RecoverSigner(digest, auth.Signature[:64])
		assert.ErrorIs(t, err, eip3009.ErrMalformedSignature)
	})
}
