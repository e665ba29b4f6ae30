package eip3009

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// The literal ASCII type strings are part of the wire contract with
// the verifying token contract. Field order and spacing must match
// byte-for-byte; any deviation silently yields a different type hash
// and an unverifiable signature.
const (
	transferWithAuthorizationType = "TransferWithAuthorization(address from,address to,uint256 value,uint256 validAfter,uint256 validBefore,bytes32 nonce)"
	receiveWithAuthorizationType  = "ReceiveWithAuthorization(address from,address to,uint256 value,uint256 validAfter,uint256 validBefore,bytes32 nonce)"
)

var (
	// TransferWithAuthorizationTypeHash matches the
	// TRANSFER_WITH_AUTHORIZATION_TYPEHASH constant published in the
	// token contracts.
	TransferWithAuthorizationTypeHash = crypto.Keccak256Hash([]byte(transferWithAuthorizationType))

	// ReceiveWithAuthorizationTypeHash matches
	// RECEIVE_WITH_AUTHORIZATION_TYPEHASH.
	ReceiveWithAuthorizationTypeHash = crypto.Keccak256Hash([]byte(receiveWithAuthorizationType))
)

// TypeHash returns the EIP-712 type hash for the kind.
func (k Kind) TypeHash() (common.Hash, error) {
	switch k {
	case KindTransfer:
		return TransferWithAuthorizationTypeHash, nil
	case KindReceive:
		return ReceiveWithAuthorizationTypeHash, nil
	default:
		return common.Hash{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, string(k))
	}
}

// PrimaryType returns the EIP-712 primary type name for the kind.
func (k Kind) PrimaryType() (string, error) {
	switch k {
	case KindTransfer:
		return "TransferWithAuthorization", nil
	case KindReceive:
		return "ReceiveWithAuthorization", nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, string(k))
	}
}

// ComputeDigest computes the 32-byte EIP-712 digest that is signed:
// keccak256(0x1901 || domainSeparator || structHash). Identical inputs
// always produce an identical digest; signature verification depends
// on that.
func ComputeDigest(domain Domain, auth *Authorization) (common.Hash, error) {
	structHash, err := StructHash(auth)
	if err != nil {
		return common.Hash{}, err
	}
	separator := domain.Separator()

	encoded := make([]byte, 0, 66)
	encoded = append(encoded, 0x19, 0x01)
	encoded = append(encoded, separator.Bytes()...)
	encoded = append(encoded, structHash.Bytes()...)
	return crypto.Keccak256Hash(encoded), nil
}

// StructHash computes keccak256 of the ABI-encoded authorization
// tuple: (typeHash, from, to, value, validAfter, validBefore, nonce).
// Addresses are left-padded to 32 bytes, uint256 fields occupy their
// nominal width, the nonce is used as-is.
func StructHash(auth *Authorization) (common.Hash, error) {
	if auth == nil {
		return common.Hash{}, fmt.Errorf("%w: nil authorization", ErrMalformedPayload)
	}
	typeHash, err := auth.Kind.TypeHash()
	if err != nil {
		return common.Hash{}, err
	}
	if auth.Value == nil || auth.ValidAfter == nil || auth.ValidBefore == nil {
		return common.Hash{}, fmt.Errorf("%w: missing value or validity bounds", ErrMalformedPayload)
	}
	if !IsValidAddress(auth.From) || !IsValidAddress(auth.To) {
		return common.Hash{}, fmt.Errorf("%w: from %q, to %q", ErrInvalidAddress, auth.From, auth.To)
	}

	encoded := make([]byte, 0, 224)
	encoded = append(encoded, typeHash.Bytes()...)
	encoded = append(encoded, common.LeftPadBytes(common.HexToAddress(auth.From).Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(common.HexToAddress(auth.To).Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(auth.Value.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(auth.ValidAfter.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(auth.ValidBefore.Bytes(), 32)...)
	encoded = append(encoded, auth.Nonce[:]...)
	return crypto.Keccak256Hash(encoded), nil
}

// HashTypedData computes the same digest through go-ethereum's
// apitypes typed-data machinery. It exists as an independent path for
// cross-checking the manual encoding and for callers that already
// speak apitypes.
func HashTypedData(domain Domain, auth *Authorization) (common.Hash, error) {
	if auth == nil {
		return common.Hash{}, fmt.Errorf("%w: nil authorization", ErrMalformedPayload)
	}
	primaryType, err := auth.Kind.PrimaryType()
	if err != nil {
		return common.Hash{}, err
	}

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			primaryType: {
				{Name: "from", Type: "address"},
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "validAfter", Type: "uint256"},
				{Name: "validBefore", Type: "uint256"},
				{Name: "nonce", Type: "bytes32"},
			},
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainId:           (*math.HexOrDecimal256)(domain.ChainID),
			VerifyingContract: domain.VerifyingContract,
		},
		Message: map[string]interface{}{
			"from":        common.HexToAddress(auth.From).Hex(),
			"to":          common.HexToAddress(auth.To).Hex(),
			"value":       auth.Value,
			"validAfter":  auth.ValidAfter,
			"validBefore": auth.ValidBefore,
			"nonce":       auth.Nonce[:],
		},
	}

	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash struct: %w", err)
	}
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash domain: %w", err)
	}

	rawData := []byte{0x19, 0x01}
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, structHash...)
	return crypto.Keccak256Hash(rawData), nil
}
