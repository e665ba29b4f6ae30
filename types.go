package eip3009

import (
	"math/big"
)

// Kind selects which EIP-3009 operation an authorization is for.
// The kind determines the EIP-712 type hash and who may submit the
// authorization on-chain: a transfer authorization can be submitted by
// anyone holding a valid signature (gas station pattern), while a
// receive authorization can only be submitted by the payee.
type Kind string

const (
	// KindTransfer targets transferWithAuthorization.
	KindTransfer Kind = "transfer"
	// KindReceive targets receiveWithAuthorization.
	KindReceive Kind = "receive"
)

// Valid reports whether k is a known authorization kind.
func (k Kind) Valid() bool {
	return k == KindTransfer || k == KindReceive
}

// Domain is the EIP-712 domain of a deployed token contract. Its
// values must exactly match what the contract uses to compute its own
// domain separator; any mismatch makes every signature unverifiable.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract string
}

// Authorization is a single EIP-3009 authorization message. It is
// created unsigned, becomes immutable once Signature is set (changing
// any field afterwards invalidates the signature), and is consumed at
// most once by the token contract.
//
// Value, ValidAfter, and ValidBefore are uint256 quantities. Nonce is
// a random 32-byte value; replay protection is uniqueness-based, not
// sequential.
type Authorization struct {
	Kind        Kind
	From        string
	To          string
	Value       *big.Int
	ValidAfter  *big.Int
	ValidBefore *big.Int
	Nonce       [32]byte
	Signature   []byte // 65 bytes r||s||v once signed, nil before
}

// Signed reports whether the authorization carries a signature.
func (a *Authorization) Signed() bool {
	return len(a.Signature) == SignatureLength
}

// AssetInfo describes an ERC-20 token that supports EIP-3009.
type AssetInfo struct {
	Address  string
	Name     string
	Version  string
	Decimals int
}

// NetworkConfig holds per-chain defaults for building authorizations.
type NetworkConfig struct {
	ChainID      *big.Int
	DefaultAsset AssetInfo
}
