package eip3009

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// eip712DomainType is the literal EIP-712 domain type string. USDC-era
// EIP-3009 tokens use the full four-field domain.
const eip712DomainType = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"

// EIP712DomainTypeHash is keccak256 of the domain type string.
var EIP712DomainTypeHash = crypto.Keccak256Hash([]byte(eip712DomainType))

// NewDomain assembles the EIP-712 domain for a deployed token. It only
// validates shape: non-empty name and version, positive chain id, and
// a well-formed contract address. It cannot detect values that are
// merely wrong for the target contract; those surface as signature
// rejections on-chain.
func NewDomain(name, version string, chainID *big.Int, verifyingContract string) (Domain, error) {
	if name == "" {
		return Domain{}, fmt.Errorf("%w: empty token name", ErrInvalidDomain)
	}
	if version == "" {
		return Domain{}, fmt.Errorf("%w: empty version", ErrInvalidDomain)
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return Domain{}, fmt.Errorf("%w: chain id must be positive", ErrInvalidDomain)
	}
	if !IsValidAddress(verifyingContract) {
		return Domain{}, fmt.Errorf("%w: verifying contract %q", ErrInvalidAddress, verifyingContract)
	}
	return Domain{
		Name:              name,
		Version:           version,
		ChainID:           new(big.Int).Set(chainID),
		VerifyingContract: verifyingContract,
	}, nil
}

// Separator computes the EIP-712 domain separator:
// keccak256(typeHash || keccak256(name) || keccak256(version) ||
// uint256(chainId) || uint256(uint160(verifyingContract))). String
// fields are hashed, not embedded raw.
func (d Domain) Separator() common.Hash {
	encoded := make([]byte, 0, 160)
	encoded = append(encoded, EIP712DomainTypeHash.Bytes()...)
	encoded = append(encoded, crypto.Keccak256([]byte(d.Name))...)
	encoded = append(encoded, crypto.Keccak256([]byte(d.Version))...)
	encoded = append(encoded, common.LeftPadBytes(d.ChainID.Bytes(), 32)...)
	encoded = append(encoded, common.LeftPadBytes(common.HexToAddress(d.VerifyingContract).Bytes(), 32)...)
	return crypto.Keccak256Hash(encoded)
}
