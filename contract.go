package eip3009

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract ABIs for the EIP-3009 surface of the token. The v,r,s
// variants serve EOA signatures; the bytes variants serve smart-wallet
// signatures.
var (
	TransferWithAuthorizationVRSABI = []byte(`[
		{
			"inputs": [
				{"name": "from", "type": "address"},
				{"name": "to", "type": "address"},
				{"name": "value", "type": "uint256"},
				{"name": "validAfter", "type": "uint256"},
				{"name": "validBefore", "type": "uint256"},
				{"name": "nonce", "type": "bytes32"},
				{"name": "v", "type": "uint8"},
				{"name": "r", "type": "bytes32"},
				{"name": "s", "type": "bytes32"}
			],
			"name": "transferWithAuthorization",
			"outputs": [],
			"stateMutability": "nonpayable",
			"type": "function"
		}
	]`)

	ReceiveWithAuthorizationVRSABI = []byte(`[
		{
			"inputs": [
				{"name": "from", "type": "address"},
				{"name": "to", "type": "address"},
				{"name": "value", "type": "uint256"},
				{"name": "validAfter", "type": "uint256"},
				{"name": "validBefore", "type": "uint256"},
				{"name": "nonce", "type": "bytes32"},
				{"name": "v", "type": "uint8"},
				{"name": "r", "type": "bytes32"},
				{"name": "s", "type": "bytes32"}
			],
			"name": "receiveWithAuthorization",
			"outputs": [],
			"stateMutability": "nonpayable",
			"type": "function"
		}
	]`)

	TransferWithAuthorizationBytesABI = []byte(`[
		{
			"inputs": [
				{"name": "from", "type": "address"},
				{"name": "to", "type": "address"},
				{"name": "value", "type": "uint256"},
				{"name": "validAfter", "type": "uint256"},
				{"name": "validBefore", "type": "uint256"},
				{"name": "nonce", "type": "bytes32"},
				{"name": "signature", "type": "bytes"}
			],
			"name": "transferWithAuthorization",
			"outputs": [],
			"stateMutability": "nonpayable",
			"type": "function"
		}
	]`)

	AuthorizationStateABI = []byte(`[
		{
			"inputs": [
				{"name": "authorizer", "type": "address"},
				{"name": "nonce", "type": "bytes32"}
			],
			"name": "authorizationState",
			"outputs": [{"name": "", "type": "bool"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)

	ERC20BalanceOfABI = []byte(`[
		{
			"inputs": [
				{"name": "account", "type": "address"}
			],
			"name": "balanceOf",
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)

	TokenMetadataABI = []byte(`[
		{
			"inputs": [],
			"name": "name",
			"outputs": [{"name": "", "type": "string"}],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [],
			"name": "version",
			"outputs": [{"name": "", "type": "string"}],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [],
			"name": "DOMAIN_SEPARATOR",
			"outputs": [{"name": "", "type": "bytes32"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
)

// PackCalldata encodes the ready-to-submit calldata for a signed
// authorization, using the v,r,s function variant matching its kind.
// This is the argument tuple the submission sink consumes; the package
// never broadcasts it.
func PackCalldata(auth *Authorization) ([]byte, error) {
	if auth == nil || !auth.Signed() {
		return nil, fmt.Errorf("%w: authorization must be signed before packing", ErrMalformedPayload)
	}

	var (
		abiJSON  []byte
		function string
	)
	switch auth.Kind {
	case KindTransfer:
		abiJSON, function = TransferWithAuthorizationVRSABI, "transferWithAuthorization"
	case KindReceive:
		abiJSON, function = ReceiveWithAuthorizationVRSABI, "receiveWithAuthorization"
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, string(auth.Kind))
	}

	contractABI, err := abi.JSON(strings.NewReader(string(abiJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	var r, s [32]byte
	copy(r[:], auth.Signature[0:32])
	copy(s[:], auth.Signature[32:64])
	v := auth.Signature[64]

	data, err := contractABI.Pack(
		function,
		common.HexToAddress(auth.From),
		common.HexToAddress(auth.To),
		auth.Value,
		auth.ValidAfter,
		auth.ValidBefore,
		auth.Nonce,
		v,
		r,
		s,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", function, err)
	}
	return data, nil
}

// PackAuthorizationState encodes an authorizationState(authorizer,
// nonce) call for checking whether a nonce is consumed.
func PackAuthorizationState(authorizer string, nonce [32]byte) ([]byte, error) {
	if !IsValidAddress(authorizer) {
		return nil, fmt.Errorf("%w: authorizer %q", ErrInvalidAddress, authorizer)
	}
	contractABI, err := abi.JSON(strings.NewReader(string(AuthorizationStateABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	data, err := contractABI.Pack("authorizationState", common.HexToAddress(authorizer), nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to pack authorizationState: %w", err)
	}
	return data, nil
}
