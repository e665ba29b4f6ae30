// Package codec serializes signed authorizations for transport. The
// wire forms are a JSON object (all 256-bit integers as decimal
// strings, never native numbers), a URL query string, and a base64
// wrapping of the JSON form sized for QR payloads.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/gridpay/eip3009"
)

// Payload is the wire representation of a signed authorization. The
// contractAddress, chainId, network, and id fields are optional
// routing metadata and are not covered by the signature.
type Payload struct {
	Type        string `json:"type"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
	Signature   string `json:"signature"`

	ContractAddress string `json:"contractAddress,omitempty"`
	ChainID         string `json:"chainId,omitempty"`
	Network         string `json:"network,omitempty"`
	ID              string `json:"id,omitempty"`
}

// payloadSchema rejects structurally broken payloads before any field
// parsing: wrong-length addresses, nonces, signatures, or non-decimal
// integers.
const payloadSchema = `{
	"type": "object",
	"required": ["type", "from", "to", "value", "validAfter", "validBefore", "nonce", "signature"],
	"properties": {
		"type":        {"type": "string", "enum": ["transfer", "receive"]},
		"from":        {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
		"to":          {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
		"value":       {"type": "string", "pattern": "^[0-9]+$"},
		"validAfter":  {"type": "string", "pattern": "^[0-9]+$"},
		"validBefore": {"type": "string", "pattern": "^[0-9]+$"},
		"nonce":       {"type": "string", "pattern": "^0x[0-9a-fA-F]{64}$"},
		"signature":   {"type": "string", "pattern": "^0x[0-9a-fA-F]{130}$"},
		"contractAddress": {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
		"chainId":     {"type": "string", "pattern": "^[0-9]+$"},
		"network":     {"type": "string"},
		"id":          {"type": "string"}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(payloadSchema)

// FromAuthorization converts a signed authorization into its wire
// form. Unsigned authorizations are rejected; only complete payloads
// cross the transport boundary.
func FromAuthorization(auth *eip3009.Authorization) (Payload, error) {
	if auth == nil || !auth.Signed() {
		return Payload{}, fmt.Errorf("%w: authorization must be signed", eip3009.ErrMalformedPayload)
	}
	return Payload{
		Type:        string(auth.Kind),
		From:        eip3009.NormalizeAddress(auth.From),
		To:          eip3009.NormalizeAddress(auth.To),
		Value:       auth.Value.String(),
		ValidAfter:  auth.ValidAfter.String(),
		ValidBefore: auth.ValidBefore.String(),
		Nonce:       eip3009.NonceToHex(auth.Nonce),
		Signature:   eip3009.BytesToHex(auth.Signature),
	}, nil
}

// Authorization converts a decoded payload back into the typed form.
func (p Payload) Authorization() (*eip3009.Authorization, error) {
	kind := eip3009.Kind(p.Type)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", eip3009.ErrMalformedPayload, p.Type)
	}
	if !eip3009.IsValidAddress(p.From) {
		return nil, fmt.Errorf("%w: from %q", eip3009.ErrInvalidAddress, p.From)
	}
	if !eip3009.IsValidAddress(p.To) {
		return nil, fmt.Errorf("%w: to %q", eip3009.ErrInvalidAddress, p.To)
	}
	value, ok := new(big.Int).SetString(p.Value, 10)
	if !ok {
		return nil, fmt.Errorf("%w: value %q", eip3009.ErrMalformedPayload, p.Value)
	}
	validAfter, ok := new(big.Int).SetString(p.ValidAfter, 10)
	if !ok {
		return nil, fmt.Errorf("%w: validAfter %q", eip3009.ErrMalformedPayload, p.ValidAfter)
	}
	validBefore, ok := new(big.Int).SetString(p.ValidBefore, 10)
	if !ok {
		return nil, fmt.Errorf("%w: validBefore %q", eip3009.ErrMalformedPayload, p.ValidBefore)
	}
	nonce, err := eip3009.NonceFromHex(p.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", eip3009.ErrMalformedPayload, err)
	}
	signature, err := eip3009.HexToBytes(p.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", eip3009.ErrMalformedPayload, err)
	}
	if len(signature) != eip3009.SignatureLength {
		return nil, fmt.Errorf("%w: signature must be %d bytes, got %d",
			eip3009.ErrMalformedPayload, eip3009.SignatureLength, len(signature))
	}

	return &eip3009.Authorization{
		Kind:        kind,
		From:        p.From,
		To:          p.To,
		Value:       value,
		ValidAfter:  validAfter,
		ValidBefore: validBefore,
		Nonce:       nonce,
		Signature:   signature,
	}, nil
}

// Marshal encodes the payload as JSON.
func Marshal(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal decodes and validates a JSON payload. Any missing required
// field or wrong-length address/nonce/signature is rejected before the
// payload is handed to callers.
func Unmarshal(data []byte) (Payload, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", eip3009.ErrMalformedPayload, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return Payload{}, fmt.Errorf("%w: %s", eip3009.ErrMalformedPayload, strings.Join(details, "; "))
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", eip3009.ErrMalformedPayload, err)
	}
	return p, nil
}

// EncodeQuery renders the payload as a URL query string.
func EncodeQuery(p Payload) string {
	values := url.Values{}
	values.Set("type", p.Type)
	values.Set("from", p.From)
	values.Set("to", p.To)
	values.Set("value", p.Value)
	values.Set("validAfter", p.ValidAfter)
	values.Set("validBefore", p.ValidBefore)
	values.Set("nonce", p.Nonce)
	values.Set("signature", p.Signature)
	if p.ContractAddress != "" {
		values.Set("contractAddress", p.ContractAddress)
	}
	if p.ChainID != "" {
		values.Set("chainId", p.ChainID)
	}
	if p.Network != "" {
		values.Set("network", p.Network)
	}
	if p.ID != "" {
		values.Set("id", p.ID)
	}
	return values.Encode()
}

// DecodeQuery parses a URL query string produced by EncodeQuery. The
// same validation as Unmarshal applies.
func DecodeQuery(query string) (Payload, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", eip3009.ErrMalformedPayload, err)
	}
	p := Payload{
		Type:            values.Get("type"),
		From:            values.Get("from"),
		To:              values.Get("to"),
		Value:           values.Get("value"),
		ValidAfter:      values.Get("validAfter"),
		ValidBefore:     values.Get("validBefore"),
		Nonce:           values.Get("nonce"),
		Signature:       values.Get("signature"),
		ContractAddress: values.Get("contractAddress"),
		ChainID:         values.Get("chainId"),
		Network:         values.Get("network"),
		ID:              values.Get("id"),
	}
	// Route through the schema so query payloads get the same checks.
	data, err := json.Marshal(p)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", eip3009.ErrMalformedPayload, err)
	}
	return Unmarshal(data)
}

// EncodeBase64 produces the compact base64(JSON) form used for QR
// payloads.
func EncodeBase64(p Payload) (string, error) {
	data, err := Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeBase64 reverses EncodeBase64, with full validation.
func DecodeBase64(encoded string) (Payload, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", eip3009.ErrMalformedPayload, err)
	}
	return Unmarshal(data)
}

// NewPaymentID generates a routing identifier for a payload:
// "auth_" + UUID v4 without hyphens.
func NewPaymentID() string {
	return "auth_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
