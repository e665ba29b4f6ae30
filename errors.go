package eip3009

import "errors"

// Construction and signing failures. All construction-time errors are
// raised synchronously, never deferred to signing time. Wrap with
// fmt.Errorf("...: %w", err) when adding context.
var (
	// ErrInvalidDomain indicates a domain field failed shape validation.
	ErrInvalidDomain = errors.New("invalid EIP-712 domain")

	// ErrInvalidAddress indicates a value that is not a 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount indicates a non-positive amount, or a decimal
	// amount that does not scale to a whole number of base units.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidWindow indicates validBefore <= validAfter.
	ErrInvalidWindow = errors.New("invalid validity window")

	// ErrSigningFailed wraps failures reported by a signing capability.
	ErrSigningFailed = errors.New("signing failed")

	// ErrMalformedSignature indicates a signature of the wrong length
	// or with an unrecognized recovery id.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrMalformedPayload indicates an authorization missing required
	// fields. Validation returns this only for broken input, never for
	// a legitimately not-yet-executable authorization.
	ErrMalformedPayload = errors.New("malformed authorization payload")
)
