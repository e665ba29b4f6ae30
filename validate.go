package eip3009

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Status classifies whether an authorization is currently executable.
// Exactly one status applies to any (authorization, chain state) pair;
// a not-executable outcome is a classification, not an error.
type Status string

const (
	// StatusPending means the current time is before validAfter.
	StatusPending Status = "pending"
	// StatusExecutable means the authorization can be submitted now.
	StatusExecutable Status = "executable"
	// StatusExpired means the current time is past validBefore.
	StatusExpired Status = "expired"
	// StatusConsumed means the nonce is already marked used on-chain.
	StatusConsumed Status = "consumed"
	// StatusUnauthorizedSubmitter means a receive authorization is
	// being submitted by someone other than the payee.
	StatusUnauthorizedSubmitter Status = "unauthorized_submitter"
)

// ChainState is the externally observed state the validator classifies
// against. The validator performs no I/O; Timestamp should come from
// the execution environment (block timestamp) where possible, and
// NonceUsed is advisory — it can be stale by the time of actual
// submission, and the contract remains the arbiter.
type ChainState struct {
	// Timestamp is the current time in Unix seconds.
	Timestamp *big.Int
	// NonceUsed reports authorizationState(from, nonce).
	NonceUsed bool
	// Submitter is the address intending to submit, if known. Only
	// consulted for receive authorizations.
	Submitter string
}

type validateConfig struct {
	tolerance time.Duration
}

// ValidateOption adjusts validation behavior.
type ValidateOption func(*validateConfig)

// WithTolerance allows the expiry comparison to lag by d, absorbing
// clock skew between the caller's time source and the chain. Default
// is zero: expiry is judged exactly on the supplied timestamp.
func WithTolerance(d time.Duration) ValidateOption {
	return func(c *validateConfig) { c.tolerance = d }
}

// Validate classifies an authorization against chain state. It returns
// an error only for malformed input; every legitimate state maps to
// exactly one Status. A used nonce classifies as consumed even when
// the window has also lapsed.
func Validate(auth *Authorization, state ChainState, opts ...ValidateOption) (Status, error) {
	cfg := validateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if auth == nil {
		return "", fmt.Errorf("%w: nil authorization", ErrMalformedPayload)
	}
	if !auth.Kind.Valid() {
		return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, string(auth.Kind))
	}
	if auth.ValidAfter == nil || auth.ValidBefore == nil {
		return "", fmt.Errorf("%w: missing validity bounds", ErrMalformedPayload)
	}
	if !IsValidAddress(auth.From) || !IsValidAddress(auth.To) {
		return "", fmt.Errorf("%w: from %q, to %q", ErrInvalidAddress, auth.From, auth.To)
	}
	if state.Timestamp == nil {
		return "", fmt.Errorf("%w: missing timestamp", ErrMalformedPayload)
	}
	if state.Submitter != "" && !IsValidAddress(state.Submitter) {
		return "", fmt.Errorf("%w: submitter %q", ErrInvalidAddress, state.Submitter)
	}

	if state.NonceUsed {
		return StatusConsumed, nil
	}
	if state.Timestamp.Cmp(auth.ValidAfter) < 0 {
		return StatusPending, nil
	}
	deadline := auth.ValidBefore
	if cfg.tolerance > 0 {
		deadline = new(big.Int).Add(deadline, big.NewInt(int64(cfg.tolerance/time.Second)))
	}
	if state.Timestamp.Cmp(deadline) > 0 {
		return StatusExpired, nil
	}
	if auth.Kind == KindReceive && state.Submitter != "" && !strings.EqualFold(state.Submitter, auth.To) {
		return StatusUnauthorizedSubmitter, nil
	}
	return StatusExecutable, nil
}
