package eip3009

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// ValidityBuffer is subtracted from "now" when deriving validAfter, so
// that a few seconds of skew between the local clock and the block
// timestamp cannot make a fresh authorization "not yet valid".
const ValidityBuffer = 30 * time.Second

// DefaultValidityPeriod is the window length used when the caller
// does not pick one.
const DefaultValidityPeriod = time.Hour

type authConfig struct {
	nonce *[32]byte
	now   func() time.Time
}

// Option adjusts authorization construction.
type Option func(*authConfig)

// WithNonce supplies an explicit nonce instead of a random one.
// Reusing a nonce for the same from address is a caller error this
// package cannot detect; the contract will reject the second use.
func WithNonce(nonce [32]byte) Option {
	return func(c *authConfig) { c.nonce = &nonce }
}

// WithClock overrides the time source used when validAfter is nil.
// Use a chain-sourced clock when local wall time cannot be trusted to
// track block timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *authConfig) { c.now = now }
}

// NewAuthorization builds an unsigned authorization. value must be
// positive and already in base units (see ParseAmount). validAfter may
// be nil, in which case it defaults to now minus ValidityBuffer.
// validBefore must exceed validAfter. The nonce, unless supplied via
// WithNonce, is drawn from crypto/rand and is safe to generate
// concurrently.
func NewAuthorization(kind Kind, from, to string, value *big.Int, validAfter, validBefore *big.Int, opts ...Option) (*Authorization, error) {
	cfg := authConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, string(kind))
	}
	if !IsValidAddress(from) {
		return nil, fmt.Errorf("%w: from %q", ErrInvalidAddress, from)
	}
	if !IsValidAddress(to) {
		return nil, fmt.Errorf("%w: to %q", ErrInvalidAddress, to)
	}
	if value == nil || value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: value must be positive", ErrInvalidAmount)
	}
	if validBefore == nil {
		return nil, fmt.Errorf("%w: validBefore is required", ErrInvalidWindow)
	}

	if validAfter == nil {
		validAfter = big.NewInt(cfg.now().Add(-ValidityBuffer).Unix())
	}
	if validAfter.Sign() < 0 {
		validAfter = big.NewInt(0)
	}
	if validBefore.Cmp(validAfter) <= 0 {
		return nil, fmt.Errorf("%w: validBefore %s <= validAfter %s", ErrInvalidWindow, validBefore, validAfter)
	}

	var nonce [32]byte
	if cfg.nonce != nil {
		nonce = *cfg.nonce
	} else {
		var err error
		nonce, err = CreateNonce()
		if err != nil {
			return nil, err
		}
	}

	return &Authorization{
		Kind:        kind,
		From:        from,
		To:          to,
		Value:       new(big.Int).Set(value),
		ValidAfter:  new(big.Int).Set(validAfter),
		ValidBefore: new(big.Int).Set(validBefore),
		Nonce:       nonce,
	}, nil
}

// CreateNonce draws a fresh random 32-byte nonce. Uniqueness alone
// prevents replay; there is no sequencing and no coordination between
// concurrent callers.
func CreateNonce() ([32]byte, error) {
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nonce, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// NewValidityWindow returns (validAfter, validBefore) spanning from
// ValidityBuffer in the past to duration in the future, using the
// supplied clock or time.Now.
func NewValidityWindow(duration time.Duration, opts ...Option) (*big.Int, *big.Int) {
	cfg := authConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	now := cfg.now()
	validAfter := big.NewInt(now.Add(-ValidityBuffer).Unix())
	validBefore := big.NewInt(now.Add(duration).Unix())
	return validAfter, validBefore
}
