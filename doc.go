// Package eip3009 builds, signs, and validates EIP-3009 transfer
// authorizations: off-chain EIP-712 signatures that let a token
// transfer be executed on-chain later, by a possibly different party,
// exactly once, within a bounded validity window.
//
// The package is a pure core. It computes digests, produces and
// normalizes signatures, and classifies whether an authorization is
// currently executable given chain state supplied by the caller. It
// never talks to the network itself; the optional chain subpackage
// provides an ethclient-backed reader for callers that want one.
package eip3009
