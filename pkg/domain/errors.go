package domain

import "errors"

// ErrMalformedAddress is returned when a textual address cannot be decoded
// or a segment sequence cannot be encoded.
var ErrMalformedAddress = errors.New("malformed address")

// ErrNotFound is returned by a node service when an address cannot be resolved.
var ErrNotFound = errors.New("node not found")

// ErrMalformedPayload is returned when a node service answers with data that
// cannot be decoded into a node.
var ErrMalformedPayload = errors.New("malformed node payload")

// ErrNodeNotFound is returned when direct resolution by action replay fails.
var ErrNodeNotFound = errors.New("node not found by replay")

// ErrRecoveryFailed is returned when both primary and direct resolution failed.
var ErrRecoveryFailed = errors.New("recovery failed")

// ErrStaleDiscarded is returned by a navigation whose result was superseded by
// a later request. It is a terminal outcome, not a failure.
var ErrStaleDiscarded = errors.New("stale result discarded")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoSession is returned when a navigation command is issued before a
// dataset session has been loaded.
var ErrNoSession = errors.New("no dataset session loaded")

// IsFailure reports whether err is a real failure, as opposed to nil or a
// discarded stale result.
func IsFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrStaleDiscarded)
}
