// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package gwerrors defines the core's abstract error kinds.
//
// Every fallible operation in the gateway's core returns one of these kinds,
// wrapped with context via fmt.Errorf("...: %w", err). Callers use errors.Is
// against the Kind sentinels (or errors.As against *Error for RetryAfter)
// rather than switching on strings.
package gwerrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for callers that need to branch on it (retry,
// surface as 404, etc.) without depending on a specific component's error type.
type Kind string

const (
	// InvalidArgument means caller-supplied inputs violate a constraint. Never retried.
	InvalidArgument Kind = "INVALID_ARGUMENT"
	// NotFound means the requested entity is absent.
	NotFound Kind = "NOT_FOUND"
	// CapabilityMissing means a target device lacks the capability a command requires.
	CapabilityMissing Kind = "CAPABILITY_MISSING"
	// Expired means a command or token is past its TTL.
	Expired Kind = "EXPIRED"
	// RateLimited means a per-client quota was exceeded.
	RateLimited Kind = "RATE_LIMITED"
	// ProviderUnavailable means an embedding/intent/vector-index upstream is unreachable.
	ProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	// Conflict means two writers raced on an LWW register with equal HLC and device;
	// resolved by tie-break, logged but not fatal.
	Conflict Kind = "CONFLICT"
	// Internal means an invariant was violated; the operation aborted with no partial effect.
	Internal Kind = "INTERNAL"
)

// Error is the core's error type. It always carries a Kind and, usually, a
// wrapped cause. RetryAfter is only meaningful when Kind == RateLimited.
type Error struct {
	Kind       Kind
	Op         string // component/operation that raised it, e.g. "search.Orchestrator.Search"
	Cause      error
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the same Kind, so that errors.Is(err, gwerrors.NotFound)
// style checks work against a *Error without exposing the struct.
func (e *Error) Is(target error) bool {
	var k kindSentinel
	if errors.As(target, &k) {
		return e.Kind == Kind(k)
	}
	return false
}

// kindSentinel lets Kind values themselves be compared with errors.Is.
type kindSentinel Kind

func (k kindSentinel) Error() string { return string(k) }

// Sentinels usable directly with errors.Is(err, gwerrors.ErrNotFound).
var (
	ErrInvalidArgument    error = kindSentinel(InvalidArgument)
	ErrNotFound           error = kindSentinel(NotFound)
	ErrCapabilityMissing  error = kindSentinel(CapabilityMissing)
	ErrExpired            error = kindSentinel(Expired)
	ErrRateLimited        error = kindSentinel(RateLimited)
	ErrProviderUnavailable error = kindSentinel(ProviderUnavailable)
	ErrConflict           error = kindSentinel(Conflict)
	ErrInternal           error = kindSentinel(Internal)
)

// New constructs an *Error for the given kind and operation, wrapping cause (may be nil).
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Newf constructs an *Error with a formatted cause.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Cause: fmt.Errorf(format, args...)}
}

// RateLimitedAfter constructs a RATE_LIMITED error carrying a retry-after hint.
func RateLimitedAfter(op string, after time.Duration) *Error {
	return &Error{Kind: RateLimited, Op: op, RetryAfter: after}
}

// KindOf extracts the Kind from err, defaulting to Internal if err doesn't
// wrap a *Error. Useful at a boundary (e.g. the external HTTP collaborator)
// that must always produce a kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
