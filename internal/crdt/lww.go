// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package crdt

import "github.com/mediagateway/gateway/internal/hlc"

// LWWRegister is a Last-Writer-Wins register: concurrent writes converge on
// the one with the higher HLC timestamp, with the writing replica ID as a
// deterministic tiebreaker so replicas never disagree on a true tie.
type LWWRegister[T any] struct {
	value     T
	timestamp hlc.Timestamp
	replica   string
	set       bool
}

// NewLWWRegister returns an unset register.
func NewLWWRegister[T any]() *LWWRegister[T] {
	return &LWWRegister[T]{}
}

// Set applies a write, keeping it only if it is newer than whatever the
// register currently holds.
func (r *LWWRegister[T]) Set(value T, ts hlc.Timestamp, replica string) {
	if !r.set || wins(ts, replica, r.timestamp, r.replica) {
		r.value = value
		r.timestamp = ts
		r.replica = replica
		r.set = true
	}
}

// Value returns the current value and whether the register has ever been set.
func (r *LWWRegister[T]) Value() (T, bool) {
	return r.value, r.set
}

// Merge keeps whichever of r, other was written later.
func (r *LWWRegister[T]) Merge(other *LWWRegister[T]) {
	if !other.set {
		return
	}
	r.Set(other.value, other.timestamp, other.replica)
}

// wins reports whether (ts, replica) should supersede (otherTS, otherReplica):
// higher HLC timestamp wins; a tie breaks toward the lexicographically
// greater replica ID so every replica computes the same winner.
func wins(ts hlc.Timestamp, replica string, otherTS hlc.Timestamp, otherReplica string) bool {
	switch hlc.Compare(ts, otherTS) {
	case 1:
		return true
	case -1:
		return false
	default:
		return replica > otherReplica
	}
}
