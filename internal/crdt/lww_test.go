// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package crdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLWWRegisterNewerWriteWins(t *testing.T) {
	r := NewLWWRegister[int]()
	r.Set(10, ts(1, 0), "a")
	r.Set(20, ts(2, 0), "b")
	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, 20, v)
}

func TestLWWRegisterOlderWriteLoses(t *testing.T) {
	r := NewLWWRegister[int]()
	r.Set(20, ts(5, 0), "a")
	r.Set(10, ts(1, 0), "b")
	v, _ := r.Value()
	require.Equal(t, 20, v)
}

func TestLWWRegisterTieBreaksOnReplicaID(t *testing.T) {
	r1 := NewLWWRegister[string]()
	r1.Set("from-a", ts(1, 0), "replica-a")
	r1.Set("from-z", ts(1, 0), "replica-z")
	v, _ := r1.Value()
	require.Equal(t, "from-z", v) // "z" > "a" lexicographically

	r2 := NewLWWRegister[string]()
	r2.Set("from-z", ts(1, 0), "replica-z")
	r2.Set("from-a", ts(1, 0), "replica-a")
	v2, _ := r2.Value()
	require.Equal(t, "from-z", v2)
}

func TestLWWRegisterMergeConvergesRegardlessOfOrder(t *testing.T) {
	a := NewLWWRegister[int]()
	a.Set(1, ts(1, 0), "a")
	b := NewLWWRegister[int]()
	b.Set(2, ts(2, 0), "b")

	ab := NewLWWRegister[int]()
	ab.Merge(a)
	ab.Merge(b)

	ba := NewLWWRegister[int]()
	ba.Merge(b)
	ba.Merge(a)

	va, _ := ab.Value()
	vb, _ := ba.Value()
	require.Equal(t, va, vb)
}

func TestLWWRegisterUnsetHasNoValue(t *testing.T) {
	r := NewLWWRegister[int]()
	_, ok := r.Value()
	require.False(t, ok)
}
