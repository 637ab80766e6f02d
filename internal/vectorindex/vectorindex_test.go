// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediagateway/gateway/internal/config"
	"github.com/mediagateway/gateway/internal/gwerrors"
)

var testDBSemaphore = make(chan struct{}, 1)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	idx, err := Open(&config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func unitVector(hot int) []float32 {
	v := make([]float32, Dims)
	v[hot] = 1
	return v
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.Upsert(context.Background(), "a", make([]float32, 10))
	require.Error(t, err)
	require.Equal(t, gwerrors.InvalidArgument, gwerrors.KindOf(err))
}

func TestTopKRanksByCosineSimilarity(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "exact-match", unitVector(0)))
	require.NoError(t, idx.Upsert(ctx, "orthogonal", unitVector(1)))

	matches, err := idx.TopK(ctx, unitVector(0), 2, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "exact-match", matches[0].ContentID)
	require.InDelta(t, 1.0, matches[0].Score, 1e-6)
	require.InDelta(t, 0.0, matches[1].Score, 1e-6)
}

func TestTopKExcludesSelf(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "self", unitVector(0)))
	require.NoError(t, idx.Upsert(ctx, "other", unitVector(0)))

	matches, err := idx.TopK(ctx, unitVector(0), 5, "self")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "other", matches[0].ContentID)
}

func TestUpsertOverwritesExistingVector(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "a", unitVector(0)))
	require.NoError(t, idx.Upsert(ctx, "a", unitVector(1)))

	matches, err := idx.TopK(ctx, unitVector(1), 1, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestDeleteRemovesVector(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "a", unitVector(0)))
	require.NoError(t, idx.Delete(ctx, "a"))

	matches, err := idx.TopK(ctx, unitVector(0), 5, "")
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestCodecRoundTrips(t *testing.T) {
	v := unitVector(3)
	v[3] = 0.5
	lit := Encode(v)
	decoded, err := Decode(lit)
	require.NoError(t, err)
	require.Len(t, decoded, Dims)
	require.InDelta(t, 0.5, decoded[3], 1e-6)
}

func TestDecodeRejectsWrongDimension(t *testing.T) {
	_, err := Decode("[1,2,3]")
	require.Error(t, err)
	require.Equal(t, gwerrors.InvalidArgument, gwerrors.KindOf(err))
}
