// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediagateway/gateway/internal/config"
	"github.com/mediagateway/gateway/internal/gwerrors"
)

// testDBSemaphore limits concurrent DuckDB creation, matching the teacher's
// internal/database test suite (CGO driver misbehaves under heavy parallel
// connection setup).
var testDBSemaphore = make(chan struct{}, 1)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	s, err := Open(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertInsertsNewTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := &Content{
		ExternalIDs: ExternalIDs{IMDB: "tt0111161"},
		Title:       "The Shawshank Redemption",
		Type:        ContentMovie,
		ReleaseYear: 1994,
		RuntimeMin:  142,
		Genres:      []string{"drama"},
		LastUpdated: time.Now().UTC(),
	}
	id, wrote, err := s.Upsert(ctx, in)
	require.NoError(t, err)
	require.True(t, wrote)
	require.NotEmpty(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "The Shawshank Redemption", got.Title)
	require.Equal(t, "tt0111161", got.ExternalIDs.IMDB)
}

func TestUpsertOverwritesOnNewerLastUpdated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	first := &Content{
		ExternalIDs: ExternalIDs{EIDR: "10.5240/ABCD"},
		Title:       "Arrival",
		Type:        ContentMovie,
		ReleaseYear: 2016,
		Popularity:  0.5,
		LastUpdated: base,
	}
	id1, _, err := s.Upsert(ctx, first)
	require.NoError(t, err)

	second := &Content{
		ExternalIDs: ExternalIDs{EIDR: "10.5240/ABCD"},
		Title:       "Arrival",
		Type:        ContentMovie,
		ReleaseYear: 2016,
		Popularity:  0.9,
		LastUpdated: base.Add(time.Hour),
	}
	id2, wrote, err := s.Upsert(ctx, second)
	require.NoError(t, err)
	require.True(t, wrote)
	require.Equal(t, id1, id2)

	got, err := s.Get(ctx, id1)
	require.NoError(t, err)
	require.InDelta(t, 0.9, got.Popularity, 1e-9)
}

func TestUpsertIgnoresStaleWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	first := &Content{
		ExternalIDs: ExternalIDs{TMDB: "27205"},
		Title:       "Inception",
		Type:        ContentMovie,
		Popularity:  0.9,
		LastUpdated: base,
	}
	id, _, err := s.Upsert(ctx, first)
	require.NoError(t, err)

	stale := &Content{
		ExternalIDs: ExternalIDs{TMDB: "27205"},
		Title:       "Inception",
		Type:        ContentMovie,
		Popularity:  0.1,
		LastUpdated: base.Add(-time.Hour),
	}
	_, wrote, err := s.Upsert(ctx, stale)
	require.NoError(t, err)
	require.False(t, wrote)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.InDelta(t, 0.9, got.Popularity, 1e-9)
}

func TestUpsertMatchesByFuzzyTitleYearWithoutExternalID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	first := &Content{Title: "Dune", Type: ContentMovie, ReleaseYear: 2021, LastUpdated: base}
	id1, _, err := s.Upsert(ctx, first)
	require.NoError(t, err)

	second := &Content{Title: "Dune", Type: ContentMovie, ReleaseYear: 2021, Overview: "updated", LastUpdated: base.Add(time.Minute)}
	id2, wrote, err := s.Upsert(ctx, second)
	require.NoError(t, err)
	require.True(t, wrote)
	require.Equal(t, id1, id2)
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	require.Equal(t, gwerrors.NotFound, gwerrors.KindOf(err))
}

func TestAvailabilityRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	in := &Content{
		ExternalIDs: ExternalIDs{TMDB: "100"},
		Title:       "Everything Everywhere All at Once",
		Type:        ContentMovie,
		LastUpdated: now,
		Availability: []Availability{
			{Platform: "streamflix", StartsAt: now.Add(-time.Hour), EndsAt: now.Add(24 * time.Hour)},
			{Platform: "watchhub", StartsAt: now.Add(-time.Hour)},
		},
	}
	id, _, err := s.Upsert(ctx, in)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Availability, 2)

	var sawOpenEnded bool
	for _, a := range got.Availability {
		if a.Platform == "watchhub" {
			sawOpenEnded = a.EndsAt.IsZero()
		}
	}
	require.True(t, sawOpenEnded)
}

func TestQualityScoreFloorsDecay(t *testing.T) {
	now := time.Now().UTC()
	c := &Content{
		Title:       "Old Complete Title",
		Overview:    "a full description",
		Genres:      []string{"drama"},
		RuntimeMin:  100,
		ReleaseYear: 1990,
		LastUpdated: now.Add(-365 * 24 * time.Hour),
	}
	score := c.QualityScore(now, 180*24*time.Hour, 0.5)
	require.GreaterOrEqual(t, score, 0.5)
	require.LessOrEqual(t, score, 1.0)
}

func TestTopPopularOrdersDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	_, _, err := s.Upsert(ctx, &Content{Title: "Low", Type: ContentMovie, Popularity: 0.1, LastUpdated: now})
	require.NoError(t, err)
	idHigh, _, err := s.Upsert(ctx, &Content{Title: "High", Type: ContentMovie, Popularity: 0.9, LastUpdated: now})
	require.NoError(t, err)

	ids, err := s.TopPopular(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{idHigh}, ids)
}

func TestSearchTitleMatchesSubstringCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _, err := s.Upsert(ctx, &Content{Title: "The Matrix", Type: ContentMovie, LastUpdated: time.Now().UTC()})
	require.NoError(t, err)

	ids, err := s.SearchTitle(ctx, "matrix", 10)
	require.NoError(t, err)
	require.Contains(t, ids, id)
}

func TestSearchByGenresMatchesOverlap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _, err := s.Upsert(ctx, &Content{Title: "Horror Pick", Type: ContentMovie, Genres: []string{"horror", "thriller"}, LastUpdated: time.Now().UTC()})
	require.NoError(t, err)

	ids, err := s.SearchByGenres(ctx, []string{"horror"}, 10)
	require.NoError(t, err)
	require.Contains(t, ids, id)
}

func TestGetManySkipsMissingIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.Upsert(ctx, &Content{Title: "Known", Type: ContentMovie, LastUpdated: time.Now().UTC()})
	require.NoError(t, err)

	out, err := s.GetMany(ctx, []string{id, "00000000-0000-0000-0000-000000000000"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Contains(t, out, id)
}
