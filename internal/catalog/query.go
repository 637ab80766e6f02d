// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mediagateway/gateway/internal/gwerrors"
)

// Get fetches one title by internal ID, including its availability windows.
func (s *Store) Get(ctx context.Context, id string) (*Content, error) {
	stmt, err := s.prepared(ctx, fmt.Sprintf(`SELECT %s FROM content WHERE id = ?`, contentColumns))
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.Get", err)
	}
	c, err := scanContentRow(stmt.QueryRowContext(ctx, id))
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.Get", err)
	}
	if c == nil {
		return nil, gwerrors.New(gwerrors.NotFound, "catalog.Get", fmt.Errorf("content %s", id))
	}
	if err := s.loadAvailability(ctx, c); err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.Get", err)
	}
	return c, nil
}

// GetMany batch-fetches titles by ID, skipping any that don't exist (callers
// doing rank/fuse work tolerate a sparse result rather than failing outright).
func (s *Store) GetMany(ctx context.Context, ids []string) (map[string]*Content, error) {
	out := make(map[string]*Content, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT %s FROM content WHERE id IN (%s)`, contentColumns, strings.Join(placeholders, ","))
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.GetMany", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanContentRowFromRows(rows)
		if err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "catalog.GetMany", err)
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.GetMany", err)
	}
	for _, c := range out {
		if err := s.loadAvailability(ctx, c); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "catalog.GetMany", err)
		}
	}
	return out, nil
}

func (s *Store) loadAvailability(ctx context.Context, c *Content) error {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT platform, starts_at, ends_at, deep_link FROM content_availability WHERE content_id = ?`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	c.Availability = c.Availability[:0]
	for rows.Next() {
		var a Availability
		var ends sql.NullTime
		var deepLink sql.NullString
		if err := rows.Scan(&a.Platform, &a.StartsAt, &ends, &deepLink); err != nil {
			return err
		}
		a.EndsAt = ends.Time
		a.DeepLink = deepLink.String
		c.Availability = append(c.Availability, a)
	}
	return rows.Err()
}

func scanContentRowFromRows(rows *sql.Rows) (*Content, error) {
	var c Content
	var eidr, imdb, tmdb sql.NullString
	var genres, tones []string
	var embedding []float32
	if err := rows.Scan(&c.ID, &eidr, &imdb, &tmdb, &c.Title, &c.Overview, &c.Type,
		&c.ReleaseYear, &c.RuntimeMin, &genres, &tones, &c.Popularity, &embedding,
		&c.LastUpdated, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ExternalIDs = ExternalIDs{EIDR: eidr.String, IMDB: imdb.String, TMDB: tmdb.String}
	c.Genres = genres
	c.Tones = tones
	c.Embedding = embedding
	return &c, nil
}

// TopPopular returns the limit highest-popularity titles, used as the
// discovery engine's last-resort response when every search lane fails.
func (s *Store) TopPopular(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id FROM content ORDER BY popularity DESC, last_updated DESC LIMIT ?`, limit)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.TopPopular", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "catalog.TopPopular", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SearchTitle does a case-insensitive substring match against titles,
// ordered by popularity; it backs the Keyword Searcher lane. The teacher's
// DuckDB deployment has the rapidfuzz extension available for edit-distance
// matching, which this module does not carry (no component besides keyword
// search would exercise it) - ILIKE is the grounded fallback it documents
// for when that extension is absent.
func (s *Store) SearchTitle(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id FROM content WHERE title ILIKE '%' || ? || '%' ORDER BY popularity DESC LIMIT ?`, query, limit)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.SearchTitle", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "catalog.SearchTitle", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SearchByGenres returns titles overlapping any of the given genres, ordered
// by popularity; it backs the Graph Searcher lane's genre-neighborhood walk
// when no co-viewing graph entry point applies (e.g. a cold query with no
// seed title).
func (s *Store) SearchByGenres(ctx context.Context, genres []string, limit int) ([]string, error) {
	if len(genres) == 0 {
		return nil, nil
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id FROM content WHERE len(list_intersect(genres, ?)) > 0 ORDER BY popularity DESC LIMIT ?`, genres, limit)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "catalog.SearchByGenres", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "catalog.SearchByGenres", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ErrNotFound is returned (wrapped) when a lookup by ID finds nothing;
// callers typically check errors.Is(err, gwerrors.ErrNotFound) instead.
var ErrNotFound = errors.New("catalog: content not found")
