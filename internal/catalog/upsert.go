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
	"time"

	"github.com/google/uuid"

	"github.com/mediagateway/gateway/internal/gwerrors"
	"github.com/mediagateway/gateway/internal/logging"
)

// Upsert ingests an incoming Content record per spec §6: it resolves the
// matching existing row by EIDR, falling back to IMDB, then TMDB, then a
// fuzzy title+year match, and overwrites only if the incoming LastUpdated is
// strictly greater than the stored one. A brand-new title (no match) is
// inserted outright. Returns the final stored ID (existing or newly minted)
// and whether the store was actually written.
func (s *Store) Upsert(ctx context.Context, in *Content) (id string, wrote bool, err error) {
	if in.Title == "" {
		return "", false, gwerrors.New(gwerrors.InvalidArgument, "catalog.Upsert", errors.New("title is required"))
	}
	if in.LastUpdated.IsZero() {
		in.LastUpdated = time.Now().UTC()
	}

	lockKey := joinNonEmpty(in.ExternalIDs)
	if lockKey == "" {
		lockKey = "title:" + strings.ToLower(in.Title)
	}
	mu := s.lockFor(lockKey)
	mu.Lock()
	defer mu.Unlock()

	existing, matchErr := s.findMatch(ctx, in)
	if matchErr != nil {
		return "", false, gwerrors.New(gwerrors.Internal, "catalog.Upsert", matchErr)
	}

	if existing == nil {
		in.ID = uuid.NewString()
		in.CreatedAt = in.LastUpdated
		if err := s.insert(ctx, in); err != nil {
			return "", false, gwerrors.New(gwerrors.Internal, "catalog.Upsert", err)
		}
		return in.ID, true, nil
	}

	if !in.LastUpdated.After(existing.LastUpdated) {
		logging.Debug().Str("content_id", existing.ID).Msg("catalog: ignoring stale upsert")
		return existing.ID, false, nil
	}

	in.ID = existing.ID
	in.CreatedAt = existing.CreatedAt
	if err := s.update(ctx, in); err != nil {
		return "", false, gwerrors.New(gwerrors.Internal, "catalog.Upsert", err)
	}
	return in.ID, true, nil
}

// findMatch resolves the existing row an incoming record refers to, trying
// external IDs in descending specificity before falling back to a fuzzy
// title+year match (+/-0 year, case-insensitive exact title - DuckDB's
// rapidfuzz extension is a teacher dependency this module does not carry,
// so the fallback here is exact-normalized rather than edit-distance).
func (s *Store) findMatch(ctx context.Context, in *Content) (*Content, error) {
	if in.ExternalIDs.EIDR != "" {
		if c, err := s.getByColumn(ctx, "eidr", in.ExternalIDs.EIDR); err != nil || c != nil {
			return c, err
		}
	}
	if in.ExternalIDs.IMDB != "" {
		if c, err := s.getByColumn(ctx, "imdb_id", in.ExternalIDs.IMDB); err != nil || c != nil {
			return c, err
		}
	}
	if in.ExternalIDs.TMDB != "" {
		if c, err := s.getByColumn(ctx, "tmdb_id", in.ExternalIDs.TMDB); err != nil || c != nil {
			return c, err
		}
	}
	return s.getByTitleYear(ctx, in.Title, in.ReleaseYear)
}

func (s *Store) getByColumn(ctx context.Context, column, value string) (*Content, error) {
	query := fmt.Sprintf(`SELECT %s FROM content WHERE %s = ?`, contentColumns, column)
	stmt, err := s.prepared(ctx, query)
	if err != nil {
		return nil, err
	}
	row := stmt.QueryRowContext(ctx, value)
	return scanContentRow(row)
}

func (s *Store) getByTitleYear(ctx context.Context, title string, year int) (*Content, error) {
	query := fmt.Sprintf(`SELECT %s FROM content WHERE lower(title) = lower(?) AND release_year = ?`, contentColumns)
	stmt, err := s.prepared(ctx, query)
	if err != nil {
		return nil, err
	}
	row := stmt.QueryRowContext(ctx, title, year)
	return scanContentRow(row)
}

func (s *Store) insert(ctx context.Context, c *Content) error {
	query := `INSERT INTO content (
		id, eidr, imdb_id, tmdb_id, title, overview, content_type,
		release_year, runtime_min, genres, tones, popularity, embedding,
		last_updated, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := s.prepared(ctx, query)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, insertArgs(c)...)
	if err != nil {
		return err
	}
	return s.replaceAvailability(ctx, c)
}

func (s *Store) update(ctx context.Context, c *Content) error {
	query := `UPDATE content SET
		eidr = ?, imdb_id = ?, tmdb_id = ?, title = ?, overview = ?, content_type = ?,
		release_year = ?, runtime_min = ?, genres = ?, tones = ?, popularity = ?, embedding = ?,
		last_updated = ?
		WHERE id = ?`
	stmt, err := s.prepared(ctx, query)
	if err != nil {
		return err
	}
	args := append(updateArgs(c), c.ID)
	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		return err
	}
	return s.replaceAvailability(ctx, c)
}

// replaceAvailability swaps in the incoming availability windows wholesale;
// the gateway treats an upsert's Availability slice as authoritative for
// that platform set, matching how publishers resend the full window list.
func (s *Store) replaceAvailability(ctx context.Context, c *Content) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM content_availability WHERE content_id = ?`, c.ID); err != nil {
		return err
	}
	for _, a := range c.Availability {
		var ends interface{}
		if !a.EndsAt.IsZero() {
			ends = a.EndsAt
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO content_availability
			(content_id, platform, starts_at, ends_at, deep_link) VALUES (?, ?, ?, ?, ?)`,
			c.ID, a.Platform, a.StartsAt, ends, a.DeepLink); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetEmbedding stores the vector produced by the embedding client after a
// successful upsert, per spec §6's "emit embedding-generation request after
// upsert" contract.
func (s *Store) SetEmbedding(ctx context.Context, contentID string, vector []float32) error {
	stmt, err := s.prepared(ctx, `UPDATE content SET embedding = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, vector, contentID)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "catalog.SetEmbedding", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "catalog.SetEmbedding", err)
	}
	if n == 0 {
		return gwerrors.New(gwerrors.NotFound, "catalog.SetEmbedding", fmt.Errorf("content %s not found", contentID))
	}
	return nil
}

const contentColumns = `id, eidr, imdb_id, tmdb_id, title, overview, content_type,
	release_year, runtime_min, genres, tones, popularity, embedding, last_updated, created_at`

func insertArgs(c *Content) []interface{} {
	return []interface{}{
		c.ID, nullable(c.ExternalIDs.EIDR), nullable(c.ExternalIDs.IMDB), nullable(c.ExternalIDs.TMDB),
		c.Title, c.Overview, string(c.Type), c.ReleaseYear, c.RuntimeMin,
		c.Genres, c.Tones, c.Popularity, c.Embedding, c.LastUpdated, c.CreatedAt,
	}
}

func updateArgs(c *Content) []interface{} {
	return []interface{}{
		nullable(c.ExternalIDs.EIDR), nullable(c.ExternalIDs.IMDB), nullable(c.ExternalIDs.TMDB),
		c.Title, c.Overview, string(c.Type), c.ReleaseYear, c.RuntimeMin,
		c.Genres, c.Tones, c.Popularity, c.Embedding, c.LastUpdated,
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func scanContentRow(row *sql.Row) (*Content, error) {
	var c Content
	var eidr, imdb, tmdb sql.NullString
	var genres, tones []string
	var embedding []float32
	if err := row.Scan(&c.ID, &eidr, &imdb, &tmdb, &c.Title, &c.Overview, &c.Type,
		&c.ReleaseYear, &c.RuntimeMin, &genres, &tones, &c.Popularity, &embedding,
		&c.LastUpdated, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.ExternalIDs = ExternalIDs{EIDR: eidr.String, IMDB: imdb.String, TMDB: tmdb.String}
	c.Genres = genres
	c.Tones = tones
	c.Embedding = embedding
	return &c, nil
}
