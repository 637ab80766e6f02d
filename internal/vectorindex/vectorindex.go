// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package vectorindex is the semantic Vector Index (component B): a
// DuckDB-backed nearest-neighbor search over 768-dim title embeddings, using
// DuckDB's array_cosine_similarity rather than a standalone ANN engine,
// matching how the teacher loads DuckDB extensions in-process instead of
// standing up a side-car.
package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mediagateway/gateway/internal/config"
	"github.com/mediagateway/gateway/internal/gwerrors"
)

// Dims is the fixed embedding width this index stores and compares, matching
// the catalog's `embedding FLOAT[768]` column.
const Dims = 768

// Match is one nearest-neighbor result.
type Match struct {
	ContentID string
	Score     float64 // cosine similarity, [-1, 1]; higher is more similar
}

// Index wraps a DuckDB connection dedicated to the vector table. It is kept
// separate from catalog.Store so the two can scale independently (the vector
// table is append/overwrite-heavy and queried by a different access pattern).
type Index struct {
	conn *sql.DB
}

// Open creates or attaches to the vector index database file.
func Open(cfg *config.DatabaseConfig) (*Index, error) {
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("vectorindex: create data dir: %w", err)
		}
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Path)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: open duckdb: %w", err)
	}
	idx := &Index{conn: conn}
	if err := idx.createSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("vectorindex: create schema: %w", err)
	}
	return idx, nil
}

func (idx *Index) Close() error { return idx.conn.Close() }

func (idx *Index) createSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := idx.conn.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS content_vectors (
			content_id UUID PRIMARY KEY,
			embedding FLOAT[%d] NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`, Dims))
	return err
}

// Upsert stores or replaces the embedding for a content ID. Returns
// INVALID_ARGUMENT if the vector is not exactly Dims wide.
func (idx *Index) Upsert(ctx context.Context, contentID string, vector []float32) error {
	if len(vector) != Dims {
		return gwerrors.Newf(gwerrors.InvalidArgument, "vectorindex.Upsert", "embedding must be %d-dim, got %d", Dims, len(vector))
	}
	_, err := idx.conn.ExecContext(ctx, `INSERT INTO content_vectors (content_id, embedding, updated_at)
		VALUES (?, ?, current_timestamp)
		ON CONFLICT (content_id) DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = EXCLUDED.updated_at`,
		contentID, vector)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "vectorindex.Upsert", err)
	}
	return nil
}

// Delete removes a content ID's vector, e.g. when the title is delisted.
func (idx *Index) Delete(ctx context.Context, contentID string) error {
	_, err := idx.conn.ExecContext(ctx, `DELETE FROM content_vectors WHERE content_id = ?`, contentID)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "vectorindex.Delete", err)
	}
	return nil
}

// TopK returns the k nearest neighbors to query by cosine similarity,
// excluding exclude itself (the title being expanded, if any). DuckDB's
// array_cosine_similarity does the heavy lifting; this is a full scan, which
// is acceptable at the catalog sizes this gateway targets (tens of
// thousands of titles) and avoids standing up a dedicated ANN service.
func (idx *Index) TopK(ctx context.Context, query []float32, k int, exclude string) ([]Match, error) {
	if len(query) != Dims {
		return nil, gwerrors.Newf(gwerrors.InvalidArgument, "vectorindex.TopK", "query must be %d-dim, got %d", Dims, len(query))
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := idx.conn.QueryContext(ctx, `SELECT content_id, array_cosine_similarity(embedding, ?::FLOAT[`+fmt.Sprint(Dims)+`]) AS score
		FROM content_vectors
		WHERE content_id != ?
		ORDER BY score DESC
		LIMIT ?`, query, exclude, k)
	if err != nil {
		return nil, gwerrors.New(gwerrors.ProviderUnavailable, "vectorindex.TopK", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ContentID, &m.Score); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "vectorindex.TopK", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "vectorindex.TopK", err)
	}

	// DuckDB's ORDER BY already sorts these, but re-sort defensively so this
	// function's contract doesn't depend on driver-level ordering guarantees.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, nil
}
