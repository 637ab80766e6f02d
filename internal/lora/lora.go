// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package lora is the LoRA Adapter Store (component J): per-user low-rank
// residual matrices the Ranker applies on top of a content embedding to
// produce a personalization residual score, without storing or recomputing
// a full per-user embedding space.
package lora

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mediagateway/gateway/internal/config"
	"github.com/mediagateway/gateway/internal/gwerrors"
)

// Adapter is one user's low-rank adapter for one named model slot (e.g.
// "search-residual", "recommend-residual"). Its residual for a content
// embedding e is B . (A . e), a Dims-length vector; dotting that against
// PreferenceVector collapses it to the scalar the ranker adds to a fused
// score.
type Adapter struct {
	UserID  string
	Name    string
	Version int
	Rank    int
	Dims    int

	A                []float32 // Rank x Dims, row-major
	B                []float32 // Dims x Rank, row-major
	PreferenceVector []float32 // Dims

	CreatedAt time.Time
}

// Score computes the LoRA residual for a content embedding: dot(B.(A.e), PreferenceVector).
func (a *Adapter) Score(embedding []float32) float64 {
	if len(embedding) != a.Dims {
		return 0
	}
	// ae = A . e, a Rank-length vector.
	ae := make([]float64, a.Rank)
	for r := 0; r < a.Rank; r++ {
		var sum float64
		base := r * a.Dims
		for d := 0; d < a.Dims; d++ {
			sum += float64(a.A[base+d]) * float64(embedding[d])
		}
		ae[r] = sum
	}
	// residual = B . ae, a Dims-length vector, dotted with PreferenceVector in-line.
	var score float64
	for d := 0; d < a.Dims; d++ {
		var sum float64
		base := d * a.Rank
		for r := 0; r < a.Rank; r++ {
			sum += float64(a.B[base+r]) * ae[r]
		}
		score += sum * float64(a.PreferenceVector[d])
	}
	return score
}

// Store is the DuckDB-backed LoRA adapter persistence layer.
type Store struct {
	conn *sql.DB
}

// Open creates or attaches to the adapter database file.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("lora: create data dir: %w", err)
		}
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Path)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("lora: open duckdb: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.createSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("lora: create schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) createSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := s.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS lora_adapters (
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		rank INTEGER NOT NULL,
		dims INTEGER NOT NULL,
		a_matrix FLOAT[] NOT NULL,
		b_matrix FLOAT[] NOT NULL,
		preference_vector FLOAT[] NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (user_id, name, version)
	)`)
	if err != nil {
		return err
	}
	// Composite index supporting "latest version for (user, name)" lookups.
	_, err = s.conn.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_lora_latest ON lora_adapters(user_id, name, version DESC)`)
	return err
}

// Save persists a new adapter version. Callers are responsible for
// incrementing Version past whatever LoadLatest currently returns.
func (s *Store) Save(ctx context.Context, a *Adapter) error {
	if a.UserID == "" || a.Name == "" {
		return gwerrors.Newf(gwerrors.InvalidArgument, "lora.Save", "user_id and name are required")
	}
	if len(a.A) != a.Rank*a.Dims || len(a.B) != a.Dims*a.Rank || len(a.PreferenceVector) != a.Dims {
		return gwerrors.Newf(gwerrors.InvalidArgument, "lora.Save", "matrix dimensions inconsistent with rank=%d dims=%d", a.Rank, a.Dims)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx, `INSERT INTO lora_adapters
		(user_id, name, version, rank, dims, a_matrix, b_matrix, preference_vector, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Version, a.Rank, a.Dims, a.A, a.B, a.PreferenceVector, a.CreatedAt)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "lora.Save", err)
	}
	return nil
}

// LoadLatest returns the highest-version adapter for (userID, name).
func (s *Store) LoadLatest(ctx context.Context, userID, name string) (*Adapter, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT user_id, name, version, rank, dims, a_matrix, b_matrix, preference_vector, created_at
		FROM lora_adapters WHERE user_id = ? AND name = ? ORDER BY version DESC LIMIT 1`, userID, name)
	return scanAdapter(row, "lora.LoadLatest")
}

// Load returns a specific version.
func (s *Store) Load(ctx context.Context, userID, name string, version int) (*Adapter, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT user_id, name, version, rank, dims, a_matrix, b_matrix, preference_vector, created_at
		FROM lora_adapters WHERE user_id = ? AND name = ? AND version = ?`, userID, name, version)
	return scanAdapter(row, "lora.Load")
}

// Meta is adapter metadata without the matrices, for listing.
type Meta struct {
	UserID    string
	Name      string
	Version   int
	CreatedAt time.Time
}

// List returns every version's metadata for a user, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]Meta, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT user_id, name, version, created_at
		FROM lora_adapters WHERE user_id = ? ORDER BY name, version DESC`, userID)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "lora.List", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.UserID, &m.Name, &m.Version, &m.CreatedAt); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "lora.List", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Prune deletes all but the keep newest versions of every (user, name) pair,
// returning the number of rows removed. Run periodically as a background
// job so the adapter table doesn't grow unbounded as users retrain.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.conn.ExecContext(ctx, `DELETE FROM lora_adapters WHERE (user_id, name, version) NOT IN (
		SELECT user_id, name, version FROM (
			SELECT user_id, name, version,
				row_number() OVER (PARTITION BY user_id, name ORDER BY version DESC) AS rn
			FROM lora_adapters
		) ranked WHERE rn <= ?
	)`, keep)
	if err != nil {
		return 0, gwerrors.New(gwerrors.Internal, "lora.Prune", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, gwerrors.New(gwerrors.Internal, "lora.Prune", err)
	}
	return n, nil
}

func scanAdapter(row *sql.Row, op string) (*Adapter, error) {
	var a Adapter
	if err := row.Scan(&a.UserID, &a.Name, &a.Version, &a.Rank, &a.Dims, &a.A, &a.B, &a.PreferenceVector, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, gwerrors.New(gwerrors.NotFound, op, err)
		}
		return nil, gwerrors.New(gwerrors.Internal, op, err)
	}
	return &a, nil
}
