// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package experiment is the Experiment Registry (component L): a DuckDB-backed
// store for A/B tests with deterministic sticky bucket assignment, idempotent
// exposure logging and free-form conversion events.
package experiment

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mediagateway/gateway/internal/config"
)

// Store is the experiment registry's DuckDB connection.
type Store struct {
	conn *sql.DB
}

// Open creates or attaches to the experiment registry database file.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("experiment: create data dir: %w", err)
		}
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Path)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("experiment: open duckdb: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.createSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("experiment: create schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) createSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS experiments (
			id TEXT PRIMARY KEY,
			key TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS experiment_variants (
			experiment_id TEXT NOT NULL,
			variant_key TEXT NOT NULL,
			weight DOUBLE NOT NULL,
			PRIMARY KEY (experiment_id, variant_key)
		)`,
		`CREATE TABLE IF NOT EXISTS experiment_assignments (
			experiment_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			variant_key TEXT NOT NULL,
			assigned_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (experiment_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS experiment_exposures (
			experiment_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			variant_key TEXT NOT NULL,
			exposed_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (experiment_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS experiment_conversions (
			id TEXT PRIMARY KEY,
			experiment_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			variant_key TEXT NOT NULL,
			event_name TEXT NOT NULL,
			value DOUBLE NOT NULL DEFAULT 0,
			converted_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE INDEX IF NOT EXISTS idx_experiment_conversions_lookup
			ON experiment_conversions(experiment_id, variant_key, event_name)`,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
