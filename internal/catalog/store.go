// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mediagateway/gateway/internal/config"
)

// Store is the catalog's DuckDB-backed connection. It owns the table schema,
// its own prepared-statement cache, and a per-title write lock so concurrent
// upserts on the same external ID serialize instead of racing DuckDB's MVCC
// conflict detector.
type Store struct {
	conn *sql.DB

	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex

	titleLocks sync.Map // external-ID key -> *sync.Mutex
}

// Open creates (or attaches to) the catalog database file and ensures its
// schema exists.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("catalog: create data dir %s: %w", dbDir, err)
		}
	}

	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("catalog: open duckdb: %w", err)
	}

	conn.SetMaxOpenConns(numThreads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{conn: conn, stmtCache: make(map[string]*sql.Stmt)}
	if err := s.createSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return s, nil
}

// Close releases the prepared-statement cache and the underlying connection.
func (s *Store) Close() error {
	s.stmtCacheMu.Lock()
	for _, stmt := range s.stmtCache {
		_ = stmt.Close()
	}
	s.stmtCacheMu.Unlock()
	return s.conn.Close()
}

func (s *Store) createSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS content (
			id UUID PRIMARY KEY,
			eidr TEXT,
			imdb_id TEXT,
			tmdb_id TEXT,
			title TEXT NOT NULL,
			overview TEXT,
			content_type TEXT NOT NULL,
			release_year INTEGER,
			runtime_min INTEGER,
			genres TEXT[],
			tones TEXT[],
			popularity DOUBLE DEFAULT 0,
			embedding FLOAT[768],
			last_updated TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_content_eidr ON content(eidr) WHERE eidr IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_content_imdb ON content(imdb_id) WHERE imdb_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_content_tmdb ON content(tmdb_id) WHERE tmdb_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_content_title_year ON content(title, release_year)`,
		`CREATE TABLE IF NOT EXISTS content_availability (
			content_id UUID NOT NULL REFERENCES content(id),
			platform TEXT NOT NULL,
			starts_at TIMESTAMP NOT NULL,
			ends_at TIMESTAMP,
			deep_link TEXT,
			PRIMARY KEY (content_id, platform)
		)`,
	}
	for _, q := range queries {
		if _, err := s.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("exec %q: %w", q, err)
		}
	}
	return nil
}

// prepared returns a cached *sql.Stmt for query, preparing it on first use.
func (s *Store) prepared(ctx context.Context, query string) (*sql.Stmt, error) {
	s.stmtCacheMu.RLock()
	stmt, ok := s.stmtCache[query]
	s.stmtCacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	s.stmtCacheMu.Lock()
	defer s.stmtCacheMu.Unlock()
	if stmt, ok := s.stmtCache[query]; ok {
		return stmt, nil
	}
	stmt, err := s.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.stmtCache[query] = stmt
	return stmt, nil
}

// lockFor returns the per-title mutex for a match key, creating it lazily.
func (s *Store) lockFor(key string) *sync.Mutex {
	mu, _ := s.titleLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func joinNonEmpty(id ExternalIDs) string {
	switch {
	case id.EIDR != "":
		return "eidr:" + id.EIDR
	case id.IMDB != "":
		return "imdb:" + id.IMDB
	case id.TMDB != "":
		return "tmdb:" + id.TMDB
	default:
		return ""
	}
}
