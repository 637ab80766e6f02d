// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package crdt

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
	"github.com/mediagateway/gateway/internal/hlc"
)

// Store persists OrSet and LWWRegister state as a DuckDB-backed op-log, so a
// replica that restarts can rebuild its in-memory CRDTs rather than starting
// from empty and re-deriving history from peers.
type Store struct {
	conn *sql.DB
}

// Open creates or attaches to the sync-state database file.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("crdt: create data dir: %w", err)
		}
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Path)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("crdt: open duckdb: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.createSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("crdt: create schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) createSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist_ops (
			user_id TEXT NOT NULL,
			content_id TEXT NOT NULL,
			physical BIGINT NOT NULL,
			logical INTEGER NOT NULL,
			replica TEXT NOT NULL,
			removed BOOLEAN NOT NULL,
			recorded_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, content_id, physical, logical, replica, removed)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_ops_user ON watchlist_ops(user_id)`,
		`CREATE TABLE IF NOT EXISTS progress_state (
			user_id TEXT NOT NULL,
			content_id TEXT NOT NULL,
			position_ms BIGINT NOT NULL,
			physical BIGINT NOT NULL,
			logical INTEGER NOT NULL,
			replica TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, content_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddWatchlistItem records an add op and returns the tag's timestamp so the
// caller (the fan-out publisher) can propagate the same op to peers.
func (s *Store) AddWatchlistItem(ctx context.Context, userID, contentID string, ts hlc.Timestamp, replica string) error {
	_, err := s.conn.ExecContext(ctx, `INSERT INTO watchlist_ops (user_id, content_id, physical, logical, replica, removed)
		VALUES (?, ?, ?, ?, ?, false) ON CONFLICT (user_id, content_id, physical, logical, replica, removed) DO NOTHING`,
		userID, contentID, ts.Physical, ts.Logical, replica)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "crdt.AddWatchlistItem", err)
	}
	return nil
}

// RemoveWatchlistItem tombstones every currently-live add tag for contentID,
// mirroring OrSet.Remove: adds this replica has not yet observed (in flight
// from a peer) are untouched and survive the merge.
func (s *Store) RemoveWatchlistItem(ctx context.Context, userID, contentID string) error {
	rows, err := s.conn.QueryContext(ctx, `SELECT physical, logical, replica FROM watchlist_ops
		WHERE user_id = ? AND content_id = ? AND removed = false`, userID, contentID)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "crdt.RemoveWatchlistItem", err)
	}
	defer rows.Close()

	type liveTag struct {
		physical int64
		logical  uint32
		replica  string
	}
	var live []liveTag
	for rows.Next() {
		var lt liveTag
		if err := rows.Scan(&lt.physical, &lt.logical, &lt.replica); err != nil {
			return gwerrors.New(gwerrors.Internal, "crdt.RemoveWatchlistItem", err)
		}
		live = append(live, lt)
	}
	if err := rows.Err(); err != nil {
		return gwerrors.New(gwerrors.Internal, "crdt.RemoveWatchlistItem", err)
	}

	for _, lt := range live {
		_, err := s.conn.ExecContext(ctx, `INSERT INTO watchlist_ops (user_id, content_id, physical, logical, replica, removed)
			VALUES (?, ?, ?, ?, ?, true) ON CONFLICT (user_id, content_id, physical, logical, replica, removed) DO NOTHING`,
			userID, contentID, lt.physical, lt.logical, lt.replica)
		if err != nil {
			return gwerrors.New(gwerrors.Internal, "crdt.RemoveWatchlistItem", err)
		}
	}
	return nil
}

// LoadWatchlist replays the persisted op-log for userID into an OrSet.
func (s *Store) LoadWatchlist(ctx context.Context, userID string) (*OrSet[string], error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT content_id, physical, logical, replica, removed
		FROM watchlist_ops WHERE user_id = ?`, userID)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "crdt.LoadWatchlist", err)
	}
	defer rows.Close()

	set := NewOrSet[string]()
	type pendingRemove struct {
		ts      hlc.Timestamp
		replica string
	}
	var removes []pendingRemove
	for rows.Next() {
		var contentID, replica string
		var physical int64
		var logical uint32
		var removed bool
		if err := rows.Scan(&contentID, &physical, &logical, &replica, &removed); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "crdt.LoadWatchlist", err)
		}
		ts := hlc.Timestamp{Physical: physical, Logical: logical}
		if removed {
			removes = append(removes, pendingRemove{ts: ts, replica: replica})
			continue
		}
		set.Add(contentID, ts, replica)
	}
	if err := rows.Err(); err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "crdt.LoadWatchlist", err)
	}
	for _, r := range removes {
		set.RemoveTag(r.ts, r.replica)
	}
	return set, nil
}

// CompactWatchlist drops tombstoned add/remove op pairs, keeping only ops
// that still affect the reconstructed state (live adds). Observable state is
// unchanged; only the log's storage footprint shrinks.
func (s *Store) CompactWatchlist(ctx context.Context, userID string) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM watchlist_ops
		WHERE user_id = ? AND (physical, logical, replica) IN (
			SELECT physical, logical, replica FROM watchlist_ops
			WHERE user_id = ? AND removed = true
		)`, userID, userID)
	if err != nil {
		return 0, gwerrors.New(gwerrors.Internal, "crdt.CompactWatchlist", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, gwerrors.New(gwerrors.Internal, "crdt.CompactWatchlist", err)
	}
	return n, nil
}

// SetProgress applies a playback-position write, keeping it only if it wins
// the LWW comparison (via LWWRegister.Set) against whatever is currently
// stored; a losing write is silently a no-op rather than an error.
func (s *Store) SetProgress(ctx context.Context, userID, contentID string, position time.Duration, ts hlc.Timestamp, replica string) error {
	reg, err := s.LoadProgress(ctx, userID, contentID)
	if err != nil {
		return err
	}
	reg.Set(position, ts, replica)
	winner, _ := reg.Value()
	if winner != position || reg.timestamp != ts || reg.replica != replica {
		// The existing write already won; nothing to persist.
		return nil
	}

	_, err = s.conn.ExecContext(ctx, `INSERT INTO progress_state (user_id, content_id, position_ms, physical, logical, replica)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, content_id) DO UPDATE SET
			position_ms = EXCLUDED.position_ms, physical = EXCLUDED.physical,
			logical = EXCLUDED.logical, replica = EXCLUDED.replica, updated_at = current_timestamp`,
		userID, contentID, position.Milliseconds(), ts.Physical, ts.Logical, replica)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "crdt.SetProgress", err)
	}
	return nil
}

// LoadProgress returns the stored LWW register for (userID, contentID). An
// unset register (Value's second return false) means no progress recorded.
func (s *Store) LoadProgress(ctx context.Context, userID, contentID string) (*LWWRegister[time.Duration], error) {
	reg := NewLWWRegister[time.Duration]()
	row := s.conn.QueryRowContext(ctx, `SELECT position_ms, physical, logical, replica
		FROM progress_state WHERE user_id = ? AND content_id = ?`, userID, contentID)
	var positionMS, physical int64
	var logical uint32
	var replica string
	err := row.Scan(&positionMS, &physical, &logical, &replica)
	switch {
	case err == sql.ErrNoRows:
		return reg, nil
	case err != nil:
		return nil, gwerrors.New(gwerrors.Internal, "crdt.LoadProgress", err)
	}
	reg.Set(time.Duration(positionMS)*time.Millisecond, hlc.Timestamp{Physical: physical, Logical: logical}, replica)
	return reg, nil
}
