// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package offlinequeue is the Offline Queue (component N): a BadgerDB-backed
// durable queue for mutations a disconnected device accepted locally (add to
// watchlist, progress update, command ack). Entries survive a process crash
// and are handed to the Fan-Out Bus once connectivity returns, rather than
// going straight to NATS the way the teacher's producer WAL did.
package offlinequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mediagateway/gateway/internal/logging"
)

// Entry is a single durably-queued event awaiting fan-out delivery.
type Entry struct {
	ID            string          `json:"id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	LeaseExpiry   time.Time       `json:"lease_expiry,omitempty"`
	LeaseHolder   string          `json:"lease_holder,omitempty"`
}

// UnmarshalPayload deserializes the entry's payload into v.
func (e *Entry) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Config configures the durable queue.
type Config struct {
	// Path is the BadgerDB data directory.
	Path string
	// SyncWrites forces fsync after every write.
	SyncWrites bool
	// EntryTTL bounds how long an undelivered entry is retained.
	EntryTTL time.Duration
	// LeaseDuration is how long a drain claim is held before it expires and
	// becomes reclaimable, so a crashed drainer doesn't wedge an entry forever.
	LeaseDuration time.Duration
}

// DefaultConfig returns sensible defaults for a single-node deployment.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		SyncWrites:    true,
		EntryTTL:      7 * 24 * time.Hour,
		LeaseDuration: 2 * time.Minute,
	}
}

const (
	prefixPending = "pending:"
)

// Queue is the durable, crash-safe offline mutation queue.
type Queue struct {
	db     *badger.DB
	config Config

	totalEnqueued atomic.Int64
	totalDrained  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Open creates or attaches to the queue's BadgerDB data directory.
func Open(cfg Config) (*Queue, error) {
	if cfg.Path == "" {
		return nil, errors.New("offlinequeue: path is required")
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 2 * time.Minute
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.Compression = options.Snappy
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("offlinequeue: open badger: %w", err)
	}
	return &Queue{db: db, config: cfg}, nil
}

// Enqueue durably persists payload and returns its entry ID.
func (q *Queue) Enqueue(ctx context.Context, payload interface{}) (string, error) {
	if err := q.checkOpen(); err != nil {
		return "", err
	}
	if payload == nil {
		return "", errors.New("offlinequeue: payload cannot be nil")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("offlinequeue: marshal payload: %w", err)
	}

	entryID := uuid.New().String()
	entry := &Entry{ID: entryID, Payload: raw, CreatedAt: time.Now().UTC()}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("offlinequeue: marshal entry: %w", err)
	}

	key := []byte(prefixPending + entryID)
	err = q.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, data)
		if q.config.EntryTTL > 0 {
			e = e.WithTTL(q.config.EntryTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("offlinequeue: write entry: %w", err)
	}

	q.totalEnqueued.Add(1)
	return entryID, nil
}

// Confirm removes an entry once it has been handed off to the fan-out bus.
func (q *Queue) Confirm(ctx context.Context, entryID string) error {
	if err := q.checkOpen(); err != nil {
		return err
	}
	err := q.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixPending + entryID))
	})
	if err != nil {
		return fmt.Errorf("offlinequeue: confirm %s: %w", entryID, err)
	}
	q.totalDrained.Add(1)
	return nil
}

// UpdateAttempt records a failed drain attempt for backoff scheduling.
func (q *Queue) UpdateAttempt(ctx context.Context, entryID, lastErr string) error {
	if err := q.checkOpen(); err != nil {
		return err
	}
	key := []byte(prefixPending + entryID)
	return q.db.Update(func(txn *badger.Txn) error {
		entry, err := readEntry(txn, key)
		if err != nil {
			return err
		}
		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastErr
		return writeEntry(txn, key, entry)
	})
}

// Pending returns every entry awaiting delivery, oldest first is not
// guaranteed (BadgerDB key order, not insertion order) so callers that need
// FIFO should sort by CreatedAt themselves.
func (q *Queue) Pending(ctx context.Context) ([]*Entry, error) {
	if err := q.checkOpen(); err != nil {
		return nil, err
	}
	var entries []*Entry
	err := q.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var entry Entry
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
				logging.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("offlinequeue: failed to unmarshal entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("offlinequeue: iterate pending: %w", err)
	}
	return entries, nil
}

// TryClaim attempts to take the drain lease for entryID, crash-safely: if a
// prior holder died without confirming or releasing, the lease expires and
// any holder can reclaim it.
func (q *Queue) TryClaim(ctx context.Context, entryID, leaseHolder string) (bool, error) {
	if err := q.checkOpen(); err != nil {
		return false, err
	}
	now := time.Now()
	expiry := now.Add(q.config.LeaseDuration)
	key := []byte(prefixPending + entryID)

	var claimed bool
	err := q.db.Update(func(txn *badger.Txn) error {
		entry, err := readEntry(txn, key)
		if err != nil {
			return err
		}
		if !entry.LeaseExpiry.IsZero() && now.Before(entry.LeaseExpiry) && entry.LeaseHolder != leaseHolder {
			claimed = false
			return nil
		}
		entry.LeaseExpiry = expiry
		entry.LeaseHolder = leaseHolder
		claimed = true
		return writeEntry(txn, key, entry)
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// ReleaseLease gives up a held lease early, e.g. after a failed publish, so
// another drainer (or the next tick of this one) can retry sooner.
func (q *Queue) ReleaseLease(ctx context.Context, entryID string) error {
	if err := q.checkOpen(); err != nil {
		return err
	}
	key := []byte(prefixPending + entryID)
	return q.db.Update(func(txn *badger.Txn) error {
		entry, err := readEntry(txn, key)
		if errors.Is(err, ErrEntryNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		entry.LeaseExpiry = time.Time{}
		entry.LeaseHolder = ""
		return writeEntry(txn, key, entry)
	})
}

// Stats summarizes queue depth and lifetime counters.
type Stats struct {
	PendingCount  int64
	TotalEnqueued int64
	TotalDrained  int64
}

// Stats returns current queue statistics.
func (q *Queue) Stats() Stats {
	var pending int64
	_ = q.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			pending++
		}
		return nil
	})
	return Stats{
		PendingCount:  pending,
		TotalEnqueued: q.totalEnqueued.Load(),
		TotalDrained:  q.totalDrained.Load(),
	}
}

// Close shuts down the underlying BadgerDB instance.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()
	return q.db.Close()
}

func (q *Queue) checkOpen() error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	return nil
}

func readEntry(txn *badger.Txn, key []byte) (*Entry, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("offlinequeue: get entry: %w", err)
	}
	var entry Entry
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
		return nil, fmt.Errorf("offlinequeue: unmarshal entry: %w", err)
	}
	return &entry, nil
}

func writeEntry(txn *badger.Txn, key []byte, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("offlinequeue: marshal entry: %w", err)
	}
	return txn.Set(key, data)
}

var (
	// ErrQueueClosed is returned once Close has been called.
	ErrQueueClosed = errors.New("offlinequeue: queue is closed")
	// ErrEntryNotFound is returned when an entry ID has no matching pending entry.
	ErrEntryNotFound = errors.New("offlinequeue: entry not found")
)
