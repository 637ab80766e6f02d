// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package offlinequeue

import (
	"context"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/mediagateway/gateway/internal/logging"
)

// Publisher delivers a queued payload downstream. internal/fanout.Bus
// satisfies this structurally; Drain has no compile-time dependency on it.
type Publisher interface {
	Publish(ctx context.Context, payload json.RawMessage) error
}

const maxRetries = 10

// DrainResult summarizes the outcome of one Drain pass.
type DrainResult struct {
	Delivered int
	Deferred  int
	Dropped   int
}

// Drain attempts to deliver every pending entry to pub, oldest first. Entries
// it cannot claim (leased by a concurrent drainer) or whose backoff window
// hasn't elapsed are skipped this pass; entries that exceed maxRetries are
// confirmed (dropped) rather than retried forever.
func Drain(ctx context.Context, q *Queue, pub Publisher, leaseHolder string) (DrainResult, error) {
	entries, err := q.Pending(ctx)
	if err != nil {
		return DrainResult{}, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })

	var result DrainResult
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if entry.Attempts > 0 && !isReadyForRetry(entry) {
			result.Deferred++
			continue
		}

		claimed, err := q.TryClaim(ctx, entry.ID, leaseHolder)
		if err != nil {
			logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("offlinequeue: claim failed")
			result.Deferred++
			continue
		}
		if !claimed {
			result.Deferred++
			continue
		}

		if entry.Attempts >= maxRetries {
			logging.Warn().Str("entry_id", entry.ID).Int("attempts", entry.Attempts).Msg("offlinequeue: dropping entry after exhausting retries")
			if err := q.Confirm(ctx, entry.ID); err != nil {
				logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("offlinequeue: failed to drop exhausted entry")
			}
			result.Dropped++
			continue
		}

		if err := pub.Publish(ctx, entry.Payload); err != nil {
			if uerr := q.UpdateAttempt(ctx, entry.ID, err.Error()); uerr != nil {
				logging.Warn().Err(uerr).Str("entry_id", entry.ID).Msg("offlinequeue: failed to record attempt")
			}
			_ = q.ReleaseLease(ctx, entry.ID)
			result.Deferred++
			continue
		}

		if err := q.Confirm(ctx, entry.ID); err != nil {
			logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("offlinequeue: delivered but failed to confirm")
			continue
		}
		result.Delivered++
	}
	return result, nil
}

// isReadyForRetry gates a retry attempt on exponential backoff from the
// entry's last attempt: base 1s, doubling per attempt, capped at 5 minutes.
func isReadyForRetry(entry *Entry) bool {
	if entry.LastAttemptAt.IsZero() {
		return true
	}
	return time.Since(entry.LastAttemptAt) >= calculateBackoff(entry.Attempts)
}

func calculateBackoff(attempts int) time.Duration {
	const (
		base = time.Second
		cap  = 5 * time.Minute
	)
	if attempts <= 0 {
		return base
	}
	if attempts > 20 {
		return cap
	}
	backoff := base << uint(attempts)
	if backoff <= 0 || backoff > cap {
		return cap
	}
	return backoff
}
