// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package fanout

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/mediagateway/gateway/internal/logging"
)

// userQueueCap is the send-side queue cap per user enforced ahead of the
// cross-instance publish (spec §5 backpressure policy). On overflow, new
// ops spill to the Offline Queue rather than blocking the request path.
const userQueueCap = 1024

// CrossInstance delivers ops and commands to other gateway replicas, e.g.
// over NATS JetStream. A nil CrossInstance limits the Bus to device-local,
// single-instance delivery.
type CrossInstance interface {
	PublishSync(ctx context.Context, userID string, payload []byte) error
	PublishCommand(ctx context.Context, userID, deviceID string, payload []byte) error
}

// Offliner durably persists an op that could not be published, so it can be
// replayed once connectivity returns. internal/offlinequeue.Queue satisfies
// this structurally.
type Offliner interface {
	Enqueue(ctx context.Context, payload interface{}) (string, error)
}

// Bus is the Fan-Out Bus (component O): device-local delivery via Hub, plus
// optional cross-instance delivery and offline-queue spillover on
// backpressure or publish failure.
type Bus struct {
	hub     *Hub
	cross   CrossInstance
	offline Offliner

	mu     sync.Mutex
	depth  map[string]int // userID -> in-flight cross-instance publishes
}

// NewBus constructs a Bus. cross and offline may both be nil: a Bus with
// neither only delivers to devices subscribed in this process.
func NewBus(hub *Hub, cross CrossInstance, offline Offliner) *Bus {
	return &Bus{hub: hub, cross: cross, offline: offline, depth: make(map[string]int)}
}

func syncChannel(userID string) string   { return fmt.Sprintf("user.%s.sync", userID) }
func deviceChannel(userID, deviceID string) string {
	return fmt.Sprintf("user.%s.devices.%s", userID, deviceID)
}

// PublishOp delivers a sync Op to every device-local subscriber for the
// user and, if configured, to the cross-instance transport. A cross-instance
// failure or per-user queue-cap overflow spills the op to the offline queue
// instead of blocking or erroring the caller's request path.
func (b *Bus) PublishOp(ctx context.Context, op Op) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("fanout: marshal op: %w", err)
	}

	b.hub.PublishToUser(op.UserID, syncChannel(op.UserID), payload)

	if b.cross == nil {
		return nil
	}

	if !b.acquire(op.UserID) {
		b.spill(ctx, op.UserID, op)
		return nil
	}
	defer b.release(op.UserID)

	if err := b.cross.PublishSync(ctx, op.UserID, payload); err != nil {
		logging.Warn().Err(err).Str("user_id", op.UserID).Msg("fanout: cross-instance publish failed, spilling to offline queue")
		b.spill(ctx, op.UserID, op)
	}
	return nil
}

// PublishCommand delivers a remote command to the target device, both
// locally (if the device is subscribed to this instance) and, if
// configured, via the cross-instance transport so a replica holding the
// target's connection can deliver it.
func (b *Bus) PublishCommand(ctx context.Context, cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("fanout: marshal command: %w", err)
	}

	b.hub.PublishToDevice(cmd.UserID, cmd.TargetID, deviceChannel(cmd.UserID, cmd.TargetID), payload)

	if b.cross == nil {
		return nil
	}
	if err := b.cross.PublishCommand(ctx, cmd.UserID, cmd.TargetID, payload); err != nil {
		// Commands are fire-and-forget (spec §4.10): a cross-instance publish
		// failure only matters if the target device isn't connected to this
		// instance either, in which case there is nothing further to retry.
		logging.Warn().Err(err).Str("user_id", cmd.UserID).Str("target_id", cmd.TargetID).Msg("fanout: cross-instance command publish failed")
	}
	return nil
}

func (b *Bus) acquire(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.depth[userID] >= userQueueCap {
		return false
	}
	b.depth[userID]++
	return true
}

func (b *Bus) release(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.depth[userID]--
	if b.depth[userID] <= 0 {
		delete(b.depth, userID)
	}
}

func (b *Bus) spill(ctx context.Context, userID string, op Op) {
	if b.offline == nil {
		logging.Warn().Str("user_id", userID).Msg("fanout: no offline queue configured, op dropped")
		return
	}
	if _, err := b.offline.Enqueue(ctx, op); err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("fanout: failed to spill op to offline queue")
	}
}
