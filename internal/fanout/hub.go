// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package fanout

import (
	"context"
	"sort"
	"sync"

	"github.com/mediagateway/gateway/internal/logging"
)

// deviceQueueCap is the send-side queue cap per device channel (spec §5
// backpressure policy): beyond this the hub drops the oldest unsent message
// rather than blocking the publisher, and the caller is expected to fall
// back to the Offline Queue.
const deviceQueueCap = 1024

// device is a single subscriber to a user.{userId}.devices.{deviceId}
// channel: a local device-edge connection (e.g. a held-open SSE/WS handler).
type device struct {
	userID string
	id     string
	send   chan Envelope
}

// Envelope wraps a published message with the channel it was sent on, so a
// single per-device send chan can carry both sync ops and commands.
type Envelope struct {
	Channel string
	Payload []byte
}

// Hub fans out to device-local subscribers within this process. It is the
// in-process half of the Fan-Out Bus; DeviceHub.Publish additionally calls
// an optional CrossInstance publisher so other gateway replicas see the op.
type Hub struct {
	mu      sync.RWMutex
	devices map[string]*device // keyed by userID + "/" + deviceID

	Register   chan *device
	Unregister chan *device

	broadcast chan taggedEnvelope
}

type taggedEnvelope struct {
	userID   string
	deviceID string // empty means "every device for userID"
	env      Envelope
}

// NewHub creates a fan-out hub for device-local delivery.
func NewHub() *Hub {
	return &Hub{
		devices:    make(map[string]*device),
		Register:   make(chan *device),
		Unregister: make(chan *device),
		broadcast:  make(chan taggedEnvelope, 256),
	}
}

func deviceKey(userID, deviceID string) string { return userID + "/" + deviceID }

// Subscribe registers a device-edge channel for userID/deviceID and returns
// a receive-only channel of envelopes destined for it. Unsubscribe must be
// called when the connection closes.
func (h *Hub) Subscribe(userID, deviceID string) <-chan Envelope {
	d := &device{userID: userID, id: deviceID, send: make(chan Envelope, deviceQueueCap)}
	h.Register <- d
	h.mu.Lock()
	h.devices[deviceKey(userID, deviceID)] = d
	h.mu.Unlock()
	return d.send
}

// Unsubscribe removes userID/deviceID's channel.
func (h *Hub) Unsubscribe(userID, deviceID string) {
	h.mu.Lock()
	d, ok := h.devices[deviceKey(userID, deviceID)]
	delete(h.devices, deviceKey(userID, deviceID))
	h.mu.Unlock()
	if ok {
		h.Unregister <- d
	}
}

// RunWithContext drives the hub's register/unregister/broadcast loop until
// ctx is canceled, matching the teacher hub's context-supervised lifecycle.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			logging.Info().Str("component", "fanout-hub").Msg("fanout hub stopped")
			return ctx.Err()
		case d := <-h.Register:
			logging.Debug().Str("user_id", d.userID).Str("device_id", d.id).Msg("device subscribed to fanout hub")
		case d := <-h.Unregister:
			close(d.send)
			logging.Debug().Str("user_id", d.userID).Str("device_id", d.id).Msg("device unsubscribed from fanout hub")
		case te := <-h.broadcast:
			h.deliver(te)
		}
	}
}

// PublishToDevice sends payload on channel to a single device, dropping the
// oldest queued envelope if that device's queue is full rather than
// blocking the caller.
func (h *Hub) PublishToDevice(userID, deviceID, channel string, payload []byte) {
	select {
	case h.broadcast <- taggedEnvelope{userID: userID, deviceID: deviceID, env: Envelope{Channel: channel, Payload: payload}}:
	default:
		logging.Warn().Str("user_id", userID).Str("device_id", deviceID).Msg("fanout hub broadcast queue full, dropping envelope")
	}
}

// PublishToUser sends payload to every device currently subscribed for
// userID (used for the user.{userId}.sync channel's local fan-out).
func (h *Hub) PublishToUser(userID, channel string, payload []byte) {
	select {
	case h.broadcast <- taggedEnvelope{userID: userID, env: Envelope{Channel: channel, Payload: payload}}:
	default:
		logging.Warn().Str("user_id", userID).Msg("fanout hub broadcast queue full, dropping envelope")
	}
}

// deliver matches the teacher hub's deterministic, pointer-sorted-by-key
// broadcast: non-blocking sends, dropping any device whose queue is full.
func (h *Hub) deliver(te taggedEnvelope) {
	h.mu.RLock()
	var targets []*device
	if te.deviceID != "" {
		if d, ok := h.devices[deviceKey(te.userID, te.deviceID)]; ok {
			targets = append(targets, d)
		}
	} else {
		for key, d := range h.devices {
			if d.userID == te.userID {
				targets = append(targets, d)
			}
			_ = key
		}
	}
	h.mu.RUnlock()

	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	for _, d := range targets {
		select {
		case d.send <- te.env:
		default:
			logging.Warn().Str("user_id", d.userID).Str("device_id", d.id).Msg("device send queue full, dropping envelope")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.devices))
	for k := range h.devices {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	for _, k := range ids {
		close(h.devices[k].send)
		delete(h.devices, k)
	}
}

// DeviceCount returns the number of currently-subscribed devices.
func (h *Hub) DeviceCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.devices)
}
