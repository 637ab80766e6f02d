// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package fanout is the Fan-Out Bus (component O): best-effort, at-least-once,
// per-publisher-FIFO delivery of sync ops and remote commands over two
// logical channel families, user.{userId}.sync and
// user.{userId}.devices.{deviceId}. Ordering across publishers is not
// guaranteed; receivers rely on HLCs rather than delivery order.
package fanout

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/mediagateway/gateway/internal/hlc"
)

// OpVersion is the wire-format version tag carried by every Op, so a future
// payload shape can be dispatched on without breaking older subscribers.
const OpVersion = 1

// OpKind identifies the operation a sync Op carries.
type OpKind string

const (
	OpWatchlistAdd    OpKind = "watchlist-add"
	OpWatchlistRemove OpKind = "watchlist-remove"
	OpProgressSet     OpKind = "progress-set"
)

// Op is the CRDT op payload published on a user's sync channel: kind,
// payload, HLC, and a dedup tag. The receiving CRDT is idempotent, so
// at-least-once delivery and duplicate publication from a replayed offline
// queue are both safe.
type Op struct {
	Version   int             `json:"version"`
	Kind      OpKind          `json:"kind"`
	UserID    string          `json:"user_id"`
	Tag       string          `json:"tag"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp hlc.Timestamp   `json:"timestamp"`
	Replica   string          `json:"replica"`
}

// WatchlistAddPayload is the Op.Payload shape for OpWatchlistAdd.
type WatchlistAddPayload struct {
	ContentID string `json:"content_id"`
}

// WatchlistRemovePayload is the Op.Payload shape for OpWatchlistRemove.
type WatchlistRemovePayload struct {
	ContentID string `json:"content_id"`
}

// ProgressSetPayload is the Op.Payload shape for OpProgressSet.
type ProgressSetPayload struct {
	ContentID  string        `json:"content_id"`
	Position   time.Duration `json:"position"`
}

// NewOp builds a versioned, tagged sync Op ready for publication.
func NewOp(kind OpKind, userID string, payload interface{}, ts hlc.Timestamp, replica, tag string) (Op, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Op{}, err
	}
	return Op{
		Version:   OpVersion,
		Kind:      kind,
		UserID:    userID,
		Tag:       tag,
		Payload:   raw,
		Timestamp: ts,
		Replica:   replica,
	}, nil
}

// Command is the Command Router's wire payload published on a device
// channel. CommandRouter stamps Expiry; fanout only transports it.
type Command struct {
	Version  int             `json:"version"`
	UserID   string          `json:"user_id"`
	IssuerID string          `json:"issuer_id"`
	TargetID string          `json:"target_id"`
	Variant  string          `json:"variant"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	IssuedAt hlc.Timestamp   `json:"issued_at"`
	Expiry   hlc.Timestamp   `json:"expiry"`
}
