// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package commandrouter is the Command Router (component P):
// cross-device remote-control message delivery with a 5-second TTL.
// Validation and expiry-stamping are pure; delivery is delegated to
// internal/fanout. Commands are fire-and-forget — idempotence on the
// receiving device (seek is idempotent by offset, play-while-playing is a
// no-op) is out of this package's scope.
package commandrouter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/mediagateway/gateway/internal/fanout"
	"github.com/mediagateway/gateway/internal/gwerrors"
	"github.com/mediagateway/gateway/internal/hlc"
)

// Variant identifies a remote-control command.
type Variant string

const (
	VariantPlay  Variant = "play"
	VariantPause Variant = "pause"
	VariantSeek  Variant = "seek-to-offset"
	VariantCast  Variant = "cast-to"
)

// commandTTL is the fixed expiry window stamped onto every command (spec §4.10).
const commandTTLMillis = 5000

// Capability is a single device feature flag.
type Capability string

const (
	CapabilityPlay Capability = "supports-play"
	CapabilityCast Capability = "supports-cast"
	CapabilitySeek Capability = "supports-seek"
)

// Device is the subset of device state the router needs to validate a
// command against: its capability set.
type Device struct {
	ID           string
	UserID       string
	Capabilities map[Capability]bool
}

// HasCapability reports whether d supports cap.
func (d Device) HasCapability(cap Capability) bool {
	return d.Capabilities[cap]
}

// SeekPayload is the Payload shape for VariantSeek.
type SeekPayload struct {
	OffsetSeconds float64 `json:"offset_seconds"`
}

// CastPayload is the Payload shape for VariantCast.
type CastPayload struct {
	ContentID     string  `json:"content_id"`
	OffsetSeconds float64 `json:"offset_seconds"`
}

// Router validates and dispatches remote commands between devices of the
// same user.
type Router struct {
	bus   *fanout.Bus
	clock *hlc.Clock
}

// New constructs a Router publishing through bus, stamping commands with
// timestamps from clock.
func New(bus *fanout.Bus, clock *hlc.Clock) *Router {
	return &Router{bus: bus, clock: clock}
}

// Send validates target's capability against variant, stamps the command
// with an issuer HLC and a 5s expiry, and publishes it to the target
// device's channel. It returns gwerrors.InvalidArgument (CAPABILITY_MISSING)
// if target cannot execute variant.
func (r *Router) Send(ctx context.Context, issuerDeviceID string, target Device, variant Variant, payload interface{}) error {
	if err := requireCapability(target, variant, payload); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return gwerrors.New(gwerrors.InvalidArgument, "commandrouter.Send", err)
	}

	issuedAt := r.clock.Now()
	expiry := hlc.Timestamp{Physical: issuedAt.Physical + commandTTLMillis, Logical: issuedAt.Logical}

	cmd := fanout.Command{
		Version:  fanout.OpVersion,
		UserID:   target.UserID,
		IssuerID: issuerDeviceID,
		TargetID: target.ID,
		Variant:  string(variant),
		Payload:  raw,
		IssuedAt: issuedAt,
		Expiry:   expiry,
	}

	if err := r.bus.PublishCommand(ctx, cmd); err != nil {
		return gwerrors.New(gwerrors.Internal, "commandrouter.Send", err)
	}
	return nil
}

// requireCapability implements spec §4.10 step 1: play needs supports-play,
// seek needs supports-seek, cast needs supports-cast and a playable
// content ID in its payload.
func requireCapability(target Device, variant Variant, payload interface{}) error {
	switch variant {
	case VariantPlay, VariantPause:
		if !target.HasCapability(CapabilityPlay) {
			return gwerrors.Newf(gwerrors.CapabilityMissing, "commandrouter.Send", "target device %s lacks supports-play", target.ID)
		}
	case VariantSeek:
		if !target.HasCapability(CapabilitySeek) {
			return gwerrors.Newf(gwerrors.CapabilityMissing, "commandrouter.Send", "target device %s lacks supports-seek", target.ID)
		}
	case VariantCast:
		if !target.HasCapability(CapabilityCast) {
			return gwerrors.Newf(gwerrors.CapabilityMissing, "commandrouter.Send", "target device %s lacks supports-cast", target.ID)
		}
		cast, ok := payload.(CastPayload)
		if !ok || cast.ContentID == "" {
			return gwerrors.Newf(gwerrors.CapabilityMissing, "commandrouter.Send", "cast requires a playable content ID")
		}
	default:
		return gwerrors.Newf(gwerrors.InvalidArgument, "commandrouter.Send", "unknown command variant %q", variant)
	}
	return nil
}

// IsExpired reports whether cmd's expiry has passed as of now, per spec
// §4.10's receiver-side check: discard if now-HLC > expiry.
func IsExpired(cmd fanout.Command, now hlc.Timestamp) bool {
	return hlc.Compare(now, cmd.Expiry) > 0
}
