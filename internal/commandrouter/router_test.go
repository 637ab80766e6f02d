// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package commandrouter

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/mediagateway/gateway/internal/fanout"
	"github.com/mediagateway/gateway/internal/gwerrors"
	"github.com/mediagateway/gateway/internal/hlc"
)

func newTestRouter(t *testing.T) (*Router, *fanout.Hub) {
	t.Helper()
	hub := fanout.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)

	bus := fanout.NewBus(hub, nil, nil)
	clock := hlc.New(hlc.Timestamp{})
	return New(bus, clock), hub
}

func TestSendDeliversPlayToCapableDevice(t *testing.T) {
	router, hub := newTestRouter(t)
	ch := hub.Subscribe("user-1", "device-b")

	target := Device{ID: "device-b", UserID: "user-1", Capabilities: map[Capability]bool{CapabilityPlay: true}}
	require.NoError(t, router.Send(context.Background(), "device-a", target, VariantPlay, struct{}{}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command delivery")
	}
}

func TestSendRejectsMissingPlayCapability(t *testing.T) {
	router, _ := newTestRouter(t)
	target := Device{ID: "device-b", UserID: "user-1", Capabilities: map[Capability]bool{}}

	err := router.Send(context.Background(), "device-a", target, VariantPlay, struct{}{})
	require.ErrorIs(t, err, gwerrors.ErrCapabilityMissing)
}

func TestSendRejectsMissingSeekCapability(t *testing.T) {
	router, _ := newTestRouter(t)
	target := Device{ID: "device-b", UserID: "user-1", Capabilities: map[Capability]bool{CapabilityPlay: true}}

	err := router.Send(context.Background(), "device-a", target, VariantSeek, SeekPayload{OffsetSeconds: 30})
	require.ErrorIs(t, err, gwerrors.ErrCapabilityMissing)
}

func TestSendRejectsCastWithoutContentID(t *testing.T) {
	router, _ := newTestRouter(t)
	target := Device{ID: "device-b", UserID: "user-1", Capabilities: map[Capability]bool{CapabilityCast: true}}

	err := router.Send(context.Background(), "device-a", target, VariantCast, CastPayload{})
	require.ErrorIs(t, err, gwerrors.ErrCapabilityMissing)
}

func TestSendAcceptsCastWithContentID(t *testing.T) {
	router, hub := newTestRouter(t)
	ch := hub.Subscribe("user-1", "device-b")
	target := Device{ID: "device-b", UserID: "user-1", Capabilities: map[Capability]bool{CapabilityCast: true}}

	require.NoError(t, router.Send(context.Background(), "device-a", target, VariantCast, CastPayload{ContentID: "movie-1"}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cast command delivery")
	}
}

func TestIsExpiredAfterFiveSeconds(t *testing.T) {
	cmd := fanout.Command{
		IssuedAt: hlc.Timestamp{Physical: 1000},
		Expiry:   hlc.Timestamp{Physical: 6000},
	}
	require.False(t, IsExpired(cmd, hlc.Timestamp{Physical: 6000}))
	require.True(t, IsExpired(cmd, hlc.Timestamp{Physical: 6001}))
	require.False(t, IsExpired(cmd, hlc.Timestamp{Physical: 5999}))
}

func TestSendStampsFiveSecondExpiry(t *testing.T) {
	router, hub := newTestRouter(t)
	ch := hub.Subscribe("user-1", "device-b")
	target := Device{ID: "device-b", UserID: "user-1", Capabilities: map[Capability]bool{CapabilityPlay: true}}

	require.NoError(t, router.Send(context.Background(), "device-a", target, VariantPlay, struct{}{}))

	env := <-ch
	var cmd fanout.Command
	require.NoError(t, json.Unmarshal(env.Payload, &cmd))
	require.Equal(t, cmd.IssuedAt.Physical+commandTTLMillis, cmd.Expiry.Physical)
}
