// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

//go:build !nats

package fanout

import (
	"context"
	"fmt"
)

// NATSConfig is a stub for non-NATS builds.
type NATSConfig struct {
	URL string
}

// DefaultNATSConfig is a stub for non-NATS builds.
func DefaultNATSConfig(url string) NATSConfig { return NATSConfig{URL: url} }

// NATSTransport is a stub for non-NATS builds; construct it and every call
// returns an error, matching the teacher's NATSSubscriber stub pattern.
type NATSTransport struct{}

// NewNATSTransport always fails in non-NATS builds.
func NewNATSTransport(_ NATSConfig) (*NATSTransport, error) {
	return nil, fmt.Errorf("fanout: NATS support not enabled (build with -tags nats)")
}

func (t *NATSTransport) PublishSync(_ context.Context, _ string, _ []byte) error {
	return fmt.Errorf("fanout: NATS support not enabled (build with -tags nats)")
}

func (t *NATSTransport) PublishCommand(_ context.Context, _, _ string, _ []byte) error {
	return fmt.Errorf("fanout: NATS support not enabled (build with -tags nats)")
}

func (t *NATSTransport) Close() error { return nil }

var _ CrossInstance = (*NATSTransport)(nil)
