// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package services

import (
	"context"
)

// ContextHub interface matches *fanout.Hub's RunWithContext method.
//
// This interface allows the FanoutHubService to work with the Hub without
// importing the fanout package, avoiding circular dependencies.
//
// Satisfied by *fanout.Hub from internal/fanout/hub.go.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// FanoutHubService wraps the Fan-Out Bus's device hub as a supervised
// service in the sync layer.
//
// The hub's RunWithContext method already implements the suture.Service
// pattern, so this wrapper simply delegates to it and provides a name
// for logging.
//
// Example usage:
//
//	hub := fanout.NewHub()
//	svc := services.NewFanoutHubService(hub)
//	tree.AddSyncService(svc)
type FanoutHubService struct {
	hub  ContextHub
	name string
}

// NewFanoutHubService creates a new fan-out hub service wrapper.
func NewFanoutHubService(hub ContextHub) *FanoutHubService {
	return &FanoutHubService{
		hub:  hub,
		name: "fanout-hub",
	}
}

// Serve implements suture.Service.
//
// This method delegates to hub.RunWithContext which:
//  1. Processes device registration/unregistration and broadcasts
//  2. Returns when the context is canceled
//  3. Gracefully closes all device channels on shutdown
//
// The method returns ctx.Err() on normal shutdown.
func (w *FanoutHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (w *FanoutHubService) String() string {
	return w.name
}
