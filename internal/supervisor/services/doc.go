// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

/*
Package services provides suture.Service wrappers for the gateway's components.

This package adapts existing application components to the suture v4 supervision
model, translating various lifecycle patterns (Start/Stop, Run, ListenAndServe)
into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (Start/Stop/ticker loop to Serve pattern)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

Fan-Out Hub (FanoutHubService):
  - Wraps internal/fanout.Hub's RunWithContext
  - Handles device connection cleanup on shutdown
  - Belongs to the sync layer

Offline Queue (OfflineQueueService):
  - Runs internal/offlinequeue.Drain on a fixed interval
  - Republishes queued ops/commands to the Fan-Out Bus, honoring backoff/lease state
  - Belongs to the sync layer

SONA Training (SonaTrainingService):
  - Wraps the SONA training loop (LoRA adapter refresh, experiment-exposure flush)
  - Runs on startup (optional) and on a configurable interval
  - Belongs to the sona layer

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Retained as a generic wrapper; no HTTP route surface is registered in this
    module (HTTP/JSON route glue is out of scope)

# Usage Example

Creating and registering services:

	import (
	    "time"

	    "github.com/mediagateway/gateway/internal/supervisor"
	    "github.com/mediagateway/gateway/internal/supervisor/services"
	)

	func setupSupervisor(hub *fanout.Hub, drainer services.QueueDrainer, trainer services.SonaTrainer) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    fanoutSvc := services.NewFanoutHubService(hub)
	    tree.AddSyncService(fanoutSvc)

	    queueSvc := services.NewOfflineQueueService(drainer, services.OfflineQueueServiceConfig{}, zlog)
	    tree.AddSyncService(queueSvc)

	    sonaSvc := services.NewSonaTrainingService(trainer, services.SonaTrainingServiceConfig{}, zlog)
	    tree.AddSonaService(sonaSvc)

	    tree.Serve(ctx)
	}

# Lifecycle Patterns

The package handles two common lifecycle patterns:

Run-until-canceled Pattern (FanoutHubService):

	func (s *Service) Serve(ctx context.Context) error {
	    return s.component.RunWithContext(ctx)
	}

Ticker Pattern (OfflineQueueService, SonaTrainingService):

	func (s *Service) Serve(ctx context.Context) error {
	    s.runOnce(ctx)
	    ticker := time.NewTicker(s.interval)
	    defer ticker.Stop()
	    for {
	        select {
	        case <-ctx.Done():
	            return ctx.Err()
	        case <-ticker.C:
	            s.runOnce(ctx)
	        }
	    }
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

A single failed drain or training cycle is logged and does not stop the
service; only a failure to even start (e.g. the fan-out hub's RunWithContext
returning a non-context error) propagates as a restart-triggering error.

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *FanoutHubService) String() string {
	    return "fanout-hub"
	}

# Thread Safety

All service wrappers are safe for concurrent use:
  - State is protected by mutexes where needed
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/fanout: Fan-Out Bus hub implementation
  - internal/offlinequeue: durable offline queue and drain loop
*/
package services
