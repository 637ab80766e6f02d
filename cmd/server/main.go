// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package main is the entry point for the media gateway server.
//
// The gateway has no HTTP surface of its own (route glue is out of scope);
// main wires storage, the discovery engine, the SONA personalization
// engine, and the cross-device sync core behind a suture supervision tree
// and blocks until a shutdown signal arrives.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 load (env vars, config file, defaults)
//  2. Storage: one DuckDB file per store (catalog, vector index, LoRA
//     adapters, experiments, CRDT op-logs) plus the BadgerDB offline queue
//  3. Discovery engine: embedding client, intent parser, hybrid search
//     orchestrator
//  4. SONA engine: candidate generators, ranker, training loop
//  5. Sync core: HLC clock, fan-out hub/bus, command router, offline-queue
//     drain loop
//  6. Supervisor tree: all of the above registered as suture services
//
// # Build Tags
//
//	go build -tags "nats" ./cmd/server   # enable NATS/JetStream cross-instance delivery
//
// Without the tag, fanout.NewNATSTransport returns a stub and cross-device
// sync degrades to single-instance, in-process delivery plus the offline
// queue.
//
// # Exit Codes
//
//	0  clean shutdown
//	1  configuration load failure
//	2  storage initialization failure
//	3  supervisor tree failed to start
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediagateway/gateway/internal/config"
	"github.com/mediagateway/gateway/internal/logging"
	"github.com/mediagateway/gateway/internal/supervisor"
	"github.com/mediagateway/gateway/internal/supervisor/services"
)

const (
	exitOK                = 0
	exitConfigFailure     = 1
	exitStorageFailure    = 2
	exitSupervisorFailure = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		return exitConfigFailure
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("starting media gateway")

	stores, err := openStores(&cfg.Database)
	if err != nil {
		logging.Error().Err(err).Msg("failed to open storage")
		return exitStorageFailure
	}
	defer stores.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := wireEngine(cfg, stores)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Error().Err(err).Msg("failed to create supervisor tree")
		return exitSupervisorFailure
	}

	tree.AddSyncService(services.NewFanoutHubService(engine.hub))
	tree.AddSyncService(services.NewOfflineQueueService(engine.queueDrainer(), services.OfflineQueueServiceConfig{}, logging.Logger()))
	tree.AddSonaService(services.NewSonaTrainingService(engine.sonaTrainer(), services.SonaTrainingServiceConfig{TrainOnStartup: true}, logging.Logger()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	logging.Info().Msg("media gateway stopped gracefully")
	return exitOK
}
