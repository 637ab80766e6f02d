// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// QueueDrainer performs one offline-queue drain cycle: dequeuing pending
// entries oldest-first and republishing each to the Fan-Out Bus.
//
// This interface allows the OfflineQueueService to work with
// internal/offlinequeue.Drain without importing that package directly,
// avoiding a direct dependency between supervisor and offlinequeue.
type QueueDrainer interface {
	Drain(ctx context.Context) (delivered, deferred, dropped int, err error)
}

// OfflineQueueServiceConfig holds configuration for the offline-queue drain service.
type OfflineQueueServiceConfig struct {
	// DrainInterval is how often a drain cycle runs. Default: 30s.
	DrainInterval time.Duration
}

// OfflineQueueService wraps the offline-queue drain loop as a supervised
// service in the sync layer: on every tick it attempts to republish every
// queued op/command to the Fan-Out Bus, honoring backoff and lease state.
//
// Example usage:
//
//	svc := services.NewOfflineQueueService(drainer, cfg, logger)
//	tree.AddSyncService(svc)
type OfflineQueueService struct {
	drainer QueueDrainer
	config  OfflineQueueServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewOfflineQueueService creates a new offline-queue drain service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOfflineQueueService(drainer QueueDrainer, cfg OfflineQueueServiceConfig, logger zerolog.Logger) *OfflineQueueService {
	return &OfflineQueueService{
		drainer: drainer,
		config:  cfg,
		logger:  logger.With().Str("service", "offlinequeue-drain").Logger(),
		name:    "offlinequeue-drain-loop",
	}
}

// Serve implements suture.Service. It runs a drain cycle immediately, then
// on every tick of DrainInterval, until ctx is canceled.
func (s *OfflineQueueService) Serve(ctx context.Context) error {
	if s.config.DrainInterval <= 0 {
		s.config.DrainInterval = 30 * time.Second
	}

	s.logger.Info().Dur("drain_interval", s.config.DrainInterval).Msg("offline queue drain loop starting")

	s.drain(ctx)

	ticker := time.NewTicker(s.config.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("offline queue drain loop shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.drain(ctx)
		}
	}
}

func (s *OfflineQueueService) drain(ctx context.Context) {
	delivered, deferred, dropped, err := s.drainer.Drain(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("drain cycle failed")
		return
	}
	s.logger.Debug().
		Int("delivered", delivered).
		Int("deferred", deferred).
		Int("dropped", dropped).
		Msg("drain cycle complete")
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *OfflineQueueService) String() string {
	return s.name
}
