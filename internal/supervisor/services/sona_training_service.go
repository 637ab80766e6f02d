// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package services provides Suture service wrappers for various application components.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SonaTrainer defines the interface for the SONA training loop: fitting or
// refreshing LoRA adapters and flushing pending experiment-exposure records.
// This allows the service to work with the training loop without circular
// imports against internal/lora / internal/experiment.
type SonaTrainer interface {
	// Train runs one training/flush cycle.
	Train(ctx context.Context) error
}

// SonaTrainingServiceConfig holds configuration for the SONA training service.
type SonaTrainingServiceConfig struct {
	// TrainOnStartup triggers a cycle as soon as the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to run a training/flush cycle.
	TrainInterval time.Duration
}

// SonaTrainingService wraps the SONA training loop for Suture supervision.
// It manages the training lifecycle and periodic retraining/exposure-flush.
type SonaTrainingService struct {
	trainer SonaTrainer
	config  SonaTrainingServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewSonaTrainingService creates a new SONA training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSonaTrainingService(trainer SonaTrainer, cfg SonaTrainingServiceConfig, logger zerolog.Logger) *SonaTrainingService {
	return &SonaTrainingService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "sona-training").Logger(),
		name:    "sona-training-service",
	}
}

// Serve implements the suture.Service interface.
// It manages the training loop for the SONA personalization engine.
func (s *SonaTrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("sona training service starting")

	if s.config.TrainOnStartup {
		s.logger.Info().Msg("training on startup")
		if err := s.train(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial training failed (will retry on schedule)")
		}
	}

	if s.config.TrainInterval <= 0 {
		s.config.TrainInterval = 24 * time.Hour
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	s.logger.Info().Msg("sona training service running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sona training service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled training triggered")
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled training failed")
			}
		}
	}
}

// train performs one training cycle with a bounded timeout so a stuck
// trainer cannot block shutdown indefinitely.
func (s *SonaTrainingService) train(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	start := time.Now()
	s.logger.Info().Msg("starting training cycle")

	if err := s.trainer.Train(trainCtx); err != nil {
		return err
	}

	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("training cycle complete")

	return nil
}

// String returns the service name for logging.
func (s *SonaTrainingService) String() string {
	return s.name
}
