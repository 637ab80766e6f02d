// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package experiment

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/mediagateway/gateway/internal/gwerrors"
)

// CreateExperiment registers a new experiment with its variant weights. Key
// must be unique; re-registering an existing key is an error rather than a
// silent update, since redefining variants mid-flight would break the
// stickiness guarantee for users already assigned.
func (s *Store) CreateExperiment(ctx context.Context, key, name string, variants []VariantSpec) (*Experiment, error) {
	if key == "" || len(variants) < 2 {
		return nil, gwerrors.Newf(gwerrors.InvalidArgument, "experiment.CreateExperiment", "key required and at least two variants")
	}
	for _, v := range variants {
		if v.Weight <= 0 {
			return nil, gwerrors.Newf(gwerrors.InvalidArgument, "experiment.CreateExperiment", "variant %q has non-positive weight", v.Key)
		}
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "experiment.CreateExperiment", err)
	}
	defer tx.Rollback()

	id := uuid.New().String()
	createdAt := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `INSERT INTO experiments (id, key, name, active, created_at) VALUES (?, ?, ?, true, ?)`,
		id, key, name, createdAt); err != nil {
		return nil, gwerrors.New(gwerrors.Conflict, "experiment.CreateExperiment", err)
	}
	for _, v := range variants {
		if _, err := tx.ExecContext(ctx, `INSERT INTO experiment_variants (experiment_id, variant_key, weight) VALUES (?, ?, ?)`,
			id, v.Key, v.Weight); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "experiment.CreateExperiment", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "experiment.CreateExperiment", err)
	}

	return &Experiment{ID: id, Key: key, Name: name, Active: true, Variants: variants, CreatedAt: createdAt}, nil
}

// Get loads an experiment and its variants by key.
func (s *Store) Get(ctx context.Context, key string) (*Experiment, error) {
	var exp Experiment
	row := s.conn.QueryRowContext(ctx, `SELECT id, key, name, active, created_at FROM experiments WHERE key = ?`, key)
	if err := row.Scan(&exp.ID, &exp.Key, &exp.Name, &exp.Active, &exp.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, gwerrors.New(gwerrors.NotFound, "experiment.Get", err)
		}
		return nil, gwerrors.New(gwerrors.Internal, "experiment.Get", err)
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT variant_key, weight FROM experiment_variants WHERE experiment_id = ? ORDER BY variant_key`, exp.ID)
	if err != nil {
		return nil, gwerrors.New(gwerrors.Internal, "experiment.Get", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v VariantSpec
		if err := rows.Scan(&v.Key, &v.Weight); err != nil {
			return nil, gwerrors.New(gwerrors.Internal, "experiment.Get", err)
		}
		exp.Variants = append(exp.Variants, v)
	}
	return &exp, rows.Err()
}

// Assign returns the user's sticky variant for the experiment, assigning and
// persisting it on first call. The bucket is a deterministic hash of
// (experiment key, user id), so concurrent callers racing on first assignment
// converge on the same variant key even though only one of their INSERTs wins.
func (s *Store) Assign(ctx context.Context, experimentKey, userID string) (string, error) {
	if existing, err := s.lookupAssignment(ctx, experimentKey, userID); err == nil {
		return existing, nil
	} else if gwerrors.KindOf(err) != gwerrors.NotFound {
		return "", err
	}

	exp, err := s.Get(ctx, experimentKey)
	if err != nil {
		return "", err
	}
	if !exp.Active {
		return "", gwerrors.Newf(gwerrors.InvalidArgument, "experiment.Assign", "experiment %q is not active", experimentKey)
	}

	variantKey := bucketVariant(exp.Variants, experimentKey, userID)
	_, err = s.conn.ExecContext(ctx, `INSERT INTO experiment_assignments (experiment_id, user_id, variant_key)
		VALUES (?, ?, ?) ON CONFLICT (experiment_id, user_id) DO NOTHING`, exp.ID, userID, variantKey)
	if err != nil {
		return "", gwerrors.New(gwerrors.Internal, "experiment.Assign", err)
	}

	// Another goroutine may have won the race; re-read so every caller
	// observes the one variant that was actually persisted.
	return s.lookupAssignment(ctx, experimentKey, userID)
}

func (s *Store) lookupAssignment(ctx context.Context, experimentKey, userID string) (string, error) {
	var variantKey string
	row := s.conn.QueryRowContext(ctx, `SELECT a.variant_key FROM experiment_assignments a
		JOIN experiments e ON e.id = a.experiment_id
		WHERE e.key = ? AND a.user_id = ?`, experimentKey, userID)
	if err := row.Scan(&variantKey); err != nil {
		if err == sql.ErrNoRows {
			return "", gwerrors.New(gwerrors.NotFound, "experiment.lookupAssignment", err)
		}
		return "", gwerrors.New(gwerrors.Internal, "experiment.lookupAssignment", err)
	}
	return variantKey, nil
}

// RecordExposure logs that the user actually observed their assigned
// variant. Idempotent: a user exposed twice in one experiment logs once.
func (s *Store) RecordExposure(ctx context.Context, experimentKey, userID string) error {
	exp, err := s.Get(ctx, experimentKey)
	if err != nil {
		return err
	}
	variantKey, err := s.lookupAssignment(ctx, experimentKey, userID)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `INSERT INTO experiment_exposures (experiment_id, user_id, variant_key)
		VALUES (?, ?, ?) ON CONFLICT (experiment_id, user_id) DO NOTHING`, exp.ID, userID, variantKey)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "experiment.RecordExposure", err)
	}
	return nil
}

// RecordConversion appends a conversion event for the user's assigned
// variant. Unlike exposures, conversions are not deduplicated: a user can
// convert on the same goal more than once (e.g. "added to watchlist" fired
// per item), and each occurrence is a separate data point for analysis.
func (s *Store) RecordConversion(ctx context.Context, experimentKey, userID, eventName string, value float64) error {
	exp, err := s.Get(ctx, experimentKey)
	if err != nil {
		return err
	}
	variantKey, err := s.lookupAssignment(ctx, experimentKey, userID)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `INSERT INTO experiment_conversions
		(id, experiment_id, user_id, variant_key, event_name, value) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), exp.ID, userID, variantKey, eventName, value)
	if err != nil {
		return gwerrors.New(gwerrors.Internal, "experiment.RecordConversion", err)
	}
	return nil
}

// bucketVariant deterministically maps (experimentKey, userID) onto one of
// variants, weighted. Pure and side-effect free so assignment is reproducible
// without touching storage, e.g. for client-side pre-assignment previews.
func bucketVariant(variants []VariantSpec, experimentKey, userID string) string {
	h := xxhash.Sum64String(experimentKey + "|" + userID)
	point := float64(h) / float64(math.MaxUint64)

	var total float64
	for _, v := range variants {
		total += v.Weight
	}

	var cumulative float64
	for _, v := range variants {
		cumulative += v.Weight / total
		if point < cumulative {
			return v.Key
		}
	}
	return variants[len(variants)-1].Key
}
