// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package experiment

import "time"

// VariantSpec declares one arm of an experiment at creation time. Weight is
// relative, not a fraction: {control: 1, treatment: 1} and {control: 50,
// treatment: 50} bucket identically.
type VariantSpec struct {
	Key    string
	Weight float64
}

// Experiment is a registered A/B test.
type Experiment struct {
	ID        string
	Key       string
	Name      string
	Active    bool
	Variants  []VariantSpec
	CreatedAt time.Time
}

// Assignment is one user's sticky bucket within an experiment.
type Assignment struct {
	ExperimentKey string
	UserID        string
	VariantKey    string
	AssignedAt    time.Time
}

// Conversion is one recorded goal event attributed to a user's assignment.
type Conversion struct {
	ExperimentKey string
	UserID        string
	VariantKey    string
	EventName     string
	Value         float64
	ConvertedAt   time.Time
}
