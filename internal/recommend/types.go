// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package recommend is the SONA personalization engine's Candidate
// Generators (component I) and Ranker (component K): for a user, it fans
// out to five generator kinds, fuses their candidates through an
// experiment-arm-weighted, LoRA-adjusted score, diversifies with MMR, and
// backfills with cold-start candidates if the ranked list falls short.
package recommend

import "time"

// GeneratorKind names one of the five candidate-generation strategies.
type GeneratorKind string

const (
	Collaborative GeneratorKind = "collaborative"  // co-interaction / covisitation based
	ContentBased  GeneratorKind = "content_based"   // embedding-neighborhood based
	GraphBased    GeneratorKind = "graph_based"      // genre/people graph walk
	ContextAware  GeneratorKind = "context_aware"    // time-of-day / session-mood adjusted
	ColdStart     GeneratorKind = "cold_start"       // no-history fallback (popularity)
)

// Candidate is one generator's proposed title for a user, with its raw
// (un-fused) relevance score in [0, 1].
type Candidate struct {
	ContentID string
	Score     float64
	Source    GeneratorKind
}

// ScoredItem is a candidate after fusion, LoRA adjustment, and diversity
// reranking - what the Ranker returns.
type ScoredItem struct {
	ContentID string
	Score     float64
	Genres    []string             // carried through for MMR's similarity metric
	Breakdown map[GeneratorKind]float64 // per-generator contribution, for observability
}

// Request is one ranking call.
type Request struct {
	UserID   string
	Seed     []string // recently-watched/seed content IDs, if any (for content-based/graph lanes)
	Limit    int
	Now      time.Time
	Exclude  map[string]struct{}
}
