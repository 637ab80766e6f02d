// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package recommend implements the personalization engine's candidate
// generation and ranking stage:
//
//	five Generators -> fused, arm-weighted score -> LoRA residual ->
//	    MMR diversity -> cold-start backfill -> exposure log
//
// Generators are thin adapters over externally-supplied lookups
// (covisitation counts, embedding neighbors, genre-graph hits, context
// weighting, popularity) so this package has no direct dependency on the
// catalog or vector index; the composition root wires those at startup.
package recommend
