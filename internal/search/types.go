// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package search is the Hybrid Search Orchestrator (component E) and its
// three lanes: the semantic lane (via vectorindex+embedding), the Keyword
// Searcher (F), and the Graph Searcher (G), fused by Reciprocal Rank Fusion
// and served through the Result Cache (H). The request lifecycle mirrors
// the teacher's internal/recommend.Engine.Recommend: prepare request, check
// cache, fan out to independent lanes, combine, cache the response.
package search

import "time"

// Request is one search call.
type Request struct {
	Query    string
	UserID   string
	Limit    int
	Now      time.Time // defaults to time.Now() if zero; overridable for tests
	Exclude  map[string]struct{}
}

// Result is one fused, ranked title.
type Result struct {
	ContentID string  `json:"content_id"`
	Score     float64 `json:"score"`
	Lanes     []string `json:"lanes"` // which lane(s) contributed, for observability
}

// Response is the orchestrator's output.
type Response struct {
	Results   []Result `json:"results"`
	Degraded  bool     `json:"degraded"`   // true if one or more lanes failed/timed out
	CacheHit  bool     `json:"cache_hit"`
	TookMS    int64    `json:"took_ms"`
}

// laneResult is one lane's ranked content IDs, best first.
type laneResult struct {
	name string
	ids  []string
	err  error
}
