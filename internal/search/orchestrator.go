// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mediagateway/gateway/internal/cache"
	"github.com/mediagateway/gateway/internal/catalog"
	"github.com/mediagateway/gateway/internal/intent"
	"github.com/mediagateway/gateway/internal/logging"
)

// rrfK is Reciprocal Rank Fusion's smoothing constant; a higher K flattens
// the contribution of low ranks, per the standard RRF formulation.
const rrfK = 60

// Lane weights in the fused score, summing to 1.0.
const (
	weightSemantic = 0.4
	weightKeyword  = 0.3
	weightGraph    = 0.3
)

const laneTimeout = 100 * time.Millisecond

// SemanticSearch returns content IDs ranked by semantic similarity to query.
type SemanticSearch func(ctx context.Context, query string) ([]string, error)

// KeywordSearch returns content IDs ranked by keyword/substring match.
type KeywordSearch func(ctx context.Context, query string) ([]string, error)

// GraphSearch returns content IDs ranked by graph/genre-neighborhood proximity.
type GraphSearch func(ctx context.Context, parsed intent.Intent) ([]string, error)

// Personalizer supplies a per-user residual score in [-1, 1] for each
// candidate, added to its fused rank score before truncation. A nil
// Personalizer (or one returning no entries) leaves candidates unadjusted.
type Personalizer func(ctx context.Context, userID string, ids []string) (map[string]float64, error)

// ContentLookup is the subset of catalog.Store the orchestrator needs for
// freshness decay and the popularity fallback.
type ContentLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*catalog.Content, error)
	TopPopular(ctx context.Context, limit int) ([]string, error)
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Semantic     SemanticSearch
	Keyword      KeywordSearch
	Graph        GraphSearch
	Personalize  Personalizer
	Content      ContentLookup
	IntentParser *intent.Parser

	// FreshnessHalfLife and FreshnessFloor parameterize the quality-score
	// decay applied on top of the fused rank score (spec's resolved Open
	// Question: lambda = ln2/180d, floor 0.5).
	FreshnessHalfLife time.Duration
	FreshnessFloor    float64

	DefaultLimit int
}

// Orchestrator is the Hybrid Search Orchestrator (E), fronted by the Result
// Cache (H).
type Orchestrator struct {
	cfg   Config
	cache *cache.Cache
}

// New builds an Orchestrator with a 30-minute default result cache TTL.
func New(cfg Config) *Orchestrator {
	if cfg.FreshnessHalfLife == 0 {
		cfg.FreshnessHalfLife = 180 * 24 * time.Hour
	}
	if cfg.FreshnessFloor == 0 {
		cfg.FreshnessFloor = 0.5
	}
	if cfg.DefaultLimit == 0 {
		cfg.DefaultLimit = 20
	}
	return &Orchestrator{cfg: cfg, cache: cache.New(30 * time.Minute)}
}

func fingerprint(req Request) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(req.Query)) + "|" + req.UserID))
	return hex.EncodeToString(sum[:])
}

// Search runs the full pipeline: cache check, intent parsing, three
// independent lanes each bounded by its own 100ms timeout, RRF fusion,
// personalization residual, freshness decay, truncation with a stable
// tie-break, and cache storage. If every lane fails it serves the
// popularity fallback and flags the response degraded.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if req.Now.IsZero() {
		req.Now = start
	}
	if req.Limit <= 0 {
		req.Limit = o.cfg.DefaultLimit
	}

	key := fingerprint(req)
	if v, ok := o.cache.Get(key); ok {
		resp := v.(Response)
		resp.CacheHit = true
		resp.TookMS = time.Since(start).Milliseconds()
		return &resp, nil
	}

	var parsed intent.Intent
	if o.cfg.IntentParser != nil {
		parsed = o.cfg.IntentParser.Parse(ctx, req.Query)
	}

	lanes := o.runLanes(ctx, req, parsed)

	degraded := false
	fused := map[string]float64{}
	contributors := map[string][]string{}
	anySucceeded := false
	for _, lr := range lanes {
		if lr.err != nil {
			degraded = true
			logging.Debug().Str("lane", lr.name).Err(lr.err).Msg("search: lane failed")
			continue
		}
		anySucceeded = true
		weight := laneWeight(lr.name)
		for rank, id := range lr.ids {
			fused[id] += weight / float64(rrfK+rank+1)
			contributors[id] = append(contributors[id], lr.name)
		}
	}

	if !anySucceeded {
		return o.popularityFallback(ctx, req, start)
	}

	ids := make([]string, 0, len(fused))
	for id := range fused {
		ids = append(ids, id)
	}

	if o.cfg.Personalize != nil {
		residual, err := o.cfg.Personalize(ctx, req.UserID, ids)
		if err != nil {
			degraded = true
			logging.Debug().Err(err).Msg("search: personalization residual failed")
		} else {
			for id, r := range residual {
				fused[id] += r
			}
		}
	}

	if o.cfg.Content != nil {
		metas, err := o.cfg.Content.GetMany(ctx, ids)
		if err != nil {
			degraded = true
		} else {
			for id, meta := range metas {
				decay := meta.QualityScore(req.Now, o.cfg.FreshnessHalfLife, o.cfg.FreshnessFloor)
				fused[id] *= decay
			}
		}
	}

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if req.Exclude != nil {
			if _, skip := req.Exclude[id]; skip {
				continue
			}
		}
		results = append(results, Result{ContentID: id, Score: fused[id], Lanes: contributors[id]})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ContentID < results[j].ContentID // deterministic tie-break
	})
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	resp := Response{Results: results, Degraded: degraded}
	o.cache.SetWithTTL(key, resp, cacheTTL(degraded))
	resp.TookMS = time.Since(start).Milliseconds()
	return &resp, nil
}

// cacheTTL returns the result cache's TTL: 30 minutes for a fully healthy
// response, 10 minutes for a degraded one so a recovered lane is retried
// sooner, matching the contract's three distinct TTL tiers (the third, 1h,
// applies to the popularity fallback in popularityFallback).
func cacheTTL(degraded bool) time.Duration {
	if degraded {
		return 10 * time.Minute
	}
	return 30 * time.Minute
}

func laneWeight(name string) float64 {
	switch name {
	case "semantic":
		return weightSemantic
	case "keyword":
		return weightKeyword
	case "graph":
		return weightGraph
	default:
		return 0
	}
}

func (o *Orchestrator) runLanes(ctx context.Context, req Request, parsed intent.Intent) []laneResult {
	var wg sync.WaitGroup
	out := make([]laneResult, 3)

	run := func(i int, name string, fn func(context.Context) ([]string, error)) {
		defer wg.Done()
		if fn == nil {
			out[i] = laneResult{name: name, err: fmt.Errorf("%s lane not configured", name)}
			return
		}
		lctx, cancel := context.WithTimeout(ctx, laneTimeout)
		defer cancel()
		ids, err := fn(lctx)
		out[i] = laneResult{name: name, ids: ids, err: err}
	}

	wg.Add(3)
	go run(0, "semantic", func(c context.Context) ([]string, error) { return o.cfg.Semantic(c, req.Query) })
	go run(1, "keyword", func(c context.Context) ([]string, error) { return o.cfg.Keyword(c, req.Query) })
	go run(2, "graph", func(c context.Context) ([]string, error) { return o.cfg.Graph(c, parsed) })
	wg.Wait()

	return out
}

// popularityFallback serves the last-resort response (spec §4.1: "total
// lane failure falls back to popularity order") and caches it for 1h, since
// a total outage is unlikely to self-resolve within minutes.
func (o *Orchestrator) popularityFallback(ctx context.Context, req Request, start time.Time) (*Response, error) {
	resp := &Response{Degraded: true}
	if o.cfg.Content == nil {
		resp.TookMS = time.Since(start).Milliseconds()
		return resp, nil
	}
	ids, err := o.cfg.Content.TopPopular(ctx, req.Limit)
	if err != nil {
		resp.TookMS = time.Since(start).Milliseconds()
		return resp, nil
	}
	for _, id := range ids {
		resp.Results = append(resp.Results, Result{ContentID: id, Lanes: []string{"popularity_fallback"}})
	}
	o.cache.SetWithTTL(fingerprint(req), *resp, time.Hour)
	resp.TookMS = time.Since(start).Milliseconds()
	return resp, nil
}
