// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package recommend

import "context"

// Generator produces candidates for one user from one strategy. Each of the
// five generator kinds is a thin adapter: the generator itself holds no
// state beyond a lookup function, so the ranker can be tested against fakes
// without standing up the full discovery engine.
type Generator interface {
	Kind() GeneratorKind
	Generate(ctx context.Context, req Request) ([]Candidate, error)
}

// lookupFunc is shared shape for the source data each generator adapts.
type lookupFunc func(ctx context.Context, req Request) ([]Candidate, error)

type simpleGenerator struct {
	kind   GeneratorKind
	lookup lookupFunc
}

func (g simpleGenerator) Kind() GeneratorKind { return g.kind }
func (g simpleGenerator) Generate(ctx context.Context, req Request) ([]Candidate, error) {
	return g.lookup(ctx, req)
}

// CovisitationSource returns content IDs frequently watched alongside the
// request's seed titles, with a co-occurrence-derived score in [0, 1].
// Grounded on the teacher's covisitation-counting approach (algorithms
// package), simplified here to an injectable source rather than a trained
// matrix: the gateway's candidate-generator contract takes a scored lookup,
// not a training pipeline.
type CovisitationSource func(ctx context.Context, seed []string, limit int) (map[string]float64, error)

// NewCollaborativeGenerator adapts a covisitation source to a Generator.
func NewCollaborativeGenerator(source CovisitationSource) Generator {
	return simpleGenerator{Collaborative, func(ctx context.Context, req Request) ([]Candidate, error) {
		scores, err := source(ctx, req.Seed, req.Limit)
		if err != nil {
			return nil, err
		}
		return toCandidates(scores, Collaborative), nil
	}}
}

// EmbeddingNeighborSource returns content IDs near the seed titles in
// embedding space (i.e. vectorindex.Index.TopK over the seed's vector).
type EmbeddingNeighborSource func(ctx context.Context, seed []string, limit int) (map[string]float64, error)

// NewContentBasedGenerator adapts a semantic-neighbor source to a Generator.
func NewContentBasedGenerator(source EmbeddingNeighborSource) Generator {
	return simpleGenerator{ContentBased, func(ctx context.Context, req Request) ([]Candidate, error) {
		scores, err := source(ctx, req.Seed, req.Limit)
		if err != nil {
			return nil, err
		}
		return toCandidates(scores, ContentBased), nil
	}}
}

// GenreGraphSource returns content IDs reachable from the seed titles'
// genres/people within a small number of hops (catalog.Store.SearchByGenres
// is the concrete implementation this adapts at the composition root).
type GenreGraphSource func(ctx context.Context, seed []string, limit int) (map[string]float64, error)

// NewGraphBasedGenerator adapts a graph-walk source to a Generator.
func NewGraphBasedGenerator(source GenreGraphSource) Generator {
	return simpleGenerator{GraphBased, func(ctx context.Context, req Request) ([]Candidate, error) {
		scores, err := source(ctx, req.Seed, req.Limit)
		if err != nil {
			return nil, err
		}
		return toCandidates(scores, GraphBased), nil
	}}
}

// ContextSource adjusts candidate weight by session context (time of day,
// device, mood); it receives the request's Now so the composition root can
// vary results by daypart without the ranker itself knowing about clocks.
type ContextSource func(ctx context.Context, now Request) (map[string]float64, error)

// NewContextAwareGenerator adapts a context-weighting source to a Generator.
func NewContextAwareGenerator(source ContextSource) Generator {
	return simpleGenerator{ContextAware, func(ctx context.Context, req Request) ([]Candidate, error) {
		scores, err := source(ctx, req)
		if err != nil {
			return nil, err
		}
		return toCandidates(scores, ContextAware), nil
	}}
}

// PopularitySource returns the catalog's most popular titles, used both as
// the cold-start generator and as the ranker's backfill when other
// generators under-supply candidates.
type PopularitySource func(ctx context.Context, limit int) ([]string, error)

// NewColdStartGenerator adapts a popularity source to a Generator. Its score
// decays by rank so the fused ranking still prefers a collaborative/content
// match over a cold-start guess when both exist.
func NewColdStartGenerator(source PopularitySource) Generator {
	return simpleGenerator{ColdStart, func(ctx context.Context, req Request) ([]Candidate, error) {
		ids, err := source(ctx, req.Limit)
		if err != nil {
			return nil, err
		}
		out := make([]Candidate, len(ids))
		for i, id := range ids {
			out[i] = Candidate{ContentID: id, Score: 1.0 / float64(i+1), Source: ColdStart}
		}
		return out, nil
	}}
}

func toCandidates(scores map[string]float64, kind GeneratorKind) []Candidate {
	out := make([]Candidate, 0, len(scores))
	for id, score := range scores {
		out = append(out, Candidate{ContentID: id, Score: score, Source: kind})
	}
	return out
}
