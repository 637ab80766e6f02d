// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package recommend

import (
	"context"
	"sort"

	"github.com/mediagateway/gateway/internal/logging"
	"github.com/mediagateway/gateway/internal/recommend/reranking"
)

// defaultArmWeight is applied to a generator kind with no experiment-arm
// override; all five default to an equal share.
const defaultArmWeight = 1.0

// ArmWeights looks up the experiment-arm's per-generator-kind weight for a
// user (component L, the Experiment Registry, supplies the concrete
// implementation). A nil ArmWeights, or one returning an empty map, leaves
// every generator at the default weight.
type ArmWeights func(ctx context.Context, userID string) (map[GeneratorKind]float64, error)

// LoRAResidual looks up the per-user LoRA adapter's residual contribution
// for each candidate (component J, the LoRA Adapter Store, supplies the
// concrete implementation). Returns a sparse map; candidates absent from it
// get no residual.
type LoRAResidual func(ctx context.Context, userID string, candidateIDs []string) (map[string]float64, error)

// GenreLookup resolves genres for MMR's similarity metric.
type GenreLookup func(ctx context.Context, candidateIDs []string) (map[string][]string, error)

// ExposureRecorder logs that a user was shown a candidate under a given
// generator kind, for the Experiment Registry's exposure-event stream.
type ExposureRecorder func(ctx context.Context, userID string, exposed []string) error

// Config wires the Ranker's collaborators.
type Config struct {
	Generators []Generator
	ColdStart  Generator // used for backfill when ranked results fall short of the limit
	ArmWeights ArmWeights
	LoRA       LoRAResidual
	Genres     GenreLookup
	Exposure   ExposureRecorder

	// MMRLambda balances relevance vs. diversity (1.0 = pure relevance).
	// 0 uses the package default of 0.7.
	MMRLambda float64
}

// Ranker is the SONA personalization engine's component K.
type Ranker struct {
	cfg Config
	mmr *reranking.MMR
}

// New builds a Ranker.
func New(cfg Config) *Ranker {
	lambda := cfg.MMRLambda
	if lambda == 0 {
		lambda = 0.7
	}
	return &Ranker{cfg: cfg, mmr: reranking.NewMMR(lambda)}
}

// Rank fans out to every configured generator, fuses their candidates with
// experiment-arm weights and a per-user LoRA residual, diversifies with MMR,
// backfills from cold-start if the result falls short of req.Limit, and
// records an exposure event for what is ultimately returned.
func (r *Ranker) Rank(ctx context.Context, req Request) ([]ScoredItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	weights := r.resolveArmWeights(ctx, req.UserID)

	fused := map[string]float64{}
	breakdown := map[string]map[GeneratorKind]float64{}
	for _, gen := range r.cfg.Generators {
		candidates, err := gen.Generate(ctx, req)
		if err != nil {
			logging.Debug().Str("generator", string(gen.Kind())).Err(err).Msg("recommend: generator failed")
			continue
		}
		w := weights[gen.Kind()]
		for _, c := range candidates {
			if _, excluded := req.Exclude[c.ContentID]; excluded {
				continue
			}
			fused[c.ContentID] += c.Score * w
			if breakdown[c.ContentID] == nil {
				breakdown[c.ContentID] = map[GeneratorKind]float64{}
			}
			breakdown[c.ContentID][gen.Kind()] += c.Score * w
		}
	}

	ids := make([]string, 0, len(fused))
	for id := range fused {
		ids = append(ids, id)
	}

	if r.cfg.LoRA != nil && len(ids) > 0 {
		residual, err := r.cfg.LoRA(ctx, req.UserID, ids)
		if err != nil {
			logging.Debug().Err(err).Msg("recommend: LoRA residual lookup failed")
		} else {
			for id, delta := range residual {
				fused[id] += delta
			}
		}
	}

	genres := map[string][]string{}
	if r.cfg.Genres != nil && len(ids) > 0 {
		g, err := r.cfg.Genres(ctx, ids)
		if err == nil {
			genres = g
		}
	}

	items := make([]ScoredItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, ScoredItem{ContentID: id, Score: fused[id], Genres: genres[id], Breakdown: breakdown[id]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ContentID < items[j].ContentID
	})

	diversified := r.mmr.Rerank(items, req.Limit)
	diversified = r.backfillColdStart(ctx, req, diversified)

	if r.cfg.Exposure != nil {
		exposedIDs := make([]string, len(diversified))
		for i, it := range diversified {
			exposedIDs[i] = it.ContentID
		}
		if err := r.cfg.Exposure(ctx, req.UserID, exposedIDs); err != nil {
			logging.Debug().Err(err).Msg("recommend: exposure recording failed")
		}
	}

	return diversified, nil
}

func (r *Ranker) resolveArmWeights(ctx context.Context, userID string) map[GeneratorKind]float64 {
	weights := map[GeneratorKind]float64{
		Collaborative: defaultArmWeight, ContentBased: defaultArmWeight, GraphBased: defaultArmWeight,
		ContextAware: defaultArmWeight, ColdStart: defaultArmWeight,
	}
	if r.cfg.ArmWeights == nil {
		return weights
	}
	override, err := r.cfg.ArmWeights(ctx, userID)
	if err != nil {
		logging.Debug().Err(err).Msg("recommend: arm-weight lookup failed, using defaults")
		return weights
	}
	for k, v := range override {
		weights[k] = v
	}
	return weights
}

// backfillColdStart tops up a short diversified list with cold-start
// candidates not already present, preserving rank order: this is the
// "cold-start-rescue" path for a user/context combination too sparse for
// the other four generators to fill the request.
func (r *Ranker) backfillColdStart(ctx context.Context, req Request, items []ScoredItem) []ScoredItem {
	if len(items) >= req.Limit || r.cfg.ColdStart == nil {
		return items
	}
	have := make(map[string]struct{}, len(items))
	for _, it := range items {
		have[it.ContentID] = struct{}{}
	}

	candidates, err := r.cfg.ColdStart.Generate(ctx, req)
	if err != nil {
		return items
	}
	for _, c := range candidates {
		if len(items) >= req.Limit {
			break
		}
		if _, excluded := req.Exclude[c.ContentID]; excluded {
			continue
		}
		if _, dup := have[c.ContentID]; dup {
			continue
		}
		items = append(items, ScoredItem{ContentID: c.ContentID, Score: c.Score, Breakdown: map[GeneratorKind]float64{ColdStart: c.Score}})
		have[c.ContentID] = struct{}{}
	}
	return items
}
