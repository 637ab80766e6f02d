// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

package main

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/mediagateway/gateway/internal/commandrouter"
	"github.com/mediagateway/gateway/internal/config"
	"github.com/mediagateway/gateway/internal/embedding"
	"github.com/mediagateway/gateway/internal/fanout"
	"github.com/mediagateway/gateway/internal/gwerrors"
	"github.com/mediagateway/gateway/internal/hlc"
	"github.com/mediagateway/gateway/internal/intent"
	"github.com/mediagateway/gateway/internal/logging"
	"github.com/mediagateway/gateway/internal/offlinequeue"
	"github.com/mediagateway/gateway/internal/recommend"
	"github.com/mediagateway/gateway/internal/search"
)

// engine bundles the three subsystems the composition root wires up: the
// discovery engine (search orchestrator), the SONA engine (ranker), and the
// sync core (fan-out bus, command router, offline queue).
type engine struct {
	clock  *hlc.Clock
	hub    *fanout.Hub
	bus    *fanout.Bus
	router *commandrouter.Router

	orchestrator *search.Orchestrator
	ranker       *recommend.Ranker

	st *stores
}

// wireEngine builds every collaborator out of the already-opened stores and
// configuration, following the teacher's cmd/server convention of a single
// ordered construction pass with no circular references.
func wireEngine(cfg *config.Config, st *stores) *engine {
	clock := hlc.New(hlc.Timestamp{})
	hub := fanout.NewHub()

	natsCfg := fanout.NATSConfig{URL: cfg.NATS.URL}
	if natsCfg.URL == "" {
		natsCfg = fanout.DefaultNATSConfig("nats://127.0.0.1:4222")
	}
	var cross fanout.CrossInstance
	if transport, err := fanout.NewNATSTransport(natsCfg); err != nil {
		logging.Warn().Err(err).Msg("fanout: NATS cross-instance transport unavailable, falling back to single-instance delivery")
	} else {
		cross = transport
	}

	bus := fanout.NewBus(hub, cross, st.offline)
	router := commandrouter.New(bus, clock)

	embeddingClient := embedding.New(unconfiguredEmbeddingProvider{})
	intentParser := intent.New(nil) // no LLM-backed intent provider wired; rule-based fallback only

	orchestrator := search.New(search.Config{
		Semantic: func(ctx context.Context, query string) ([]string, error) {
			vecs, err := embeddingClient.Embed(ctx, []string{query})
			if err != nil || len(vecs) == 0 {
				return nil, err
			}
			matches, err := st.vector.TopK(ctx, vecs[0], 50, "")
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(matches))
			for i, m := range matches {
				ids[i] = m.ContentID
			}
			return ids, nil
		},
		Keyword: func(ctx context.Context, query string) ([]string, error) {
			return st.catalog.SearchTitle(ctx, query, 50)
		},
		Graph: func(ctx context.Context, parsed intent.Intent) ([]string, error) {
			if len(parsed.Genres) == 0 {
				return nil, nil
			}
			return st.catalog.SearchByGenres(ctx, parsed.Genres, 50)
		},
		Content:      st.catalog,
		IntentParser: intentParser,
	})

	ranker := recommend.New(recommend.Config{
		Generators: []recommend.Generator{
			recommend.NewCollaborativeGenerator(noCovisitationData),
			recommend.NewContentBasedGenerator(embeddingNeighbors(st)),
			recommend.NewGraphBasedGenerator(genreGraphWalk(st)),
			recommend.NewContextAwareGenerator(noContextSignal),
		},
		ColdStart: recommend.NewColdStartGenerator(st.catalog.TopPopular),
		LoRA:      loraResidual(st),
		Genres:    genreLookup(st),
	})

	return &engine{
		clock:        clock,
		hub:          hub,
		bus:          bus,
		router:       router,
		orchestrator: orchestrator,
		ranker:       ranker,
		st:           st,
	}
}

// unconfiguredEmbeddingProvider is the embedding client's upstream seam: a
// real deployment supplies a model-serving Provider (local model, hosted
// API); this module declares the contract and boundary but does not call
// out to a specific one, matching the JWT-claims-only treatment of the auth
// boundary. Every call fails closed so the orchestrator's semantic lane
// degrades to the keyword/graph lanes rather than blocking.
type unconfiguredEmbeddingProvider struct{}

func (unconfiguredEmbeddingProvider) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, gwerrors.Newf(gwerrors.ProviderUnavailable, "embedding.Provider", "no embedding provider configured")
}

// noCovisitationData is the collaborative generator's source: the catalog
// does not track interaction co-occurrence, so this lane contributes
// nothing until a covisitation store exists. The ranker's cold-start
// backfill covers the gap.
func noCovisitationData(_ context.Context, _ []string, _ int) (map[string]float64, error) {
	return nil, nil
}

// noContextSignal is the context-aware generator's source: no session/mood
// tracking store exists yet, so this lane is a no-op until one is wired.
func noContextSignal(_ context.Context, _ recommend.Request) (map[string]float64, error) {
	return nil, nil
}

// embeddingNeighbors adapts the catalog's stored per-title embeddings and
// the vector index to recommend.EmbeddingNeighborSource: for each seed
// title already carrying an embedding, it looks up nearby titles and
// accumulates their similarity scores.
func embeddingNeighbors(st *stores) recommend.EmbeddingNeighborSource {
	return func(ctx context.Context, seed []string, limit int) (map[string]float64, error) {
		if len(seed) == 0 {
			return nil, nil
		}
		content, err := st.catalog.GetMany(ctx, seed)
		if err != nil {
			return nil, err
		}
		scores := map[string]float64{}
		for _, id := range seed {
			c, ok := content[id]
			if !ok || len(c.Embedding) == 0 {
				continue
			}
			matches, err := st.vector.TopK(ctx, c.Embedding, limit, id)
			if err != nil {
				continue
			}
			for _, m := range matches {
				if m.Score > scores[m.ContentID] {
					scores[m.ContentID] = m.Score
				}
			}
		}
		return scores, nil
	}
}

// genreGraphWalk adapts the catalog's genre index to
// recommend.GenreGraphSource: it resolves the seed titles' genres, then
// looks up other titles sharing them, ranked by the order the catalog
// returns (most genre-overlap first).
func genreGraphWalk(st *stores) recommend.GenreGraphSource {
	return func(ctx context.Context, seed []string, limit int) (map[string]float64, error) {
		if len(seed) == 0 {
			return nil, nil
		}
		content, err := st.catalog.GetMany(ctx, seed)
		if err != nil {
			return nil, err
		}
		genreSet := map[string]struct{}{}
		for _, c := range content {
			for _, g := range c.Genres {
				genreSet[g] = struct{}{}
			}
		}
		if len(genreSet) == 0 {
			return nil, nil
		}
		genres := make([]string, 0, len(genreSet))
		for g := range genreSet {
			genres = append(genres, g)
		}
		ids, err := st.catalog.SearchByGenres(ctx, genres, limit)
		if err != nil {
			return nil, err
		}
		scores := make(map[string]float64, len(ids))
		for i, id := range ids {
			scores[id] = 1.0 / float64(i+1)
		}
		return scores, nil
	}
}

// loraResidual adapts the per-user LoRA adapter store to
// recommend.LoRAResidual, scoring each candidate's stored embedding against
// the user's current adapter.
func loraResidual(st *stores) recommend.LoRAResidual {
	return func(ctx context.Context, userID string, candidateIDs []string) (map[string]float64, error) {
		adapter, err := st.lora.LoadLatest(ctx, userID, "default")
		if err != nil || adapter == nil {
			return nil, nil
		}
		content, err := st.catalog.GetMany(ctx, candidateIDs)
		if err != nil {
			return nil, err
		}
		out := make(map[string]float64, len(candidateIDs))
		for id, c := range content {
			if len(c.Embedding) == 0 {
				continue
			}
			out[id] = adapter.Score(c.Embedding)
		}
		return out, nil
	}
}

// genreLookup adapts the catalog to recommend.GenreLookup for MMR's
// diversity metric.
func genreLookup(st *stores) recommend.GenreLookup {
	return func(ctx context.Context, candidateIDs []string) (map[string][]string, error) {
		content, err := st.catalog.GetMany(ctx, candidateIDs)
		if err != nil {
			return nil, err
		}
		out := make(map[string][]string, len(content))
		for id, c := range content {
			out[id] = c.Genres
		}
		return out, nil
	}
}

// drainPublisher adapts fanout.Bus to offlinequeue.Publisher: queued
// entries carry a marshaled fanout.Op, so draining unmarshals and
// republishes through the same path a live sync op takes.
type drainPublisher struct {
	bus *fanout.Bus
}

func (p drainPublisher) Publish(ctx context.Context, payload json.RawMessage) error {
	var op fanout.Op
	if err := json.Unmarshal(payload, &op); err != nil {
		return err
	}
	return p.bus.PublishOp(ctx, op)
}

// queueDrain adapts offlinequeue.Drain to the supervisor's QueueDrainer
// interface (services.QueueDrainer: Drain(ctx) (delivered, deferred,
// dropped int, err error)).
type queueDrain struct {
	queue *offlinequeue.Queue
	pub   offlinequeue.Publisher
}

func (d queueDrain) Drain(ctx context.Context) (int, int, int, error) {
	result, err := offlinequeue.Drain(ctx, d.queue, d.pub, "mediagateway-single-node")
	return result.Delivered, result.Deferred, result.Dropped, err
}

func (e *engine) queueDrainer() queueDrain {
	return queueDrain{queue: e.st.offline, pub: drainPublisher{bus: e.bus}}
}

// loraPruner adapts the LoRA adapter store's pruning job to the
// supervisor's SonaTrainer interface. Fitting a new adapter generation from
// accumulated feedback is an offline job outside this module's scope; the
// training loop's one concrete in-module responsibility is pruning stale
// adapter versions so the store doesn't grow unbounded.
type loraPruner struct {
	st *stores
}

const loraKeepVersions = 5

func (p *loraPruner) Train(ctx context.Context) error {
	_, err := p.st.lora.Prune(ctx, loraKeepVersions)
	return err
}

func (e *engine) sonaTrainer() *loraPruner {
	return &loraPruner{st: e.st}
}
