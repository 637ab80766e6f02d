// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package intent is the Intent Parser (component D): it turns a free-text
// query into a structured Intent (genres, people, mood, constraints) for the
// hybrid search orchestrator's lanes to consume. A pluggable Provider does
// the actual language understanding (typically an LLM call); this package
// adds the bounded time budget, hot-query cache, and a deterministic
// rule-based fallback the orchestrator can always fall back on.
package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mediagateway/gateway/internal/cache"
)

// Intent is the structured result of parsing a query.
type Intent struct {
	Genres      []string `json:"genres,omitempty"`
	People      []string `json:"people,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	MaxRuntime  int      `json:"max_runtime,omitempty"`
	ReleaseYear int      `json:"release_year,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// Provider performs the actual text-to-intent understanding, typically by
// calling an LLM. Implementations should respect ctx's deadline.
type Provider interface {
	ParseIntent(ctx context.Context, query string) (Intent, error)
}

// Parser wraps a Provider with a time budget, a bounded LRU of recent
// queries, and a rule-based fallback.
type Parser struct {
	provider Provider
	budget   time.Duration
	hot      *lru.Cache[string, Intent]
	ttl      *cache.Cache
}

// Option configures a Parser.
type Option func(*Parser)

// WithBudget overrides the default 150ms provider time budget.
func WithBudget(d time.Duration) Option {
	return func(p *Parser) { p.budget = d }
}

// WithHotCacheSize overrides the default 512-entry LRU of exact-query hits.
func WithHotCacheSize(n int) Option {
	return func(p *Parser) {
		c, err := lru.New[string, Intent](n)
		if err == nil {
			p.hot = c
		}
	}
}

// New builds a Parser. The LRU fronts a 10-minute TTL cache, matching the
// contract that identical query text should not re-invoke the provider
// within that window even after the LRU evicts it.
func New(provider Provider, opts ...Option) *Parser {
	hot, _ := lru.New[string, Intent](512)
	p := &Parser{
		provider: provider,
		budget:   150 * time.Millisecond,
		hot:      hot,
		ttl:      cache.New(10 * time.Minute),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the structured Intent for query. It tries the cache, then
// the provider within the time budget, and falls back to rule-based parsing
// (confidence 0.3) if the provider errors, times out, or is nil.
func (p *Parser) Parse(ctx context.Context, query string) Intent {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return Intent{Confidence: 0.3}
	}

	if v, ok := p.hot.Get(key); ok {
		return v
	}
	if v, ok := p.ttl.Get(key); ok {
		in := v.(Intent)
		p.hot.Add(key, in)
		return in
	}

	in := p.parseWithProvider(ctx, query)
	p.hot.Add(key, in)
	p.ttl.Set(key, in)
	return in
}

func (p *Parser) parseWithProvider(ctx context.Context, query string) Intent {
	if p.provider == nil {
		return fallback(query)
	}

	budgeted, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	type result struct {
		in  Intent
		err error
	}
	done := make(chan result, 1)
	go func() {
		in, err := p.provider.ParseIntent(budgeted, query)
		done <- result{in, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fallback(query)
		}
		return r.in
	case <-budgeted.Done():
		return fallback(query)
	}
}

var runtimeWordsRe = regexp.MustCompile(`(?i)(under|less than)\s+(\d+)\s*(min|minute|minutes)`)
var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// moodWords maps a few keywords to a canonical mood label; this is
// deliberately small and literal since it only runs when the provider is
// down or times out.
var moodWords = map[string]string{
	"feel good": "uplifting", "uplifting": "uplifting", "heartwarming": "uplifting",
	"scary": "tense", "terrifying": "tense", "tense": "tense",
	"funny": "light", "hilarious": "light", "light": "light",
	"dark": "dark", "gritty": "dark",
}

var genreWords = []string{"comedy", "drama", "horror", "thriller", "romance", "documentary", "animation", "sci-fi", "fantasy", "action", "mystery"}

// fallback implements the rule-based parser: keyword matching against a
// fixed genre vocabulary, a runtime-ceiling regex, a year regex, and a small
// mood-word table. It always returns confidence 0.3 per the gateway's
// degraded-parse contract.
func fallback(query string) Intent {
	lower := strings.ToLower(query)
	in := Intent{Confidence: 0.3}

	for _, g := range genreWords {
		if strings.Contains(lower, g) {
			in.Genres = append(in.Genres, g)
		}
	}
	for phrase, mood := range moodWords {
		if strings.Contains(lower, phrase) {
			in.Mood = mood
			break
		}
	}
	if m := runtimeWordsRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			in.MaxRuntime = n
		}
	}
	if m := yearRe.FindString(lower); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			in.ReleaseYear = y
		}
	}
	return in
}
