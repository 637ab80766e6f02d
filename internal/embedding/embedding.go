// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package embedding is the Embedding Client (component C): a batched,
// cached, circuit-broken façade over whatever upstream embedding provider is
// configured, matching the teacher's gobreaker wrapping of the Tautulli
// client in internal/sync/circuit_breaker.go.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mediagateway/gateway/internal/cache"
	"github.com/mediagateway/gateway/internal/gwerrors"
	"github.com/mediagateway/gateway/internal/logging"
)

// Dims is the embedding width this client's provider is expected to return.
const Dims = 768

// Provider generates raw embeddings for text; implementations wrap whatever
// upstream model-serving API is configured (a local model server, a hosted
// API, etc.). The client wraps Provider with caching, batching, retry, and
// circuit-breaking, so Provider implementations stay simple.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Client is the embedding façade. It is safe for concurrent use.
type Client struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker[[][]float32]
	cache    *cache.Cache
	retries  []time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithCacheTTL overrides the default 1h cache TTL for embedding results.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = cache.New(ttl) }
}

// WithRetryBackoff overrides the default 50ms/100ms retry schedule.
func WithRetryBackoff(delays ...time.Duration) Option {
	return func(c *Client) { c.retries = delays }
}

// New wraps provider with a circuit breaker, retry, and a SHA-256-keyed
// result cache with a 1h default TTL.
func New(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		cache:    cache.New(time.Hour),
		retries:  []time.Duration{50 * time.Millisecond, 100 * time.Millisecond},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cb = gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        "embedding-provider",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("embedding: circuit breaker state change")
		},
	})
	return c
}

// cacheKey hashes normalized text so near-identical queries with different
// casing/whitespace share a cache entry.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:])
}

// Embed returns one embedding per input text, batching any cache misses into
// a single provider call and filling the rest from cache. On provider
// failure it retries per the configured backoff schedule before the circuit
// breaker counts the call as a failure.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missText := make([]string, 0, len(texts))

	for i, t := range texts {
		if v, ok := c.cache.Get(cacheKey(t)); ok {
			result[i] = v.([]float32)
			continue
		}
		missIdx = append(missIdx, i)
		missText = append(missText, t)
	}

	if len(missText) == 0 {
		return result, nil
	}

	fetched, err := c.embedWithRetry(ctx, missText)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missText) {
		return nil, gwerrors.New(gwerrors.ProviderUnavailable, "embedding.Client.Embed",
			errors.New("provider returned mismatched batch size"))
	}

	for j, idx := range missIdx {
		result[idx] = fetched[j]
		c.cache.Set(cacheKey(missText[j]), fetched[j])
	}
	return result, nil
}

func (c *Client) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	attempts := append([]time.Duration{0}, c.retries...)

	for i, delay := range attempts {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, gwerrors.New(gwerrors.ProviderUnavailable, "embedding.Client.Embed", ctx.Err())
			case <-time.After(delay):
			}
		}

		out, err := c.cb.Execute(func() ([][]float32, error) {
			return c.provider.Embed(ctx, texts)
		})
		if err == nil {
			return out, nil
		}
		lastErr = err
		if i == len(attempts)-1 {
			break
		}
		logging.Debug().Err(err).Int("attempt", i+1).Msg("embedding: retrying after provider error")
	}

	if errors.Is(lastErr, gobreaker.ErrOpenState) || errors.Is(lastErr, gobreaker.ErrTooManyRequests) {
		return nil, gwerrors.New(gwerrors.ProviderUnavailable, "embedding.Client.Embed", lastErr)
	}
	return nil, gwerrors.New(gwerrors.ProviderUnavailable, "embedding.Client.Embed", lastErr)
}
