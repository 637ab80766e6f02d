// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package reranking implements post-processing algorithms for recommendation diversity.
package reranking

import (
	"strings"

	"github.com/mediagateway/gateway/internal/recommend"
)

// maxRerankSize limits slice allocations to prevent excessive memory usage.
// This is a defense-in-depth measure; k is also bounded by len(items).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting items
// that are both relevant and dissimilar to already selected items.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - score(i): original relevance score for item i
//   - sim(i, s): similarity between item i and selected item s
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lambda float64
}

// NewMMR creates a new MMR reranker.
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank applies MMR reranking to diversify the top k of items, which must
// already be sorted by descending relevance score.
func (m *MMR) Rerank(items []recommend.ScoredItem, k int) []recommend.ScoredItem {
	if len(items) == 0 || k <= 0 {
		return items
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(items) {
		k = len(items)
	}

	if m.lambda >= 1.0 {
		return items[:k]
	}

	similarities := buildSimilarityMatrix(items)

	selected := make([]recommend.ScoredItem, 0, k)
	selectedIndices := make(map[int]struct{})

	for len(selected) < k {
		bestIdx := -1
		bestMMR := -1.0

		for i, item := range items {
			if _, ok := selectedIndices[i]; ok {
				continue
			}

			relevance := item.Score
			maxSim := 0.0
			for j := range selectedIndices {
				if sim := similarities[i][j]; sim > maxSim {
					maxSim = sim
				}
			}

			mmrScore := m.lambda*relevance - (1-m.lambda)*maxSim
			if mmrScore > bestMMR {
				bestMMR = mmrScore
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		selected = append(selected, items[bestIdx])
		selectedIndices[bestIdx] = struct{}{}
	}

	return selected
}

// buildSimilarityMatrix computes pairwise genre-based similarity.
func buildSimilarityMatrix(items []recommend.ScoredItem) [][]float64 {
	n := len(items)
	similarities := make([][]float64, n)
	for i := range similarities {
		similarities[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := computeGenreSimilarity(items[i].Genres, items[j].Genres)
			similarities[i][j] = sim
			similarities[j][i] = sim
		}
	}

	return similarities
}

// computeGenreSimilarity computes Jaccard similarity between genre lists.
// It is deterministic, symmetric, and bounded to [0, 1].
func computeGenreSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, g := range a {
		setA[strings.ToLower(g)] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, g := range b {
		setB[strings.ToLower(g)] = struct{}{}
	}

	intersection := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
