// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package reranking implements post-processing algorithms for recommendation
// diversity, applied after the Ranker's fused-score sort and before the
// cold-start backfill:
//
//	Generators -> fused score -> MMR -> cold-start backfill -> exposure log
//
// # MMR
//
// Maximal Marginal Relevance iteratively selects items that are both
// relevant and dissimilar to already-selected items:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max_similarity(i, selected)]
//
// lambda in [0.9, 1.0] is mostly relevance; [0.5, 0.7] pushes diversity hard.
// Similarity is genre-based Jaccard: deterministic, symmetric, bounded to
// [0, 1].
//
// # Performance
//
// O(k * n^2) time and O(n^2) space for the similarity matrix; callers
// should pre-filter to the top few hundred candidates before reranking a
// large catalog.
package reranking
