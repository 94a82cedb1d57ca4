// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ranking orders retrieved adapter results by a lexical
// relevance/quality heuristic. Scores are recomputed on every retrieve call;
// nothing here is persisted.
package ranking

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// =============================================================================
// OTel Tracer
// =============================================================================

var rankerTracer = otel.Tracer("scout.ranking")

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultMatchBoost is the score added for a literal query match, and the
	// multiplier applied to the similarity ratio otherwise.
	DefaultMatchBoost = 2

	// DefaultErrorPenalty is the score subtracted when a result contains the
	// word "error" (failed adapter calls carry their placeholder text through
	// ranking, and should sink).
	DefaultErrorPenalty = 1
)

// =============================================================================
// Ranker
// =============================================================================

// Item is one named result handed to the ranker, in first-seen order.
type Item struct {
	// Adapter is the adapter name that produced the result.
	Adapter string

	// Content is the retrieved text.
	Content string
}

// Ranked is one scored result. Derived, never persisted.
type Ranked struct {
	// Adapter is the adapter name.
	Adapter string

	// Score is the heuristic relevance score. May be negative; no clamping.
	Score int
}

// Ranker scores and orders a set of named results against a query.
//
// Description:
//
//	Scoring per result, all comparisons case-insensitive:
//	  base 1
//	  +matchBoost when the query is a literal substring of the result
//	  +floor(Ratio(query, result) * matchBoost) otherwise
//	  -errorPenalty when the result contains the word "error"
//	Ordering is score descending with ties broken by first-seen input order
//	(stable sort). Scores are not clamped; a placeholder-only result can go
//	negative and still participate in the total order.
//
// Thread Safety: Safe for concurrent use (all state is read-only).
type Ranker struct {
	matchBoost   int
	errorPenalty int
	logger       *slog.Logger
}

// NewRanker creates a Ranker.
//
// Inputs:
//   - matchBoost: Boost for literal/partial matches. Zero or negative uses
//     DefaultMatchBoost.
//   - errorPenalty: Penalty for results containing "error". Negative uses
//     DefaultErrorPenalty. Zero disables the penalty.
//   - logger: Logger instance. Nil uses slog.Default().
func NewRanker(matchBoost, errorPenalty int, logger *slog.Logger) *Ranker {
	if matchBoost <= 0 {
		matchBoost = DefaultMatchBoost
	}
	if errorPenalty < 0 {
		errorPenalty = DefaultErrorPenalty
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{
		matchBoost:   matchBoost,
		errorPenalty: errorPenalty,
		logger:       logger,
	}
}

// Score computes the heuristic score for a single result.
//
// Inputs:
//   - query: The original query string.
//   - content: The retrieved result text.
//
// Outputs:
//   - int: The score. May be negative.
func (r *Ranker) Score(query, content string) int {
	queryLower := strings.ToLower(query)
	contentLower := strings.ToLower(content)

	score := 1

	if queryLower != "" && strings.Contains(contentLower, queryLower) {
		score += r.matchBoost
	} else {
		score += int(math.Floor(Ratio(queryLower, contentLower) * float64(r.matchBoost)))
	}

	if strings.Contains(contentLower, "error") {
		score -= r.errorPenalty
	}

	return score
}

// Rank scores all items and returns them ordered best-first.
//
// Description:
//
//	Produces a total order: score descending, ties broken by the input
//	order of items (which callers populate in registry first-seen order).
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - query: The original query string.
//   - items: Named results in first-seen order.
//
// Outputs:
//   - []Ranked: Scored results, best first. Same length as items.
//
// Thread Safety: Safe for concurrent use.
func (r *Ranker) Rank(ctx context.Context, query string, items []Item) []Ranked {
	_, span := rankerTracer.Start(ctx, "ranking.Ranker.Rank")
	span.SetAttributes(
		attribute.Int("item_count", len(items)),
	)
	defer span.End()

	ranked := make([]Ranked, len(items))
	for i, item := range items {
		ranked[i] = Ranked{
			Adapter: item.Adapter,
			Score:   r.Score(query, item.Content),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > 0 {
		r.logger.Debug("ranked retrieval results",
			slog.String("top_adapter", ranked[0].Adapter),
			slog.Int("top_score", ranked[0].Score),
			slog.Int("count", len(ranked)),
		)
		span.SetAttributes(
			attribute.String("top_adapter", ranked[0].Adapter),
			attribute.Int("top_score", ranked[0].Score),
		)
	}

	return ranked
}
