// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_SubstringMatchOutranksNoMatch(t *testing.T) {
	ranker := NewRanker(0, 0, nil) // defaults: boost 2, penalty disabled (0)

	ranked := ranker.Rank(context.Background(), "orders", []Item{
		{Adapter: "postgresql", Content: "records: orders 1017, 1018 pending"},
		{Adapter: "graphql", Content: "no matching"},
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "postgresql", ranked[0].Adapter)
	assert.Equal(t, "graphql", ranked[1].Adapter)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_CaseInsensitiveSubstring(t *testing.T) {
	ranker := NewRanker(2, 1, nil)

	score := ranker.Score("ORDERS", "All Orders shipped.")
	assert.Equal(t, 1+2, score)
}

func TestRank_ErrorPenaltyBreaksTie(t *testing.T) {
	ranker := NewRanker(2, 1, nil)

	ranked := ranker.Rank(context.Background(), "alpha", []Item{
		{Adapter: "first", Content: "alpha error"},
		{Adapter: "second", Content: "alpha"},
	})

	require.Len(t, ranked, 2)
	assert.Equal(t, "second", ranked[0].Adapter, "result containing 'error' must not outrank an otherwise-equal result")
	assert.Equal(t, 3, ranked[0].Score)
	assert.Equal(t, 2, ranked[1].Score)
}

func TestRank_ScoreMayGoNegative(t *testing.T) {
	ranker := NewRanker(2, 2, nil)

	// No lexical overlap with the query, contains "error": 1 + 0 - 2.
	score := ranker.Score("qqqq", "Error.")
	assert.Equal(t, -1, score)
}

func TestRank_TiesKeepFirstSeenOrder(t *testing.T) {
	ranker := NewRanker(2, 1, nil)

	ranked := ranker.Rank(context.Background(), "orders", []Item{
		{Adapter: "confluence", Content: "orders doc"},
		{Adapter: "bitbucket", Content: "orders doc"},
		{Adapter: "graphql", Content: "orders doc"},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"confluence", "bitbucket", "graphql"},
		[]string{ranked[0].Adapter, ranked[1].Adapter, ranked[2].Adapter})
}

func TestRank_PartialOverlapScoresBetweenNoneAndFull(t *testing.T) {
	ranker := NewRanker(4, 0, nil)

	full := ranker.Score("pending orders", "pending orders")
	partial := ranker.Score("pending orders", "orders pending review since june")
	none := ranker.Score("pending orders", "zzz")

	assert.Greater(t, full, partial)
	assert.GreaterOrEqual(t, partial, none)
}

func TestRank_EmptyInput(t *testing.T) {
	ranker := NewRanker(2, 1, nil)

	ranked := ranker.Rank(context.Background(), "anything", nil)
	assert.Empty(t, ranked)
}
