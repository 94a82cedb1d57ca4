// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import "strings"

// =============================================================================
// Pipeline State
// =============================================================================

// Retrieved is one ranked retrieval result.
type Retrieved struct {
	// Adapter is the adapter that produced the result.
	Adapter string

	// Content is the retrieved text (or the invocation placeholder).
	Content string

	// Score is the ranker's heuristic score for this result.
	Score int
}

// State is the record threaded through the four pipeline stages.
//
// Description:
//
//	One State exists per Process call and is owned exclusively by that
//	call's orchestrator run, so no synchronization is needed. Each derived
//	field is populated by exactly one stage, in stage order, and is always
//	populated after its stage ran, on failure with a fixed placeholder
//	string, never left empty.
type State struct {
	// ID is the request ID, generated at creation, threaded through logs.
	ID string

	// Question is the user's original question. Set at creation, never mutated.
	Question string

	// Rephrased is the clarified question. Set by the rephrase stage.
	Rephrased string

	// Retrieved holds the ranked results, best first. Set by the retrieve
	// stage. Empty (but non-nil) when an explicit scoped directive selected
	// no valid adapters.
	Retrieved []Retrieved

	// Answer is the synthesized answer. Set by the answer stage.
	Answer string

	// Summary is the deterministic answer preview. Set by the summarize stage.
	Summary string

	// Strategy records which selection strategy fired during retrieve.
	Strategy string
}

// RetrievedText renders the retrieved results as "name: result" lines joined
// by blank lines, in ranked order. This is the shape the answer prompt and
// the presentation sink both consume.
func (s *State) RetrievedText() string {
	if len(s.Retrieved) == 0 {
		return ""
	}
	lines := make([]string, 0, len(s.Retrieved))
	for _, r := range s.Retrieved {
		lines = append(lines, r.Adapter+": "+r.Content)
	}
	return strings.Join(lines, "\n\n")
}
