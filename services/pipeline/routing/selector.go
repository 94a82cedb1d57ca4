// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routing decides which information-source adapters to query for a
// given question. The decision runs through an ordered strategy chain of
// discrete predicates rather than one monolithic matcher, so each strategy
// is independently testable.
package routing

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/scout/services/sources"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	selectionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "selector",
		Name:      "selection_total",
		Help:      "Tool selections by winning strategy",
	}, []string{"strategy"})

	selectionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "selector",
		Name:      "failure_total",
		Help:      "Recovered selection failures by error code",
	}, []string{"code"})
)

// =============================================================================
// OTel Tracer
// =============================================================================

var selectorTracer = otel.Tracer("scout.routing")

// =============================================================================
// Strategies
// =============================================================================

// Strategy identifies which rule of the selection chain produced a decision.
type Strategy string

const (
	// StrategyAllDirective fired on the explicit "search in all" phrase.
	StrategyAllDirective Strategy = "all_directive"

	// StrategyScopedDirective fired on "search [only] in X [and Y ...]".
	StrategyScopedDirective Strategy = "scoped_directive"

	// StrategyNameMention fired on an implicit adapter-name mention.
	StrategyNameMention Strategy = "name_mention"

	// StrategySuggested fired on a parsed LLM suggestion.
	StrategySuggested Strategy = "llm_suggested"

	// StrategyFallbackAll fired when the suggestion path failed and the
	// selector fell back to every registered adapter.
	StrategyFallbackAll Strategy = "fallback_all"
)

// Decision is the outcome of one selection run.
type Decision struct {
	// Adapters holds the canonical names of the selected adapters, in
	// registry registration order. Empty only for the explicit-scope case
	// where every named adapter was unregistered.
	Adapters []string

	// Strategy is the rule that produced the selection.
	Strategy Strategy
}

// =============================================================================
// Selector
// =============================================================================

// Suggester is the slice of the completion capability the selector needs for
// the LLM-assisted fallback.
type Suggester interface {
	// Complete sends a prompt and returns the model's full reply text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// scopedDirectiveRe matches "search [only] in <list>". The list capture runs
// to the end of the sentence and is tokenized by splitScopedList.
var scopedDirectiveRe = regexp.MustCompile(`(?i)\bsearch\s+(?:only\s+)?in\s+(.+)`)

// sentenceEndRe cuts the scoped list capture at the first sentence boundary.
var sentenceEndRe = regexp.MustCompile(`[.?!;\n]`)

// allDirective is the explicit everything-please phrase, matched on the
// lowercased question.
const allDirective = "search in all"

// Selector chooses a non-empty set of adapters for a question, except for
// the explicit-scope edge case documented on Select.
//
// Description:
//
//	Runs four strategies in precedence order, first match wins:
//	  1. "search in all" directive        -> every registered adapter
//	  2. "search [only] in X [and Y ...]" -> exactly the named adapters
//	  3. implicit adapter-name mention    -> all mentioned adapters
//	  4. LLM-assisted suggestion          -> parsed + registered names,
//	     falling back to every adapter on any failure
//
// Thread Safety: Safe for concurrent use (registry is read-only, the
// suggester must be safe for concurrent use).
type Selector struct {
	registry  *sources.Registry
	suggester Suggester
	logger    *slog.Logger
}

// NewSelector creates a Selector.
//
// Inputs:
//   - registry: The adapter registry. Must not be nil.
//   - suggester: Completion capability for the LLM-assisted fallback. Nil
//     disables strategy 4; the selector then falls straight back to all.
//   - logger: Logger instance. Nil uses slog.Default().
//
// Outputs:
//   - *Selector: The constructed selector. Never nil.
func NewSelector(registry *sources.Registry, suggester Suggester, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		registry:  registry,
		suggester: suggester,
		logger:    logger,
	}
}

// Select decides which adapters to query for the (rephrased) question.
//
// Description:
//
//	First matching strategy wins; see the Selector doc for the chain. The
//	result is non-empty with one deliberate exception: an explicit scoped
//	directive whose named adapters are all unregistered yields an empty
//	decision. The user asked for something specific and invalid; silently
//	widening that to "search everything" would be worse than returning
//	nothing. Strategies 3 and 4 do not rescue that case.
//
// Inputs:
//   - ctx: Context for cancellation and tracing. Must not be nil.
//   - question: The question text (typically the rephrased form).
//
// Outputs:
//   - Decision: Selected adapter names plus the winning strategy.
//
// Thread Safety: Safe for concurrent use.
func (s *Selector) Select(ctx context.Context, question string) Decision {
	ctx, span := selectorTracer.Start(ctx, "routing.Selector.Select")
	span.SetAttributes(attribute.Int("registered", s.registry.Len()))
	defer span.End()

	questionLower := strings.ToLower(question)

	var decision Decision
	switch {
	case strings.Contains(questionLower, allDirective):
		decision = Decision{Adapters: s.registry.Names(), Strategy: StrategyAllDirective}

	case scopedDirectiveRe.MatchString(questionLower):
		decision = s.selectScoped(questionLower)

	default:
		if mentioned := s.selectMentions(questionLower); len(mentioned) > 0 {
			decision = Decision{Adapters: mentioned, Strategy: StrategyNameMention}
		} else {
			decision = s.selectSuggested(ctx, question)
		}
	}

	selectionTotal.WithLabelValues(string(decision.Strategy)).Inc()
	span.SetAttributes(
		attribute.String("strategy", string(decision.Strategy)),
		attribute.Int("selected", len(decision.Adapters)),
	)

	s.logger.Info("tool selection decided",
		slog.String("strategy", string(decision.Strategy)),
		slog.Int("selected", len(decision.Adapters)),
		slog.String("question_preview", truncateForLog(question, 80)),
	)

	return decision
}

// selectScoped handles the explicit "search [only] in X [and Y ...]" form.
//
// Named adapters that are not registered are silently dropped. The surviving
// set MAY be empty; that is honored, not widened (see Select).
func (s *Selector) selectScoped(questionLower string) Decision {
	match := scopedDirectiveRe.FindStringSubmatch(questionLower)
	requested := splitScopedList(match[1])

	selected := s.filterRegistered(requested)
	if dropped := len(requested) - len(selected); dropped > 0 {
		s.logger.Warn("scoped directive named unregistered adapters",
			slog.Int("requested", len(requested)),
			slog.Int("dropped", dropped),
		)
	}

	return Decision{Adapters: selected, Strategy: StrategyScopedDirective}
}

// splitScopedList tokenizes the scoped directive's adapter list. The capture
// runs to the end of the question, so it is cut at the first sentence
// boundary and then split on commas and "and" conjunctions. Adapter names
// are single tokens, so each piece keeps only its first word; trailing prose
// ("graphql for release notes") must not glue itself to the last name.
func splitScopedList(capture string) []string {
	if loc := sentenceEndRe.FindStringIndex(capture); loc != nil {
		capture = capture[:loc[0]]
	}

	capture = strings.ReplaceAll(capture, " and ", ",")
	parts := strings.Split(capture, ",")

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if fields := strings.Fields(part); len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}

// selectMentions finds registered adapter names mentioned anywhere in the
// question, case-insensitive, deduplicated, in registration order.
func (s *Selector) selectMentions(questionLower string) []string {
	var mentioned []string
	for _, name := range s.registry.Names() {
		if strings.Contains(questionLower, strings.ToLower(name)) {
			mentioned = append(mentioned, name)
		}
	}
	return mentioned
}

// selectSuggested asks the completion capability to pick adapters, keeping
// only registered names. Every failure mode (no suggester, call error,
// parse error, nothing registered among the parsed names) degrades to
// selecting all registered adapters.
func (s *Selector) selectSuggested(ctx context.Context, question string) Decision {
	if s.suggester == nil {
		return Decision{Adapters: s.registry.Names(), Strategy: StrategyFallbackAll}
	}

	reply, err := s.suggester.Complete(ctx, suggestionPrompt(s.registry.Names(), question))
	if err != nil {
		selErr := NewSelectionError(ErrCodeSuggest, "suggestion call failed", err)
		s.recordFallback(selErr)
		return Decision{Adapters: s.registry.Names(), Strategy: StrategyFallbackAll}
	}

	names, err := ParseNameList(reply)
	if err != nil {
		s.recordFallback(err)
		return Decision{Adapters: s.registry.Names(), Strategy: StrategyFallbackAll}
	}

	selected := s.filterRegistered(names)
	if len(selected) == 0 {
		s.logger.Warn("llm suggestion contained no registered adapters, selecting all",
			slog.Int("suggested", len(names)),
		)
		return Decision{Adapters: s.registry.Names(), Strategy: StrategyFallbackAll}
	}

	return Decision{Adapters: selected, Strategy: StrategySuggested}
}

// recordFallback logs a recovered selection failure and bumps its counter.
func (s *Selector) recordFallback(err error) {
	code := "unknown"
	if selErr, ok := err.(*SelectionError); ok {
		code = string(selErr.Code)
	}
	selectionFailures.WithLabelValues(code).Inc()
	s.logger.Warn("tool suggestion failed, selecting all registered adapters",
		slog.String("error", err.Error()),
	)
}

// filterRegistered maps requested names onto canonical registered names,
// case-insensitive, deduplicated, returned in registration order.
func (s *Selector) filterRegistered(requested []string) []string {
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		if s.registry.Has(name) {
			want[strings.ToLower(strings.TrimSpace(name))] = true
		}
	}

	var selected []string
	for _, name := range s.registry.Names() {
		if want[strings.ToLower(name)] {
			selected = append(selected, name)
		}
	}
	return selected
}

// suggestionPrompt builds the prompt for the LLM-assisted fallback. The
// registered name list is fed in verbatim; the reply contract matches what
// ParseNameList accepts.
func suggestionPrompt(names []string, question string) string {
	example := `["confluence"]`
	if len(names) > 0 {
		example = fmt.Sprintf("[%q]", names[0])
	}
	return fmt.Sprintf(
		"Select the information sources most relevant to the question below.\n"+
			"Available sources: %s\n\n"+
			"Question: %s\n\n"+
			"Reply with only a bracketed list of quoted source names, for example: %s. "+
			"Choose only from the available sources.",
		strings.Join(names, ", "),
		question,
		example,
	)
}

// truncateForLog shortens a string for log and span attributes.
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
