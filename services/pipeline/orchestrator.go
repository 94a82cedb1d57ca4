// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline drives a question through the fixed four-stage machine:
// rephrase -> retrieve -> answer -> summarize. The machine is strictly
// linear: no branching, no retries between stages, no cycles. Every stage is
// independently fault-tolerant: a failed stage writes a fixed placeholder
// into its state field and the pipeline keeps going, so Process always
// returns a complete, displayable state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/scout/services/llm"
	"github.com/AleutianAI/scout/services/pipeline/ranking"
	"github.com/AleutianAI/scout/services/pipeline/routing"
	"github.com/AleutianAI/scout/services/sources"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "stage_latency_seconds",
		Help:      "Latency per pipeline stage",
		Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 3.0, 10.0, 30.0},
	}, []string{"stage"})

	stageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "stage_failure_total",
		Help:      "Stage failures recovered with a placeholder value",
	}, []string{"stage"})

	processTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "pipeline",
		Name:      "process_total",
		Help:      "Questions processed end to end",
	})
)

// =============================================================================
// OTel Tracer
// =============================================================================

var pipelineTracer = otel.Tracer("scout.pipeline")

// =============================================================================
// Stage Constants
// =============================================================================

// Stage names, in execution order.
const (
	stageRephrase  = "rephrase"
	stageRetrieve  = "retrieve"
	stageAnswer    = "answer"
	stageSummarize = "summarize"
)

// Fixed placeholder strings substituted when a stage fails. The pipeline
// favors availability over correctness: a partially-failed run still yields
// a full, displayable state.
const (
	rephraseFailedText = "Error while rephrasing the question."
	retrieveFailedText = "Error while retrieving information."
	answerFailedText   = "Error while generating the answer."
)

// DefaultSummaryLimit is the answer preview length in runes.
const DefaultSummaryLimit = 150

// summaryLabel prefixes the deterministic answer preview.
const summaryLabel = "Summary: "

// =============================================================================
// Orchestrator
// =============================================================================

// Orchestrator runs the four-stage pipeline over injected collaborators.
//
// Description:
//
//	Construct once at startup and share across requests: the registry is
//	immutable, the collaborators are all safe for concurrent use, and each
//	Process call owns its State exclusively, so concurrent Process calls
//	need no cross-request synchronization.
//
// Thread Safety: Safe for concurrent use.
type Orchestrator struct {
	client       llm.Client
	registry     *sources.Registry
	invoker      *sources.SafeInvoker
	selector     *routing.Selector
	ranker       *ranking.Ranker
	summaryLimit int
	logger       *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
//
// Inputs:
//   - client: Completion capability. Must not be nil.
//   - registry: Adapter registry, frozen before first use. Must not be nil.
//   - invoker: Safe invocation wrapper. Must not be nil.
//   - selector: Tool selector. Must not be nil.
//   - ranker: Result ranker. Must not be nil.
//   - summaryLimit: Answer preview length in runes. Zero or negative uses
//     DefaultSummaryLimit.
//   - logger: Logger instance. Nil uses slog.Default().
//
// Outputs:
//   - *Orchestrator: The constructed orchestrator. Never nil.
func NewOrchestrator(client llm.Client, registry *sources.Registry, invoker *sources.SafeInvoker,
	selector *routing.Selector, ranker *ranking.Ranker, summaryLimit int, logger *slog.Logger) *Orchestrator {

	if summaryLimit <= 0 {
		summaryLimit = DefaultSummaryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client:       client,
		registry:     registry,
		invoker:      invoker,
		selector:     selector,
		ranker:       ranker,
		summaryLimit: summaryLimit,
		logger:       logger,
	}
}

// Process runs a question through all four stages.
//
// Description:
//
//	Never returns an error and never panics for adapter- or LLM-related
//	failures: every derived field of the returned State is populated, by
//	real content or by its stage's fixed placeholder. No stage is skipped.
//
// Inputs:
//   - ctx: Context for cancellation and tracing. Must not be nil.
//   - question: The user's natural-language question.
//
// Outputs:
//   - *State: The fully-populated pipeline state. Never nil.
//
// Thread Safety: Safe for concurrent use.
func (o *Orchestrator) Process(ctx context.Context, question string) *State {
	ctx, span := pipelineTracer.Start(ctx, "pipeline.Orchestrator.Process")
	defer span.End()

	state := &State{
		ID:       uuid.NewString(),
		Question: question,
	}
	span.SetAttributes(attribute.String("request_id", state.ID))

	logger := o.logger.With(slog.String("request_id", state.ID))
	logger.Info("processing question",
		slog.String("question_preview", truncateForLog(question, 80)),
	)

	o.rephrase(ctx, state, logger)
	o.retrieve(ctx, state, logger)
	o.answer(ctx, state, logger)
	o.summarize(ctx, state)

	processTotal.Inc()
	span.SetAttributes(
		attribute.String("strategy", state.Strategy),
		attribute.Int("retrieved", len(state.Retrieved)),
	)

	return state
}

// rephrase asks the model for a clearer form of the question.
func (o *Orchestrator) rephrase(ctx context.Context, state *State, logger *slog.Logger) {
	defer o.observeStage(ctx, stageRephrase)()

	reply, err := o.client.Complete(ctx, rephrasePrompt(state.Question))
	if err != nil {
		stageFailures.WithLabelValues(stageRephrase).Inc()
		logger.Warn("rephrase stage failed, continuing with placeholder",
			slog.String("error", err.Error()),
		)
		state.Rephrased = rephraseFailedText
		return
	}

	state.Rephrased = strings.TrimSpace(reply)
	if state.Rephrased == "" {
		stageFailures.WithLabelValues(stageRephrase).Inc()
		logger.Warn("rephrase stage returned empty text, continuing with placeholder")
		state.Rephrased = rephraseFailedText
	}
}

// retrieve selects adapters, fans out to them concurrently, and stores the
// ranked results.
//
// Description:
//
//	Adapter calls for one request run as concurrent, independent operations
//	joined as a batch before ranking; one adapter's failure (absorbed by the
//	safe invoker) neither cancels nor delays its siblings. A panic anywhere
//	in the stage is converted into a single-entry error mapping.
func (o *Orchestrator) retrieve(ctx context.Context, state *State, logger *slog.Logger) {
	defer o.observeStage(ctx, stageRetrieve)()

	defer func() {
		if r := recover(); r != nil {
			stageFailures.WithLabelValues(stageRetrieve).Inc()
			logger.Error("retrieve stage panicked, continuing with placeholder",
				slog.String("panic", fmt.Sprint(r)),
			)
			state.Retrieved = []Retrieved{{Adapter: "pipeline", Content: retrieveFailedText}}
		}
	}()

	decision := o.selector.Select(ctx, state.Rephrased)
	state.Strategy = string(decision.Strategy)

	if len(decision.Adapters) == 0 {
		// Explicit scoped directive with no valid adapters. Honored as an
		// empty retrieval; the answer stage runs with no supporting material.
		logger.Warn("selection is empty, skipping retrieval fan-out")
		state.Retrieved = []Retrieved{}
		return
	}

	// Fan out. Results land in selection order, which is registry
	// registration order, the first-seen order the ranker ties break on.
	contents := make([]string, len(decision.Adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range decision.Adapters {
		g.Go(func() error {
			entry, err := o.registry.Get(name)
			if err != nil {
				// Selected names come from the registry; this is unreachable
				// unless a caller mutated the registry mid-flight.
				contents[i] = fmt.Sprintf("Error while calling %s.", name)
				return nil
			}
			contents[i] = o.invoker.Invoke(gctx, entry, state.Rephrased)
			return nil
		})
	}
	// The safe invoker never returns an error, so Wait only joins the batch.
	_ = g.Wait()

	items := make([]ranking.Item, len(decision.Adapters))
	byAdapter := make(map[string]string, len(decision.Adapters))
	for i, name := range decision.Adapters {
		items[i] = ranking.Item{Adapter: name, Content: contents[i]}
		byAdapter[name] = contents[i]
	}

	ranked := o.ranker.Rank(ctx, state.Rephrased, items)

	state.Retrieved = make([]Retrieved, len(ranked))
	for i, r := range ranked {
		state.Retrieved[i] = Retrieved{
			Adapter: r.Adapter,
			Content: byAdapter[r.Adapter],
			Score:   r.Score,
		}
	}

	logger.Info("retrieval complete",
		slog.String("strategy", state.Strategy),
		slog.Int("results", len(state.Retrieved)),
	)
}

// answer synthesizes an answer from the ranked retrieval block.
func (o *Orchestrator) answer(ctx context.Context, state *State, logger *slog.Logger) {
	defer o.observeStage(ctx, stageAnswer)()

	reply, err := o.client.Complete(ctx, answerPrompt(state.RetrievedText(), state.Rephrased))
	if err != nil {
		stageFailures.WithLabelValues(stageAnswer).Inc()
		logger.Warn("answer stage failed, continuing with placeholder",
			slog.String("error", err.Error()),
		)
		state.Answer = answerFailedText
		return
	}

	state.Answer = strings.TrimSpace(reply)
	if state.Answer == "" {
		stageFailures.WithLabelValues(stageAnswer).Inc()
		logger.Warn("answer stage returned empty text, continuing with placeholder")
		state.Answer = answerFailedText
	}
}

// summarize produces the deterministic answer preview. This is a pure local
// transform with no model call, so it cannot fail.
func (o *Orchestrator) summarize(ctx context.Context, state *State) {
	defer o.observeStage(ctx, stageSummarize)()

	runes := []rune(state.Answer)
	if len(runes) > o.summaryLimit {
		runes = runes[:o.summaryLimit]
	}
	state.Summary = summaryLabel + string(runes) + "..."
}

// observeStage starts a span and latency observation for one stage and
// returns the closure that finishes both.
func (o *Orchestrator) observeStage(ctx context.Context, stage string) func() {
	start := time.Now()
	_, span := pipelineTracer.Start(ctx, "pipeline.stage."+stage)
	return func() {
		stageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		span.End()
	}
}

// truncateForLog shortens a string for log and span attributes.
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
