// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	invokeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "sources",
		Name:      "invoke_total",
		Help:      "Adapter invocations by adapter and outcome: success, error, panic, timeout, empty",
	}, []string{"adapter", "outcome"})

	invokeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scout",
		Subsystem: "sources",
		Name:      "invoke_latency_seconds",
		Help:      "Adapter invocation latency",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 3.0, 10.0},
	}, []string{"adapter"})
)

// =============================================================================
// OTel Tracer
// =============================================================================

var invokeTracer = otel.Tracer("scout.sources")

// =============================================================================
// SafeInvoker
// =============================================================================

// DefaultInvokeTimeout bounds a single adapter call when no timeout is configured.
const DefaultInvokeTimeout = 10 * time.Second

// SafeInvoker calls adapters and converts every failure mode into a
// placeholder result instead of propagating it.
//
// Description:
//
//	The retrieve stage fans out to several adapters concurrently; one
//	misbehaving adapter must never take down the batch. SafeInvoker
//	guarantees: never panics, never returns an error, always returns
//	non-empty text. Errors, panics, timeouts, and empty adapter output all
//	collapse into the fixed placeholder "Error while calling <name>."
//	with the cause recorded in a structured log entry.
//
// Thread Safety: Safe for concurrent use (all state is read-only).
type SafeInvoker struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewSafeInvoker creates a SafeInvoker.
//
// Inputs:
//   - timeout: Maximum time for a single adapter call. Zero or negative uses
//     DefaultInvokeTimeout.
//   - logger: Logger instance. Nil uses slog.Default().
//
// Outputs:
//   - *SafeInvoker: The constructed invoker. Never nil.
func NewSafeInvoker(timeout time.Duration, logger *slog.Logger) *SafeInvoker {
	if timeout <= 0 {
		timeout = DefaultInvokeTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SafeInvoker{timeout: timeout, logger: logger}
}

// invocationPlaceholder builds the fixed placeholder text for a failed call.
func invocationPlaceholder(name string) string {
	return fmt.Sprintf("Error while calling %s.", name)
}

// invokeResult carries one adapter call's outcome across the goroutine boundary.
type invokeResult struct {
	text string
	err  error
}

// Invoke calls an adapter and always returns displayable text.
//
// Description:
//
//	Runs entry.Invoke in its own goroutine with a panic guard, bounded by
//	the configured timeout. On success returns the adapter's output. On
//	error, panic, timeout, or empty output returns the placeholder
//	"Error while calling <name>.". The only side effect of a failure is a
//	log record and a metrics increment.
//
// Inputs:
//   - ctx: Context for cancellation. Must not be nil.
//   - entry: The adapter to call.
//   - query: The query string passed through to the adapter.
//
// Outputs:
//   - string: Adapter output or the failure placeholder. Never empty.
//
// Thread Safety: Safe for concurrent use.
func (s *SafeInvoker) Invoke(ctx context.Context, entry Entry, query string) string {
	start := time.Now()

	ctx, span := invokeTracer.Start(ctx, "sources.SafeInvoker.Invoke")
	span.SetAttributes(attribute.String("adapter", entry.Name))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resultCh := make(chan invokeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- invokeResult{err: fmt.Errorf("adapter panicked: %v", r)}
			}
		}()
		text, err := entry.Invoke(query)
		resultCh <- invokeResult{text: text, err: err}
	}()

	var outcome string
	var text string

	select {
	case <-ctx.Done():
		outcome = "timeout"
		s.logger.Warn("adapter call timed out",
			slog.String("adapter", entry.Name),
			slog.String("query", query),
			slog.Duration("timeout", s.timeout),
		)
		text = invocationPlaceholder(entry.Name)

	case res := <-resultCh:
		switch {
		case res.err != nil:
			outcome = "error"
			s.logger.Warn("adapter call failed",
				slog.String("adapter", entry.Name),
				slog.String("query", query),
				slog.String("error", res.err.Error()),
			)
			text = invocationPlaceholder(entry.Name)
		case res.text == "":
			outcome = "empty"
			s.logger.Warn("adapter returned empty result",
				slog.String("adapter", entry.Name),
				slog.String("query", query),
			)
			text = invocationPlaceholder(entry.Name)
		default:
			outcome = "success"
			text = res.text
		}
	}

	duration := time.Since(start)
	invokeTotal.WithLabelValues(entry.Name, outcome).Inc()
	invokeLatency.WithLabelValues(entry.Name).Observe(duration.Seconds())
	span.SetAttributes(attribute.String("outcome", outcome))

	s.logger.Debug("adapter call finished",
		slog.String("adapter", entry.Name),
		slog.String("outcome", outcome),
		slog.Duration("duration", duration),
	)

	return text
}
