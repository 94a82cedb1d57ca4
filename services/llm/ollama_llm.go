// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	completionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scout",
		Subsystem: "llm",
		Name:      "completion_total",
		Help:      "Completion calls by outcome: success, error",
	}, []string{"outcome"})

	completionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scout",
		Subsystem: "llm",
		Name:      "completion_latency_seconds",
		Help:      "Completion call latency",
		Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
	})
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultOllamaURL is the stock local Ollama endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultOllamaModel matches the model the pipeline was tuned against.
	DefaultOllamaModel = "mistral"

	// DefaultTemperature keeps rephrase/answer output mostly deterministic.
	DefaultTemperature = 0.2
)

// =============================================================================
// Ollama Client
// =============================================================================

// OllamaClient implements Client against an Ollama server via langchaingo.
//
// Thread Safety: OllamaClient is safe for concurrent use.
type OllamaClient struct {
	llm         *ollama.LLM
	model       string
	temperature float64
	logger      *slog.Logger
}

// NewOllamaClient creates an OllamaClient with explicit configuration.
//
// Description:
//
//	Creates the underlying langchaingo Ollama model handle. No network call
//	is made at construction time; a wrong URL only surfaces on the first
//	Complete call.
//
// Inputs:
//   - serverURL: Ollama base URL. Empty uses DefaultOllamaURL.
//   - model: Model name. Empty uses DefaultOllamaModel.
//   - temperature: Sampling temperature. Negative uses DefaultTemperature.
//   - logger: Logger instance. Nil uses slog.Default().
//
// Outputs:
//   - *OllamaClient: The configured client.
//   - error: Non-nil when the langchaingo client cannot be constructed.
func NewOllamaClient(serverURL, model string, temperature float64, logger *slog.Logger) (*OllamaClient, error) {
	if serverURL == "" {
		serverURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	if logger == nil {
		logger = slog.Default()
	}

	handle, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: creating ollama client: %w", err)
	}

	logger.Info("initialized ollama client",
		slog.String("url", serverURL),
		slog.String("model", model),
	)

	return &OllamaClient{
		llm:         handle,
		model:       model,
		temperature: temperature,
		logger:      logger,
	}, nil
}

// Complete implements Client.Complete.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// CompleteStream implements Client.CompleteStream.
//
// Description:
//
//	Streams reply chunks through onChunk while assembling the full text.
//	The returned text is the complete reply regardless of how many chunks
//	were delivered.
func (c *OllamaClient) CompleteStream(ctx context.Context, prompt string, onChunk func(chunk string)) (string, error) {
	return c.generate(ctx, prompt, onChunk)
}

// generate runs one completion call, optionally streaming chunks.
func (c *OllamaClient) generate(ctx context.Context, prompt string, onChunk func(chunk string)) (string, error) {
	start := time.Now()

	opts := []llms.CallOption{
		llms.WithTemperature(c.temperature),
	}
	if onChunk != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			onChunk(string(chunk))
			return nil
		}))
	}

	reply, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, opts...)
	duration := time.Since(start)
	completionLatency.Observe(duration.Seconds())

	if err != nil {
		completionTotal.WithLabelValues("error").Inc()
		c.logger.Warn("completion call failed",
			slog.String("model", c.model),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return "", fmt.Errorf("llm: completion via %s: %w", c.model, err)
	}

	completionTotal.WithLabelValues("success").Inc()
	c.logger.Debug("completion call succeeded",
		slog.String("model", c.model),
		slog.String("prompt_preview", previewForLog(prompt, 80)),
		slog.Int("reply_chars", len(reply)),
		slog.Duration("duration", duration),
	)

	return reply, nil
}

// Model returns the configured model name.
func (c *OllamaClient) Model() string {
	return c.model
}
