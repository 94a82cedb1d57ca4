// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Scout answers natural-language questions by rephrasing them, querying a
// set of information-source adapters concurrently, ranking what comes back,
// and synthesizing an answer with a local LLM.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/scout/services/display"
	"github.com/AleutianAI/scout/services/llm"
	"github.com/AleutianAI/scout/services/pipeline"
	"github.com/AleutianAI/scout/services/pipeline/config"
	"github.com/AleutianAI/scout/services/pipeline/ranking"
	"github.com/AleutianAI/scout/services/pipeline/routing"
	"github.com/AleutianAI/scout/services/sources"
)

// Flag values shared by the subcommands.
var (
	configPath string
	ollamaURL  string
	modelName  string
	logLevel   string
	noStream   bool
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Question answering over simulated information sources",
	Long: "Scout runs a four-stage pipeline (rephrase, retrieve, answer, summarize)\n" +
		"over a set of information-source adapters, using a local Ollama model\n" +
		"for rephrasing, source suggestion, and answer synthesis.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&ollamaURL, "ollama-url", "", "Ollama server URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "Model name (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noStream, "no-stream", false, "Disable chunked section replay")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

// setupLogging installs the process-wide slog handler.
func setupLogging() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// buildPipeline wires the orchestrator and its collaborators from config.
// The registry and orchestrator are values built once here and passed into
// the command handlers; there is no process-wide pipeline singleton.
func buildPipeline(logger *slog.Logger) (*pipeline.Orchestrator, *config.Config, error) {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return nil, nil, err
	}
	if ollamaURL != "" {
		cfg.LLM.URL = ollamaURL
	}
	if modelName != "" {
		cfg.LLM.Model = modelName
	}
	if noStream {
		cfg.Display.Stream = false
	}

	client, err := llm.NewOllamaClient(cfg.LLM.URL, cfg.LLM.Model, cfg.LLM.Temperature, logger)
	if err != nil {
		return nil, nil, err
	}

	registry, err := sources.NewBuiltinRegistry(cfg.Sources.Enabled)
	if err != nil {
		return nil, nil, err
	}

	invoker := sources.NewSafeInvoker(cfg.Sources.InvokeTimeout(), logger)
	selector := routing.NewSelector(registry, client, logger)
	ranker := ranking.NewRanker(cfg.Ranking.MatchBoost, cfg.Ranking.ErrorPenalty, logger)

	orchestrator := pipeline.NewOrchestrator(
		client, registry, invoker, selector, ranker, cfg.Summary.Limit, logger,
	)
	return orchestrator, cfg, nil
}

// stateSections maps a finished pipeline state onto the fixed display order.
func stateSections(state *pipeline.State) []display.Section {
	retrieved := state.RetrievedText()
	if retrieved == "" {
		retrieved = "(no sources selected)"
	}
	return []display.Section{
		{Label: display.LabelRephrased, Content: state.Rephrased},
		{Label: display.LabelRetrieved, Content: retrieved},
		{Label: display.LabelAnswer, Content: state.Answer},
		{Label: display.LabelSummary, Content: state.Summary},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
