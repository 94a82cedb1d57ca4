// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the Scout pipeline configuration from YAML, with a
// complete embedded default set so the binary runs with no config file at all.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed scout_defaults.yaml
var defaultsYAML []byte

// Config is the root configuration.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Sources SourcesConfig `yaml:"sources"`
	Ranking RankingConfig `yaml:"ranking"`
	Summary SummaryConfig `yaml:"summary"`
	Display DisplayConfig `yaml:"display"`
}

// LLMConfig configures the completion capability.
type LLMConfig struct {
	// URL is the Ollama server base URL.
	URL string `yaml:"url"`

	// Model is the model name used for all completion calls.
	Model string `yaml:"model"`

	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature"`
}

// SourcesConfig configures the adapter registry and safe invoker.
type SourcesConfig struct {
	// Enabled lists the builtin adapters to register. Empty means all.
	Enabled []string `yaml:"enabled"`

	// InvokeTimeoutSeconds bounds a single adapter call.
	InvokeTimeoutSeconds int `yaml:"invoke_timeout_seconds"`
}

// InvokeTimeout returns the adapter call timeout as a duration.
func (c SourcesConfig) InvokeTimeout() time.Duration {
	return time.Duration(c.InvokeTimeoutSeconds) * time.Second
}

// RankingConfig configures the result ranker.
type RankingConfig struct {
	// MatchBoost is the literal/partial match boost.
	MatchBoost int `yaml:"match_boost"`

	// ErrorPenalty is the penalty for results containing "error".
	ErrorPenalty int `yaml:"error_penalty"`
}

// SummaryConfig configures the summarize stage.
type SummaryConfig struct {
	// Limit is the answer preview length in runes.
	Limit int `yaml:"limit"`
}

// DisplayConfig configures the console sink.
type DisplayConfig struct {
	// Stream enables buffer-then-replay chunked section output.
	Stream bool `yaml:"stream"`

	// ChunkSize is the replay chunk size in runes.
	ChunkSize int `yaml:"chunk_size"`
}

// Default returns the embedded default configuration.
//
// The embedded defaults are part of the build; failing to parse them is a
// programming error, hence the panic.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads a YAML config file layered over the embedded defaults.
//
// Inputs:
//   - path: Config file path. Empty returns the defaults unchanged.
//   - logger: Logger instance. Nil uses slog.Default().
//
// Outputs:
//   - *Config: The merged, validated configuration.
//   - error: Non-nil when the file cannot be read or parsed.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.normalize(logger)
	logger.Info("loaded configuration",
		slog.String("path", path),
		slog.String("model", cfg.LLM.Model),
	)
	return cfg, nil
}

// normalize clamps out-of-range values back to their defaults.
func (c *Config) normalize(logger *slog.Logger) {
	def := Default()

	if c.LLM.URL == "" {
		c.LLM.URL = def.LLM.URL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = def.LLM.Model
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		logger.Warn("llm.temperature out of range, using default",
			slog.Float64("configured", c.LLM.Temperature),
		)
		c.LLM.Temperature = def.LLM.Temperature
	}
	if c.Sources.InvokeTimeoutSeconds <= 0 {
		c.Sources.InvokeTimeoutSeconds = def.Sources.InvokeTimeoutSeconds
	}
	if c.Ranking.MatchBoost <= 0 {
		c.Ranking.MatchBoost = def.Ranking.MatchBoost
	}
	if c.Ranking.ErrorPenalty < 0 {
		c.Ranking.ErrorPenalty = def.Ranking.ErrorPenalty
	}
	if c.Summary.Limit <= 0 {
		c.Summary.Limit = def.Summary.Limit
	}
	if c.Display.ChunkSize <= 0 {
		c.Display.ChunkSize = def.Display.ChunkSize
	}
}
