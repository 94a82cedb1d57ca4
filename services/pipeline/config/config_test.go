// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:11434", cfg.LLM.URL)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Empty(t, cfg.Sources.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Sources.InvokeTimeout())
	assert.Equal(t, 2, cfg.Ranking.MatchBoost)
	assert.Equal(t, 1, cfg.Ranking.ErrorPenalty)
	assert.Equal(t, 150, cfg.Summary.Limit)
	assert.True(t, cfg.Display.Stream)
	assert.Equal(t, 24, cfg.Display.ChunkSize)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.yaml")
	body := `
llm:
  model: "llama3"
sources:
  enabled: ["postgresql", "confluence"]
summary:
  limit: 80
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	// Overridden fields take the file's values.
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, []string{"postgresql", "confluence"}, cfg.Sources.Enabled)
	assert.Equal(t, 80, cfg.Summary.Limit)

	// Untouched fields keep the embedded defaults.
	assert.Equal(t, "http://localhost:11434", cfg.LLM.URL)
	assert.Equal(t, 2, cfg.Ranking.MatchBoost)
}

func TestLoad_NormalizesOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.yaml")
	body := `
llm:
  temperature: 9.5
sources:
  invoke_timeout_seconds: -3
ranking:
  match_boost: 0
  error_penalty: -1
summary:
  limit: 0
display:
  chunk_size: -10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	def := Default()
	assert.InDelta(t, def.LLM.Temperature, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, def.Sources.InvokeTimeoutSeconds, cfg.Sources.InvokeTimeoutSeconds)
	assert.Equal(t, def.Ranking.MatchBoost, cfg.Ranking.MatchBoost)
	assert.Equal(t, def.Ranking.ErrorPenalty, cfg.Ranking.ErrorPenalty)
	assert.Equal(t, def.Summary.Limit, cfg.Summary.Limit)
	assert.Equal(t, def.Display.ChunkSize, cfg.Display.ChunkSize)
}

func TestLoad_ZeroErrorPenaltyIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranking:\n  error_penalty: 0\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	// Zero disables the penalty; it must not snap back to the default.
	assert.Equal(t, 0, cfg.Ranking.ErrorPenalty)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a mapping"), 0o600))

	_, err := Load(path, nil)
	require.Error(t, err)
}
