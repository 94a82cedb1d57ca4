// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/scout/services/display"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the pipeline output",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAskCommand,
}

func runAskCommand(cmd *cobra.Command, args []string) error {
	logger := setupLogging()

	orchestrator, cfg, err := buildPipeline(logger)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	state := orchestrator.Process(cmd.Context(), question)

	sink := display.NewConsoleSink(os.Stdout, cfg.Display.Stream, cfg.Display.ChunkSize)
	sink.EmitAll(stateSections(state))
	return nil
}
