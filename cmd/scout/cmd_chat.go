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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/scout/services/display"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question loop",
	Long: "Reads questions from stdin and prints each pipeline stage's output\n" +
		"as a labeled section. Type 'exit' or 'quit' to leave.",
	RunE: runChatCommand,
}

func runChatCommand(cmd *cobra.Command, _ []string) error {
	logger := setupLogging()

	orchestrator, cfg, err := buildPipeline(logger)
	if err != nil {
		return err
	}

	sink := display.NewConsoleSink(os.Stdout, cfg.Display.Stream, cfg.Display.ChunkSize)

	fmt.Println("scout chat: ask a question, or 'exit' to leave")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		state := orchestrator.Process(cmd.Context(), question)

		sink.Emit(display.LabelQuestion, state.Question)
		sink.EmitAll(stateSections(state))
	}

	return scanner.Err()
}
