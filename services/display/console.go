// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package display is the presentation sink: it receives labeled text blocks
// in a fixed order and renders them to the console. It has no effect on
// orchestration logic; streaming here is buffer-then-replay of already
// complete text, purely a display concern.
package display

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Section labels, emitted in this fixed order after each processed question.
const (
	LabelQuestion  = "Question"
	LabelRephrased = "Rephrased"
	LabelRetrieved = "Retrieved Info"
	LabelAnswer    = "Answer"
	LabelSummary   = "Summary"
)

// Section is one labeled text block.
type Section struct {
	Label   string
	Content string
}

// Sink receives labeled text blocks for display.
type Sink interface {
	// Emit displays one labeled block.
	Emit(label, content string)
}

// ConsoleSink renders labeled sections to a writer, with optional styled
// labels and optional chunked replay of the section body.
//
// Thread Safety: NOT safe for concurrent use; the chat loop is sequential.
type ConsoleSink struct {
	out        io.Writer
	stream     bool
	chunkSize  int
	chunkDelay time.Duration
	labelStyle lipgloss.Style
	styled     bool
}

// NewConsoleSink creates a ConsoleSink.
//
// Description:
//
//	Label styling is enabled only when the writer is a terminal; piped
//	output stays plain. When stream is true the section body is replayed in
//	chunkSize-rune chunks with a short delay between chunks, simulating
//	incremental token display over the already-complete text.
//
// Inputs:
//   - out: Destination writer. Nil uses os.Stdout.
//   - stream: Enables chunked replay.
//   - chunkSize: Replay chunk size in runes. Zero or negative uses 24.
//
// Outputs:
//   - *ConsoleSink: The constructed sink. Never nil.
func NewConsoleSink(out io.Writer, stream bool, chunkSize int) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	if chunkSize <= 0 {
		chunkSize = 24
	}

	styled := false
	if f, ok := out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &ConsoleSink{
		out:        out,
		stream:     stream,
		chunkSize:  chunkSize,
		chunkDelay: 15 * time.Millisecond,
		labelStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		styled:     styled,
	}
}

// Emit implements Sink.
func (s *ConsoleSink) Emit(label, content string) {
	header := label
	if s.styled {
		header = s.labelStyle.Render(label)
	}
	fmt.Fprintf(s.out, "%s\n", header)

	if s.stream {
		s.replay(content)
	} else {
		fmt.Fprint(s.out, content)
	}
	fmt.Fprint(s.out, "\n\n")
}

// EmitAll emits sections in order.
func (s *ConsoleSink) EmitAll(sections []Section) {
	for _, section := range sections {
		s.Emit(section.Label, section.Content)
	}
}

// replay writes content in rune chunks with a short pause between them.
func (s *ConsoleSink) replay(content string) {
	runes := []rune(content)
	for start := 0; start < len(runes); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		fmt.Fprint(s.out, string(runes[start:end]))
		if end < len(runes) && s.chunkDelay > 0 {
			time.Sleep(s.chunkDelay)
		}
	}
}
