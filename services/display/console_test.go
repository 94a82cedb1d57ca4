// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestEmit_PlainFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, false, 0)

	sink.Emit(LabelAnswer, "The orders are pending.")

	// A bytes.Buffer is not a terminal, so labels stay unstyled.
	want := "Answer\nThe orders are pending.\n\n"
	if got := buf.String(); got != want {
		t.Errorf("Emit wrote %q, want %q", got, want)
	}
}

func TestEmit_StreamingProducesIdenticalText(t *testing.T) {
	content := strings.Repeat("order status pending. ", 10)

	var plain, streamed bytes.Buffer
	NewConsoleSink(&plain, false, 0).Emit(LabelAnswer, content)

	sink := NewConsoleSink(&streamed, true, 7)
	sink.chunkDelay = 0 // no pauses in tests
	sink.Emit(LabelAnswer, content)

	if plain.String() != streamed.String() {
		t.Errorf("streamed output differs from plain output:\nplain:    %q\nstreamed: %q",
			plain.String(), streamed.String())
	}
}

func TestEmit_StreamingHandlesMultibyteRunes(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, true, 2)
	sink.chunkDelay = 0

	sink.Emit(LabelSummary, "héllo wörld")

	if !strings.Contains(buf.String(), "héllo wörld") {
		t.Errorf("chunking split a rune: %q", buf.String())
	}
}

func TestEmitAll_PreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, false, 0)

	sink.EmitAll([]Section{
		{Label: LabelQuestion, Content: "q"},
		{Label: LabelRephrased, Content: "r"},
		{Label: LabelRetrieved, Content: "info"},
		{Label: LabelAnswer, Content: "a"},
		{Label: LabelSummary, Content: "s"},
	})

	out := buf.String()
	labels := []string{LabelQuestion, LabelRephrased, LabelRetrieved, LabelAnswer, LabelSummary}
	last := -1
	for _, label := range labels {
		idx := strings.Index(out, label+"\n")
		if idx < 0 {
			t.Fatalf("label %q missing from output %q", label, out)
		}
		if idx <= last {
			t.Errorf("label %q appears out of order", label)
		}
		last = idx
	}
}

func TestEmit_EmptyContent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, true, 4)
	sink.chunkDelay = 0

	sink.Emit(LabelRetrieved, "")

	want := "Retrieved Info\n\n\n"
	if got := buf.String(); got != want {
		t.Errorf("Emit wrote %q, want %q", got, want)
	}
}
