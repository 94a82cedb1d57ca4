// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides the language-model completion capability used by the
// pipeline. The pipeline treats it as a black box with no retry contract of
// its own: a failed call surfaces as an error and each stage decides how to
// degrade.
package llm

import "context"

// Client is the completion capability.
//
// Description:
//
//	Complete blocks until the full reply text is available; stages require
//	full text before the next stage starts. CompleteStream produces the
//	same full text but additionally hands each chunk to onChunk as it
//	arrives, for incremental display. Display streaming is best-effort and
//	never a correctness concern.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a prompt and returns the model's full reply text.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteStream sends a prompt, invoking onChunk for each reply chunk,
	// and returns the assembled full reply text. onChunk may be nil.
	CompleteStream(ctx context.Context, prompt string, onChunk func(chunk string)) (string, error)
}
