// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import "fmt"

// rephrasePrompt builds the rephrase stage prompt.
func rephrasePrompt(question string) string {
	return fmt.Sprintf("Rephrase this question to be clearer: %s", question)
}

// answerPrompt builds the answer stage prompt from the ranked retrieval
// block and the rephrased question.
func answerPrompt(retrieved, rephrased string) string {
	return fmt.Sprintf("Using this info:\n%s\n\nAnswer the question: %s", retrieved, rephrased)
}
