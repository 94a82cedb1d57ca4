// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ranking

// =============================================================================
// Matching-Blocks Similarity Ratio
// =============================================================================

// Ratio computes a normalized string-similarity ratio in [0, 1].
//
// Description:
//
//	Implements the Ratcliff/Obershelp "matching blocks" measure: find the
//	longest common block, recurse on the pieces to its left and right, and
//	report 2*M / (len(a) + len(b)) where M is the total length of all
//	matched blocks. Identical strings score 1.0; strings with no common
//	characters score 0.0. Two empty strings score 1.0.
//
//	Operates on runes so multi-byte text is compared per character, not per
//	byte. Callers that want case-insensitive comparison lowercase first.
//
// Inputs:
//   - a, b: The strings to compare.
//
// Outputs:
//   - float64: Similarity ratio in [0, 1].
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingBlockLen(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// matchingBlockLen returns the total length of all matching blocks between
// a and b, found by recursing around the longest common block.
func matchingBlockLen(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	aStart, bStart, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	matched := size
	matched += matchingBlockLen(a[:aStart], b[:bStart])
	matched += matchingBlockLen(a[aStart+size:], b[bStart+size:])
	return matched
}

// longestCommonBlock finds the longest contiguous run of runes common to a
// and b. Returns the start offset in each plus the run length. Equal-size
// ties resolve to the lowest aStart, then the lowest bStart, so recursion
// decomposes both argument orders into the same block set.
func longestCommonBlock(a, b []rune) (aStart, bStart, size int) {
	// prev[j]/curr[j] hold the length of the common suffix ending at
	// a[i-1], b[j-1] and a[i], b[j-1]. Two rows keep this O(len(b)) in
	// memory while scanning j forward, which is what makes the strict ">"
	// below land on the smallest offsets for a given block size.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				curr[j+1] = prev[j] + 1
				if curr[j+1] > size {
					size = curr[j+1]
					aStart = i - size + 1
					bStart = j - size + 1
				}
			} else {
				curr[j+1] = 0
			}
		}
		prev, curr = curr, prev
	}
	return aStart, bStart, size
}
