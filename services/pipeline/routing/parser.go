// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routing

import (
	"regexp"
	"strings"
)

// =============================================================================
// Suggestion List Parser
// =============================================================================

// bareNameRe accepts an unquoted adapter name token. Models frequently drop
// the quotes, so the parser tolerates bare identifiers but nothing wider.
var bareNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ParseNameList parses an LLM reply as a bracketed list of adapter names.
//
// Description:
//
//	Accepts the shape ["a", "b"] anywhere inside the reply (models tend to
//	wrap the list in prose). Items may be double-quoted, single-quoted, or
//	bare identifiers. Anything else fails closed: the reply is never
//	evaluated or otherwise executed, it either parses as a plain name list
//	or is rejected with a *SelectionError of code ErrCodeParse.
//
//	An empty list "[]" parses successfully into an empty slice; the caller
//	decides what an empty suggestion means.
//
// Inputs:
//   - raw: The model reply text.
//
// Outputs:
//   - []string: Parsed names, whitespace-trimmed, original casing kept.
//   - error: *SelectionError (ErrCodeParse) when the reply has no bracketed
//     list or any item is malformed.
func ParseNameList(raw string) ([]string, error) {
	open := strings.Index(raw, "[")
	if open < 0 {
		return nil, NewSelectionError(ErrCodeParse, "no bracketed list in reply", nil)
	}
	end := strings.LastIndex(raw, "]")
	if end < open {
		return nil, NewSelectionError(ErrCodeParse, "unterminated bracketed list in reply", nil)
	}

	inner := strings.TrimSpace(raw[open+1 : end])
	if inner == "" {
		return []string{}, nil
	}

	parts := strings.Split(inner, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name, err := parseNameToken(part)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// parseNameToken validates and unquotes a single list item.
func parseNameToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", NewSelectionError(ErrCodeParse, "empty item in name list", nil)
	}

	if len(token) >= 2 {
		first := token[0]
		last := token[len(token)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			token = strings.TrimSpace(token[1 : len(token)-1])
			if token == "" {
				return "", NewSelectionError(ErrCodeParse, "empty quoted name", nil)
			}
			return token, nil
		}
		if first == '"' || first == '\'' || last == '"' || last == '\'' {
			return "", NewSelectionError(ErrCodeParse, "unbalanced quotes in name list", nil)
		}
	}

	if !bareNameRe.MatchString(token) {
		return "", NewSelectionError(ErrCodeParse, "malformed name token: "+token, nil)
	}
	return token, nil
}
