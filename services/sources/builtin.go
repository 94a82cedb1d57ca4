// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sources

import (
	"fmt"
	"strings"
)

// =============================================================================
// Builtin Simulated Adapters
// =============================================================================

// The builtin adapters are stand-ins for real backends. Only their contract
// matters to the pipeline: a name, a query in, text out, may fail. Each
// returns a canned response in a backend-flavored shape so ranked output and
// answer prompts look like the real thing during development and tests.

// SearchConfluence simulates a wiki page lookup.
func SearchConfluence(query string) (string, error) {
	return fmt.Sprintf("[Confluence] Found internal doc for: %s", query), nil
}

// SearchBitbucket simulates a code host search.
func SearchBitbucket(query string) (string, error) {
	return fmt.Sprintf("[Bitbucket] Found relevant repo and file snippet for: %s", query), nil
}

// QueryPostgres simulates a relational database lookup.
func QueryPostgres(query string) (string, error) {
	return fmt.Sprintf("[PostgreSQL] Found matching records for: %s", query), nil
}

// QueryGraphQL simulates a GraphQL API call.
func QueryGraphQL(query string) (string, error) {
	return fmt.Sprintf("[GraphQL] Received schema-matching results for: %s", query), nil
}

// LookupFieldMapping simulates a data-dictionary / field-mapping lookup.
func LookupFieldMapping(query string) (string, error) {
	return fmt.Sprintf("[FieldMapping] Resolved field definitions for: %s", query), nil
}

// builtinAdapters maps the default adapter names to their callables in the
// order they are registered. The order matters: it is the stable tie-break
// order for ranking.
var builtinAdapters = []struct {
	name string
	fn   InvokeFunc
}{
	{"confluence", SearchConfluence},
	{"bitbucket", SearchBitbucket},
	{"postgresql", QueryPostgres},
	{"graphql", QueryGraphQL},
	{"fieldmap", LookupFieldMapping},
}

// NewBuiltinRegistry builds a registry with the builtin simulated adapters.
//
// Description:
//
//	Registers the builtin adapters in their canonical order. When enabled is
//	non-empty, only the named adapters (case-insensitive) are registered;
//	unknown names in enabled are reported as an error so a configuration
//	typo does not silently shrink the search surface.
//
// Inputs:
//   - enabled: Adapter names to register. Empty means all builtins.
//
// Outputs:
//   - *Registry: The populated registry.
//   - error: Non-nil when enabled names an unknown builtin.
func NewBuiltinRegistry(enabled []string) (*Registry, error) {
	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		want[strings.ToLower(strings.TrimSpace(name))] = true
	}

	filtered := len(want) > 0

	registry := NewRegistry()
	for _, builtin := range builtinAdapters {
		if filtered && !want[builtin.name] {
			continue
		}
		delete(want, builtin.name)
		if err := registry.Register(builtin.name, builtin.fn); err != nil {
			return nil, fmt.Errorf("sources: registering builtin %q: %w", builtin.name, err)
		}
	}

	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for name := range want {
			unknown = append(unknown, name)
		}
		return nil, fmt.Errorf("sources: unknown builtin adapter(s) in config: %s", strings.Join(unknown, ", "))
	}

	return registry, nil
}
