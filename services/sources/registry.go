// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sources provides the information-source adapter registry and the
// safe invocation wrapper that shields the pipeline from adapter failures.
//
// An adapter is a named text-in/text-out connector to an information source
// (wiki, code host, database, API). Adapters are registered once at startup;
// during request processing the registry is read-only, which is what makes
// concurrent fan-out over it safe without locking.
package sources

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Adapter Contract
// =============================================================================

// InvokeFunc is the contract every information-source adapter implements.
//
// Description:
//
//	Takes a query string and returns retrieved text. May return an error or
//	panic; callers are expected to go through SafeInvoker, which converts
//	both into a placeholder result instead of propagating.
type InvokeFunc func(query string) (string, error)

// Entry is a single registered adapter: its canonical name plus its callable.
type Entry struct {
	// Name is the canonical (registration-time) adapter name.
	Name string

	// Invoke is the adapter callable. May return an error or panic.
	Invoke InvokeFunc
}

// =============================================================================
// Errors
// =============================================================================

// UnknownAdapterError indicates a lookup for a name that was never registered.
type UnknownAdapterError struct {
	// Name is the adapter name that was requested.
	Name string
}

// Error implements the error interface.
func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("sources: unknown adapter %q", e.Name)
}

// =============================================================================
// Registry
// =============================================================================

// Registry is the fixed mapping from adapter name to adapter entry.
//
// Description:
//
//	Built once at startup via Register calls and then treated as immutable
//	process-wide configuration. Name matching is case-insensitive; the
//	canonical casing is whatever was passed to Register first.
//
// Thread Safety: Safe for concurrent reads after registration completes.
// Register is NOT safe to call concurrently with reads; call during init only.
type Registry struct {
	// entries maps the lowercased name to its entry.
	entries map[string]Entry

	// order holds lowercased names in registration order. This is the
	// first-seen order used as the stable tie-break during ranking.
	order []string
}

// NewRegistry creates an empty adapter registry.
//
// Outputs:
//   - *Registry: The empty registry. Never nil.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds an adapter under a unique case-insensitive name.
//
// Description:
//
//	Names are matched case-insensitively; registering "Confluence" after
//	"confluence" is rejected as a duplicate. Registration order is retained
//	and exposed through Names.
//
// Inputs:
//   - name: The adapter name. Must be non-empty after trimming.
//   - fn: The adapter callable. Must not be nil.
//
// Outputs:
//   - error: Non-nil on empty name, nil fn, or duplicate name.
func (r *Registry) Register(name string, fn InvokeFunc) error {
	canonical := strings.TrimSpace(name)
	if canonical == "" {
		return fmt.Errorf("sources: adapter name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("sources: adapter %q has nil invoke func", canonical)
	}

	key := strings.ToLower(canonical)
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("sources: adapter %q already registered", canonical)
	}

	r.entries[key] = Entry{Name: canonical, Invoke: fn}
	r.order = append(r.order, key)
	return nil
}

// Get looks up an adapter by case-insensitive name.
//
// Outputs:
//   - Entry: The registered entry on success.
//   - error: *UnknownAdapterError when the name was never registered.
func (r *Registry) Get(name string) (Entry, error) {
	entry, ok := r.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, &UnknownAdapterError{Name: name}
	}
	return entry, nil
}

// Has reports whether a case-insensitive name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns the canonical adapter names in registration order.
//
// Description:
//
//	Registration order is the stable "first-seen" order the ranker uses to
//	break score ties, so this method must never sort or otherwise reorder.
//
// Outputs:
//   - []string: Canonical names. A fresh slice; callers may mutate it.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.entries[key].Name)
	}
	return names
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.order)
}

// SortedNames returns the canonical adapter names in lexical order.
// Useful for deterministic prompt construction and log output.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
