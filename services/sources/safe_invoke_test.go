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
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSafeInvoke_Success(t *testing.T) {
	invoker := NewSafeInvoker(0, nil)
	entry := Entry{Name: "confluence", Invoke: func(query string) (string, error) {
		return "[Confluence] Found internal doc for: " + query, nil
	}}

	got := invoker.Invoke(context.Background(), entry, "orders")
	if got != "[Confluence] Found internal doc for: orders" {
		t.Errorf("Invoke = %q, want adapter output passed through", got)
	}
}

func TestSafeInvoke_ErrorBecomesPlaceholder(t *testing.T) {
	invoker := NewSafeInvoker(0, nil)
	entry := Entry{Name: "graphql", Invoke: func(string) (string, error) {
		return "", errors.New("backend unavailable")
	}}

	got := invoker.Invoke(context.Background(), entry, "orders")
	if got != "Error while calling graphql." {
		t.Errorf("Invoke = %q, want placeholder", got)
	}
}

func TestSafeInvoke_PanicBecomesPlaceholder(t *testing.T) {
	invoker := NewSafeInvoker(0, nil)
	entry := Entry{Name: "bitbucket", Invoke: func(string) (string, error) {
		panic("index out of range")
	}}

	// Must not propagate the panic.
	got := invoker.Invoke(context.Background(), entry, "orders")
	if !strings.Contains(got, "Error while calling") || !strings.Contains(got, "bitbucket") {
		t.Errorf("Invoke = %q, want placeholder naming the adapter", got)
	}
}

func TestSafeInvoke_EmptyOutputBecomesPlaceholder(t *testing.T) {
	invoker := NewSafeInvoker(0, nil)
	entry := Entry{Name: "fieldmap", Invoke: func(string) (string, error) {
		return "", nil
	}}

	got := invoker.Invoke(context.Background(), entry, "orders")
	if got != "Error while calling fieldmap." {
		t.Errorf("Invoke = %q, want placeholder for empty output", got)
	}
}

func TestSafeInvoke_TimeoutBecomesPlaceholder(t *testing.T) {
	invoker := NewSafeInvoker(20*time.Millisecond, nil)
	release := make(chan struct{})
	defer close(release)
	entry := Entry{Name: "postgresql", Invoke: func(string) (string, error) {
		<-release
		return "too late", nil
	}}

	start := time.Now()
	got := invoker.Invoke(context.Background(), entry, "orders")
	if got != "Error while calling postgresql." {
		t.Errorf("Invoke = %q, want timeout placeholder", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Invoke blocked for %v, want prompt timeout", elapsed)
	}
}

func TestSafeInvoke_NeverReturnsEmpty(t *testing.T) {
	invoker := NewSafeInvoker(0, nil)
	adapters := []Entry{
		{Name: "a", Invoke: func(string) (string, error) { return "ok", nil }},
		{Name: "b", Invoke: func(string) (string, error) { return "", nil }},
		{Name: "c", Invoke: func(string) (string, error) { return "", errors.New("nope") }},
		{Name: "d", Invoke: func(string) (string, error) { panic("boom") }},
	}

	for _, entry := range adapters {
		if got := invoker.Invoke(context.Background(), entry, "q"); got == "" {
			t.Errorf("adapter %s: Invoke returned empty text", entry.Name)
		}
	}
}

func TestBuiltinAdapters_EchoTheQuery(t *testing.T) {
	registry, err := NewBuiltinRegistry(nil)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	for _, name := range registry.Names() {
		entry, err := registry.Get(name)
		if err != nil {
			t.Fatalf("Get(%s): %v", name, err)
		}
		got, err := entry.Invoke("pending orders")
		if err != nil {
			t.Errorf("%s returned error: %v", name, err)
		}
		if !strings.Contains(got, "pending orders") {
			t.Errorf("%s output %q does not echo the query", name, got)
		}
	}
}
