package rag

import (
	"strings"
	"testing"
)

func TestExpandOriginalAlwaysFirst(t *testing.T) {
	t.Parallel()

	e := NewQueryExpander()
	got := e.Expand("How Do I Study Math")
	if len(got) < 2 {
		t.Fatalf("expected expansions, got %v", got)
	}
	if got[0] != "How Do I Study Math" {
		t.Fatalf("original query must lead, got %q", got[0])
	}
}

func TestExpandSynonymSubstitution(t *testing.T) {
	t.Parallel()

	e := NewQueryExpander()
	got := e.Expand("practice math problems")

	var sawMathematics bool
	for _, q := range got {
		if strings.Contains(q, "mathematics") {
			sawMathematics = true
		}
	}
	if !sawMathematics {
		t.Fatalf("expected a mathematics substitution, got %v", got)
	}
}

func TestExpandDomainRiders(t *testing.T) {
	t.Parallel()

	e := NewQueryExpander()
	got := e.Expand("what is a derivative")

	joined := strings.Join(got, " | ")
	if !strings.Contains(joined, "derivative calculus") &&
		!strings.Contains(joined, "what is a derivative calculus") {
		t.Fatalf("expected a calculus rider, got %v", got)
	}
}

func TestExpandCapAndDedupe(t *testing.T) {
	t.Parallel()

	e := NewQueryExpander()
	// Hits several synonym groups and a rider at once.
	got := e.Expand("study practice understand math algorithm")
	if len(got) > 8 {
		t.Fatalf("expansion cap exceeded: %d queries", len(got))
	}

	seen := make(map[string]bool, len(got))
	for _, q := range got {
		key := strings.ToLower(q)
		if seen[key] {
			t.Fatalf("duplicate expansion %q", q)
		}
		seen[key] = true
	}
}

func TestExpandNoTriggers(t *testing.T) {
	t.Parallel()

	e := NewQueryExpander()
	got := e.Expand("unrelated gibberish zyx")
	if len(got) != 1 {
		t.Fatalf("expected only the original query, got %v", got)
	}
}

func TestExpandDeterministic(t *testing.T) {
	t.Parallel()

	e := NewQueryExpander()
	first := e.Expand("study the derivative algorithm")
	for i := 0; i < 10; i++ {
		again := e.Expand("study the derivative algorithm")
		if len(again) != len(first) {
			t.Fatalf("nondeterministic expansion count: %v vs %v", again, first)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("nondeterministic expansion at %d: %v vs %v", j, again, first)
			}
		}
	}
}
