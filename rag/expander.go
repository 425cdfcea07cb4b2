package rag

import (
	"sort"
	"strings"
)

// QueryExpander widens a query with subject synonyms and domain riders
// before retrieval. Expansion is purely lexical; no LLM call involved.
type QueryExpander struct {
	synonyms      map[string][]string
	riders        map[string][]string
	maxExpansions int
}

// NewQueryExpander creates an expander with the built-in education-domain
// vocabulary.
func NewQueryExpander() *QueryExpander {
	return &QueryExpander{
		synonyms: map[string][]string{
			"math":        {"mathematics", "mathematical", "calculation", "computation"},
			"programming": {"coding", "software development", "computer programming"},
			"physics":     {"physical science", "mechanics", "dynamics"},
			"chemistry":   {"chemical science", "molecular science"},
			"biology":     {"biological science", "life science"},
			"study":       {"learn", "research", "investigate", "examine"},
			"understand":  {"comprehend", "grasp", "fathom", "realize"},
			"practice":    {"exercise", "drill", "rehearse", "train"},
		},
		riders: map[string][]string{
			"derivative": {"calculus", "differentiation", "rate of change"},
			"algorithm":  {"computer science", "programming", "data structure"},
		},
		maxExpansions: 8,
	}
}

// Expand returns the original query followed by its expansions, deduplicated,
// capped at the expander's limit. The original query is always first.
func (e *QueryExpander) Expand(query string) []string {
	lower := strings.ToLower(query)

	expanded := []string{query}
	seen := map[string]bool{lower: true}

	add := func(q string) {
		key := strings.ToLower(q)
		if seen[key] || len(expanded) >= e.maxExpansions {
			return
		}
		seen[key] = true
		expanded = append(expanded, q)
	}

	for _, word := range strings.Fields(lower) {
		for _, syn := range e.synonyms[word] {
			add(strings.Replace(lower, word, syn, 1))
		}
	}

	triggers := make([]string, 0, len(e.riders))
	for trigger := range e.riders {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)
	for _, trigger := range triggers {
		if !strings.Contains(lower, trigger) {
			continue
		}
		for _, term := range e.riders[trigger] {
			add(query + " " + term)
		}
	}

	return expanded
}
