package rag

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func tfidfDocs() []Document {
	return []Document{
		{ID: "calc", Content: "The derivative measures the rate of change of a function in calculus."},
		{ID: "algo", Content: "A sorting algorithm arranges data structures in a defined order."},
		{ID: "bio", Content: "Photosynthesis converts light energy into chemical energy in plants."},
	}
}

func TestTFIDFSearchRanksRelevantFirst(t *testing.T) {
	t.Parallel()

	ix := NewTFIDFIndex(DefaultTFIDFConfig(), zap.NewNop())
	ix.Fit(tfidfDocs())

	results := ix.Search("derivative calculus", 3)
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].ID != "calc" {
		t.Fatalf("expected calc first, got %s", results[0].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not sorted: %v", results)
		}
	}
}

func TestTFIDFScoreOmitsZeroMatches(t *testing.T) {
	t.Parallel()

	ix := NewTFIDFIndex(DefaultTFIDFConfig(), zap.NewNop())
	ix.Fit(tfidfDocs())

	scores := ix.Score("photosynthesis")
	if _, ok := scores["bio"]; !ok {
		t.Fatal("expected bio to score")
	}
	if _, ok := scores["calc"]; ok {
		t.Fatal("calc should not appear for an unrelated query")
	}
}

func TestTFIDFUnknownQueryTerms(t *testing.T) {
	t.Parallel()

	ix := NewTFIDFIndex(DefaultTFIDFConfig(), zap.NewNop())
	ix.Fit(tfidfDocs())

	if scores := ix.Score("zzzz qqqq"); len(scores) != 0 {
		t.Fatalf("expected no scores for out-of-vocabulary query, got %v", scores)
	}
}

func TestTFIDFStopwordsFiltered(t *testing.T) {
	t.Parallel()

	ix := NewTFIDFIndex(DefaultTFIDFConfig(), zap.NewNop())
	ix.Fit(tfidfDocs())

	// A stopword-only query matches nothing even though every document
	// contains these words.
	if scores := ix.Score("the of a in"); len(scores) != 0 {
		t.Fatalf("expected stopword query to score nothing, got %v", scores)
	}
}

func TestTFIDFBigramsImproveMatching(t *testing.T) {
	t.Parallel()

	docs := []Document{
		{ID: "a", Content: "machine learning models require training data"},
		{ID: "b", Content: "a learning machine in a factory presses metal"},
	}

	ix := NewTFIDFIndex(TFIDFConfig{MaxFeatures: 1000, NgramMax: 2}, zap.NewNop())
	ix.Fit(docs)

	scores := ix.Score("machine learning")
	if scores["a"] <= scores["b"] {
		t.Fatalf("bigram match should outrank bag-of-words match: %v", scores)
	}
}

func TestTFIDFMaxFeaturesCapsVocabulary(t *testing.T) {
	t.Parallel()

	docs := make([]Document, 20)
	for i := range docs {
		docs[i] = Document{
			ID:      fmt.Sprintf("doc-%d", i),
			Content: fmt.Sprintf("common shared words plus unique%d token%d", i, i),
		}
	}

	ix := NewTFIDFIndex(TFIDFConfig{MaxFeatures: 5, NgramMax: 1}, zap.NewNop())
	ix.Fit(docs)

	// The common terms survive the cap; most unique terms cannot.
	if scores := ix.Score("common shared words"); len(scores) != len(docs) {
		t.Fatalf("expected every document to match the common terms, got %d", len(scores))
	}
}

func TestTFIDFFitReplacesIndex(t *testing.T) {
	t.Parallel()

	ix := NewTFIDFIndex(DefaultTFIDFConfig(), zap.NewNop())
	ix.Fit(tfidfDocs())
	if ix.Size() != 3 {
		t.Fatalf("expected size 3, got %d", ix.Size())
	}

	ix.Fit([]Document{{ID: "solo", Content: "thermodynamics and entropy"}})
	if ix.Size() != 1 {
		t.Fatalf("expected size 1 after refit, got %d", ix.Size())
	}
	if scores := ix.Score("derivative"); len(scores) != 0 {
		t.Fatalf("old corpus should be gone, got %v", scores)
	}
}

func TestTFIDFDeterministic(t *testing.T) {
	t.Parallel()

	build := func() []ScoredDocument {
		ix := NewTFIDFIndex(TFIDFConfig{MaxFeatures: 10, NgramMax: 2}, zap.NewNop())
		ix.Fit(tfidfDocs())
		return ix.Search("energy change function", 3)
	}

	first := build()
	for i := 0; i < 5; i++ {
		again := build()
		if len(again) != len(first) {
			t.Fatalf("nondeterministic result count: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if again[j].ID != first[j].ID || again[j].Score != first[j].Score {
				t.Fatalf("nondeterministic result %d: %+v vs %+v", j, again[j], first[j])
			}
		}
	}
}
