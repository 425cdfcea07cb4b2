package rag

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func hybridFixture(t *testing.T, cfg HybridConfig) *HybridSearchEngine {
	t.Helper()

	ix := NewTFIDFIndex(DefaultTFIDFConfig(), zap.NewNop())
	ix.Fit([]Document{
		{ID: "calc", Content: "The derivative measures the rate of change in calculus."},
		{ID: "algo", Content: "An algorithm is a finite procedure for solving a problem."},
		{ID: "bio", Content: "Cells divide through mitosis during growth."},
	})
	return NewHybridSearchEngine(cfg, ix, zap.NewNop())
}

func TestBlendCombinesBothSides(t *testing.T) {
	t.Parallel()

	h := hybridFixture(t, DefaultHybridConfig())

	semantic := map[string]float64{"calc": 0.9, "bio": 0.3}
	results := h.Blend("derivative calculus", semantic)
	if len(results) == 0 {
		t.Fatal("expected blended results")
	}

	// calc wins both sides, so it must rank first with a full score.
	if results[0].ID != "calc" {
		t.Fatalf("expected calc first, got %s", results[0].ID)
	}
	if results[0].SemanticScore != 1.0 || results[0].KeywordScore != 1.0 {
		t.Fatalf("expected max-normalized scores of 1.0, got %+v", results[0])
	}
	if results[0].HybridScore != 1.0 {
		t.Fatalf("expected hybrid score 1.0, got %f", results[0].HybridScore)
	}
}

func TestBlendKeywordOnlyCandidate(t *testing.T) {
	t.Parallel()

	h := hybridFixture(t, DefaultHybridConfig())

	// algo never appears on the semantic side but matches the query text.
	results := h.Blend("algorithm procedure", map[string]float64{"bio": 0.5})

	var found bool
	for _, res := range results {
		if res.ID == "algo" {
			found = true
			if res.SemanticScore != 0 {
				t.Fatalf("algo should have zero semantic score, got %f", res.SemanticScore)
			}
			if res.KeywordScore == 0 {
				t.Fatal("algo should have a keyword score")
			}
		}
	}
	if !found {
		t.Fatal("keyword-only candidate missing from blend")
	}
}

func TestBlendEmptySemanticSide(t *testing.T) {
	t.Parallel()

	h := hybridFixture(t, DefaultHybridConfig())
	results := h.Blend("mitosis cells", nil)
	if len(results) == 0 {
		t.Fatal("expected keyword-driven results with no semantic scores")
	}
	if results[0].ID != "bio" {
		t.Fatalf("expected bio first, got %s", results[0].ID)
	}
}

func TestBlendTopKAndMinScore(t *testing.T) {
	t.Parallel()

	h := hybridFixture(t, HybridConfig{Alpha: 0.7, TopK: 1, MinScore: 0.0})
	results := h.Blend("derivative", map[string]float64{"calc": 0.9, "bio": 0.4, "algo": 0.2})
	if len(results) != 1 {
		t.Fatalf("expected TopK=1 to truncate, got %d", len(results))
	}

	strict := hybridFixture(t, HybridConfig{Alpha: 0.7, TopK: 10, MinScore: 0.99})
	results = strict.Blend("derivative", map[string]float64{"calc": 0.9, "bio": 0.1})
	for _, res := range results {
		if res.HybridScore < 0.99 {
			t.Fatalf("MinScore filter leaked %+v", res)
		}
	}
}

func TestBlendScoreBounds(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		alpha := rapid.Float64Range(0.01, 1.0).Draw(rt, "alpha")
		h := hybridFixture(t, HybridConfig{Alpha: alpha, TopK: 10})

		n := rapid.IntRange(0, 6).Draw(rt, "n")
		semantic := make(map[string]float64, n)
		ids := []string{"calc", "algo", "bio", "x1", "x2", "x3"}
		for i := 0; i < n; i++ {
			semantic[ids[i]] = rapid.Float64Range(0, 100).Draw(rt, fmt.Sprintf("score%d", i))
		}

		results := h.Blend("derivative algorithm mitosis", semantic)
		for _, res := range results {
			if res.HybridScore < 0 || res.HybridScore > 1 {
				rt.Fatalf("hybrid score out of [0,1]: %+v", res)
			}
			if res.SemanticScore < 0 || res.SemanticScore > 1 {
				rt.Fatalf("semantic score out of [0,1]: %+v", res)
			}
			if res.KeywordScore < 0 || res.KeywordScore > 1 {
				rt.Fatalf("keyword score out of [0,1]: %+v", res)
			}
		}
		for i := 1; i < len(results); i++ {
			if results[i].HybridScore > results[i-1].HybridScore {
				rt.Fatalf("results not sorted descending at %d", i)
			}
		}
	})
}
