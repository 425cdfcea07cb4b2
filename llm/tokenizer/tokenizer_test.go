package tokenizer

import (
	"strings"
	"testing"
)

func TestEstimatorASCII(t *testing.T) {
	t.Parallel()

	e := NewEstimator("test-model", 0)
	text := strings.Repeat("word ", 20) // 100 chars

	count, err := e.CountTokens(text)
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if count != 25 {
		t.Fatalf("expected 25 tokens for 100 ASCII chars, got %d", count)
	}
	if e.MaxTokens() != 4096 {
		t.Fatalf("default max tokens should be 4096, got %d", e.MaxTokens())
	}
}

func TestEstimatorCJKWeightsHigher(t *testing.T) {
	t.Parallel()

	e := NewEstimator("test-model", 8192)

	ascii, err := e.CountTokens(strings.Repeat("a", 30))
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	cjk, err := e.CountTokens(strings.Repeat("学", 30))
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if cjk <= ascii {
		t.Fatalf("CJK should count more tokens per char: cjk=%d ascii=%d", cjk, ascii)
	}
}

func TestEstimatorEdgeCases(t *testing.T) {
	t.Parallel()

	e := NewEstimator("m", 0)
	if count, _ := e.CountTokens(""); count != 0 {
		t.Fatalf("empty text should count 0, got %d", count)
	}
	if count, _ := e.CountTokens("ab"); count != 1 {
		t.Fatalf("non-empty text should count at least 1, got %d", count)
	}
}

func TestNewTiktokenModelMapping(t *testing.T) {
	t.Parallel()

	tok, err := NewTiktoken("gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewTiktoken: %v", err)
	}
	if tok.MaxTokens() != 128000 {
		t.Fatalf("unexpected context size %d", tok.MaxTokens())
	}
	if tok.Name() != "tiktoken[o200k_base]" {
		t.Fatalf("unexpected name %q", tok.Name())
	}

	// Prefix match.
	if _, err := NewTiktoken("gpt-4o-2024-08-06"); err != nil {
		t.Fatalf("prefix match failed: %v", err)
	}

	if _, err := NewTiktoken("llama3.1:8b"); err == nil {
		t.Fatal("unknown model should error")
	}
}

func TestForModelFallsBackToEstimator(t *testing.T) {
	t.Parallel()

	tok := ForModel("llama3.1:8b", 2048)
	if tok.Name() != "estimator" {
		t.Fatalf("expected estimator fallback, got %q", tok.Name())
	}
	if tok.MaxTokens() != 2048 {
		t.Fatalf("unexpected max tokens %d", tok.MaxTokens())
	}
}
