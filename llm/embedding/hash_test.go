package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashingProviderDeterministic(t *testing.T) {
	t.Parallel()

	p := NewHashingProvider(128)
	ctx := context.Background()

	a, err := p.EmbedQuery(ctx, "the derivative of a function")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	b, err := p.EmbedQuery(ctx, "the derivative of a function")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(a) != 128 {
		t.Fatalf("expected 128 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("nondeterministic at dim %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestHashingProviderNormalized(t *testing.T) {
	t.Parallel()

	p := NewHashingProvider(0)
	vec, err := p.EmbedQuery(context.Background(), "photosynthesis in plants")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(vec) != 256 {
		t.Fatalf("default dimensions should be 256, got %d", len(vec))
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Fatalf("vector not unit length: %f", math.Sqrt(norm))
	}
}

func TestHashingProviderSimilarityOrdering(t *testing.T) {
	t.Parallel()

	p := NewHashingProvider(256)
	ctx := context.Background()

	query, _ := p.EmbedQuery(ctx, "derivative calculus rate of change")
	near, _ := p.EmbedQuery(ctx, "the derivative in calculus measures rate of change")
	far, _ := p.EmbedQuery(ctx, "mitosis divides cells during growth")

	if dot(query, near) <= dot(query, far) {
		t.Fatalf("lexically similar text should score higher: near=%f far=%f",
			dot(query, near), dot(query, far))
	}
}

func TestHashingProviderBatch(t *testing.T) {
	t.Parallel()

	p := NewHashingProvider(64)
	vecs, err := p.EmbedDocuments(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("EmbedDocuments: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
}

func TestHashingProviderEmptyText(t *testing.T) {
	t.Parallel()

	p := NewHashingProvider(32)
	vec, err := p.EmbedQuery(context.Background(), "")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	for _, v := range vec {
		if v != 0 {
			t.Fatal("empty text should embed to the zero vector")
		}
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
