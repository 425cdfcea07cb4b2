package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingProvider is a deterministic local embedder: each token hashes into
// a fixed-size bucket vector which is then L2-normalized. It captures lexical
// overlap only, but it needs no model, no network, and always returns the
// same vector for the same text, which makes retrieval usable offline and in
// tests.
type HashingProvider struct {
	dimensions int
}

// NewHashingProvider creates a hashing embedder. dimensions <= 0 defaults
// to 256.
func NewHashingProvider(dimensions int) *HashingProvider {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &HashingProvider{dimensions: dimensions}
}

// EmbedQuery embeds one string.
func (p *HashingProvider) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	return p.embed(query), nil
}

// EmbedDocuments embeds a batch.
func (p *HashingProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	out := make([][]float64, len(documents))
	for i, doc := range documents {
		out[i] = p.embed(doc)
	}
	return out, nil
}

// Name identifies the provider.
func (p *HashingProvider) Name() string { return "hashing" }

func (p *HashingProvider) embed(text string) []float64 {
	vec := make([]float64, p.dimensions)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(p.dimensions))
		// The next hash bit decides the sign, which spreads collisions
		// instead of always accumulating.
		if sum&(1<<31) != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

var _ Provider = (*HashingProvider)(nil)
