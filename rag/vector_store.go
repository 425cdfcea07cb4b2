package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// VectorStore is the persistence interface for embedded documents.
type VectorStore interface {
	// AddDocuments stores documents. Documents without embeddings are
	// accepted; they simply never match a vector search.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search returns the topK documents most similar to queryEmbedding.
	Search(ctx context.Context, queryEmbedding []float64, topK int) ([]VectorSearchResult, error)

	// DeleteDocuments removes documents by ID.
	DeleteDocuments(ctx context.Context, ids []string) error

	// UpdateDocument replaces a stored document in place.
	UpdateDocument(ctx context.Context, doc Document) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// Clearable is an optional interface for VectorStore implementations that
// support clearing all stored data. Use type assertion to check support:
//
//	if c, ok := store.(Clearable); ok { c.ClearAll(ctx) }
type Clearable interface {
	ClearAll(ctx context.Context) error
}

// DocumentLister is an optional interface for VectorStore implementations
// that support listing all stored documents, used to rebuild the keyword
// index from a persisted store.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]Document, error)
}

// VectorSearchResult is one vector search hit.
type VectorSearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
	Distance float64  `json:"distance"`
}

// InMemoryVectorStore keeps documents in memory with brute-force cosine
// search. Suitable for tests and small knowledge bases.
type InMemoryVectorStore struct {
	mu        sync.RWMutex
	documents []Document
	logger    *zap.Logger
}

// NewInMemoryVectorStore creates an empty in-memory store.
func NewInMemoryVectorStore(logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{logger: logger}
}

// AddDocuments stores documents.
func (s *InMemoryVectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = append(s.documents, docs...)

	s.logger.Debug("documents added to vector store",
		zap.Int("count", len(docs)),
		zap.Int("total", len(s.documents)))
	return nil
}

// Search scores every stored document against the query embedding.
func (s *InMemoryVectorStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]VectorSearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]VectorSearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		if doc.Embedding == nil {
			continue
		}
		similarity := CosineSimilarity(queryEmbedding, doc.Embedding)
		results = append(results, VectorSearchResult{
			Document: doc,
			Score:    similarity,
			Distance: 1.0 - similarity,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocuments removes documents by ID.
func (s *InMemoryVectorStore) DeleteDocuments(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := s.documents[:0]
	for _, doc := range s.documents {
		if !drop[doc.ID] {
			kept = append(kept, doc)
		}
	}
	s.documents = kept
	return nil
}

// UpdateDocument replaces a stored document in place.
func (s *InMemoryVectorStore) UpdateDocument(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.documents {
		if s.documents[i].ID == doc.ID {
			s.documents[i] = doc
			return nil
		}
	}
	return errNotFound
}

// Count returns the number of stored documents.
func (s *InMemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// ClearAll removes every stored document.
func (s *InMemoryVectorStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = nil
	return nil
}

// ListDocuments returns a copy of every stored document.
func (s *InMemoryVectorStore) ListDocuments(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.documents))
	copy(out, s.documents)
	return out, nil
}

var (
	_ VectorStore    = (*InMemoryVectorStore)(nil)
	_ Clearable      = (*InMemoryVectorStore)(nil)
	_ DocumentLister = (*InMemoryVectorStore)(nil)
)

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// errNotFound is returned when a document ID does not exist.
var errNotFound = fmt.Errorf("document not found")

// IsNotFound reports whether err indicates a missing document.
func IsNotFound(err error) bool {
	return err == errNotFound
}
