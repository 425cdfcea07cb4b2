package embedding

import "context"

// Provider produces vector embeddings. The interface matches what the
// retrieval engine expects from its embedder.
type Provider interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, query string) ([]float64, error)

	// EmbedDocuments embeds a batch of document chunks.
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)

	// Name identifies the provider and model.
	Name() string
}
