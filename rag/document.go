package rag

// Metadata keys attached to chunked documents.
const (
	MetaSource      = "source"
	MetaChunkID     = "chunk_id"
	MetaContentType = "content_type"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
	MetaTokenCount  = "token_count"
)

// ContentType classifies knowledge base material. The chunker picks its
// size/overlap profile from it.
type ContentType string

const (
	ContentGeneral      ContentType = "general"
	ContentAcademic     ContentType = "academic"
	ContentCode         ContentType = "code"
	ContentConversation ContentType = "conversation"
)

// Document is the unit of storage and retrieval.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
}

// Source describes where a retrieved chunk came from, for citation in
// generated output.
type Source struct {
	Source         string  `json:"source"`
	ChunkID        int     `json:"chunk_id"`
	ContentType    string  `json:"content_type"`
	RelevanceScore float64 `json:"relevance_score"`
	ChunkIndex     int     `json:"chunk_index"`
	TotalChunks    int     `json:"total_chunks"`
}

// metaString reads a string metadata value, tolerating missing keys.
func metaString(doc Document, key string) string {
	if doc.Metadata == nil {
		return ""
	}
	if v, ok := doc.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// metaInt reads an integer metadata value. JSON round-trips turn ints into
// float64, so both are accepted.
func metaInt(doc Document, key string) int {
	if doc.Metadata == nil {
		return 0
	}
	switch v := doc.Metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
