package rag

import (
	"strings"

	"go.uber.org/zap"
)

// ChunkingProfile controls chunk size and overlap, both in characters.
type ChunkingProfile struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

// ProfileFor returns the chunking profile for a content type. Code splits
// smaller to keep functions together, academic text larger to keep sections
// together.
func ProfileFor(ct ContentType) ChunkingProfile {
	switch ct {
	case ContentCode:
		return ChunkingProfile{ChunkSize: 800, ChunkOverlap: 100}
	case ContentAcademic:
		return ChunkingProfile{ChunkSize: 1200, ChunkOverlap: 200}
	case ContentConversation:
		return ChunkingProfile{ChunkSize: 600, ChunkOverlap: 100}
	default:
		return ChunkingProfile{ChunkSize: 1000, ChunkOverlap: 200}
	}
}

// ChunkerConfig configures the document chunker.
type ChunkerConfig struct {
	// MinChunkSize drops trailing fragments shorter than this (characters).
	MinChunkSize int `json:"min_chunk_size"`
}

// DefaultChunkerConfig returns the production defaults.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{MinChunkSize: 20}
}

// Chunk is one piece of a split document.
type Chunk struct {
	Content    string `json:"content"`
	Index      int    `json:"index"`
	TokenCount int    `json:"token_count"`
}

// DocumentChunker splits text recursively on separator boundaries, choosing
// its size profile from the content type.
type DocumentChunker struct {
	config    ChunkerConfig
	tokenizer Tokenizer
	logger    *zap.Logger
}

// Tokenizer counts tokens for chunk statistics.
type Tokenizer interface {
	CountTokens(text string) int
}

// separators in priority order: paragraph, line, sentence, word.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// NewDocumentChunker creates a chunker. tokenizer may be nil, in which case
// token counts are estimated at one token per four characters.
func NewDocumentChunker(config ChunkerConfig, tokenizer Tokenizer, logger *zap.Logger) *DocumentChunker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentChunker{
		config:    config,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// ChunkText splits text using the profile for the given content type.
func (c *DocumentChunker) ChunkText(text string, ct ContentType) []Chunk {
	profile := ProfileFor(ct)

	pieces := c.recursiveSplit(text, chunkSeparators, profile.ChunkSize)
	pieces = c.applyOverlap(pieces, profile.ChunkOverlap)

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if len(trimmed) < c.config.MinChunkSize {
			continue
		}
		chunks = append(chunks, Chunk{
			Content:    trimmed,
			Index:      len(chunks),
			TokenCount: c.countTokens(trimmed),
		})
	}

	c.logger.Debug("chunked document",
		zap.String("content_type", string(ct)),
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", profile.ChunkSize),
		zap.Int("overlap", profile.ChunkOverlap))

	return chunks
}

// recursiveSplit splits text so every piece fits within size characters,
// preferring earlier separators. Pieces are merged greedily so chunks stay
// as close to size as the separator boundaries allow.
func (c *DocumentChunker) recursiveSplit(text string, separators []string, size int) []string {
	if len(text) <= size {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	if len(separators) == 0 {
		return splitRunes(text, size)
	}

	sep := separators[0]
	parts := strings.Split(text, sep)

	var pieces []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
		}
	}

	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}

		if len(part) > size {
			// A single part exceeds the budget: flush what we have and
			// recurse with finer separators.
			flush()
			pieces = append(pieces, c.recursiveSplit(part, separators[1:], size)...)
			continue
		}

		if current.Len()+len(part) > size {
			flush()
		}
		current.WriteString(part)
	}
	flush()

	return pieces
}

// applyOverlap prepends the tail of each chunk's predecessor, adjusted to a
// word boundary so the overlap never starts mid-word.
func (c *DocumentChunker) applyOverlap(pieces []string, overlap int) []string {
	if overlap <= 0 || len(pieces) <= 1 {
		return pieces
	}

	out := make([]string, len(pieces))
	out[0] = pieces[0]
	for i := 1; i < len(pieces); i++ {
		prev := pieces[i-1]
		tail := prev
		if len(prev) > overlap {
			tail = prev[len(prev)-overlap:]
			if idx := strings.IndexAny(tail, " \n\t"); idx >= 0 {
				tail = tail[idx+1:]
			}
		}
		if strings.TrimSpace(tail) == "" {
			out[i] = pieces[i]
			continue
		}
		out[i] = strings.TrimRight(tail, " \n") + " " + strings.TrimLeft(pieces[i], " \n")
	}
	return out
}

func (c *DocumentChunker) countTokens(text string) int {
	if c.tokenizer != nil {
		return c.tokenizer.CountTokens(text)
	}
	return len(text) / 4
}

// splitRunes is the last resort: hard split on rune boundaries.
func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var pieces []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
