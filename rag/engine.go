package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Embedder produces vector embeddings for queries and documents.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)
	Name() string
}

// KnowledgeLoader reads raw (unchunked) documents from a directory. Each
// returned document must carry MetaSource and MetaContentType metadata.
type KnowledgeLoader interface {
	LoadDirectory(ctx context.Context, dir string) ([]Document, error)
}

// RetrievalCache is an optional cache for retrieval outputs. Satisfied by
// internal/cache.Manager.
type RetrievalCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// EngineConfig configures the retrieval engine.
type EngineConfig struct {
	// TopK is the default number of results returned by Retrieve.
	TopK int `json:"top_k"`

	// Alpha is the semantic weight in hybrid blending (0..1).
	Alpha float64 `json:"alpha"`

	// UseHybrid blends TF-IDF keyword scores into the ranking.
	UseHybrid bool `json:"use_hybrid"`

	// UseExpansion runs the query expander before retrieval.
	UseExpansion bool `json:"use_expansion"`

	// MinScore drops results below this blended score.
	MinScore float64 `json:"min_score"`

	// EmbedBatchSize is the number of chunks embedded per provider call.
	EmbedBatchSize int `json:"embed_batch_size"`

	// EmbedConcurrency bounds concurrent embedding batches during loading.
	EmbedConcurrency int `json:"embed_concurrency"`

	// CacheTTL is the retrieval cache entry lifetime, when a cache is set.
	CacheTTL time.Duration `json:"cache_ttl"`
}

// DefaultEngineConfig returns the production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TopK:             3,
		Alpha:            0.7,
		UseHybrid:        true,
		UseExpansion:     true,
		MinScore:         0.0,
		EmbedBatchSize:   32,
		EmbedConcurrency: 4,
		CacheTTL:         10 * time.Minute,
	}
}

// EngineOptions carries the engine's collaborators.
type EngineOptions struct {
	Config   EngineConfig
	Store    VectorStore
	Embedder Embedder
	Loader   KnowledgeLoader

	// Cache is optional; nil disables retrieval caching.
	Cache RetrievalCache

	// Tokenizer is optional; used for chunk token statistics.
	Tokenizer Tokenizer
}

// RetrievalResult is one retrieved chunk with its score breakdown.
type RetrievalResult struct {
	Document      Document `json:"document"`
	SemanticScore float64  `json:"semantic_score"`
	KeywordScore  float64  `json:"keyword_score"`
	FinalScore    float64  `json:"final_score"`
}

// RetrievalOutput is the full result of a Retrieve call.
type RetrievalOutput struct {
	// Context is the retrieved chunks joined with blank lines, ready to
	// inject into a prompt.
	Context string `json:"context"`

	Results []RetrievalResult `json:"results"`
	Sources []Source          `json:"sources"`
}

// Stats summarizes the loaded knowledge base.
type Stats struct {
	Loaded         bool           `json:"loaded"`
	DocumentCount  int            `json:"document_count"`
	ContentTypes   map[string]int `json:"content_types"`
	EmbeddingModel string         `json:"embedding_model"`
	HybridSearch   bool           `json:"hybrid_search"`
	QueryExpansion bool           `json:"query_expansion"`
}

// DocumentSummary describes one source file's footprint in the index.
type DocumentSummary struct {
	Source       string   `json:"source"`
	TotalChunks  int      `json:"total_chunks"`
	ContentTypes []string `json:"content_types"`
	FirstChunk   int      `json:"first_chunk"`
	LastChunk    int      `json:"last_chunk"`
}

// Engine is the retrieval engine: it owns the vector store, the keyword
// index, the chunker, and the query expander, and serves hybrid retrieval
// over a loaded knowledge base.
type Engine struct {
	config   EngineConfig
	store    VectorStore
	embedder Embedder
	loader   KnowledgeLoader
	cache    RetrievalCache

	chunker  *DocumentChunker
	tfidf    *TFIDFIndex
	hybrid   *HybridSearchEngine
	expander *QueryExpander

	mu     sync.RWMutex
	docs   map[string]Document // chunk ID -> chunk
	loaded bool

	logger *zap.Logger
}

// NewEngine creates a retrieval engine. Store and Embedder are required;
// Loader is required for LoadKnowledgeBase but may be nil when documents are
// indexed through IndexDocuments directly.
func NewEngine(opts EngineOptions, logger *zap.Logger) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("rag: engine requires a vector store")
	}
	if opts.Embedder == nil {
		return nil, fmt.Errorf("rag: engine requires an embedder")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := opts.Config
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultEngineConfig().TopK
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEngineConfig().EmbedBatchSize
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = DefaultEngineConfig().EmbedConcurrency
	}

	tfidf := NewTFIDFIndex(DefaultTFIDFConfig(), logger)
	// Truncation to k happens in Retrieve, so the blender returns the full
	// candidate ranking.
	hybridCfg := HybridConfig{Alpha: cfg.Alpha, TopK: 0, MinScore: cfg.MinScore}
	if hybridCfg.Alpha <= 0 || hybridCfg.Alpha > 1 {
		hybridCfg.Alpha = DefaultHybridConfig().Alpha
	}

	e := &Engine{
		config:   cfg,
		store:    opts.Store,
		embedder: opts.Embedder,
		loader:   opts.Loader,
		cache:    opts.Cache,
		chunker:  NewDocumentChunker(DefaultChunkerConfig(), opts.Tokenizer, logger),
		tfidf:    tfidf,
		hybrid:   NewHybridSearchEngine(hybridCfg, tfidf, logger),
		expander: NewQueryExpander(),
		docs:     make(map[string]Document),
		logger:   logger.With(zap.String("component", "rag_engine")),
	}

	// A persisted store may already hold a knowledge base; rebuild the
	// in-memory indexes from it.
	if lister, ok := opts.Store.(DocumentLister); ok {
		if err := e.restore(context.Background(), lister); err != nil {
			logger.Warn("failed to restore persisted knowledge base", zap.Error(err))
		}
	}

	return e, nil
}

// restore rebuilds the keyword index and chunk map from a persisted store.
func (e *Engine) restore(ctx context.Context, lister DocumentLister) error {
	docs, err := lister.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	e.mu.Lock()
	for _, doc := range docs {
		e.docs[doc.ID] = doc
	}
	e.loaded = true
	e.mu.Unlock()

	e.tfidf.Fit(docs)

	e.logger.Info("restored knowledge base from store", zap.Int("chunks", len(docs)))
	return nil
}

// LoadKnowledgeBase loads every supported file under dir, chunks it
// adaptively, embeds the chunks, and replaces the current index. It returns
// the number of chunks indexed.
func (e *Engine) LoadKnowledgeBase(ctx context.Context, dir string) (int, error) {
	if e.loader == nil {
		return 0, fmt.Errorf("rag: no knowledge loader configured")
	}

	raw, err := e.loader.LoadDirectory(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("load knowledge base %s: %w", dir, err)
	}
	if len(raw) == 0 {
		return 0, fmt.Errorf("no documents found in knowledge base %s", dir)
	}

	chunks := e.chunkAll(raw)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("knowledge base %s produced no chunks", dir)
	}

	e.embedChunks(ctx, chunks)

	if clearable, ok := e.store.(Clearable); ok {
		if err := clearable.ClearAll(ctx); err != nil {
			e.logger.Warn("failed to clear existing documents", zap.Error(err))
		}
	}
	if err := e.store.AddDocuments(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}

	e.mu.Lock()
	e.docs = make(map[string]Document, len(chunks))
	for _, chunk := range chunks {
		e.docs[chunk.ID] = chunk
	}
	e.loaded = true
	e.mu.Unlock()

	e.tfidf.Fit(chunks)

	e.logger.Info("knowledge base loaded",
		zap.String("dir", dir),
		zap.Int("files", len(raw)),
		zap.Int("chunks", len(chunks)),
		zap.String("embedder", e.embedder.Name()))

	return len(chunks), nil
}

// IndexDocuments chunks and embeds raw documents and appends them to the
// current index, unlike LoadKnowledgeBase which replaces it. Each raw
// document should carry MetaSource and MetaContentType metadata.
func (e *Engine) IndexDocuments(ctx context.Context, raw []Document) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	e.mu.RLock()
	offset := len(e.docs)
	e.mu.RUnlock()

	chunks := e.chunkFrom(raw, offset)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("documents produced no chunks")
	}

	e.embedChunks(ctx, chunks)

	if err := e.store.AddDocuments(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}

	e.mu.Lock()
	for _, chunk := range chunks {
		e.docs[chunk.ID] = chunk
	}
	all := make([]Document, 0, len(e.docs))
	for _, doc := range e.docs {
		all = append(all, doc)
	}
	e.loaded = true
	e.mu.Unlock()

	e.tfidf.Fit(all)

	e.logger.Info("documents indexed",
		zap.Int("documents", len(raw)),
		zap.Int("chunks", len(chunks)))

	return len(chunks), nil
}

// chunkAll splits raw documents into chunk documents with full metadata.
// Chunk IDs are globally sequential across the whole knowledge base, matching
// the citation format.
func (e *Engine) chunkAll(raw []Document) []Document {
	return e.chunkFrom(raw, 0)
}

func (e *Engine) chunkFrom(raw []Document, startID int) []Document {
	var out []Document
	chunkID := startID
	for _, doc := range raw {
		ct := ContentType(metaString(doc, MetaContentType))
		if ct == "" {
			ct = ContentGeneral
		}
		source := metaString(doc, MetaSource)

		chunks := e.chunker.ChunkText(doc.Content, ct)
		for _, chunk := range chunks {
			out = append(out, Document{
				ID:      uuid.NewString(),
				Content: chunk.Content,
				Metadata: map[string]any{
					MetaSource:      source,
					MetaChunkID:     chunkID,
					MetaContentType: string(ct),
					MetaChunkIndex:  chunk.Index,
					MetaTotalChunks: len(chunks),
					MetaTokenCount:  chunk.TokenCount,
				},
			})
			chunkID++
		}
	}
	return out
}

// embedChunks fills in embeddings batch-by-batch with bounded concurrency.
// Failed batches are logged and left unembedded; those chunks remain
// reachable through keyword search.
func (e *Engine) embedChunks(ctx context.Context, chunks []Document) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.EmbedConcurrency)

	for start := 0; start < len(chunks); start += e.config.EmbedBatchSize {
		end := start + e.config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		g.Go(func() error {
			contents := make([]string, len(batch))
			for i, chunk := range batch {
				contents[i] = chunk.Content
			}
			embeddings, err := e.embedder.EmbedDocuments(gctx, contents)
			if err != nil {
				e.logger.Warn("embedding batch failed, chunks fall back to keyword search",
					zap.Int("batch_size", len(batch)), zap.Error(err))
				return nil
			}
			for i := range batch {
				if i < len(embeddings) {
					batch[i].Embedding = embeddings[i]
				}
			}
			return nil
		})
	}

	// Workers only return nil; Wait is for synchronization.
	_ = g.Wait()
}

// Retrieve runs hybrid retrieval for the query and returns up to k chunks.
// With k <= 0 the configured TopK applies.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) (*RetrievalOutput, error) {
	if k <= 0 {
		k = e.config.TopK
	}

	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()
	if !loaded {
		return &RetrievalOutput{}, nil
	}

	cacheKey := retrievalCacheKey(query, k)
	if e.cache != nil {
		var cached RetrievalOutput
		if err := e.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			e.logger.Debug("retrieval cache hit", zap.String("query", query))
			return &cached, nil
		}
	}

	queries := []string{query}
	if e.config.UseExpansion {
		queries = e.expander.Expand(query)
	}

	// Semantic pass: best vector score per chunk across all expansions.
	semantic := make(map[string]float64)
	embedFailed := true
	for _, q := range queries {
		emb, err := e.embedder.EmbedQuery(ctx, q)
		if err != nil {
			e.logger.Warn("query embedding failed", zap.String("query", q), zap.Error(err))
			continue
		}
		embedFailed = false

		hits, err := e.store.Search(ctx, emb, k)
		if err != nil {
			e.logger.Warn("vector search failed", zap.Error(err))
			continue
		}
		for _, hit := range hits {
			if hit.Score > semantic[hit.Document.ID] {
				semantic[hit.Document.ID] = hit.Score
			}
		}
	}

	var results []RetrievalResult
	switch {
	case e.config.UseHybrid:
		for _, blended := range e.hybrid.Blend(query, semantic) {
			doc, ok := e.document(blended.ID)
			if !ok {
				continue
			}
			results = append(results, RetrievalResult{
				Document:      doc,
				SemanticScore: blended.SemanticScore,
				KeywordScore:  blended.KeywordScore,
				FinalScore:    blended.HybridScore,
			})
		}
	case embedFailed:
		// No embeddings at all: degrade to keyword-only retrieval.
		for _, hit := range e.tfidf.Search(query, k) {
			doc, ok := e.document(hit.ID)
			if !ok {
				continue
			}
			results = append(results, RetrievalResult{
				Document:     doc,
				KeywordScore: hit.Score,
				FinalScore:   hit.Score,
			})
		}
	default:
		results = e.rankSemantic(semantic)
	}

	if len(results) > k {
		results = results[:k]
	}

	out := &RetrievalOutput{
		Results: results,
		Sources: make([]Source, 0, len(results)),
	}

	var contexts []string
	for _, res := range results {
		contexts = append(contexts, res.Document.Content)
		out.Sources = append(out.Sources, Source{
			Source:         metaString(res.Document, MetaSource),
			ChunkID:        metaInt(res.Document, MetaChunkID),
			ContentType:    metaString(res.Document, MetaContentType),
			RelevanceScore: res.FinalScore,
			ChunkIndex:     metaInt(res.Document, MetaChunkIndex),
			TotalChunks:    metaInt(res.Document, MetaTotalChunks),
		})
	}
	out.Context = strings.Join(contexts, "\n\n")

	if e.cache != nil {
		if err := e.cache.SetJSON(ctx, cacheKey, out, e.config.CacheTTL); err != nil {
			e.logger.Debug("retrieval cache write failed", zap.Error(err))
		}
	}

	return out, nil
}

// rankSemantic orders pure vector scores descending.
func (e *Engine) rankSemantic(semantic map[string]float64) []RetrievalResult {
	results := make([]RetrievalResult, 0, len(semantic))
	for id, score := range semantic {
		doc, ok := e.document(id)
		if !ok {
			continue
		}
		results = append(results, RetrievalResult{
			Document:      doc,
			SemanticScore: score,
			FinalScore:    score,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	return results
}

// SearchSimilar returns sources for the chunks most similar to the query,
// without assembling a prompt context.
func (e *Engine) SearchSimilar(ctx context.Context, query string, k int) ([]Source, error) {
	out, err := e.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return out.Sources, nil
}

// Stats summarizes the loaded knowledge base.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := &Stats{
		Loaded:         e.loaded,
		ContentTypes:   make(map[string]int),
		EmbeddingModel: e.embedder.Name(),
		HybridSearch:   e.config.UseHybrid,
		QueryExpansion: e.config.UseExpansion,
	}

	count, err := e.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	stats.DocumentCount = count

	for _, doc := range e.docs {
		if ct := metaString(doc, MetaContentType); ct != "" {
			stats.ContentTypes[ct]++
		}
	}
	return stats, nil
}

// DocumentSummary reports how one source file is represented in the index.
func (e *Engine) DocumentSummary(source string) (*DocumentSummary, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	summary := &DocumentSummary{Source: source, FirstChunk: -1}
	types := make(map[string]bool)

	for _, doc := range e.docs {
		if metaString(doc, MetaSource) != source {
			continue
		}
		summary.TotalChunks++
		types[metaString(doc, MetaContentType)] = true

		idx := metaInt(doc, MetaChunkIndex)
		if summary.FirstChunk < 0 || idx < summary.FirstChunk {
			summary.FirstChunk = idx
		}
		if idx > summary.LastChunk {
			summary.LastChunk = idx
		}
	}

	if summary.TotalChunks == 0 {
		return nil, fmt.Errorf("source %s not found in knowledge base", source)
	}

	for ct := range types {
		summary.ContentTypes = append(summary.ContentTypes, ct)
	}
	sort.Strings(summary.ContentTypes)
	return summary, nil
}

func (e *Engine) document(id string) (Document, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	doc, ok := e.docs[id]
	return doc, ok
}

func retrievalCacheKey(query string, k int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", k, query)))
	return "smartlearn:retrieval:" + hex.EncodeToString(sum[:16])
}
