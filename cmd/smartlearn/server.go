package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	smartlearn "github.com/smartlearn-ai/smartlearn"
	"github.com/smartlearn-ai/smartlearn/api/handlers"
	"github.com/smartlearn-ai/smartlearn/config"
	"github.com/smartlearn-ai/smartlearn/internal/cache"
	"github.com/smartlearn-ai/smartlearn/internal/metrics"
	"github.com/smartlearn-ai/smartlearn/internal/server"
	"github.com/smartlearn-ai/smartlearn/llm"
	"github.com/smartlearn-ai/smartlearn/llm/embedding"
	"github.com/smartlearn-ai/smartlearn/llm/tokenizer"
	"github.com/smartlearn-ai/smartlearn/rag"
	"github.com/smartlearn-ai/smartlearn/rag/loader"
	"github.com/smartlearn-ai/smartlearn/session"
)

// Server wires the assistant and its HTTP front.
type Server struct {
	cfg       *config.Config
	assistant *smartlearn.Assistant
	manager   *server.Manager
	sessions  *session.Store
	cache     *cache.Manager
	logger    *zap.Logger
}

// NewServer builds the full dependency graph from configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	collector := metrics.NewCollector("smartlearn", prometheus.DefaultRegisterer, logger)

	provider, err := buildProvider(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	embedder, err := buildEmbedder(cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	var retrievalCache rag.RetrievalCache
	var cacheManager *cache.Manager
	if cfg.Cache.Enabled {
		cacheManager, err = cache.NewManager(cache.Config{
			Addr:       cfg.Cache.Addr,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			DefaultTTL: cfg.Cache.DefaultTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build cache: %w", err)
		}
		retrievalCache = cacheManager
	}

	store, err := rag.NewSQLiteVectorStore(cfg.RAG.StorePath, logger)
	if err != nil {
		return nil, fmt.Errorf("build vector store: %w", err)
	}

	tok := tokenizer.ForModel(cfg.LLM.Model, cfg.LLM.MaxTokens)
	engine, err := rag.NewEngine(rag.EngineOptions{
		Config: rag.EngineConfig{
			TopK:             cfg.RAG.TopK,
			Alpha:            cfg.RAG.Alpha,
			UseHybrid:        cfg.RAG.UseHybrid,
			UseExpansion:     cfg.RAG.UseExpansion,
			MinScore:         cfg.RAG.MinScore,
			EmbedBatchSize:   cfg.RAG.EmbedBatch,
			EmbedConcurrency: cfg.RAG.EmbedParallel,
		},
		Store:     store,
		Embedder:  embedder,
		Loader:    loader.NewRegistry(logger),
		Cache:     retrievalCache,
		Tokenizer: rag.NewTokenizerAdapter(tok, logger),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build retrieval engine: %w", err)
	}

	sessions, err := session.NewStore(cfg.Session.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("build session store: %w", err)
	}

	assistant, err := smartlearn.New(smartlearn.Options{
		Engine:      engine,
		Provider:    provider,
		Sessions:    sessions,
		Metrics:     collector,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, logger)
	if err != nil {
		return nil, err
	}

	handler := buildRoutes(assistant, collector, logger)
	manager := server.NewManager(handler, server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	return &Server{
		cfg:       cfg,
		assistant: assistant,
		manager:   manager,
		sessions:  sessions,
		cache:     cacheManager,
		logger:    logger,
	}, nil
}

func buildProvider(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	var provider llm.Provider
	switch cfg.Provider {
	case "ollama":
		provider = llm.NewOllamaProvider(llm.OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	case "openai":
		provider = llm.NewOpenAIProvider(llm.OpenAIConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}

	if cfg.RequestsPerSecond > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerSecond, 1, logger)
	}
	return provider, nil
}

func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (rag.Embedder, error) {
	switch cfg.Provider {
	case "hashing":
		return embedding.NewHashingProvider(cfg.Dimensions), nil
	case "ollama":
		return embedding.NewOllamaProvider(embedding.OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}, logger), nil
	case "openai":
		return embedding.NewOpenAIProvider(embedding.OpenAIConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}

func buildRoutes(assistant *smartlearn.Assistant, collector *metrics.Collector, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	kb := handlers.NewKnowledgeBaseHandler(assistant, logger)
	quiz := handlers.NewQuizHandler(assistant, logger)

	mux.Handle("/api/v1/study-plan", handlers.NewStudyPlanHandler(assistant, logger))
	mux.Handle("/api/v1/explain", handlers.NewExplainHandler(assistant, logger))
	mux.HandleFunc("/api/v1/quiz", quiz.Generate)
	mux.HandleFunc("/api/v1/quiz/grade", quiz.Grade)
	mux.HandleFunc("/api/v1/kb/load", kb.Load)
	mux.HandleFunc("/api/v1/kb/search", kb.Search)
	mux.HandleFunc("/api/v1/kb/stats", kb.Stats)
	mux.Handle("/api/v1/health", handlers.NewHealthHandler(assistant, Version, logger))
	mux.Handle("/metrics", promhttp.Handler())

	return Chain(mux,
		Recovery(logger),
		RequestLogger(logger),
		Metrics(collector),
	)
}

// LoadKnowledgeBase ingests a directory before serving; failures are logged
// so the server still starts with an empty index.
func (s *Server) LoadKnowledgeBase(dir string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	n, err := s.assistant.LoadKnowledgeBase(ctx, dir)
	if err != nil {
		s.logger.Error("failed to load knowledge base",
			zap.String("dir", dir),
			zap.Error(err))
		return
	}
	s.logger.Info("knowledge base loaded",
		zap.String("dir", dir),
		zap.Int("chunks", n))
}

// Start begins serving.
func (s *Server) Start() error {
	return s.manager.Start()
}

// WaitForShutdown blocks until the server stops, then closes the stores.
func (s *Server) WaitForShutdown() {
	s.manager.WaitForShutdown()

	if err := s.sessions.Close(); err != nil {
		s.logger.Warn("failed to close session store", zap.Error(err))
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("failed to close cache", zap.Error(err))
		}
	}
}
