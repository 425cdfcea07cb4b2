package config

import "time"

// DefaultConfig returns the configuration for a local single-node setup:
// Ollama for generation, hashing embeddings, SQLite persistence, no Redis.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    180 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "llama3.1:8b",
			BaseURL:     "http://localhost:11434",
			Timeout:     120 * time.Second,
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hashing",
			Dimensions: 256,
		},
		RAG: RAGConfig{
			TopK:          3,
			Alpha:         0.7,
			UseHybrid:     true,
			UseExpansion:  true,
			StorePath:     "smartlearn_kb.db",
			KnowledgeDir:  "knowledge_base",
			EmbedBatch:    32,
			EmbedParallel: 4,
		},
		Cache: CacheConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DefaultTTL: 10 * time.Minute,
		},
		Session: SessionConfig{
			Path: "smartlearn_sessions.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
