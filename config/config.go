package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full assistant configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`
	RAG       RAGConfig       `yaml:"rag" env:"RAG"`
	Cache     CacheConfig     `yaml:"cache" env:"CACHE"`
	Session   SessionConfig   `yaml:"session" env:"SESSION"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	// Provider: ollama or openai.
	Provider    string        `yaml:"provider" env:"PROVIDER"`
	Model       string        `yaml:"model" env:"MODEL"`
	BaseURL     string        `yaml:"base_url" env:"BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxTokens   int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE"`
	// RequestsPerSecond of 0 disables client-side rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider: ollama, openai, or hashing.
	Provider string `yaml:"provider" env:"PROVIDER"`
	Model    string `yaml:"model" env:"MODEL"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	APIKey   string `yaml:"api_key" env:"API_KEY"`
	// Dimensions applies to the hashing provider only.
	Dimensions int `yaml:"dimensions" env:"DIMENSIONS"`
}

// RAGConfig tunes the retrieval engine.
type RAGConfig struct {
	TopK          int     `yaml:"top_k" env:"TOP_K"`
	Alpha         float64 `yaml:"alpha" env:"ALPHA"`
	UseHybrid     bool    `yaml:"use_hybrid" env:"USE_HYBRID"`
	UseExpansion  bool    `yaml:"use_expansion" env:"USE_EXPANSION"`
	MinScore      float64 `yaml:"min_score" env:"MIN_SCORE"`
	StorePath     string  `yaml:"store_path" env:"STORE_PATH"`
	KnowledgeDir  string  `yaml:"knowledge_dir" env:"KNOWLEDGE_DIR"`
	EmbedBatch    int     `yaml:"embed_batch" env:"EMBED_BATCH"`
	EmbedParallel int     `yaml:"embed_parallel" env:"EMBED_PARALLEL"`
}

// CacheConfig configures the optional Redis retrieval cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" env:"ENABLED"`
	Addr       string        `yaml:"addr" env:"ADDR"`
	Password   string        `yaml:"password" env:"PASSWORD"`
	DB         int           `yaml:"db" env:"DB"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"DEFAULT_TTL"`
}

// SessionConfig configures the quiz attempt store.
type SessionConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"FORMAT"`
}

// Validate reports configuration errors in one pass.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		errs = append(errs, fmt.Sprintf("llm.provider %q is not supported", c.LLM.Provider))
	}
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
		errs = append(errs, "llm.api_key is required for openai")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "llm.temperature must be between 0 and 2")
	}
	switch c.Embedding.Provider {
	case "ollama", "openai", "hashing":
	default:
		errs = append(errs, fmt.Sprintf("embedding.provider %q is not supported", c.Embedding.Provider))
	}
	if c.RAG.TopK <= 0 {
		errs = append(errs, "rag.top_k must be positive")
	}
	if c.RAG.Alpha < 0 || c.RAG.Alpha > 1 {
		errs = append(errs, "rag.alpha must be between 0 and 1")
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		errs = append(errs, "cache.addr is required when cache is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation: %s", strings.Join(errs, "; "))
	}
	return nil
}
