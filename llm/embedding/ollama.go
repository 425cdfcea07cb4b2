package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OllamaConfig configures the local Ollama embeddings provider.
type OllamaConfig struct {
	// BaseURL of the Ollama server, default http://localhost:11434.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model tag, default nomic-embed-text.
	Model string `json:"model" yaml:"model"`

	// Timeout for one request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OllamaProvider calls the /api/embed endpoint, which accepts batches.
type OllamaProvider struct {
	config OllamaConfig
	client *http.Client
	logger *zap.Logger
}

// NewOllamaProvider creates the provider.
func NewOllamaProvider(config OllamaConfig, logger *zap.Logger) *OllamaProvider {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Model == "" {
		config.Model = "nomic-embed-text"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With(zap.String("provider", "ollama_embedding")),
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// EmbedQuery embeds one string.
func (p *OllamaProvider) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vecs, err := p.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds a batch in a single call.
func (p *OllamaProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(ollamaEmbedRequest{Model: p.config.Model, Input: documents})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/api/embed"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ollama embed status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out ollamaEmbedResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embeddings) != len(documents) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(documents), len(out.Embeddings))
	}

	p.logger.Debug("documents embedded", zap.Int("count", len(documents)))
	return out.Embeddings, nil
}

// Name identifies the provider and model.
func (p *OllamaProvider) Name() string { return "ollama/" + p.config.Model }

var _ Provider = (*OllamaProvider)(nil)
