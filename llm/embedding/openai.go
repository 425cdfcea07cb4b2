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

// OpenAIConfig configures the OpenAI-compatible embeddings provider.
type OpenAIConfig struct {
	// BaseURL of the API, default https://api.openai.com/v1.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the bearer token.
	APIKey string `json:"api_key" yaml:"api_key"`

	// Model is the embedding model, default text-embedding-3-small.
	Model string `json:"model" yaml:"model"`

	// Timeout for one request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OpenAIProvider calls the /embeddings endpoint.
type OpenAIProvider struct {
	config OpenAIConfig
	client *http.Client
	logger *zap.Logger
}

// NewOpenAIProvider creates the provider.
func NewOpenAIProvider(config OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = "text-embedding-3-small"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With(zap.String("provider", "openai_embedding")),
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// EmbedQuery embeds one string.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vecs, err := p.EmbedDocuments(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds a batch in a single API call. Results come back in
// input order regardless of the response ordering.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embeddingRequest{Model: p.config.Model, Input: documents})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("embedding API status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out embeddingResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(out.Data) != len(documents) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(documents), len(out.Data))
	}

	vecs := make([][]float64, len(documents))
	for _, item := range out.Data {
		if item.Index < 0 || item.Index >= len(vecs) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vecs[item.Index] = item.Embedding
	}

	p.logger.Debug("documents embedded",
		zap.Int("count", len(documents)),
		zap.Int("total_tokens", out.Usage.TotalTokens))

	return vecs, nil
}

// Name identifies the provider and model.
func (p *OpenAIProvider) Name() string { return "openai/" + p.config.Model }

var _ Provider = (*OpenAIProvider)(nil)
