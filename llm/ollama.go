package llm

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

// OllamaConfig configures the local Ollama provider.
type OllamaConfig struct {
	// BaseURL of the Ollama server, default http://localhost:11434.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model tag, e.g. "llama3.1:8b".
	Model string `json:"model" yaml:"model"`

	// Timeout for one generation request. Local models can be slow on
	// first load, so the default is generous.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OllamaProvider talks to a local Ollama server through /api/generate.
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
		config.Model = "llama3.1:8b"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With(zap.String("provider", "ollama")),
	}
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Complete runs one non-streaming generation.
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	options := map[string]any{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(req.Stop) > 0 {
		options["stop"] = req.Stop
	}

	body := ollamaGenerateRequest{
		Model:   p.config.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  false,
		Options: options,
	}
	if req.JSONMode {
		body.Format = "json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &Error{
			Code:      ErrUpstreamError,
			Message:   err.Error(),
			Retryable: true,
			Provider:  "ollama",
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, mapHTTPError(resp.StatusCode, readErrorMessage(data), "ollama")
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}

	p.logger.Debug("ollama completion",
		zap.String("model", out.Model),
		zap.Int("eval_count", out.EvalCount),
		zap.Duration("elapsed", time.Since(start)))

	return &CompletionResponse{
		Content: out.Response,
		Model:   out.Model,
		Usage: Usage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}, nil
}

// CompleteJSON generates in JSON mode and decodes the repaired output.
func (p *OllamaProvider) CompleteJSON(ctx context.Context, req CompletionRequest, dest any) error {
	return completeJSON(ctx, p, req, dest)
}

// Name identifies the provider.
func (p *OllamaProvider) Name() string { return "ollama" }

var _ Provider = (*OllamaProvider)(nil)
