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

// OpenAIConfig configures the OpenAI-compatible chat provider. It works
// against any endpoint that speaks the /chat/completions protocol.
type OpenAIConfig struct {
	// BaseURL of the API, default https://api.openai.com/v1.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the bearer token.
	APIKey string `json:"api_key" yaml:"api_key"`

	// Model is the chat model name.
	Model string `json:"model" yaml:"model"`

	// Timeout for one request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OpenAIProvider implements Provider over the chat completions API.
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
		config.Model = "gpt-4o-mini"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With(zap.String("provider", "openai")),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Temperature    float64        `json:"temperature,omitempty"`
	Stop           []string       `json:"stop,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete runs one chat completion.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       p.config.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}
	if req.JSONMode {
		body.ResponseFormat = map[string]any{"type": "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &Error{
			Code:      ErrUpstreamError,
			Message:   err.Error(),
			Retryable: true,
			Provider:  "openai",
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, mapHTTPError(resp.StatusCode, readErrorMessage(data), "openai")
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, &Error{Code: ErrBadOutput, Message: "no choices in response", Provider: "openai"}
	}

	p.logger.Debug("openai completion",
		zap.String("model", out.Model),
		zap.String("finish_reason", out.Choices[0].FinishReason),
		zap.Int("total_tokens", out.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &CompletionResponse{
		Content: out.Choices[0].Message.Content,
		Model:   out.Model,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

// CompleteJSON generates in JSON mode and decodes the repaired output.
func (p *OpenAIProvider) CompleteJSON(ctx context.Context, req CompletionRequest, dest any) error {
	return completeJSON(ctx, p, req, dest)
}

// Name identifies the provider.
func (p *OpenAIProvider) Name() string { return "openai" }

var _ Provider = (*OpenAIProvider)(nil)
