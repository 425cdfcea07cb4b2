package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CompletionRequest is a single-turn generation request.
type CompletionRequest struct {
	// System is the system prompt; empty means provider default behavior.
	System string `json:"system,omitempty"`

	// Prompt is the user prompt.
	Prompt string `json:"prompt"`

	// MaxTokens caps the completion length. 0 uses the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// Stop lists sequences that end generation.
	Stop []string `json:"stop,omitempty"`

	// JSONMode asks the provider for structured JSON output.
	JSONMode bool `json:"json_mode,omitempty"`
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the provider's answer.
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Provider generates text completions.
type Provider interface {
	// Complete runs one generation request.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteJSON runs the request in JSON mode and decodes the (repaired)
	// output into dest.
	CompleteJSON(ctx context.Context, req CompletionRequest, dest any) error

	// Name identifies the provider.
	Name() string
}

// Error codes used across providers.
const (
	ErrUnauthorized   = "unauthorized"
	ErrRateLimited    = "rate_limited"
	ErrInvalidRequest = "invalid_request"
	ErrUpstreamError  = "upstream_error"
	ErrBadOutput      = "bad_output"
)

// Error is a provider error with retry classification.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status,omitempty"`
	Retryable  bool   `json:"retryable"`
	Provider   string `json:"provider,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %s (%s)", e.Provider, e.Message, e.Code)
}

// IsRetryable reports whether err is a retryable provider error.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// mapHTTPError classifies an HTTP failure status into an Error.
func mapHTTPError(status int, msg, provider string) *Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Code: ErrUnauthorized, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusTooManyRequests:
		return &Error{Code: ErrRateLimited, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	case http.StatusBadRequest:
		return &Error{Code: ErrInvalidRequest, Message: msg, HTTPStatus: status, Provider: provider}
	default:
		return &Error{
			Code:       ErrUpstreamError,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  status >= 500,
			Provider:   provider,
		}
	}
}

// readErrorMessage extracts the error message from a provider's error body,
// trying the common {"error":{"message":...}} shape before falling back to
// the raw text.
func readErrorMessage(body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty error response"
	}
	return text
}
