package api

import "time"

// Response is the uniform envelope for every endpoint.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorInfo carries a machine-readable failure.
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Error codes surfaced by the API.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeUpstreamError  = "upstream_error"
	CodeRateLimited    = "rate_limited"
	CodeInternalError  = "internal_error"
)
