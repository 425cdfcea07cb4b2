package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smartlearn-ai/smartlearn/api"
	"github.com/smartlearn-ai/smartlearn/llm"
)

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess wraps data in the success envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, api.Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// WriteError wraps an error code and message in the failure envelope.
func WriteError(w http.ResponseWriter, status int, code, message string, logger *zap.Logger) {
	if logger != nil {
		logger.Warn("request failed",
			zap.String("code", code),
			zap.String("message", message),
			zap.Int("status", status))
	}
	WriteJSON(w, status, api.Response{
		Success: false,
		Error: &api.ErrorInfo{
			Code:      code,
			Message:   message,
			Retryable: status == http.StatusTooManyRequests || status >= 500,
		},
		Timestamp: time.Now().UTC(),
	})
}

// WriteProviderError maps an llm error to the right HTTP status before
// writing the failure envelope.
func WriteProviderError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var pe *llm.Error
	if errors.As(err, &pe) {
		status, code := mapProviderError(pe)
		WriteError(w, status, code, pe.Message, logger)
		return
	}
	WriteError(w, http.StatusInternalServerError, api.CodeInternalError, err.Error(), logger)
}

func mapProviderError(pe *llm.Error) (int, string) {
	switch pe.Code {
	case llm.ErrInvalidRequest:
		return http.StatusBadRequest, api.CodeInvalidRequest
	case llm.ErrRateLimited:
		return http.StatusTooManyRequests, api.CodeRateLimited
	case llm.ErrUnauthorized, llm.ErrUpstreamError, llm.ErrBadOutput:
		return http.StatusBadGateway, api.CodeUpstreamError
	default:
		return http.StatusInternalServerError, api.CodeInternalError
	}
}

// DecodeJSONBody strictly decodes the request body into dst and writes the
// error response itself on failure.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "request body is empty", logger)
		return false
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid JSON body: "+err.Error(), logger)
		return false
	}
	return true
}

// RequireMethod enforces the HTTP method and writes the error itself.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string, logger *zap.Logger) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		WriteError(w, http.StatusMethodNotAllowed, api.CodeInvalidRequest, "method not allowed", logger)
		return false
	}
	return true
}
