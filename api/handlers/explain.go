package handlers

import (
	"net/http"

	"go.uber.org/zap"

	smartlearn "github.com/smartlearn-ai/smartlearn"
	"github.com/smartlearn-ai/smartlearn/api"
)

// ExplainHandler serves POST /api/v1/explain.
type ExplainHandler struct {
	assistant *smartlearn.Assistant
	logger    *zap.Logger
}

// NewExplainHandler creates the handler.
func NewExplainHandler(assistant *smartlearn.Assistant, logger *zap.Logger) *ExplainHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExplainHandler{
		assistant: assistant,
		logger:    logger.With(zap.String("handler", "explain")),
	}
}

func (h *ExplainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}

	var req smartlearn.ExplainRequest
	if !DecodeJSONBody(w, r, &req, h.logger) {
		return
	}
	if req.Topic == "" {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "topic is required", h.logger)
		return
	}

	result, err := h.assistant.Explain(r.Context(), req)
	if err != nil {
		WriteProviderError(w, err, h.logger)
		return
	}
	WriteSuccess(w, result)
}
