package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	smartlearn "github.com/smartlearn-ai/smartlearn"
	"github.com/smartlearn-ai/smartlearn/api"
)

// KnowledgeBaseHandler serves the knowledge base endpoints:
// POST /api/v1/kb/load, GET /api/v1/kb/search, GET /api/v1/kb/stats.
type KnowledgeBaseHandler struct {
	assistant *smartlearn.Assistant
	logger    *zap.Logger
}

// NewKnowledgeBaseHandler creates the handler.
func NewKnowledgeBaseHandler(assistant *smartlearn.Assistant, logger *zap.Logger) *KnowledgeBaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeBaseHandler{
		assistant: assistant,
		logger:    logger.With(zap.String("handler", "knowledge_base")),
	}
}

type loadRequest struct {
	Directory string `json:"directory"`
}

type loadResponse struct {
	ChunksIndexed int `json:"chunks_indexed"`
}

// Load ingests a directory into the knowledge base.
func (h *KnowledgeBaseHandler) Load(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}

	var req loadRequest
	if !DecodeJSONBody(w, r, &req, h.logger) {
		return
	}
	if req.Directory == "" {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "directory is required", h.logger)
		return
	}

	n, err := h.assistant.LoadKnowledgeBase(r.Context(), req.Directory)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, api.CodeInternalError, err.Error(), h.logger)
		return
	}
	WriteSuccess(w, loadResponse{ChunksIndexed: n})
}

// Search runs a similarity query. Query parameters: q (required), k.
func (h *KnowledgeBaseHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, h.logger) {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "query parameter q is required", h.logger)
		return
	}

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "k must be a non-negative integer", h.logger)
			return
		}
		k = parsed
	}

	sources, err := h.assistant.Search(r.Context(), query, k)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, api.CodeInternalError, err.Error(), h.logger)
		return
	}
	WriteSuccess(w, sources)
}

// Stats reports the knowledge base state.
func (h *KnowledgeBaseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, h.logger) {
		return
	}

	stats, err := h.assistant.Stats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, api.CodeInternalError, err.Error(), h.logger)
		return
	}
	WriteSuccess(w, stats)
}
