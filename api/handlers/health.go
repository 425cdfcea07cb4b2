package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	smartlearn "github.com/smartlearn-ai/smartlearn"
)

// HealthHandler serves GET /api/v1/health.
type HealthHandler struct {
	assistant *smartlearn.Assistant
	version   string
	started   time.Time
	logger    *zap.Logger
}

// NewHealthHandler creates the handler.
func NewHealthHandler(assistant *smartlearn.Assistant, version string, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		assistant: assistant,
		version:   version,
		started:   time.Now(),
		logger:    logger.With(zap.String("handler", "health")),
	}
}

type healthStatus struct {
	Status              string  `json:"status"`
	Version             string  `json:"version"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
	KnowledgeBaseLoaded bool    `json:"knowledge_base_loaded"`
	DocumentCount       int     `json:"document_count"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, h.logger) {
		return
	}

	status := healthStatus{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: time.Since(h.started).Seconds(),
	}
	if stats, err := h.assistant.Stats(r.Context()); err == nil {
		status.KnowledgeBaseLoaded = stats.Loaded
		status.DocumentCount = stats.DocumentCount
	}

	WriteSuccess(w, status)
}
