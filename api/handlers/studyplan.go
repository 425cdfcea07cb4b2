package handlers

import (
	"net/http"

	"go.uber.org/zap"

	smartlearn "github.com/smartlearn-ai/smartlearn"
	"github.com/smartlearn-ai/smartlearn/api"
)

// StudyPlanHandler serves POST /api/v1/study-plan.
type StudyPlanHandler struct {
	assistant *smartlearn.Assistant
	logger    *zap.Logger
}

// NewStudyPlanHandler creates the handler.
func NewStudyPlanHandler(assistant *smartlearn.Assistant, logger *zap.Logger) *StudyPlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudyPlanHandler{
		assistant: assistant,
		logger:    logger.With(zap.String("handler", "study_plan")),
	}
}

func (h *StudyPlanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}

	var req smartlearn.StudyPlanRequest
	if !DecodeJSONBody(w, r, &req, h.logger) {
		return
	}
	if req.Subject == "" {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "subject is required", h.logger)
		return
	}

	result, err := h.assistant.StudyPlan(r.Context(), req)
	if err != nil {
		WriteProviderError(w, err, h.logger)
		return
	}
	WriteSuccess(w, result)
}
