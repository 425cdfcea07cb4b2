package handlers

import (
	"net/http"

	"go.uber.org/zap"

	smartlearn "github.com/smartlearn-ai/smartlearn"
	"github.com/smartlearn-ai/smartlearn/api"
)

// QuizHandler serves POST /api/v1/quiz and POST /api/v1/quiz/grade.
type QuizHandler struct {
	assistant *smartlearn.Assistant
	logger    *zap.Logger
}

// NewQuizHandler creates the handler.
func NewQuizHandler(assistant *smartlearn.Assistant, logger *zap.Logger) *QuizHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizHandler{
		assistant: assistant,
		logger:    logger.With(zap.String("handler", "quiz")),
	}
}

// Generate handles quiz creation.
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}

	var req smartlearn.QuizGenRequest
	if !DecodeJSONBody(w, r, &req, h.logger) {
		return
	}
	if req.Topic == "" {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "topic is required", h.logger)
		return
	}

	result, err := h.assistant.GenerateQuiz(r.Context(), req)
	if err != nil {
		WriteProviderError(w, err, h.logger)
		return
	}
	WriteSuccess(w, result)
}

// Grade handles answer scoring.
func (h *QuizHandler) Grade(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}

	var req smartlearn.GradeRequest
	if !DecodeJSONBody(w, r, &req, h.logger) {
		return
	}
	if req.Quiz == nil || len(req.Quiz.Questions) == 0 {
		WriteError(w, http.StatusBadRequest, api.CodeInvalidRequest, "quiz with questions is required", h.logger)
		return
	}

	result, err := h.assistant.GradeQuiz(r.Context(), req)
	if err != nil {
		WriteProviderError(w, err, h.logger)
		return
	}
	WriteSuccess(w, result)
}
