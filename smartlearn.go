// Package smartlearn is an educational assistant: it retrieves from a local
// knowledge base, generates study plans, explanations, and quizzes through
// an LLM provider, and adapts difficulty to each learner's quiz history.
package smartlearn

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartlearn-ai/smartlearn/evaluation"
	"github.com/smartlearn-ai/smartlearn/internal/metrics"
	"github.com/smartlearn-ai/smartlearn/llm"
	"github.com/smartlearn-ai/smartlearn/prompt"
	"github.com/smartlearn-ai/smartlearn/quiz"
	"github.com/smartlearn-ai/smartlearn/rag"
	"github.com/smartlearn-ai/smartlearn/session"
)

// Options wires the assistant's collaborators. Engine and Provider are
// required; Sessions, Metrics, and Adaptive are optional.
type Options struct {
	Engine   *rag.Engine
	Provider llm.Provider
	Sessions *session.Store
	Metrics  *metrics.Collector
	Adaptive *prompt.AdaptiveManager

	// MaxTokens and Temperature apply to every completion.
	MaxTokens   int
	Temperature float64
}

// Assistant is the high-level facade over retrieval, generation, and
// session tracking.
type Assistant struct {
	engine   *rag.Engine
	provider llm.Provider
	sessions *session.Store
	metrics  *metrics.Collector
	adaptive *prompt.AdaptiveManager
	logger   *zap.Logger

	maxTokens   int
	temperature float64
}

// New validates the options and builds an Assistant.
func New(opts Options, logger *zap.Logger) (*Assistant, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("assistant requires a retrieval engine")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("assistant requires an llm provider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	adaptive := opts.Adaptive
	if adaptive == nil {
		adaptive = prompt.NewAdaptiveManager(logger)
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	return &Assistant{
		engine:      opts.Engine,
		provider:    opts.Provider,
		sessions:    opts.Sessions,
		metrics:     opts.Metrics,
		adaptive:    adaptive,
		logger:      logger.With(zap.String("component", "assistant")),
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// StudyPlanRequest describes a study plan generation call.
type StudyPlanRequest struct {
	UserID        string `json:"user_id,omitempty"`
	Subject       string `json:"subject"`
	Level         string `json:"level"`
	MinutesPerDay int    `json:"minutes_per_day"`
	DurationDays  int    `json:"duration_days"`
	Goal          string `json:"goal"`

	// RequiredTopics, when set, are checked against the generated plan.
	RequiredTopics []string `json:"required_topics,omitempty"`

	User *prompt.UserContext `json:"user,omitempty"`
}

// StudyPlanResult is a generated plan with its provenance.
type StudyPlanResult struct {
	Plan      string                     `json:"plan"`
	Sources   []rag.Source               `json:"sources,omitempty"`
	Coverage  *evaluation.CoverageReport `json:"coverage,omitempty"`
	Usage     llm.Usage                  `json:"usage"`
	LatencyMS float64                    `json:"latency_ms"`
}

// StudyPlan retrieves subject material, builds the plan prompt, and runs
// the completion. Retrieval failures degrade to generation without context.
func (a *Assistant) StudyPlan(ctx context.Context, req StudyPlanRequest) (*StudyPlanResult, error) {
	if req.Subject == "" {
		return nil, fmt.Errorf("study plan requires a subject")
	}
	if req.DurationDays <= 0 {
		req.DurationDays = 7
	}
	if req.MinutesPerDay <= 0 {
		req.MinutesPerDay = 30
	}
	start := time.Now()

	retrieval := a.retrieve(ctx, req.Subject+" "+req.Goal)

	p := prompt.StudyPlan(prompt.StudyPlanRequest{
		Subject:        req.Subject,
		Level:          req.Level,
		MinutesPerDay:  req.MinutesPerDay,
		DurationDays:   req.DurationDays,
		Goal:           req.Goal,
		Context:        retrieval.Context,
		Sources:        retrieval.Sources,
		User:           req.User,
		ChainOfThought: true,
	})
	p = a.personalize(ctx, p, req.UserID)

	resp, err := a.complete(ctx, "text", llm.CompletionRequest{
		Prompt:      p,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate study plan: %w", err)
	}

	result := &StudyPlanResult{
		Plan:      resp.Content,
		Sources:   retrieval.Sources,
		Usage:     resp.Usage,
		LatencyMS: evaluation.LatencyMS(start),
	}
	if len(req.RequiredTopics) > 0 {
		report := evaluation.Coverage(resp.Content, req.RequiredTopics)
		result.Coverage = &report
	}
	return result, nil
}

// ExplainRequest describes an explanation call.
type ExplainRequest struct {
	UserID          string              `json:"user_id,omitempty"`
	Topic           string              `json:"topic"`
	Level           string              `json:"level"`
	IncludeExamples bool                `json:"include_examples"`
	User            *prompt.UserContext `json:"user,omitempty"`
}

// ExplainResult is a generated explanation with its provenance.
type ExplainResult struct {
	Explanation string       `json:"explanation"`
	Sources     []rag.Source `json:"sources,omitempty"`
	Usage       llm.Usage    `json:"usage"`
	LatencyMS   float64      `json:"latency_ms"`
}

// Explain generates a level-appropriate explanation of a topic, grounded in
// retrieved knowledge base material when available.
func (a *Assistant) Explain(ctx context.Context, req ExplainRequest) (*ExplainResult, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("explanation requires a topic")
	}
	start := time.Now()

	retrieval := a.retrieve(ctx, req.Topic)

	p := prompt.Explanation(prompt.ExplanationRequest{
		Topic:           req.Topic,
		Level:           req.Level,
		Context:         retrieval.Context,
		Sources:         retrieval.Sources,
		User:            req.User,
		ChainOfThought:  true,
		IncludeExamples: req.IncludeExamples,
	})
	p = a.personalize(ctx, p, req.UserID)

	resp, err := a.complete(ctx, "text", llm.CompletionRequest{
		Prompt:      p,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}

	return &ExplainResult{
		Explanation: resp.Content,
		Sources:     retrieval.Sources,
		Usage:       resp.Usage,
		LatencyMS:   evaluation.LatencyMS(start),
	}, nil
}

// QuizGenRequest describes a quiz generation call. Difficulty 0 resolves
// from the user's session history, defaulting to 1.
type QuizGenRequest struct {
	UserID       string `json:"user_id,omitempty"`
	Topic        string `json:"topic"`
	Level        string `json:"level"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   int    `json:"difficulty"`
}

// QuizGenResult is a generated quiz and the difficulty it was built at.
type QuizGenResult struct {
	Quiz       *quiz.Quiz   `json:"quiz"`
	Difficulty int          `json:"difficulty"`
	Sources    []rag.Source `json:"sources,omitempty"`
	LatencyMS  float64      `json:"latency_ms"`
}

// GenerateQuiz produces a multiple choice quiz on a topic at the resolved
// difficulty, grounded in retrieved material.
func (a *Assistant) GenerateQuiz(ctx context.Context, req QuizGenRequest) (*QuizGenResult, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("quiz requires a topic")
	}
	start := time.Now()

	difficulty := req.Difficulty
	if difficulty <= 0 {
		difficulty = a.resolveDifficulty(ctx, req.UserID, req.Topic)
	}
	if difficulty > quiz.MaxDifficulty {
		difficulty = quiz.MaxDifficulty
	}

	retrieval := a.retrieve(ctx, req.Topic)

	p := prompt.Quiz(prompt.QuizRequest{
		Topic:        req.Topic,
		Level:        req.Level,
		Difficulty:   prompt.DifficultyName(difficulty),
		NumQuestions: req.NumQuestions,
		Context:      retrieval.Context,
		Sources:      retrieval.Sources,
	})
	p = a.personalize(ctx, p, req.UserID)

	var payload map[string]any
	llmStart := time.Now()
	err := a.provider.CompleteJSON(ctx, llm.CompletionRequest{
		Prompt:      p,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	}, &payload)
	if a.metrics != nil {
		a.metrics.RecordLLMRequest(a.provider.Name(), "json", err, time.Since(llmStart), 0, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	parsed, err := quiz.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("parse quiz: %w", err)
	}
	if parsed.Topic == "" {
		parsed.Topic = req.Topic
	}

	return &QuizGenResult{
		Quiz:       parsed,
		Difficulty: difficulty,
		Sources:    retrieval.Sources,
		LatencyMS:  evaluation.LatencyMS(start),
	}, nil
}

// GradeRequest carries a quiz and the learner's answers, keyed by question
// index.
type GradeRequest struct {
	UserID     string         `json:"user_id,omitempty"`
	Quiz       *quiz.Quiz     `json:"quiz"`
	Difficulty int            `json:"difficulty"`
	Answers    map[int]string `json:"answers"`
}

// GradeResult is the grade plus the recommended next difficulty.
type GradeResult struct {
	Grade          *quiz.Grade `json:"grade"`
	NextDifficulty int         `json:"next_difficulty"`
}

// GradeQuiz scores the answers, records the attempt in the session store,
// feeds the score into prompt adaptation, and recommends the next
// difficulty. Session store failures are logged, not fatal: the grade is
// still returned.
func (a *Assistant) GradeQuiz(ctx context.Context, req GradeRequest) (*GradeResult, error) {
	if req.Quiz == nil || len(req.Quiz.Questions) == 0 {
		return nil, fmt.Errorf("grading requires a quiz with questions")
	}

	difficulty := req.Difficulty
	if difficulty <= 0 {
		difficulty = quiz.MinDifficulty
	}

	grade := quiz.GradeBatch(req.Quiz, req.Answers)
	next := quiz.AdaptDifficulty(difficulty, grade.Score)

	if req.UserID != "" {
		a.adaptive.RecordScore(req.UserID, grade.Score)

		if a.sessions != nil {
			err := a.sessions.RecordAttempt(ctx, &session.Attempt{
				UserID:     req.UserID,
				Topic:      req.Quiz.Topic,
				Difficulty: difficulty,
				Score:      grade.Score,
				Correct:    grade.Correct,
				Total:      grade.Total,
			})
			if err != nil {
				a.logger.Warn("failed to record quiz attempt",
					zap.String("user_id", req.UserID),
					zap.Error(err))
			}
		}
	}

	if a.metrics != nil {
		a.metrics.RecordQuizGraded(grade.Score)
	}

	a.logger.Info("quiz graded",
		zap.String("user_id", req.UserID),
		zap.String("topic", req.Quiz.Topic),
		zap.Float64("score", grade.Score),
		zap.Int("next_difficulty", next))

	return &GradeResult{Grade: grade, NextDifficulty: next}, nil
}

// LoadKnowledgeBase ingests a directory into the retrieval engine.
func (a *Assistant) LoadKnowledgeBase(ctx context.Context, dir string) (int, error) {
	n, err := a.engine.LoadKnowledgeBase(ctx, dir)
	if err != nil {
		return 0, err
	}
	if a.metrics != nil {
		a.metrics.RecordDocumentsLoaded(n)
	}
	return n, nil
}

// Search runs a similarity search against the knowledge base.
func (a *Assistant) Search(ctx context.Context, query string, k int) ([]rag.Source, error) {
	return a.engine.SearchSimilar(ctx, query, k)
}

// Stats reports the knowledge base state.
func (a *Assistant) Stats(ctx context.Context) (*rag.Stats, error) {
	return a.engine.Stats(ctx)
}

// retrieve runs retrieval and swallows failures: generation proceeds
// without grounding rather than failing the whole request.
func (a *Assistant) retrieve(ctx context.Context, query string) *rag.RetrievalOutput {
	start := time.Now()
	out, err := a.engine.Retrieve(ctx, query, 0)
	if err != nil {
		a.logger.Warn("retrieval failed, generating without context",
			zap.String("query", query),
			zap.Error(err))
		return &rag.RetrievalOutput{}
	}
	if a.metrics != nil {
		a.metrics.RecordRetrieval("hybrid", time.Since(start), len(out.Results))
	}
	return out
}

// personalize seeds the adaptive manager from the session store when it has
// no in-memory history for the user, then applies complexity adaptation.
func (a *Assistant) personalize(ctx context.Context, p, userID string) string {
	if userID == "" {
		return p
	}

	if _, ok := a.adaptive.AverageScore(userID); !ok && a.sessions != nil {
		scores, err := a.sessions.PerformanceHistory(ctx, userID, 20)
		if err != nil {
			a.logger.Warn("failed to load performance history",
				zap.String("user_id", userID),
				zap.Error(err))
		} else if len(scores) > 0 {
			a.adaptive.SeedHistory(userID, scores)
		}
	}

	return a.adaptive.Personalize(p, userID)
}

// resolveDifficulty adapts from the user's most recent attempt on the
// topic: a strong last score moves the next quiz up, a weak one moves it
// down. Users without history start at the minimum.
func (a *Assistant) resolveDifficulty(ctx context.Context, userID, topic string) int {
	if userID == "" || a.sessions == nil {
		return quiz.MinDifficulty
	}
	attempt, err := a.sessions.LatestAttempt(ctx, userID, topic)
	if err != nil {
		a.logger.Warn("failed to resolve difficulty",
			zap.String("user_id", userID),
			zap.Error(err))
		return quiz.MinDifficulty
	}
	if attempt == nil {
		return quiz.MinDifficulty
	}
	return quiz.AdaptDifficulty(attempt.Difficulty, attempt.Score)
}

// complete runs one text completion with metrics.
func (a *Assistant) complete(ctx context.Context, kind string, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	start := time.Now()
	resp, err := a.provider.Complete(ctx, req)
	if a.metrics != nil {
		var promptTokens, completionTokens int
		if resp != nil {
			promptTokens = resp.Usage.PromptTokens
			completionTokens = resp.Usage.CompletionTokens
		}
		a.metrics.RecordLLMRequest(a.provider.Name(), kind, err, time.Since(start), promptTokens, completionTokens)
	}
	return resp, err
}
