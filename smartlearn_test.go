package smartlearn

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/smartlearn-ai/smartlearn/llm"
	"github.com/smartlearn-ai/smartlearn/llm/embedding"
	"github.com/smartlearn-ai/smartlearn/quiz"
	"github.com/smartlearn-ai/smartlearn/rag"
	"github.com/smartlearn-ai/smartlearn/session"
)

// scriptedProvider returns canned completions and records the prompts it
// received.
type scriptedProvider struct {
	text    string
	jsonOut string
	prompts []string
	fail    bool
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.prompts = append(p.prompts, req.Prompt)
	if p.fail {
		return nil, &llm.Error{Code: llm.ErrUpstreamError, Message: "scripted failure"}
	}
	return &llm.CompletionResponse{
		Content: p.text,
		Model:   "scripted",
		Usage:   llm.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}, nil
}

func (p *scriptedProvider) CompleteJSON(ctx context.Context, req llm.CompletionRequest, dest any) error {
	p.prompts = append(p.prompts, req.Prompt)
	if p.fail {
		return &llm.Error{Code: llm.ErrUpstreamError, Message: "scripted failure"}
	}
	return json.Unmarshal([]byte(p.jsonOut), dest)
}

func (p *scriptedProvider) Name() string { return "scripted" }

func newTestAssistant(t *testing.T, provider llm.Provider) (*Assistant, *session.Store) {
	t.Helper()

	engine, err := rag.NewEngine(rag.EngineOptions{
		Store:    rag.NewInMemoryVectorStore(nil),
		Embedder: embedding.NewHashingProvider(64),
	}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if _, err := engine.IndexDocuments(context.Background(), []rag.Document{
		{Content: "The derivative measures the instantaneous rate of change of a function.",
			Metadata: map[string]any{rag.MetaSource: "calculus.md"}},
		{Content: "Photosynthesis converts light energy into chemical energy in plants.",
			Metadata: map[string]any{rag.MetaSource: "biology.txt"}},
	}); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	sessions, err := session.NewStore(":memory:", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close() })

	assistant, err := New(Options{
		Engine:   engine,
		Provider: provider,
		Sessions: sessions,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return assistant, sessions
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Provider: &scriptedProvider{}}, nil); err == nil {
		t.Fatal("missing engine should fail")
	}
	engine, err := rag.NewEngine(rag.EngineOptions{
		Store:    rag.NewInMemoryVectorStore(nil),
		Embedder: embedding.NewHashingProvider(64),
	}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := New(Options{Engine: engine}, nil); err == nil {
		t.Fatal("missing provider should fail")
	}
}

func TestStudyPlan(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{text: "Day 1: derivatives basics. Day 2: chain rule practice."}
	assistant, _ := newTestAssistant(t, provider)

	result, err := assistant.StudyPlan(context.Background(), StudyPlanRequest{
		UserID:         "alice",
		Subject:        "calculus",
		Level:          "beginner",
		DurationDays:   2,
		Goal:           "understand derivatives",
		RequiredTopics: []string{"derivatives", "integrals"},
	})
	if err != nil {
		t.Fatalf("StudyPlan: %v", err)
	}
	if result.Plan == "" || result.Usage.TotalTokens != 30 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Coverage == nil || result.Coverage.Ratio != 0.5 {
		t.Fatalf("unexpected coverage %+v", result.Coverage)
	}
	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], "2-day study plan") {
		t.Fatalf("prompt not built: %q", provider.prompts)
	}
}

func TestStudyPlanRequiresSubject(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t, &scriptedProvider{})
	if _, err := assistant.StudyPlan(context.Background(), StudyPlanRequest{}); err == nil {
		t.Fatal("empty subject should fail")
	}
}

func TestExplainInjectsRetrievedContext(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{text: "A derivative is a rate of change."}
	assistant, _ := newTestAssistant(t, provider)

	result, err := assistant.Explain(context.Background(), ExplainRequest{
		Topic: "derivative rate of change function",
		Level: "beginner",
	})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if result.Explanation == "" {
		t.Fatal("empty explanation")
	}
	if !strings.Contains(provider.prompts[0], "KNOWLEDGE BASE CONTEXT") {
		t.Fatal("retrieved context not injected into prompt")
	}
	if len(result.Sources) == 0 {
		t.Fatal("expected sources from retrieval")
	}
}

func TestGenerateQuiz(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{jsonOut: `{
		"items": [
			{"q": "What does a derivative measure?",
			 "options": ["A) Rate of change", "B) Area", "C) Volume", "D) Slope of y-axis"],
			 "answer": "A",
			 "explanation": "It measures instantaneous rate of change."}
		]
	}`}
	assistant, _ := newTestAssistant(t, provider)

	result, err := assistant.GenerateQuiz(context.Background(), QuizGenRequest{
		UserID:       "alice",
		Topic:        "derivatives",
		Level:        "beginner",
		NumQuestions: 1,
	})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(result.Quiz.Questions) != 1 || result.Quiz.Topic != "derivatives" {
		t.Fatalf("unexpected quiz %+v", result.Quiz)
	}
	if result.Difficulty != quiz.MinDifficulty {
		t.Fatalf("new user should start at minimum difficulty, got %d", result.Difficulty)
	}
}

func TestGenerateQuizProviderFailure(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t, &scriptedProvider{fail: true})
	if _, err := assistant.GenerateQuiz(context.Background(), QuizGenRequest{Topic: "x"}); err == nil {
		t.Fatal("provider failure should surface")
	}
}

func TestGradeQuizRecordsAttemptAndAdapts(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{jsonOut: `{
		"items": [
			{"q": "harder q", "options": ["A) x", "B) y"], "answer": "A"}
		]
	}`}
	assistant, sessions := newTestAssistant(t, provider)
	ctx := context.Background()

	q := &quiz.Quiz{
		Topic: "derivatives",
		Questions: []quiz.Question{
			{Text: "q1", Options: []string{"A) x", "B) y"}, Answer: "A"},
			{Text: "q2", Options: []string{"A) x", "B) y"}, Answer: "B"},
		},
	}

	result, err := assistant.GradeQuiz(ctx, GradeRequest{
		UserID:     "alice",
		Quiz:       q,
		Difficulty: 1,
		Answers:    map[int]string{0: "A", 1: "B"},
	})
	if err != nil {
		t.Fatalf("GradeQuiz: %v", err)
	}
	if result.Grade.Score != 1.0 {
		t.Fatalf("unexpected score %f", result.Grade.Score)
	}
	if result.NextDifficulty != 2 {
		t.Fatalf("perfect score should raise difficulty, got %d", result.NextDifficulty)
	}

	attempts, err := sessions.History(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Score != 1.0 || attempts[0].Topic != "derivatives" {
		t.Fatalf("attempt not recorded: %+v", attempts)
	}

	// The next quiz on this topic picks up the adapted difficulty.
	gen, err := assistant.GenerateQuiz(ctx, QuizGenRequest{UserID: "alice", Topic: "derivatives"})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if gen.Difficulty != 2 {
		t.Fatalf("next quiz should be at adapted difficulty 2, got %d", gen.Difficulty)
	}
}

func TestGradeQuizValidation(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t, &scriptedProvider{})
	if _, err := assistant.GradeQuiz(context.Background(), GradeRequest{}); err == nil {
		t.Fatal("missing quiz should fail")
	}
}

func TestSearchAndStats(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t, &scriptedProvider{})
	ctx := context.Background()

	sources, err := assistant.Search(ctx, "derivative rate of change", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(sources) == 0 {
		t.Fatal("expected search results")
	}

	stats, err := assistant.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if !stats.Loaded || stats.DocumentCount == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
