package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	smartlearn "github.com/smartlearn-ai/smartlearn"
	"github.com/smartlearn-ai/smartlearn/api"
	"github.com/smartlearn-ai/smartlearn/llm"
	"github.com/smartlearn-ai/smartlearn/llm/embedding"
	"github.com/smartlearn-ai/smartlearn/rag"
	"github.com/smartlearn-ai/smartlearn/rag/loader"
)

type fakeProvider struct {
	text    string
	jsonOut string
	err     error
}

func (p *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.text, Model: "fake"}, nil
}

func (p *fakeProvider) CompleteJSON(ctx context.Context, req llm.CompletionRequest, dest any) error {
	if p.err != nil {
		return p.err
	}
	return json.Unmarshal([]byte(p.jsonOut), dest)
}

func (p *fakeProvider) Name() string { return "fake" }

func newTestAssistant(t *testing.T, provider llm.Provider) *smartlearn.Assistant {
	t.Helper()

	engine, err := rag.NewEngine(rag.EngineOptions{
		Store:    rag.NewInMemoryVectorStore(nil),
		Embedder: embedding.NewHashingProvider(64),
		Loader:   loader.NewRegistry(nil),
	}, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := engine.IndexDocuments(context.Background(), []rag.Document{
		{Content: "Derivatives measure the rate of change of a function.",
			Metadata: map[string]any{rag.MetaSource: "calculus.md"}},
	}); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	assistant, err := smartlearn.New(smartlearn.Options{
		Engine:   engine,
		Provider: provider,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return assistant
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Response {
	t.Helper()
	var resp api.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestStudyPlanHandler(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{text: "Day 1: limits. Day 2: derivatives."})
	h := NewStudyPlanHandler(assistant, nil)

	rec := postJSON(h.ServeHTTP, `{"subject":"calculus","level":"beginner","duration_days":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success || resp.Data == nil {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestStudyPlanHandlerValidation(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{})
	h := NewStudyPlanHandler(assistant, nil)

	rec := postJSON(h.ServeHTTP, `{"level":"beginner"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing subject should be 400, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success || resp.Error == nil || resp.Error.Code != api.CodeInvalidRequest {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestStudyPlanHandlerBadJSON(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{})
	h := NewStudyPlanHandler(assistant, nil)

	rec := postJSON(h.ServeHTTP, `{"subject": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed JSON should be 400, got %d", rec.Code)
	}
}

func TestStudyPlanHandlerMethodNotAllowed(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{})
	h := NewStudyPlanHandler(assistant, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET should be 405, got %d", rec.Code)
	}
}

func TestStudyPlanHandlerUpstreamError(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{
		err: &llm.Error{Code: llm.ErrUpstreamError, Message: "model offline", Retryable: true},
	})
	h := NewStudyPlanHandler(assistant, nil)

	rec := postJSON(h.ServeHTTP, `{"subject":"calculus"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("upstream failure should be 502, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != api.CodeUpstreamError || !resp.Error.Retryable {
		t.Fatalf("unexpected error info %+v", resp.Error)
	}
}

func TestStudyPlanHandlerRateLimited(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{
		err: &llm.Error{Code: llm.ErrRateLimited, Message: "slow down", Retryable: true},
	})
	h := NewStudyPlanHandler(assistant, nil)

	rec := postJSON(h.ServeHTTP, `{"subject":"calculus"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("rate limit should be 429, got %d", rec.Code)
	}
}

func TestExplainHandler(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{text: "A derivative is a rate of change."})
	h := NewExplainHandler(assistant, nil)

	rec := postJSON(h.ServeHTTP, `{"topic":"derivatives","level":"beginner"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(h.ServeHTTP, `{"level":"beginner"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing topic should be 400, got %d", rec.Code)
	}
}

func TestQuizHandlerGenerateAndGrade(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{jsonOut: `{
		"items": [
			{"q": "What does a derivative measure?",
			 "options": ["A) Rate of change", "B) Area"],
			 "answer": "A"}
		]
	}`})
	h := NewQuizHandler(assistant, nil)

	rec := postJSON(h.Generate, `{"topic":"derivatives","num_questions":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate failed: %d %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var gen smartlearn.QuizGenResult
	if err := json.Unmarshal(data, &gen); err != nil {
		t.Fatalf("decode quiz result: %v", err)
	}
	if len(gen.Quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", gen.Quiz)
	}

	rec = postJSON(h.Grade, `{
		"user_id": "alice",
		"difficulty": 1,
		"quiz": {"topic": "derivatives", "items": [
			{"q": "What does a derivative measure?",
			 "options": ["A) Rate of change", "B) Area"],
			 "answer": "A"}
		]},
		"answers": {"0": "A"}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("grade failed: %d %s", rec.Code, rec.Body.String())
	}
	resp = decodeEnvelope(t, rec)
	data, _ = json.Marshal(resp.Data)
	var graded smartlearn.GradeResult
	if err := json.Unmarshal(data, &graded); err != nil {
		t.Fatalf("decode grade result: %v", err)
	}
	if graded.Grade.Score != 1.0 || graded.NextDifficulty != 2 {
		t.Fatalf("unexpected grade %+v", graded)
	}
}

func TestQuizHandlerGradeValidation(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{})
	h := NewQuizHandler(assistant, nil)

	rec := postJSON(h.Grade, `{"answers": {"0": "A"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing quiz should be 400, got %d", rec.Code)
	}
}

func TestKnowledgeBaseHandlerLoadSearchStats(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{})
	h := NewKnowledgeBaseHandler(assistant, nil)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("Mitosis is the process of cell division."), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec := postJSON(h.Load, `{"directory": "`+dir+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("load failed: %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/?q=cell+division&k=2", nil)
	rec = httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("search failed: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.Stats(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed: %d %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var stats rag.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if !stats.Loaded || stats.DocumentCount == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestKnowledgeBaseHandlerSearchValidation(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{})
	h := NewKnowledgeBaseHandler(assistant, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing q should be 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/?q=x&k=abc", nil)
	rec = httptest.NewRecorder()
	h.Search(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad k should be 400, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	assistant := newTestAssistant(t, &fakeProvider{})
	h := NewHealthHandler(assistant, "1.2.3", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health failed: %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var status struct {
		Status              string `json:"status"`
		Version             string `json:"version"`
		KnowledgeBaseLoaded bool   `json:"knowledge_base_loaded"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if status.Status != "ok" || status.Version != "1.2.3" || !status.KnowledgeBaseLoaded {
		t.Fatalf("unexpected health %+v", status)
	}
}
