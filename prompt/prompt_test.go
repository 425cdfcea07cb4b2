package prompt

import (
	"strings"
	"testing"

	"github.com/smartlearn-ai/smartlearn/rag"
)

func TestWithChainOfThought(t *testing.T) {
	t.Parallel()

	out := WithChainOfThought("Explain limits.", nil)
	if !strings.Contains(out, "**Reasoning Process:**") {
		t.Fatal("missing reasoning section")
	}
	if !strings.Contains(out, "1. First, let me understand what is being asked") {
		t.Fatal("missing default steps")
	}

	custom := WithChainOfThought("Explain limits.", []string{"Check the definition"})
	if !strings.Contains(custom, "1. Check the definition") {
		t.Fatal("custom steps not used")
	}
}

func TestWithFewShot(t *testing.T) {
	t.Parallel()

	if got := WithFewShot("base", nil); got != "base" {
		t.Fatalf("empty examples should not modify prompt, got %q", got)
	}

	out := WithFewShot("base", []Example{{Input: "in", Output: "out"}})
	if !strings.Contains(out, "**Example 1:**") ||
		!strings.Contains(out, "Input: in") ||
		!strings.Contains(out, "Output: out") {
		t.Fatalf("example not rendered: %q", out)
	}
}

func TestWithUserContext(t *testing.T) {
	t.Parallel()

	if got := WithUserContext("base", nil); got != "base" {
		t.Fatal("nil context should not modify prompt")
	}
	if got := WithUserContext("base", &UserContext{}); got != "base" {
		t.Fatal("empty context should not modify prompt")
	}

	out := WithUserContext("base", &UserContext{
		LearningStyle:  "visual",
		PriorKnowledge: "algebra",
	})
	if !strings.Contains(out, "**Learning Style:** visual") ||
		!strings.Contains(out, "**Previous Knowledge:** algebra") {
		t.Fatalf("context not rendered: %q", out)
	}
}

func TestStudyPlanPrompt(t *testing.T) {
	t.Parallel()

	out := StudyPlan(StudyPlanRequest{
		Subject:        "Mathematics",
		Level:          "beginner",
		MinutesPerDay:  45,
		DurationDays:   14,
		Goal:           "pass the final exam",
		ChainOfThought: true,
	})

	for _, want := range []string{
		"14-day study plan",
		"Daily time: 45 minutes",
		"Goal: pass the final exam",
		"problem-solving practice", // mathematics strategy
		"## Day 14: Comprehensive Review & Assessment",
		"**Reasoning Process:**",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("study plan prompt missing %q", want)
		}
	}
	if strings.Contains(out, "KNOWLEDGE BASE CONTEXT") {
		t.Fatal("knowledge section rendered without context")
	}
}

func TestStudyPlanUnknownSubjectUsesDefaultStrategy(t *testing.T) {
	t.Parallel()

	out := StudyPlan(StudyPlanRequest{Subject: "basket weaving", Level: "beginner", DurationDays: 7})
	if !strings.Contains(out, "understanding core concepts") {
		t.Fatal("default strategy missing")
	}
}

func TestExplanationPromptWithContext(t *testing.T) {
	t.Parallel()

	out := Explanation(ExplanationRequest{
		Topic:   "derivatives",
		Level:   "intermediate",
		Context: "The derivative measures rate of change.",
		Sources: []rag.Source{
			{Source: "calculus.md", RelevanceScore: 0.92},
			{Source: "math.txt", RelevanceScore: 0.55},
			{Source: "extra1.txt", RelevanceScore: 0.4},
			{Source: "extra2.txt", RelevanceScore: 0.3},
		},
		IncludeExamples: true,
	})

	for _, want := range []string{
		`"derivatives"`,
		"KNOWLEDGE BASE CONTEXT:",
		"The derivative measures rate of change.",
		"- calculus.md (Relevance: 0.92)",
		"**Common Misconceptions**",
		"**Example 1:**",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("explanation prompt missing %q", want)
		}
	}
	// Only the top 3 sources are listed.
	if strings.Contains(out, "extra2.txt") {
		t.Fatal("more than 3 sources listed")
	}
}

func TestQuizPromptJSONContract(t *testing.T) {
	t.Parallel()

	out := Quiz(QuizRequest{
		Topic:        "photosynthesis",
		Level:        "beginner",
		Difficulty:   "Medium",
		NumQuestions: 5,
	})

	for _, want := range []string{
		"medium level assessment",
		"Difficulty Level: MEDIUM",
		"exactly 5 questions",
		`"items"`,
		`"answer": "A"`,
		"plausible but wrong", // medium guideline
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("quiz prompt missing %q", want)
		}
	}
}

func TestQuizPromptDefaultCount(t *testing.T) {
	t.Parallel()

	out := Quiz(QuizRequest{Topic: "t", Level: "l", Difficulty: "easy"})
	if !strings.Contains(out, "exactly 10 questions") {
		t.Fatal("default question count should be 10")
	}
}

func TestDifficultyName(t *testing.T) {
	t.Parallel()

	cases := map[int]string{0: "easy", 1: "easy", 2: "medium", 3: "hard", 4: "hard"}
	for level, want := range cases {
		if got := DifficultyName(level); got != want {
			t.Fatalf("DifficultyName(%d) = %q, want %q", level, got, want)
		}
	}
}

func TestAdaptComplexity(t *testing.T) {
	t.Parallel()

	if got := AdaptComplexity("base", nil); got != "base" {
		t.Fatal("empty history should not modify prompt")
	}

	high := AdaptComplexity("base", []float64{0.9, 0.85})
	if !strings.Contains(high, "**Advanced Instructions:**") {
		t.Fatalf("high performers should get advanced block: %q", high)
	}

	mid := AdaptComplexity("base", []float64{0.7})
	if !strings.Contains(mid, "**Intermediate Instructions:**") {
		t.Fatalf("mid performers should get intermediate block: %q", mid)
	}

	low := AdaptComplexity("base", []float64{0.3, 0.5})
	if !strings.Contains(low, "**Basic Instructions:**") {
		t.Fatalf("low performers should get basic block: %q", low)
	}
}

func TestAdaptiveManagerPersonalize(t *testing.T) {
	t.Parallel()

	m := NewAdaptiveManager(nil)

	if got := m.Personalize("base", "alice"); got != "base" {
		t.Fatal("unknown user should get unchanged prompt")
	}

	m.RecordScore("alice", 0.9)
	m.RecordScore("alice", 0.95)
	if got := m.Personalize("base", "alice"); !strings.Contains(got, "**Advanced Instructions:**") {
		t.Fatalf("expected advanced block, got %q", got)
	}

	avg, ok := m.AverageScore("alice")
	if !ok || avg < 0.9 {
		t.Fatalf("unexpected average %f ok=%v", avg, ok)
	}

	m.SeedHistory("bob", []float64{0.2})
	if got := m.Personalize("base", "bob"); !strings.Contains(got, "**Basic Instructions:**") {
		t.Fatalf("expected basic block, got %q", got)
	}
}
