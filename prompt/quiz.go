package prompt

import (
	"fmt"
	"strings"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// QuizRequest describes the quiz to generate.
type QuizRequest struct {
	Topic        string `json:"topic"`
	Level        string `json:"level"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"num_questions"`

	Context string       `json:"context,omitempty"`
	Sources []rag.Source `json:"sources,omitempty"`
	User    *UserContext `json:"user,omitempty"`
}

// difficultyGuidelines are question-design hints keyed by lowercase
// difficulty.
var difficultyGuidelines = map[string]string{
	"easy":   "Focus on basic facts, definitions, and simple applications. Use straightforward language and make incorrect options obviously wrong.",
	"medium": "Test understanding and application of concepts. Use moderate complexity language and make incorrect options plausible but wrong.",
	"hard":   "Challenge with analysis, synthesis, and evaluation. Use advanced concepts and make incorrect options very plausible. Include complex scenarios.",
}

const defaultDifficultyGuideline = "Create questions appropriate for the specified difficulty level."

// DifficultyGuideline returns the question-design hint for a difficulty.
func DifficultyGuideline(difficulty string) string {
	if g, ok := difficultyGuidelines[strings.ToLower(difficulty)]; ok {
		return g
	}
	return defaultDifficultyGuideline
}

// DifficultyName maps the numeric difficulty scale (1..3) to its name.
func DifficultyName(level int) string {
	switch {
	case level <= 1:
		return "easy"
	case level == 2:
		return "medium"
	default:
		return "hard"
	}
}

// Quiz renders the quiz generation prompt. The output contract is JSON so
// the response decodes directly into quiz items.
func Quiz(req QuizRequest) string {
	if req.NumQuestions <= 0 {
		req.NumQuestions = 10
	}

	knowledge := knowledgeSection(req.Context, req.Sources,
		"Use this context to create questions that are accurate and relevant to the topic. Reference specific concepts, formulas, or examples from your knowledge base when appropriate.")

	base := fmt.Sprintf(`Create a %s level assessment on %q for a %s student with exactly %d questions.

**Difficulty Level: %s**
%s

%s**Question Requirements:**
- Exactly %d multiple choice questions
- Each question should have 4 distinct, plausible options
- Questions should progress from basic to more challenging
- Include a mix of concept understanding and application
- Make incorrect options plausible but clearly wrong
- Provide clear, concise explanations for correct answers

**Output Format:**
Return ONLY a JSON object with this exact shape:
{
  "items": [
    {
      "q": "Question text",
      "options": ["A) first option", "B) second option", "C) third option", "D) fourth option"],
      "answer": "A",
      "explanation": "Brief explanation of why this is correct"
    }
  ]
}

The "items" array must contain exactly %d questions. "answer" is the single letter of the correct option.`,
		strings.ToLower(req.Difficulty), req.Topic, req.Level, req.NumQuestions,
		strings.ToUpper(req.Difficulty),
		DifficultyGuideline(req.Difficulty),
		knowledge,
		req.NumQuestions, req.NumQuestions)

	return WithUserContext(base, req.User)
}
