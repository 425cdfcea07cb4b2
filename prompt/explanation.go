package prompt

import (
	"fmt"
	"strings"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// ExplanationRequest describes the topic explanation to generate.
type ExplanationRequest struct {
	Topic string `json:"topic"`
	Level string `json:"level"`

	Context string       `json:"context,omitempty"`
	Sources []rag.Source `json:"sources,omitempty"`
	User    *UserContext `json:"user,omitempty"`

	ChainOfThought  bool `json:"chain_of_thought"`
	IncludeExamples bool `json:"include_examples"`
}

// levelGuidelines are explanation-register hints keyed by lowercase level.
var levelGuidelines = map[string]string{
	"beginner":     "Use simple language, avoid jargon, focus on basic concepts, provide many examples, use analogies from everyday life.",
	"intermediate": "Build on basic knowledge, introduce some technical terms, include moderate complexity examples, connect to related concepts.",
	"advanced":     "Assume solid foundation, use technical terminology, include complex examples, explore advanced applications and edge cases.",
}

const defaultLevelGuideline = "Provide clear, comprehensive explanations with appropriate complexity for the level."

// LevelGuideline returns the explanation guideline for a level.
func LevelGuideline(level string) string {
	if g, ok := levelGuidelines[strings.ToLower(level)]; ok {
		return g
	}
	return defaultLevelGuideline
}

// Explanation renders the full topic explanation prompt.
func Explanation(req ExplanationRequest) string {
	knowledge := knowledgeSection(req.Context, req.Sources,
		"Use this context to provide accurate, detailed explanations. Reference specific concepts, examples, or techniques from your knowledge base when relevant.")

	base := fmt.Sprintf(`Provide a comprehensive explanation of %q for a %s student.

%s

%s**Explanation Structure:**
1. **Overview**: 2-3 sentence introduction explaining what the topic is
2. **Core Concepts**: Break down the main ideas into digestible parts
3. **Examples**: Provide 2-3 concrete examples (simple to complex)
4. **Real-World Applications**: Show how this topic applies in everyday life or other subjects
5. **Common Misconceptions**: Address typical misunderstandings
6. **Practice Questions**: 3 questions of increasing difficulty (no answers)
7. **Further Study**: Suggest related topics or resources for deeper learning

Make the explanation engaging, clear, and appropriate for the specified level.`,
		req.Topic, req.Level,
		LevelGuideline(req.Level),
		knowledge)

	base = WithUserContext(base, req.User)
	if req.IncludeExamples {
		base = WithFewShot(base, []Example{{
			Input:  fmt.Sprintf("Explain %s to a %s student", req.Topic, req.Level),
			Output: fmt.Sprintf("Here's a comprehensive explanation of %s...", req.Topic),
		}})
	}
	if req.ChainOfThought {
		base = WithChainOfThought(base, nil)
	}
	return base
}
