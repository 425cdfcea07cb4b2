package prompt

import (
	"fmt"
	"strings"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// UserContext carries per-user personalization hints.
type UserContext struct {
	LearningStyle        string `json:"learning_style,omitempty"`
	PriorKnowledge       string `json:"prior_knowledge,omitempty"`
	DifficultyPreference string `json:"difficulty_preference,omitempty"`
}

// Example is one few-shot input/output pair.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// defaultReasoningSteps scaffold chain-of-thought when the caller provides
// none.
var defaultReasoningSteps = []string{
	"First, let me understand what is being asked",
	"Next, I'll break this down into logical steps",
	"Then, I'll apply relevant knowledge and concepts",
	"Finally, I'll provide a comprehensive answer",
}

// WithChainOfThought appends a numbered reasoning scaffold to the prompt.
func WithChainOfThought(base string, steps []string) string {
	if len(steps) == 0 {
		steps = defaultReasoningSteps
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n**Reasoning Process:**\n")
	for i, step := range steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	sb.WriteString("\nPlease think through this step by step before providing your final answer.")
	return sb.String()
}

// WithFewShot appends input/output examples to the prompt.
func WithFewShot(base string, examples []Example) string {
	if len(examples) == 0 {
		return base
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n**Examples:**\n")
	for i, ex := range examples {
		fmt.Fprintf(&sb, "\n**Example %d:**\nInput: %s\nOutput: %s\n", i+1, ex.Input, ex.Output)
	}
	sb.WriteString("\nNow, please provide your response following the pattern above.")
	return sb.String()
}

// WithUserContext appends personalization hints. An empty context returns
// the prompt unchanged.
func WithUserContext(base string, uc *UserContext) string {
	if uc == nil {
		return base
	}

	var sb strings.Builder
	if uc.LearningStyle != "" {
		fmt.Fprintf(&sb, "\n**Learning Style:** %s", uc.LearningStyle)
	}
	if uc.PriorKnowledge != "" {
		fmt.Fprintf(&sb, "\n**Previous Knowledge:** %s", uc.PriorKnowledge)
	}
	if uc.DifficultyPreference != "" {
		fmt.Fprintf(&sb, "\n**Difficulty Preference:** %s", uc.DifficultyPreference)
	}
	if sb.Len() == 0 {
		return base
	}
	return base + sb.String()
}

// knowledgeSection formats retrieval context and its top sources for
// inclusion in a prompt. Empty context produces an empty section.
func knowledgeSection(context string, sources []rag.Source, usage string) string {
	if strings.TrimSpace(context) == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("KNOWLEDGE BASE CONTEXT:\n")
	sb.WriteString(context)
	sb.WriteString("\n")

	if len(sources) > 0 {
		sb.WriteString("\nSOURCES:\n")
		for i, src := range sources {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sb, "- %s (Relevance: %.2f)\n", src.Source, src.RelevanceScore)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(usage)
	sb.WriteString("\n")
	return sb.String()
}
