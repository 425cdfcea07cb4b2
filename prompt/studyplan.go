package prompt

import (
	"fmt"
	"strings"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// StudyPlanRequest describes the plan to generate.
type StudyPlanRequest struct {
	Subject       string `json:"subject"`
	Level         string `json:"level"`
	MinutesPerDay int    `json:"minutes_per_day"`
	DurationDays  int    `json:"duration_days"`
	Goal          string `json:"goal"`

	Context string       `json:"context,omitempty"`
	Sources []rag.Source `json:"sources,omitempty"`
	User    *UserContext `json:"user,omitempty"`

	ChainOfThought bool `json:"chain_of_thought"`
}

// subjectStrategies are study-method hints keyed by lowercase subject.
var subjectStrategies = map[string]string{
	"mathematics":      "Focus on problem-solving practice, formula memorization, and concept connections. Include daily practice problems and weekly concept reviews.",
	"computer science": "Emphasize hands-on coding, algorithm understanding, and project-based learning. Include code reviews and debugging practice.",
	"physics":          "Combine theoretical understanding with practical applications. Include problem-solving, lab work, and real-world examples.",
	"chemistry":        "Focus on understanding molecular concepts, balancing equations, and laboratory safety. Include hands-on experiments and calculations.",
	"biology":          "Emphasize understanding systems and processes, memorizing key terms, and connecting concepts. Include diagrams and real-world applications.",
	"history":          "Focus on chronological understanding, cause-and-effect relationships, and primary source analysis. Include timeline creation and document analysis.",
	"literature":       "Emphasize close reading, analysis, and creative writing. Include discussion, essay writing, and literary analysis.",
	"economics":        "Focus on understanding principles, analyzing data, and applying concepts to real situations. Include case studies and data interpretation.",
}

const defaultStrategy = "Focus on understanding core concepts, regular practice, and application of knowledge."

// SubjectStrategy returns the study-method hint for a subject.
func SubjectStrategy(subject string) string {
	if s, ok := subjectStrategies[strings.ToLower(subject)]; ok {
		return s
	}
	return defaultStrategy
}

// StudyPlan renders the full study plan prompt.
func StudyPlan(req StudyPlanRequest) string {
	knowledge := knowledgeSection(req.Context, req.Sources,
		"Use this context to create a more accurate and relevant study plan. Reference specific concepts, formulas, or techniques from your knowledge base when appropriate.")

	base := fmt.Sprintf(`Create a comprehensive %d-day study plan for %s %s.

**Study Parameters:**
- Daily time: %d minutes
- Goal: %s
- Subject: %s
- Level: %s

%s

%s**Study Plan Requirements:**
- Each day should have 3-5 focused learning objectives
- Include active learning activities (practice problems, exercises, projects)
- Incorporate spaced repetition principles
- Add self-assessment checkpoints every 3-4 days
- Include resources and reference materials
- Conclude with comprehensive review and final assessment

**Output Format:**
## Day 1: [Topic Focus]
**Learning Objectives:**
- [Specific objective 1]
- [Specific objective 2]
**Activities:**
- [Practice/Exercise description]
**Resources:** [Reference materials]

Continue for all %d days, ending with:
## Day %d: Comprehensive Review & Assessment
**Review Topics:** [Key concepts to review]
**Final Assessment:** [Self-test or project description]`,
		req.DurationDays, req.Level, req.Subject,
		req.MinutesPerDay, req.Goal, req.Subject, req.Level,
		SubjectStrategy(req.Subject),
		knowledge,
		req.DurationDays, req.DurationDays)

	base = WithUserContext(base, req.User)
	if req.ChainOfThought {
		base = WithChainOfThought(base, nil)
	}
	return base
}
