package quiz

import (
	"fmt"
	"strings"
)

// Difficulty bounds for the numeric 1..3 scale.
const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// Adaptation thresholds: strong scores raise difficulty, weak scores lower
// it.
const (
	raiseThreshold = 0.85
	lowerThreshold = 0.5
)

// Question is one multiple choice question.
type Question struct {
	Text        string   `json:"q"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Quiz is a parsed set of questions.
type Quiz struct {
	Topic     string     `json:"topic,omitempty"`
	Questions []Question `json:"items"`
}

// Result is the grading outcome for one question.
type Result struct {
	Question    string `json:"q"`
	Correct     bool   `json:"correct"`
	Expected    string `json:"expected"`
	Given       string `json:"user"`
	Explanation string `json:"explanation,omitempty"`
}

// Grade is the outcome of grading a full quiz.
type Grade struct {
	Score   float64  `json:"score"`
	Correct int      `json:"correct"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

// Parse decodes a model-generated quiz payload. It accepts "items" or
// "questions" for the list, "q"/"question"/"text" for the question text,
// "options"/"choices" for the options, and "answer"/"correct"/
// "correct_answer" for the key. Questions without text or options are
// dropped; an empty result is an error.
func Parse(payload map[string]any) (*Quiz, error) {
	raw, ok := payload["items"].([]any)
	if !ok {
		raw, ok = payload["questions"].([]any)
	}
	if !ok {
		return nil, fmt.Errorf("quiz payload has no items")
	}

	quiz := &Quiz{}
	if topic, ok := payload["topic"].(string); ok {
		quiz.Topic = topic
	}

	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		q := Question{
			Text:        firstString(obj, "q", "question", "text"),
			Options:     stringList(obj, "options", "choices"),
			Explanation: firstString(obj, "explanation", "why"),
		}
		q.Answer = NormalizeAnswer(firstString(obj, "answer", "correct", "correct_answer"), q.Options)

		if q.Text == "" || len(q.Options) == 0 || q.Answer == "" {
			continue
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz payload contains no usable questions")
	}
	return quiz, nil
}

// NormalizeAnswer reduces an answer to a single uppercase option letter.
// It accepts a bare letter, a prefixed option ("B) Paris"), or the full
// option text, which is matched against the options list.
func NormalizeAnswer(answer string, options []string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ""
	}

	// A bare letter, or a letter followed by a separator.
	upper := strings.ToUpper(answer)
	if len(upper) == 1 && upper[0] >= 'A' && upper[0] <= 'Z' {
		return upper
	}
	if len(upper) >= 2 && upper[0] >= 'A' && upper[0] <= 'Z' &&
		(upper[1] == ')' || upper[1] == '.' || upper[1] == ':') {
		return string(upper[0])
	}

	// Full option text: find the matching option and derive its letter.
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(stripOptionPrefix(opt)), answer) ||
			strings.EqualFold(strings.TrimSpace(opt), answer) {
			return string(rune('A' + i))
		}
	}
	return ""
}

// stripOptionPrefix removes a leading "A)" style marker from option text.
func stripOptionPrefix(option string) string {
	trimmed := strings.TrimSpace(option)
	if len(trimmed) >= 2 && trimmed[0] >= 'A' && trimmed[0] <= 'Z' &&
		(trimmed[1] == ')' || trimmed[1] == '.' || trimmed[1] == ':') {
		return trimmed[2:]
	}
	return trimmed
}

// GradeBatch scores user answers against the quiz. Answers are matched by
// question index; missing answers count as wrong. The score is the fraction
// of correct answers.
func GradeBatch(q *Quiz, answers map[int]string) *Grade {
	grade := &Grade{Total: len(q.Questions)}

	for i, question := range q.Questions {
		given := NormalizeAnswer(answers[i], question.Options)
		ok := given != "" && given == question.Answer
		if ok {
			grade.Correct++
		}
		grade.Results = append(grade.Results, Result{
			Question:    question.Text,
			Correct:     ok,
			Expected:    question.Answer,
			Given:       given,
			Explanation: question.Explanation,
		})
	}

	if grade.Total > 0 {
		grade.Score = float64(grade.Correct) / float64(grade.Total)
	}
	return grade
}

// AdaptDifficulty moves the 1..3 difficulty level by one step: up for
// scores of 0.85 and above, down for scores below 0.5.
func AdaptDifficulty(current int, score float64) int {
	if current < MinDifficulty {
		current = MinDifficulty
	}
	if current > MaxDifficulty {
		current = MaxDifficulty
	}

	switch {
	case score >= raiseThreshold && current < MaxDifficulty:
		return current + 1
	case score < lowerThreshold && current > MinDifficulty:
		return current - 1
	default:
		return current
	}
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := obj[key].(string); ok && strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func stringList(obj map[string]any, keys ...string) []string {
	for _, key := range keys {
		raw, ok := obj[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
