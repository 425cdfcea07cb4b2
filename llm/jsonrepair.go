package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFences removes a surrounding Markdown code fence, with or without
// a language tag, and trims whitespace.
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop the language tag on the opening fence line.
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		first := strings.TrimSpace(text[:idx])
		if first == "" || isLanguageTag(first) {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) <= 16
}

// ExtractJSONObject returns the largest balanced {...} object in text,
// tracking string literals and escapes so braces inside strings don't
// confuse the count. Empty result means no balanced object was found.
func ExtractJSONObject(text string) string {
	var best string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range text {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case r == '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := text[start : i+1]
				if len(candidate) > len(best) {
					best = candidate
				}
			}
		}
	}
	return best
}

// RepairJSON normalizes model output into a decodable JSON object: fences
// are stripped, a top-level array is wrapped as {"items": [...]}, and
// otherwise the largest balanced object is extracted from surrounding prose.
func RepairJSON(raw string) (string, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return "", fmt.Errorf("empty model output")
	}

	if json.Valid([]byte(text)) && strings.HasPrefix(text, "{") {
		return text, nil
	}
	if strings.HasPrefix(text, "[") && json.Valid([]byte(text)) {
		return `{"items":` + text + `}`, nil
	}

	obj := ExtractJSONObject(text)
	if obj == "" || !json.Valid([]byte(obj)) {
		return "", fmt.Errorf("no valid JSON object in model output")
	}
	return obj, nil
}

// DecodeRepaired repairs raw model output and decodes it into dest.
func DecodeRepaired(raw string, dest any) error {
	repaired, err := RepairJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(repaired), dest); err != nil {
		return fmt.Errorf("decode repaired JSON: %w", err)
	}
	return nil
}

// jsonRetryNudge is appended to the prompt when the first JSON attempt is
// undecodable. Shorter output avoids the truncation that usually caused the
// breakage.
const jsonRetryNudge = "\n\nRespond with valid JSON only. Use shorter explanations."

// completeJSON is the shared CompleteJSON implementation: one JSON-mode
// attempt, repair, and a single nudged retry on decode failure.
func completeJSON(ctx context.Context, p Provider, req CompletionRequest, dest any) error {
	req.JSONMode = true

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return err
	}
	firstErr := DecodeRepaired(resp.Content, dest)
	if firstErr == nil {
		return nil
	}

	retry := req
	retry.Prompt += jsonRetryNudge
	resp, err = p.Complete(ctx, retry)
	if err != nil {
		return err
	}
	if err := DecodeRepaired(resp.Content, dest); err != nil {
		return &Error{
			Code:     ErrBadOutput,
			Message:  fmt.Sprintf("undecodable JSON after retry: %v (first attempt: %v)", err, firstErr),
			Provider: p.Name(),
		}
	}
	return nil
}
