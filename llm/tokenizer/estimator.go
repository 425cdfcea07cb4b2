package tokenizer

import "unicode/utf8"

// Estimator is a character-based token estimator for models without a local
// encoding. It counts CJK characters separately, which estimates mixed-language
// study material far better than a flat chars-per-token ratio.
type Estimator struct {
	model     string
	maxTokens int
}

// NewEstimator creates an estimator. maxTokens <= 0 defaults to 4096.
func NewEstimator(model string, maxTokens int) *Estimator {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Estimator{model: model, maxTokens: maxTokens}
}

// CountTokens estimates at roughly 1.5 chars per CJK token and 4 chars per
// ASCII token. Non-empty text always counts at least one token.
func (e *Estimator) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	total := utf8.RuneCountInString(text)
	cjk := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		}
	}

	estimated := int(float64(cjk)/1.5 + float64(total-cjk)/4.0)
	if estimated == 0 {
		estimated = 1
	}
	return estimated, nil
}

// MaxTokens returns the configured context window size.
func (e *Estimator) MaxTokens() int { return e.maxTokens }

// Name identifies the tokenizer.
func (e *Estimator) Name() string { return "estimator" }

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x3000 && r <= 0x303F) ||
		(r >= 0xFF00 && r <= 0xFFEF)
}
