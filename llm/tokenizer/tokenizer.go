package tokenizer

// Tokenizer counts tokens for a specific model family.
type Tokenizer interface {
	// CountTokens returns the token count for text.
	CountTokens(text string) (int, error)

	// MaxTokens returns the model's context window size.
	MaxTokens() int

	// Name identifies the tokenizer.
	Name() string
}

// ForModel returns a tiktoken tokenizer for OpenAI-family models and the
// CJK-aware estimator for everything else.
func ForModel(model string, maxTokens int) Tokenizer {
	if t, err := NewTiktoken(model); err == nil {
		return t
	}
	return NewEstimator(model, maxTokens)
}
