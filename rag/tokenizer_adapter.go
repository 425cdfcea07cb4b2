package rag

import (
	"go.uber.org/zap"

	lltok "github.com/smartlearn-ai/smartlearn/llm/tokenizer"
)

// TokenizerAdapter bridges llm/tokenizer.Tokenizer to the chunker's
// error-free Tokenizer interface. Counting failures fall back to the len/4
// estimate with a warning.
type TokenizerAdapter struct {
	inner  lltok.Tokenizer
	logger *zap.Logger
}

// NewTokenizerAdapter creates the adapter. inner must not be nil.
func NewTokenizerAdapter(inner lltok.Tokenizer, logger *zap.Logger) *TokenizerAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenizerAdapter{inner: inner, logger: logger}
}

// CountTokens returns the token count for text.
func (a *TokenizerAdapter) CountTokens(text string) int {
	count, err := a.inner.CountTokens(text)
	if err != nil {
		a.logger.Warn("token count failed, falling back to estimate", zap.Error(err))
		return len(text) / 4
	}
	return count
}

var _ Tokenizer = (*TokenizerAdapter)(nil)
