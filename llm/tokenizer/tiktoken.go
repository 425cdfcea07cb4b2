package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken wraps tiktoken-go for OpenAI-family models. The encoding data is
// loaded lazily because the first use may download it.
type Tiktoken struct {
	model     string
	encoding  string
	maxTokens int

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

var modelEncodings = map[string]struct {
	encoding  string
	maxTokens int
}{
	"gpt-4o":                 {encoding: "o200k_base", maxTokens: 128000},
	"gpt-4o-mini":            {encoding: "o200k_base", maxTokens: 128000},
	"gpt-4":                  {encoding: "cl100k_base", maxTokens: 8192},
	"gpt-3.5-turbo":          {encoding: "cl100k_base", maxTokens: 16385},
	"text-embedding-3-small": {encoding: "cl100k_base", maxTokens: 8191},
	"text-embedding-3-large": {encoding: "cl100k_base", maxTokens: 8191},
}

// NewTiktoken creates a tokenizer for an OpenAI-family model, matching by
// exact name first and prefix second.
func NewTiktoken(model string) (*Tiktoken, error) {
	info, ok := modelEncodings[model]
	if !ok {
		for prefix, i := range modelEncodings {
			if strings.HasPrefix(model, prefix) {
				info = i
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("no tiktoken encoding known for model %q", model)
	}

	return &Tiktoken{
		model:     model,
		encoding:  info.encoding,
		maxTokens: info.maxTokens,
	}, nil
}

func (t *Tiktoken) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// CountTokens encodes text and returns the token count.
func (t *Tiktoken) CountTokens(text string) (int, error) {
	if err := t.init(); err != nil {
		return 0, err
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

// MaxTokens returns the model's context window size.
func (t *Tiktoken) MaxTokens() int { return t.maxTokens }

// Name identifies the tokenizer by its encoding.
func (t *Tiktoken) Name() string { return "tiktoken[" + t.encoding + "]" }
