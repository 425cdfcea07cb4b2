package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// TextLoader reads a file verbatim as one document. It backs both plain
// text and source code extensions; the content-type difference is decided
// by the Registry's classifier, not here.
type TextLoader struct {
	exts []string
}

// NewTextLoader handles plain text files.
func NewTextLoader() *TextLoader {
	return &TextLoader{exts: []string{".txt", ".text", ".log"}}
}

// NewCodeLoader handles source code files.
func NewCodeLoader() *TextLoader {
	exts := make([]string, 0, len(codeExtensions))
	for ext := range codeExtensions {
		exts = append(exts, ext)
	}
	return &TextLoader{exts: exts}
}

// Load reads the whole file as a single document.
func (l *TextLoader) Load(ctx context.Context, path string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text loader: %w", err)
	}
	return []rag.Document{{ID: path, Content: string(data)}}, nil
}

// Extensions lists the extensions this loader was built for.
func (l *TextLoader) Extensions() []string {
	return l.exts
}
