package loader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// MarkdownLoader splits a Markdown file into one document per top-level
// section so the chunker works on coherent topics rather than the whole
// file. Section headings are kept inline at the top of each document, which
// keeps them retrievable by keyword search.
type MarkdownLoader struct{}

// NewMarkdownLoader creates a MarkdownLoader.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// Load reads a Markdown file and returns one document per heading section.
// Files without headings come back as a single document.
func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: %w", err)
	}
	defer f.Close()

	var sections [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if isHeading(line) || len(sections) == 0 {
			sections = append(sections, nil)
		}
		sections[len(sections)-1] = append(sections[len(sections)-1], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("markdown loader: reading %s: %w", path, err)
	}

	docs := make([]rag.Document, 0, len(sections))
	for i, lines := range sections {
		content := strings.TrimSpace(strings.Join(lines, "\n"))
		if content == "" {
			continue
		}
		docs = append(docs, rag.Document{
			ID:      fmt.Sprintf("%s#%d", path, i),
			Content: content,
		})
	}
	return docs, nil
}

// isHeading reports whether line is an ATX heading of level 1 or 2. Deeper
// headings stay inside their parent section.
func isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if after, ok := strings.CutPrefix(trimmed, "##"); ok {
		return strings.HasPrefix(after, " ")
	}
	if after, ok := strings.CutPrefix(trimmed, "#"); ok {
		return strings.HasPrefix(after, " ")
	}
	return false
}

// Extensions lists the Markdown extensions.
func (l *MarkdownLoader) Extensions() []string {
	return []string{".md", ".markdown"}
}
