package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// JSONConfig configures the JSON/JSONL loader.
type JSONConfig struct {
	// ContentField selects the object field used as document content.
	// Empty serializes the whole object.
	ContentField string

	// IDField selects the object field used as the document ID. Empty
	// generates a path-based ID.
	IDField string
}

// JSONLoader reads .json files (object or array) and .jsonl files (one
// object per line) into one document per object.
type JSONLoader struct {
	config JSONConfig
}

// NewJSONLoader creates a JSONLoader.
func NewJSONLoader(config JSONConfig) *JSONLoader {
	return &JSONLoader{config: config}
}

// Load dispatches on the file extension.
func (l *JSONLoader) Load(ctx context.Context, path string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return l.loadLines(path)
	}
	return l.loadFile(path)
}

func (l *JSONLoader) loadFile(path string) ([]rag.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json loader: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, fmt.Errorf("json loader: parsing array in %s: %w", path, err)
		}
		return l.toDocuments(path, items), nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, fmt.Errorf("json loader: parsing object in %s: %w", path, err)
	}
	return l.toDocuments(path, []map[string]any{obj}), nil
}

func (l *JSONLoader) loadLines(path string) ([]rag.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl loader: %w", err)
	}
	defer f.Close()

	var items []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("jsonl loader: line %d in %s: %w", line, path, err)
		}
		items = append(items, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl loader: reading %s: %w", path, err)
	}
	return l.toDocuments(path, items), nil
}

func (l *JSONLoader) toDocuments(path string, items []map[string]any) []rag.Document {
	docs := make([]rag.Document, 0, len(items))
	for i, obj := range items {
		content := l.content(obj)
		if strings.TrimSpace(content) == "" {
			continue
		}
		docs = append(docs, rag.Document{
			ID:      l.id(obj, path, i),
			Content: content,
		})
	}
	return docs
}

func (l *JSONLoader) content(obj map[string]any) string {
	if l.config.ContentField != "" {
		if val, ok := obj[l.config.ContentField]; ok {
			return fmt.Sprintf("%v", val)
		}
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("%v", obj)
	}
	return string(data)
}

func (l *JSONLoader) id(obj map[string]any, path string, index int) string {
	if l.config.IDField != "" {
		if val, ok := obj[l.config.IDField]; ok {
			return fmt.Sprintf("%v", val)
		}
	}
	return fmt.Sprintf("%s#%d", path, index)
}

// Extensions lists the JSON extensions.
func (l *JSONLoader) Extensions() []string {
	return []string{".json", ".jsonl"}
}
