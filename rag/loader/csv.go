package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// CSVConfig configures the CSV loader.
type CSVConfig struct {
	// Delimiter is the field separator; ',' when zero.
	Delimiter rune

	// ContentColumns names header columns to include in document content.
	// Empty means all columns.
	ContentColumns []string
}

// CSVLoader turns each data row into "header: value" lines, one document per
// row, so tabular study material stays searchable by column name.
type CSVLoader struct {
	config CSVConfig
}

// NewCSVLoader creates a CSVLoader.
func NewCSVLoader(config CSVConfig) *CSVLoader {
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	return &CSVLoader{config: config}
}

// Load reads a CSV file, treating the first row as a header.
func (l *CSVLoader) Load(ctx context.Context, path string) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv loader: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = l.config.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv loader: parsing %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	keep := l.keepColumns(header)

	docs := make([]rag.Document, 0, len(records)-1)
	for i, row := range records[1:] {
		var lines []string
		for _, col := range keep {
			if col < len(row) && strings.TrimSpace(row[col]) != "" {
				lines = append(lines, header[col]+": "+row[col])
			}
		}
		if len(lines) == 0 {
			continue
		}
		docs = append(docs, rag.Document{
			ID:      fmt.Sprintf("%s#row%d", path, i+1),
			Content: strings.Join(lines, "\n"),
		})
	}
	return docs, nil
}

// keepColumns resolves the configured column names to header indices,
// falling back to all columns when nothing matches.
func (l *CSVLoader) keepColumns(header []string) []int {
	all := make([]int, len(header))
	for i := range header {
		all[i] = i
	}
	if len(l.config.ContentColumns) == 0 {
		return all
	}

	wanted := make(map[string]bool, len(l.config.ContentColumns))
	for _, name := range l.config.ContentColumns {
		wanted[strings.ToLower(name)] = true
	}

	var keep []int
	for i, name := range header {
		if wanted[strings.ToLower(name)] {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return all
	}
	return keep
}

// Extensions lists the CSV extensions.
func (l *CSVLoader) Extensions() []string {
	return []string{".csv"}
}
