package loader

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/smartlearn-ai/smartlearn/rag"
)

// FileLoader reads one file into raw documents. Returned documents carry
// content only; the Registry fills in source and content-type metadata.
type FileLoader interface {
	Load(ctx context.Context, path string) ([]rag.Document, error)

	// Extensions lists the file extensions this loader handles, with the
	// leading dot.
	Extensions() []string
}

// codeExtensions maps source code extensions to the code chunking profile.
var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true,
	".java": true, ".c": true, ".cpp": true, ".rs": true,
	".sh": true, ".sql": true,
}

// Registry routes files to format loaders and walks knowledge base
// directories. It implements rag.KnowledgeLoader.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]FileLoader
	logger  *zap.Logger
}

// NewRegistry creates a registry with the built-in loaders registered.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		loaders: make(map[string]FileLoader),
		logger:  logger.With(zap.String("component", "kb_loader")),
	}

	for _, l := range []FileLoader{
		NewTextLoader(),
		NewCodeLoader(),
		NewMarkdownLoader(),
		NewCSVLoader(CSVConfig{}),
		NewJSONLoader(JSONConfig{}),
	} {
		for _, ext := range l.Extensions() {
			r.loaders[strings.ToLower(ext)] = l
		}
	}
	return r
}

// Register adds or replaces the loader for ext (leading dot included).
func (r *Registry) Register(ext string, l FileLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[strings.ToLower(ext)] = l
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LoadFile loads a single file through the loader registered for its
// extension and stamps source and content-type metadata.
func (r *Registry) LoadFile(ctx context.Context, path string) ([]rag.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, fmt.Errorf("loader: %q has no file extension", path)
	}

	r.mu.RLock()
	l, ok := r.loaders[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("loader: unsupported file type %q", ext)
	}

	docs, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	ct := ClassifyFile(path)
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
		docs[i].Metadata[rag.MetaSource] = filepath.Base(path)
		docs[i].Metadata[rag.MetaContentType] = string(ct)
	}
	return docs, nil
}

// LoadDirectory walks dir recursively and loads every supported file.
// Hidden files and directories are skipped; unsupported extensions are
// ignored rather than treated as errors.
func (r *Registry) LoadDirectory(ctx context.Context, dir string) ([]rag.Document, error) {
	var docs []rag.Document
	var files int

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		ext := strings.ToLower(filepath.Ext(path))
		r.mu.RLock()
		_, supported := r.loaders[ext]
		r.mu.RUnlock()
		if !supported {
			return nil
		}

		loaded, err := r.LoadFile(ctx, path)
		if err != nil {
			r.logger.Warn("skipping unreadable file",
				zap.String("path", path), zap.Error(err))
			return nil
		}
		docs = append(docs, loaded...)
		files++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walking %s: %w", dir, err)
	}

	r.logger.Info("knowledge base directory loaded",
		zap.String("dir", dir),
		zap.Int("files", files),
		zap.Int("documents", len(docs)))

	return docs, nil
}

// ClassifyFile infers the content type from the file's name and extension.
// Markdown reads as academic material, source files as code, and files named
// like transcripts as conversation.
func ClassifyFile(path string) rag.ContentType {
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.ToLower(filepath.Base(path))

	switch {
	case codeExtensions[ext]:
		return rag.ContentCode
	case ext == ".md" || ext == ".markdown":
		return rag.ContentAcademic
	case strings.Contains(name, "chat") || strings.Contains(name, "conversation") ||
		strings.Contains(name, "transcript"):
		return rag.ContentConversation
	default:
		return rag.ContentGeneral
	}
}

var _ rag.KnowledgeLoader = (*Registry)(nil)
