package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// kbDocument is the GORM row model for persisted chunks. Embeddings and
// metadata are serialized as JSON; the store is sized for knowledge bases of
// thousands of chunks, where a linear scan per search is acceptable.
type kbDocument struct {
	ID        string `gorm:"primaryKey;size:64"`
	Content   string
	Metadata  string
	Embedding string
	CreatedAt time.Time
}

func (kbDocument) TableName() string { return "kb_documents" }

// SQLiteVectorStore persists documents in a local SQLite database using the
// pure-Go driver, so the knowledge base survives restarts without cgo or an
// external service.
type SQLiteVectorStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLiteVectorStore opens (or creates) the database at path and migrates
// the schema. Use ":memory:" for an ephemeral store.
func NewSQLiteVectorStore(path string, logger *zap.Logger) (*SQLiteVectorStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&kbDocument{}); err != nil {
		return nil, fmt.Errorf("migrate kb_documents: %w", err)
	}

	logger.Info("sqlite vector store opened", zap.String("path", path))

	return &SQLiteVectorStore{
		db:     db,
		logger: logger.With(zap.String("component", "sqlite_store")),
	}, nil
}

// AddDocuments stores documents in a single transaction.
func (s *SQLiteVectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows := make([]kbDocument, 0, len(docs))
	for _, doc := range docs {
		row, err := toRow(doc)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert documents: %w", err)
	}

	s.logger.Debug("documents persisted", zap.Int("count", len(rows)))
	return nil
}

// Search loads all embedded rows and ranks them by cosine similarity.
func (s *SQLiteVectorStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]VectorSearchResult, error) {
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]VectorSearchResult, 0, len(docs))
	for _, doc := range docs {
		if doc.Embedding == nil {
			continue
		}
		similarity := CosineSimilarity(queryEmbedding, doc.Embedding)
		results = append(results, VectorSearchResult{
			Document: doc,
			Score:    similarity,
			Distance: 1.0 - similarity,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocuments removes documents by ID.
func (s *SQLiteVectorStore) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&kbDocument{}, "id IN ?", ids).Error; err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// UpdateDocument replaces a stored document.
func (s *SQLiteVectorStore) UpdateDocument(ctx context.Context, doc Document) error {
	row, err := toRow(doc)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&kbDocument{}).Where("id = ?", doc.ID).
		Updates(map[string]any{
			"content":   row.Content,
			"metadata":  row.Metadata,
			"embedding": row.Embedding,
		})
	if res.Error != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

// Count returns the number of stored documents.
func (s *SQLiteVectorStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&kbDocument{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return int(count), nil
}

// ClearAll removes every stored document.
func (s *SQLiteVectorStore) ClearAll(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&kbDocument{}).Error; err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}

// ListDocuments returns every stored document, decoded.
func (s *SQLiteVectorStore) ListDocuments(ctx context.Context) ([]Document, error) {
	var rows []kbDocument
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := fromRow(row)
		if err != nil {
			s.logger.Warn("skipping undecodable document",
				zap.String("id", row.ID), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close releases the underlying database handle.
func (s *SQLiteVectorStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ VectorStore    = (*SQLiteVectorStore)(nil)
	_ Clearable      = (*SQLiteVectorStore)(nil)
	_ DocumentLister = (*SQLiteVectorStore)(nil)
)

func toRow(doc Document) (kbDocument, error) {
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return kbDocument{}, fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
	}
	emb, err := json.Marshal(doc.Embedding)
	if err != nil {
		return kbDocument{}, fmt.Errorf("marshal embedding for %s: %w", doc.ID, err)
	}
	return kbDocument{
		ID:        doc.ID,
		Content:   doc.Content,
		Metadata:  string(meta),
		Embedding: string(emb),
	}, nil
}

func fromRow(row kbDocument) (Document, error) {
	doc := Document{ID: row.ID, Content: row.Content}
	if row.Metadata != "" && row.Metadata != "null" {
		if err := json.Unmarshal([]byte(row.Metadata), &doc.Metadata); err != nil {
			return Document{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if row.Embedding != "" && row.Embedding != "null" {
		if err := json.Unmarshal([]byte(row.Embedding), &doc.Embedding); err != nil {
			return Document{}, fmt.Errorf("unmarshal embedding: %w", err)
		}
	}
	return doc, nil
}
