package session

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Attempt is one graded quiz attempt.
type Attempt struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	UserID     string    `gorm:"index;size:128" json:"user_id"`
	Topic      string    `json:"topic"`
	Difficulty int       `json:"difficulty"`
	Score      float64   `json:"score"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Attempt) TableName() string { return "quiz_attempts" }

// Store records and queries quiz attempts.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore opens (or creates) the attempts database at path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session store at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Attempt{}); err != nil {
		return nil, fmt.Errorf("migrate quiz_attempts: %w", err)
	}

	logger.Info("session store opened", zap.String("path", path))

	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "session_store")),
	}, nil
}

// RecordAttempt persists one attempt. A missing ID is filled in; CreatedAt
// defaults to now.
func (s *Store) RecordAttempt(ctx context.Context, attempt *Attempt) error {
	if attempt.UserID == "" {
		return fmt.Errorf("attempt requires a user id")
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	s.logger.Debug("attempt recorded",
		zap.String("user_id", attempt.UserID),
		zap.String("topic", attempt.Topic),
		zap.Float64("score", attempt.Score))
	return nil
}

// History returns the user's attempts, newest first, capped at limit.
// limit <= 0 returns all attempts.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]Attempt, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var attempts []Attempt
	if err := q.Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("query attempts for %s: %w", userID, err)
	}
	return attempts, nil
}

// PerformanceHistory returns the user's scores in chronological order,
// the shape the prompt adapter consumes.
func (s *Store) PerformanceHistory(ctx context.Context, userID string, limit int) ([]float64, error) {
	q := s.db.WithContext(ctx).
		Model(&Attempt{}).
		Where("user_id = ?", userID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var scores []float64
	if err := q.Pluck("score", &scores).Error; err != nil {
		return nil, fmt.Errorf("query scores for %s: %w", userID, err)
	}
	return scores, nil
}

// LatestAttempt returns the user's most recent attempt on a topic, or nil
// when no attempt exists.
func (s *Store) LatestAttempt(ctx context.Context, userID, topic string) (*Attempt, error) {
	var attempt Attempt
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND topic = ?", userID, topic).
		Order("created_at DESC").
		First(&attempt).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest attempt for %s: %w", userID, err)
	}
	return &attempt, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap db handle: %w", err)
	}
	return sqlDB.Close()
}
