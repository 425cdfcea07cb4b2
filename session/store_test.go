package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAttemptFillsDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	attempt := &Attempt{UserID: "alice", Topic: "calculus", Difficulty: 2, Score: 0.8, Correct: 4, Total: 5}
	require.NoError(t, store.RecordAttempt(ctx, attempt))
	require.NotEmpty(t, attempt.ID)
	require.False(t, attempt.CreatedAt.IsZero())

	history, err := store.History(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "calculus", history[0].Topic)
}

func TestRecordAttemptRequiresUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	err := store.RecordAttempt(context.Background(), &Attempt{Topic: "x"})
	require.Error(t, err)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, score := range []float64{0.4, 0.6, 0.9} {
		require.NoError(t, store.RecordAttempt(ctx, &Attempt{
			UserID:    "alice",
			Topic:     "algebra",
			Score:     score,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	history, err := store.History(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 0.9, history[0].Score)
	require.Equal(t, 0.6, history[1].Score)
}

func TestPerformanceHistoryChronological(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, score := range []float64{0.3, 0.5, 0.8} {
		require.NoError(t, store.RecordAttempt(ctx, &Attempt{
			UserID:    "bob",
			Score:     score,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	scores, err := store.PerformanceHistory(ctx, "bob", 0)
	require.NoError(t, err)
	require.Equal(t, []float64{0.3, 0.5, 0.8}, scores)

	empty, err := store.PerformanceHistory(ctx, "nobody", 0)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestLatestAttempt(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordAttempt(ctx, &Attempt{
		UserID: "alice", Topic: "calculus", Difficulty: 1, Score: 0.6, CreatedAt: base,
	}))
	require.NoError(t, store.RecordAttempt(ctx, &Attempt{
		UserID: "alice", Topic: "calculus", Difficulty: 2, Score: 0.9, CreatedAt: base.Add(time.Hour),
	}))
	require.NoError(t, store.RecordAttempt(ctx, &Attempt{
		UserID: "alice", Topic: "biology", Difficulty: 3, Score: 0.5, CreatedAt: base.Add(2 * time.Hour),
	}))

	attempt, err := store.LatestAttempt(ctx, "alice", "calculus")
	require.NoError(t, err)
	require.NotNil(t, attempt)
	require.Equal(t, 2, attempt.Difficulty)
	require.Equal(t, 0.9, attempt.Score)

	attempt, err = store.LatestAttempt(ctx, "alice", "chemistry")
	require.NoError(t, err)
	require.Nil(t, attempt)
}
