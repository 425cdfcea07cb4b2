package prompt

import (
	"sync"

	"go.uber.org/zap"
)

// Performance thresholds for complexity adaptation.
const (
	advancedThreshold     = 0.8
	intermediateThreshold = 0.6
)

// Complexity instruction blocks appended by AdaptComplexity.
const (
	advancedInstructions     = "\n\n**Advanced Instructions:** Include complex scenarios, edge cases, and advanced applications."
	intermediateInstructions = "\n\n**Intermediate Instructions:** Balance basic and advanced concepts with clear explanations."
	basicInstructions        = "\n\n**Basic Instructions:** Focus on fundamental concepts with many examples and step-by-step explanations."
)

// AdaptiveManager tunes prompt complexity from per-user quiz score history.
type AdaptiveManager struct {
	mu      sync.RWMutex
	history map[string][]float64
	logger  *zap.Logger
}

// NewAdaptiveManager creates an empty manager.
func NewAdaptiveManager(logger *zap.Logger) *AdaptiveManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdaptiveManager{
		history: make(map[string][]float64),
		logger:  logger,
	}
}

// RecordScore appends a quiz score (0..1) to the user's history.
func (m *AdaptiveManager) RecordScore(userID string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[userID] = append(m.history[userID], score)
}

// SeedHistory replaces the user's history, used when scores are loaded from
// the session store.
func (m *AdaptiveManager) SeedHistory(userID string, scores []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[userID] = append([]float64(nil), scores...)
}

// AverageScore returns the user's mean score and whether any history exists.
func (m *AdaptiveManager) AverageScore(userID string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scores := m.history[userID]
	if len(scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), true
}

// AdaptComplexity appends a complexity instruction block matched to the
// score history. An empty history leaves the prompt unchanged.
func AdaptComplexity(base string, history []float64) string {
	if len(history) == 0 {
		return base
	}

	var sum float64
	for _, s := range history {
		sum += s
	}
	avg := sum / float64(len(history))

	switch {
	case avg > advancedThreshold:
		return base + advancedInstructions
	case avg > intermediateThreshold:
		return base + intermediateInstructions
	default:
		return base + basicInstructions
	}
}

// Personalize adapts the prompt to the user's recorded history. Users
// without history get the prompt unchanged.
func (m *AdaptiveManager) Personalize(base, userID string) string {
	m.mu.RLock()
	scores := m.history[userID]
	m.mu.RUnlock()

	if len(scores) == 0 {
		return base
	}

	m.logger.Debug("adapting prompt complexity",
		zap.String("user_id", userID),
		zap.Int("history", len(scores)))

	return AdaptComplexity(base, scores)
}
