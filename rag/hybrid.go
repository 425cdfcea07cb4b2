package rag

import (
	"sort"

	"go.uber.org/zap"
)

// HybridConfig configures score blending.
type HybridConfig struct {
	// Alpha is the semantic weight; the keyword side gets 1-Alpha.
	Alpha float64 `json:"alpha"`

	// TopK limits the number of blended results.
	TopK int `json:"top_k"`

	// MinScore drops results whose blended score falls below it.
	MinScore float64 `json:"min_score"`
}

// DefaultHybridConfig weights semantic similarity at 0.7.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		Alpha:    0.7,
		TopK:     5,
		MinScore: 0.0,
	}
}

// HybridResult carries the per-side and blended scores for one document.
type HybridResult struct {
	ID            string  `json:"id"`
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
	HybridScore   float64 `json:"hybrid_score"`
}

// HybridSearchEngine blends semantic similarity scores with TF-IDF keyword
// scores. Both sides are max-normalized before blending, so the blended
// score always lands in [0, 1].
type HybridSearchEngine struct {
	config HybridConfig
	index  *TFIDFIndex
	logger *zap.Logger
}

// NewHybridSearchEngine creates a hybrid engine over an existing keyword index.
func NewHybridSearchEngine(config HybridConfig, index *TFIDFIndex, logger *zap.Logger) *HybridSearchEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridSearchEngine{
		config: config,
		index:  index,
		logger: logger,
	}
}

// Blend combines the caller-provided semantic scores with keyword scores for
// the query. A document missing from one side contributes zero there.
// Results come back sorted by blended score descending, ties broken by ID,
// truncated to TopK and filtered by MinScore.
func (h *HybridSearchEngine) Blend(query string, semantic map[string]float64) []HybridResult {
	keyword := h.index.Score(query)

	semNorm := maxNormalize(semantic)
	kwNorm := maxNormalize(keyword)

	ids := make(map[string]struct{}, len(semNorm)+len(kwNorm))
	for id := range semNorm {
		ids[id] = struct{}{}
	}
	for id := range kwNorm {
		ids[id] = struct{}{}
	}

	results := make([]HybridResult, 0, len(ids))
	for id := range ids {
		sem := semNorm[id]
		kw := kwNorm[id]
		blended := h.config.Alpha*sem + (1.0-h.config.Alpha)*kw
		if blended < h.config.MinScore {
			continue
		}
		results = append(results, HybridResult{
			ID:            id,
			SemanticScore: sem,
			KeywordScore:  kw,
			HybridScore:   blended,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].HybridScore != results[j].HybridScore {
			return results[i].HybridScore > results[j].HybridScore
		}
		return results[i].ID < results[j].ID
	})

	if h.config.TopK > 0 && len(results) > h.config.TopK {
		results = results[:h.config.TopK]
	}

	h.logger.Debug("hybrid blend",
		zap.Int("semantic_candidates", len(semantic)),
		zap.Int("keyword_candidates", len(keyword)),
		zap.Int("results", len(results)))

	return results
}

// maxNormalize scales scores so the highest becomes 1.0. Non-positive score
// sets come back unchanged to avoid dividing by zero.
func maxNormalize(scores map[string]float64) map[string]float64 {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		return scores
	}
	normalized := make(map[string]float64, len(scores))
	for id, s := range scores {
		normalized[id] = s / max
	}
	return normalized
}
