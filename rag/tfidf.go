package rag

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
)

// TFIDFConfig configures the keyword index.
type TFIDFConfig struct {
	// MaxFeatures caps the vocabulary; the most frequent terms win.
	MaxFeatures int `json:"max_features"`

	// NgramMax is the largest n-gram length (1 = unigrams only,
	// 2 = unigrams + bigrams).
	NgramMax int `json:"ngram_max"`
}

// DefaultTFIDFConfig matches the engine defaults: 1000 features,
// unigrams and bigrams.
func DefaultTFIDFConfig() TFIDFConfig {
	return TFIDFConfig{MaxFeatures: 1000, NgramMax: 2}
}

// ScoredDocument is a document ID with a relevance score.
type ScoredDocument struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// TFIDFIndex is an in-memory TF-IDF keyword index over document chunks.
// Vectors are L2-normalized so scoring reduces to a sparse dot product.
type TFIDFIndex struct {
	config TFIDFConfig
	logger *zap.Logger

	mu      sync.RWMutex
	vocab   map[string]int // term -> column
	idf     []float64
	vectors []map[int]float64 // one normalized sparse vector per document
	docIDs  []string
}

// NewTFIDFIndex creates an empty index.
func NewTFIDFIndex(config TFIDFConfig, logger *zap.Logger) *TFIDFIndex {
	if config.MaxFeatures <= 0 {
		config.MaxFeatures = 1000
	}
	if config.NgramMax <= 0 {
		config.NgramMax = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TFIDFIndex{
		config: config,
		logger: logger,
		vocab:  make(map[string]int),
	}
}

// Fit builds the vocabulary and document vectors from scratch, replacing any
// previous index contents.
func (ix *TFIDFIndex) Fit(docs []Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	termCounts := make([]map[string]int, len(docs))
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		counts := make(map[string]int)
		for _, term := range ix.terms(doc.Content) {
			counts[term]++
			corpusFreq[term]++
		}
		for term := range counts {
			docFreq[term]++
		}
		termCounts[i] = counts
	}

	// Keep the MaxFeatures most frequent terms, ties broken alphabetically
	// so the index is deterministic.
	type termFreq struct {
		term string
		freq int
	}
	ranked := make([]termFreq, 0, len(corpusFreq))
	for term, freq := range corpusFreq {
		ranked = append(ranked, termFreq{term, freq})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].freq != ranked[j].freq {
			return ranked[i].freq > ranked[j].freq
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > ix.config.MaxFeatures {
		ranked = ranked[:ix.config.MaxFeatures]
	}

	ix.vocab = make(map[string]int, len(ranked))
	ix.idf = make([]float64, len(ranked))
	n := float64(len(docs))
	for col, tf := range ranked {
		ix.vocab[tf.term] = col
		// Smoothed IDF; never zero, so rare terms always contribute.
		ix.idf[col] = math.Log((1.0+n)/(1.0+float64(docFreq[tf.term]))) + 1.0
	}

	ix.vectors = make([]map[int]float64, len(docs))
	ix.docIDs = make([]string, len(docs))
	for i, doc := range docs {
		ix.docIDs[i] = doc.ID
		ix.vectors[i] = ix.vectorize(termCounts[i])
	}

	ix.logger.Info("TF-IDF index built",
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary", len(ix.vocab)))
}

// Score returns the cosine similarity of the query against every indexed
// document, keyed by document ID. Documents with zero similarity are omitted.
func (ix *TFIDFIndex) Score(query string) map[string]float64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	counts := make(map[string]int)
	for _, term := range ix.terms(query) {
		counts[term]++
	}
	qvec := ix.vectorize(counts)
	if len(qvec) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for i, dvec := range ix.vectors {
		s := sparseDot(qvec, dvec)
		if s > 0 {
			scores[ix.docIDs[i]] = s
		}
	}
	return scores
}

// Search returns the topK highest-scoring documents in descending order.
func (ix *TFIDFIndex) Search(query string, topK int) []ScoredDocument {
	scores := ix.Score(query)
	results := make([]ScoredDocument, 0, len(scores))
	for id, score := range scores {
		results = append(results, ScoredDocument{ID: id, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Size returns the number of indexed documents.
func (ix *TFIDFIndex) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docIDs)
}

// vectorize turns raw term counts into an L2-normalized sparse TF-IDF vector.
// Caller must hold at least a read lock.
func (ix *TFIDFIndex) vectorize(counts map[string]int) map[int]float64 {
	vec := make(map[int]float64)
	var norm float64
	for term, count := range counts {
		col, ok := ix.vocab[term]
		if !ok {
			continue
		}
		w := float64(count) * ix.idf[col]
		vec[col] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for col := range vec {
			vec[col] /= norm
		}
	}
	return vec
}

// terms tokenizes text into lowercase stopword-filtered unigrams and, when
// configured, joins adjacent tokens into n-grams.
func (ix *TFIDFIndex) terms(text string) []string {
	tokens := tokenizeWords(text)

	kept := tokens[:0]
	for _, tok := range tokens {
		if !stopwords[tok] {
			kept = append(kept, tok)
		}
	}

	terms := make([]string, 0, len(kept)*ix.config.NgramMax)
	terms = append(terms, kept...)
	for n := 2; n <= ix.config.NgramMax; n++ {
		for i := 0; i+n <= len(kept); i++ {
			terms = append(terms, strings.Join(kept[i:i+n], " "))
		}
	}
	return terms
}

func sparseDot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for col, v := range a {
		sum += v * b[col]
	}
	return sum
}

// tokenizeWords lowercases and splits on any non-letter, non-digit rune.
func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// stopwords is the filtered English word list.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "been": true, "but": true, "by": true, "can": true,
	"do": true, "does": true, "for": true, "from": true, "had": true,
	"has": true, "have": true, "he": true, "her": true, "his": true,
	"how": true, "i": true, "if": true, "in": true, "is": true, "it": true,
	"its": true, "may": true, "my": true, "no": true, "not": true,
	"of": true, "on": true, "or": true, "our": true, "she": true,
	"so": true, "that": true, "the": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"to": true, "was": true, "we": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "will": true,
	"with": true, "would": true, "you": true, "your": true,
}
