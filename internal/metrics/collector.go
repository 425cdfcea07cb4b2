package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector holds the assistant's Prometheus instruments.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	retrievalDuration *prometheus.HistogramVec
	retrievalResults  prometheus.Histogram

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	quizGraded      prometheus.Counter
	quizScore       prometheus.Histogram
	documentsLoaded prometheus.Counter

	logger *zap.Logger
}

// NewCollector creates and registers the instruments against reg. Pass
// prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry in tests.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completions",
		},
		[]string{"provider", "kind", "status"},
	)
	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "kind"},
	)
	c.llmTokensUsed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total tokens consumed by completions",
		},
		[]string{"provider", "type"}, // type: prompt, completion
	)

	c.retrievalDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Knowledge base retrieval duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"mode"}, // hybrid, keyword, semantic
	)
	c.retrievalResults = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Number of chunks returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	c.cacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by cache name",
		},
		[]string{"cache"},
	)
	c.cacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	c.quizGraded = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_graded_total",
			Help:      "Total quizzes graded",
		},
	)
	c.quizScore = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quiz_score",
			Help:      "Distribution of quiz scores (0..1)",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
	c.documentsLoaded = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_loaded_total",
			Help:      "Total documents ingested into the knowledge base",
		},
	)

	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordLLMRequest records one completion call. kind distinguishes plain
// text from JSON-mode completions.
func (c *Collector) RecordLLMRequest(provider, kind string, err error, duration time.Duration, promptTokens, completionTokens int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.llmRequestsTotal.WithLabelValues(provider, kind, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, kind).Observe(duration.Seconds())
	if promptTokens > 0 {
		c.llmTokensUsed.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		c.llmTokensUsed.WithLabelValues(provider, "completion").Add(float64(completionTokens))
	}
}

// RecordRetrieval records one knowledge base search.
func (c *Collector) RecordRetrieval(mode string, duration time.Duration, results int) {
	c.retrievalDuration.WithLabelValues(mode).Observe(duration.Seconds())
	c.retrievalResults.Observe(float64(results))
}

// RecordCacheHit increments the hit counter for the named cache.
func (c *Collector) RecordCacheHit(cache string) {
	c.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for the named cache.
func (c *Collector) RecordCacheMiss(cache string) {
	c.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordQuizGraded records one graded quiz and its score.
func (c *Collector) RecordQuizGraded(score float64) {
	c.quizGraded.Inc()
	c.quizScore.Observe(score)
}

// RecordDocumentsLoaded adds to the ingested document count.
func (c *Collector) RecordDocumentsLoaded(n int) {
	c.documentsLoaded.Add(float64(n))
}
