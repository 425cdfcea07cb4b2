// Package metrics defines the Prometheus collector for the assistant:
// HTTP traffic, LLM generations and token usage, retrieval latency, and
// cache effectiveness. The collector registers against an injected
// Registerer so tests can use isolated registries.
package metrics
