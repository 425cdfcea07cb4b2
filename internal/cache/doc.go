// Package cache wraps the go-redis client behind a Manager used for
// retrieval-result caching. It exposes string and JSON read/write, a
// cache-miss sentinel, a background health check, and graceful close.
package cache
