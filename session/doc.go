// Package session persists quiz attempts per user so difficulty adaptation
// survives restarts. The store is backed by SQLite through the pure-Go
// driver; per-user histories are small, so no indexing beyond the user
// column is needed.
package session
