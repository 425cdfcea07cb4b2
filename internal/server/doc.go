// Package server manages the HTTP server lifecycle: non-blocking start,
// graceful shutdown with timeout, and signal-driven wait. TLS is out of
// scope; the service is meant to sit behind a terminating proxy.
package server
