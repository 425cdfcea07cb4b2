// Package api defines the JSON envelope shared by all HTTP responses.
// Handlers live in api/handlers.
package api
