// Package handlers implements the HTTP endpoints: study plans,
// explanations, quiz generation and grading, knowledge base management,
// and health. Every handler writes the api.Response envelope.
package handlers
