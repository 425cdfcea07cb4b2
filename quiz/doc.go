// Package quiz parses model-generated quizzes, grades answer batches, and
// adapts the difficulty level from scores. Parsing is deliberately tolerant:
// models drift between field names and answer formats, so the decoder
// accepts the common variants and normalizes them.
package quiz
