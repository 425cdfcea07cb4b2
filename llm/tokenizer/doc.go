// Package tokenizer provides token counting for prompt budgeting and chunk
// statistics.
package tokenizer
