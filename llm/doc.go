// Package llm defines the text generation provider interface and its
// implementations. Providers return plain completions or schema-bound JSON;
// malformed JSON output goes through a repair pipeline before a retry is
// attempted.
package llm
