// Package embedding provides vector embedding providers for the retrieval
// engine: remote providers over HTTP and a deterministic local fallback for
// offline use.
package embedding
