// Package loader reads knowledge base files from disk and turns them into
// raw documents for the retrieval engine. A Registry routes each file to a
// format-specific loader by extension and classifies its content type, which
// in turn selects the engine's chunking profile.
package loader
