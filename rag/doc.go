// Package rag implements the SmartLearn retrieval engine: adaptive document
// chunking, a TF-IDF keyword index, hybrid (semantic + keyword) ranking,
// query expansion, and pluggable vector stores.
//
// The central type is [Engine]. It loads a knowledge base directory through a
// [KnowledgeLoader], chunks and embeds the content, and serves
// [Engine.Retrieve] calls that blend vector similarity with keyword relevance.
package rag
