// Package search implements retrieval and question answering over the
// ingested corpus.
package search

import (
	"context"

	"github.com/fwojciec/docbase"
)

// Retrieval defaults.
const (
	// DefaultTopK is how many chunks a retrieval returns when the caller
	// does not say.
	DefaultTopK = 5

	// courseTopK is the wider retrieval used for course generation, which
	// needs more context than a single answer.
	courseTopK = 12
)

// Ensure Retriever implements docbase.Retriever.
var _ docbase.Retriever = (*Retriever)(nil)

// Retriever embeds questions and ranks stored chunks against them.
type Retriever struct {
	embedder docbase.Embedder
	index    docbase.VectorIndex
	chunks   docbase.ChunkService
}

// NewRetriever creates a new Retriever.
func NewRetriever(embedder docbase.Embedder, index docbase.VectorIndex, chunks docbase.ChunkService) *Retriever {
	return &Retriever{embedder: embedder, index: index, chunks: chunks}
}

// Retrieve embeds the question and returns the best-matching chunks.
//
// An empty corpus under the filter is ENOTFOUND rather than an empty
// result, so callers can tell "nothing ingested" apart from "nothing
// relevant". Embedding backend failures pass through as EUNAVAILABLE.
func (r *Retriever) Retrieve(ctx context.Context, question string, opts docbase.RetrieveOptions) ([]docbase.RetrievedChunk, error) {
	if question == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "question required")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	filter := docbase.ChunkFilter{}
	if opts.Category != "" {
		filter.Category = &opts.Category
	}
	count, err := r.chunks.CountChunks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if opts.Category != "" {
			return nil, docbase.Errorf(docbase.ENOTFOUND, "no content ingested for category %q", opts.Category)
		}
		return nil, docbase.Errorf(docbase.ENOTFOUND, "no content ingested")
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := r.index.Query(ctx, vector, topK, docbase.IndexFilter{
		Category: opts.Category,
		Topic:    opts.Topic,
	})
	if err != nil {
		return nil, err
	}

	retrieved := make([]docbase.RetrievedChunk, len(matches))
	for i, match := range matches {
		retrieved[i] = docbase.RetrievedChunk{
			Chunk:   match.Chunk,
			Score:   match.Score,
			Locator: match.Chunk.Metadata.Locator,
			Title:   match.Chunk.Metadata.Title,
		}
	}
	return retrieved, nil
}
