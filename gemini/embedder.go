// Package gemini implements embedding and answer synthesis using Google
// Gemini. One embedder instance serves both ingestion and queries, so all
// vectors in a store are comparable.
package gemini

import (
	"context"

	"github.com/fwojciec/docbase"
	"google.golang.org/genai"
)

// Model defaults.
const (
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultModel          = "gemini-2.5-flash"

	// DefaultEmbeddingDim keeps vectors compact; retrieval quality on
	// documentation corpora doesn't improve past this size.
	DefaultEmbeddingDim = 768
)

// Ensure Embedder implements docbase.Embedder at compile time.
var _ docbase.Embedder = (*Embedder)(nil)

// Embedder implements docbase.Embedder using the Gemini embedding API.
type Embedder struct {
	client *genai.Client
	model  string
	dim    int32
}

// NewEmbedder creates an Embedder. Empty model or non-positive dim fall
// back to the defaults.
func NewEmbedder(client *genai.Client, model string, dim int32) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dim <= 0 {
		dim = DefaultEmbeddingDim
	}
	return &Embedder{client: client, model: model, dim: dim}
}

// Embed returns the embedding vector for the text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "text required")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &e.dim,
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, docbase.Errorf(docbase.EUNAVAILABLE, "embedding backend: %v", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, docbase.Errorf(docbase.EUNAVAILABLE, "embedding backend returned no embeddings")
	}

	return result.Embeddings[0].Values, nil
}
