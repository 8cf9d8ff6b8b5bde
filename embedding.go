package docbase

import "context"

// Embedder maps text to a vector embedding. The same embedder must be used
// for ingestion and for queries so that distances are comparable.
type Embedder interface {
	// Embed returns the embedding vector for the text.
	// Returns EUNAVAILABLE if the embedding backend cannot be reached.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
