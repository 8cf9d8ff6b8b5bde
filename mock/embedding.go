package mock

import (
	"context"

	"github.com/fwojciec/docbase"
)

var _ docbase.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docbase.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

var _ docbase.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of docbase.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (t *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return t.CountTokensFn(ctx, text)
}
