package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docbase"
)

// Ensure LoggingEmbedder implements docbase.Embedder.
var _ docbase.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with per-call logging. Embedding is
// the slow path of ingestion, so the log carries enough to spot backend
// latency without dumping chunk text.
type LoggingEmbedder struct {
	next   docbase.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next docbase.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder, logging the outcome.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	begin := time.Now()
	vector, err := e.next.Embed(ctx, text)
	if err != nil {
		e.logger.Error("embed",
			"chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	e.logger.Debug("embed",
		"chars", len(text),
		"dims", len(vector),
		"duration", time.Since(begin),
	)
	return vector, nil
}
