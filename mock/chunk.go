package mock

import (
	"context"

	"github.com/fwojciec/docbase"
)

var _ docbase.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of docbase.ChunkService.
type ChunkService struct {
	FindChunkByIDFn func(ctx context.Context, id string) (*docbase.Chunk, error)
	FindChunksFn    func(ctx context.Context, filter docbase.ChunkFilter) ([]*docbase.Chunk, error)
	CountChunksFn   func(ctx context.Context, filter docbase.ChunkFilter) (int, error)
}

func (s *ChunkService) FindChunkByID(ctx context.Context, id string) (*docbase.Chunk, error) {
	return s.FindChunkByIDFn(ctx, id)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter docbase.ChunkFilter) ([]*docbase.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) CountChunks(ctx context.Context, filter docbase.ChunkFilter) (int, error) {
	return s.CountChunksFn(ctx, filter)
}

var _ docbase.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a mock implementation of docbase.VectorIndex.
type VectorIndex struct {
	QueryFn func(ctx context.Context, vector []float32, k int, filter docbase.IndexFilter) ([]docbase.Match, error)
}

func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int, filter docbase.IndexFilter) ([]docbase.Match, error) {
	return v.QueryFn(ctx, vector, k, filter)
}
