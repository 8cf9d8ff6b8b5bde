package search_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docbase"
	"github.com/fwojciec/docbase/mock"
	"github.com/fwojciec/docbase/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchFor(id, locator, title string, score float64) docbase.Match {
	return docbase.Match{
		Chunk: &docbase.Chunk{
			ID:      id,
			Content: "content of " + id,
			Metadata: docbase.ChunkMetadata{
				Locator: locator,
				Title:   title,
			},
		},
		Score: score,
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	t.Parallel()

	t.Run("embeds question and maps matches to citations", func(t *testing.T) {
		t.Parallel()

		var embedded string
		embedder := &mock.Embedder{
			EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
				embedded = text
				return []float32{0.5, 0.5}, nil
			},
		}
		chunks := &mock.ChunkService{
			CountChunksFn: func(ctx context.Context, filter docbase.ChunkFilter) (int, error) {
				require.NotNil(t, filter.Category)
				assert.Equal(t, "polarion", *filter.Category)
				return 42, nil
			},
		}
		index := &mock.VectorIndex{
			QueryFn: func(ctx context.Context, vector []float32, k int, filter docbase.IndexFilter) ([]docbase.Match, error) {
				assert.Equal(t, []float32{0.5, 0.5}, vector)
				assert.Equal(t, 3, k)
				assert.Equal(t, "polarion", filter.Category)
				assert.Equal(t, "baselines", filter.Topic)
				return []docbase.Match{
					matchFor("c1", "https://docs.example.com/a", "Baselines", 0.9),
					matchFor("c2", "https://docs.example.com/b", "Workflows", 0.7),
				}, nil
			},
		}

		r := search.NewRetriever(embedder, index, chunks)
		got, err := r.Retrieve(context.Background(), "how do baselines work?", docbase.RetrieveOptions{
			Category: "polarion",
			Topic:    "baselines",
			TopK:     3,
		})

		require.NoError(t, err)
		assert.Equal(t, "how do baselines work?", embedded)
		require.Len(t, got, 2)
		assert.Equal(t, "https://docs.example.com/a", got[0].Locator)
		assert.Equal(t, "Baselines", got[0].Title)
		assert.InDelta(t, 0.9, got[0].Score, 0.001)
		assert.Equal(t, "c2", got[1].Chunk.ID)
	})

	t.Run("empty corpus is ENOTFOUND not empty success", func(t *testing.T) {
		t.Parallel()

		chunks := &mock.ChunkService{
			CountChunksFn: func(ctx context.Context, filter docbase.ChunkFilter) (int, error) {
				return 0, nil
			},
		}
		embedder := &mock.Embedder{
			EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
				t.Error("embedder should not be called for an empty corpus")
				return nil, nil
			},
		}

		r := search.NewRetriever(embedder, &mock.VectorIndex{}, chunks)
		_, err := r.Retrieve(context.Background(), "anything?", docbase.RetrieveOptions{Category: "empty"})

		assert.Equal(t, docbase.ENOTFOUND, docbase.ErrorCode(err))
		assert.Contains(t, docbase.ErrorMessage(err), "no content ingested")
	})

	t.Run("embedding backend failure passes through", func(t *testing.T) {
		t.Parallel()

		chunks := &mock.ChunkService{
			CountChunksFn: func(ctx context.Context, filter docbase.ChunkFilter) (int, error) {
				return 10, nil
			},
		}
		embedder := &mock.Embedder{
			EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
				return nil, docbase.Errorf(docbase.EUNAVAILABLE, "embedding backend unavailable")
			},
		}

		r := search.NewRetriever(embedder, &mock.VectorIndex{}, chunks)
		_, err := r.Retrieve(context.Background(), "anything?", docbase.RetrieveOptions{})

		assert.Equal(t, docbase.EUNAVAILABLE, docbase.ErrorCode(err))
	})

	t.Run("defaults top k", func(t *testing.T) {
		t.Parallel()

		chunks := &mock.ChunkService{
			CountChunksFn: func(ctx context.Context, filter docbase.ChunkFilter) (int, error) {
				assert.Nil(t, filter.Category)
				return 10, nil
			},
		}
		embedder := &mock.Embedder{
			EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
				return []float32{1}, nil
			},
		}
		index := &mock.VectorIndex{
			QueryFn: func(ctx context.Context, vector []float32, k int, filter docbase.IndexFilter) ([]docbase.Match, error) {
				assert.Equal(t, search.DefaultTopK, k)
				return nil, nil
			},
		}

		r := search.NewRetriever(embedder, index, chunks)
		got, err := r.Retrieve(context.Background(), "anything?", docbase.RetrieveOptions{})

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects empty question", func(t *testing.T) {
		t.Parallel()

		r := search.NewRetriever(&mock.Embedder{}, &mock.VectorIndex{}, &mock.ChunkService{})
		_, err := r.Retrieve(context.Background(), "", docbase.RetrieveOptions{})
		assert.Equal(t, docbase.EINVALID, docbase.ErrorCode(err))
	})
}
