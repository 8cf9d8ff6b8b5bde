package docbase

import (
	"context"
	"time"
)

// Chunk represents a section of a document optimized for embedding and
// retrieval. A chunk belongs to exactly one document; deleting the document
// deletes its chunks and their embeddings.
type Chunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"documentId"`
	Category   string        `json:"category"` // Denormalized for efficient filtering
	Position   int           `json:"position"`
	Content    string        `json:"content"`
	Embedding  []float32     `json:"embedding,omitempty"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// ChunkMetadata contains contextual information about a chunk.
type ChunkMetadata struct {
	// Heading is the nearest markdown heading preceding the chunk.
	Heading string `json:"heading,omitempty"`

	// Topic tag inherited from the owning document.
	Topic string `json:"topic,omitempty"`

	// Locator and Title of the owning document, for citation.
	Locator string `json:"locator,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.DocumentID == "" {
		return Errorf(EINVALID, "chunk document ID required")
	}
	if c.Category == "" {
		return Errorf(EINVALID, "chunk category required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	return nil
}

// ChunkService represents read access to stored chunks.
type ChunkService interface {
	// FindChunkByID retrieves a chunk by ID.
	// Returns ENOTFOUND if the chunk does not exist.
	FindChunkByID(ctx context.Context, id string) (*Chunk, error)

	// FindChunks retrieves chunks matching the filter, ordered by
	// (document, position).
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// CountChunks returns the number of chunks matching the filter.
	CountChunks(ctx context.Context, filter ChunkFilter) (int, error)
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	ID         *string `json:"id"`
	DocumentID *string `json:"documentId"`
	Category   *string `json:"category"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// IndexFilter restricts a vector query to a slice of the corpus.
type IndexFilter struct {
	// Category restricts matches to one category (exact match).
	Category string

	// Topic optionally restricts matches to one topic tag.
	Topic string
}

// Match is a scored result from a vector query.
type Match struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`

	// FetchedAt is the owning document's ingestion time, used for
	// deterministic tie-breaking.
	FetchedAt time.Time `json:"fetchedAt"`
}

// VectorIndex supports nearest-neighbor search over chunk embeddings.
//
// Ranking is cosine similarity descending; ties break by shorter chunk
// content, then earlier document ingestion time, then chunk ID, so repeated
// queries over a fixed corpus return identical orderings.
type VectorIndex interface {
	// Query returns the k best matches for the vector under the filter.
	// Returns EUNAVAILABLE if the index backend cannot be reached.
	Query(ctx context.Context, vector []float32, k int, filter IndexFilter) ([]Match, error)
}
