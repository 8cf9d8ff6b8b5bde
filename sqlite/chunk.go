package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/docbase"
)

// Compile-time interface verification.
var _ docbase.ChunkService = (*ChunkService)(nil)
var _ docbase.VectorIndex = (*ChunkService)(nil)

// ChunkService implements docbase.ChunkService and docbase.VectorIndex
// using SQLite. Embeddings live on the chunk rows, so the vector index
// stays consistent with the content store without a separate backend.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

const chunkColumns = `c.id, c.document_id, c.category, c.position, c.content, c.embedding, c.heading, c.topic, d.locator, d.title`

func scanChunk(row rowScanner) (*docbase.Chunk, error) {
	var c docbase.Chunk
	var embedding []byte

	if err := row.Scan(&c.ID, &c.DocumentID, &c.Category, &c.Position, &c.Content,
		&embedding, &c.Metadata.Heading, &c.Metadata.Topic,
		&c.Metadata.Locator, &c.Metadata.Title); err != nil {
		return nil, err
	}

	var err error
	c.Embedding, err = decodeEmbedding(embedding)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindChunkByID retrieves a chunk by ID.
func (s *ChunkService) FindChunkByID(ctx context.Context, id string) (*docbase.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.id = ?
	`, id)

	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, docbase.Errorf(docbase.ENOTFOUND, "chunk not found")
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// FindChunks retrieves chunks matching the filter, ordered by (document, position).
func (s *ChunkService) FindChunks(ctx context.Context, filter docbase.ChunkFilter) ([]*docbase.Chunk, error) {
	query, args := buildChunkQuery("SELECT "+chunkColumns+" FROM chunks c JOIN documents d ON d.id = c.document_id", filter)
	query += " ORDER BY c.document_id ASC, c.position ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*docbase.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// CountChunks returns the number of chunks matching the filter.
func (s *ChunkService) CountChunks(ctx context.Context, filter docbase.ChunkFilter) (int, error) {
	query, args := buildChunkQuery("SELECT COUNT(*) FROM chunks c", filter)

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildChunkQuery(base string, filter docbase.ChunkFilter) (string, []any) {
	var query strings.Builder
	var args []any

	query.WriteString(base + " WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND c.id = ?")
		args = append(args, *filter.ID)
	}
	if filter.DocumentID != nil {
		query.WriteString(" AND c.document_id = ?")
		args = append(args, *filter.DocumentID)
	}
	if filter.Category != nil {
		query.WriteString(" AND c.category = ?")
		args = append(args, *filter.Category)
	}

	return query.String(), args
}

// Query returns the k best matches for the vector under the filter,
// ranked by cosine similarity. Ties break by shorter content, then
// earlier document ingestion, then chunk ID, so a fixed corpus always
// returns the same ordering.
func (s *ChunkService) Query(ctx context.Context, vector []float32, k int, filter docbase.IndexFilter) ([]docbase.Match, error) {
	if k <= 0 {
		return nil, docbase.Errorf(docbase.EINVALID, "k must be positive")
	}
	if len(vector) == 0 {
		return nil, docbase.Errorf(docbase.EINVALID, "query vector required")
	}

	var query strings.Builder
	var args []any
	query.WriteString("SELECT " + chunkColumns + ", d.fetched_at FROM chunks c JOIN documents d ON d.id = c.document_id WHERE 1=1")
	if filter.Category != "" {
		query.WriteString(" AND c.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Topic != "" {
		query.WriteString(" AND c.topic = ?")
		args = append(args, filter.Topic)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queryNorm := vectorNorm(vector)

	var matches []docbase.Match
	for rows.Next() {
		var c docbase.Chunk
		var embedding []byte
		var fetchedAt string

		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Category, &c.Position, &c.Content,
			&embedding, &c.Metadata.Heading, &c.Metadata.Topic,
			&c.Metadata.Locator, &c.Metadata.Title, &fetchedAt); err != nil {
			return nil, err
		}

		c.Embedding, err = decodeEmbedding(embedding)
		if err != nil {
			return nil, err
		}

		// Dimension mismatch means the chunk was embedded with a
		// different model; it cannot be scored against this query.
		if len(c.Embedding) != len(vector) {
			continue
		}

		fetched, err := time.Parse(time.RFC3339, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
		}

		matches = append(matches, docbase.Match{
			Chunk:     &c,
			Score:     cosineSimilarity(vector, c.Embedding, queryNorm),
			FetchedAt: fetched,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if len(matches[i].Chunk.Content) != len(matches[j].Chunk.Content) {
			return len(matches[i].Chunk.Content) < len(matches[j].Chunk.Content)
		}
		if !matches[i].FetchedAt.Equal(matches[j].FetchedAt) {
			return matches[i].FetchedAt.Before(matches[j].FetchedAt)
		}
		return matches[i].Chunk.ID < matches[j].Chunk.ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func cosineSimilarity(query, candidate []float32, queryNorm float64) float64 {
	var dot float64
	for i := range query {
		dot += float64(query[i]) * float64(candidate[i])
	}
	candidateNorm := vectorNorm(candidate)
	if queryNorm == 0 || candidateNorm == 0 {
		return 0
	}
	return dot / (queryNorm * candidateNorm)
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Embeddings are stored as little-endian float32 blobs.
func encodeEmbedding(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(x))
	}
	return b
}

func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob: %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
