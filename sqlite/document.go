package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docbase"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docbase.DocumentService = (*DocumentService)(nil)

// DocumentService implements docbase.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// UpsertDocument inserts or updates a document keyed by (category, locator),
// replacing its chunks in the same transaction. When the stored content hash
// matches the incoming content, nothing is written and Unchanged is returned.
func (s *DocumentService) UpsertDocument(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error) {
	if err := doc.Validate(); err != nil {
		return docbase.Unchanged, err
	}
	if doc.ContentHash == "" {
		doc.ContentHash = docbase.HashContent(doc.Content)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return docbase.Unchanged, err
	}
	defer tx.Rollback()

	var existingID, existingHash string
	err = tx.QueryRowContext(ctx, `
		SELECT id, content_hash FROM documents
		WHERE category = ? AND locator = ?
	`, doc.Category, doc.Locator).Scan(&existingID, &existingHash)

	switch {
	case err == sql.ErrNoRows:
		doc.ID = uuid.New().String()
		if doc.FetchedAt.IsZero() {
			doc.FetchedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, category, locator, title, content, content_hash, source_kind, section, topic, image_refs, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, doc.Category, doc.Locator, doc.Title, doc.Content, doc.ContentHash,
			string(doc.SourceKind), doc.Section, doc.Topic, encodeImageRefs(doc.ImageRefs),
			doc.FetchedAt.Format(time.RFC3339)); err != nil {
			return docbase.Unchanged, err
		}
		if err := insertChunks(ctx, tx, doc, chunks); err != nil {
			return docbase.Unchanged, err
		}
		return docbase.Inserted, tx.Commit()

	case err != nil:
		return docbase.Unchanged, err

	case existingHash == doc.ContentHash:
		doc.ID = existingID
		return docbase.Unchanged, nil

	default:
		doc.ID = existingID
		if doc.FetchedAt.IsZero() {
			doc.FetchedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE documents
			SET title = ?, content = ?, content_hash = ?, source_kind = ?, section = ?, topic = ?, image_refs = ?, fetched_at = ?
			WHERE id = ?
		`, doc.Title, doc.Content, doc.ContentHash, string(doc.SourceKind), doc.Section,
			doc.Topic, encodeImageRefs(doc.ImageRefs), doc.FetchedAt.Format(time.RFC3339),
			doc.ID); err != nil {
			return docbase.Unchanged, err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
			return docbase.Unchanged, err
		}
		if err := insertChunks(ctx, tx, doc, chunks); err != nil {
			return docbase.Unchanged, err
		}
		return docbase.Updated, tx.Commit()
	}
}

func insertChunks(ctx context.Context, tx *sql.Tx, doc *docbase.Document, chunks []*docbase.Chunk) error {
	for i, c := range chunks {
		c.ID = uuid.New().String()
		c.DocumentID = doc.ID
		c.Category = doc.Category
		c.Position = i
		if err := c.Validate(); err != nil {
			return err
		}
		if len(c.Embedding) == 0 {
			return docbase.Errorf(docbase.EINVALID, "chunk %d has no embedding", i)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, category, position, content, embedding, heading, topic)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.DocumentID, c.Category, c.Position, c.Content,
			encodeEmbedding(c.Embedding), c.Metadata.Heading, c.Metadata.Topic); err != nil {
			return err
		}
	}
	return nil
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*docbase.Document, error) {
	return s.findOneDocument(ctx, "WHERE id = ?", id)
}

// FindDocumentByLocator retrieves a document by (category, locator).
func (s *DocumentService) FindDocumentByLocator(ctx context.Context, category, locator string) (*docbase.Document, error) {
	return s.findOneDocument(ctx, "WHERE category = ? AND locator = ?", category, locator)
}

const documentColumns = "id, category, locator, title, content, content_hash, source_kind, section, topic, image_refs, fetched_at"

func (s *DocumentService) findOneDocument(ctx context.Context, where string, args ...any) (*docbase.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents "+where, args...)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, docbase.Errorf(docbase.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*docbase.Document, error) {
	var doc docbase.Document
	var kind, imageRefs, fetchedAt string

	if err := row.Scan(&doc.ID, &doc.Category, &doc.Locator, &doc.Title, &doc.Content,
		&doc.ContentHash, &kind, &doc.Section, &doc.Topic, &imageRefs, &fetchedAt); err != nil {
		return nil, err
	}

	doc.SourceKind = docbase.SourceKind(kind)
	doc.ImageRefs = decodeImageRefs(imageRefs)

	var err error
	doc.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
	}
	return &doc, nil
}

// FindDocuments retrieves documents matching the filter, ordered by
// (category, locator) for stable listings.
func (s *DocumentService) FindDocuments(ctx context.Context, filter docbase.DocumentFilter) ([]*docbase.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}
	if filter.Locator != nil {
		query.WriteString(" AND locator = ?")
		args = append(args, *filter.Locator)
	}
	if filter.Kind != nil {
		query.WriteString(" AND source_kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.Query != "" {
		query.WriteString(" AND (title LIKE ? COLLATE NOCASE OR content LIKE ? COLLATE NOCASE)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}

	query.WriteString(" ORDER BY category ASC, locator ASC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*docbase.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteCategory removes all documents and chunks for a category in one
// transaction and reports what was removed.
func (s *DocumentService) DeleteCategory(ctx context.Context, category string) (*docbase.CategoryWipe, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var wipe docbase.CategoryWipe
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE category = ?", category).Scan(&wipe.Documents); err != nil {
		return nil, err
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE category = ?", category).Scan(&wipe.Chunks); err != nil {
		return nil, err
	}

	// Chunks cascade via the foreign key.
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE category = ?", category); err != nil {
		return nil, err
	}

	return &wipe, tx.Commit()
}

// Reset removes all documents and chunks.
func (s *DocumentService) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents")
	return err
}

// Stats returns document/chunk counts, total and per category.
func (s *DocumentService) Stats(ctx context.Context) (*docbase.StoreStats, error) {
	stats := &docbase.StoreStats{ByCategory: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&stats.Documents); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&stats.Chunks); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT category, COUNT(*) FROM documents GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}
	return stats, rows.Err()
}

// Image references are stored newline-joined; URLs and file paths cannot
// contain newlines.
func encodeImageRefs(refs []string) string {
	return strings.Join(refs, "\n")
}

func decodeImageRefs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
