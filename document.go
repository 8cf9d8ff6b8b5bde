package docbase

import (
	"context"
	"time"
)

// SourceKind identifies where a document came from.
type SourceKind string

// Supported document sources.
const (
	SourceWeb       SourceKind = "web"
	SourceLocalFile SourceKind = "local-file"
)

// Document represents one ingested unit of documentation. Its identity is
// the canonical source locator (URL or absolute file path) within a category.
type Document struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`
	Locator     string     `json:"locator"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ContentHash string     `json:"contentHash"`
	SourceKind  SourceKind `json:"sourceKind"`

	// Structural metadata derived from the locator and page content.
	Section   string   `json:"section,omitempty"`
	Topic     string   `json:"topic,omitempty"`
	ImageRefs []string `json:"imageRefs,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Category == "" {
		return Errorf(EINVALID, "document category required")
	}
	if d.Locator == "" {
		return Errorf(EINVALID, "document locator required")
	}
	if d.SourceKind != SourceWeb && d.SourceKind != SourceLocalFile {
		return Errorf(EINVALID, "document source kind must be %q or %q", SourceWeb, SourceLocalFile)
	}
	return nil
}

// UpsertResult reports what an upsert did to the store.
type UpsertResult int

// Upsert outcomes.
const (
	Inserted UpsertResult = iota
	Updated
	Unchanged
)

// String returns a human-readable name for the result.
func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// CategoryWipe reports what a category deletion removed.
type CategoryWipe struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// StoreStats summarizes the store contents for status display.
type StoreStats struct {
	Documents  int            `json:"documents"`
	Chunks     int            `json:"chunks"`
	ByCategory map[string]int `json:"byCategory"`
}

// DocumentService represents a service for managing documents and their chunks.
//
// UpsertDocument is the ingestion entry point: the document and its chunks
// are written in one transaction, replacing any prior chunks for the same
// locator. Re-upserting identical content (same content hash) is a no-op.
type DocumentService interface {
	// UpsertDocument inserts or updates a document keyed by (category, locator).
	// Returns Unchanged without writing when the stored content hash matches.
	// On Inserted/Updated the supplied chunks replace all prior chunks.
	UpsertDocument(ctx context.Context, doc *Document, chunks []*Chunk) (UpsertResult, error)

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if the document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocumentByLocator retrieves a document by (category, locator).
	// Returns ENOTFOUND if the document does not exist.
	FindDocumentByLocator(ctx context.Context, category, locator string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteCategory removes all documents and chunks for a category in one
	// transaction. A concurrent retrieval observes either the full category
	// or none of it.
	DeleteCategory(ctx context.Context, category string) (*CategoryWipe, error)

	// Reset removes all documents and chunks.
	Reset(ctx context.Context) error

	// Stats returns document/chunk counts, total and per category.
	Stats(ctx context.Context) (*StoreStats, error)
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	ID       *string     `json:"id"`
	Category *string     `json:"category"`
	Locator  *string     `json:"locator"`
	Kind     *SourceKind `json:"kind"`

	// Query matches title or content (substring, case-insensitive).
	Query string `json:"query,omitempty"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
