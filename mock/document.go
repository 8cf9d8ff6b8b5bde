package mock

import (
	"context"

	"github.com/fwojciec/docbase"
)

var _ docbase.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of docbase.DocumentService.
type DocumentService struct {
	UpsertDocumentFn        func(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error)
	FindDocumentByIDFn      func(ctx context.Context, id string) (*docbase.Document, error)
	FindDocumentByLocatorFn func(ctx context.Context, category, locator string) (*docbase.Document, error)
	FindDocumentsFn         func(ctx context.Context, filter docbase.DocumentFilter) ([]*docbase.Document, error)
	DeleteCategoryFn        func(ctx context.Context, category string) (*docbase.CategoryWipe, error)
	ResetFn                 func(ctx context.Context) error
	StatsFn                 func(ctx context.Context) (*docbase.StoreStats, error)
}

func (s *DocumentService) UpsertDocument(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error) {
	return s.UpsertDocumentFn(ctx, doc, chunks)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*docbase.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocumentByLocator(ctx context.Context, category, locator string) (*docbase.Document, error) {
	return s.FindDocumentByLocatorFn(ctx, category, locator)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter docbase.DocumentFilter) ([]*docbase.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteCategory(ctx context.Context, category string) (*docbase.CategoryWipe, error) {
	return s.DeleteCategoryFn(ctx, category)
}

func (s *DocumentService) Reset(ctx context.Context) error {
	return s.ResetFn(ctx)
}

func (s *DocumentService) Stats(ctx context.Context) (*docbase.StoreStats, error) {
	return s.StatsFn(ctx)
}
