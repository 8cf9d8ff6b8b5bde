package mock

import (
	"context"

	"github.com/fwojciec/docbase"
)

var _ docbase.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of docbase.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *docbase.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *docbase.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
