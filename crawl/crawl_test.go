package crawl_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/docbase"
	"github.com/fwojciec/docbase/crawl"
	"github.com/fwojciec/docbase/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCrawler wires a crawler against mocks that serve a tiny site:
// every fetched page extracts to "content of <url>" with its URL as title.
func newTestCrawler(pages map[string][]docbase.DiscoveredLink) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				if _, ok := pages[url]; !ok {
					return "", docbase.Errorf(docbase.ENOTFOUND, "HTTP 404 for %s", url)
				}
				return "<html>" + url + "</html>", nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*docbase.ExtractResult, error) {
				return &docbase.ExtractResult{Title: "Title", ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "content of " + html, nil
			},
		},
		Links: &mock.LinkExtractor{
			ExtractLinksFn: func(html string, baseURL string) ([]docbase.DiscoveredLink, error) {
				return pages[baseURL], nil
			},
		},
		RateLimiter: crawl.NewDomainLimiter(10000),
		RetryDelays: []time.Duration{0},
	}
}

func collect(t *testing.T, c *crawl.Crawler) ([]*docbase.SourceUnit, []error) {
	t.Helper()
	var units []*docbase.SourceUnit
	var errs []error
	for {
		unit, ok, err := c.Next(context.Background())
		if !ok {
			require.NoError(t, err)
			return units, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		units = append(units, unit)
	}
}

func TestCrawler_sitemap_mode(t *testing.T) {
	t.Parallel()

	seed := "https://docs.example.com/help/"
	pages := map[string][]docbase.DiscoveredLink{
		seed + "a": nil,
		seed + "b": nil,
	}
	c := newTestCrawler(pages)
	c.Seed = seed
	c.Category = docbase.Category{Key: "windchill", Kind: docbase.CategoryPublic}
	c.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *docbase.URLFilter) ([]string, error) {
			return []string{seed + "a", seed + "b"}, nil
		},
	}

	units, errs := collect(t, c)

	require.Empty(t, errs)
	require.Len(t, units, 2)
	assert.Equal(t, 2, c.EstimatedTotal())
	for _, u := range units {
		assert.Equal(t, docbase.SourceWeb, u.Kind)
		assert.Contains(t, u.Content, "content of")
		assert.Equal(t, "Title", u.Title)
	}
}

func TestCrawler_falls_back_to_link_following(t *testing.T) {
	t.Parallel()

	seed := "https://docs.example.com/help/"
	pages := map[string][]docbase.DiscoveredLink{
		seed: {
			{URL: seed + "a", Priority: docbase.PriorityContent},
			{URL: seed + "b", Priority: docbase.PriorityContent},
			{URL: "https://other.example.com/outside", Priority: docbase.PriorityContent},
			{URL: "https://docs.example.com/blog/post", Priority: docbase.PriorityContent},
		},
		seed + "a": {
			{URL: seed, Priority: docbase.PriorityNavigation}, // already seen
		},
		seed + "b": nil,
	}
	c := newTestCrawler(pages)
	c.Seed = seed
	c.Category = docbase.Category{Key: "windchill", Kind: docbase.CategoryPublic}
	c.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *docbase.URLFilter) ([]string, error) {
			return []string{}, nil
		},
	}

	units, errs := collect(t, c)

	require.Empty(t, errs)
	require.Len(t, units, 3, "seed plus two in-scope links; external host and out-of-prefix skipped")

	locators := make(map[string]bool)
	for _, u := range units {
		locators[u.Locator] = true
	}
	assert.True(t, locators[seed])
	assert.True(t, locators[seed+"a"])
	assert.True(t, locators[seed+"b"])
}

func TestCrawler_reports_per_page_failures_and_continues(t *testing.T) {
	t.Parallel()

	seed := "https://docs.example.com/help/"
	pages := map[string][]docbase.DiscoveredLink{
		seed + "good": nil,
		// "missing" absent: fetch returns 404
	}
	c := newTestCrawler(pages)
	c.Seed = seed
	c.Category = docbase.Category{Key: "windchill", Kind: docbase.CategoryPublic}
	c.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *docbase.URLFilter) ([]string, error) {
			return []string{seed + "good", seed + "missing"}, nil
		},
	}

	units, errs := collect(t, c)

	require.Len(t, units, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, docbase.ENOTFOUND, docbase.ErrorCode(errs[0]))
}

func TestCrawler_respects_max_pages(t *testing.T) {
	t.Parallel()

	seed := "https://docs.example.com/help/"
	pages := make(map[string][]docbase.DiscoveredLink)
	var urls []string
	for i := 0; i < 10; i++ {
		u := fmt.Sprintf("%spage%d", seed, i)
		pages[u] = nil
		urls = append(urls, u)
	}
	c := newTestCrawler(pages)
	c.Seed = seed
	c.Category = docbase.Category{Key: "windchill", Kind: docbase.CategoryPublic}
	c.MaxPages = 3
	c.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *docbase.URLFilter) ([]string, error) {
			return urls, nil
		},
	}

	units, errs := collect(t, c)

	require.Empty(t, errs)
	assert.Len(t, units, 3)
	assert.Equal(t, 3, c.EstimatedTotal())
}

func TestCrawler_internal_category_requires_working_credentials(t *testing.T) {
	t.Parallel()

	t.Run("fails fast without stored credentials", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(nil)
		c.Seed = "https://internal.example.com/kb/"
		c.Category = docbase.Category{Key: "internal-kb", Kind: docbase.CategoryInternal}
		c.Auth = &mock.CredentialProvider{
			CredentialsFn: func(ctx context.Context, category string) (*docbase.Credentials, error) {
				return nil, nil
			},
		}

		_, ok, err := c.Next(context.Background())
		assert.False(t, ok)
		assert.Equal(t, docbase.EUNAUTHORIZED, docbase.ErrorCode(err))
	})

	t.Run("fails fast when login check rejects", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(nil)
		c.Seed = "https://internal.example.com/kb/"
		c.Category = docbase.Category{Key: "internal-kb", Kind: docbase.CategoryInternal}
		c.Auth = &mock.CredentialProvider{
			CredentialsFn: func(ctx context.Context, category string) (*docbase.Credentials, error) {
				return &docbase.Credentials{Username: "svc", Password: "stale"}, nil
			},
			TestLoginFn: func(ctx context.Context, creds *docbase.Credentials) (bool, error) {
				return false, nil
			},
		}

		_, ok, err := c.Next(context.Background())
		assert.False(t, ok)
		assert.Equal(t, docbase.EUNAUTHORIZED, docbase.ErrorCode(err))
	})
}

func TestCrawler_derives_section_and_topic_from_path(t *testing.T) {
	t.Parallel()

	seed := "https://docs.example.com/help/"
	page := seed + "change_mgmt/workflows/routing.html"
	pages := map[string][]docbase.DiscoveredLink{page: nil}

	c := newTestCrawler(pages)
	c.Seed = seed
	c.Category = docbase.Category{Key: "windchill", Kind: docbase.CategoryPublic}
	c.Sitemaps = &mock.SitemapService{
		DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *docbase.URLFilter) ([]string, error) {
			return []string{page}, nil
		},
	}

	units, errs := collect(t, c)

	require.Empty(t, errs)
	require.Len(t, units, 1)
	assert.Equal(t, "change_mgmt", units[0].Section)
	assert.Equal(t, "workflows", units[0].Topic)
}
