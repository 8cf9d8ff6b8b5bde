// Package crawl implements the web source: it walks a documentation site
// and yields one content unit per page. Discovery prefers the site's
// sitemap; when no sitemap exists it falls back to recursive
// link-following scoped to the seed URL's path prefix.
package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docbase"
)

// Frontier configuration.
const (
	// frontierExpectedURLs sizes the Bloom filter.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable duplicate-skip rate.
	frontierFalsePositiveRate = 0.01
	// DefaultMaxPages limits a run to prevent runaway crawls.
	DefaultMaxPages = 1000
)

// Compile-time interface verification.
var _ docbase.Source = (*Crawler)(nil)

// Crawler is a docbase.Source that yields pages of a documentation site.
// It is pull-based: the ingestion loop calls Next until exhaustion, so the
// crawl advances only as fast as downstream processing.
type Crawler struct {
	Sitemaps    docbase.SitemapService
	Fetcher     docbase.Fetcher
	Extractor   docbase.Extractor
	Converter   docbase.Converter
	Links       docbase.LinkExtractor
	RateLimiter docbase.DomainLimiter
	Auth        docbase.CredentialProvider

	// Seed is the crawl root; discovered links outside its host and path
	// prefix are ignored.
	Seed     string
	Category docbase.Category
	Filter   *docbase.URLFilter

	// MaxPages caps the number of pages processed.
	// Defaults to DefaultMaxPages.
	MaxPages int

	RetryDelays []time.Duration

	started     bool
	sitemapMode bool
	frontier    *Frontier
	seedURL     *url.URL
	estimated   int
	processed   int
}

// EstimatedTotal returns the number of pages the crawl expects to process.
// With a sitemap the count is known up front; in link-following mode it is
// the pages processed so far plus the queued frontier, which grows as links
// are discovered.
func (c *Crawler) EstimatedTotal() int {
	if !c.started {
		return 0
	}
	if c.sitemapMode {
		return c.estimated
	}
	total := c.processed + c.frontier.Len()
	if max := c.maxPages(); total > max {
		total = max
	}
	return total
}

func (c *Crawler) maxPages() int {
	if c.MaxPages > 0 {
		return c.MaxPages
	}
	return DefaultMaxPages
}

// Next yields the next page of the site. A per-page failure returns a
// non-nil error with ok=true; the caller records it and continues.
func (c *Crawler) Next(ctx context.Context) (*docbase.SourceUnit, bool, error) {
	if !c.started {
		if err := c.start(ctx); err != nil {
			return nil, false, err
		}
	}

	for {
		if c.processed >= c.maxPages() {
			return nil, false, nil
		}

		link, ok := c.frontier.Pop()
		if !ok {
			return nil, false, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		linkURL, err := url.Parse(link.URL)
		if err != nil {
			c.processed++
			return nil, true, docbase.Errorf(docbase.EINVALID, "invalid URL %q", link.URL)
		}
		if err := c.RateLimiter.Wait(ctx, linkURL.Host); err != nil {
			return nil, false, err
		}

		c.processed++
		unit, err := c.processPage(ctx, link.URL)
		if err != nil {
			// Credential rejection mid-crawl means every remaining page
			// will fail the same way.
			if docbase.ErrorCode(err) == docbase.EUNAUTHORIZED {
				return nil, false, err
			}
			return nil, true, err
		}
		return unit, true, nil
	}
}

// start verifies credentials for internal categories and seeds the frontier,
// preferring sitemap discovery over link-following.
func (c *Crawler) start(ctx context.Context) error {
	seedURL, err := url.Parse(c.Seed)
	if err != nil {
		return docbase.Errorf(docbase.EINVALID, "invalid seed URL %q", c.Seed)
	}
	c.seedURL = seedURL

	if c.Category.Kind == docbase.CategoryInternal {
		if err := c.verifyAuth(ctx); err != nil {
			return err
		}
	}

	c.frontier = NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)

	var urls []string
	if c.Sitemaps != nil {
		urls, err = c.Sitemaps.DiscoverURLs(ctx, c.Seed, c.Filter)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Discovery failure is not fatal; fall back to link-following.
			urls = nil
		}
	}

	if len(urls) > 0 {
		c.sitemapMode = true
		for _, u := range urls {
			c.frontier.Push(docbase.DiscoveredLink{URL: u, Priority: docbase.PriorityContent})
		}
		c.estimated = c.frontier.Len()
		if max := c.maxPages(); c.estimated > max {
			c.estimated = max
		}
	} else {
		c.frontier.Push(docbase.DiscoveredLink{URL: c.Seed, Priority: docbase.PriorityNavigation})
	}

	c.started = true
	return nil
}

// verifyAuth fails fast when an internal category has no working
// credentials, instead of burning a crawl on per-page 401s.
func (c *Crawler) verifyAuth(ctx context.Context) error {
	if c.Auth == nil {
		return docbase.Errorf(docbase.EUNAUTHORIZED, "internal category %q requires credentials", c.Category.Key)
	}
	creds, err := c.Auth.Credentials(ctx, c.Category.Key)
	if err != nil {
		return err
	}
	if creds == nil {
		return docbase.Errorf(docbase.EUNAUTHORIZED, "no credentials stored for category %q", c.Category.Key)
	}
	ok, err := c.Auth.TestLogin(ctx, creds)
	if err != nil {
		return err
	}
	if !ok {
		return docbase.Errorf(docbase.EUNAUTHORIZED, "login failed for category %q", c.Category.Key)
	}
	return nil
}

// processPage fetches one page and turns it into a source unit.
func (c *Crawler) processPage(ctx context.Context, pageURL string) (*docbase.SourceUnit, error) {
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	fetchFn := func(ctx context.Context, url string) (string, error) {
		return c.Fetcher.Fetch(ctx, url)
	}
	html, err := FetchWithRetryDelays(ctx, pageURL, fetchFn, nil, delays)
	if err != nil {
		return nil, err
	}

	var links []string
	if !c.sitemapMode && c.Links != nil {
		if discovered, err := c.Links.ExtractLinks(html, pageURL); err == nil {
			for _, d := range discovered {
				if !c.inScope(d.URL) {
					continue
				}
				if c.frontier.Push(d) {
					links = append(links, d.URL)
				}
			}
		}
	}

	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		return nil, err
	}
	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, err
	}

	var imageRefs []string
	if c.Links != nil {
		imageRefs, _ = c.Links.ExtractImageRefs(html, pageURL)
	}

	section, topic := docbase.DeriveSectionTopic(c.Seed, pageURL)

	return &docbase.SourceUnit{
		Locator:   pageURL,
		Title:     extracted.Title,
		Content:   markdown,
		Kind:      docbase.SourceWeb,
		Section:   section,
		Topic:     topic,
		ImageRefs: imageRefs,
		Links:     links,
	}, nil
}

// inScope reports whether a discovered URL belongs to the crawl: same host,
// under the seed's path prefix, and passing the URL filter.
func (c *Crawler) inScope(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Host != c.seedURL.Host {
		return false
	}
	if !strings.HasPrefix(u.Path, c.seedURL.Path) {
		return false
	}
	if c.Filter != nil && !c.Filter.Match(rawURL) {
		return false
	}
	return true
}
