// Package goquery implements link and image discovery over parsed HTML.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docbase"
)

// Ensure LinkExtractor implements docbase.LinkExtractor at compile time.
var _ docbase.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor discovers links and image references using CSS selectors.
// Navigation links rank highest: on documentation sites the nav tree is
// the closest thing to a table of contents.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks parses HTML and returns discovered links with priority.
// Relative hrefs are resolved against baseURL; links to other hosts are
// dropped. Each URL appears once, at its highest observed priority.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docbase.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "failed to parse HTML: %v", err)
	}

	var links []docbase.DiscoveredLink
	seen := make(map[string]int) // URL -> index into links

	collect := func(selector string, priority docbase.LinkPriority) {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists || href == "" || strings.HasPrefix(href, "#") {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == "" || !isSameHost(base, resolved) {
				return
			}

			if idx, ok := seen[resolved]; ok {
				if priority > links[idx].Priority {
					links[idx].Priority = priority
				}
				return
			}

			seen[resolved] = len(links)
			links = append(links, docbase.DiscoveredLink{
				URL:      resolved,
				Priority: priority,
				Text:     strings.TrimSpace(sel.Text()),
			})
		})
	}

	collect("nav a[href], aside a[href]", docbase.PriorityNavigation)
	collect("main a[href], article a[href]", docbase.PriorityContent)
	collect("a[href]", docbase.PriorityFallback)

	return links, nil
}

// ExtractImageRefs returns resolved image URLs referenced by the page.
// Image hosts are not restricted; documentation sites commonly serve
// screenshots from a CDN.
func (e *LinkExtractor) ExtractImageRefs(html string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docbase.Errorf(docbase.EINVALID, "failed to parse HTML: %v", err)
	}

	var refs []string
	seen := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, exists := sel.Attr("src")
		if !exists || src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		resolved := resolveURL(base, src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		refs = append(refs, resolved)
	})

	return refs, nil
}

// resolveURL resolves a relative URL against a base URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isSameHost checks if the resolved URL has the same host as the base URL.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}
