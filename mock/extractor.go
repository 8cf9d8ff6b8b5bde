package mock

import "github.com/fwojciec/docbase"

var _ docbase.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docbase.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docbase.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docbase.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ docbase.Converter = (*Converter)(nil)

// Converter is a mock implementation of docbase.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ docbase.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of docbase.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn     func(html string, baseURL string) ([]docbase.DiscoveredLink, error)
	ExtractImageRefsFn func(html string, baseURL string) ([]string, error)
}

func (l *LinkExtractor) ExtractLinks(html string, baseURL string) ([]docbase.DiscoveredLink, error) {
	return l.ExtractLinksFn(html, baseURL)
}

func (l *LinkExtractor) ExtractImageRefs(html string, baseURL string) ([]string, error) {
	if l.ExtractImageRefsFn == nil {
		return nil, nil
	}
	return l.ExtractImageRefsFn(html, baseURL)
}
