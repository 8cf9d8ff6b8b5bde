package docbase

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms clean HTML (e.g., from an Extractor) into Markdown.
	Convert(html string) (string, error)
}

// LinkExtractor discovers links and image references in HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns discovered links with priority.
	// The baseURL is used to resolve relative URLs; external hosts are
	// filtered out.
	ExtractLinks(html string, baseURL string) ([]DiscoveredLink, error)

	// ExtractImageRefs returns resolved image URLs referenced by the page.
	ExtractImageRefs(html string, baseURL string) ([]string, error)
}
