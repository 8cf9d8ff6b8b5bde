package docbase

import (
	"net/url"
	"strings"
)

// DeriveSectionTopic derives structural metadata from a locator's position
// under its source root. Documentation trees encode their hierarchy in the
// path; the first two segments below the root serve as section and topic
// tags for filtering.
func DeriveSectionTopic(root, locator string) (section, topic string) {
	section, topic = "General", "Documentation"

	rootPath := pathOf(root)
	locPath := pathOf(locator)

	rel := strings.TrimPrefix(locPath, strings.TrimSuffix(rootPath, "/"))
	var parts []string
	for _, p := range strings.Split(rel, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	// The final segment is the page itself, not a grouping.
	if len(parts) > 1 {
		section = parts[0]
	}
	if len(parts) > 2 {
		topic = parts[1]
	}
	return section, topic
}

func pathOf(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		return u.Path
	}
	return locator
}
