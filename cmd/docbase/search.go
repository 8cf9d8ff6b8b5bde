package main

import (
	"fmt"

	"github.com/fwojciec/docbase"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	filter := docbase.DocumentFilter{
		Query: c.Query,
		Limit: c.Limit,
	}
	if c.Category != "" {
		filter.Category = &c.Category
	}

	docs, err := deps.Documents.FindDocuments(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching documents.")
		return nil
	}

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", doc.Category, title, doc.Locator)
	}
	return nil
}
