package main

import (
	"fmt"
	"sort"

	"github.com/fwojciec/docbase"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	stats, err := deps.Documents.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	if stats.Documents == 0 {
		fmt.Fprintln(deps.Stdout, "Store is empty. Use 'docbase crawl' or 'docbase import' to add content.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%d documents, %d chunks\n", stats.Documents, stats.Chunks)

	categories := make([]string, 0, len(stats.ByCategory))
	for category := range stats.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(deps.Stdout, "  %s: %d documents\n", category, stats.ByCategory[category])
	}
	return nil
}
