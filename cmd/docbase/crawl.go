package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/docbase"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	var urlFilter *docbase.URLFilter
	if len(c.Filter) > 0 || len(c.Exclude) > 0 {
		urlFilter = &docbase.URLFilter{}
		for _, pattern := range c.Filter {
			re, err := regexp.Compile(pattern)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: invalid filter pattern %q: %v\n", pattern, err)
				return err
			}
			urlFilter.Include = append(urlFilter.Include, re)
		}
		for _, pattern := range c.Exclude {
			re, err := regexp.Compile(pattern)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: invalid exclude pattern %q: %v\n", pattern, err)
				return err
			}
			urlFilter.Exclude = append(urlFilter.Exclude, re)
		}
	}

	category := docbase.Category{Key: c.Category, Kind: docbase.CategoryPublic}
	if c.Internal {
		category.Kind = docbase.CategoryInternal
	}

	source := deps.NewCrawlSource(category, c.URL, urlFilter, c.MaxPages)
	return runJob(deps, docbase.JobCrawl, category, source)
}
