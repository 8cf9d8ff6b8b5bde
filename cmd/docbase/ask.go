package main

import (
	"fmt"

	"github.com/fwojciec/docbase"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Querier.Ask(deps.Ctx, c.Question, docbase.RetrieveOptions{
		Category: c.Category,
		Topic:    c.Topic,
		TopK:     c.TopK,
	})
	if err != nil {
		if docbase.ErrorCode(err) == docbase.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s. Use 'docbase crawl' or 'docbase import' to add content.\n", docbase.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)

	if len(answer.ProTips) > 0 {
		fmt.Fprintln(deps.Stdout, "\nPro tips:")
		for _, tip := range answer.ProTips {
			fmt.Fprintf(deps.Stdout, "  - %s\n", tip)
		}
	}
	if len(answer.SourceLinks) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, link := range answer.SourceLinks {
			fmt.Fprintf(deps.Stdout, "  %s\n", link)
		}
	}
	return nil
}
