package main

import (
	"fmt"

	"github.com/fwojciec/docbase"
)

// Run executes the clear command.
func (c *ClearCmd) Run(deps *Dependencies) error {
	if !c.Force {
		err := docbase.Errorf(docbase.EINVALID, "clearing %q removes all its documents; pass --force to confirm", c.Category)
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	wipe, err := deps.Documents.DeleteCategory(deps.Ctx, c.Category)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cleared %q: %d documents, %d chunks\n", c.Category, wipe.Documents, wipe.Chunks)
	return nil
}
