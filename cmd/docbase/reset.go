package main

import (
	"fmt"

	"github.com/fwojciec/docbase"
)

// Run executes the reset command.
func (c *ResetCmd) Run(deps *Dependencies) error {
	if !c.Force {
		err := docbase.Errorf(docbase.EINVALID, "reset removes all content; pass --force to confirm")
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	if err := deps.Documents.Reset(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Store reset.")
	return nil
}
