package main

import (
	"fmt"

	"github.com/fwojciec/docbase"
)

// Run executes the login command.
func (c *LoginCmd) Run(deps *Dependencies) error {
	creds, err := deps.Auth.Credentials(deps.Ctx, c.Category)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}
	if creds == nil {
		err := docbase.Errorf(docbase.ENOTFOUND, "no credentials configured for %q", c.Category)
		fmt.Fprintf(deps.Stderr, "error: %s\nHint: set %s and %s\n",
			docbase.ErrorMessage(err), credentialEnvUser(c.Category), credentialEnvPass(c.Category))
		return err
	}

	ok, err := deps.Auth.TestLogin(deps.Ctx, creds)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}
	if !ok {
		err := docbase.Errorf(docbase.EUNAUTHORIZED, "credentials for %q were rejected", c.Category)
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Login OK for %q\n", c.Category)
	return nil
}
