package main

import (
	"github.com/fwojciec/docbase"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	category := docbase.Category{Key: c.Category, Kind: docbase.CategoryPublic}
	source := deps.NewImportSource(category, c.Path, c.File)
	return runJob(deps, docbase.JobImport, category, source)
}
