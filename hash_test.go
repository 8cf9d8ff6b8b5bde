package docbase_test

import (
	"testing"

	"github.com/fwojciec/docbase"
	"github.com/stretchr/testify/assert"
)

func TestHashContent_deterministic(t *testing.T) {
	t.Parallel()

	a := docbase.HashContent("Create a BOM from the structure tab.")
	b := docbase.HashContent("Create a BOM from the structure tab.")

	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestHashContent_ignores_whitespace_differences(t *testing.T) {
	t.Parallel()

	a := docbase.HashContent("Create a BOM\nfrom the   structure tab.")
	b := docbase.HashContent("Create a BOM from the structure tab.")

	assert.Equal(t, a, b)
}

func TestHashContent_detects_content_changes(t *testing.T) {
	t.Parallel()

	a := docbase.HashContent("Create a BOM from the structure tab.")
	b := docbase.HashContent("Create a BOM from the details tab.")

	assert.NotEqual(t, a, b)
}
