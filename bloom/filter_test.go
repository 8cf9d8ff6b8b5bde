package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/docbase/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Add_Test(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Test("https://example.com/docs/page"))
	f.Add("https://example.com/docs/page")
	assert.True(t, f.Test("https://example.com/docs/page"))
}

func TestFilter_no_false_negatives(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(10000, 0.01)
	for i := 0; i < 5000; i++ {
		f.Add(fmt.Sprintf("https://example.com/docs/page%d", i))
	}
	for i := 0; i < 5000; i++ {
		assert.True(t, f.Test(fmt.Sprintf("https://example.com/docs/page%d", i)))
	}
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	for i := 0; i < 100; i++ {
		f.Add(fmt.Sprintf("url-%d", i))
	}
	assert.InDelta(t, 100, float64(f.EstimatedCount()), 10)
}
