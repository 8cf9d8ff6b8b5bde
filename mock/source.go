package mock

import (
	"context"

	"github.com/fwojciec/docbase"
)

var _ docbase.Source = (*Source)(nil)

// Source is a mock implementation of docbase.Source.
type Source struct {
	NextFn           func(ctx context.Context) (*docbase.SourceUnit, bool, error)
	EstimatedTotalFn func() int
}

func (s *Source) Next(ctx context.Context) (*docbase.SourceUnit, bool, error) {
	return s.NextFn(ctx)
}

func (s *Source) EstimatedTotal() int {
	if s.EstimatedTotalFn == nil {
		return 0
	}
	return s.EstimatedTotalFn()
}

// UnitSource returns a Source that yields the given units in order, then
// reports exhaustion.
func UnitSource(units ...*docbase.SourceUnit) *Source {
	i := 0
	return &Source{
		NextFn: func(ctx context.Context) (*docbase.SourceUnit, bool, error) {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
			if i >= len(units) {
				return nil, false, nil
			}
			u := units[i]
			i++
			return u, true, nil
		},
		EstimatedTotalFn: func() int { return len(units) },
	}
}
