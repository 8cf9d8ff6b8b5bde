package docbase

import "context"

// SourceUnit is one unit of content produced by a source adapter.
type SourceUnit struct {
	Locator   string
	Title     string
	Content   string
	Kind      SourceKind
	Section   string
	Topic     string
	ImageRefs []string

	// Links discovered in the unit, already scoped to the source.
	// Only the crawler populates this.
	Links []string
}

// Source produces a finite, lazy sequence of content units.
//
// A source is restartable from its seed but not resumable mid-stream: after
// a process restart a new run begins from the seed. Next returns ok=false
// when the sequence is exhausted. A non-nil error with ok=true is a
// recoverable per-unit failure (the unit is skipped and the error recorded);
// a non-nil error with ok=false is fatal for the run.
type Source interface {
	Next(ctx context.Context) (unit *SourceUnit, ok bool, err error)

	// EstimatedTotal returns the expected number of units, for progress
	// reporting. Zero means unknown.
	EstimatedTotal() int
}
