package ingest_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/docbase"
	"github.com/fwojciec/docbase/ingest"
	"github.com/fwojciec/docbase/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategory = docbase.Category{Key: "docs", Kind: docbase.CategoryPublic}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func unit(locator, content string) *docbase.SourceUnit {
	return &docbase.SourceUnit{
		Locator: locator,
		Title:   "Title for " + locator,
		Content: content,
		Kind:    docbase.SourceWeb,
	}
}

// notFoundDocs is a DocumentService where every locator is new and every
// upsert inserts.
func notFoundDocs() *mock.DocumentService {
	return &mock.DocumentService{
		FindDocumentByLocatorFn: func(ctx context.Context, category, locator string) (*docbase.Document, error) {
			return nil, docbase.Errorf(docbase.ENOTFOUND, "document not found")
		},
		UpsertDocumentFn: func(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error) {
			return docbase.Inserted, nil
		},
	}
}

func fixedEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}
}

func TestCoordinator_Start_runs_to_completion(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var upserted []string
	docs := notFoundDocs()
	docs.UpsertDocumentFn = func(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error) {
		mu.Lock()
		upserted = append(upserted, doc.Locator)
		mu.Unlock()
		require.NotEmpty(t, chunks)
		for _, chunk := range chunks {
			assert.NotEmpty(t, chunk.Embedding)
			assert.Equal(t, doc.Locator, chunk.Metadata.Locator)
		}
		assert.NotEmpty(t, doc.ContentHash)
		return docbase.Inserted, nil
	}

	c := ingest.NewCoordinator(docs, fixedEmbedder(), discardLogger())
	source := mock.UnitSource(
		unit("https://docs.example.com/a", "Alpha content."),
		unit("https://docs.example.com/b", "Beta content."),
	)

	id, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, source)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobCompleted, report.State)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 2, report.Chunks)
	assert.Empty(t, report.Errors)

	mu.Lock()
	assert.Equal(t, []string{"https://docs.example.com/a", "https://docs.example.com/b"}, upserted)
	mu.Unlock()

	status := c.Status()
	assert.Equal(t, docbase.JobCompleted, status.State)
	assert.False(t, status.InProgress)
	assert.Equal(t, 1.0, status.Progress)
	assert.Equal(t, id, status.ID)
	assert.False(t, status.FinishedAt.IsZero())
}

func TestCoordinator_Start_skips_unchanged_content_without_embedding(t *testing.T) {
	t.Parallel()

	content := "Stable content that has not changed."
	docs := notFoundDocs()
	docs.FindDocumentByLocatorFn = func(ctx context.Context, category, locator string) (*docbase.Document, error) {
		return &docbase.Document{
			Category:    category,
			Locator:     locator,
			ContentHash: docbase.HashContent(content),
		}, nil
	}
	docs.UpsertDocumentFn = func(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error) {
		t.Error("upsert should not be called for unchanged content")
		return docbase.Unchanged, nil
	}
	embedder := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			t.Error("embedder should not be called for unchanged content")
			return nil, nil
		},
	}

	c := ingest.NewCoordinator(docs, embedder, discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, mock.UnitSource(
		unit("https://docs.example.com/a", content),
	))
	require.NoError(t, err)

	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobCompleted, report.State)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Chunks)
}

func TestCoordinator_Start_single_flight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	blocking := &mock.Source{
		NextFn: func(ctx context.Context) (*docbase.SourceUnit, bool, error) {
			select {
			case <-release:
				return nil, false, nil
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		},
	}

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, blocking)
	require.NoError(t, err)

	_, err = c.Start(context.Background(), docbase.JobImport, testCategory, mock.UnitSource())
	assert.Equal(t, docbase.ECONFLICT, docbase.ErrorCode(err))

	close(release)
	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobCompleted, report.State)

	// The slot is free again after the terminal state.
	_, err = c.Start(context.Background(), docbase.JobImport, testCategory, mock.UnitSource())
	require.NoError(t, err)
	c.Wait()
}

func TestCoordinator_Start_concurrent_calls_one_wins(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	blocking := func() *mock.Source {
		return &mock.Source{
			NextFn: func(ctx context.Context) (*docbase.SourceUnit, bool, error) {
				select {
				case <-release:
					return nil, false, nil
				case <-ctx.Done():
					return nil, false, ctx.Err()
				}
			},
		}
	}

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, blocking())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	started, conflicts := 0, 0
	for err := range errs {
		if err == nil {
			started++
			continue
		}
		assert.Equal(t, docbase.ECONFLICT, docbase.ErrorCode(err))
		conflicts++
	}
	assert.Equal(t, 1, started, "exactly one concurrent start should win the slot")
	assert.Equal(t, 1, conflicts)

	close(release)
	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobCompleted, report.State)
}

func TestCoordinator_Cancel_stops_at_unit_boundary(t *testing.T) {
	t.Parallel()

	firstStored := make(chan struct{})
	var once sync.Once
	docs := notFoundDocs()
	docs.UpsertDocumentFn = func(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error) {
		once.Do(func() { close(firstStored) })
		return docbase.Inserted, nil
	}

	var units []*docbase.SourceUnit
	for i := 0; i < 100; i++ {
		units = append(units, unit(fmt.Sprintf("https://docs.example.com/p%d", i), fmt.Sprintf("Page %d content.", i)))
	}

	// Slow the embedder down so cancellation lands mid-run.
	embedder := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			time.Sleep(time.Millisecond)
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}

	c := ingest.NewCoordinator(docs, embedder, discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, mock.UnitSource(units...))
	require.NoError(t, err)

	<-firstStored
	require.NoError(t, c.Cancel())

	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobCancelled, report.State)
	assert.Less(t, report.Processed, len(units))

	status := c.Status()
	assert.Equal(t, docbase.JobCancelled, status.State)
	assert.False(t, status.InProgress)
	assert.Less(t, status.Progress, 1.0)
}

func TestCoordinator_Cancel_without_active_job(t *testing.T) {
	t.Parallel()

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())
	err := c.Cancel()
	assert.Equal(t, docbase.ENOTFOUND, docbase.ErrorCode(err))
}

func TestCoordinator_records_recoverable_unit_errors(t *testing.T) {
	t.Parallel()

	i := 0
	source := &mock.Source{
		NextFn: func(ctx context.Context) (*docbase.SourceUnit, bool, error) {
			i++
			switch i {
			case 1:
				return unit("https://docs.example.com/ok", "Fine content."), true, nil
			case 2:
				return nil, true, docbase.Errorf(docbase.ENOTFOUND, "page not found: https://docs.example.com/gone")
			case 3:
				return unit("https://docs.example.com/ok2", "More content."), true, nil
			default:
				return nil, false, nil
			}
		},
		EstimatedTotalFn: func() int { return 3 },
	}

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, source)
	require.NoError(t, err)

	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobCompleted, report.State)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "page not found")
}

func TestCoordinator_fails_on_fatal_source_error(t *testing.T) {
	t.Parallel()

	source := &mock.Source{
		NextFn: func(ctx context.Context) (*docbase.SourceUnit, bool, error) {
			return nil, false, docbase.Errorf(docbase.EUNAUTHORIZED, "authentication failed")
		},
	}

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, source)
	require.NoError(t, err)

	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobFailed, report.State)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "authentication failed")
}

func TestCoordinator_aborts_on_high_failure_rate(t *testing.T) {
	t.Parallel()

	docs := notFoundDocs()
	docs.UpsertDocumentFn = func(ctx context.Context, doc *docbase.Document, chunks []*docbase.Chunk) (docbase.UpsertResult, error) {
		return docbase.Unchanged, docbase.Errorf(docbase.EINTERNAL, "disk full")
	}

	var units []*docbase.SourceUnit
	for i := 0; i < 50; i++ {
		units = append(units, unit(fmt.Sprintf("https://docs.example.com/p%d", i), fmt.Sprintf("Page %d.", i)))
	}

	c := ingest.NewCoordinator(docs, fixedEmbedder(), discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, mock.UnitSource(units...))
	require.NoError(t, err)

	report := c.Wait()
	require.NotNil(t, report)
	assert.Equal(t, docbase.JobFailed, report.State)
	assert.Equal(t, 10, report.Processed, "aborts as soon as the failure rate is judged")
	assert.Contains(t, report.Errors[len(report.Errors)-1], "aborted")
}

func TestCoordinator_progress_stays_below_one_while_running(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	i := 0
	source := &mock.Source{
		NextFn: func(ctx context.Context) (*docbase.SourceUnit, bool, error) {
			if i >= 2 {
				select {
				case <-gate:
					return nil, false, nil
				case <-ctx.Done():
					return nil, false, ctx.Err()
				}
			}
			i++
			return unit(fmt.Sprintf("https://docs.example.com/p%d", i), "Content."), true, nil
		},
		EstimatedTotalFn: func() int { return 2 },
	}

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, testCategory, source)
	require.NoError(t, err)

	// Both units finish quickly; the source then blocks so the job stays
	// running with all estimated work done.
	require.Eventually(t, func() bool {
		status := c.Status()
		return status.InProgress && status.Progress > 0.9
	}, 2*time.Second, 5*time.Millisecond)

	status := c.Status()
	assert.Less(t, status.Progress, 1.0)
	assert.Equal(t, docbase.JobRunning, status.State)

	close(gate)
	report := c.Wait()
	assert.Equal(t, docbase.JobCompleted, report.State)
	assert.Equal(t, 1.0, c.Status().Progress)
}

func TestCoordinator_empty_content_is_skipped(t *testing.T) {
	t.Parallel()

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())
	_, err := c.Start(context.Background(), docbase.JobImport, testCategory, mock.UnitSource(
		unit("/notes/empty.md", ""),
	))
	require.NoError(t, err)

	report := c.Wait()
	assert.Equal(t, docbase.JobCompleted, report.State)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Chunks)
}

func TestCoordinator_Start_rejects_invalid_category(t *testing.T) {
	t.Parallel()

	c := ingest.NewCoordinator(notFoundDocs(), fixedEmbedder(), discardLogger())
	_, err := c.Start(context.Background(), docbase.JobCrawl, docbase.Category{}, mock.UnitSource())
	assert.Equal(t, docbase.EINVALID, docbase.ErrorCode(err))
}
