// Package ingest coordinates ingestion jobs: it drains a content source
// through the split-embed-store pipeline while exposing cancellable,
// non-blocking progress to callers.
//
// The coordinator holds a single job slot. Starting a job while another
// runs fails with ECONFLICT instead of queueing; the knowledge base is
// personal, and one visible job at a time is easier to reason about than
// a hidden queue.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/docbase"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline tuning.
const (
	// embedConcurrency bounds parallel embedding calls per document.
	embedConcurrency = 4

	// abortFailureRate aborts a run when more than half the units fail,
	// once enough units have been seen to judge.
	abortFailureRate = 0.5
	abortMinUnits    = 10

	// progressCeiling keeps reported progress below 1 until the job is
	// terminal, even when the source's estimate undershoots.
	progressCeiling = 0.99
)

// Coordinator runs ingestion jobs against a document store.
type Coordinator struct {
	docs     docbase.DocumentService
	embedder docbase.Embedder
	logger   *slog.Logger

	// Split overrides the chunking defaults when non-zero.
	Split docbase.SplitOptions

	mu     sync.Mutex
	status docbase.JobStatus
	cancel context.CancelFunc
	done   chan struct{}
	report *docbase.JobReport
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(docs docbase.DocumentService, embedder docbase.Embedder, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		docs:     docs,
		embedder: embedder,
		logger:   logger,
		status:   docbase.JobStatus{State: docbase.JobIdle},
	}
}

// Start launches an ingestion job draining the source into the category.
// It returns the job ID immediately; the run proceeds in the background.
// Returns ECONFLICT while another job is active.
func (c *Coordinator) Start(ctx context.Context, kind docbase.JobKind, category docbase.Category, source docbase.Source) (string, error) {
	if err := category.Validate(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.InProgress {
		return "", docbase.Errorf(docbase.ECONFLICT, "an ingestion job is already running (%s into %q)", c.status.Kind, c.status.Category)
	}

	runCtx, cancel := context.WithCancel(ctx)
	id := uuid.New().String()
	c.status = docbase.JobStatus{
		ID:         id,
		Kind:       kind,
		Category:   category.Key,
		State:      docbase.JobRunning,
		InProgress: true,
		StatusText: "Starting...",
		StartedAt:  time.Now().UTC(),
	}
	c.cancel = cancel
	c.done = make(chan struct{})
	c.report = nil

	go c.run(runCtx, kind, category, source)

	return id, nil
}

// Status returns a snapshot of the job slot. It never blocks behind the
// ingestion loop.
func (c *Coordinator) Status() docbase.JobStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.status
	status.Errors = append([]string(nil), c.status.Errors...)
	return status
}

// Cancel requests cancellation of the active job. The run stops at the
// next unit boundary; units already stored stay stored.
// Returns ENOTFOUND when no job is active.
func (c *Coordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.status.InProgress {
		return docbase.Errorf(docbase.ENOTFOUND, "no active ingestion job")
	}
	c.cancel()
	return nil
}

// Wait blocks until the active job finishes and returns its report.
// Returns the last finished report when no job is active.
func (c *Coordinator) Wait() *docbase.JobReport {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// run is the ingestion loop. It owns the slot until it finishes.
func (c *Coordinator) run(ctx context.Context, kind docbase.JobKind, category docbase.Category, source docbase.Source) {
	begin := time.Now()
	report := &docbase.JobReport{Kind: kind, Category: category.Key}

	verb := "Importing"
	if kind == docbase.JobCrawl {
		verb = "Crawling"
	}

	failures := 0
	finish := func(state docbase.JobState) {
		report.State = state
		report.Duration = time.Since(begin)

		c.mu.Lock()
		c.status.State = state
		c.status.InProgress = false
		c.status.FinishedAt = time.Now().UTC()
		if state == docbase.JobCompleted {
			c.status.Progress = 1
			c.status.StatusText = "Completed"
		}
		report.Errors = append([]string(nil), c.status.Errors...)
		c.report = report
		close(c.done)
		c.mu.Unlock()

		c.logger.Info("ingestion finished",
			"kind", kind,
			"category", category.Key,
			"state", state,
			"processed", report.Processed,
			"inserted", report.Inserted,
			"updated", report.Updated,
			"skipped", report.Skipped,
			"chunks", report.Chunks,
			"errors", len(report.Errors),
			"duration", report.Duration,
		)
	}

	for {
		select {
		case <-ctx.Done():
			c.setStatusText("Cancelled")
			finish(docbase.JobCancelled)
			return
		default:
		}

		unit, ok, err := source.Next(ctx)
		if !ok {
			if err != nil {
				if ctx.Err() != nil {
					finish(docbase.JobCancelled)
					return
				}
				c.recordError(fmt.Sprintf("source: %v", docbase.ErrorMessage(err)))
				c.setStatusText("Failed: " + docbase.ErrorMessage(err))
				finish(docbase.JobFailed)
				return
			}
			finish(docbase.JobCompleted)
			return
		}

		report.Processed++
		if err != nil {
			failures++
			c.recordError(docbase.ErrorMessage(err))
		} else {
			c.setStatusText(fmt.Sprintf("%s: %s...", verb, unit.Locator))

			result, chunks, err := c.ingestUnit(ctx, category, unit)
			switch {
			case err != nil && ctx.Err() != nil:
				finish(docbase.JobCancelled)
				return
			case err != nil:
				failures++
				c.recordError(fmt.Sprintf("%s: %s", unit.Locator, docbase.ErrorMessage(err)))
			default:
				report.Chunks += chunks
				switch result {
				case docbase.Inserted:
					report.Inserted++
				case docbase.Updated:
					report.Updated++
				default:
					report.Skipped++
				}
			}
		}

		c.setProgress(report.Processed, source.EstimatedTotal())

		if report.Processed >= abortMinUnits && float64(failures) > abortFailureRate*float64(report.Processed) {
			c.recordError(fmt.Sprintf("aborted: %d of %d units failed", failures, report.Processed))
			c.setStatusText("Failed: too many errors")
			finish(docbase.JobFailed)
			return
		}
	}
}

// ingestUnit pushes one unit through the pipeline: dedup check, split,
// embed, store. Nothing is written until every chunk has an embedding, so
// a mid-unit failure leaves the previous version of the document intact.
func (c *Coordinator) ingestUnit(ctx context.Context, category docbase.Category, unit *docbase.SourceUnit) (docbase.UpsertResult, int, error) {
	if unit.Content == "" {
		return docbase.Unchanged, 0, nil
	}

	hash := docbase.HashContent(unit.Content)

	// Embedding is the expensive step; skip it when the stored content
	// is already identical.
	existing, err := c.docs.FindDocumentByLocator(ctx, category.Key, unit.Locator)
	if err != nil && docbase.ErrorCode(err) != docbase.ENOTFOUND {
		return docbase.Unchanged, 0, err
	}
	if existing != nil && existing.ContentHash == hash {
		return docbase.Unchanged, 0, nil
	}

	opts := c.Split
	if opts.MaxLen == 0 {
		opts = docbase.DefaultSplitOptions()
	}
	pieces, splitReport, err := docbase.SplitText(unit.Content, opts)
	if err != nil {
		return docbase.Unchanged, 0, err
	}
	if splitReport.HardSplits > 0 {
		c.logger.Warn("hard splits during chunking",
			"locator", unit.Locator,
			"count", splitReport.HardSplits,
		)
	}
	if len(pieces) == 0 {
		return docbase.Unchanged, 0, nil
	}

	chunks := make([]*docbase.Chunk, len(pieces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, piece := range pieces {
		g.Go(func() error {
			vector, err := c.embedder.Embed(gctx, piece.Content)
			if err != nil {
				return err
			}
			chunks[i] = &docbase.Chunk{
				Content:   piece.Content,
				Embedding: vector,
				Metadata: docbase.ChunkMetadata{
					Heading: piece.Heading,
					Topic:   unit.Topic,
					Locator: unit.Locator,
					Title:   unit.Title,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return docbase.Unchanged, 0, err
	}

	doc := &docbase.Document{
		Category:    category.Key,
		Locator:     unit.Locator,
		Title:       unit.Title,
		Content:     unit.Content,
		ContentHash: hash,
		SourceKind:  unit.Kind,
		Section:     unit.Section,
		Topic:       unit.Topic,
		ImageRefs:   unit.ImageRefs,
	}
	result, err := c.docs.UpsertDocument(ctx, doc, chunks)
	if err != nil {
		return docbase.Unchanged, 0, err
	}
	return result, len(chunks), nil
}

func (c *Coordinator) setStatusText(text string) {
	c.mu.Lock()
	c.status.StatusText = text
	c.mu.Unlock()
}

func (c *Coordinator) setProgress(processed, estimated int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if estimated <= 0 {
		return
	}
	progress := float64(processed) / float64(estimated)
	if progress > progressCeiling {
		progress = progressCeiling
	}
	// Progress never moves backwards, even when a link-following crawl
	// grows its estimate.
	if progress > c.status.Progress {
		c.status.Progress = progress
	}
}

func (c *Coordinator) recordError(msg string) {
	c.mu.Lock()
	c.status.Errors = append(c.status.Errors, msg)
	c.mu.Unlock()
}
