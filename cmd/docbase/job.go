package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docbase"
)

// statusPollInterval is how often a foreground ingestion refreshes its
// progress line.
const statusPollInterval = 200 * time.Millisecond

// runJob starts an ingestion job and follows it to completion, rendering
// progress in place. Ctrl-C cancels through the bound context; content
// stored before the cancel stays stored.
func runJob(deps *Dependencies, kind docbase.JobKind, category docbase.Category, source docbase.Source) error {
	id, err := deps.Coordinator.Start(deps.Ctx, kind, category, source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docbase.ErrorMessage(err))
		return err
	}
	deps.Logger.Info("job started", "id", id, "kind", kind, "category", category.Key)

	reported := 0
	for {
		status := deps.Coordinator.Status()
		fmt.Fprintf(deps.Stdout, "\r[%3.0f%%] %s", status.Progress*100, status.StatusText)

		// New per-unit errors go to stderr on their own lines.
		for _, msg := range status.Errors[reported:] {
			fmt.Fprintf(deps.Stderr, "\n  skip: %s", msg)
		}
		reported = len(status.Errors)

		if !status.InProgress {
			break
		}
		time.Sleep(statusPollInterval)
	}
	fmt.Fprintln(deps.Stdout)

	report := deps.Coordinator.Wait()
	printReport(deps, report)

	if report.State != docbase.JobCompleted {
		return docbase.Errorf(docbase.EINTERNAL, "ingestion %s", report.State)
	}
	return nil
}

func printReport(deps *Dependencies, report *docbase.JobReport) {
	fmt.Fprintf(deps.Stdout, "%s %s: %d pages (%d new, %d updated, %d unchanged), %d chunks in %s\n",
		report.Kind, report.State,
		report.Processed, report.Inserted, report.Updated, report.Skipped,
		report.Chunks, report.Duration.Round(time.Millisecond))
	if len(report.Errors) > 0 {
		fmt.Fprintf(deps.Stderr, "%d errors during ingestion\n", len(report.Errors))
	}
}
