package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docbase"
	"github.com/fwojciec/docbase/search"
)

// JobCoordinator is the slice of the ingestion coordinator the commands use.
type JobCoordinator interface {
	Start(ctx context.Context, kind docbase.JobKind, category docbase.Category, source docbase.Source) (string, error)
	Status() docbase.JobStatus
	Cancel() error
	Wait() *docbase.JobReport
}

// QueryService is the slice of the search service the commands use.
type QueryService interface {
	Ask(ctx context.Context, question string, opts docbase.RetrieveOptions) (*docbase.Answer, error)
	GenerateCourse(ctx context.Context, topic, category string, shape docbase.CourseShape, count int) (*search.Course, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Documents   docbase.DocumentService
	Chunks      docbase.ChunkService
	Sitemaps    docbase.SitemapService
	Auth        docbase.CredentialProvider
	Coordinator JobCoordinator
	Querier     QueryService

	// Source factories, bound late so commands stay testable without a
	// network or filesystem.
	NewCrawlSource  func(category docbase.Category, seed string, filter *docbase.URLFilter, maxPages int) docbase.Source
	NewImportSource func(category docbase.Category, root string, files []string) docbase.Source
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl  CrawlCmd  `cmd:"" help:"Crawl a documentation site into a category"`
	Import ImportCmd `cmd:"" help:"Import local files into a category"`
	Ask    AskCmd    `cmd:"" help:"Ask a question about ingested documentation"`
	Course CourseCmd `cmd:"" help:"Generate lessons or a quiz about a topic"`
	Search SearchCmd `cmd:"" help:"Keyword search over ingested documents"`
	Status StatusCmd `cmd:"" help:"Show store contents by category"`
	Clear  ClearCmd  `cmd:"" help:"Delete all content for a category"`
	Reset  ResetCmd  `cmd:"" help:"Delete all content"`
	Login  LoginCmd  `cmd:"" help:"Verify stored credentials for an internal category"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Category string   `arg:"" help:"Category to ingest into"`
	URL      string   `arg:"" help:"Seed URL of the documentation site"`
	Internal bool     `help:"Source requires credentials (from environment)"`
	Filter   []string `short:"F" name:"filter" help:"Include URLs matching regex (repeatable)"`
	Exclude  []string `short:"X" name:"exclude" help:"Exclude URLs matching regex (repeatable)"`
	MaxPages int      `default:"1000" help:"Page limit for the crawl"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Category string   `arg:"" help:"Category to ingest into"`
	Path     string   `arg:"" help:"Directory to import"`
	File     []string `short:"f" help:"Import only these files, relative to the directory (repeatable)"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask"`
	Category string `short:"c" help:"Restrict to a category"`
	Topic    string `short:"t" help:"Restrict to a topic tag"`
	TopK     int    `default:"5" help:"Number of chunks to retrieve"`
	Tone     string `default:"formal" enum:"formal,casual,technical" env:"DOCBASE_TONE" help:"Answer tone"`
	Length   string `default:"detailed" enum:"brief,detailed" env:"DOCBASE_LENGTH" help:"Answer length"`
	Model    string `env:"DOCBASE_MODEL" help:"Override the generation model"`
}

// CourseCmd is the "course" subcommand.
type CourseCmd struct {
	Topic    string `arg:"" help:"Topic to build the course around"`
	Category string `short:"c" help:"Restrict to a category"`
	Shape    string `default:"lesson" enum:"lesson,quiz" help:"Course shape: lesson or quiz"`
	Count    int    `default:"5" help:"Number of lessons or questions"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query    string `arg:"" help:"Keyword query (matches title and content)"`
	Category string `short:"c" help:"Restrict to a category"`
	Limit    int    `default:"20" help:"Maximum results"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// ClearCmd is the "clear" subcommand.
type ClearCmd struct {
	Category string `arg:"" help:"Category to delete"`
	Force    bool   `help:"Confirm deletion"`
}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	Force bool `help:"Confirm deletion of all content"`
}

// LoginCmd is the "login" subcommand.
type LoginCmd struct {
	Category string `arg:"" help:"Internal category whose credentials to verify"`
}
