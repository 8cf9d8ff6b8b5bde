package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docbase"
	"github.com/fwojciec/docbase/crawl"
	"github.com/fwojciec/docbase/fs"
	"github.com/fwojciec/docbase/gemini"
	"github.com/fwojciec/docbase/goquery"
	"github.com/fwojciec/docbase/htmltomarkdown"
	docbasehttp "github.com/fwojciec/docbase/http"
	"github.com/fwojciec/docbase/ingest"
	"github.com/fwojciec/docbase/search"
	docbaseslog "github.com/fwojciec/docbase/slog"
	"github.com/fwojciec/docbase/sqlite"
	"github.com/fwojciec/docbase/trafilatura"
	"google.golang.org/genai"
)

// crawlRequestsPerSecond is the per-domain fetch rate during crawls.
const crawlRequestsPerSecond = 1.0

func main() {
	// Ctrl-C cancels the context; a running ingestion stops at the next
	// page boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	DocumentService docbase.DocumentService
	ChunkService    *sqlite.ChunkService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel()}))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docbase"),
		kong.Description("Personal documentation knowledge base."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docbase --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCBASE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.DocumentService = sqlite.NewDocumentService(m.DB)
	m.ChunkService = sqlite.NewChunkService(m.DB)
	deps.Documents = m.DocumentService
	deps.Chunks = m.ChunkService
	deps.Sitemaps = docbasehttp.NewSitemapService(nil)

	// Commands that embed or generate need the Gemini API.
	var client *genai.Client
	if cmd == "crawl" || cmd == "import" || cmd == "ask" || cmd == "course" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}

		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
	}

	if cmd == "crawl" || cmd == "import" {
		embedder := docbaseslog.NewLoggingEmbedder(
			gemini.NewEmbedder(client, gemini.DefaultEmbeddingModel, gemini.DefaultEmbeddingDim), logger)
		deps.Coordinator = ingest.NewCoordinator(m.DocumentService, embedder, logger)

		deps.NewCrawlSource = func(category docbase.Category, seed string, filter *docbase.URLFilter, maxPages int) docbase.Source {
			auth := authServiceFromEnv(category.Key, seed)

			var fetchOpts []docbasehttp.Option
			if category.Kind == docbase.CategoryInternal {
				if creds, _ := auth.Credentials(ctx, category.Key); creds != nil {
					fetchOpts = append(fetchOpts, docbasehttp.WithBasicAuth(creds))
				}
			}
			fetcher := docbaseslog.NewLoggingFetcher(docbasehttp.NewFetcher(fetchOpts...), logger)

			return &crawl.Crawler{
				Sitemaps:    deps.Sitemaps,
				Fetcher:     fetcher,
				Extractor:   trafilatura.NewExtractor(),
				Converter:   htmltomarkdown.NewConverter(),
				Links:       goquery.NewLinkExtractor(),
				RateLimiter: crawl.NewDomainLimiter(crawlRequestsPerSecond),
				Auth:        auth,
				Seed:        seed,
				Category:    category,
				Filter:      filter,
				MaxPages:    maxPages,
			}
		}

		deps.NewImportSource = func(category docbase.Category, root string, files []string) docbase.Source {
			return &fs.Importer{
				Root:      root,
				Files:     files,
				Category:  category,
				Extractor: trafilatura.NewExtractor(),
				Converter: htmltomarkdown.NewConverter(),
			}
		}
	}

	if cmd == "ask" || cmd == "course" {
		embedder := docbaseslog.NewLoggingEmbedder(
			gemini.NewEmbedder(client, gemini.DefaultEmbeddingModel, gemini.DefaultEmbeddingDim), logger)
		retriever := search.NewRetriever(embedder, m.ChunkService, m.ChunkService)

		synthesizer := gemini.NewSynthesizer(client)
		if counter, err := gemini.NewTokenCounter(tokenizerModel); err == nil {
			synthesizer.Tokens = counter
		} else {
			logger.Warn("token counter unavailable, skipping context budgeting", "err", err)
		}

		deps.Querier = search.NewService(retriever, synthesizer, settingsFromCLI(cli))
	}

	if cmd == "login" {
		deps.Auth = authServiceFromEnv(cli.Login.Category, "")
	}

	return kongCtx.Run(deps)
}

// tokenizerModel is used for local token counting.
const tokenizerModel = "gemini-2.5-flash"

func defaultDBPath() string {
	if path := os.Getenv("DOCBASE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docbase.db"
	}
	dir := filepath.Join(home, ".docbase")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docbase.db")
}

func logLevel() slog.Level {
	if os.Getenv("DOCBASE_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// settings carries generation preferences parsed from flags and environment.
type settings struct {
	tone   docbase.Tone
	length docbase.Length
	model  string
}

func (s settings) Tone() docbase.Tone { return s.tone }

func (s settings) ResponseLength() docbase.Length { return s.length }

func (s settings) Model() string { return s.model }

func settingsFromCLI(cli *CLI) settings {
	return settings{
		tone:   docbase.Tone(cli.Ask.Tone),
		length: docbase.Length(cli.Ask.Length),
		model:  cli.Ask.Model,
	}
}

// Credentials for internal categories come from the environment, never the
// store: DOCBASE_<CATEGORY>_USERNAME, DOCBASE_<CATEGORY>_PASSWORD, and
// DOCBASE_<CATEGORY>_LOGIN_URL for the login probe.
func authServiceFromEnv(category, fallbackProbeURL string) *docbasehttp.AuthService {
	probeURL := os.Getenv(credentialEnv(category, "LOGIN_URL"))
	if probeURL == "" {
		probeURL = fallbackProbeURL
	}

	auth := docbasehttp.NewAuthService(nil, probeURL)
	username := os.Getenv(credentialEnvUser(category))
	password := os.Getenv(credentialEnvPass(category))
	if username != "" {
		auth.SetCredentials(category, docbase.Credentials{Username: username, Password: password})
	}
	return auth
}

func credentialEnvUser(category string) string { return credentialEnv(category, "USERNAME") }
func credentialEnvPass(category string) string { return credentialEnv(category, "PASSWORD") }

func credentialEnv(category, suffix string) string {
	key := strings.ToUpper(category)
	key = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, key)
	return "DOCBASE_" + key + "_" + suffix
}
