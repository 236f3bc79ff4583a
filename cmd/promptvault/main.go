package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/promptvault"
	"github.com/fwojciec/promptvault/ahocorasick"
	"github.com/fwojciec/promptvault/bloom"
	"github.com/fwojciec/promptvault/fs"
	"github.com/fwojciec/promptvault/gemini"
	"github.com/fwojciec/promptvault/goquery"
	pvhttp "github.com/fwojciec/promptvault/http"
	"github.com/fwojciec/promptvault/importer"
	pvslog "github.com/fwojciec/promptvault/slog"
	"github.com/fwojciec/promptvault/sqlite"
	"github.com/fwojciec/promptvault/tfidf"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

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

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	PromptService promptvault.PromptService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Getenv: os.Getenv,
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
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("promptvault"),
		kong.Description("Import, categorize and deduplicate prompts from forum page dumps."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'promptvault --help' to see available commands")
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
	cmd = kongCtx.Selected().Name

	deps.Logger = newLogger(cli.Verbose, stderr)

	refs := tfidf.DefaultReferencePrompts()
	if cli.References != "" {
		if refs, err = tfidf.LoadReferencePrompts(cli.References); err != nil {
			return err
		}
	}
	categories := tfidf.NewCategoryClassifier(refs,
		tfidf.WithK(cli.K),
		tfidf.WithConfidenceThreshold(cli.Confidence),
	)
	deps.Categories = categories
	deps.NewDuplicateFinder = func(corpus []string) promptvault.DuplicateFinder {
		return tfidf.NewDuplicateDetector(corpus,
			tfidf.WithTopN(cli.TopN),
			tfidf.WithDuplicateThreshold(cli.Threshold),
		)
	}
	deps.NewExporter = func(dir string) Exporter {
		return fs.NewWriter(dir)
	}

	// Classification works on the built-in references alone.
	if cmd == "classify" {
		return kongCtx.Run(deps)
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PROMPTVAULT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.PromptService = sqlite.NewPromptService(m.DB)
	deps.Prompts = m.PromptService

	if cmd == "import" {
		fetcher := pvhttp.NewFetcher(
			pvhttp.WithTimeout(30*time.Second),
			pvhttp.WithHostRate(1.0, 1),
		)
		defer fetcher.Close()

		imp, err := m.newImporter(ctx, &cli.Import, fetcher, deps)
		if err != nil {
			return err
		}
		deps.Importer = imp
	}

	return kongCtx.Run(deps)
}

// newImporter wires the import pipeline for the given command flags.
func (m *Main) newImporter(ctx context.Context, c *ImportCmd, fetcher promptvault.Fetcher, deps *Dependencies) (*importer.Importer, error) {
	logger := deps.Logger

	config := goquery.DefaultParserConfig()
	if c.Config != "" {
		loaded, err := goquery.LoadParserConfig(c.Config)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	var parserOpts []goquery.ParserOption
	if c.BaseURL != "" {
		base, err := url.Parse(c.BaseURL)
		if err != nil || base.Host == "" {
			return nil, promptvault.Errorf(promptvault.EINVALID, "invalid base URL %q", c.BaseURL)
		}
		parserOpts = append(parserOpts, goquery.WithBaseURL(base))
	}
	parser, err := goquery.NewPostParser(config, parserOpts...)
	if err != nil {
		return nil, err
	}

	classifierOpts := []goquery.ClassifierOption{goquery.WithKeywordRules(keywordRules()...)}
	fallback, err := m.newFallback(ctx, logger)
	if err != nil {
		return nil, err
	}
	if fallback != nil {
		classifierOpts = append(classifierOpts, goquery.WithFallback(fallback))
	}
	classifier, err := goquery.NewPostClassifier(config, classifierOpts...)
	if err != nil {
		return nil, err
	}

	downloads := importer.NewRetryFetcher(pvslog.NewLoggingFetcher(fetcher, logger), nil, logger)
	registry, err := goquery.NewRegistry(config, downloads)
	if err != nil {
		return nil, err
	}

	return &importer.Importer{
		Parser:             parser,
		Classifier:         pvslog.NewLoggingPostClassifier(classifier, logger),
		Extractor:          pvslog.NewLoggingPromptExtractor(registry, logger),
		Categories:         deps.Categories,
		Prompts:            deps.Prompts,
		NewDuplicateFinder: deps.NewDuplicateFinder,
		Seen:               bloom.NewFilter(seenCapacity, seenFalsePositiveRate),
		Concurrency:        c.Concurrency,
	}, nil
}

// newFallback returns the Gemini post type classifier, or nil when no API
// key is configured.
func (m *Main) newFallback(ctx context.Context, logger *slog.Logger) (promptvault.PostTypeClassifier, error) {
	apiKey := m.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Info("GEMINI_API_KEY not set, unmatched posts are treated as discussion")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	var opts []gemini.Option
	if counter, err := gemini.NewTokenCounter(tokenizerModel); err == nil {
		opts = append(opts, gemini.WithTokenBudget(counter, fallbackTokenBudget))
	} else {
		logger.Warn("token counter unavailable", "model", tokenizerModel, "err", err)
	}

	return pvslog.NewLoggingPostTypeClassifier(gemini.NewPostTypeClassifier(client, opts...), logger), nil
}

// keywordRules builds the keyword rules in priority order.
func keywordRules() []goquery.KeywordRule {
	sets := goquery.DefaultKeywordSets()
	rules := make([]goquery.KeywordRule, 0, len(sets))
	for _, set := range sets {
		rules = append(rules, goquery.KeywordRule{Type: set.Type, Matcher: ahocorasick.NewMatcher(set.Keywords)})
	}
	return rules
}

func newLogger(verbose bool, stderr io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(stderr, nil))
}

const (
	seenCapacity          = 100_000
	seenFalsePositiveRate = 0.0001
)

// fallbackTokenBudget caps the post text sent to the fallback classifier.
const fallbackTokenBudget = 1024

const tokenizerModel = "gemini-2.5-flash"

func defaultDBPath() string {
	if path := os.Getenv("PROMPTVAULT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "promptvault.db"
	}
	dir := filepath.Join(home, ".promptvault")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "promptvault.db")
}
