// Command docdelta is a thin CLI over the llm orchestration layer: validate
// configured backends, list their models, run one-shot or streaming
// generation, and summarize source files chunk by chunk.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/chunk"
	"github.com/jatin2507/docdelta/config"
	"github.com/jatin2507/docdelta/llm"
	deltalogger "github.com/jatin2507/docdelta/logger"
	"github.com/jatin2507/docdelta/migrations"
	"github.com/jatin2507/docdelta/usage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usageText() string {
	return strings.TrimSpace(`
Usage: docdelta [flags] <command> [args]

Commands:
  validate              Check which configured backends are reachable
  models [provider]     List available models
  generate <prompt>     Generate text (use -stream for incremental output)
  summarize <file>      Summarize a source file chunk by chunk
  usage                 Show recorded token usage per backend

Flags:
`)
}

func run() error {
	var (
		configPath = flag.String("config", config.GetConfigPath(), "Path to config file")
		dbPath     = flag.String("db", "", "Path to SQLite usage database (overrides config)")
		logFile    = flag.String("logfile", "", "Path to log file. If not set, logs to stderr")
		pretty     = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
		provider   = flag.String("provider", "", "Backend to use (default: configured primary)")
		stream     = flag.Bool("stream", false, "Stream generation output incrementally")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, usageText())
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("no command given")
	}

	// Validate that --logfile and --pretty are mutually exclusive
	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	logger, err := deltalogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *dbPath == "" {
		*dbPath = settings.DatabasePath()
	}

	db, recorder, err := openUsageStore(*dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // No remedy for db close errors

	manager := config.BuildManager(settings, logger, recorder)

	ctx := context.Background()
	manager.Initialize(ctx)

	switch cmd := flag.Arg(0); cmd {
	case "validate":
		return runValidate(ctx, manager)
	case "models":
		return runModels(ctx, manager, flag.Arg(1))
	case "generate":
		prompt := strings.Join(flag.Args()[1:], " ")
		if prompt == "" {
			return fmt.Errorf("generate requires a prompt")
		}
		return runGenerate(ctx, manager, *provider, prompt, *stream)
	case "summarize":
		if flag.NArg() < 2 {
			return fmt.Errorf("summarize requires a file path")
		}
		return runSummarize(ctx, manager, *provider, flag.Arg(1))
	case "usage":
		return runUsage(ctx, recorder)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// openUsageStore opens the SQLite database, applies migrations, and returns
// the usage recorder backed by it.
func openUsageStore(dbPath string, logger zerolog.Logger) (*sql.DB, *usage.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("Opening usage database")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	migrationsPath := os.Getenv("DOCDELTA_MIGRATIONS")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := migrations.RunMigrations(db, migrationsPath, logger); err != nil {
		db.Close() //nolint:errcheck // No remedy for db close errors
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, usage.NewStore(db), nil
}

func runValidate(ctx context.Context, manager *llm.Manager) error {
	results := manager.ValidateProviders(ctx)
	if len(results) == 0 {
		return llm.ErrNoProviderAvailable
	}
	for _, id := range manager.ProviderIDs() {
		status := "unreachable"
		if results[id] {
			status = "ok"
		}
		fmt.Printf("%-12s %s\n", id, status)
	}
	return nil
}

func runModels(ctx context.Context, manager *llm.Manager, providerID string) error {
	models, err := manager.AvailableModels(ctx, providerID)
	if err != nil {
		return err
	}
	for _, model := range models {
		fmt.Println(model)
	}
	return nil
}

func runGenerate(ctx context.Context, manager *llm.Manager, providerID, prompt string, streaming bool) error {
	if streaming {
		s, err := manager.GenerateStream(ctx, providerID, prompt, "")
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck // Close error is secondary to stream error
		for s.Next() {
			fmt.Print(s.Text())
		}
		fmt.Println()
		return s.Err()
	}

	resp, err := manager.GenerateText(ctx, providerID, prompt, "")
	if err != nil {
		return err
	}
	fmt.Println(resp.Text)
	return nil
}

func runSummarize(ctx context.Context, manager *llm.Manager, providerID, path string) error {
	src, err := os.ReadFile(path) //#nosec 304 -- user-specified input file
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, c := range chunk.Extract(path, string(src)) {
		resp, err := manager.Summarize(ctx, providerID, &llm.SummarizeRequest{
			Content: c.Content,
			Style:   llm.StyleTechnical,
			Context: fmt.Sprintf("%s %s from %s (lines %d-%d)", c.Kind, c.Name, path, c.StartLine, c.EndLine),
		})
		if err != nil {
			return fmt.Errorf("failed to summarize %s: %w", c.Name, err)
		}
		fmt.Printf("## %s (%s, lines %d-%d)\n\n%s\n\n", c.Name, c.Kind, c.StartLine, c.EndLine, resp.Text)
	}
	return nil
}

func runUsage(ctx context.Context, store *usage.Store) error {
	totals, err := store.TotalsByProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to query usage totals: %w", err)
	}
	if len(totals) == 0 {
		fmt.Println("no usage recorded")
		return nil
	}
	fmt.Printf("%-12s %12s %8s %10s\n", "provider", "tokens", "calls", "cost")
	for _, t := range totals {
		fmt.Printf("%-12s %12d %8d %10.4f\n", t.Provider, t.TotalTokens, t.Calls, t.Cost)
	}
	return nil
}
