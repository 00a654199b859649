package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/extraction"
	"github.com/jonathan/candidate-screener/internal/feedback"
	"github.com/jonathan/candidate-screener/internal/fetch"
	"github.com/jonathan/candidate-screener/internal/ingestion"
	"github.com/jonathan/candidate-screener/internal/llm"
	"github.com/jonathan/candidate-screener/internal/logger"
	"github.com/jonathan/candidate-screener/internal/naming"
	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/rendering"
	"github.com/jonathan/candidate-screener/internal/types"
	"github.com/jonathan/candidate-screener/internal/workspace"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the screening pipeline over one or more candidate documents",
	Long: `Screens candidate documents against a job requisition: extraction -> validation -> matching -> feedback -> rendering -> bundling.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runScreeningCmd,
}

var (
	runConfigPath     string
	runRequisition    string
	runRequisitionURL string
	runCandidates     []string
	runMode           string
	runOutputDir      string
	runConcurrency    int
	runTimeout        int
	runArchive        bool
	runUseBrowser     bool
	runAPIKey         string
	runDatabaseURL    string
	runVerbose        bool
	runJSONLogs       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runRequisition, "requisition", "r", "", "Path to job requisition text file (mutually exclusive with --requisition-url)")
	runCommand.Flags().StringVar(&runRequisitionURL, "requisition-url", "", "URL to fetch the job requisition from (mutually exclusive with --requisition)")
	runCommand.Flags().StringSliceVarP(&runCandidates, "candidate", "c", nil, "Path to a candidate document (repeatable)")
	runCommand.Flags().StringVar(&runMode, "mode", "", "Output layout: single or batch (default: inferred from candidate count)")
	runCommand.Flags().StringVarP(&runOutputDir, "output", "o", "", "Base directory for run output (default: current directory)")
	runCommand.Flags().IntVar(&runConcurrency, "concurrency", 0, "Candidate worker pool size")
	runCommand.Flags().IntVar(&runTimeout, "timeout", 0, "Per-call timeout in seconds")
	runCommand.Flags().BoolVar(&runArchive, "archive", false, "Zip the run folder when finished")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA requisition pages (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")
	runCommand.Flags().BoolVar(&runJSONLogs, "json-logs", false, "Emit JSON-encoded logs")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runScreeningCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Requisition == "" && cfg.RequisitionURL == "" {
		return fmt.Errorf("either --requisition or --requisition-url must be provided (via flag or config)")
	}
	if cfg.Requisition != "" && cfg.RequisitionURL != "" {
		return fmt.Errorf("--requisition and --requisition-url are mutually exclusive; provide only one")
	}
	if len(cfg.Candidates) == 0 {
		return fmt.Errorf("at least one --candidate is required (via flag or config)")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	log, err := logger.New(cfg.JSONLogs, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	requisitionRaw, err := loadRequisition(ctx, cfg, log)
	if err != nil {
		return err
	}

	sources, err := loadCandidateSources(cfg.Candidates)
	if err != nil {
		return err
	}

	orch, ws, cleanup, err := buildOrchestrator(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := orch.Run(ctx, requisitionRaw, sources)
	if err != nil {
		return fmt.Errorf("screening run failed: %w", err)
	}

	printSummary(result)

	if cfg.Archive {
		archivePath, err := ws.ArchiveToFile(result.RunRoot)
		if err != nil {
			return fmt.Errorf("failed to archive run folder: %w", err)
		}
		fmt.Printf("Archive: %s\n", filepath.Join(ws.BaseDir(), archivePath))
	}

	if result.SucceededCount == 0 {
		return fmt.Errorf("all %d candidates failed", result.FailedCount)
	}
	return nil
}

// loadRunConfig loads the optional config file and layers explicitly set
// CLI flags on top.
func loadRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loaded, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	// Only override when the flag was explicitly set
	if cmd.Flags().Changed("requisition") {
		cfg.Requisition = runRequisition
	}
	if cmd.Flags().Changed("requisition-url") {
		cfg.RequisitionURL = runRequisitionURL
	}
	if cmd.Flags().Changed("candidate") {
		cfg.Candidates = runCandidates
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = runMode
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = runConcurrency
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = runTimeout
	}
	if cmd.Flags().Changed("archive") {
		cfg.Archive = runArchive
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs = runJSONLogs
	}

	cfg = cfg.MergeWithDefaults(config.Config{OutputDir: "."})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadRequisition reads the requisition document from a file or fetches it
// from a URL, falling back to a headless browser when the page looks
// client-rendered.
func loadRequisition(ctx context.Context, cfg config.Config, log *zap.Logger) ([]byte, error) {
	if cfg.Requisition != "" {
		data, err := os.ReadFile(cfg.Requisition)
		if err != nil {
			return nil, fmt.Errorf("failed to read requisition file: %w", err)
		}
		return data, nil
	}

	log.Info("fetching requisition", zap.String("url", cfg.RequisitionURL))
	result, err := fetch.URL(ctx, cfg.RequisitionURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requisition: %w", err)
	}

	text, err := ingestion.ExtractMainText(result.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to extract requisition text: %w", err)
	}

	if cfg.UseBrowser && fetch.ShouldUseBrowser(text) {
		log.Info("content too short; retrying with headless browser")
		html, err := fetch.WithBrowser(ctx, cfg.RequisitionURL, 60*time.Second)
		if err != nil {
			return nil, fmt.Errorf("browser fetch failed: %w", err)
		}
		text, err = ingestion.ExtractMainText(html)
		if err != nil {
			return nil, fmt.Errorf("failed to extract requisition text: %w", err)
		}
	}

	return []byte(text), nil
}

// loadCandidateSources reads each candidate document; the file's base name
// becomes the candidate's output name.
func loadCandidateSources(paths []string) ([]pipeline.CandidateSource, error) {
	sources := make([]pipeline.CandidateSource, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read candidate file %s: %w", p, err)
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		sources = append(sources, pipeline.CandidateSource{Name: name, Raw: data})
	}
	return sources, nil
}

// buildOrchestrator wires the Gemini-backed collaborators, local workspace,
// and optional database into an orchestrator. The returned cleanup closes
// the LLM client and database connection.
func buildOrchestrator(ctx context.Context, cfg config.Config, log *zap.Logger) (*pipeline.Orchestrator, *workspace.Local, func(), error) {
	client, err := llm.NewGeminiClient(ctx, nil, cfg.APIKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	renderer, err := rendering.NewHTMLRenderer()
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	ws, err := workspace.NewLocal(cfg.OutputDir)
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	var store pipeline.ArtifactStore
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn("database unavailable; continuing without persistence", zap.Error(err))
		} else {
			store = database
		}
	}

	deps := pipeline.Deps{
		Extractor: extraction.NewGeminiExtractor(client),
		Feedback:  feedback.NewGeminiGenerator(client),
		Renderer:  renderer,
		Workspace: ws,
		Store:     store,
		Logger:    log,
	}
	opts := pipeline.Options{
		Mode:        naming.Mode(cfg.Mode),
		Concurrency: cfg.Concurrency,
		CallTimeout: time.Duration(cfg.Timeout) * time.Second,
	}

	cleanup := func() {
		_ = client.Close()
		if database != nil {
			database.Close()
		}
	}
	return pipeline.New(deps, opts), ws, cleanup, nil
}

// printSummary writes the per-candidate outcome table to stdout.
func printSummary(result *types.BatchResult) {
	fmt.Printf("\nRun %s (%s)\n", result.RunID, result.RunRoot)
	fmt.Printf("Requisition: %s\n\n", result.Requisition.Title)
	for _, res := range result.CandidateResults {
		switch res.Status {
		case types.StatusFailed:
			fmt.Printf("  %-30s FAILED at %s\n", res.SourceName, res.FailedStage)
		case types.StatusPartiallyCompleted:
			fmt.Printf("  %-30s %.0f/100 (no feedback)\n", res.SourceName, res.Match.OverallScore)
		default:
			fmt.Printf("  %-30s %.0f/100\n", res.SourceName, res.Match.OverallScore)
		}
	}
	fmt.Printf("\n%d succeeded, %d failed\n", result.SucceededCount, result.FailedCount)
}
