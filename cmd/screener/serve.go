package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/logger"
	"github.com/jonathan/candidate-screener/internal/server"
)

var (
	serveConfigPath string
	serveAddr       string
	serveOutputDir  string
	serveAPIKey     string
	serveJWTSecret  string
	serveVerbose    bool
	serveJSONLogs   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running screening batches.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringVarP(&serveOutputDir, "output", "o", "", "Base directory for run output (default: current directory)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	serveCmd.Flags().StringVar(&serveJWTSecret, "jwt-secret", "", "Secret for bearer-token auth (optional, defaults to JWT_SECRET env var; empty disables auth)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")
	serveCmd.Flags().BoolVar(&serveJSONLogs, "json-logs", false, "Emit JSON-encoded logs")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("addr") || cfg.Addr == "" {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = serveOutputDir
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = serveAPIKey
	}
	if cmd.Flags().Changed("jwt-secret") {
		cfg.JWTSecret = serveJWTSecret
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = serveVerbose
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs = serveJSONLogs
	}
	cfg = cfg.MergeWithDefaults(config.Config{OutputDir: "."})

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	log, err := logger.New(cfg.JSONLogs, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	orch, ws, cleanup, err := buildOrchestrator(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := server.New(server.Config{
		Addr:        cfg.Addr,
		JWTSecret:   cfg.JWTSecret,
		DatabaseURL: cfg.DatabaseURL,
	}, orch, ws, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
