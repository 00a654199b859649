// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Inputs
	Requisition    string   `json:"requisition,omitempty"`     // Path to job requisition text file
	RequisitionURL string   `json:"requisition_url,omitempty"` // URL to fetch the requisition from
	Candidates     []string `json:"candidates,omitempty"`      // Paths to candidate document files

	// Run behavior
	Mode        string `json:"mode,omitempty"`        // Output layout: "single" or "batch" (default: inferred)
	OutputDir   string `json:"output_dir,omitempty"`  // Base directory for run output
	Concurrency int    `json:"concurrency,omitempty"` // Candidate worker pool size
	Timeout     int    `json:"timeout,omitempty"`     // Per-call timeout in seconds
	Archive     bool   `json:"archive,omitempty"`     // Zip the run directory when finished
	UseBrowser  bool   `json:"use_browser,omitempty"` // Use headless browser for SPA requisition pages

	// Services
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Server
	Addr      string `json:"addr,omitempty"`       // Listen address for serve mode
	JWTSecret string `json:"jwt_secret,omitempty"` // Secret for bearer-token auth; empty disables auth

	// Logging
	Verbose  bool `json:"verbose,omitempty"`   // Print detailed debug information
	JSONLogs bool `json:"json_logs,omitempty"` // Emit JSON-encoded logs
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Required fields
// are not checked here; CLI flag validation handles those after merging.
func (c *Config) Validate() error {
	if c.Requisition != "" && c.RequisitionURL != "" {
		return fmt.Errorf("config error: 'requisition' and 'requisition_url' are mutually exclusive")
	}

	if c.Mode != "" && c.Mode != "single" && c.Mode != "batch" {
		return fmt.Errorf("config error: 'mode' must be \"single\" or \"batch\", got %q", c.Mode)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config error: 'timeout' must be non-negative")
	}

	if c.Requisition != "" {
		if _, err := os.Stat(c.Requisition); os.IsNotExist(err) {
			return fmt.Errorf("config error: requisition file not found: %s", c.Requisition)
		}
	}
	for _, p := range c.Candidates {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config error: candidate file not found: %s", p)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. This is used to apply config file values as defaults for
// CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Requisition == "" {
		result.Requisition = defaults.Requisition
	}
	if result.RequisitionURL == "" {
		result.RequisitionURL = defaults.RequisitionURL
	}
	if len(result.Candidates) == 0 {
		result.Candidates = defaults.Candidates
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}

	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}

	if !result.Archive {
		result.Archive = defaults.Archive
	}
	if !result.UseBrowser {
		result.UseBrowser = defaults.UseBrowser
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}
	if !result.JSONLogs {
		result.JSONLogs = defaults.JSONLogs
	}

	return result
}
