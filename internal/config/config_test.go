package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"requisition_url": "https://example.com/job",
		"candidates": ["a.txt", "b.txt"],
		"mode": "batch",
		"concurrency": 8,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.com/job", cfg.RequisitionURL)
	assert.Equal(t, []string{"a.txt", "b.txt"}, cfg.Candidates)
	assert.Equal(t, "batch", cfg.Mode)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_MutuallyExclusive(t *testing.T) {
	cfg := &Config{
		Requisition:    "req.txt",
		RequisitionURL: "https://example.com/job",
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidate_BadMode(t *testing.T) {
	cfg := &Config{Mode: "parallel"}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "'mode'")
}

func TestValidate_NegativeValues(t *testing.T) {
	assert.Error(t, (&Config{Concurrency: -1}).Validate())
	assert.Error(t, (&Config{Timeout: -5}).Validate())
}

func TestValidate_MissingFiles(t *testing.T) {
	cfg := &Config{Requisition: "/nonexistent/req.txt"}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requisition file not found")

	cfg = &Config{Candidates: []string{"/nonexistent/cand.txt"}}
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "candidate file not found")
}

func TestValidate_ExistingFiles(t *testing.T) {
	dir := t.TempDir()
	req := filepath.Join(dir, "req.txt")
	cand := filepath.Join(dir, "cand.txt")
	require.NoError(t, os.WriteFile(req, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(cand, []byte("x"), 0644))

	cfg := &Config{Requisition: req, Candidates: []string{cand}, Mode: "single"}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Requisition: "req.txt",
		Concurrency: 2,
	}

	merged := cfg.MergeWithDefaults(Config{
		Requisition: "default-req.txt",
		OutputDir:   "out",
		Concurrency: 4,
		Timeout:     120,
		Verbose:     true,
	})

	// Explicit values win; zero values take the default.
	assert.Equal(t, "req.txt", merged.Requisition)
	assert.Equal(t, 2, merged.Concurrency)
	assert.Equal(t, "out", merged.OutputDir)
	assert.Equal(t, 120, merged.Timeout)
	assert.True(t, merged.Verbose)
}
