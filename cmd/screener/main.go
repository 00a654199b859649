// Package main provides the entry point for the candidate screener CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Batch candidate screening against a job requisition",
	Long:  "Screener extracts structured candidate profiles from raw documents, scores each candidate against a job requisition, and bundles reviewer-ready reports with an explainable match breakdown.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
