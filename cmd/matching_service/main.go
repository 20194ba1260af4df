// Package main provides the entry point for the matching service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matching_service",
	Short: "Job matching and notification service",
	Long:  "Matching service scores job seekers against postings, serves ranked match listings, and dispatches recommendation and urgent-proximity notifications.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
