// Package main provides the entry point for the DaXtra parser service and its CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "parser_service",
	Short: "DaXtra CVX parsing service",
	Long:  "Parses resumes and job descriptions through DaXtra CVX, either as an HTTP service or from the command line.",
	// Errors are reported once by main.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional JSON config file; environment variables take precedence")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
