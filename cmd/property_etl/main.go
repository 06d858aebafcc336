// Package main provides the entry point for the property listing ETL CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "property_etl",
	Short: "Property listing ETL pipeline",
	Long:  "property_etl scrapes property listings from rumah123.com with adaptive rate limiting, cleans them, and loads them into PostgreSQL.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
