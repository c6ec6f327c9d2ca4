package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jsonata",
		Short: "JSONata expression evaluator",
		Long: `jsonata evaluates JSONata query and transformation expressions
against JSON documents, from the command line or as an HTTP service.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(evalCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
