package main

import (
	"fmt"
	"os"

	"github.com/daytrack/daytrack/cmd/daytrackctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "daytrackctl",
		Short: "Admin tool for the daytrack API",
		Long:  "CLI tool for running rollups, managing habit templates and inspecting daily summaries",
	}

	rootCmd.AddCommand(commands.NewPopulateCmd())
	rootCmd.AddCommand(commands.NewTemplatesCmd())
	rootCmd.AddCommand(commands.NewSummaryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
