// Package main provides the entry point for the trivia API admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"triviaapi/cmd/adm/commands"
	"triviaapi/internal/config"
	"triviaapi/internal/observability"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry export for the admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(cfg, "trivia-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Shutdown(ctx) }()

	rt := commands.NewRuntime(cfg, logger)
	defer rt.Close(ctx)

	rootCmd := newRootCommand(rt)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// newRootCommand assembles the command tree
func newRootCommand(rt *commands.Runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Trivia API Administration Tool",
		Long: `Trivia API Administration Tool

A CLI tool for administering the trivia API.
Provides commands for schema migrations, seed data, question management and health checks.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.DatabaseCommands(rt))
	rootCmd.AddCommand(commands.QuestionCommands(rt))
	rootCmd.AddCommand(commands.HealthCommand(rt))

	return rootCmd
}
