// Command orchestrator is the CLI entry point for the multi-agent
// orchestration core: it loads Settings (internal/config), wires one of
// the two workflows (workflow.BuildChat / workflow.BuildPaper) against
// a configured LLM provider, store, and telemetry sink, and drives a
// single task to completion. Its flag-parse -> log.Context ->
// service-wiring shape follows cmd/assistant's main.go, adapted from
// goa's generated-service composition to this module's own executor
// composition.
package main

import (
	"context"
	"fmt"
	"os"

	"goa.design/clue/log"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "orchestrator",
		Short: "Drive the chat or paper-writing multi-agent workflow to completion",
		Long: `orchestrator runs one task of either the chat (secretary) workflow or the
medical paper writing workflow through to a terminal state, printing the
resulting transcript and artifacts.

Configuration is read from the environment (see internal/config.Settings),
optionally via a .env file in the working directory or a parent of it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format := log.FormatJSON
			if log.IsTerminal() {
				format = log.FormatTerminal
			}
			ctx := log.Context(context.Background(), log.WithFormat(format))
			if debug {
				ctx = log.Context(ctx, log.WithDebug())
			}
			cmd.SetContext(ctx)
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(buildChatCmd(), buildPaperCmd())
	return cmd
}
