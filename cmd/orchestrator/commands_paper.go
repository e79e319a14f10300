package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/walterfan/agentcore/internal/config"
	"github.com/walterfan/agentcore/internal/hooks"
	"github.com/walterfan/agentcore/workflow"
)

func buildPaperCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paper <research question>",
		Short: "Run one research question through the medical paper writing workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaper(cmd, args[0])
		},
	}
	return cmd
}

func runPaper(cmd *cobra.Command, researchQuestion string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := buildModelClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build model client: %w", err)
	}
	st, err := buildStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	wfCfg := workflow.Config{
		Client:                 client,
		Store:                  st,
		Sink:                   buildSink(cfg),
		Bus:                    hooks.NewBus(),
		StepBudget:             cfg.ExecutorStepBudget,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		CallTimeout:            cfg.NodeCallTimeout,
		NodeStepBudget:         cfg.NodeStepBudget,
		MinReferences:          cfg.MinReferences,
		MaxRevisions:           cfg.MaxRevisions,
	}

	executor, err := workflow.BuildPaper(wfCfg)
	if err != nil {
		return fmt.Errorf("build paper workflow: %w", err)
	}

	task, s := workflow.NewPaperTask(wfCfg, "paper", researchQuestion)
	final, err := executor.Run(ctx, task, s)
	printTranscript(task, final)

	if manuscript, ok := final.Artifacts["manuscript"]; ok {
		b, _ := json.MarshalIndent(manuscript, "", "  ")
		fmt.Printf("manuscript:\n%s\n", b)
	}
	if report, ok := final.Artifacts["compliance_report"]; ok {
		b, _ := json.MarshalIndent(report, "", "  ")
		fmt.Printf("compliance_report:\n%s\n", b)
	}
	return err
}
