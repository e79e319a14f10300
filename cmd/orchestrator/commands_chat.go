package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/walterfan/agentcore/internal/config"
	"github.com/walterfan/agentcore/internal/hooks"
	"github.com/walterfan/agentcore/internal/state"
	"github.com/walterfan/agentcore/workflow"
)

func buildChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Run one message through the chat (secretary) workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, args[0])
		},
	}
	return cmd
}

func runChat(cmd *cobra.Command, message string) error {
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

	chat, err := workflow.BuildChat(workflow.Config{
		Client:                 client,
		Store:                  st,
		Sink:                   buildSink(cfg),
		Bus:                    hooks.NewBus(),
		StepBudget:             cfg.ExecutorStepBudget,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		CallTimeout:            cfg.NodeCallTimeout,
		NodeStepBudget:         cfg.NodeStepBudget,
	})
	if err != nil {
		return fmt.Errorf("build chat workflow: %w", err)
	}

	task, s := workflow.NewTask("chat", message)
	final, err := chat.Executor.Run(ctx, task, s)
	printTranscript(task, final)
	return err
}

func printTranscript(task *state.Task, s *state.State) {
	fmt.Printf("task %s: %s\n", task.ID, task.Status)
	for _, m := range s.Messages {
		switch m.Role {
		case state.RoleAssistant:
			if m.Content != "" {
				fmt.Printf("assistant: %s\n", m.Content)
			}
		case state.RoleUser:
			fmt.Printf("user: %s\n", m.Content)
		}
	}
	for _, e := range s.Errors {
		fmt.Printf("error [%s/%s]: %s\n", e.Step, e.Kind, e.Message)
	}
}
