package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	webrunner "github.com/webrunner/engine"
	"github.com/webrunner/engine/ai"
)

func newGoalCmd(root *rootFlags) *cobra.Command {
	var (
		goal    string
		apiKey  string
		baseURL string
		model   string
	)

	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Pursue a natural-language goal via the Dynamic (AI-feedback) Executor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = os.Getenv("OPENAI_API_KEY")
			}
			return runGoal(root, goal, apiKey, baseURL, model)
		},
	}
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "natural-language goal for the AI oracle to pursue")
	cmd.MarkFlagRequired("goal") //nolint:errcheck
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI-compatible API key (defaults to $OPENAI_API_KEY)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&model, "model", "gpt-4o-mini", "model name to request")

	return cmd
}

func runGoal(root *rootFlags, goal, apiKey, baseURL, model string) error {
	if apiKey == "" {
		return fmt.Errorf("webrunnerctl: goal requires an API key (--api-key or $OPENAI_API_KEY)")
	}

	client := ai.NewOpenAIClient(apiKey, baseURL, 60*time.Second)
	oracle := ai.NewGomindOracle(client, ai.NewConfig(ai.WithModel(model), ai.WithTemperature(0.2), ai.WithMaxTokens(1024)))

	e, err := buildEngine(root, webrunner.WithOracle(oracle))
	if err != nil {
		return err
	}
	unsubscribe := attachEventPrinter(e.Bus)
	defer unsubscribe()

	result, err := e.ExecuteGoal(context.Background(), "goal-1", goal)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("goal not achieved: %s", result.FailureReason)
	}
	fmt.Printf("goal achieved after %d iteration(s): %s\n", result.ContextSnapshot.IterationCount, result.Summary)
	return nil
}
