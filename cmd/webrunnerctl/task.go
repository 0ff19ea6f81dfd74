package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTaskCmd(root *rootFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Run a static task definition (YAML: goal + steps) to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(root, file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to a task definition YAML file")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func runTask(root *rootFlags, file string) error {
	tf, err := loadTaskFile(file)
	if err != nil {
		return err
	}
	steps, err := buildSteps(tf)
	if err != nil {
		return err
	}

	e, err := buildEngine(root)
	if err != nil {
		return err
	}
	unsubscribe := attachEventPrinter(e.Bus)
	defer unsubscribe()

	tk := e.NewTask(tf.Goal, steps)
	result := e.ExecuteTask(context.Background(), tk)

	if !result.IsSuccess() {
		return fmt.Errorf("task finished with status %s: %v", tk.Status, tk.Error)
	}
	if tk.Result != nil {
		fmt.Printf("done: %s (completed %d/%d steps)\n", tk.Result.Summary, len(tk.Result.SuccessfulSteps), len(tf.Steps))
	}
	return nil
}
