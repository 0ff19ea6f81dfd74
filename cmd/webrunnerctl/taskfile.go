package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/step"
)

// taskFile is the on-disk YAML shape for a static plan: a goal plus an
// ordered list of steps, each naming an action.Kind and its parameters.
type taskFile struct {
	Goal  string     `yaml:"goal"`
	Steps []stepFile `yaml:"steps"`
}

type stepFile struct {
	Description string                 `yaml:"description"`
	Kind        action.Kind            `yaml:"kind"`
	Params      map[string]interface{} `yaml:"params"`
}

// loadTaskFile reads and parses path into its steps and rejects a file that
// declares no steps. Action params are not checked here; buildSteps
// validates each one with action.NewAction before any execution begins.
func loadTaskFile(path string) (*taskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	var tf taskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if len(tf.Steps) == 0 {
		return nil, fmt.Errorf("task file %s declares no steps", path)
	}
	return &tf, nil
}

// buildSteps converts a taskFile's declarations into *step.Step values,
// generating a step ID per index since the file format doesn't carry one.
func buildSteps(tf *taskFile) ([]*step.Step, error) {
	steps := make([]*step.Step, 0, len(tf.Steps))
	for i, sf := range tf.Steps {
		act, err := action.NewAction(sf.Kind, sf.Params)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step.NewStep(fmt.Sprintf("step-%d", i+1), act, sf.Description))
	}
	return steps, nil
}
