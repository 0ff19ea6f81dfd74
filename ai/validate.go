package ai

import (
	"fmt"

	"github.com/webrunner/engine/action"
)

// InvalidPlanError reports the first PlanStep a Plan failed validation on.
type InvalidPlanError struct {
	StepIndex int
	Err       error
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("ai: plan step %d invalid: %s", e.StepIndex, e.Err)
}

func (e *InvalidPlanError) Unwrap() error { return e.Err }

// ValidatePlan checks that every step's kind and params pass the action
// package's schema validation (spec §6.2: "Implementations must validate
// that kind is in the closed set... invalid plans are rejected before
// execution"). No engine package calls it; GeneratePlan implementations
// return plans without running it.
func ValidatePlan(p Plan) error {
	for i, s := range p.Steps {
		if _, err := action.NewAction(s.Kind, s.Params); err != nil {
			return &InvalidPlanError{StepIndex: i, Err: err}
		}
	}
	return nil
}
