// Package step implements the Step model, the Action Executor, and the
// Step Executor's retry/fallback loop.
package step

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/execresult"
)

// Status is a Step's closed status set. Transitions are monotone except
// Pending→Running, which is the only entry point; Success, Failed and
// Skipped are terminal.
type Status string

const (
	StatusPending Status = "Pending"
	StatusRunning Status = "Running"
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
	StatusSkipped Status = "Skipped"
)

var legalTransitions = map[Status]map[Status]bool{
	StatusPending: {StatusRunning: true},
	StatusRunning: {StatusSuccess: true, StatusFailed: true, StatusSkipped: true},
}

func (s Status) canTransitionTo(next Status) bool {
	allowed, ok := legalTransitions[s]
	return ok && allowed[next]
}

func (s Status) terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// ExpectedField declares one field a step's result data should contain.
// Missing fields or type mismatches are non-fatal: they're recorded as
// warnings in metadata rather than converted into a failure (spec §4.5).
type ExpectedField struct {
	Field string `json:"field"`
	Type  string `json:"type"`
}

// ConditionOp is the closed set of comparison operators a FailureCondition
// may use against a field of the result data.
type ConditionOp string

const (
	OpEquals    ConditionOp = "equals"
	OpNotEquals ConditionOp = "notEquals"
	OpContains  ConditionOp = "contains"
	OpExists    ConditionOp = "exists"
	OpNotExists ConditionOp = "notExists"
	OpGreater   ConditionOp = ">"
	OpLess      ConditionOp = "<"
)

// FailureCondition, when true against a step's result data, converts what
// would otherwise be a Success into a Failure.
type FailureCondition struct {
	Field string      `json:"field"`
	Op    ConditionOp `json:"op"`
	Value interface{} `json:"value"`
}

// Metadata accumulated as the step runs: timings, retry count, and which
// provider ultimately produced the terminal result.
type Metadata struct {
	StartedAt    time.Time     `json:"startedAt"`
	CompletedAt  time.Time     `json:"completedAt,omitempty"`
	Duration     time.Duration `json:"durationNs,omitempty"`
	RetryCount   int           `json:"retryCount"`
	ProviderUsed string        `json:"providerUsed,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Step wraps exactly one Action plus the bookkeeping the Step Executor
// needs to run, retry, and validate it.
type Step struct {
	ID                string
	Action            action.Action
	Description       string
	ExpectedOutput    []ExpectedField
	FailureConditions []FailureCondition
	Context           map[string]interface{}

	Status   Status
	Result   *execresult.Result
	Error    error
	Metadata Metadata
}

// wireStep is the JSON wire shape for a Step (spec §6.4): error is
// flattened to a plain string since error doesn't round-trip through JSON
// on its own.
type wireStep struct {
	ID                string                 `json:"id"`
	Action            action.Action          `json:"action"`
	Description       string                 `json:"description,omitempty"`
	ExpectedOutput    []ExpectedField        `json:"expectedOutput,omitempty"`
	FailureConditions []FailureCondition     `json:"failureConditions,omitempty"`
	Context           map[string]interface{} `json:"context,omitempty"`
	Status            Status                 `json:"status"`
	Result            *execresult.Result     `json:"result,omitempty"`
	Error             string                 `json:"error,omitempty"`
	Metadata          Metadata               `json:"metadata"`
}

// MarshalJSON encodes s, flattening Error to a string.
func (s *Step) MarshalJSON() ([]byte, error) {
	w := wireStep{
		ID:                s.ID,
		Action:            s.Action,
		Description:       s.Description,
		ExpectedOutput:    s.ExpectedOutput,
		FailureConditions: s.FailureConditions,
		Context:           s.Context,
		Status:            s.Status,
		Result:            s.Result,
		Metadata:          s.Metadata,
	}
	if s.Error != nil {
		w.Error = s.Error.Error()
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes s, reconstructing Error as a plain error from the
// wire string.
func (s *Step) UnmarshalJSON(data []byte) error {
	var w wireStep
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Step{
		ID:                w.ID,
		Action:            w.Action,
		Description:       w.Description,
		ExpectedOutput:    w.ExpectedOutput,
		FailureConditions: w.FailureConditions,
		Context:           w.Context,
		Status:            w.Status,
		Result:            w.Result,
		Metadata:          w.Metadata,
	}
	if w.Error != "" {
		s.Error = errors.New(w.Error)
	}
	return nil
}

// NewStep constructs a Pending step wrapping a.
func NewStep(id string, a action.Action, description string) *Step {
	return &Step{
		ID:          id,
		Action:      a,
		Description: description,
		Status:      StatusPending,
		Context:     make(map[string]interface{}),
	}
}

// transition enforces the Status FSM; it panics on an illegal transition
// since that indicates an executor bug, not a runtime condition callers
// should handle.
func (s *Step) transition(next Status) {
	if !s.Status.canTransitionTo(next) {
		panic("step: illegal status transition " + string(s.Status) + " -> " + string(next))
	}
	s.Status = next
}

// MarkRunning transitions Pending -> Running and stamps StartedAt.
func (s *Step) MarkRunning() {
	s.transition(StatusRunning)
	s.Metadata.StartedAt = time.Now()
}

// MarkTerminal transitions Running -> one of {Success, Failed, Skipped},
// stamps CompletedAt/Duration, and records exactly one of result/error per
// the spec §8 invariant ("exactly one of result/error is non-null").
func (s *Step) MarkTerminal(status Status, result *execresult.Result, err error) {
	s.transition(status)
	s.Metadata.CompletedAt = time.Now()
	s.Metadata.Duration = s.Metadata.CompletedAt.Sub(s.Metadata.StartedAt)
	s.Result = result
	s.Error = err
}

// IsTerminal reports whether the step is in a terminal status.
func (s *Step) IsTerminal() bool {
	return s.Status.terminal()
}

// ResetForInput reverts a step that just completed with a human-input
// request (detected by the Task Executor via the result's side-channel,
// spec §4.6) back to Pending so it is re-executed once the Task resumes
// with the provided input. This is the one sanctioned resurrection of a
// terminal step; it exists only for this HITL path.
func (s *Step) ResetForInput() {
	s.Status = StatusPending
	s.Result = nil
	s.Error = nil
}
