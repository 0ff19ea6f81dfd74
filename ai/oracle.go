// Package ai defines the AI Oracle interface the Dynamic Executor consumes
// (GeneratePlan has no caller inside the engine), plus a deterministic scripted implementation for tests
// and an adapter onto the teacher's AIClient/AIConfig shape for wiring a
// real LLM backend.
package ai

import (
	"context"

	"github.com/webrunner/engine/action"
)

// PlanStep is one element of a GeneratePlan result, pre-validation.
type PlanStep struct {
	Kind              action.Kind
	Params            map[string]interface{}
	Description       string
	ExpectedOutput    []ExpectedField
	FailureConditions []FailureCondition
}

// ExpectedField mirrors step.ExpectedField without importing package step,
// which would create an import cycle (step executes Actions the oracle
// only describes).
type ExpectedField struct {
	Field string
	Type  string
}

// FailureCondition mirrors step.FailureCondition for the same reason.
type FailureCondition struct {
	Field string
	Op    string
	Value interface{}
}

// Plan is the result of GeneratePlan (spec §6.2).
type Plan struct {
	Steps      []PlanStep
	Confidence float64
	Reasoning  string
}

// SelectorSuggestion is one candidate selector returned by SuggestSelectors.
type SelectorSuggestion struct {
	Purpose    string
	Selector   string
	Confidence float64
}

// SelectorSuggestions is the result of SuggestSelectors.
type SelectorSuggestions struct {
	Selectors []SelectorSuggestion
	Reasoning string
}

// NextAction is the dynamic executor's next step, or nil for NONE (spec
// §4.7 "decision.nextAction.type == NONE").
type NextAction struct {
	Type        action.Kind
	Params      map[string]interface{}
	Description string
}

// Decision is the result of DecideNextAction (spec §6.2/§4.7).
type Decision struct {
	GoalAchieved  bool
	Reasoning     string
	NextAction    *NextAction
	DataToExtract map[string]string // key -> selector
}

// RecoverySuggestion is one candidate remediation from RecoverFromError.
type RecoverySuggestion struct {
	Action    action.Kind
	Params    map[string]interface{}
	Reasoning string
}

// Recovery is the result of RecoverFromError.
type Recovery struct {
	Recoverable bool
	Suggestions []RecoverySuggestion
}

// Oracle is the consumed AI collaborator (spec §6.2). All three core
// methods return structured records, never prose, so callers never need to
// parse natural language.
type Oracle interface {
	GeneratePlan(ctx context.Context, goal string, contextData map[string]interface{}) (Plan, error)
	SuggestSelectors(ctx context.Context, htmlOrSummary, intent string, contextData map[string]interface{}) (SelectorSuggestions, error)
	DecideNextAction(ctx context.Context, execCtxForAI map[string]interface{}) (Decision, error)
}

// ErrorRecoverer is an optional capability an Oracle may additionally
// implement; the step executor consults it only when present.
type ErrorRecoverer interface {
	RecoverFromError(ctx context.Context, err error, contextData map[string]interface{}) (Recovery, error)
}
