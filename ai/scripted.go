package ai

import "context"

// ScriptedOracle is a deterministic Oracle backed by caller-supplied
// scripts, used in tests and as the reference implementation (spec §6.2:
// "Ships a reference ai.ScriptedOracle"). A nil script for a method makes
// that method return its zero value with no error, except DecideNextAction,
// which returns a Decision with GoalAchieved set.
type ScriptedOracle struct {
	PlanFn      func(ctx context.Context, goal string, contextData map[string]interface{}) (Plan, error)
	SelectorsFn func(ctx context.Context, htmlOrSummary, intent string, contextData map[string]interface{}) (SelectorSuggestions, error)
	DecideFn    func(ctx context.Context, execCtxForAI map[string]interface{}) (Decision, error)
	RecoverFn   func(ctx context.Context, err error, contextData map[string]interface{}) (Recovery, error)
	DecideCalls int
}

// GeneratePlan delegates to PlanFn.
func (o *ScriptedOracle) GeneratePlan(ctx context.Context, goal string, contextData map[string]interface{}) (Plan, error) {
	if o.PlanFn == nil {
		return Plan{}, nil
	}
	return o.PlanFn(ctx, goal, contextData)
}

// SuggestSelectors delegates to SelectorsFn.
func (o *ScriptedOracle) SuggestSelectors(ctx context.Context, htmlOrSummary, intent string, contextData map[string]interface{}) (SelectorSuggestions, error) {
	if o.SelectorsFn == nil {
		return SelectorSuggestions{}, nil
	}
	return o.SelectorsFn(ctx, htmlOrSummary, intent, contextData)
}

// DecideNextAction delegates to DecideFn, tracking call count so tests can
// assert on iteration behavior (e.g. always-Navigate cycle scenarios).
func (o *ScriptedOracle) DecideNextAction(ctx context.Context, execCtxForAI map[string]interface{}) (Decision, error) {
	o.DecideCalls++
	if o.DecideFn == nil {
		return Decision{GoalAchieved: true}, nil
	}
	return o.DecideFn(ctx, execCtxForAI)
}

// RecoverFromError delegates to RecoverFn. ScriptedOracle always satisfies
// ErrorRecoverer; with RecoverFn nil it returns an empty Recovery.
func (o *ScriptedOracle) RecoverFromError(ctx context.Context, err error, contextData map[string]interface{}) (Recovery, error) {
	if o.RecoverFn == nil {
		return Recovery{}, nil
	}
	return o.RecoverFn(ctx, err, contextData)
}

var (
	_ Oracle         = (*ScriptedOracle)(nil)
	_ ErrorRecoverer = (*ScriptedOracle)(nil)
)
