package dynamic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/ai"
	"github.com/webrunner/engine/events"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/step"
	"github.com/webrunner/engine/strategy"
)

// succeedingStepExecutor always marks the step successful and returns a
// scripted result, recording every action kind it was asked to run.
type succeedingStepExecutor struct {
	calls   []action.Kind
	results []execresult.Result // optional per-call override, by index
}

func (s *succeedingStepExecutor) Execute(ctx context.Context, st *step.Step, criteria strategy.SelectionCriteria, onRetry func(int), onFallback func(step.FallbackEvent)) execresult.Result {
	st.MarkRunning()
	idx := len(s.calls)
	s.calls = append(s.calls, st.Action.Kind())

	result := execresult.Success(nil, nil)
	if idx < len(s.results) {
		result = s.results[idx]
	}
	st.MarkTerminal(step.StatusSuccess, &result, nil)
	return result
}

func idSeq() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + string(rune('a'+n))
	}
}

func TestExecuteWithFeedbackStopsWhenGoalAchievedImmediately(t *testing.T) {
	stepExec := &succeedingStepExecutor{}
	oracle := &ai.ScriptedOracle{
		DecideFn: func(ctx context.Context, snap map[string]interface{}) (ai.Decision, error) {
			return ai.Decision{GoalAchieved: true, Reasoning: "nothing to do"}, nil
		},
	}
	bus := events.NewBus()
	var seen []events.Type
	bus.SubscribeAny(func(e events.Event) { seen = append(seen, e.Type) })

	exec := NewExecutor(stepExec, oracle, nil, bus, idSeq())
	dctx := NewContext("check homepage", DefaultOptions())

	result := exec.ExecuteWithFeedback(context.Background(), "task-1", dctx)

	assert.True(t, result.Success)
	assert.Empty(t, stepExec.calls)
	assert.Equal(t, []events.Type{events.TaskStarted, events.TaskCompleted}, seen)
}

func TestExecuteWithFeedbackRunsActionsUntilGoalAchieved(t *testing.T) {
	stepExec := &succeedingStepExecutor{}
	calls := 0
	oracle := &ai.ScriptedOracle{
		DecideFn: func(ctx context.Context, snap map[string]interface{}) (ai.Decision, error) {
			calls++
			if calls <= 2 {
				return ai.Decision{NextAction: &ai.NextAction{
					Type:   action.Navigate,
					Params: map[string]interface{}{"url": "https://example.com/p" + string(rune('0'+calls))},
				}}, nil
			}
			return ai.Decision{GoalAchieved: true, Reasoning: "collected enough"}, nil
		},
	}

	exec := NewExecutor(stepExec, oracle, nil, nil, idSeq())
	dctx := NewContext("collect prices", DefaultOptions())

	result := exec.ExecuteWithFeedback(context.Background(), "task-2", dctx)

	assert.True(t, result.Success)
	assert.Equal(t, 2, dctx.IterationCount)
	assert.Len(t, stepExec.calls, 2)
	for _, k := range stepExec.calls {
		assert.Equal(t, action.Navigate, k)
	}
}

func TestExecuteWithFeedbackDetectsCycleAndFails(t *testing.T) {
	stepExec := &succeedingStepExecutor{}
	oracle := &ai.ScriptedOracle{
		DecideFn: func(ctx context.Context, snap map[string]interface{}) (ai.Decision, error) {
			return ai.Decision{NextAction: &ai.NextAction{
				Type:   action.Navigate,
				Params: map[string]interface{}{"url": "https://x/page"},
			}}, nil
		},
	}
	bus := events.NewBus()
	var failed events.Event
	bus.Subscribe(events.TaskFailed, func(e events.Event) { failed = e })

	opts := DefaultOptions()
	opts.CycleThreshold = 3
	exec := NewExecutor(stepExec, oracle, nil, bus, idSeq())
	dctx := NewContext("collect top 3 product prices", opts)

	result := exec.ExecuteWithFeedback(context.Background(), "task-3", dctx)

	require.False(t, result.Success)
	assert.Equal(t, 3, dctx.IterationCount)
	assert.Contains(t, dctx.FailureReason, "https://x/page")
	assert.Equal(t, events.TaskFailed, failed.Type)
}

func TestExecuteWithFeedbackStopsAtMaxIterations(t *testing.T) {
	stepExec := &succeedingStepExecutor{}
	n := 0
	oracle := &ai.ScriptedOracle{
		DecideFn: func(ctx context.Context, snap map[string]interface{}) (ai.Decision, error) {
			n++
			return ai.Decision{NextAction: &ai.NextAction{
				Type:   action.Navigate,
				Params: map[string]interface{}{"url": "https://x/page" + string(rune('0'+n))},
			}}, nil
		},
	}
	opts := DefaultOptions()
	opts.MaxIterations = 2
	opts.CycleThreshold = 100 // never trips, isolating the iteration cap
	exec := NewExecutor(stepExec, oracle, nil, nil, idSeq())
	dctx := NewContext("goal", opts)

	result := exec.ExecuteWithFeedback(context.Background(), "task-4", dctx)

	require.False(t, result.Success)
	assert.Equal(t, 2, dctx.IterationCount)
	assert.Contains(t, result.Summary, "2 iterations")
}

func TestExecuteWithFeedbackStopsOnTimeout(t *testing.T) {
	stepExec := &succeedingStepExecutor{}
	oracle := &ai.ScriptedOracle{
		DecideFn: func(ctx context.Context, snap map[string]interface{}) (ai.Decision, error) {
			return ai.Decision{NextAction: &ai.NextAction{
				Type:   action.Navigate,
				Params: map[string]interface{}{"url": "https://x/page"},
			}}, nil
		},
	}
	opts := DefaultOptions()
	opts.Timeout = 1 * time.Nanosecond
	opts.CycleThreshold = 100
	exec := NewExecutor(stepExec, oracle, nil, nil, idSeq())
	dctx := NewContext("goal", opts)
	time.Sleep(time.Millisecond)

	result := exec.ExecuteWithFeedback(context.Background(), "task-5", dctx)

	require.False(t, result.Success)
	assert.Equal(t, "timeout", result.FailureReason)
}

func TestExecuteWithFeedbackCollectsDataBySelector(t *testing.T) {
	stepExec := &succeedingStepExecutor{
		results: []execresult.Result{
			execresult.Success(map[string]interface{}{"#price": "9.99"}, nil),
		},
	}
	calls := 0
	oracle := &ai.ScriptedOracle{
		DecideFn: func(ctx context.Context, snap map[string]interface{}) (ai.Decision, error) {
			calls++
			if calls == 1 {
				return ai.Decision{
					NextAction:    &ai.NextAction{Type: action.ExtractText, Params: map[string]interface{}{"selector": "#price"}},
					DataToExtract: map[string]string{"price": "#price"},
				}, nil
			}
			return ai.Decision{GoalAchieved: true}, nil
		},
	}
	exec := NewExecutor(stepExec, oracle, nil, nil, idSeq())
	dctx := NewContext("get price", DefaultOptions())

	result := exec.ExecuteWithFeedback(context.Background(), "task-6", dctx)

	require.True(t, result.Success)
	assert.Equal(t, "9.99", result.CollectedData["price"])
}

func TestExecuteWithFeedbackSurfacesOracleError(t *testing.T) {
	stepExec := &succeedingStepExecutor{}
	oracle := &ai.ScriptedOracle{
		DecideFn: func(ctx context.Context, snap map[string]interface{}) (ai.Decision, error) {
			return ai.Decision{}, assertErr
		},
	}
	exec := NewExecutor(stepExec, oracle, nil, nil, idSeq())
	dctx := NewContext("goal", DefaultOptions())

	result := exec.ExecuteWithFeedback(context.Background(), "task-7", dctx)

	require.False(t, result.Success)
	assert.Contains(t, dctx.FailureReason, "oracle error")
}

var assertErr = errOracleDown{}

type errOracleDown struct{}

func (errOracleDown) Error() string { return "oracle unreachable" }
