package dynamic

import (
	"context"
	"fmt"
	"time"

	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/ai"
	"github.com/webrunner/engine/events"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/step"
	"github.com/webrunner/engine/strategy"
)

// StepExecutor is the subset of step.Executor the dynamic loop drives, named
// here so tests can substitute a scripted fake (mirrors task.StepExecutor).
type StepExecutor interface {
	Execute(ctx context.Context, s *step.Step, criteria strategy.SelectionCriteria, onRetry func(int), onFallback func(step.FallbackEvent)) execresult.Result
}

// Result is ExecuteWithFeedback's outcome (spec §4.7).
type Result struct {
	Success         bool
	CollectedData   map[string]interface{}
	Summary         string
	FailureReason   string
	ContextSnapshot *Context
}

// Executor drives the Dynamic (AI-feedback) loop: after every action it
// consults an ai.Oracle for the next action instead of following a
// pre-built plan, grounded on the teacher's executor control loop
// (orchestration/executor.go) generalized from "run a whole plan" to
// "decide, then run one action, then decide again" (ai/intelligent_agent.go's
// decide-then-act shape).
type Executor struct {
	stepExec  StepExecutor
	oracle    ai.Oracle
	extractor PageStateExtractor
	bus       *events.Bus
	idgen     func() string
}

// NewExecutor builds a Dynamic Executor. bus may be nil to suppress events.
// extractor may be nil, in which case HTMLPageStateExtractor is used.
func NewExecutor(stepExec StepExecutor, oracle ai.Oracle, extractor PageStateExtractor, bus *events.Bus, idgen func() string) *Executor {
	if extractor == nil {
		extractor = NewHTMLPageStateExtractor()
	}
	if idgen == nil {
		idgen = func() string { return "" }
	}
	return &Executor{stepExec: stepExec, oracle: oracle, extractor: extractor, bus: bus, idgen: idgen}
}

func (e *Executor) emit(taskID string, typ events.Type, data map[string]interface{}) {
	if e.bus == nil {
		return
	}
	e.bus.Emit(events.Event{ID: e.idgen(), Type: typ, TaskID: taskID, Data: data, Timestamp: time.Now()})
}

// ExecuteWithFeedback drives ctx.Goal to completion by repeatedly asking the
// oracle what to do next, executing that one action, folding its outcome
// back into the context, and checking termination after every iteration
// (spec §4.7 control loop):
//
//	loop:
//	  if !ShouldContinue(): break
//	  if cycle := DetectCycle(threshold); cycle.HasCycle: mark failed, break
//	  decision := oracle.DecideNextAction(ctx.ForAI())
//	  if decision.GoalAchieved || decision.NextAction == nil: mark achieved, break
//	  execute decision.NextAction, fold result into ctx, extract page state,
//	  collect decision.DataToExtract
func (e *Executor) ExecuteWithFeedback(parent context.Context, taskID string, dctx *Context) Result {
	e.emit(taskID, events.TaskStarted, map[string]interface{}{"mode": "dynamic", "goal": dctx.Goal})

	for {
		if cont, reason := dctx.ShouldContinue(); !cont {
			return e.finish(taskID, dctx, reason)
		}

		if cycle := dctx.DetectCycle(dctx.Opts.CycleThreshold); cycle.HasCycle {
			dctx.MarkFailed(fmt.Sprintf("cycle detected: %s visited %d times", cycle.URL, cycle.Visits))
			return e.finish(taskID, dctx, dctx.FailureReason)
		}

		decision, err := e.oracle.DecideNextAction(parent, dctx.ForAI())
		if err != nil {
			dctx.MarkFailed("oracle error: " + err.Error())
			return e.finish(taskID, dctx, dctx.FailureReason)
		}

		if decision.GoalAchieved || decision.NextAction == nil {
			dctx.MarkGoalAchieved(decision.Reasoning)
			return e.finish(taskID, dctx, "")
		}

		e.runIteration(parent, taskID, dctx, decision)
	}
}

// runIteration executes one AI-decided action and folds its outcome back
// into dctx: history, collected data, and (on success) a fresh page state.
func (e *Executor) runIteration(parent context.Context, taskID string, dctx *Context, decision ai.Decision) {
	na := *decision.NextAction
	act, err := action.NewAction(na.Type, na.Params)
	if err != nil {
		dctx.AddAction(na, execresult.Failure(err, execresult.CategoryUnknown, nil), 0)
		return
	}

	s := step.NewStep(e.idgen(), act, na.Description)
	e.emit(taskID, events.StepStarted, map[string]interface{}{"stepId": s.ID, "iteration": dctx.IterationCount + 1})

	start := time.Now()
	result := e.stepExec.Execute(parent, s, strategy.SelectionCriteria{},
		func(retryCount int) {
			e.emit(taskID, events.StepRetrying, map[string]interface{}{"stepId": s.ID, "retryCount": retryCount})
		},
		func(fb step.FallbackEvent) {
			e.emit(taskID, events.ProviderFallback, map[string]interface{}{"stepId": s.ID, "from": fb.From.String(), "to": fb.To.String()})
		},
	)
	elapsed := time.Since(start)

	dctx.AddAction(na, result, elapsed)

	if result.IsSuccess() {
		e.emit(taskID, events.StepCompleted, map[string]interface{}{"stepId": s.ID})
		e.collectFromResult(dctx, decision, result)
	} else {
		e.emit(taskID, events.StepFailed, map[string]interface{}{"stepId": s.ID, "error": errMessage(result.Err)})
	}
	e.emit(taskID, events.ProgressUpdate, map[string]interface{}{"iteration": dctx.IterationCount})
}

// collectFromResult extracts page state (when the result carries raw HTML)
// and pulls any oracle-requested data points out of the result's data by
// selector key, per spec §4.7 "collect dataToExtract fields". Real selector
// evaluation against live DOM is the provider's job (spec Non-goals: "it
// does not model a browser"); here the result's Data is expected to be a
// map the provider has already queried, keyed by the same selector strings
// the oracle asked for.
func (e *Executor) collectFromResult(dctx *Context, decision ai.Decision, result execresult.Result) {
	if html, ok := result.Meta["html"].(string); ok && html != "" {
		url, _ := result.Meta["url"].(string)
		if state, err := e.extractor.Extract(url, html); err == nil {
			dctx.UpdatePageState(state)
		}
	}

	data, _ := result.Data.(map[string]interface{})
	for key, selector := range decision.DataToExtract {
		if data != nil {
			if v, ok := data[selector]; ok {
				dctx.Collect(key, v)
				continue
			}
		}
		if result.Meta != nil {
			if v, ok := result.Meta[selector]; ok {
				dctx.Collect(key, v)
			}
		}
	}
}

func (e *Executor) finish(taskID string, dctx *Context, reason string) Result {
	if !dctx.GoalAchieved && dctx.FailureReason == "" {
		dctx.FailureReason = reason
	}
	r := Result{
		Success:         dctx.GoalAchieved,
		CollectedData:   dctx.CollectedData,
		FailureReason:   dctx.FailureReason,
		ContextSnapshot: dctx,
	}
	if dctx.GoalAchieved {
		r.Summary = fmt.Sprintf("goal achieved after %d iterations", dctx.IterationCount)
		e.emit(taskID, events.TaskCompleted, map[string]interface{}{"summary": r.Summary, "iterations": dctx.IterationCount})
	} else {
		r.Summary = fmt.Sprintf("stopped after %d iterations: %s", dctx.IterationCount, reason)
		e.emit(taskID, events.TaskFailed, map[string]interface{}{"reason": reason, "iterations": dctx.IterationCount})
	}
	return r
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
