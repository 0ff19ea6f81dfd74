package task

import (
	"context"
	"fmt"
	"time"

	"github.com/webrunner/engine/events"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/step"
	"github.com/webrunner/engine/strategy"
)

// StepExecutor is the subset of step.Executor the Task Executor drives.
// Named here so tests can substitute a scripted fake.
type StepExecutor interface {
	Execute(ctx context.Context, s *step.Step, criteria strategy.SelectionCriteria, onRetry func(int), onFallback func(step.FallbackEvent)) execresult.Result
}

// CriteriaFunc derives a step's selection criteria. A nil CriteriaFunc
// passed to NewExecutor uses the zero-value SelectionCriteria for every
// step.
type CriteriaFunc func(s *step.Step) strategy.SelectionCriteria

// Executor drives a Task's steps to completion: sequential execution,
// cooperative pause, WaitingForInput suspension, and progress events. It
// does not block waiting for Pause or Resume — per the checkpoint/resume
// pattern (grounded on the teacher's HITL controller, which resumes by
// checkpoint id rather than blocking a goroutine), Execute returns as soon
// as the Task reaches Paused/WaitingForInput/terminal, and a later call to
// Execute (after Resume transitions the Task back to Running) continues
// from CurrentStepIndex.
type Executor struct {
	stepExec StepExecutor
	bus      *events.Bus
	criteria CriteriaFunc
	idgen    func() string
}

// NewExecutor builds a Task Executor. bus may be nil, in which case no
// progress events are emitted (useful for tests that only care about
// Task/Step state).
func NewExecutor(stepExec StepExecutor, bus *events.Bus, criteria CriteriaFunc, idgen func() string) *Executor {
	if criteria == nil {
		criteria = func(*step.Step) strategy.SelectionCriteria { return strategy.SelectionCriteria{} }
	}
	if idgen == nil {
		idgen = func() string { return "" }
	}
	return &Executor{stepExec: stepExec, bus: bus, criteria: criteria, idgen: idgen}
}

func (e *Executor) emit(taskID string, typ events.Type, data map[string]interface{}) {
	if e.bus == nil {
		return
	}
	e.bus.Emit(events.Event{ID: e.idgen(), Type: typ, TaskID: taskID, Data: data, Timestamp: time.Now()})
}

// Pause requests that t stop after its current in-flight step completes.
// It is only legal from Running.
func (e *Executor) Pause(t *Task) error {
	if err := t.transition(StatusPaused); err != nil {
		return err
	}
	e.emit(t.ID, events.TaskPaused, nil)
	return nil
}

// Resume re-enters the execution loop from Paused or WaitingForInput. If
// resuming from WaitingForInput, providedInput is attached to
// t.ProvidedInput before the current step is re-executed.
func (e *Executor) Resume(t *Task, providedInput map[string]interface{}) error {
	wasWaitingForInput := t.status() == StatusWaitingForInput
	if err := t.transition(StatusRunning); err != nil {
		return err
	}
	if wasWaitingForInput && providedInput != nil {
		t.ProvidedInput = providedInput
		t.PendingInput = nil
	}
	e.emit(t.ID, events.TaskResumed, nil)
	return nil
}

// Execute runs t to completion or until it is paused, waits for input, or
// reaches a terminal state. Task-level cancellation is cooperative: it is
// observed between steps and inside the step executor's own suspension
// points (spec §5); the in-flight provider call, if any, runs to
// completion.
func (e *Executor) Execute(ctx context.Context, t *Task) execresult.Result {
	if t.Status == StatusPending {
		if err := t.transition(StatusRunning); err != nil {
			result := execresult.Failure(err, execresult.CategoryUnknown, nil)
			return result
		}
		t.ExecutionMetadata.StartedAt = time.Now()
		e.emit(t.ID, events.TaskStarted, map[string]interface{}{"mode": "static"})
	}

	for {
		select {
		case <-ctx.Done():
			t.Error = ctx.Err()
			_ = t.transition(StatusFailed)
			e.emit(t.ID, events.TaskFailed, map[string]interface{}{"error": ctx.Err().Error(), "category": "Cancelled"})
			return execresult.Failure(ctx.Err(), execresult.CategoryUnknown, nil)
		default:
		}

		if t.status() == StatusPaused {
			return execresult.RetryNeeded(nil, nil)
		}

		s, idx, ok := t.NextStep()
		if !ok {
			return e.complete(t)
		}

		if s.Status == step.StatusPending {
			e.emit(t.ID, events.StepStarted, map[string]interface{}{"stepId": s.ID, "index": idx})
		}

		criteria := e.criteria(s)
		result := e.stepExec.Execute(ctx, s, criteria,
			func(retryCount int) {
				e.emit(t.ID, events.StepRetrying, map[string]interface{}{"stepId": s.ID, "retryCount": retryCount})
			},
			func(fb step.FallbackEvent) {
				e.emit(t.ID, events.ProviderFallback, map[string]interface{}{"stepId": s.ID, "from": fb.From.String(), "to": fb.To.String()})
			},
		)

		if req, waiting := inputRequest(result); waiting {
			req.StepID = s.ID
			s.ResetForInput()
			t.PendingInput = req
			_ = t.transition(StatusWaitingForInput)
			e.emit(t.ID, events.InputRequested, map[string]interface{}{"stepId": s.ID, "prompt": req.Prompt})
			return execresult.RetryNeeded(nil, nil)
		}

		t.UpdateStep(s.ID)

		if result.IsSuccess() {
			e.emit(t.ID, events.StepCompleted, map[string]interface{}{"stepId": s.ID})
		} else {
			e.emit(t.ID, events.StepFailed, map[string]interface{}{"stepId": s.ID, "error": errMessage(result.Err)})
		}
		e.emit(t.ID, events.ProgressUpdate, map[string]interface{}{"percent": t.Progress()})

		if !result.IsSuccess() && !t.ContinueOnFailure {
			t.Error = result.Err
			_ = t.transition(StatusFailed)
			e.emit(t.ID, events.TaskFailed, map[string]interface{}{
				"error":      errMessage(result.Err),
				"failedStep": s.ID,
				"category":   string(result.Category),
			})
			return result
		}
	}
}

// inputRequest checks a step result's metadata side-channel for a human
// input request (spec §4.6 "Input requests").
func inputRequest(result execresult.Result) (*InputRequest, bool) {
	if result.Meta == nil {
		return nil, false
	}
	requested, _ := result.Meta["inputRequested"].(bool)
	if !requested {
		return nil, false
	}
	prompt, _ := result.Meta["inputPrompt"].(string)
	schema, _ := result.Meta["inputSchema"].(map[string]interface{})
	return &InputRequest{Prompt: prompt, Schema: schema}, true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// complete builds the final aggregate once the Task runs out of steps and
// transitions it to Completed.
func (e *Executor) complete(t *Task) execresult.Result {
	agg := &Aggregate{Goal: t.Goal, AllStepResults: make(map[string]interface{})}
	for _, s := range t.Steps {
		switch s.Status {
		case step.StatusSuccess:
			agg.SuccessfulSteps = append(agg.SuccessfulSteps, s.ID)
			t.ExecutionMetadata.CompletedSteps++
		case step.StatusFailed:
			agg.FailedSteps = append(agg.FailedSteps, s.ID)
			t.ExecutionMetadata.FailedSteps++
		case step.StatusSkipped:
			t.ExecutionMetadata.SkippedSteps++
		}
		if s.Result != nil {
			agg.AllStepResults[s.ID] = s.Result.Data
		}
	}
	agg.Summary = fmt.Sprintf("%d/%d steps succeeded", len(agg.SuccessfulSteps), len(t.Steps))

	t.Result = agg
	t.ExecutionMetadata.CompletedAt = time.Now()
	t.ExecutionMetadata.Duration = t.ExecutionMetadata.CompletedAt.Sub(t.ExecutionMetadata.StartedAt)
	_ = t.transition(StatusCompleted)
	e.emit(t.ID, events.TaskCompleted, map[string]interface{}{"summary": agg.Summary})

	return execresult.Success(agg, nil)
}
