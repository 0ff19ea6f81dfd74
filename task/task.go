// Package task implements the Task model (ordered steps, status FSM,
// progress, serialization) and the static-plan Task Executor.
package task

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/webrunner/engine/step"
)

// Status is a Task's closed status set.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusRunning         Status = "Running"
	StatusPaused          Status = "Paused"
	StatusWaitingForInput Status = "WaitingForInput"
	StatusFailed          Status = "Failed"
	StatusCompleted       Status = "Completed"
)

var legalTransitions = map[Status]map[Status]bool{
	StatusPending:         {StatusRunning: true},
	StatusRunning:         {StatusPaused: true, StatusWaitingForInput: true, StatusFailed: true, StatusCompleted: true},
	StatusPaused:          {StatusRunning: true, StatusFailed: true},
	StatusWaitingForInput: {StatusRunning: true, StatusFailed: true},
}

func (s Status) canTransitionTo(next Status) bool {
	allowed, ok := legalTransitions[s]
	return ok && allowed[next]
}

func (s Status) terminal() bool {
	return s == StatusFailed || s == StatusCompleted
}

// InputRequest records a human-input request raised by a step's result
// side-channel (spec §4.6 "Input requests").
type InputRequest struct {
	StepID string                 `json:"stepId"`
	Prompt string                 `json:"prompt"`
	Schema map[string]interface{} `json:"schema,omitempty"`
}

// ExecutionMetadata mirrors the wire-format executionMetadata record (spec
// §6.4).
type ExecutionMetadata struct {
	StartedAt      time.Time     `json:"startedAt"`
	CompletedAt    time.Time     `json:"completedAt,omitempty"`
	Duration       time.Duration `json:"durationNs,omitempty"`
	TotalSteps     int           `json:"totalSteps"`
	CompletedSteps int           `json:"completedSteps"`
	FailedSteps    int           `json:"failedSteps"`
	SkippedSteps   int           `json:"skippedSteps"`
}

// Aggregate is the final result built once a Task runs out of steps (spec
// §4.6 step "Upon running out of steps").
type Aggregate struct {
	Goal            string                 `json:"goal"`
	SuccessfulSteps []string               `json:"successfulSteps,omitempty"`
	FailedSteps     []string               `json:"failedSteps,omitempty"`
	AllStepResults  map[string]interface{} `json:"allStepResults,omitempty"`
	Summary         string                 `json:"summary,omitempty"`
}

// Task is an ordered list of Steps pursuing a goal, with an explicit state
// machine. currentStepIndex is non-decreasing for the life of the Task
// (spec §3 invariant); a Task in a terminal state is never mutated again.
type Task struct {
	ID                string
	Goal              string
	Steps             []*step.Step
	Status            Status
	CurrentStepIndex  int
	Result            *Aggregate
	Error             error
	PendingInput      *InputRequest
	ProvidedInput     map[string]interface{}
	ContinueOnFailure bool
	Metadata          map[string]interface{}
	ExecutionMetadata ExecutionMetadata

	// statusMu guards Status transitions. A Pause request (spec §4.6) is
	// expected to arrive on a different goroutine than the one running
	// Execute, so the status word that both sides touch needs its own
	// lock distinct from any lock a caller takes around the Task as a
	// whole.
	statusMu sync.Mutex
}

// NewTask constructs a Pending Task over steps pursuing goal.
func NewTask(id, goal string, steps []*step.Step) *Task {
	return &Task{
		ID:       id,
		Goal:     goal,
		Steps:    steps,
		Status:   StatusPending,
		Metadata: make(map[string]interface{}),
		ExecutionMetadata: ExecutionMetadata{
			TotalSteps: len(steps),
		},
	}
}

func (t *Task) transition(next Status) error {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	if !t.Status.canTransitionTo(next) {
		return &InvalidTransitionError{From: t.Status, To: next}
	}
	t.Status = next
	return nil
}

// status returns the current Status under the status lock.
func (t *Task) status() Status {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	return t.Status
}

// InvalidTransitionError reports an illegal Task status transition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return "task: illegal status transition " + string(e.From) + " -> " + string(e.To)
}

// NextStep returns the first Step whose status is Pending, scanning from
// CurrentStepIndex forward, and its index. ok is false once no Pending
// step remains.
func (t *Task) NextStep() (s *step.Step, index int, ok bool) {
	for i := t.CurrentStepIndex; i < len(t.Steps); i++ {
		if t.Steps[i].Status == step.StatusPending {
			return t.Steps[i], i, true
		}
	}
	return nil, 0, false
}

// UpdateStep advances CurrentStepIndex past the Step whose ID matches
// stepID; it records nothing on the Step. The Step itself is expected to
// already have had MarkTerminal called by the Step Executor; this just
// locates it on the Task and advances the cursor.
func (t *Task) UpdateStep(stepID string) {
	for i, s := range t.Steps {
		if s.ID == stepID {
			if i >= t.CurrentStepIndex {
				t.CurrentStepIndex = i + 1
			}
			return
		}
	}
}

// Progress returns round(100 * completed / total), in [0, 100]. Completed
// here means Success or Skipped, per spec §8.
func (t *Task) Progress() int {
	if len(t.Steps) == 0 {
		return 100
	}
	completed := 0
	for _, s := range t.Steps {
		if s.Status == step.StatusSuccess || s.Status == step.StatusSkipped {
			completed++
		}
	}
	pct := float64(completed) / float64(len(t.Steps)) * 100
	return int(pct + 0.5)
}

// IsTerminal reports whether the Task is in a terminal status.
func (t *Task) IsTerminal() bool {
	return t.Status.terminal()
}

// wireTask is the JSON wire shape for a Task (spec §6.4). Error is
// flattened to a plain string; the status mutex has no wire
// representation.
type wireTask struct {
	ID                string                 `json:"id"`
	Goal              string                 `json:"goal"`
	Steps             []*step.Step           `json:"steps"`
	Status            Status                 `json:"status"`
	CurrentStepIndex  int                    `json:"currentStepIndex"`
	Result            *Aggregate             `json:"result,omitempty"`
	Error             string                 `json:"error,omitempty"`
	PendingInput      *InputRequest          `json:"pendingInput,omitempty"`
	ProvidedInput     map[string]interface{} `json:"providedInput,omitempty"`
	ContinueOnFailure bool                   `json:"continueOnFailure,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	ExecutionMetadata ExecutionMetadata      `json:"executionMetadata"`
}

// MarshalJSON encodes t, flattening Error to a string. The statusMu lock
// is not taken: callers must not marshal a Task concurrently with a
// Pause/Resume/Execute call racing the same instance, same as every other
// direct field read on Task.
func (t *Task) MarshalJSON() ([]byte, error) {
	w := wireTask{
		ID:                t.ID,
		Goal:              t.Goal,
		Steps:             t.Steps,
		Status:            t.Status,
		CurrentStepIndex:  t.CurrentStepIndex,
		Result:            t.Result,
		PendingInput:      t.PendingInput,
		ProvidedInput:     t.ProvidedInput,
		ContinueOnFailure: t.ContinueOnFailure,
		Metadata:          t.Metadata,
		ExecutionMetadata: t.ExecutionMetadata,
	}
	if t.Error != nil {
		w.Error = t.Error.Error()
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes t, reconstructing Error as a plain error from the
// wire string.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Task{
		ID:                w.ID,
		Goal:              w.Goal,
		Steps:             w.Steps,
		Status:            w.Status,
		CurrentStepIndex:  w.CurrentStepIndex,
		Result:            w.Result,
		PendingInput:      w.PendingInput,
		ProvidedInput:     w.ProvidedInput,
		ContinueOnFailure: w.ContinueOnFailure,
		Metadata:          w.Metadata,
		ExecutionMetadata: w.ExecutionMetadata,
	}
	if w.Error != "" {
		t.Error = errors.New(w.Error)
	}
	return nil
}
