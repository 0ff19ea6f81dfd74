// Package events implements the Progress Event Bus: typed fan-out to
// subscribers plus a bounded ring buffer of recent events for diagnostics.
//
// This is grounded on the fan-out Bus pattern from goa-ai's runtime hooks
// bus, inverted from fail-fast to best-effort delivery: a panicking or
// erroring listener here never stops delivery to the remaining
// subscribers, because the spec requires the bus to be a passive
// observability channel that can't destabilize the executor (spec §7,
// "the event bus is best-effort").
package events

import "time"

// Type is the closed set of progress event types the engine emits.
type Type string

const (
	TaskStarted      Type = "TaskStarted"
	TaskPlanning     Type = "TaskPlanning"
	TaskPlanReady    Type = "TaskPlanReady"
	TaskExecuting    Type = "TaskExecuting"
	StepStarted      Type = "StepStarted"
	StepCompleted    Type = "StepCompleted"
	StepFailed       Type = "StepFailed"
	StepRetrying     Type = "StepRetrying"
	ProviderFallback Type = "ProviderFallback"
	InputRequested   Type = "InputRequested"
	InputProvided    Type = "InputProvided"
	TaskPaused       Type = "TaskPaused"
	TaskResumed      Type = "TaskResumed"
	TaskCompleted    Type = "TaskCompleted"
	TaskFailed       Type = "TaskFailed"
	ProgressUpdate   Type = "ProgressUpdate"
	ReplayStarted    Type = "ReplayStarted"
)

// Event is the value delivered to subscribers: an opaque Data payload
// shaped per Type, plus the standard envelope fields from spec §3.
type Event struct {
	ID        string
	Type      Type
	TaskID    string
	Data      map[string]interface{}
	Timestamp time.Time
}
