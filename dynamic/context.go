// Package dynamic implements the Dynamic (AI-feedback) Executor: an
// alternative to the static Task Executor that consults an AI oracle after
// every action to decide the next one, with cycle and budget detection
// (spec §4.7).
package dynamic

import (
	"time"

	"github.com/webrunner/engine/ai"
	"github.com/webrunner/engine/execresult"
)

// HistoryEntry records one iteration's action and outcome.
type HistoryEntry struct {
	Iteration int
	Action    ai.NextAction
	Result    execresult.Result
	Elapsed   time.Duration
}

// Options configures a dynamic run; a single Options record per the
// REDESIGN FLAGS note against loose config maps.
type Options struct {
	MaxIterations  int
	Timeout        time.Duration
	CycleThreshold int
}

// DefaultOptions mirrors the teacher's sane-default style: bounded but
// generous enough for a real multi-page goal.
func DefaultOptions() Options {
	return Options{MaxIterations: 20, Timeout: 2 * time.Minute, CycleThreshold: 3}
}

// Cycle reports whether DetectCycle found a URL repeated at least
// cycleThreshold times.
type Cycle struct {
	HasCycle bool
	URL      string
	Visits   int
}

// Context is the dynamic executor's running state (spec §3 "Execution
// context (dynamic executor)").
type Context struct {
	Goal             string
	CollectedData    map[string]interface{}
	ActionHistory    []HistoryEntry
	VisitedURLs      map[string]int
	CurrentPageState *PageState
	IterationCount   int
	GoalAchieved     bool
	FailureReason    string
	StartTime        time.Time
	Opts             Options
}

// NewContext builds a fresh Context for goal under opts.
func NewContext(goal string, opts Options) *Context {
	return &Context{
		Goal:          goal,
		CollectedData: make(map[string]interface{}),
		VisitedURLs:   make(map[string]int),
		StartTime:     time.Now(),
		Opts:          opts,
	}
}

// ShouldContinue reports whether the loop should keep iterating and, if
// not, why (spec §4.7 termination conditions).
func (c *Context) ShouldContinue() (bool, string) {
	if c.GoalAchieved {
		return false, "goalAchieved"
	}
	if c.FailureReason != "" {
		return false, "failed: " + c.FailureReason
	}
	if c.IterationCount >= c.Opts.MaxIterations {
		return false, "maxIterations"
	}
	if c.Opts.Timeout > 0 && time.Since(c.StartTime) >= c.Opts.Timeout {
		return false, "timeout"
	}
	return true, ""
}

// DetectCycle reports a cycle once any visited URL has been seen at least
// cycleThreshold times (spec §4.7/§8: "same URL visited ≥ cycleThreshold
// times").
func (c *Context) DetectCycle(cycleThreshold int) Cycle {
	for url, count := range c.VisitedURLs {
		if count >= cycleThreshold {
			return Cycle{HasCycle: true, URL: url, Visits: count}
		}
	}
	return Cycle{}
}

// MarkFailed records a terminal failure reason.
func (c *Context) MarkFailed(reason string) {
	c.FailureReason = reason
}

// MarkGoalAchieved records terminal success.
func (c *Context) MarkGoalAchieved(reasoning string) {
	c.GoalAchieved = true
	if reasoning != "" {
		c.CollectedData["_reasoning"] = reasoning
	}
}

// AddAction appends a history entry and, when the action was a Navigate,
// records the visited URL for cycle detection.
func (c *Context) AddAction(a ai.NextAction, result execresult.Result, elapsed time.Duration) {
	c.IterationCount++
	c.ActionHistory = append(c.ActionHistory, HistoryEntry{
		Iteration: c.IterationCount,
		Action:    a,
		Result:    result,
		Elapsed:   elapsed,
	})
	if url, ok := a.Params["url"].(string); ok && url != "" {
		c.VisitedURLs[url]++
	}
}

// UpdatePageState records the most recently extracted page state.
func (c *Context) UpdatePageState(p PageState) {
	c.CurrentPageState = &p
}

// Collect records one extracted data point under key.
func (c *Context) Collect(key string, value interface{}) {
	c.CollectedData[key] = value
}

// ForAI builds the structured snapshot passed to Oracle.DecideNextAction —
// everything the AI oracle is allowed to see, nothing more (spec §6.2).
func (c *Context) ForAI() map[string]interface{} {
	snapshot := map[string]interface{}{
		"goal":           c.Goal,
		"iterationCount": c.IterationCount,
		"collectedData":  c.CollectedData,
		"visitedUrls":    c.VisitedURLs,
	}
	if c.CurrentPageState != nil {
		snapshot["currentPageState"] = c.CurrentPageState
	}
	if len(c.ActionHistory) > 0 {
		last := c.ActionHistory[len(c.ActionHistory)-1]
		snapshot["lastAction"] = last.Action
		snapshot["lastActionSucceeded"] = last.Result.IsSuccess()
	}
	return snapshot
}

// Elapsed returns wall-clock time since the context started.
func (c *Context) Elapsed() time.Duration {
	return time.Since(c.StartTime)
}
