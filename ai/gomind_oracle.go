package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webrunner/engine/action"
)

// GomindOracle adapts an AIClient (any LLM backend satisfying the
// teacher's AIClient shape) into the Oracle interface by prompting for
// structured JSON and decoding the three required record shapes. Grounded
// on ai/client.go + ai/provider.go's AIClient/AIConfig pattern: the core
// never depends on a concrete vendor SDK, only on this adapter's narrow
// AIClient interface.
type GomindOracle struct {
	Client AIClient
	Config Config
}

// NewGomindOracle builds an adapter over client using cfg for model/
// temperature/token defaults on every call.
func NewGomindOracle(client AIClient, cfg Config) *GomindOracle {
	return &GomindOracle{Client: client, Config: cfg}
}

func (o *GomindOracle) options(systemPrompt string) *AIOptions {
	return &AIOptions{
		Model:        o.Config.Model,
		SystemPrompt: systemPrompt,
		Temperature:  o.Config.Temperature,
		MaxTokens:    o.Config.MaxTokens,
	}
}

const planSystemPrompt = `You are a web automation planner. Given a goal, respond with ONLY a JSON object:
{"steps":[{"kind":"Navigate|Click|Type|ExtractText|ExtractAttribute|Wait|Search","params":{...},"description":"..."}],"confidence":0.0-1.0,"reasoning":"..."}`

// GeneratePlan prompts the LLM for a plan and decodes it; callers should
// still run ai.ValidatePlan over the result before using it (spec §6.2).
func (o *GomindOracle) GeneratePlan(ctx context.Context, goal string, contextData map[string]interface{}) (Plan, error) {
	prompt, err := promptWithContext(goal, contextData)
	if err != nil {
		return Plan{}, err
	}
	resp, err := o.Client.GenerateResponse(ctx, prompt, o.options(planSystemPrompt))
	if err != nil {
		return Plan{}, fmt.Errorf("ai: generate plan: %w", err)
	}
	var wire struct {
		Steps []struct {
			Kind              string                 `json:"kind"`
			Params            map[string]interface{} `json:"params"`
			Description       string                 `json:"description"`
			ExpectedOutput    []ExpectedField        `json:"expectedOutput"`
			FailureConditions []FailureCondition     `json:"failureConditions"`
		} `json:"steps"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &wire); err != nil {
		return Plan{}, fmt.Errorf("ai: decode plan response: %w", err)
	}
	plan := Plan{Confidence: wire.Confidence, Reasoning: wire.Reasoning}
	for _, s := range wire.Steps {
		plan.Steps = append(plan.Steps, PlanStep{
			Kind:              action.Kind(s.Kind),
			Params:            s.Params,
			Description:       s.Description,
			ExpectedOutput:    s.ExpectedOutput,
			FailureConditions: s.FailureConditions,
		})
	}
	return plan, nil
}

const selectorSystemPrompt = `You are a web automation selector assistant. Respond with ONLY a JSON object:
{"selectors":[{"purpose":"...","selector":"...","confidence":0.0-1.0}],"reasoning":"..."}`

// SuggestSelectors prompts the LLM for candidate selectors against a page
// summary and a stated intent.
func (o *GomindOracle) SuggestSelectors(ctx context.Context, htmlOrSummary, intent string, contextData map[string]interface{}) (SelectorSuggestions, error) {
	prompt := fmt.Sprintf("Intent: %s\n\nPage:\n%s", intent, htmlOrSummary)
	resp, err := o.Client.GenerateResponse(ctx, prompt, o.options(selectorSystemPrompt))
	if err != nil {
		return SelectorSuggestions{}, fmt.Errorf("ai: suggest selectors: %w", err)
	}
	var out SelectorSuggestions
	if err := json.Unmarshal([]byte(resp.Content), &out); err != nil {
		return SelectorSuggestions{}, fmt.Errorf("ai: decode selector response: %w", err)
	}
	return out, nil
}

const decideSystemPrompt = `You are driving a web automation feedback loop. Respond with ONLY a JSON object:
{"goalAchieved":bool,"reasoning":"...","nextAction":{"type":"Navigate|Click|Type|ExtractText|ExtractAttribute|Wait|Search|NONE","params":{...},"description":"..."},"dataToExtract":{"key":"selector"}}
Use "type":"NONE" when no further action is needed.`

// DecideNextAction prompts the LLM with the dynamic executor's context
// snapshot and decodes the next-action decision.
func (o *GomindOracle) DecideNextAction(ctx context.Context, execCtxForAI map[string]interface{}) (Decision, error) {
	body, err := json.Marshal(execCtxForAI)
	if err != nil {
		return Decision{}, fmt.Errorf("ai: marshal execution context: %w", err)
	}
	resp, err := o.Client.GenerateResponse(ctx, string(body), o.options(decideSystemPrompt))
	if err != nil {
		return Decision{}, fmt.Errorf("ai: decide next action: %w", err)
	}
	var wire struct {
		GoalAchieved bool   `json:"goalAchieved"`
		Reasoning    string `json:"reasoning"`
		NextAction   *struct {
			Type        string                 `json:"type"`
			Params      map[string]interface{} `json:"params"`
			Description string                 `json:"description"`
		} `json:"nextAction"`
		DataToExtract map[string]string `json:"dataToExtract"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &wire); err != nil {
		return Decision{}, fmt.Errorf("ai: decode decision response: %w", err)
	}
	d := Decision{GoalAchieved: wire.GoalAchieved, Reasoning: wire.Reasoning, DataToExtract: wire.DataToExtract}
	if wire.NextAction != nil && wire.NextAction.Type != "" && wire.NextAction.Type != "NONE" {
		d.NextAction = &NextAction{
			Type:        action.Kind(wire.NextAction.Type),
			Params:      wire.NextAction.Params,
			Description: wire.NextAction.Description,
		}
	}
	return d, nil
}

var _ Oracle = (*GomindOracle)(nil)

func promptWithContext(goal string, contextData map[string]interface{}) (string, error) {
	if len(contextData) == 0 {
		return fmt.Sprintf("Goal: %s", goal), nil
	}
	ctxJSON, err := json.Marshal(contextData)
	if err != nil {
		return "", fmt.Errorf("ai: marshal plan context: %w", err)
	}
	return fmt.Sprintf("Goal: %s\n\nContext: %s", goal, ctxJSON), nil
}
