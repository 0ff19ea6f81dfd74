package action

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError reports why NewAction rejected a kind/params pair.
// Returned instead of a generic error so callers (and the step executor's
// classify step) can match on *ValidationError directly.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("action: invalid %s params: %s", e.Kind, e.Message)
}

// Action is an immutable value: a kind drawn from the closed Kind set plus
// a kind-specific parameter record that has already passed schema
// validation. There is no exported way to construct one except NewAction,
// so every live Action satisfies the spec's invariant that a validated
// Action never fails schema checks later.
type Action struct {
	kind   Kind
	params map[string]interface{}
}

// Kind returns the action's kind.
func (a Action) Kind() Kind { return a.kind }

// Param returns a single parameter value and whether it was present.
func (a Action) Param(name string) (interface{}, bool) {
	v, ok := a.params[name]
	return v, ok
}

// Params returns a defensive copy of the full parameter record.
func (a Action) Params() map[string]interface{} {
	out := make(map[string]interface{}, len(a.params))
	for k, v := range a.params {
		out[k] = v
	}
	return out
}

// wireAction is the JSON wire shape for an Action (spec §6.4): {kind,
// parameters}.
type wireAction struct {
	Kind       Kind                   `json:"kind"`
	Parameters map[string]interface{} `json:"parameters"`
}

// MarshalJSON encodes a as {kind, parameters}.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireAction{Kind: a.kind, Parameters: a.Params()})
}

// UnmarshalJSON decodes {kind, parameters} back through NewAction, so a
// deserialized Action carries the same validation guarantee as one built
// directly by a caller.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	built, err := NewAction(w.Kind, w.Parameters)
	if err != nil {
		return err
	}
	*a = built
	return nil
}

var (
	compileOnce sync.Once
	compiled    map[Kind]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() {
	compiled = make(map[Kind]*jsonschema.Schema, len(paramSchemas))
	for kind, raw := range paramSchemas {
		var doc interface{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			compileErr = fmt.Errorf("action: unmarshal schema for %s: %w", kind, err)
			return
		}
		c := jsonschema.NewCompiler()
		resource := string(kind) + ".json"
		if err := c.AddResource(resource, doc); err != nil {
			compileErr = fmt.Errorf("action: add schema resource for %s: %w", kind, err)
			return
		}
		schema, err := c.Compile(resource)
		if err != nil {
			compileErr = fmt.Errorf("action: compile schema for %s: %w", kind, err)
			return
		}
		compiled[kind] = schema
	}
}

// NewAction is the canonical constructor: it validates params against
// kind's declared schema — required fields present, types matching,
// enum values in range, no unknown keys — and returns a ValidationError
// on any violation. Convenience constructors per kind are non-normative
// sugar over this one.
func NewAction(kind Kind, params map[string]interface{}) (Action, error) {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return Action{}, compileErr
	}

	if !kind.valid() {
		return Action{}, &ValidationError{Kind: kind, Message: "unknown action kind"}
	}

	merged := make(map[string]interface{}, len(params))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range defaults[kind] {
		if _, present := merged[k]; !present {
			merged[k] = v
		}
	}

	schema := compiled[kind]
	if err := schema.Validate(merged); err != nil {
		return Action{}, &ValidationError{Kind: kind, Message: err.Error()}
	}

	return Action{kind: kind, params: merged}, nil
}

// NavigateAction is a convenience constructor for the Navigate kind.
func NavigateAction(url string, waitUntil string) (Action, error) {
	params := map[string]interface{}{"url": url}
	if waitUntil != "" {
		params["waitUntil"] = waitUntil
	}
	return NewAction(Navigate, params)
}

// ClickAction is a convenience constructor for the Click kind.
func ClickAction(selector string) (Action, error) {
	return NewAction(Click, map[string]interface{}{"selector": selector})
}

// TypeAction is a convenience constructor for the Type kind.
func TypeAction(selector, text string) (Action, error) {
	return NewAction(Type, map[string]interface{}{"selector": selector, "text": text})
}

// ExtractTextAction is a convenience constructor for the ExtractText kind.
func ExtractTextAction(selector string) (Action, error) {
	return NewAction(ExtractText, map[string]interface{}{"selector": selector})
}

// ExtractAttributeAction is a convenience constructor for the
// ExtractAttribute kind.
func ExtractAttributeAction(selector, attribute string) (Action, error) {
	return NewAction(ExtractAttribute, map[string]interface{}{"selector": selector, "attribute": attribute})
}

// WaitAction is a convenience constructor for the Wait kind.
func WaitAction(selector string) (Action, error) {
	params := map[string]interface{}{}
	if selector != "" {
		params["selector"] = selector
	}
	return NewAction(Wait, params)
}

// SearchAction is a convenience constructor for the Search kind.
func SearchAction(query string) (Action, error) {
	return NewAction(Search, map[string]interface{}{"query": query})
}
