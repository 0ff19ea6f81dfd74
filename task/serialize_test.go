package task

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/step"
)

func TestTaskSerializationRoundTrip(t *testing.T) {
	a, err := action.NewAction(action.Navigate, map[string]interface{}{"url": "https://example.com"})
	require.NoError(t, err)
	s1 := step.NewStep("s1", a, "go to example.com")
	s1.ExpectedOutput = []step.ExpectedField{{Field: "title", Type: "string"}}
	s1.MarkRunning()
	result := execresult.Success(map[string]interface{}{"title": "Example"}, execresult.Metadata{"actionKind": "Navigate"})
	s1.MarkTerminal(step.StatusSuccess, &result, nil)

	s2Action, err := action.NewAction(action.Click, map[string]interface{}{"selector": "#buy"})
	require.NoError(t, err)
	s2 := step.NewStep("s2", s2Action, "click buy")
	s2.MarkRunning()
	failResult := execresult.Failure(errors.New("selector not found"), execresult.CategorySelectorNotFound, nil)
	s2.MarkTerminal(step.StatusFailed, &failResult, errors.New("selector not found"))

	orig := NewTask("t1", "buy a widget", []*step.Step{s1, s2})
	orig.Status = StatusFailed
	orig.CurrentStepIndex = 2
	orig.Error = errors.New("step s2 failed")
	orig.ContinueOnFailure = true
	orig.Metadata["source"] = "test"

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Task
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, orig.ID, decoded.ID)
	assert.Equal(t, orig.Goal, decoded.Goal)
	assert.Equal(t, orig.Status, decoded.Status)
	assert.Equal(t, orig.CurrentStepIndex, decoded.CurrentStepIndex)
	assert.Equal(t, orig.ContinueOnFailure, decoded.ContinueOnFailure)
	require.Error(t, decoded.Error)
	assert.Equal(t, orig.Error.Error(), decoded.Error.Error())
	require.Len(t, decoded.Steps, 2)

	assert.Equal(t, s1.ID, decoded.Steps[0].ID)
	assert.Equal(t, s1.Action.Kind(), decoded.Steps[0].Action.Kind())
	assert.Equal(t, s1.Action.Params(), decoded.Steps[0].Action.Params())
	assert.Equal(t, s1.Status, decoded.Steps[0].Status)
	require.NotNil(t, decoded.Steps[0].Result)
	assert.Equal(t, s1.Result.Data, decoded.Steps[0].Result.Data)

	assert.Equal(t, s2.ID, decoded.Steps[1].ID)
	assert.Equal(t, s2.Status, decoded.Steps[1].Status)
	require.Error(t, decoded.Steps[1].Error)
	assert.Equal(t, s2.Error.Error(), decoded.Steps[1].Error.Error())
	require.NotNil(t, decoded.Steps[1].Result)
	assert.Equal(t, execresult.CategorySelectorNotFound, decoded.Steps[1].Result.Category)

	// Re-encoding the decoded Task produces equivalent JSON: the
	// non-volatile wire fields are a fixed point under Serialize ∘
	// Deserialize (spec §8).
	roundTrip, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(roundTrip))
}

func TestEmptyTaskSerializationRoundTrip(t *testing.T) {
	orig := NewTask("t2", "noop", nil)
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Task
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, orig.ID, decoded.ID)
	assert.Equal(t, orig.Status, decoded.Status)
	assert.Empty(t, decoded.Steps)
	assert.Nil(t, decoded.Error)
}
