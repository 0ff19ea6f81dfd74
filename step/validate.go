package step

import (
	"fmt"
	"strings"
)

// validateExpectedOutput checks data against expected, returning one
// warning string per missing field or type mismatch. Per spec §4.5, these
// are non-fatal: they never turn a Success into a Failure.
func validateExpectedOutput(expected []ExpectedField, data interface{}) []string {
	if len(expected) == 0 {
		return nil
	}
	record, ok := data.(map[string]interface{})
	if !ok {
		if len(expected) > 0 {
			return []string{"result data is not a record; cannot check expected output"}
		}
		return nil
	}

	var warnings []string
	for _, field := range expected {
		v, present := record[field.Field]
		if !present {
			warnings = append(warnings, fmt.Sprintf("expected field %q missing from result", field.Field))
			continue
		}
		if field.Type != "" && !matchesType(v, field.Type) {
			warnings = append(warnings, fmt.Sprintf("expected field %q to be %s, got %T", field.Field, field.Type, v))
		}
	}
	return warnings
}

func matchesType(v interface{}, typ string) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "bool":
		_, ok := v.(bool)
		return ok
	case "array":
		_, ok := v.([]interface{})
		return ok
	case "object":
		_, ok := v.(map[string]interface{})
		return ok
	default:
		return true
	}
}

// evaluateFailureConditions reports whether any condition is true against
// data, returning the first triggered condition for the failure message.
func evaluateFailureConditions(conditions []FailureCondition, data interface{}) (bool, FailureCondition) {
	record, _ := data.(map[string]interface{})
	for _, cond := range conditions {
		v, present := record[cond.Field]
		if conditionTrue(cond, v, present) {
			return true, cond
		}
	}
	return false, FailureCondition{}
}

func conditionTrue(cond FailureCondition, v interface{}, present bool) bool {
	switch cond.Op {
	case OpExists:
		return present
	case OpNotExists:
		return !present
	case OpEquals:
		return present && equalValues(v, cond.Value)
	case OpNotEquals:
		return present && !equalValues(v, cond.Value)
	case OpContains:
		return present && containsValue(v, cond.Value)
	case OpGreater:
		a, okA := toFloat(v)
		b, okB := toFloat(cond.Value)
		return present && okA && okB && a > b
	case OpLess:
		a, okA := toFloat(v)
		b, okB := toFloat(cond.Value)
		return present && okA && okB && a < b
	default:
		return false
	}
}

func equalValues(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func containsValue(container, item interface{}) bool {
	switch c := container.(type) {
	case string:
		s, ok := item.(string)
		return ok && strings.Contains(c, s)
	case []interface{}:
		for _, e := range c {
			if equalValues(e, item) {
				return true
			}
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
