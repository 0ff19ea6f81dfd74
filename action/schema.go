package action

// paramSchemas holds the raw JSON Schema document for each kind's params
// record. "additionalProperties": false enforces the "no unknown keys"
// validation rule; "required" enforces required params; enum constraints
// enforce declared enum values. Defaults for optional fields are merged in
// by NewAction before validation; the schemas themselves declare no defaults.
var paramSchemas = map[Kind]string{
	Navigate: `{
		"type": "object",
		"properties": {
			"url": {"type": "string", "minLength": 1},
			"waitUntil": {"type": "string", "enum": ["load", "domcontentloaded", "networkidle"]}
		},
		"required": ["url"],
		"additionalProperties": false
	}`,
	Click: `{
		"type": "object",
		"properties": {
			"selector": {"type": "string", "minLength": 1}
		},
		"required": ["selector"],
		"additionalProperties": false
	}`,
	Type: `{
		"type": "object",
		"properties": {
			"selector": {"type": "string", "minLength": 1},
			"text": {"type": "string"},
			"delay": {"type": "number", "minimum": 0}
		},
		"required": ["selector", "text"],
		"additionalProperties": false
	}`,
	ExtractText: `{
		"type": "object",
		"properties": {
			"selector": {"type": "string", "minLength": 1}
		},
		"required": ["selector"],
		"additionalProperties": false
	}`,
	ExtractAttribute: `{
		"type": "object",
		"properties": {
			"selector": {"type": "string", "minLength": 1},
			"attribute": {"type": "string", "minLength": 1}
		},
		"required": ["selector", "attribute"],
		"additionalProperties": false
	}`,
	Wait: `{
		"type": "object",
		"properties": {
			"selector": {"type": "string"},
			"timeoutMs": {"type": "number", "minimum": 0}
		},
		"required": [],
		"additionalProperties": false
	}`,
	Search: `{
		"type": "object",
		"properties": {
			"query": {"type": "string", "minLength": 1},
			"engine": {"type": "string", "enum": ["default", "site", "image"]}
		},
		"required": ["query"],
		"additionalProperties": false
	}`,
}

// defaults are applied to params before schema validation so optional
// fields with declared defaults are present for OutputShape/step-executor
// consumers without requiring the caller to supply them.
var defaults = map[Kind]map[string]interface{}{
	Navigate: {"waitUntil": "load"},
	Type:     {"delay": float64(0)},
	Wait:     {"timeoutMs": float64(5000)},
	Search:   {"engine": "default"},
}
