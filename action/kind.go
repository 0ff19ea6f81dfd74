package action

// Kind is the closed set of action kinds the engine can execute. Any value
// outside this set is rejected by NewAction before a schema is even
// consulted.
type Kind string

const (
	Navigate         Kind = "Navigate"
	Click            Kind = "Click"
	Type             Kind = "Type"
	ExtractText      Kind = "ExtractText"
	ExtractAttribute Kind = "ExtractAttribute"
	Wait             Kind = "Wait"
	Search           Kind = "Search"
)

func (k Kind) valid() bool {
	switch k {
	case Navigate, Click, Type, ExtractText, ExtractAttribute, Wait, Search:
		return true
	default:
		return false
	}
}

// capability is the coarse action category used by Provider.CanHandle's
// capability mapping (spec §4.2).
type capability string

const (
	capNavigation capability = "navigation"
	capExtraction capability = "extraction"
	capInteraction capability = "interaction"
	capAlways      capability = "always"
)

var kindCapability = map[Kind]capability{
	Navigate:         capNavigation,
	Search:           capNavigation,
	ExtractText:      capExtraction,
	ExtractAttribute: capExtraction,
	Click:            capInteraction,
	Type:             capInteraction,
	Wait:             capAlways,
}

// Capability returns the coarse capability category an action kind falls
// under, per the mapping {Navigate,Search→navigation; ExtractText,
// ExtractAttribute→extraction; Click,Type→interaction; Wait→always}.
func (k Kind) Capability() string {
	return string(kindCapability[k])
}

// OutputField describes one field of a kind's declared output shape: the
// field name and its expected Go-ish type tag ("string", "number", "bool",
// "array", "object").
type OutputField struct {
	Name string
	Type string
}

var outputShapes = map[Kind][]OutputField{
	Navigate:         {{Name: "url", Type: "string"}, {Name: "statusCode", Type: "number"}},
	Click:            {{Name: "clicked", Type: "bool"}},
	Type:             {{Name: "typed", Type: "bool"}},
	ExtractText:      {{Name: "text", Type: "string"}},
	ExtractAttribute: {{Name: "value", Type: "string"}},
	Wait:             {{Name: "waited", Type: "bool"}},
	Search:           {{Name: "results", Type: "array"}},
}

// OutputShape returns the declared output record shape for kind, used by
// the step executor to validate a provider's result data against what the
// step expects.
func OutputShape(kind Kind) []OutputField {
	shape := outputShapes[kind]
	out := make([]OutputField, len(shape))
	copy(out, shape)
	return out
}
