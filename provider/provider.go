// Package provider defines the Provider interface web automation backends
// implement, plus a strategy-tagged registry that tracks provider health.
package provider

import (
	"context"

	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/execresult"
)

// Speed is a coarse relative-speed hint used only as a soft tie-breaker by
// the strategy selector.
type Speed string

const (
	SpeedFast   Speed = "fast"
	SpeedMedium Speed = "medium"
	SpeedSlow   Speed = "slow"
)

// Reliability is a coarse relative-reliability hint.
type Reliability string

const (
	ReliabilityLow    Reliability = "low"
	ReliabilityMedium Reliability = "medium"
	ReliabilityHigh   Reliability = "high"
)

// CapabilitySet is static per provider instance (spec §3 invariant): once
// constructed, a provider's declared capabilities never change.
type CapabilitySet struct {
	SupportsNavigation  bool
	SupportsSearch      bool
	SupportsExtraction  bool
	SupportsInteraction bool
	SupportsPagination  bool
	SupportsFileUpload  bool
	RequiresJavaScript  bool
	Speed               Speed
	Reliability         Reliability
}

// Health is the result of a provider's HealthCheck.
type Health struct {
	Healthy bool
	Details string
}

// Provider is implemented by every web-automation backend (API client,
// HTML scraper, headless browser driver, ...). Within one step the step
// executor has at most one call in flight; the engine does no locking
// around providers, so tasks run concurrently can call the same provider
// at the same time.
type Provider interface {
	Name() string
	Capabilities() CapabilitySet
	CanHandle(a action.Action) bool
	HealthCheck(ctx context.Context) Health
	Execute(ctx context.Context, a action.Action) execresult.Result
}

// capabilityFlag reports whether cap's capability set satisfies the coarse
// action category derived from action.Kind.Capability(), per the mapping in
// spec §4.2: {Navigate,Search→navigation/search; ExtractText,
// ExtractAttribute→extraction; Click,Type→interaction; Wait→always}.
func capabilityFlag(caps CapabilitySet, category string) bool {
	switch category {
	case "navigation":
		return caps.SupportsNavigation || caps.SupportsSearch
	case "extraction":
		return caps.SupportsExtraction
	case "interaction":
		return caps.SupportsInteraction
	case "always":
		return true
	default:
		return false
	}
}

// CanHandleByCapability is a reusable CanHandle implementation providers can
// delegate to instead of hand-rolling the kind/capability mapping.
func CanHandleByCapability(caps CapabilitySet, a action.Action) bool {
	return capabilityFlag(caps, a.Kind().Capability())
}
