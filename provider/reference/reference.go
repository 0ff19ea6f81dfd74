// Package reference provides small, deterministic Provider implementations
// used by tests across the engine (strategy, step, task, dynamic) and by
// the demo CLI when no real backend is configured.
package reference

import (
	"context"

	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/provider"
)

// Scripted is a Provider whose Execute is driven by a caller-supplied
// function, letting tests script exact sequences of results (including
// failures) without a real browser or HTTP backend.
type Scripted struct {
	NameValue string
	Caps      provider.CapabilitySet
	IsHealthy bool
	ExecuteFn func(ctx context.Context, a action.Action) execresult.Result
	HealthFn  func(ctx context.Context) provider.Health
}

// Name returns the provider's registered name.
func (s *Scripted) Name() string { return s.NameValue }

// Capabilities returns the static capability set supplied at construction.
func (s *Scripted) Capabilities() provider.CapabilitySet { return s.Caps }

// CanHandle delegates to the shared capability-mapping helper.
func (s *Scripted) CanHandle(a action.Action) bool {
	return provider.CanHandleByCapability(s.Caps, a)
}

// HealthCheck calls HealthFn if supplied, otherwise returns IsHealthy.
func (s *Scripted) HealthCheck(ctx context.Context) provider.Health {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return provider.Health{Healthy: s.IsHealthy, Details: "scripted"}
}

// Execute calls ExecuteFn if supplied, otherwise returns an empty Success.
func (s *Scripted) Execute(ctx context.Context, a action.Action) execresult.Result {
	if s.ExecuteFn != nil {
		return s.ExecuteFn(ctx, a)
	}
	return execresult.Success(nil, nil)
}

// FullCapabilities returns a capability set that satisfies every action
// kind, a convenient default for tests that don't care about capability
// gating.
func FullCapabilities() provider.CapabilitySet {
	return provider.CapabilitySet{
		SupportsNavigation:  true,
		SupportsSearch:      true,
		SupportsExtraction:  true,
		SupportsInteraction: true,
		SupportsPagination:  true,
		SupportsFileUpload:  true,
		RequiresJavaScript:  false,
		Speed:               provider.SpeedFast,
		Reliability:         provider.ReliabilityHigh,
	}
}
