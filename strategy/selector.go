package strategy

import (
	"context"

	"github.com/webrunner/engine/provider"
)

// Selector picks a provider for an action given a selection criteria
// record and a fallback chain on retryable failure. It is stateless: every
// decision is a pure function of its inputs plus a registry snapshot read
// at call time (spec §4.3 invariant), so concurrent callers never
// interfere with each other through the selector itself.
type Selector struct {
	registry *provider.Registry
	health   *provider.HealthCache
}

// NewSelector builds a Selector over registry. health may be nil, in which
// case every health check hits the provider live.
func NewSelector(registry *provider.Registry, health *provider.HealthCache) *Selector {
	return &Selector{registry: registry, health: health}
}

func (s *Selector) isHealthy(ctx context.Context, p provider.Provider) bool {
	if s.health != nil {
		return s.health.Check(ctx, p).Healthy
	}
	return p.HealthCheck(ctx).Healthy
}

func (s *Selector) satisfiesHardRequirements(criteria SelectionCriteria, caps provider.CapabilitySet) bool {
	if criteria.RequiresJavaScript && !caps.RequiresJavaScript {
		return false
	}
	if criteria.RequiresInteraction && !caps.SupportsInteraction {
		return false
	}
	if criteria.RequiresFileUpload && !caps.SupportsFileUpload {
		return false
	}
	return true
}

// candidateOrder returns the priority order to walk: the intersection of
// DefaultPriority and ForceStrategies if ForceStrategies is set, otherwise
// DefaultPriority itself.
func candidateOrder(criteria SelectionCriteria) []Strategy {
	forced := criteria.forcedSet()
	if forced == nil {
		return DefaultPriority
	}
	var order []Strategy
	for _, s := range DefaultPriority {
		if forced[s] {
			order = append(order, s)
		}
	}
	return order
}

// Select walks the priority order (or the forced intersection) and returns
// the first strategy/provider pair that is not excluded, is registered, is
// healthy, and satisfies criteria's hard requirements. ok is false if no
// strategy survives.
func (s *Selector) Select(ctx context.Context, criteria SelectionCriteria) (Strategy, provider.Provider, bool) {
	for _, strat := range candidateOrder(criteria) {
		if criteria.excludes(strat) {
			continue
		}
		p := s.registry.Get(strat.Tag())
		if p == nil {
			continue
		}
		if !s.satisfiesHardRequirements(criteria, p.Capabilities()) {
			continue
		}
		if !s.isHealthy(ctx, p) {
			continue
		}
		return strat, p, true
	}
	return 0, nil, false
}

// Fallback advances past current in the priority order after a retryable
// error and returns the next available strategy/provider pair. If err is
// not retryable, or the priority order is exhausted, ok is false.
func (s *Selector) Fallback(ctx context.Context, current Strategy, retryable bool, criteria SelectionCriteria) (Strategy, provider.Provider, bool) {
	if !retryable {
		return 0, nil, false
	}

	order := candidateOrder(criteria)
	startIdx := -1
	for i, strat := range order {
		if strat == current {
			startIdx = i
			break
		}
	}

	for i := startIdx + 1; i < len(order); i++ {
		strat := order[i]
		if criteria.excludes(strat) {
			continue
		}
		p := s.registry.Get(strat.Tag())
		if p == nil {
			continue
		}
		if !s.satisfiesHardRequirements(criteria, p.Capabilities()) {
			continue
		}
		if !s.isHealthy(ctx, p) {
			continue
		}
		return strat, p, true
	}
	return 0, nil, false
}
