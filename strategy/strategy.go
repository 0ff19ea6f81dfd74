// Package strategy implements the Strategy Selector: given a selection
// criteria record, it picks the highest-priority healthy provider, and
// advances through the priority order on fallback. The Action itself is not
// consulted: a chosen provider that cannot handle it is only detected when
// the Action Executor calls CanHandle.
package strategy

import "github.com/webrunner/engine/provider"

// Strategy is one of the three fixed automation strategies, with a default
// priority order API < Scraper < Browser (lower value = higher priority).
type Strategy int

const (
	API Strategy = iota
	Scraper
	Browser
)

func (s Strategy) String() string {
	switch s {
	case API:
		return "API"
	case Scraper:
		return "Scraper"
	case Browser:
		return "Browser"
	default:
		return "Unknown"
	}
}

// Tag converts a Strategy to the provider.Tag it's registered under.
func (s Strategy) Tag() provider.Tag {
	return provider.Tag(s.String())
}

// DefaultPriority is the fixed default priority order, lowest index first.
var DefaultPriority = []Strategy{API, Scraper, Browser}
