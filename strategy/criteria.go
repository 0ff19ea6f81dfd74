package strategy

// SelectionCriteria narrows the candidate strategies before priority
// ordering is applied. Hard requirements (RequiresJavaScript,
// RequiresInteraction, RequiresFileUpload) eliminate any strategy whose
// provider capabilities don't satisfy them; PreferredSpeed is a soft hint
// only and never eliminates a candidate.
type SelectionCriteria struct {
	RequiresJavaScript  bool
	RequiresInteraction bool
	RequiresFileUpload  bool
	PreferredSpeed      string // "fast" | "medium" | "slow", soft hint only

	// ExcludeStrategies removes these strategies from consideration
	// entirely, regardless of health or capability.
	ExcludeStrategies []Strategy

	// ForceStrategies, if non-empty, restricts candidates to exactly this
	// set (intersected with the default priority order for ordering).
	ForceStrategies []Strategy
}

func (c SelectionCriteria) excludes(s Strategy) bool {
	for _, excluded := range c.ExcludeStrategies {
		if excluded == s {
			return true
		}
	}
	return false
}

func (c SelectionCriteria) forcedSet() map[Strategy]bool {
	if len(c.ForceStrategies) == 0 {
		return nil
	}
	set := make(map[Strategy]bool, len(c.ForceStrategies))
	for _, s := range c.ForceStrategies {
		set[s] = true
	}
	return set
}
