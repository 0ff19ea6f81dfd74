package execresult

import "strings"

// keywordTable maps a Category to substrings searched for (case-insensitive)
// in an error's message when the provider hasn't declared one itself. Order
// matters: the first matching category wins, so more specific categories
// are listed before Unknown.
var keywordTable = []struct {
	category Category
	keywords []string
}{
	{CategoryTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{CategorySelectorNotFound, []string{"selector not found", "no such element", "element not found"}},
	{CategoryNetwork, []string{"connection refused", "connection reset", "no such host", "network", "dns"}},
	{CategoryInvalidInput, []string{"invalid input", "invalid parameter", "bad request"}},
	{CategoryValidationError, []string{"validation failed", "schema violation", "required field"}},
	{CategoryProviderError, []string{"provider error", "internal server error", "upstream error"}},
}

// Classify derives a Category for err by substring matching its message
// against the keyword table (spec §7(b) fallback). Callers that have a
// provider-declared category should prefer it over calling Classify; this
// is used only when the provider raised a bare error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, entry := range keywordTable {
		for _, kw := range entry.keywords {
			if strings.Contains(msg, kw) {
				return entry.category
			}
		}
	}
	return CategoryUnknown
}
