package step

import (
	"context"
	"fmt"
	"time"

	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/provider"
)

// ActionExecutor confirms the chosen Provider can handle an Action (already
// validated by action.NewAction), calls it, normalizes the raw result, and stamps standard
// metadata (spec §4.4). It holds no state and does not depend on Step at
// all, so it can be exercised directly by the dynamic executor too.
type ActionExecutor struct{}

// NewActionExecutor builds an ActionExecutor. It is stateless; the zero
// value is also usable, this constructor exists for symmetry with the
// other executor types and call sites that expect a constructor.
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// Execute runs a against p, recovering from a panicking provider (spec §7):
// the panic becomes Failure(Unknown) with the original message preserved.
// actionID is stamped onto the result's metadata as "actionId".
func (e *ActionExecutor) Execute(ctx context.Context, a action.Action, p provider.Provider, actionID string) (result execresult.Result) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = execresult.Failure(fmt.Errorf("panic in provider %s: %v", p.Name(), r), execresult.CategoryUnknown, nil)
		}
		result = e.stamp(result, a, p, actionID, time.Since(started))
	}()

	if !p.CanHandle(a) {
		return execresult.Failure(fmt.Errorf("provider %s cannot handle action kind %s", p.Name(), a.Kind()), execresult.CategoryProviderError, nil)
	}

	raw := p.Execute(ctx, a)
	return e.normalize(raw)
}

// normalize classifies a bare Failure whose Category was left empty (the
// provider raised an error without declaring a category) via the keyword
// fallback (spec §7(b)). Every other kind passes through unchanged.
func (e *ActionExecutor) normalize(raw execresult.Result) execresult.Result {
	if raw.Kind == execresult.KindFailure && raw.Category == "" {
		raw.Category = execresult.Classify(raw.Err)
	}
	return raw
}

func (e *ActionExecutor) stamp(r execresult.Result, a action.Action, p provider.Provider, actionID string, elapsed time.Duration) execresult.Result {
	return r.WithMetadata(execresult.Metadata{
		"actionId":     actionID,
		"actionKind":   string(a.Kind()),
		"providerName": p.Name(),
		"durationMs":   elapsed.Milliseconds(),
	})
}
