package step

import (
	"context"
	"fmt"
	"time"

	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/idgen"
	"github.com/webrunner/engine/provider"
	"github.com/webrunner/engine/resilience"
	"github.com/webrunner/engine/strategy"
)

// Selector is the subset of strategy.Selector the Step Executor needs,
// named here so tests can substitute a fake without pulling in the
// strategy package's registry machinery.
type Selector interface {
	Select(ctx context.Context, criteria strategy.SelectionCriteria) (strategy.Strategy, provider.Provider, bool)
	Fallback(ctx context.Context, current strategy.Strategy, retryable bool, criteria strategy.SelectionCriteria) (strategy.Strategy, provider.Provider, bool)
}

// ExecutorConfig tunes the retry/fallback loop. Delays are monotonic
// non-decreasing across retries on the same strategy, per spec §4.5.
type ExecutorConfig struct {
	MaxRetries    int
	RetryDelay    time.Duration
	BackoffFactor float64
}

// DefaultExecutorConfig matches the spec's stated defaults: 2 retries, 1s
// base delay.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{MaxRetries: 2, RetryDelay: 1 * time.Second, BackoffFactor: 1.0}
}

// Executor runs a Step to completion: selecting a provider, executing the
// action, retrying in place on retryable failures, and falling back to the
// next strategy once retries on the current one are exhausted.
type Executor struct {
	selector      Selector
	action        *ActionExecutor
	config        ExecutorConfig
	ids           idgen.Generator
	breakerConfig resilience.CircuitBreakerConfig
	breakers      map[string]*resilience.CircuitBreaker
}

// NewExecutor builds a Step Executor. breakerConfig, if non-nil, templates
// every per-provider circuit breaker this executor creates (Name is
// overwritten per provider); nil uses resilience.DefaultCircuitBreakerConfig.
func NewExecutor(selector Selector, config ExecutorConfig, ids idgen.Generator, breakerConfig *resilience.CircuitBreakerConfig) *Executor {
	if ids == nil {
		ids = idgen.UUID{}
	}
	var template resilience.CircuitBreakerConfig
	if breakerConfig != nil {
		template = *breakerConfig
	} else {
		template = *resilience.DefaultCircuitBreakerConfig("")
	}
	return &Executor{
		selector:      selector,
		action:        NewActionExecutor(),
		config:        config,
		ids:           ids,
		breakerConfig: template,
		breakers:      make(map[string]*resilience.CircuitBreaker),
	}
}

// breakerFor returns (creating if needed) the circuit breaker tracking a
// named provider's health across steps sharing this executor.
func (e *Executor) breakerFor(name string) *resilience.CircuitBreaker {
	if cb, ok := e.breakers[name]; ok {
		return cb
	}
	cfg := e.breakerConfig
	cfg.Name = name
	cb := resilience.NewCircuitBreaker(&cfg)
	e.breakers[name] = cb
	return cb
}

// FallbackEvent is emitted (via the onFallback callback, if supplied) each
// time the loop advances from one strategy to the next.
type FallbackEvent struct {
	From strategy.Strategy
	To   strategy.Strategy
}

// Execute runs s to completion against criteria, returning the terminal
// ExecutionResult and mutating s's Status/Result/Error/Metadata in place.
// onRetry and onFallback, if non-nil, are invoked for StepRetrying /
// ProviderFallback progress events; they are plain callbacks rather than
// an event-bus dependency so this package stays decoupled from events.
func (e *Executor) Execute(ctx context.Context, s *Step, criteria strategy.SelectionCriteria, onRetry func(retryCount int), onFallback func(FallbackEvent)) execresult.Result {
	s.MarkRunning()

	strat, p, ok := e.selector.Select(ctx, criteria)
	if !ok {
		result := execresult.Failure(fmt.Errorf("no healthy provider available for step %s", s.ID), execresult.CategoryProviderError, nil)
		s.MarkTerminal(StatusFailed, &result, result.Err)
		return result
	}

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			result := execresult.Failure(ctx.Err(), execresult.CategoryUnknown, nil)
			s.MarkTerminal(StatusFailed, &result, result.Err)
			return result
		default:
		}

		cb := e.breakerFor(p.Name())
		var raw execresult.Result
		if cb.CanExecute() {
			raw = e.action.Execute(ctx, s.Action, p, e.ids.NewID())
			if raw.IsSuccess() {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		} else {
			raw = execresult.Failure(resilience.ErrCircuitOpen, execresult.CategoryProviderError, nil)
		}

		if raw.IsSuccess() {
			final := e.finalizeSuccess(s, raw)
			status := StatusSuccess
			var err error
			if final.Kind == execresult.KindFailure {
				status = StatusFailed
				err = final.Err
			}
			s.Metadata.RetryCount = retryCount
			s.Metadata.ProviderUsed = p.Name()
			s.MarkTerminal(status, &final, err)
			return final
		}

		if raw.IsRetryable() && retryCount < e.config.MaxRetries {
			retryCount++
			if onRetry != nil {
				onRetry(retryCount)
			}
			if !sleep(ctx, e.retryDelay(retryCount)) {
				result := execresult.Failure(ctx.Err(), execresult.CategoryUnknown, nil)
				s.MarkTerminal(StatusFailed, &result, result.Err)
				return result
			}
			continue
		}

		nextStrat, nextProvider, ok := e.selector.Fallback(ctx, strat, raw.IsRetryable(), criteria)
		if !ok {
			s.Metadata.RetryCount = retryCount
			s.Metadata.ProviderUsed = p.Name()
			s.MarkTerminal(StatusFailed, &raw, raw.Err)
			return raw
		}
		if onFallback != nil {
			onFallback(FallbackEvent{From: strat, To: nextStrat})
		}
		strat, p = nextStrat, nextProvider
		retryCount = 0
	}
}

// retryDelay computes the delay before the nth retry: flat RetryDelay by
// default, or exponential if BackoffFactor > 1.0, capped implicitly by the
// caller's own judgment (the spec leaves MaxDelay to the caller).
func (e *Executor) retryDelay(retryCount int) time.Duration {
	delay := e.config.RetryDelay
	if e.config.BackoffFactor > 1.0 {
		for i := 1; i < retryCount; i++ {
			delay = time.Duration(float64(delay) * e.config.BackoffFactor)
		}
	}
	return delay
}

// finalizeSuccess validates expected output (warnings only) and evaluates
// failure conditions, converting a Success into a Failure if any condition
// is true (spec §4.5 step 4).
func (e *Executor) finalizeSuccess(s *Step, raw execresult.Result) execresult.Result {
	warnings := validateExpectedOutput(s.ExpectedOutput, raw.Data)
	if len(warnings) > 0 {
		s.Metadata.Warnings = warnings
	}

	if triggered, cond := evaluateFailureConditions(s.FailureConditions, raw.Data); triggered {
		return execresult.Failure(fmt.Errorf("failure condition met: %s %s %v", cond.Field, cond.Op, cond.Value), execresult.CategoryValidationError, raw.Meta)
	}
	return raw
}

// sleep blocks for d or until ctx is canceled, whichever comes first,
// returning false if canceled. This is the step executor's suspension
// point for retry backoff (spec §5).
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
