package step

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/idgen"
	"github.com/webrunner/engine/provider"
	"github.com/webrunner/engine/provider/reference"
	"github.com/webrunner/engine/strategy"
)

func newNavigate(t *testing.T) action.Action {
	t.Helper()
	a, err := action.NewAction(action.Navigate, map[string]interface{}{"url": "https://example.com"})
	require.NoError(t, err)
	return a
}

func registryWith(providers map[strategy.Strategy]provider.Provider) *provider.Registry {
	r := provider.NewRegistry()
	for strat, p := range providers {
		r.Register(p, strat.Tag())
	}
	return r
}

func fastConfig() ExecutorConfig {
	return ExecutorConfig{MaxRetries: 2, RetryDelay: time.Millisecond, BackoffFactor: 1.0}
}

func TestExecuteHappyPath(t *testing.T) {
	p := &reference.Scripted{
		NameValue: "api", Caps: reference.FullCapabilities(), IsHealthy: true,
		ExecuteFn: func(ctx context.Context, a action.Action) execresult.Result {
			return execresult.Success(map[string]interface{}{"url": "https://example.com", "statusCode": float64(200)}, nil)
		},
	}
	reg := registryWith(map[strategy.Strategy]provider.Provider{strategy.API: p})
	sel := strategy.NewSelector(reg, nil)
	exec := NewExecutor(sel, fastConfig(), idgen.UUID{}, nil)

	s := NewStep("step-1", newNavigate(t), "navigate to example")
	result := exec.Execute(context.Background(), s, strategy.SelectionCriteria{}, nil, nil)

	assert.Equal(t, execresult.KindSuccess, result.Kind)
	assert.Equal(t, StatusSuccess, s.Status)
	assert.Equal(t, "api", s.Metadata.ProviderUsed)
	assert.Equal(t, 0, s.Metadata.RetryCount)
}

func TestExecuteRetriesThenFallsBack(t *testing.T) {
	calls := 0
	api := &reference.Scripted{
		NameValue: "api", Caps: reference.FullCapabilities(), IsHealthy: true,
		ExecuteFn: func(ctx context.Context, a action.Action) execresult.Result {
			calls++
			return execresult.Failure(errors.New("dial tcp: connection refused"), execresult.CategoryNetwork, nil)
		},
	}
	scraper := &reference.Scripted{
		NameValue: "scraper", Caps: reference.FullCapabilities(), IsHealthy: true,
		ExecuteFn: func(ctx context.Context, a action.Action) execresult.Result {
			return execresult.Success(map[string]interface{}{"url": "https://example.com", "statusCode": float64(200)}, nil)
		},
	}
	reg := registryWith(map[strategy.Strategy]provider.Provider{strategy.API: api, strategy.Scraper: scraper})
	sel := strategy.NewSelector(reg, nil)
	exec := NewExecutor(sel, fastConfig(), idgen.UUID{}, nil)

	var fallbacks []FallbackEvent
	s := NewStep("step-1", newNavigate(t), "navigate")
	result := exec.Execute(context.Background(), s, strategy.SelectionCriteria{}, nil, func(e FallbackEvent) {
		fallbacks = append(fallbacks, e)
	})

	assert.Equal(t, execresult.KindSuccess, result.Kind)
	assert.Equal(t, "scraper", s.Metadata.ProviderUsed)
	assert.Equal(t, 3, calls) // initial + 2 retries before fallback
	require.Len(t, fallbacks, 1)
	assert.Equal(t, strategy.API, fallbacks[0].From)
	assert.Equal(t, strategy.Scraper, fallbacks[0].To)
}

func TestExecuteNonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	api := &reference.Scripted{
		NameValue: "api", Caps: reference.FullCapabilities(), IsHealthy: true,
		ExecuteFn: func(ctx context.Context, a action.Action) execresult.Result {
			calls++
			return execresult.Failure(errors.New("missing required field"), execresult.CategoryValidationError, nil)
		},
	}
	reg := registryWith(map[strategy.Strategy]provider.Provider{strategy.API: api})
	sel := strategy.NewSelector(reg, nil)
	exec := NewExecutor(sel, fastConfig(), idgen.UUID{}, nil)

	s := NewStep("step-1", newNavigate(t), "navigate")
	result := exec.Execute(context.Background(), s, strategy.SelectionCriteria{}, nil, nil)

	assert.Equal(t, execresult.KindFailure, result.Kind)
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, 1, calls)
}

func TestExecuteFailureConditionConvertsSuccessToFailure(t *testing.T) {
	p := &reference.Scripted{
		NameValue: "api", Caps: reference.FullCapabilities(), IsHealthy: true,
		ExecuteFn: func(ctx context.Context, a action.Action) execresult.Result {
			return execresult.Success(map[string]interface{}{"text": "Out of stock"}, nil)
		},
	}
	reg := registryWith(map[strategy.Strategy]provider.Provider{strategy.API: p})
	sel := strategy.NewSelector(reg, nil)
	exec := NewExecutor(sel, fastConfig(), idgen.UUID{}, nil)

	extractAction, err := action.NewAction(action.ExtractText, map[string]interface{}{"selector": ".availability"})
	require.NoError(t, err)
	s := NewStep("step-1", extractAction, "check availability")
	s.FailureConditions = []FailureCondition{{Field: "text", Op: OpContains, Value: "Out of stock"}}

	result := exec.Execute(context.Background(), s, strategy.SelectionCriteria{}, nil, nil)

	assert.Equal(t, execresult.KindFailure, result.Kind)
	assert.Equal(t, StatusFailed, s.Status)
}

func TestExecuteNoHealthyProviderFailsWithoutRetry(t *testing.T) {
	p := &reference.Scripted{NameValue: "api", Caps: reference.FullCapabilities(), IsHealthy: false}
	reg := registryWith(map[strategy.Strategy]provider.Provider{strategy.API: p})
	sel := strategy.NewSelector(reg, nil)
	exec := NewExecutor(sel, fastConfig(), idgen.UUID{}, nil)

	s := NewStep("step-1", newNavigate(t), "navigate")
	result := exec.Execute(context.Background(), s, strategy.SelectionCriteria{}, nil, nil)

	assert.Equal(t, execresult.KindFailure, result.Kind)
	assert.Equal(t, StatusFailed, s.Status)
}

func TestExecuteRespectsContextCancellationDuringRetryDelay(t *testing.T) {
	p := &reference.Scripted{
		NameValue: "api", Caps: reference.FullCapabilities(), IsHealthy: true,
		ExecuteFn: func(ctx context.Context, a action.Action) execresult.Result {
			return execresult.Failure(errors.New("timeout"), execresult.CategoryTimeout, nil)
		},
	}
	reg := registryWith(map[strategy.Strategy]provider.Provider{strategy.API: p})
	sel := strategy.NewSelector(reg, nil)
	exec := NewExecutor(sel, ExecutorConfig{MaxRetries: 5, RetryDelay: 200 * time.Millisecond, BackoffFactor: 1.0}, idgen.UUID{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s := NewStep("step-1", newNavigate(t), "navigate")

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result := exec.Execute(ctx, s, strategy.SelectionCriteria{}, nil, nil)
	assert.Equal(t, execresult.KindFailure, result.Kind)
	assert.Equal(t, StatusFailed, s.Status)
}
