package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/execresult"
)

type fakeProvider struct {
	name    string
	caps    CapabilitySet
	healthy bool
}

func (f *fakeProvider) Name() string               { return f.name }
func (f *fakeProvider) Capabilities() CapabilitySet { return f.caps }
func (f *fakeProvider) CanHandle(a action.Action) bool {
	return CanHandleByCapability(f.caps, a)
}
func (f *fakeProvider) HealthCheck(ctx context.Context) Health {
	return Health{Healthy: f.healthy, Details: "fake"}
}
func (f *fakeProvider) Execute(ctx context.Context, a action.Action) execresult.Result {
	return execresult.Success(nil, nil)
}

func TestCanHandleByCapabilityMapping(t *testing.T) {
	caps := CapabilitySet{SupportsNavigation: true, SupportsInteraction: true}

	nav, err := action.NewAction(action.Navigate, map[string]interface{}{"url": "https://example.com"})
	require.NoError(t, err)
	assert.True(t, CanHandleByCapability(caps, nav))

	extract, err := action.NewAction(action.ExtractText, map[string]interface{}{"selector": "#x"})
	require.NoError(t, err)
	assert.False(t, CanHandleByCapability(caps, extract))

	click, err := action.NewAction(action.Click, map[string]interface{}{"selector": "#x"})
	require.NoError(t, err)
	assert.True(t, CanHandleByCapability(caps, click))

	wait, err := action.NewAction(action.Wait, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, CanHandleByCapability(caps, wait))
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p1 := &fakeProvider{name: "api-v1", healthy: true}

	prior := r.Register(p1, Tag("API"))
	assert.Nil(t, prior)
	assert.Equal(t, p1, r.Get(Tag("API")))
	assert.Equal(t, p1, r.GetByName("api-v1"))
}

func TestRegistryReplacesAndReturnsPrior(t *testing.T) {
	r := NewRegistry()
	p1 := &fakeProvider{name: "api-v1", healthy: true}
	p2 := &fakeProvider{name: "api-v2", healthy: true}

	r.Register(p1, Tag("API"))
	prior := r.Register(p2, Tag("API"))

	assert.Equal(t, p1, prior)
	assert.Equal(t, p2, r.Get(Tag("API")))
}

func TestRegistryAllIsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeProvider{name: "a", healthy: true}, Tag("API"))
	r.Register(&fakeProvider{name: "b", healthy: true}, Tag("Scraper"))

	all := r.All()
	assert.Len(t, all, 2)
}

func TestHealthCacheNonPositiveTTLAlwaysChecksLive(t *testing.T) {
	calls := 0
	p := &countingHealthProvider{fakeProvider: fakeProvider{name: "p", healthy: true}, calls: &calls}

	cache := NewHealthCache(0) // disabled: always live
	cache.Check(context.Background(), p)
	cache.Check(context.Background(), p)
	assert.Equal(t, 2, calls)
}

type countingHealthProvider struct {
	fakeProvider
	calls *int
}

func (c *countingHealthProvider) HealthCheck(ctx context.Context) Health {
	*c.calls++
	return Health{Healthy: true}
}
