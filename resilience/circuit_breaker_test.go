package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerStartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("provider-a"))
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.CanExecute())
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{Name: "p", FailureThreshold: 3, SleepWindow: time.Hour, HalfOpenRequests: 1})

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.CanExecute())
}

func TestCircuitBreakerHalfOpenAfterSleepWindow(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{Name: "p", FailureThreshold: 1, SleepWindow: 10 * time.Millisecond, HalfOpenRequests: 1})
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.CanExecute())
	assert.Equal(t, StateHalfOpen, cb.State())
}

func TestCircuitBreakerHalfOpenSuccessCloses(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{Name: "p", FailureThreshold: 1, SleepWindow: time.Millisecond, HalfOpenRequests: 1})
	cb.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	assert.True(t, cb.CanExecute())

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.CanExecute())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{Name: "p", FailureThreshold: 1, SleepWindow: time.Millisecond, HalfOpenRequests: 1})
	cb.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	assert.True(t, cb.CanExecute())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.CanExecute())
}

func TestCircuitBreakerHalfOpenLimitsConcurrentProbes(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{Name: "p", FailureThreshold: 1, SleepWindow: time.Millisecond, HalfOpenRequests: 1})
	cb.RecordFailure()
	time.Sleep(5 * time.Millisecond)

	assert.True(t, cb.CanExecute())  // the one allowed probe
	assert.False(t, cb.CanExecute()) // second concurrent probe rejected
}

func TestCircuitBreakerHealthyMirrorsCanExecute(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{Name: "p", FailureThreshold: 1, SleepWindow: time.Hour, HalfOpenRequests: 1})
	assert.True(t, cb.Healthy())
	cb.RecordFailure()
	assert.False(t, cb.Healthy())
}
