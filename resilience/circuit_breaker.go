package resilience

import (
	"sync"
	"time"
)

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures a CircuitBreaker. The step executor creates
// one breaker per provider name so a failing provider is cut off without
// affecting its siblings.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	SleepWindow      time.Duration // time in Open before probing Half-Open
	HalfOpenRequests int           // trial requests allowed while Half-Open
}

// DefaultCircuitBreakerConfig mirrors common production defaults.
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SleepWindow:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// CircuitBreaker is a closed/open/half-open breaker: it opens after
// FailureThreshold consecutive failures, waits SleepWindow, then allows a
// limited number of half-open probes before closing again on success or
// reopening on failure. The step executor checks it before each attempt; a
// rejected attempt fails with ErrCircuitOpen as a retryable ProviderError.
// The provider registry and strategy selector do not consult breakers.
type CircuitBreaker struct {
	config *CircuitBreakerConfig

	mu              sync.Mutex
	state           CircuitState
	consecutiveFail int
	openedAt        time.Time
	halfOpenInUse   int
}

// NewCircuitBreaker builds a breaker from config (defaults applied for
// zero-valued fields).
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig("default")
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SleepWindow <= 0 {
		config.SleepWindow = 30 * time.Second
	}
	if config.HalfOpenRequests <= 0 {
		config.HalfOpenRequests = 1
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// CanExecute reports whether a call should be allowed through right now.
// It transitions Open to HalfOpen once SleepWindow has elapsed.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.openedAt) < cb.config.SleepWindow {
			return false
		}
		cb.state = StateHalfOpen
		cb.halfOpenInUse = 0
		fallthrough
	case StateHalfOpen:
		if cb.halfOpenInUse < cb.config.HalfOpenRequests {
			cb.halfOpenInUse++
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess closes the breaker (from any state) and resets counters.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.consecutiveFail = 0
	cb.halfOpenInUse = 0
}

// RecordFailure increments the consecutive-failure count, opening the
// breaker once FailureThreshold is reached. A failure during a half-open
// probe reopens the breaker immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.openedAt = time.Now()
		return
	}

	cb.consecutiveFail++
	if cb.consecutiveFail >= cb.config.FailureThreshold {
		cb.state = StateOpen
		cb.openedAt = time.Now()
	}
}

// State returns the current breaker state, for diagnostics and tests.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Healthy reports whether the breaker currently permits calls. Like
// CanExecute, it may move an Open breaker to HalfOpen and use up a probe.
func (cb *CircuitBreaker) Healthy() bool {
	return cb.CanExecute()
}
