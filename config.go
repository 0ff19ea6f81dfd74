// Package webrunner wires the engine's packages (action, execresult,
// provider, strategy, step, task, dynamic, ai, events, storage) into a
// single embeddable Engine, plus the three-tier Config the teacher's
// core.Config uses: defaults, then environment variables, then functional
// options (spec's ambient "configuration" concern, grounded on
// core/config.go).
package webrunner

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/webrunner/engine/corelog"
	"github.com/webrunner/engine/dynamic"
	"github.com/webrunner/engine/resilience"
	"github.com/webrunner/engine/step"
)

// Config holds the engine's tunables. Three-layer priority, lowest to
// highest: DefaultConfig() values, WEBRUNNER_* environment variables,
// functional Options passed to NewConfig.
type Config struct {
	// StepRetry tunes the Step Executor's retry/fallback loop (spec §4.5).
	StepRetry step.ExecutorConfig

	// ProviderHealthTTL is how long a provider health check result is
	// cached before the next selection re-checks it (spec §4.3).
	ProviderHealthTTL time.Duration

	// CircuitBreaker tunes the per-provider breaker the Step Executor
	// consults before dispatching to a provider.
	CircuitBreaker resilience.CircuitBreakerConfig

	// EventHistorySize bounds the events.Bus ring buffer (spec §9 Open
	// Question decision: configurable, default 100).
	EventHistorySize int

	// Dynamic tunes the Dynamic (AI-feedback) Executor's default run
	// (spec §4.7): iteration cap, wall-clock timeout, cycle threshold.
	Dynamic dynamic.Options

	// LogLevel and LogFormat configure the engine's corelog.Logger.
	LogLevel  string
	LogFormat string

	logger corelog.Logger
}

// Option mutates a Config being built by NewConfig; it runs after
// environment variables have already been applied, so an Option always
// wins.
type Option func(*Config)

// DefaultConfig returns the engine's baseline configuration before
// environment variables or options are applied.
func DefaultConfig() *Config {
	return &Config{
		StepRetry:         step.DefaultExecutorConfig(),
		ProviderHealthTTL: 30 * time.Second,
		CircuitBreaker:    *resilience.DefaultCircuitBreakerConfig("default"),
		EventHistorySize:  100,
		Dynamic:           dynamic.DefaultOptions(),
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadFromEnv overlays WEBRUNNER_* environment variables onto c, matching
// the teacher's manual-getenv style in core/config.go's LoadFromEnv (one
// `if v := os.Getenv(...); v != ""` block per setting). A value that fails
// to parse stops the load and is returned as an error.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("WEBRUNNER_STEP_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("webrunner: WEBRUNNER_STEP_MAX_RETRIES: %w", err)
		}
		c.StepRetry.MaxRetries = n
	}
	if v := os.Getenv("WEBRUNNER_STEP_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("webrunner: WEBRUNNER_STEP_RETRY_DELAY: %w", err)
		}
		c.StepRetry.RetryDelay = d
	}
	if v := os.Getenv("WEBRUNNER_PROVIDER_HEALTH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("webrunner: WEBRUNNER_PROVIDER_HEALTH_TTL: %w", err)
		}
		c.ProviderHealthTTL = d
	}
	if v := os.Getenv("WEBRUNNER_EVENT_HISTORY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("webrunner: WEBRUNNER_EVENT_HISTORY_SIZE: %w", err)
		}
		c.EventHistorySize = n
	}
	if v := os.Getenv("WEBRUNNER_DYNAMIC_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("webrunner: WEBRUNNER_DYNAMIC_MAX_ITERATIONS: %w", err)
		}
		c.Dynamic.MaxIterations = n
	}
	if v := os.Getenv("WEBRUNNER_DYNAMIC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("webrunner: WEBRUNNER_DYNAMIC_TIMEOUT: %w", err)
		}
		c.Dynamic.Timeout = d
	}
	if v := os.Getenv("WEBRUNNER_DYNAMIC_CYCLE_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("webrunner: WEBRUNNER_DYNAMIC_CYCLE_THRESHOLD: %w", err)
		}
		c.Dynamic.CycleThreshold = n
	}
	if v := os.Getenv("WEBRUNNER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WEBRUNNER_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// WithStepRetry overrides the Step Executor's retry/fallback tuning.
func WithStepRetry(cfg step.ExecutorConfig) Option {
	return func(c *Config) { c.StepRetry = cfg }
}

// WithProviderHealthTTL overrides the provider health cache TTL.
func WithProviderHealthTTL(ttl time.Duration) Option {
	return func(c *Config) { c.ProviderHealthTTL = ttl }
}

// WithCircuitBreaker overrides the per-provider circuit breaker tuning.
func WithCircuitBreaker(cfg resilience.CircuitBreakerConfig) Option {
	return func(c *Config) { c.CircuitBreaker = cfg }
}

// WithEventHistorySize overrides the events.Bus ring buffer size.
func WithEventHistorySize(n int) Option {
	return func(c *Config) { c.EventHistorySize = n }
}

// WithDynamicOptions overrides the Dynamic Executor's default run options.
func WithDynamicOptions(opts dynamic.Options) Option {
	return func(c *Config) { c.Dynamic = opts }
}

// WithLogger installs a caller-supplied logger instead of the engine's
// default corelog.ProductionLogger.
func WithLogger(logger corelog.Logger) Option {
	return func(c *Config) { c.logger = logger }
}

// NewConfig builds a Config: defaults, then WEBRUNNER_* environment
// variables, then opts, in that priority order (spec's ambient
// configuration concern, three-tier priority per core/config.go).
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = corelog.NewProductionLogger("webrunner", cfg.LogLevel, cfg.LogFormat, cfg.LogLevel == "debug")
	}
	return cfg, nil
}
