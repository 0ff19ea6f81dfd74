package webrunner

import (
	"context"
	"fmt"

	"github.com/webrunner/engine/ai"
	"github.com/webrunner/engine/corelog"
	"github.com/webrunner/engine/dynamic"
	"github.com/webrunner/engine/events"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/idgen"
	"github.com/webrunner/engine/provider"
	"github.com/webrunner/engine/step"
	"github.com/webrunner/engine/strategy"
	"github.com/webrunner/engine/task"
)

// Engine wires the engine's packages together into a single embeddable
// unit: a provider registry and health cache feeding a strategy Selector, a
// Step Executor built on that selector, a Task Executor driving static
// plans through the Step Executor, an event bus both executors emit
// progress on, and (when an ai.Oracle is supplied) a Dynamic Executor for
// AI-feedback runs. Grounded on the teacher's top-level wiring style in
// core/config.go's NewConfig + the agent/tool registry pattern, generalized
// from "framework singleton" to "one Engine per embedder, no globals".
type Engine struct {
	Config   *Config
	Registry *provider.Registry
	Health   *provider.HealthCache
	Selector *strategy.Selector
	Bus      *events.Bus
	IDs      idgen.Generator
	Logger   corelog.Logger

	StepExecutor    *step.Executor
	TaskExecutor    *task.Executor
	DynamicExecutor *dynamic.Executor // nil unless built with an ai.Oracle (WithOracle)
}

// EngineOption customizes New beyond Config.
type EngineOption func(*engineBuild)

type engineBuild struct {
	oracle    ai.Oracle
	extractor dynamic.PageStateExtractor
	ids       idgen.Generator
	criteria  task.CriteriaFunc
}

// WithOracle supplies the AI Oracle backing the Dynamic Executor. Without
// it, Engine.DynamicExecutor stays nil and ExecuteGoal returns an error.
func WithOracle(o ai.Oracle) EngineOption {
	return func(b *engineBuild) { b.oracle = o }
}

// WithPageStateExtractor overrides the Dynamic Executor's default
// golang.org/x/net/html-based page-state extractor.
func WithPageStateExtractor(e dynamic.PageStateExtractor) EngineOption {
	return func(b *engineBuild) { b.extractor = e }
}

// WithIDGenerator overrides the default uuid-backed idgen.Generator, e.g.
// with idgen.Sequential for deterministic replay (spec §9 Open Question).
func WithIDGenerator(g idgen.Generator) EngineOption {
	return func(b *engineBuild) { b.ids = g }
}

// WithCriteriaFunc overrides how the Task Executor derives each step's
// strategy.SelectionCriteria; nil uses the zero value for every step.
func WithCriteriaFunc(f task.CriteriaFunc) EngineOption {
	return func(b *engineBuild) { b.criteria = f }
}

// New builds an Engine from cfg (nil uses NewConfig(): defaults overlaid
// with WEBRUNNER_* environment variables) with no
// providers registered yet; call RegisterProvider before running any task.
func New(cfg *Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		var err error
		if cfg, err = NewConfig(); err != nil {
			return nil, err
		}
	}

	build := &engineBuild{}
	for _, opt := range opts {
		opt(build)
	}
	if build.ids == nil {
		build.ids = idgen.UUID{}
	}

	logger := cfg.logger
	if logger == nil {
		logger = corelog.NewProductionLogger("webrunner", cfg.LogLevel, cfg.LogFormat, cfg.LogLevel == "debug")
	}

	registry := provider.NewRegistry()
	health := provider.NewHealthCache(cfg.ProviderHealthTTL)
	selector := strategy.NewSelector(registry, health)
	bus := events.NewBus(events.WithHistorySize(cfg.EventHistorySize))

	stepExec := step.NewExecutor(selector, cfg.StepRetry, build.ids, &cfg.CircuitBreaker)
	idFunc := build.ids.NewID
	taskExec := task.NewExecutor(stepExec, bus, build.criteria, idFunc)

	e := &Engine{
		Config:       cfg,
		Registry:     registry,
		Health:       health,
		Selector:     selector,
		Bus:          bus,
		IDs:          build.ids,
		Logger:       logger,
		StepExecutor: stepExec,
		TaskExecutor: taskExec,
	}

	if build.oracle != nil {
		e.DynamicExecutor = dynamic.NewExecutor(stepExec, build.oracle, build.extractor, bus, idFunc)
	}

	return e, nil
}

// RegisterProvider adds p to the registry under strat's tag, returning any
// provider it replaces (spec §4.2/§4.3).
func (e *Engine) RegisterProvider(p provider.Provider, strat strategy.Strategy) provider.Provider {
	return e.Registry.Register(p, strat.Tag())
}

// ExecuteTask runs t to completion (or pause/wait/cancel) via the static
// Task Executor (spec §4.6).
func (e *Engine) ExecuteTask(ctx context.Context, t *task.Task) execresult.Result {
	return e.TaskExecutor.Execute(ctx, t)
}

// ExecuteGoal runs goal to completion via the Dynamic (AI-feedback)
// Executor (spec §4.7). It returns an error if the Engine was built without
// WithOracle.
func (e *Engine) ExecuteGoal(ctx context.Context, taskID, goal string) (dynamic.Result, error) {
	if e.DynamicExecutor == nil {
		return dynamic.Result{}, fmt.Errorf("webrunner: no ai.Oracle configured; build the Engine with webrunner.WithOracle")
	}
	dctx := dynamic.NewContext(goal, e.Config.Dynamic)
	return e.DynamicExecutor.ExecuteWithFeedback(ctx, taskID, dctx), nil
}

// NewTask builds a Task with an engine-generated ID, ready for
// ExecuteTask.
func (e *Engine) NewTask(goal string, steps []*step.Step) *task.Task {
	return task.NewTask(e.IDs.NewID(), goal, steps)
}
