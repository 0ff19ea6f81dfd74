package main

import (
	"context"
	"fmt"
	"os"

	"github.com/webrunner/engine"
	"github.com/webrunner/engine/action"
	"github.com/webrunner/engine/events"
	"github.com/webrunner/engine/execresult"
	"github.com/webrunner/engine/provider/reference"
	"github.com/webrunner/engine/strategy"
)

// buildEngine wires a webrunner.Engine with a logging demo provider
// registered under every strategy, per the spec's stance that the core
// only commands providers rather than modeling a browser itself: without a
// real backend wired in by the embedder, webrunnerctl still demonstrates
// the full Action/Step/Task/event-bus pipeline against a provider that
// logs what it was asked to do and reports success.
func buildEngine(flags *rootFlags, opts ...webrunner.EngineOption) (*webrunner.Engine, error) {
	cfg, err := webrunner.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("webrunnerctl: build config: %w", err)
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	cfg.LogFormat = flags.logFormat

	e, err := webrunner.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("webrunnerctl: build engine: %w", err)
	}

	demo := &reference.Scripted{
		NameValue: "demo-logger",
		Caps:      reference.FullCapabilities(),
		IsHealthy: true,
		ExecuteFn: func(ctx context.Context, a action.Action) execresult.Result {
			fmt.Fprintf(os.Stderr, "[demo-logger] executing %s %v\n", a.Kind(), a.Params())
			return execresult.Success(map[string]interface{}{"note": "no real provider configured"}, nil)
		},
	}
	for _, strat := range []strategy.Strategy{strategy.API, strategy.Scraper, strategy.Browser} {
		e.RegisterProvider(demo, strat)
	}

	return e, nil
}

// attachEventPrinter subscribes a human-readable printer to every event on
// the bus and returns the Unsubscribe func.
func attachEventPrinter(bus *events.Bus) events.Unsubscribe {
	return bus.SubscribeAny(func(ev events.Event) {
		fmt.Fprintf(os.Stdout, "[%s] %s task=%s %v\n", ev.Timestamp.Format("15:04:05.000"), ev.Type, ev.TaskID, ev.Data)
	})
}
