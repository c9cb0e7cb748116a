//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"pcbkern/app"
	"pcbkern/hal"
	"pcbkern/internal/buildinfo"
	"pcbkern/tracing"
)

func main() {
	var hcfg hal.HeadlessConfig
	var configPath, traceFile string
	var steps int
	var trace bool
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&steps, "steps", app.DefaultStepBudget, "Kernel steps per frame.")
	flag.StringVar(&configPath, "config", "", "YAML configuration file.")
	flag.BoolVar(&trace, "trace", false, "Export process spans.")
	flag.StringVar(&traceFile, "trace-file", "", "Write spans to this file instead of stdout.")
	flag.Parse()

	if err := run(hcfg, configPath, steps, trace, traceFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(hcfg hal.HeadlessConfig, configPath string, steps int, trace bool, traceFile string) error {
	cfg := app.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = app.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if trace {
		cfg.Trace.Enabled = true
	}
	if traceFile != "" {
		cfg.Trace.File = traceFile
	}

	if cfg.Trace.Enabled {
		shutdown, err := tracing.Init("pcbkern", buildinfo.Short(), cfg.Trace.File)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown(context.Background())
	}

	var sys *app.System
	defer func() {
		if sys != nil {
			sys.Close()
		}
	}()
	newApp := func(h hal.HAL) func() error {
		var err error
		if sys, err = app.New(h, cfg, steps); err != nil {
			return func() error { return err }
		}
		return sys.Step
	}

	if hcfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, hcfg); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
	return hal.RunWindow(newApp)
}
