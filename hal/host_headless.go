//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	// Ticks stops the runner after that many frames; 0 runs until ctx ends.
	Ticks uint64
	// Out receives log lines. Nil means stdout.
	Out io.Writer
}

// RunHeadless runs the kernel without opening a window. Every frame
// advances the host clock and calls step once.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	h := newHost(out)
	step := newApp(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var frame uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.stepN(1)
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			frame++
			if cfg.Ticks > 0 && frame >= cfg.Ticks {
				return nil
			}
		}
	}
}
