// Command fdtd-headless runs a simulation with no viewer window, reporting
// a wall-clock/simulated-time throughput factor at the end. Grounded on
// original_source/src/main.rs's HEADLESS branch.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gekko3d/fdtd-core/internal/applog"
	"github.com/gekko3d/fdtd-core/internal/config"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/engine"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/params"
	"github.com/gekko3d/fdtd-core/pkg/fdtd/source"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := applog.NewDefaultLogger("fdtd-headless", false)

	p, err := params.Derive(cfg.RoomWidth, cfg.RoomHeight, cfg.RoomDepth, cfg.MaxFrequency, cfg.AirDampening, 0, 0)
	if err != nil {
		return fmt.Errorf("derive parameters: %w", err)
	}
	logger.Infof("room %gx%gx%g m, grid %dx%dx%d (%d cells)", p.Width, p.Height, p.Depth, p.W, p.H, p.D, p.N)

	e, err := engine.New(context.Background(), p, engine.NewSplitScheme(), engine.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer e.Close()

	if err := e.AddSource(source.Source{
		Position:  [3]int{p.W / 2, p.H / 2, p.D / 2},
		Frequency: 200,
		Pulses:    0,
	}); err != nil {
		return fmt.Errorf("add source: %w", err)
	}

	logger.Infof("Starting simulation!")
	progress := applog.NewProgress(logger)
	for i := 0; i < cfg.SimIterations; i++ {
		if err := e.Step(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	progress.ReportFactor(e.Time())
	logger.Infof("Ran simulation!")
	return nil
}
