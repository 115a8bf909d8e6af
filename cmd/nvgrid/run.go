package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"charm.land/log/v2"
	"golang.org/x/sync/errgroup"

	"nvgrid/internal/bridge"
	"nvgrid/internal/chanutil"
	"nvgrid/internal/config"
	"nvgrid/internal/editor"
	"nvgrid/internal/render"
	"nvgrid/internal/style"
)

var runOpts struct {
	address    string
	columns    int
	rows       int
	screenshot string
}

func run(ctx context.Context) error {
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	logger.SetLevel(cfg.LogLevel())
	if debugMode {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Info("configuration", "path", path)

	font := cfg.FontDimensions()
	renderer := render.NewRenderer(render.SoftwareFactory{}, font, cfg.RendererSettings(), logger)
	if bg, err := cfg.BackgroundRGBA(); err == nil {
		fg := style.RGBA{R: 1, G: 1, B: 1, A: 1}
		renderer.SetDefaultColors(style.Colors{Foreground: &fg, Background: &bg})
	} else {
		logger.Warn("ignoring configured background color", "err", err)
	}

	batches := chanutil.NewUnbounded[[]editor.DrawCommand]()
	ed := editor.NewEditor(batches, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	address := runOpts.address
	if address == "" {
		address = cfg.Neovim.Address
	}
	br, err := bridge.New(ctx, bridge.Options{
		Address:   address,
		Command:   cfg.Neovim.Command,
		ExtraArgs: cfg.Neovim.Args,
	}, logger)
	if err != nil {
		return err
	}
	defer br.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return br.Serve(ctx)
	})

	// Editor goroutine: sole owner of grids, windows and the style registry.
	g.Go(func() error {
		defer batches.Close()
		for {
			event, ok := br.Events().Recv()
			if !ok {
				return nil
			}
			ed.HandleRedrawEvent(event)
		}
	})

	g.Go(func() error {
		return renderLoop(ctx, renderer, batches, font, logger)
	})

	if watcher, err := config.NewWatcher(path, func(c *config.Config) {
		renderer.SetSettings(c.RendererSettings())
	}, logger); err == nil {
		defer watcher.Close()
		g.Go(func() error {
			if err := watcher.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Warn("config hot reload unavailable", "err", err)
	}

	go forwardInput(ctx, br, logger)

	if err := br.Attach(bridge.Options{Width: runOpts.columns, Height: runOpts.rows}); err != nil {
		return err
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// renderLoop replays batches and composites a frame at a fixed cadence until
// the batch queue closes. The final frame is optionally written out as PNG.
func renderLoop(ctx context.Context, renderer *render.Renderer, batches *chanutil.Unbounded[[]editor.DrawCommand], font render.Dimensions, logger *log.Logger) error {
	surface := render.NewSoftwareSurface(
		runOpts.columns*int(font.Width),
		runOpts.rows*int(font.Height),
	)

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			saveScreenshot(surface, logger)
			return ctx.Err()

		case now := <-ticker.C:
			for _, batch := range batches.Drain() {
				renderer.HandleBatch(batch)
			}
			renderer.Draw(surface.Canvas(), float32(now.Sub(last).Seconds()))
			last = now

			if batches.Done() {
				saveScreenshot(surface, logger)
				return nil
			}
		}
	}
}

func saveScreenshot(surface *render.SoftwareSurface, logger *log.Logger) {
	if runOpts.screenshot == "" {
		return
	}
	f, err := os.Create(runOpts.screenshot)
	if err != nil {
		logger.Error("could not create screenshot file", "err", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, surface.Image()); err != nil {
		logger.Error("could not encode screenshot", "err", err)
		return
	}
	logger.Info("screenshot written", "path", runOpts.screenshot)
}

// forwardInput sends stdin lines to the remote editor as raw key input, so
// the headless pipeline can be driven from a script.
func forwardInput(ctx context.Context, br *bridge.Bridge, logger *log.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		keys := scanner.Text()
		if keys == "" {
			continue
		}
		if err := br.Input(keys); err != nil {
			logger.Warn("input not delivered", "err", err)
			return
		}
	}
}
