package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libdb.so/substrip"
	"libdb.so/substrip/internal/serialstrip"
)

var (
	config  = "substrip.toml"
	verbose = false
	hold    = false
	dryRun  = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.BoolVar(&hold, "hold", hold, "keep the strips open until interrupted")
	pflag.BoolVar(&dryRun, "dry-run", dryRun, "log frames instead of sending them")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Frames are the output of a dry run, so they go to stdout regardless of
	// the log level.
	frames := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var controllers []*serialstrip.Controller

	layout, err := cfg.Build(func(s substrip.StripConfig) (substrip.Transmitter, error) {
		if dryRun || s.Device == substrip.DryRunDevice {
			return &substrip.FrameLogger{Logger: frames, Name: s.Name}, nil
		}

		c, err := serialstrip.Open(s.Device, s.Baud, uint16(s.Pixels), slog.Default().With("strip", s.Name))
		if err != nil {
			return nil, err
		}
		if s.AckTimeout > 0 {
			c.AckTimeout = time.Duration(s.AckTimeout)
		}

		controllers = append(controllers, c)
		return c, nil
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to build layout: %w", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	for _, c := range controllers {
		c := c
		errg.Go(func() error { return c.Run(ctx) })
	}

	errg.Go(func() error {
		for _, c := range controllers {
			if err := c.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize controller: %w", err)
			}
		}

		if err := layout.Paint(); err != nil {
			return err
		}

		if hold {
			<-ctx.Done()
		}
		return context.Canceled
	})

	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("substrip failed: %w", err)
	}

	return nil
}

func readConfig() (*substrip.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return substrip.ParseConfig(f)
}
