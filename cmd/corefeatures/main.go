// Command corefeatures extracts core and exterior composition features from a
// directory of PDB structures and writes them as a table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tikz/corefeatures/config"
	"github.com/tikz/corefeatures/pipeline"
	"github.com/tikz/corefeatures/sasa"
	"github.com/tikz/corefeatures/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes a whole extraction and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("corefeatures", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "YAML configuration file (optional, COREFEATURES_* variables override it)")
	workers := flags.Int("workers", 0, "number of structures processed in parallel (overrides the configuration)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "corefeatures: %v\n", err)
		return 1
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	logger := telemetry.NewLogger(cfg.Logging, stderr)
	slog.SetDefault(logger)

	tracing, err := telemetry.NewTracing(cfg.Telemetry.TraceFile)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	metrics := telemetry.NewMetrics()

	msms, err := sasa.NewMSMS(cfg.MSMS.Dir, cfg.MSMS.PDBToXYZR, cfg.MSMS.Exe, cfg.ScratchDir, cfg.MSMS.Timeout)
	if err != nil {
		logger.Error("Failed to initialize MSMS", slog.String("error", err.Error()))
		return 1
	}

	p, err := pipeline.New(cfg, msms,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithTracer(tracing.Tracer("github.com/tikz/corefeatures/pipeline")))
	if err != nil {
		logger.Error("Invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	report, err := p.Run(ctx)
	if cfg.Telemetry.MetricsFile != "" {
		if merr := metrics.WriteTextfile(cfg.Telemetry.MetricsFile); merr != nil {
			logger.Warn("Failed to write metrics", slog.String("error", merr.Error()))
		}
	}
	if err != nil {
		var cerr *config.Error
		switch {
		case errors.As(err, &cerr):
			logger.Error("Invalid configuration", slog.String("error", err.Error()))
		case errors.Is(err, context.Canceled):
			logger.Error("Run interrupted")
		default:
			logger.Error("Run failed", slog.String("error", err.Error()))
		}
		return 1
	}

	for _, f := range report.Failures {
		logger.Warn("Structure skipped",
			slog.String("structure", f.ID),
			slog.String("stage", f.Stage),
			slog.String("error", f.Err.Error()))
	}

	return 0
}
