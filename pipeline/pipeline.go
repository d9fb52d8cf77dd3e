// Package pipeline runs feature extraction over a directory of structures.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/tikz/corefeatures/config"
	"github.com/tikz/corefeatures/export"
	"github.com/tikz/corefeatures/features"
	"github.com/tikz/corefeatures/pdb"
	"github.com/tikz/corefeatures/region"
	"github.com/tikz/corefeatures/sasa"
	"github.com/tikz/corefeatures/telemetry"
)

// Pipeline extracts core and exterior features from every structure of a run.
type Pipeline struct {
	cfg     *config.Config
	exposer sasa.Exposer
	props   *features.Properties
	schema  *features.Schema

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics records run metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithTracer sets the tracer for run, structure and stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// New creates a pipeline for a validated configuration. The property table is
// loaded here, so a missing or incomplete table fails before any structure is read.
func New(cfg *config.Config, exposer sasa.Exposer, opts ...Option) (*Pipeline, error) {
	props, err := features.LoadProperties(cfg.PropertyTable)
	if err != nil {
		return nil, &config.Error{Field: "property_table", Err: err}
	}

	p := &Pipeline{
		cfg:     cfg,
		exposer: exposer,
		props:   props,
		schema:  features.NewSchema(props),
		logger:  slog.Default(),
		tracer:  noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Schema returns the column layout of the rows produced by the pipeline.
func (p *Pipeline) Schema() *features.Schema {
	return p.schema
}

// Report summarizes a finished run.
type Report struct {
	RunID    string
	Files    int
	Table    *features.Table
	Failures []*StructureError
	Outputs  []string
	Duration time.Duration
}

// Run processes every structure of the input directory and writes the feature
// table. Failed structures are logged and listed in the report without stopping
// the batch. Rows keep the discovery order regardless of the number of workers.
// When two files share a structure id, only the first in discovery order is processed.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	logger := p.logger.With(slog.String("run_id", report.RunID))

	ctx, span := p.tracer.Start(ctx, "run", trace.WithAttributes(attribute.String("run.id", report.RunID)))
	defer span.End()

	paths, err := Discover(p.cfg.InputDir, p.cfg.InputExt)
	if err != nil {
		return nil, &config.Error{Field: "input_dir", Err: err}
	}
	report.Files = len(paths)
	logger.Info("starting run",
		slog.String("input_dir", p.cfg.InputDir),
		slog.Int("structures", len(paths)),
		slog.Int("workers", p.cfg.Workers))

	rows := make([]features.Row, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(max(p.cfg.Workers, 1))
	seen := make(map[string]string, len(paths))
	for i, path := range paths {
		id := pdb.StructureID(path)
		if first, ok := seen[id]; ok {
			errs[i] = &StructureError{ID: id, Path: path, Stage: StageDiscover,
				Err: fmt.Errorf("%w: already read from %s", ErrDuplicateID, first)}
			p.metrics.Structure(StageDiscover)
			logger.Error("structure failed",
				slog.String("structure", id),
				slog.String("stage", StageDiscover),
				slog.String("error", errs[i].Error()))
			continue
		}
		seen[id] = path

		g.Go(func() error {
			rows[i], errs[i] = p.process(ctx, logger, path)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Table = features.NewTable(p.schema)
	for i := range paths {
		if errs[i] != nil {
			var serr *StructureError
			if !errors.As(errs[i], &serr) {
				serr = &StructureError{ID: pdb.StructureID(paths[i]), Path: paths[i], Err: errs[i]}
			}
			report.Failures = append(report.Failures, serr)
			continue
		}
		if err := report.Table.Append(rows[i]); err != nil {
			return nil, err
		}
	}

	report.Outputs, err = export.Write(p.cfg.OutputDir, p.cfg.OutputName, p.cfg.Formats, report.Table)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write output")
		return report, fmt.Errorf("write output: %w", err)
	}

	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("run.structures", len(paths)),
		attribute.Int("run.failures", len(report.Failures)))
	logger.Info("run finished",
		slog.Int("rows", len(report.Table.Rows)),
		slog.Int("failures", len(report.Failures)),
		slog.Any("outputs", report.Outputs),
		slog.Duration("duration", report.Duration))

	return report, nil
}

// Process extracts the feature row of a single structure file.
func (p *Pipeline) Process(ctx context.Context, path string) (features.Row, error) {
	return p.process(ctx, p.logger, path)
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, path string) (features.Row, error) {
	id := pdb.StructureID(path)
	logger = logger.With(slog.String("structure", id))

	ctx, span := p.tracer.Start(ctx, "structure", trace.WithAttributes(attribute.String("structure.id", id)))
	defer span.End()

	fail := func(stage string, err error) (features.Row, error) {
		span.SetStatus(codes.Error, stage)
		p.metrics.Structure(stage)
		logger.Error("structure failed", slog.String("stage", stage), slog.String("error", err.Error()))
		return features.Row{}, &StructureError{ID: id, Path: path, Stage: stage, Err: err}
	}

	var structure *pdb.PDB
	err := p.stage(ctx, StageParse, func(context.Context) (err error) {
		structure, err = pdb.NewPDBFromFile(path)
		return err
	})
	if err != nil {
		return fail(StageParse, err)
	}
	logger.Debug("parsed structure", slog.Int("atoms", len(structure.Atoms)))

	var exposure []float64
	err = p.stage(ctx, StageExposure, func(ctx context.Context) (err error) {
		if len(structure.Atoms) == 0 {
			return nil
		}
		exposure, err = p.exposer.Exposure(ctx, structure)
		if err == nil && len(exposure) != len(structure.Atoms) {
			err = &sasa.AlignmentError{Atoms: len(structure.Atoms), Values: len(exposure)}
		}
		return err
	})
	if err != nil {
		return fail(StageExposure, err)
	}

	var part *region.Partition
	err = p.stage(ctx, StageClassify, func(context.Context) (err error) {
		part, err = region.Classify(structure, exposure, p.cfg.ExteriorThreshold)
		return err
	})
	if err != nil {
		return fail(StageClassify, err)
	}

	var row features.Row
	err = p.stage(ctx, StageAggregate, func(context.Context) error {
		row = features.Extract(id, part, p.props)
		if len(row.Values) != len(p.schema.Columns) {
			return fmt.Errorf("expected %d values, got %d", len(p.schema.Columns), len(row.Values))
		}
		return nil
	})
	if err != nil {
		return fail(StageAggregate, err)
	}

	for _, r := range region.Regions {
		p.metrics.Atoms(r.String(), len(part.Atoms(r)))
	}
	p.metrics.Structure("ok")
	logger.Info("structure processed",
		slog.Int("core_atoms", len(part.Core)),
		slog.Int("ext_atoms", len(part.Exterior)))

	return row, nil
}

// stage runs fn inside a span and records its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, name)
	defer span.End()
	defer p.metrics.Stage(name, time.Now())

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
