package project

import (
	"context"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	"github.com/easyprops/easyprops/internal/compiler/cache"
	"github.com/easyprops/easyprops/internal/compiler/driver"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
	"github.com/easyprops/easyprops/internal/compiler/parser"
)

// GeneratorOptions configures a Generator
type GeneratorOptions struct {
	Root     string
	Includes []string
	Excludes []string
	Driver   driver.Options
	Writer   WriterOptions
}

// Outcome is the result of one discover, parse, generate and write pass
type Outcome struct {
	Files  []string
	Parse  *cache.ParseMetrics
	Result *driver.Result
	// Diagnostics merges syntax warnings with generator diagnostics
	Diagnostics cerrors.ErrorList
	// Report is nil when nothing was written because the pass failed
	Report   *WriteReport
	Duration time.Duration
}

// Failed reports whether the pass had errors
func (o *Outcome) Failed() bool {
	return o.Diagnostics.HasErrors()
}

// Generator runs the full pipeline over a project directory. Parses are
// cached between calls, so repeated passes only re-parse changed files.
type Generator struct {
	fs          afero.Fs
	opts        GeneratorOptions
	coordinator *cache.Coordinator
	driver      *driver.Driver
	writer      *Writer
	logger      *zap.Logger
}

// NewGenerator creates a generator reading and writing through fs
func NewGenerator(fs afero.Fs, opts GeneratorOptions, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Excludes = WithOutputExclude(opts.Excludes, opts.Writer.Suffix)
	return &Generator{
		fs:          fs,
		opts:        opts,
		coordinator: cache.NewCoordinator(fs, parser.New(logger), opts.Driver.Workers, logger),
		driver:      driver.New(opts.Driver, logger),
		writer:      NewWriter(fs, opts.Writer, logger),
		logger:      logger,
	}
}

// Analyze discovers, parses and generates without writing. changed names
// files whose cached parse must be dropped.
func (g *Generator) Analyze(ctx context.Context, changed []string) (*Outcome, error) {
	start := time.Now()

	files, err := Discover(g.fs, g.opts.Root, g.opts.Includes, g.opts.Excludes)
	if err != nil {
		return nil, err
	}

	parsed, metrics, err := g.coordinator.WatchModeParse(ctx, files, changed)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Files: files, Parse: metrics}
	asts := make([]*ast.File, 0, len(parsed))
	for _, p := range parsed {
		outcome.Diagnostics = append(outcome.Diagnostics, p.Diagnostics...)
		asts = append(asts, p.File)
	}

	result, err := g.driver.Run(ctx, asts)
	if err != nil {
		return nil, err
	}
	outcome.Result = result
	outcome.Diagnostics = append(outcome.Diagnostics, result.Diagnostics...)
	outcome.Duration = time.Since(start)
	return outcome, nil
}

// Generate runs Analyze and writes the outputs. Nothing is written when any
// class failed. In ModeCheck an *OutOfDateError is returned with the outcome.
func (g *Generator) Generate(ctx context.Context, changed []string) (*Outcome, error) {
	start := time.Now()

	outcome, err := g.Analyze(ctx, changed)
	if err != nil {
		return nil, err
	}
	if outcome.Failed() {
		g.logger.Debug("generation failed, nothing written", zap.Int("diagnostics", len(outcome.Diagnostics)))
		outcome.Duration = time.Since(start)
		return outcome, nil
	}

	units := make([]*ast.GeneratedUnit, 0, len(outcome.Result.Outputs))
	for _, out := range outcome.Result.Outputs {
		units = append(units, out.Generated)
	}

	report, err := g.writer.Write(ctx, units)
	outcome.Report = report
	outcome.Duration = time.Since(start)
	if err != nil {
		return outcome, err
	}

	g.logger.Info("generation complete",
		zap.Int("files", len(outcome.Files)),
		zap.Int("outputs", len(units)),
		zap.Int("written", report.Count(StatusCreated)+report.Count(StatusUpdated)),
		zap.Int("removed", report.Count(StatusRemoved)),
		zap.Duration("elapsed", outcome.Duration))
	return outcome, nil
}
