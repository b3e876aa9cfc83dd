// Package driver runs the generation pipeline over parsed files: every class
// is classified and, when it has annotated fields, synthesized into a
// generated partial class.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	"github.com/easyprops/easyprops/internal/compiler/classify"
	"github.com/easyprops/easyprops/internal/compiler/codegen"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
)

// Options configures a Driver
type Options struct {
	// MarkerNamespace declares the marker attributes
	MarkerNamespace string
	// Codegen configures the synthesizer
	Codegen codegen.Options
	// Workers bounds parallel class processing; zero or less means NumCPU
	Workers int
}

// Output is one generated file together with the classification it came from
type Output struct {
	Source    string
	Unit      *ast.ClassUnit
	Generated *ast.GeneratedUnit
}

// Result is the outcome of one generation pass
type Result struct {
	// Outputs are ordered by source file, then by class declaration order
	Outputs []Output
	// Diagnostics holds every error and warning of the pass
	Diagnostics cerrors.ErrorList
	// ClassesScanned counts all classes, annotated or not
	ClassesScanned int
	Duration       time.Duration
}

// Failed reports whether any class failed. A failed pass must not be written.
func (r *Result) Failed() bool {
	return r.Diagnostics.HasErrors()
}

// Err returns the diagnostics as an error when the pass failed
func (r *Result) Err() error {
	if !r.Failed() {
		return nil
	}
	return r.Diagnostics
}

// Driver wires the classifier and synthesizer together
type Driver struct {
	classifier  *classify.Classifier
	synthesizer *codegen.Synthesizer
	workers     int
	logger      *zap.Logger
}

// New creates a driver
func New(opts Options, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Driver{
		classifier:  classify.New(opts.MarkerNamespace, logger),
		synthesizer: codegen.NewSynthesizer(opts.Codegen),
		workers:     workers,
		logger:      logger,
	}
}

// classJob is one class and the slot its outcome is stored in
type classJob struct {
	source string
	class  *ast.ClassDecl
	output *Output
	diags  cerrors.ErrorList
}

// Run processes every class of files. Classes are independent and run in
// parallel; results come back in discovery order. Only context errors are
// returned as err; generator errors are reported in Result.Diagnostics.
func (d *Driver) Run(ctx context.Context, files []*ast.File) (*Result, error) {
	start := time.Now()

	var jobs []*classJob
	for _, file := range files {
		if file == nil {
			continue
		}
		for _, class := range file.Classes {
			jobs = append(jobs, &classJob{source: file.Path, class: class})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d.process(job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{ClassesScanned: len(jobs)}
	owners := make(map[string]string)
	for _, job := range jobs {
		result.Diagnostics = append(result.Diagnostics, job.diags...)
		if job.output == nil {
			continue
		}

		key := job.output.Generated.TargetFileKey
		qualified := job.output.Unit.FullName()
		if first, taken := owners[key]; taken {
			result.Diagnostics = append(result.Diagnostics,
				cerrors.NewDuplicateOutput(job.class.Loc, key, first, qualified).WithClass(job.class.Name))
			continue
		}
		owners[key] = qualified
		result.Outputs = append(result.Outputs, *job.output)
	}
	result.Duration = time.Since(start)

	errs, warnings, _ := result.Diagnostics.ErrorCount()
	d.logger.Debug("generation pass complete",
		zap.Int("files", len(files)),
		zap.Int("classes", result.ClassesScanned),
		zap.Int("outputs", len(result.Outputs)),
		zap.Int("errors", errs),
		zap.Int("warnings", warnings),
		zap.Duration("elapsed", result.Duration))

	return result, nil
}

// process classifies and synthesizes one class
func (d *Driver) process(job *classJob) {
	unit, ok, err := d.classifier.Unit(job.class)
	if err != nil {
		job.diags = append(job.diags, asCompilerError(err, job.class))
		return
	}
	if !ok {
		return
	}

	if !job.class.Partial {
		job.diags = append(job.diags, cerrors.NewClassNotPartial(job.class.Loc, job.class.Name))
	}
	// The generated file re-opens every enclosing type as partial too
	for _, outer := range job.class.Outer {
		if !outer.Partial {
			job.diags = append(job.diags,
				cerrors.NewEnclosingTypeNotPartial(outer.Loc, outer.Keyword, outer.Name, job.class.Name))
		}
	}

	generated, err := d.synthesizer.Synthesize(unit)
	if err != nil {
		job.diags = append(job.diags, asCompilerError(err, job.class))
		return
	}

	d.logger.Debug("generated class",
		zap.String("class", unit.ClassName),
		zap.String("namespace", unit.Namespace),
		zap.Int("properties", len(unit.Fields)),
		zap.String("file", generated.TargetFileKey))

	job.output = &Output{
		Source:    job.source,
		Unit:      unit,
		Generated: generated,
	}
}

func asCompilerError(err error, class *ast.ClassDecl) *cerrors.CompilerError {
	var ce *cerrors.CompilerError
	if errors.As(err, &ce) {
		return ce
	}
	return cerrors.NewInternalConsistency(class.Loc, fmt.Sprintf("unexpected error: %v", err)).WithClass(class.Name)
}
