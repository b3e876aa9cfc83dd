package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/easyprops/easyprops/internal/cli/ui"
	"github.com/easyprops/easyprops/internal/compiler/ast"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
	"github.com/easyprops/easyprops/internal/project"
)

type generateOptions struct {
	output  string
	json    bool
	dryRun  bool
	check   bool
	clean   bool
	workers int
}

func newGenerateCommand(a *app) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:     "generate [dir]",
		Aliases: []string{"g", "gen"},
		Short:   "Generate property files for annotated classes",
		Long: `Scan the C# sources of a project and write one
<Class>.AvaloniaEasyProperties.cs file per class with annotated fields.

The pipeline:
  1. Discovery - find source files (source.include / source.exclude)
  2. Parsing - read classes, fields and attributes
  3. Classification - select marked fields and derive property names
  4. Synthesis - produce the partial class source
  5. Output - write changed files only

Nothing is written when any class fails.`,
		Example: `  # Generate for the project in the current directory
  easyprops generate

  # Show what would change without writing
  easyprops generate --dry-run

  # Fail in CI when generated files are stale
  easyprops generate --check

  # Write to a custom directory and remove files of deleted classes
  easyprops generate -o Generated/Props --clean

  # Output the result as JSON (useful for tooling)
  easyprops generate --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default: output.dir from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output the result in JSON format")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report changes without writing files")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Fail if any generated file is out of date")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Remove generated files no class produces anymore")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Parallel workers (default: workers from config, or CPU count)")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "check")

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	cfg, base, err := a.loadProject(cmd, args)
	if err != nil {
		return err
	}
	if opts.output != "" {
		cfg.Output.Dir = opts.output
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.workers
	}

	mode := project.ModeWrite
	switch {
	case opts.dryRun:
		mode = project.ModeDryRun
	case opts.check:
		mode = project.ModeCheck
	}

	generator := project.NewGenerator(a.fs, cfg.GeneratorOptions(base, mode, opts.clean), a.logger)
	outcome, genErr := generator.Generate(cmd.Context(), nil)

	var outOfDate *project.OutOfDateError
	if genErr != nil && !errors.As(genErr, &outOfDate) {
		return genErr
	}

	out := cmd.OutOrStdout()
	if opts.json {
		if err := writeOutcomeJSON(out, outcome); err != nil {
			return err
		}
	} else {
		a.printOutcome(cmd, base, outcome, mode)
	}

	if outOfDate != nil {
		if !opts.json {
			paths := make([]string, 0, len(outOfDate.Paths))
			for _, path := range outOfDate.Paths {
				paths = append(paths, relative(base, path))
			}
			fmt.Fprint(cmd.ErrOrStderr(), ui.OutOfDateError(paths, a.noColor))
		}
		return genErr
	}
	if outcome.Failed() {
		errs, _, _ := outcome.Diagnostics.ErrorCount()
		return fmt.Errorf("generation failed with %d error(s)", errs)
	}
	return nil
}

// printOutcome writes diagnostics to stderr and the summary to stdout
func (a *app) printOutcome(cmd *cobra.Command, base string, outcome *project.Outcome, mode project.Mode) {
	out := cmd.OutOrStdout()
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	if len(outcome.Diagnostics) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), cerrors.FormatErrorList(outcome.Diagnostics))
	}
	if outcome.Failed() {
		return
	}

	if len(outcome.Files) == 0 {
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("No C# files found under %s", base), a.noColor))
		return
	}

	if a.verbose || mode == project.ModeDryRun {
		for _, change := range outcome.Report.Changes {
			if change.Status == project.StatusUnchanged && !a.verbose {
				continue
			}
			verb := string(change.Status)
			if mode == project.ModeDryRun {
				verb = "would be " + verb
			}
			infoColor.Fprintf(out, "  %s %s\n", relative(base, change.Path), verb)
		}
	}

	report := outcome.Report
	written := report.Count(project.StatusCreated) + report.Count(project.StatusUpdated)
	summary := fmt.Sprintf("Generated %d file(s) from %d source file(s) in %s (%d written, %d unchanged",
		len(outcome.Result.Outputs), len(outcome.Files), outcome.Duration.Round(time.Millisecond),
		written, report.Count(project.StatusUnchanged))
	if removed := report.Count(project.StatusRemoved); removed > 0 {
		summary += fmt.Sprintf(", %d removed", removed)
	}
	summary += ")"

	switch mode {
	case project.ModeDryRun:
		warningColor.Fprintln(out, "Dry run: no files were written")
	case project.ModeCheck:
		if report.UpToDate() {
			ui.WriteSuccess(out, "Generated files are up to date", a.noColor)
		}
		return
	}
	ui.WriteSuccess(out, summary, a.noColor)
}

// outcomeJSON is the --json representation of a generation pass
type outcomeJSON struct {
	Success     bool                 `json:"success"`
	SourceFiles int                  `json:"source_files"`
	Classes     int                  `json:"classes_scanned"`
	Outputs     []outputJSON         `json:"outputs"`
	Changes     []project.FileChange `json:"changes,omitempty"`
	Diagnostics cerrors.ErrorList    `json:"diagnostics"`
	DurationMS  int64                `json:"duration_ms"`
}

type outputJSON struct {
	Class      string               `json:"class"`
	Namespace  string               `json:"namespace,omitempty"`
	Source     string               `json:"source"`
	File       string               `json:"file"`
	Properties []ast.AnnotatedField `json:"properties"`
}

func newOutcomeJSON(outcome *project.Outcome) outcomeJSON {
	result := outcomeJSON{
		Success:     !outcome.Failed(),
		SourceFiles: len(outcome.Files),
		Outputs:     []outputJSON{},
		Diagnostics: outcome.Diagnostics,
		DurationMS:  outcome.Duration.Milliseconds(),
	}
	if result.Diagnostics == nil {
		result.Diagnostics = cerrors.ErrorList{}
	}
	if outcome.Result != nil {
		result.Classes = outcome.Result.ClassesScanned
		for _, out := range outcome.Result.Outputs {
			result.Outputs = append(result.Outputs, outputJSON{
				Class:      out.Unit.QualifiedClassName(),
				Namespace:  out.Unit.Namespace,
				Source:     out.Source,
				File:       out.Generated.TargetFileKey,
				Properties: out.Unit.Fields,
			})
		}
	}
	if outcome.Report != nil {
		result.Changes = outcome.Report.Changes
	}
	return result
}

func writeOutcomeJSON(w io.Writer, outcome *project.Outcome) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(newOutcomeJSON(outcome)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
