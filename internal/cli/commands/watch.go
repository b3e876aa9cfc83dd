package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/easyprops/easyprops/internal/cli/ui"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
	"github.com/easyprops/easyprops/internal/project"
	"github.com/easyprops/easyprops/internal/watch"
)

func newWatchCommand(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Regenerate property files whenever sources change",
		Long: `Generate once, then watch the source tree and regenerate after each
batch of changes. Only changed files are re-parsed.

Press Ctrl+C to stop.`,
		Example: `  # Watch the project in the current directory
  easyprops watch

  # Wait longer before regenerating
  easyprops watch --debounce 500ms`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, base, err := a.loadProject(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := cfg.GeneratorOptions(base, project.ModeWrite, true)
			generator := project.NewGenerator(a.fs, opts, a.logger)
			session := watch.NewSession(generator, a.watchReporter(cmd, base), a.logger)

			infoColor := color.New(color.FgCyan, color.Bold)
			infoColor.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", relative(base, opts.Root))

			err = session.Run(ctx, a.fs, watch.Config{
				Root:     opts.Root,
				Includes: opts.Includes,
				Excludes: opts.Excludes,
				Debounce: debounce,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped watching")
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Delay after the last change before regenerating")
	return cmd
}

// watchReporter prints one summary line per pass
func (a *app) watchReporter(cmd *cobra.Command, base string) watch.Reporter {
	return func(changed []string, outcome *project.Outcome, err error) {
		out := cmd.OutOrStdout()
		stamp := time.Now().Format("15:04:05")

		if len(changed) > 0 {
			names := make([]string, 0, len(changed))
			for _, path := range changed {
				names = append(names, relative(base, path))
			}
			fmt.Fprintf(out, "[%s] changed: %v\n", stamp, names)
		}

		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.FormatError(ui.ErrorOptions{
				Level:       ui.ErrorLevelError,
				Context:     "GENERATION ABORTED",
				Problem:     err.Error(),
				Consequence: "Generated files were left as they were.",
				NoColor:     a.noColor,
			}))
			return
		}
		if len(outcome.Diagnostics) > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), cerrors.FormatErrorList(outcome.Diagnostics))
		}
		if outcome.Failed() {
			color.New(color.FgRed).Fprintf(out, "[%s] generation failed, previous output kept\n", stamp)
			return
		}

		report := outcome.Report
		written := report.Count(project.StatusCreated) + report.Count(project.StatusUpdated)
		ui.WriteSuccess(out, fmt.Sprintf("[%s] %d output(s), %d written, %d removed in %s",
			stamp, len(outcome.Result.Outputs), written, report.Count(project.StatusRemoved),
			outcome.Duration.Round(time.Millisecond)), a.noColor)
	}
}
