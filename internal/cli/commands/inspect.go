package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easyprops/easyprops/internal/cli/ui"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
	"github.com/easyprops/easyprops/internal/project"
)

func newInspectCommand(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "List annotated fields and the properties they produce",
		Long: `Run discovery, parsing and classification without writing anything
and print every annotated field with its derived property name, kind,
type and target file.`,
		Example: `  # Show the properties of the project in the current directory
  easyprops inspect

  # Machine-readable output
  easyprops inspect --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, base, err := a.loadProject(cmd, args)
			if err != nil {
				return err
			}

			generator := project.NewGenerator(a.fs, cfg.GeneratorOptions(base, project.ModeDryRun, false), a.logger)
			outcome, err := generator.Analyze(cmd.Context(), nil)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeOutcomeJSON(cmd.OutOrStdout(), outcome)
			}

			if len(outcome.Diagnostics) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), cerrors.FormatErrorList(outcome.Diagnostics))
			}

			out := cmd.OutOrStdout()
			if len(outcome.Result.Outputs) == 0 {
				fmt.Fprint(out, ui.Info(fmt.Sprintf("No annotated fields in %d source file(s)", len(outcome.Files)), a.noColor))
			} else {
				table := ui.NewTable(out, []string{"Class", "Field", "Property", "Kind", "Type", "Output"}, &ui.TableOptions{NoColor: a.noColor})
				for _, output := range outcome.Result.Outputs {
					for _, field := range output.Unit.Fields {
						table.AddRow(
							output.Unit.FullName(),
							field.Name,
							field.PropertyName,
							field.Kind.String(),
							field.DeclaredType,
							filepath.Base(output.Generated.TargetFileKey),
						)
					}
				}
				table.Render()
			}

			if outcome.Failed() {
				errs, _, _ := outcome.Diagnostics.ErrorCount()
				return fmt.Errorf("%d class(es) cannot be generated (%d error(s))", failedClasses(outcome.Diagnostics), errs)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

// failedClasses counts distinct classes named by error diagnostics
func failedClasses(diags cerrors.ErrorList) int {
	classes := make(map[string]bool)
	for _, d := range diags {
		if d.Severity == cerrors.SeverityError {
			classes[d.Class] = true
		}
	}
	return len(classes)
}
