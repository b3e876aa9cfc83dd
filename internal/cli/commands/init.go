package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/easyprops/easyprops/internal/cli/config"
	"github.com/easyprops/easyprops/internal/cli/ui"
)

// prompter lets the user edit cfg before it is written
type prompter func(cfg *config.Config) error

// surveyPrompt asks for the settings most projects change
func surveyPrompt(cfg *config.Config) error {
	questions := []*survey.Question{
		{
			Name:     "root",
			Prompt:   &survey.Input{Message: "Source root:", Default: cfg.Source.Root},
			Validate: survey.Required,
		},
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "Output directory (relative to the source root):", Default: cfg.Output.Dir},
			Validate: survey.Required,
		},
		{
			Name: "owner",
			Prompt: &survey.Select{
				Message: "Host type for attached properties:",
				Options: []string{"TemplatedControl", "Control", "AvaloniaObject"},
				Default: cfg.Codegen.AttachedOwner,
			},
		},
		{
			Name:   "suppress",
			Prompt: &survey.Confirm{Message: "Suppress unused field warnings?", Default: cfg.Codegen.SuppressUnusedWarning},
		},
	}

	answers := struct {
		Root     string `survey:"root"`
		Output   string `survey:"output"`
		Owner    string `survey:"owner"`
		Suppress bool   `survey:"suppress"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	cfg.Source.Root = strings.TrimSpace(answers.Root)
	cfg.Output.Dir = strings.TrimSpace(answers.Output)
	cfg.Codegen.AttachedOwner = answers.Owner
	cfg.Codegen.SuppressUnusedWarning = answers.Suppress
	return nil
}

func newInitCommand(a *app) *cobra.Command {
	var (
		interactive bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default easyprops.yaml",
		Long: `Create easyprops.yaml in the given directory (default: the current
directory) with the default settings, or with answers to a few questions
when --interactive is set.`,
		Example: `  # Write the defaults
  easyprops init

  # Answer questions first
  easyprops init -i

  # Replace an existing file
  easyprops init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid directory: %w", err)
			}
			path := filepath.Join(abs, config.FileName)

			exists, err := afero.Exists(a.fs, path)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}
			if exists && !force {
				fmt.Fprint(cmd.ErrOrStderr(), ui.FormatError(ui.ErrorOptions{
					Level:        ui.ErrorLevelError,
					Context:      "ALREADY INITIALIZED",
					Problem:      fmt.Sprintf("%s already exists", config.FileName),
					HelpCommands: []string{"Overwrite: easyprops init --force"},
					NoColor:      a.noColor,
				}))
				return errors.New("configuration file already exists")
			}

			cfg := config.Default()
			if interactive {
				if err := a.prompt(cfg); err != nil {
					return fmt.Errorf("prompt failed: %w", err)
				}
			}

			if err := a.fs.MkdirAll(abs, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create %s: %w", abs, err)
			}
			if err := cfg.Write(a.fs, path); err != nil {
				return err
			}

			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", path), a.noColor)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Ask for settings before writing")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}
