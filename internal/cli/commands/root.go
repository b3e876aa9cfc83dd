package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/easyprops/easyprops/internal/cli/config"
	"github.com/easyprops/easyprops/internal/cli/ui"
	"github.com/easyprops/easyprops/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// app carries state shared by all subcommands
type app struct {
	fs         afero.Fs
	configFile string
	verbose    bool
	noColor    bool
	logger     *zap.Logger
	prompt     prompter
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{fs: afero.NewOsFs(), prompt: surveyPrompt})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "easyprops",
		Short: "Generate Avalonia properties from annotated fields",
		Long: color.CyanString(`easyprops - Avalonia property generator

Scans C# classes for private fields marked with [SimpleStyledProperty] or
[SimpleAttachedProperty] and writes a partial class declaring the Avalonia
property and its public accessor for each of them.

  [SimpleStyledProperty] private int _direction;

becomes

  public static readonly StyledProperty<int> DirectionProperty = ...;
  public int Direction { get; set; }`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.noColor {
				color.NoColor = true
			}
			logger, err := logging.New(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default: easyprops.yaml in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCommand(a))
	rootCmd.AddCommand(newGenerateCommand(a))
	rootCmd.AddCommand(newInspectCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newInitCommand(a))

	return rootCmd
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the easyprops version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), a.noColor)
			table.AddRow("easyprops version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// loadProject resolves the project directory and its configuration. An
// explicit dir is used as is; otherwise the root is searched upward from
// the working directory.
func (a *app) loadProject(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	var base string
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return nil, "", fmt.Errorf("invalid project directory: %w", err)
		}
		base = abs
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get current directory: %w", err)
		}
		base = config.FindProjectRoot(a.fs, cwd)
	}

	cfg, err := config.Load(a.fs, base, a.configFile)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), a.noColor))
		return nil, "", err
	}
	a.logger.Debug("loaded configuration",
		zap.String("root", cfg.SourceRoot(base)),
		zap.String("output", cfg.OutputDir(base)),
		zap.Int("workers", cfg.Workers))
	return cfg, base, nil
}

// relative shortens path for display
func relative(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
