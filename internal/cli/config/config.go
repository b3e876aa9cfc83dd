// Package config loads easyprops.yaml
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/easyprops/easyprops/internal/compiler/classify"
	"github.com/easyprops/easyprops/internal/compiler/codegen"
	"github.com/easyprops/easyprops/internal/compiler/driver"
	"github.com/easyprops/easyprops/internal/project"
)

const (
	// FileName is the configuration file looked up in the project root
	FileName = "easyprops.yaml"
	// EnvPrefix prefixes environment overrides (EASYPROPS_OUTPUT_DIR)
	EnvPrefix = "EASYPROPS"
	// DefaultOutputDir receives generated files, relative to the source root
	DefaultOutputDir = "Generated"
)

// Config represents the easyprops configuration
type Config struct {
	Source  SourceConfig  `mapstructure:"source" yaml:"source"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Codegen CodegenConfig `mapstructure:"codegen" yaml:"codegen"`
	Workers int           `mapstructure:"workers" yaml:"workers"`
}

// SourceConfig selects the C# files to scan
type SourceConfig struct {
	Root    string   `mapstructure:"root" yaml:"root"`
	Include []string `mapstructure:"include" yaml:"include"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// OutputConfig controls where generated files go
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Suffix string `mapstructure:"suffix" yaml:"suffix"`
}

// CodegenConfig tunes the generated source
type CodegenConfig struct {
	AttachedOwner         string   `mapstructure:"attached_owner" yaml:"attached_owner"`
	Usings                []string `mapstructure:"usings" yaml:"usings"`
	SuppressUnusedWarning bool     `mapstructure:"suppress_unused_warning" yaml:"suppress_unused_warning"`
	MarkerNamespace       string   `mapstructure:"marker_namespace" yaml:"marker_namespace"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Root:    ".",
			Include: append([]string(nil), project.DefaultIncludes...),
			Exclude: append([]string(nil), project.DefaultExcludes...),
		},
		Output: OutputConfig{
			Dir:    DefaultOutputDir,
			Suffix: codegen.DefaultFileSuffix,
		},
		Codegen: CodegenConfig{
			AttachedOwner:         codegen.DefaultAttachedOwner,
			Usings:                []string{},
			SuppressUnusedWarning: true,
			MarkerNamespace:       classify.DefaultMarkerNamespace,
		},
		Workers: 0,
	}
}

// Load reads easyprops.yaml from dir, or the file at explicit when set.
// A missing file in dir is not an error; defaults apply.
func Load(fs afero.Fs, dir, explicit string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	def := Default()
	v.SetDefault("source.root", def.Source.Root)
	v.SetDefault("source.include", def.Source.Include)
	v.SetDefault("source.exclude", def.Source.Exclude)
	v.SetDefault("output.dir", def.Output.Dir)
	v.SetDefault("output.suffix", def.Output.Suffix)
	v.SetDefault("codegen.attached_owner", def.Codegen.AttachedOwner)
	v.SetDefault("codegen.usings", def.Codegen.Usings)
	v.SetDefault("codegen.suppress_unused_warning", def.Codegen.SuppressUnusedWarning)
	v.SetDefault("codegen.marker_namespace", def.Codegen.MarkerNamespace)
	v.SetDefault("workers", def.Workers)

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// FindProjectRoot walks up from start to the first directory holding
// easyprops.yaml or a .csproj file. start is returned when none is found.
func FindProjectRoot(fs afero.Fs, start string) string {
	dir := start
	for {
		if ok, _ := afero.Exists(fs, filepath.Join(dir, FileName)); ok {
			return dir
		}
		if matches, _ := afero.Glob(fs, filepath.Join(dir, "*.csproj")); len(matches) > 0 {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// Write saves c as YAML at path
func (c *Config) Write(fs afero.Fs, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SourceRoot resolves source.root against base
func (c *Config) SourceRoot(base string) string {
	return resolve(base, c.Source.Root)
}

// OutputDir resolves output.dir against the source root
func (c *Config) OutputDir(base string) string {
	return resolve(c.SourceRoot(base), c.Output.Dir)
}

// GeneratorOptions converts the configuration for project.NewGenerator
func (c *Config) GeneratorOptions(base string, mode project.Mode, clean bool) project.GeneratorOptions {
	return project.GeneratorOptions{
		Root:     c.SourceRoot(base),
		Includes: c.Source.Include,
		Excludes: project.WithOutputExclude(c.Source.Exclude, c.Output.Suffix),
		Driver: driver.Options{
			MarkerNamespace: c.Codegen.MarkerNamespace,
			Workers:         c.Workers,
			Codegen: codegen.Options{
				FileSuffix:            c.Output.Suffix,
				AttachedOwner:         c.Codegen.AttachedOwner,
				Usings:                c.Codegen.Usings,
				SuppressUnusedWarning: c.Codegen.SuppressUnusedWarning,
			},
		},
		Writer: project.WriterOptions{
			Dir:    c.OutputDir(base),
			Suffix: c.Output.Suffix,
			Clean:  clean,
			Mode:   mode,
		},
	}
}

func resolve(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got: %d", cfg.Workers)
	}
	if !strings.HasSuffix(cfg.Output.Suffix, ".cs") {
		return fmt.Errorf("output.suffix must end with '.cs', got: %s", cfg.Output.Suffix)
	}
	if strings.ContainsAny(cfg.Output.Suffix, `/\`) {
		return fmt.Errorf("output.suffix must be a file name suffix, got: %s", cfg.Output.Suffix)
	}
	if cfg.Codegen.AttachedOwner == "" {
		return fmt.Errorf("codegen.attached_owner must not be empty")
	}
	for _, pattern := range append(append([]string(nil), cfg.Source.Include...), cfg.Source.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern in source config: %q", pattern)
		}
	}
	return nil
}
