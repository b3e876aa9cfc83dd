package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprops/easyprops/internal/cli/config"
	"github.com/easyprops/easyprops/internal/project"
)

const arrowButton = `using AvaloniaEasyProperties;

namespace App.Controls
{
	public partial class ArrowButton
	{
		[SimpleStyledProperty] private int _direction;
		[SimpleAttachedProperty] private IBrush _customBackground;
	}
}
`

const badField = `using AvaloniaEasyProperties;

namespace App
{
	public partial class Broken
	{
		[SimpleStyledProperty] private int direction;
	}
}
`

const generatedPath = "/proj/Generated/ArrowButton.AvaloniaEasyProperties.cs"

func newProject(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func execute(t *testing.T, fs afero.Fs, prompt prompter, args ...string) (string, string, error) {
	t.Helper()
	if prompt == nil {
		prompt = func(*config.Config) error { return errors.New("unexpected prompt") }
	}
	cmd := newRootCommand(&app{fs: fs, prompt: prompt})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, afero.NewMemMapFs(), nil, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "easyprops version")
	assert.Contains(t, stdout, Version)
}

func TestGenerateCommand_WritesOutput(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Controls/ArrowButton.cs": arrowButton})

	stdout, _, err := execute(t, fs, nil, "generate", "/proj")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated 1 file(s) from 1 source file(s)")

	data, err := afero.ReadFile(fs, generatedPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "public static readonly StyledProperty<int> DirectionProperty")
	assert.Contains(t, string(data), "public static readonly AttachedProperty<IBrush> CustomBackgroundProperty")
}

func TestGenerateCommand_DryRunWritesNothing(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Controls/ArrowButton.cs": arrowButton})

	stdout, _, err := execute(t, fs, nil, "generate", "/proj", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "would be created")
	assert.Contains(t, stdout, "Dry run")

	exists, err := afero.Exists(fs, generatedPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateCommand_Check(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Controls/ArrowButton.cs": arrowButton})

	_, stderr, err := execute(t, fs, nil, "generate", "/proj", "--check")
	var outOfDate *project.OutOfDateError
	require.ErrorAs(t, err, &outOfDate)
	assert.Equal(t, []string{generatedPath}, outOfDate.Paths)
	assert.Contains(t, stderr, "OUT OF DATE")

	_, _, err = execute(t, fs, nil, "generate", "/proj")
	require.NoError(t, err)

	stdout, _, err := execute(t, fs, nil, "generate", "/proj", "--check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated files are up to date")
}

func TestGenerateCommand_DryRunAndCheckAreExclusive(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Controls/ArrowButton.cs": arrowButton})

	_, _, err := execute(t, fs, nil, "generate", "/proj", "--dry-run", "--check")
	assert.Error(t, err)
}

func TestGenerateCommand_FailureWritesNothing(t *testing.T) {
	fs := newProject(t, map[string]string{
		"/proj/Controls/ArrowButton.cs": arrowButton,
		"/proj/Broken.cs":               badField,
	})

	_, stderr, err := execute(t, fs, nil, "generate", "/proj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed with 1 error(s)")
	assert.Contains(t, stderr, "GEN601")

	exists, err := afero.Exists(fs, generatedPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateCommand_OutputFlag(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Controls/ArrowButton.cs": arrowButton})

	_, _, err := execute(t, fs, nil, "generate", "/proj", "-o", "Props")
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "/proj/Props/ArrowButton.AvaloniaEasyProperties.cs")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerateCommand_JSON(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Controls/ArrowButton.cs": arrowButton})

	stdout, _, err := execute(t, fs, nil, "generate", "/proj", "--json")
	require.NoError(t, err)

	var result struct {
		Success     bool `json:"success"`
		SourceFiles int  `json:"source_files"`
		Outputs     []struct {
			Class      string `json:"class"`
			Namespace  string `json:"namespace"`
			File       string `json:"file"`
			Properties []struct {
				Field    string `json:"field"`
				Property string `json:"property"`
				Kind     string `json:"kind"`
			} `json:"properties"`
		} `json:"outputs"`
		Changes []struct {
			Path   string `json:"path"`
			Status string `json:"status"`
		} `json:"changes"`
		Diagnostics []any `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SourceFiles)
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, "ArrowButton", result.Outputs[0].Class)
	assert.Equal(t, "App.Controls", result.Outputs[0].Namespace)
	assert.Equal(t, "ArrowButton.AvaloniaEasyProperties.cs", result.Outputs[0].File)
	require.Len(t, result.Outputs[0].Properties, 2)
	assert.Equal(t, "Direction", result.Outputs[0].Properties[0].Property)
	assert.Equal(t, "Styled", result.Outputs[0].Properties[0].Kind)
	assert.Equal(t, "Attached", result.Outputs[0].Properties[1].Kind)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "created", result.Changes[0].Status)
	assert.Empty(t, result.Diagnostics)
}

func TestGenerateCommand_InvalidConfig(t *testing.T) {
	fs := newProject(t, map[string]string{
		"/proj/Controls/ArrowButton.cs": arrowButton,
		"/proj/easyprops.yaml":          "output:\n  suffix: props.txt\n",
	})

	_, stderr, err := execute(t, fs, nil, "generate", "/proj")
	require.Error(t, err)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
}

func TestInspectCommand_Table(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Controls/ArrowButton.cs": arrowButton})

	stdout, _, err := execute(t, fs, nil, "inspect", "/proj")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Property")
	assert.Contains(t, stdout, "App.Controls.ArrowButton")
	assert.Contains(t, stdout, "_customBackground")
	assert.Contains(t, stdout, "CustomBackground")
	assert.Contains(t, stdout, "Attached")

	exists, err := afero.Exists(fs, generatedPath)
	require.NoError(t, err)
	assert.False(t, exists, "inspect must not write")
}

func TestInspectCommand_ReportsFailures(t *testing.T) {
	fs := newProject(t, map[string]string{"/proj/Broken.cs": badField})

	stdout, stderr, err := execute(t, fs, nil, "inspect", "/proj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 class(es) cannot be generated")
	assert.Contains(t, stdout, "No annotated fields")
	assert.Contains(t, stderr, "GEN601")
}

func TestInitCommand(t *testing.T) {
	fs := afero.NewMemMapFs()

	stdout, _, err := execute(t, fs, nil, "init", "/proj")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote /proj/easyprops.yaml")

	cfg, err := config.Load(fs, "/proj", "")
	require.NoError(t, err)
	def := config.Default()
	assert.Equal(t, def.Output, cfg.Output)
	assert.Equal(t, def.Source.Include, cfg.Source.Include)
	assert.Equal(t, def.Codegen.AttachedOwner, cfg.Codegen.AttachedOwner)
	assert.True(t, cfg.Codegen.SuppressUnusedWarning)

	_, stderr, err := execute(t, fs, nil, "init", "/proj")
	require.Error(t, err)
	assert.Contains(t, stderr, "ALREADY INITIALIZED")

	_, _, err = execute(t, fs, nil, "init", "/proj", "--force")
	require.NoError(t, err)
}

func TestInitCommand_Interactive(t *testing.T) {
	fs := afero.NewMemMapFs()
	prompt := func(cfg *config.Config) error {
		cfg.Output.Dir = "Props"
		cfg.Codegen.AttachedOwner = "Control"
		return nil
	}

	_, _, err := execute(t, fs, prompt, "init", "/proj", "-i")
	require.NoError(t, err)

	cfg, err := config.Load(fs, "/proj", "")
	require.NoError(t, err)
	assert.Equal(t, "Props", cfg.Output.Dir)
	assert.Equal(t, "Control", cfg.Codegen.AttachedOwner)
}

func TestInitCommand_PromptError(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, _, err := execute(t, fs, nil, "init", "/proj", "-i")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt failed")

	exists, err := afero.Exists(fs, "/proj/"+config.FileName)
	require.NoError(t, err)
	assert.False(t, exists)
}
