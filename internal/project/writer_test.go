package project

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprops/easyprops/internal/compiler/ast"
)

const suffix = "AvaloniaEasyProperties.cs"

func unit(class, text string) *ast.GeneratedUnit {
	return &ast.GeneratedUnit{TargetFileKey: class + "." + suffix, ClassName: class, SourceText: text}
}

func outPath(class string) string {
	return filepath.Join("/out", class+"."+suffix)
}

func TestWriter_WritesAndSkipsUnchanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, WriterOptions{Dir: "/out", Suffix: suffix}, nil)
	ctx := context.Background()

	report, err := w.Write(ctx, []*ast.GeneratedUnit{unit("Foo", "foo v1"), unit("Bar", "bar v1")})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(StatusCreated))

	content, err := afero.ReadFile(fs, outPath("Foo"))
	require.NoError(t, err)
	assert.Equal(t, "foo v1", string(content))

	report, err = w.Write(ctx, []*ast.GeneratedUnit{unit("Foo", "foo v2"), unit("Bar", "bar v1")})
	require.NoError(t, err)
	assert.Equal(t, []FileChange{
		{Path: outPath("Foo"), Status: StatusUpdated},
		{Path: outPath("Bar"), Status: StatusUnchanged},
	}, report.Changes)
	assert.False(t, report.UpToDate())
}

func TestWriter_DryRunTouchesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, WriterOptions{Dir: "/out", Suffix: suffix, Mode: ModeDryRun}, nil)

	report, err := w.Write(context.Background(), []*ast.GeneratedUnit{unit("Foo", "foo")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(StatusCreated))

	exists, err := afero.Exists(fs, outPath("Foo"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriter_CheckMode(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, outPath("Foo"), []byte("foo"), 0o644))

	w := NewWriter(fs, WriterOptions{Dir: "/out", Suffix: suffix, Mode: ModeCheck}, nil)

	report, err := w.Write(context.Background(), []*ast.GeneratedUnit{unit("Foo", "foo")})
	require.NoError(t, err)
	assert.True(t, report.UpToDate())

	report, err = w.Write(context.Background(), []*ast.GeneratedUnit{unit("Foo", "changed")})
	var outOfDate *OutOfDateError
	require.True(t, errors.As(err, &outOfDate))
	assert.Equal(t, []string{outPath("Foo")}, outOfDate.Paths)
	assert.Equal(t, 1, report.Count(StatusUpdated))

	content, err := afero.ReadFile(fs, outPath("Foo"))
	require.NoError(t, err)
	assert.Equal(t, "foo", string(content))
}

func TestWriter_CleanRemovesStaleGeneratedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, outPath("Old"), []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/out/Handwritten.cs", []byte("keep"), 0o644))

	w := NewWriter(fs, WriterOptions{Dir: "/out", Suffix: suffix, Clean: true}, nil)
	report, err := w.Write(context.Background(), []*ast.GeneratedUnit{unit("Foo", "foo")})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(StatusCreated))
	assert.Equal(t, 1, report.Count(StatusRemoved))

	exists, _ := afero.Exists(fs, outPath("Old"))
	assert.False(t, exists)
	exists, _ = afero.Exists(fs, "/out/Handwritten.cs")
	assert.True(t, exists)
}

func TestWriter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWriter(afero.NewMemMapFs(), WriterOptions{Dir: "/out", Suffix: suffix}, nil)
	_, err := w.Write(ctx, []*ast.GeneratedUnit{unit("Foo", "foo")})
	assert.ErrorIs(t, err, context.Canceled)
}
