package watch

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprops/easyprops/internal/compiler/codegen"
	"github.com/easyprops/easyprops/internal/compiler/driver"
	"github.com/easyprops/easyprops/internal/project"
)

func TestSession_RegenerateReportsOutcome(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/Foo.cs",
		[]byte(`partial class Foo { [SimpleStyledProperty] int _a; }`), 0o644))

	gen := project.NewGenerator(fs, project.GeneratorOptions{
		Root:   "/proj",
		Driver: driver.Options{Codegen: codegen.DefaultOptions(), Workers: 1},
		Writer: project.WriterOptions{Dir: "/out", Suffix: codegen.DefaultFileSuffix},
	}, nil)

	var got []*project.Outcome
	session := NewSession(gen, func(changed []string, outcome *project.Outcome, err error) {
		require.NoError(t, err)
		got = append(got, outcome)
	}, nil)

	session.Regenerate(context.Background(), nil)
	session.Regenerate(context.Background(), []string{"/proj/Foo.cs"})

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Report.Count(project.StatusCreated))
	assert.True(t, got[1].Report.UpToDate())
	assert.Equal(t, 1, got[1].Parse.CacheMisses)
}

func TestSession_RegenerateSkipsAfterCancel(t *testing.T) {
	called := false
	session := NewSession(nil, func([]string, *project.Outcome, error) { called = true }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session.Regenerate(ctx, nil)

	assert.False(t, called)
}
