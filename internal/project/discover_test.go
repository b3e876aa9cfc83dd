package project

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, fs afero.Fs, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("class X {}"), 0o644))
	}
}

func TestDiscover_DefaultsSkipBuildOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs,
		"/proj/App.cs",
		"/proj/Views/ArrowButton.cs",
		"/proj/Views/ArrowButton.AvaloniaEasyProperties.cs",
		"/proj/bin/Debug/Gen.cs",
		"/proj/obj/Debug/AssemblyInfo.cs",
		"/proj/README.md",
	)

	files, err := Discover(fs, "/proj", nil, DefaultExcludes)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join("/proj", "App.cs"),
		filepath.Join("/proj", "Views", "ArrowButton.cs"),
	}, files)
}

func TestDiscover_CustomPatterns(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs,
		"/proj/src/A.cs",
		"/proj/src/B.g.cs",
		"/proj/tests/ATests.cs",
	)

	files, err := Discover(fs, "/proj", []string{"src/**/*.cs"}, []string{"*.g.cs"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/proj", "src", "A.cs")}, files)
}

func TestDiscover_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, "/proj/A.cs")

	_, err := Discover(fs, "/missing", nil, nil)
	assert.Error(t, err)

	_, err = Discover(fs, "/proj/A.cs", nil, nil)
	assert.ErrorContains(t, err, "not a directory")

	_, err = Discover(fs, "/proj", []string{"src/[*.cs"}, nil)
	assert.ErrorContains(t, err, "invalid glob pattern")
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		rel      string
		patterns []string
		want     bool
	}{
		{"bin/Debug/X.cs", DefaultExcludes, true},
		{"src/obj/X.cs", DefaultExcludes, true},
		{"Views/Foo.AvaloniaEasyProperties.cs", DefaultExcludes, true},
		{"Views/Foo.cs", DefaultExcludes, false},
		{"deep/nested/Foo.g.cs", []string{"*.g.cs"}, true},
		{"Foo.cs", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, Excluded(tt.rel, tt.patterns))
		})
	}
}
