// Package project locates C# sources under a project root and writes
// generated files back to disk.
package project

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DefaultIncludes selects every C# file under the root
var DefaultIncludes = []string{"**/*.cs"}

// DefaultExcludes skips build output and previously generated files
var DefaultExcludes = []string{
	"**/bin/**",
	"**/obj/**",
	"**/*.AvaloniaEasyProperties.cs",
}

// OutputPattern is the exclude glob matching generated files with suffix
func OutputPattern(suffix string) string {
	return "**/*." + strings.TrimPrefix(suffix, ".")
}

// WithOutputExclude returns excludes plus the glob for generated files with
// suffix, so generated output is never read back as input whatever the
// user-supplied excludes are
func WithOutputExclude(excludes []string, suffix string) []string {
	merged := append([]string(nil), excludes...)
	if suffix == "" {
		return merged
	}
	pattern := OutputPattern(suffix)
	for _, exclude := range merged {
		if exclude == pattern {
			return merged
		}
	}
	return append(merged, pattern)
}

// Discover returns the files under root matching any include pattern and no
// exclude pattern. Patterns are doublestar globs relative to root. Results
// are root-joined paths in lexical order.
func Discover(fs afero.Fs, root string, includes, excludes []string) ([]string, error) {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	for _, pattern := range append(append([]string(nil), includes...), excludes...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(fs, root))

	found := make(map[string]bool)
	for _, pattern := range includes {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !Excluded(match, excludes) {
				found[match] = true
			}
		}
	}

	files := make([]string, 0, len(found))
	for rel := range found {
		files = append(files, filepath.Join(root, filepath.FromSlash(rel)))
	}
	sort.Strings(files)
	return files, nil
}

// Excluded reports whether rel, a slash-separated path relative to the
// root, matches one of the patterns. Patterns are also tried against the
// base name so "*.g.cs" excludes at any depth.
func Excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
