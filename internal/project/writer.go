package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	"github.com/easyprops/easyprops/internal/compiler/cache"
)

// Mode selects what the writer does with changes
type Mode int

const (
	// ModeWrite writes changed files
	ModeWrite Mode = iota
	// ModeDryRun reports changes without touching the file system
	ModeDryRun
	// ModeCheck reports changes and fails when output is out of date
	ModeCheck
)

// FileStatus describes what happened (or would happen) to one output file
type FileStatus string

const (
	StatusCreated   FileStatus = "created"
	StatusUpdated   FileStatus = "updated"
	StatusUnchanged FileStatus = "unchanged"
	StatusRemoved   FileStatus = "removed"
)

// FileChange is one entry of a WriteReport
type FileChange struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`
}

// WriteReport lists every output file considered by a write
type WriteReport struct {
	Changes []FileChange `json:"files"`
}

// Count returns the number of changes with the given status
func (r *WriteReport) Count(status FileStatus) int {
	n := 0
	for _, change := range r.Changes {
		if change.Status == status {
			n++
		}
	}
	return n
}

// UpToDate reports whether nothing needed to change
func (r *WriteReport) UpToDate() bool {
	return r.Count(StatusUnchanged) == len(r.Changes)
}

// OutOfDateError is returned in ModeCheck when output differs from disk
type OutOfDateError struct {
	Paths []string
}

func (e *OutOfDateError) Error() string {
	return fmt.Sprintf("%d generated file(s) out of date: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// WriterOptions configures a Writer
type WriterOptions struct {
	// Dir receives the generated files
	Dir string
	// Suffix identifies generated files for Clean
	Suffix string
	// Clean removes generated files no unit produces anymore
	Clean bool
	Mode  Mode
}

// Writer persists GeneratedUnits, skipping files whose content is unchanged
type Writer struct {
	fs     afero.Fs
	opts   WriterOptions
	hasher *cache.FileHasher
	logger *zap.Logger
}

// NewWriter creates a writer on fs
func NewWriter(fs afero.Fs, opts WriterOptions, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		fs:     fs,
		opts:   opts,
		hasher: cache.NewFileHasher(),
		logger: logger,
	}
}

// Write writes units under the output directory. In ModeCheck a report with
// pending changes is returned together with an *OutOfDateError.
func (w *Writer) Write(ctx context.Context, units []*ast.GeneratedUnit) (*WriteReport, error) {
	report := &WriteReport{}
	written := make(map[string]bool, len(units))

	if w.opts.Mode == ModeWrite && len(units) > 0 {
		if err := w.fs.MkdirAll(w.opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		target := filepath.Join(w.opts.Dir, unit.TargetFileKey)
		written[target] = true

		status, err := w.status(target, unit.SourceText)
		if err != nil {
			return nil, err
		}
		report.Changes = append(report.Changes, FileChange{Path: target, Status: status})

		if status == StatusUnchanged || w.opts.Mode != ModeWrite {
			continue
		}
		if err := afero.WriteFile(w.fs, target, []byte(unit.SourceText), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", target, err)
		}
		w.logger.Debug("wrote generated file", zap.String("path", target), zap.String("status", string(status)))
	}

	if w.opts.Clean {
		stale, err := w.stale(written)
		if err != nil {
			return nil, err
		}
		for _, target := range stale {
			report.Changes = append(report.Changes, FileChange{Path: target, Status: StatusRemoved})
			if w.opts.Mode != ModeWrite {
				continue
			}
			if err := w.fs.Remove(target); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", target, err)
			}
			w.logger.Debug("removed stale file", zap.String("path", target))
		}
	}

	if w.opts.Mode == ModeCheck && !report.UpToDate() {
		var paths []string
		for _, change := range report.Changes {
			if change.Status != StatusUnchanged {
				paths = append(paths, change.Path)
			}
		}
		return report, &OutOfDateError{Paths: paths}
	}

	return report, nil
}

// status compares the content on disk with text
func (w *Writer) status(target, text string) (FileStatus, error) {
	existing, err := w.hasher.HashFile(w.fs, target)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusCreated, nil
		}
		return "", fmt.Errorf("failed to read %s: %w", target, err)
	}
	if existing == w.hasher.HashString(text) {
		return StatusUnchanged, nil
	}
	return StatusUpdated, nil
}

// stale lists generated files in the output directory not in keep
func (w *Writer) stale(keep map[string]bool) ([]string, error) {
	entries, err := afero.ReadDir(w.fs, w.opts.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list output directory: %w", err)
	}

	suffix := "." + w.opts.Suffix
	var stale []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		target := filepath.Join(w.opts.Dir, entry.Name())
		if !keep[target] {
			stale = append(stale, target)
		}
	}
	sort.Strings(stale)
	return stale, nil
}
