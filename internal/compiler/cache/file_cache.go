package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
)

// CachedFile is a parsed source file with the hash of the content it was
// parsed from
type CachedFile struct {
	File        *ast.File
	Diagnostics cerrors.ErrorList
	Hash        string
	Path        string
	CachedAt    time.Time
}

// FileCache keeps parsed files in memory between runs, keyed by path.
// Locations inside a parsed file embed its path, so an entry is never
// reused for a different path even when the content matches.
type FileCache struct {
	entries map[string]*CachedFile
	mu      sync.RWMutex
}

// NewFileCache creates an empty cache
func NewFileCache() *FileCache {
	return &FileCache{
		entries: make(map[string]*CachedFile),
	}
}

// Get returns the entry for path if its hash still matches
func (fc *FileCache) Get(path, hash string) (*CachedFile, bool) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	entry, ok := fc.entries[path]
	if !ok || entry.Hash != hash {
		return nil, false
	}
	return entry, true
}

// Set stores a parsed file
func (fc *FileCache) Set(path, hash string, file *ast.File, diags cerrors.ErrorList) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.entries[path] = &CachedFile{
		File:        file,
		Diagnostics: diags,
		Hash:        hash,
		Path:        path,
		CachedAt:    time.Now(),
	}
}

// Invalidate removes an entry from the cache
func (fc *FileCache) Invalidate(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	delete(fc.entries, path)
}

// InvalidateAll clears the cache
func (fc *FileCache) InvalidateAll() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.entries = make(map[string]*CachedFile)
}

// Retain drops every entry whose path is not in keep and returns the
// removed paths in sorted order
func (fc *FileCache) Retain(keep []string) []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	wanted := make(map[string]bool, len(keep))
	for _, path := range keep {
		wanted[path] = true
	}

	var removed []string
	for path := range fc.entries {
		if !wanted[path] {
			delete(fc.entries, path)
			removed = append(removed, path)
		}
	}
	sort.Strings(removed)
	return removed
}

// Size returns the number of cached files
func (fc *FileCache) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	return len(fc.entries)
}
