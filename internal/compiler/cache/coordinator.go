package cache

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/easyprops/easyprops/internal/compiler/ast"
	cerrors "github.com/easyprops/easyprops/internal/compiler/errors"
	"github.com/easyprops/easyprops/internal/compiler/parser"
)

// ParseMetrics tracks performance metrics for one parse pass
type ParseMetrics struct {
	TotalFiles      int
	CacheHits       int
	CacheMisses     int
	FilesParsed     int
	TotalDuration   time.Duration
	ReadDuration    time.Duration
	ParsingDuration time.Duration
	StartTime       time.Time
	EndTime         time.Time
}

// CacheHitRate returns the cache hit rate as a percentage
func (pm *ParseMetrics) CacheHitRate() float64 {
	if pm.TotalFiles == 0 {
		return 0.0
	}
	return float64(pm.CacheHits) / float64(pm.TotalFiles) * 100.0
}

// ParseResult represents the result of parsing a single file
type ParseResult struct {
	Path        string
	File        *ast.File
	Diagnostics cerrors.ErrorList
	Hash        string
	Cached      bool
}

// Coordinator parses file sets, reusing cached parses of unchanged files
type Coordinator struct {
	fs      afero.Fs
	parser  *parser.Parser
	cache   *FileCache
	hasher  *FileHasher
	logger  *zap.Logger
	workers int

	mu      sync.Mutex
	metrics *ParseMetrics
}

// NewCoordinator creates a coordinator reading sources from fs. workers
// bounds parallel parses; zero or less means runtime.NumCPU().
func NewCoordinator(fs afero.Fs, p *parser.Parser, workers int, logger *zap.Logger) *Coordinator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if p == nil {
		p = parser.New(logger)
	}
	return &Coordinator{
		fs:      fs,
		parser:  p,
		cache:   NewFileCache(),
		hasher:  NewFileHasher(),
		logger:  logger,
		workers: workers,
		metrics: &ParseMetrics{},
	}
}

// ParseFiles parses paths in parallel. Results keep the order of paths.
// A read failure or context cancellation aborts the whole pass.
func (c *Coordinator) ParseFiles(ctx context.Context, paths []string) ([]*ParseResult, *ParseMetrics, error) {
	c.mu.Lock()
	c.metrics = &ParseMetrics{
		TotalFiles: len(paths),
		StartTime:  time.Now(),
	}
	c.mu.Unlock()

	results := make([]*ParseResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			result, err := c.parseFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	err := g.Wait()

	c.mu.Lock()
	c.metrics.EndTime = time.Now()
	c.metrics.TotalDuration = c.metrics.EndTime.Sub(c.metrics.StartTime)
	metrics := *c.metrics
	c.mu.Unlock()

	if err != nil {
		return nil, &metrics, err
	}

	c.logger.Debug("parse pass complete",
		zap.Int("files", metrics.TotalFiles),
		zap.Int("cache_hits", metrics.CacheHits),
		zap.Int("cache_misses", metrics.CacheMisses),
		zap.Float64("hit_rate", metrics.CacheHitRate()),
		zap.Duration("parsing", metrics.ParsingDuration),
		zap.Duration("total", metrics.TotalDuration))

	return results, &metrics, nil
}

// parseFile reads path and returns its cached parse when the content hash
// is unchanged
func (c *Coordinator) parseFile(ctx context.Context, path string) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Read file
	readStart := time.Now()
	content, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	// Compute file hash
	hash := c.hasher.HashContent(content)
	readDuration := time.Since(readStart)

	// Check cache by path and hash
	if cached, ok := c.cache.Get(path, hash); ok {
		c.mu.Lock()
		c.metrics.CacheHits++
		c.metrics.ReadDuration += readDuration
		c.mu.Unlock()

		return &ParseResult{
			Path:        path,
			File:        cached.File,
			Diagnostics: cached.Diagnostics,
			Hash:        hash,
			Cached:      true,
		}, nil
	}

	// Cache miss - parse the file
	parseStart := time.Now()
	file, diags, err := c.parser.ParseFile(ctx, path, content)
	if err != nil {
		return nil, err
	}
	parseDuration := time.Since(parseStart)

	c.mu.Lock()
	c.metrics.CacheMisses++
	c.metrics.FilesParsed++
	c.metrics.ReadDuration += readDuration
	c.metrics.ParsingDuration += parseDuration
	c.mu.Unlock()

	// Cache the result
	c.cache.Set(path, hash, file, diags)

	return &ParseResult{
		Path:        path,
		File:        file,
		Diagnostics: diags,
		Hash:        hash,
	}, nil
}

// InvalidateFile drops the cached parse of path
func (c *Coordinator) InvalidateFile(path string) {
	c.cache.Invalidate(path)
}

// GetMetrics returns a copy of the metrics of the last pass
func (c *Coordinator) GetMetrics() *ParseMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Return a copy
	metrics := *c.metrics
	return &metrics
}

// CacheSize returns the number of cached files
func (c *Coordinator) CacheSize() int {
	return c.cache.Size()
}

// Clear drops all cached parses and metrics
func (c *Coordinator) Clear() {
	c.cache.InvalidateAll()
	c.mu.Lock()
	c.metrics = &ParseMetrics{}
	c.mu.Unlock()
}

// WatchModeParse re-parses changed files and returns parses for the whole
// set. Files no longer in paths are evicted.
func (c *Coordinator) WatchModeParse(ctx context.Context, paths, changed []string) ([]*ParseResult, *ParseMetrics, error) {
	// Invalidate changed files and forget deleted ones
	for _, path := range changed {
		c.InvalidateFile(path)
	}
	if removed := c.cache.Retain(paths); len(removed) > 0 {
		c.logger.Debug("evicted removed files", zap.Strings("files", removed))
	}
	return c.ParseFiles(ctx, paths)
}
