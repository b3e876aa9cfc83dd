package watch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/easyprops/easyprops/internal/project"
)

// Reporter receives the outcome of every generation pass
type Reporter func(changed []string, outcome *project.Outcome, err error)

// Session regenerates a project on every batch of source changes
type Session struct {
	generator *project.Generator
	report    Reporter
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewSession creates a session around generator
func NewSession(generator *project.Generator, report Reporter, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if report == nil {
		report = func([]string, *project.Outcome, error) {}
	}
	return &Session{
		generator: generator,
		report:    report,
		logger:    logger,
	}
}

// Regenerate runs one pass. Passes never overlap.
func (s *Session) Regenerate(ctx context.Context, changed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	logger := s.logger.With(zap.String("pass", uuid.NewString()))
	logger.Debug("regenerating", zap.Strings("changed", changed))

	outcome, err := s.generator.Generate(ctx, changed)
	if err != nil {
		logger.Debug("pass aborted", zap.Error(err))
	} else {
		logger.Debug("pass finished", zap.Bool("failed", outcome.Failed()), zap.Duration("elapsed", outcome.Duration))
	}
	s.report(changed, outcome, err)
}

// Run generates once, then watches cfg.Root and regenerates until ctx is
// cancelled
func (s *Session) Run(ctx context.Context, fs afero.Fs, cfg Config) error {
	s.Regenerate(ctx, nil)

	watcher, err := NewFileWatcher(fs, cfg, func(files []string) error {
		s.Regenerate(ctx, files)
		return nil
	}, s.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		_ = watcher.Stop()
		return err
	}

	s.logger.Info("watching for changes", zap.String("root", cfg.Root))
	<-ctx.Done()

	return watcher.Stop()
}
