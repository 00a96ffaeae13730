// Package services hosts the repository for the command line: it builds the
// repository from configuration or a dump, guards it with a lock and keeps
// it in step with source changes reported by the watcher.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/conneroisu/resrepo/internal/changestream"
	"github.com/conneroisu/resrepo/internal/config"
	"github.com/conneroisu/resrepo/internal/dump"
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/locator"
	"github.com/conneroisu/resrepo/internal/logging"
	"github.com/conneroisu/resrepo/internal/repository"
)

// RepositoryService owns one repository built from configuration or from a
// dump and serializes every access to it.
type RepositoryService struct {
	config  *config.Config
	fs      afero.Fs
	logger  logging.Logger
	locator *locator.FS

	mu   sync.RWMutex
	repo *repository.Repository
}

// ServiceOption configures a RepositoryService.
type ServiceOption func(*RepositoryService)

// WithFs sets the filesystem sources and dumps are read from.
func WithFs(fs afero.Fs) ServiceOption {
	return func(s *RepositoryService) {
		s.fs = fs
	}
}

// WithLogger sets the service logger.
func WithLogger(logger logging.Logger) ServiceOption {
	return func(s *RepositoryService) {
		s.logger = logger
	}
}

// NewRepositoryService creates a new repository service
func NewRepositoryService(cfg *config.Config, opts ...ServiceOption) *RepositoryService {
	s := &RepositoryService{
		config: cfg,
		fs:     afero.NewOsFs(),
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.WithComponent("service")
	s.locator = locator.New(s.fs, locator.WithBaseDir(s.RootDir()))

	return s
}

// BuildResult contains the result of a build operation
type BuildResult struct {
	Duration  time.Duration
	Resources int
	Mounts    int
	Links     int
	Tags      int
}

// Build populates a fresh repository from the configured mounts, links and
// tag rules and makes it current. On error the previous repository stays.
func (s *RepositoryService) Build(ctx context.Context) (*BuildResult, error) {
	op := logging.StartOperation(s.logger, "build")
	start := time.Now()

	repo := repository.New(s.repositoryOptions()...)

	for i, m := range s.config.Repository.Mounts {
		if _, err := repo.Add(m.Path, m.Source); err != nil {
			err = fmt.Errorf("mount %d (%s <- %s): %w", i, m.Path, m.Source, err)
			op.EndWithError(ctx, err)
			return nil, err
		}
	}

	for i, l := range s.config.Repository.Links {
		if _, err := repo.Link(l.Path, l.Ref); err != nil {
			err = fmt.Errorf("link %d (%s -> %s): %w", i, l.Path, l.Ref, err)
			op.EndWithError(ctx, err)
			return nil, err
		}
	}

	if err := s.applyTagRules(repo); err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}

	s.mu.Lock()
	s.repo = repo
	s.mu.Unlock()

	result := &BuildResult{
		Duration:  time.Since(start),
		Resources: repo.Len(),
		Mounts:    len(s.config.Repository.Mounts),
		Links:     len(s.config.Repository.Links),
		Tags:      len(repo.Tags()),
	}
	op.End(ctx, "resources", result.Resources, "tags", result.Tags)

	return result, nil
}

func (s *RepositoryService) repositoryOptions() []repository.Option {
	opts := []repository.Option{
		repository.WithLocator(s.locator),
		repository.WithLogger(s.logger),
	}
	if s.config.History.Enabled {
		opts = append(opts, repository.WithHistory(changestream.WithMaxVersions(s.config.History.MaxVersions)))
	}

	return opts
}

// applyTagRules tags by every configured rule. A rule whose pattern
// matches nothing is not an error.
func (s *RepositoryService) applyTagRules(repo *repository.Repository) error {
	for i, rule := range s.config.Repository.Tags {
		_, err := repo.Tag(rule.Pattern, rule.Tag)
		if rerrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("tag rule %d (%s): %w", i, rule.Pattern, err)
		}
	}

	return nil
}

// DumpFile returns the dump location, resolved against the root directory.
func (s *RepositoryService) DumpFile() string {
	return s.locator.Abs(s.config.Dump.File)
}

// Sources returns the absolute physical source of every configured mount,
// without duplicates, in configuration order.
func (s *RepositoryService) Sources() []string {
	seen := make(map[string]bool, len(s.config.Repository.Mounts))
	sources := make([]string, 0, len(s.config.Repository.Mounts))
	for _, m := range s.config.Repository.Mounts {
		abs := s.locator.Abs(m.Source)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		sources = append(sources, abs)
	}

	return sources
}

// RootDir returns the absolute root directory.
func (s *RepositoryService) RootDir() string {
	root := s.config.Repository.RootDir
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}

	return root
}

// Load rebuilds the repository from the dump file without reading any
// source. With dump.read_only the result is frozen.
func (s *RepositoryService) Load(ctx context.Context) error {
	op := logging.StartOperation(s.logger, "load dump")

	d, err := dump.Read(s.fs, s.DumpFile())
	if err != nil {
		op.EndWithError(ctx, err)
		return err
	}

	opts := []dump.Option{dump.WithRepositoryOptions(s.repositoryOptions()...)}
	if s.config.Dump.ReadOnly {
		opts = append(opts, dump.ReadOnly())
	}

	repo, err := dump.Restore(d, opts...)
	if err != nil {
		op.EndWithError(ctx, err)
		return err
	}

	s.mu.Lock()
	s.repo = repo
	s.mu.Unlock()

	op.End(ctx, "file", s.DumpFile(), "resources", repo.Len(), "read_only", repo.ReadOnly())

	return nil
}

// Open loads the dump when one exists and builds from configuration
// otherwise.
func (s *RepositoryService) Open(ctx context.Context) error {
	exists, err := afero.Exists(s.fs, s.DumpFile())
	if err != nil {
		return rerrors.NewIOError(s.DumpFile(), "failed to check dump", err)
	}
	if exists {
		return s.Load(ctx)
	}

	_, err = s.Build(ctx)

	return err
}

// SaveDump writes the current repository to the dump file and returns its
// path.
func (s *RepositoryService) SaveDump(ctx context.Context) (string, error) {
	repo, err := s.current()
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	d := dump.Export(repo, s.RootDir())
	s.mu.RUnlock()

	file := s.DumpFile()
	if err := dump.Write(s.fs, file, d); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "Dump written", "file", file, "resources", len(d.Paths))

	return file, nil
}

// Repository returns the underlying repository. Callers must not use it
// concurrently with the service.
func (s *RepositoryService) Repository() *repository.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.repo
}

func (s *RepositoryService) current() (*repository.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return nil, rerrors.NewConfigError("repository not opened", nil)
	}

	return s.repo, nil
}
