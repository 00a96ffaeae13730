package services

import (
	"context"
	"path/filepath"
	"sort"

	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/pathpattern"
	"github.com/conneroisu/resrepo/internal/repository"
	"github.com/conneroisu/resrepo/internal/resource"
	"github.com/conneroisu/resrepo/internal/watcher"
)

// ApplyResult lists the repository paths touched by a batch of events.
type ApplyResult struct {
	Added    []string `json:"added,omitempty" yaml:"added,omitempty"`
	Detached []string `json:"detached,omitempty" yaml:"detached,omitempty"`
	Pruned   []string `json:"pruned,omitempty" yaml:"pruned,omitempty"`
	Modified []string `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// Empty reports whether the batch changed nothing.
func (r *ApplyResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Detached) == 0 && len(r.Pruned) == 0 && len(r.Modified) == 0
}

// attachment is a node carrying a given physical location.
type attachment struct {
	path string
	loc  resource.Location
}

// ApplyEvents brings the repository in line with physical changes:
// vanished sources lose their layer, new entries below a mounted directory
// join that directory's layer, and a recreated mount source is added again.
// Tag rules are re-applied after additions.
func (s *RepositoryService) ApplyEvents(ctx context.Context, events []watcher.ChangeEvent) (*ApplyResult, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if repo.ReadOnly() {
		return nil, rerrors.NewReadOnly("apply events")
	}

	result := &ApplyResult{}
	for _, event := range events {
		physical := filepath.Clean(event.Path)

		if event.Type.Gone() {
			if err := s.detach(repo, physical, result); err != nil {
				return result, err
			}
			continue
		}

		if existing := attachedAt(repo, physical); len(existing) > 0 {
			for _, a := range existing {
				result.Modified = append(result.Modified, a.path)
			}
			continue
		}

		if err := s.attach(ctx, repo, physical, result); err != nil {
			return result, err
		}
	}

	if len(result.Added) > 0 {
		if err := s.applyTagRules(repo); err != nil {
			return result, err
		}
	}

	if !result.Empty() {
		s.logger.Info(ctx, "Applied source changes",
			"events", len(events),
			"added", len(result.Added),
			"detached", len(result.Detached),
			"pruned", len(result.Pruned),
			"modified", len(result.Modified))
	}

	return result, nil
}

func (s *RepositoryService) detach(repo *repository.Repository, physical string, result *ApplyResult) error {
	for _, a := range attachedAt(repo, physical) {
		// an ancestor's directory layer may already have taken it
		if !carries(repo, a.path, physical) {
			continue
		}

		pruned, err := repo.RemoveLocation(a.path, physical)
		if err != nil {
			return err
		}
		result.Detached = append(result.Detached, a.path)
		result.Pruned = append(result.Pruned, pruned...)
	}

	return nil
}

func (s *RepositoryService) attach(ctx context.Context, repo *repository.Repository, physical string, result *ApplyResult) error {
	for _, m := range s.config.Repository.Mounts {
		if s.locator.Abs(m.Source) != physical {
			continue
		}
		n, err := repo.Add(m.Path, m.Source)
		if err != nil {
			return err
		}
		result.Added = append(result.Added, n.Path())
		return nil
	}

	parent := filepath.Dir(physical)
	for _, a := range attachedAt(repo, parent) {
		if a.loc.Kind != resource.KindDirectory {
			continue
		}

		path := pathpattern.Join(a.path, filepath.Base(physical))
		n, err := repo.Extend(path, physical, a.loc)
		if err != nil {
			s.logger.Warn(ctx, err, "Skipping new source", "path", path, "source", physical)
			continue
		}
		result.Added = append(result.Added, n.Path())
	}

	return nil
}

// attachedAt lists the nodes with a location at physical, shallowest first.
func attachedAt(repo *repository.Repository, physical string) []attachment {
	var out []attachment
	repo.Walk(func(n *resource.Node) {
		for _, loc := range n.Locations() {
			if loc.Kind != resource.KindGeneric && loc.Path == physical {
				out = append(out, attachment{path: n.Path(), loc: loc})
			}
		}
	})

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].path) < len(out[j].path)
	})

	return out
}

func carries(repo *repository.Repository, path, physical string) bool {
	n, err := repo.Get(pathpattern.Escape(path))
	if err != nil {
		return false
	}
	for _, loc := range n.Locations() {
		if loc.Path == physical {
			return true
		}
	}

	return false
}
