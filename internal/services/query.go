package services

import (
	"time"

	"github.com/conneroisu/resrepo/internal/repository"
	"github.com/conneroisu/resrepo/internal/resource"
)

// Resource is a detached view of one repository node.
type Resource struct {
	Path      string     `json:"path" yaml:"path"`
	Kind      string     `json:"kind" yaml:"kind"`
	Location  string     `json:"location,omitempty" yaml:"location,omitempty"`
	Locations []Location `json:"locations" yaml:"locations"`
	Children  []string   `json:"children,omitempty" yaml:"children,omitempty"`
	Tags      []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Location is one backing layer of a Resource, oldest first.
type Location struct {
	Kind  string `json:"kind" yaml:"kind"`
	Path  string `json:"path" yaml:"path"`
	Mount string `json:"mount,omitempty" yaml:"mount,omitempty"`
}

// Metadata is the stat view of a resource.
type Metadata struct {
	Path       string    `json:"path" yaml:"path"`
	Size       int64     `json:"size" yaml:"size"`
	ModTime    time.Time `json:"mod_time,omitzero" yaml:"mod_time,omitempty"`
	AccessTime time.Time `json:"access_time,omitzero" yaml:"access_time,omitempty"`
	ChangeTime time.Time `json:"change_time,omitzero" yaml:"change_time,omitempty"`
}

// Version is one entry of a resource history.
type Version struct {
	Version   int        `json:"version" yaml:"version"`
	Kind      string     `json:"kind" yaml:"kind"`
	Recorded  time.Time  `json:"recorded" yaml:"recorded"`
	Locations []Location `json:"locations" yaml:"locations"`
}

// History is the recorded versions of one path, newest last.
type History struct {
	Path     string    `json:"path" yaml:"path"`
	Live     bool      `json:"live" yaml:"live"`
	Versions []Version `json:"versions" yaml:"versions"`
}

func newResource(repo *repository.Repository, n *resource.Node) Resource {
	r := Resource{
		Path:      n.Path(),
		Kind:      n.Kind().String(),
		Locations: newLocations(n.Locations()),
		Children:  n.ChildNames(),
	}
	if loc, ok := n.Location(); ok {
		r.Location = loc.Path
	}
	if tags, err := repo.TagsOf(n.Path()); err == nil && len(tags) > 0 {
		r.Tags = tags
	}

	return r
}

func newResources(repo *repository.Repository, nodes []*resource.Node) []Resource {
	out := make([]Resource, len(nodes))
	for i, n := range nodes {
		out[i] = newResource(repo, n)
	}

	return out
}

func newLocations(locs []resource.Location) []Location {
	out := make([]Location, len(locs))
	for i, loc := range locs {
		out[i] = Location{Kind: loc.Kind.String(), Path: loc.Path, Mount: loc.Mount}
	}

	return out
}

// Get returns the resource at path.
func (s *RepositoryService) Get(path string) (Resource, error) {
	repo, err := s.current()
	if err != nil {
		return Resource{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := repo.Get(path)
	if err != nil {
		return Resource{}, err
	}

	return newResource(repo, n), nil
}

// Find returns the resources selected by pattern in pre-order.
func (s *RepositoryService) Find(pattern string) ([]Resource, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, err := repo.Find(pattern)
	if err != nil {
		return nil, err
	}

	return newResources(repo, nodes), nil
}

// ListChildren returns the children of the directory at path.
func (s *RepositoryService) ListChildren(path string) ([]Resource, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, err := repo.ListChildren(path)
	if err != nil {
		return nil, err
	}

	return newResources(repo, nodes), nil
}

// GetByTag returns the current members of tag.
func (s *RepositoryService) GetByTag(tag string) ([]Resource, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return newResources(repo, repo.GetByTag(tag)), nil
}

// Tags returns every tag with its member paths, in creation order.
func (s *RepositoryService) Tags() (map[string][]string, []string, error) {
	repo, err := s.current()
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := repo.Tags()
	members := make(map[string][]string, len(names))
	for _, name := range names {
		for _, n := range repo.GetByTag(name) {
			members[name] = append(members[name], n.Path())
		}
	}

	return members, names, nil
}

// Metadata stats the winning location of path.
func (s *RepositoryService) Metadata(path string) (Metadata, error) {
	repo, err := s.current()
	if err != nil {
		return Metadata{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := repo.Get(path)
	if err != nil {
		return Metadata{}, err
	}

	md, err := repo.Metadata(n.Path())
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{
		Path:       n.Path(),
		Size:       md.Size,
		ModTime:    md.ModTime,
		AccessTime: md.AccessTime,
		ChangeTime: md.ChangeTime,
	}, nil
}

// History returns the recorded versions of path.
func (s *RepositoryService) History(path string) (History, error) {
	repo, err := s.current()
	if err != nil {
		return History{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stack, err := repo.History(path)
	if err != nil {
		return History{}, err
	}

	h := History{Path: stack.Path(), Live: stack.Live()}
	for _, v := range stack.Versions() {
		snap, err := stack.Snapshot(v)
		if err != nil {
			return History{}, err
		}
		h.Versions = append(h.Versions, Version{
			Version:   v,
			Kind:      snap.Kind().String(),
			Recorded:  snap.Recorded(),
			Locations: newLocations(snap.Locations()),
		})
	}

	return h, nil
}

// Tag tags every resource selected by pattern and returns them.
func (s *RepositoryService) Tag(pattern, tag string) ([]Resource, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := repo.Tag(pattern, tag)
	if err != nil {
		return nil, err
	}

	return newResources(repo, nodes), nil
}

// Untag removes the named tags, or every tag when none is named, from the
// resources selected by pattern.
func (s *RepositoryService) Untag(pattern string, tags ...string) ([]Resource, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := repo.Untag(pattern, tags...)
	if err != nil {
		return nil, err
	}

	return newResources(repo, nodes), nil
}

// Add layers source at path.
func (s *RepositoryService) Add(path, source string) (Resource, error) {
	repo, err := s.current()
	if err != nil {
		return Resource{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := repo.Add(path, source)
	if err != nil {
		return Resource{}, err
	}

	return newResource(repo, n), nil
}

// Remove deletes the resources selected by pattern and returns the removed
// paths.
func (s *RepositoryService) Remove(pattern string) ([]string, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return repo.Remove(pattern)
}

// Restore reinstates a recorded version of path. The returned resource is
// nil when the version leaves nothing at path.
func (s *RepositoryService) Restore(path string, version int) (*Resource, error) {
	repo, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := repo.Restore(path, version)
	if err != nil || n == nil {
		return nil, err
	}

	r := newResource(repo, n)

	return &r, nil
}
