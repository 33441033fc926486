// Package project implements named window groups and their process-wide
// store. The system default project always mirrors the live window set; user
// projects persist until deleted and are pruned against the live set on
// every validation pass.
package project

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/whirl-wm/whirl/internal/wm"
)

// SystemProjectName labels the default project that restores the
// pre-activation layout when selected.
const SystemProjectName = "All Windows"

// Project is one named window group.
type Project struct {
	ID      string        `toml:"id"`
	Name    string        `toml:"name"`
	Windows []wm.WindowID `toml:"windows"`
	System  bool          `toml:"system"`
}

// Has reports membership of a window.
func (p *Project) Has(id wm.WindowID) bool {
	for _, w := range p.Windows {
		if w == id {
			return true
		}
	}
	return false
}

// Toggle flips membership of a window. Toggling twice restores the original
// membership set.
func (p *Project) Toggle(id wm.WindowID) {
	for i, w := range p.Windows {
		if w == id {
			p.Windows = append(p.Windows[:i], p.Windows[i+1:]...)
			return
		}
	}
	p.Windows = append(p.Windows, id)
}

// Store holds the ordered project list. Index 0 is always the system
// default. The store is owned by the interactive goroutine; persistence is a
// side concern handled by Load/Save.
type Store struct {
	projects []*Project
}

// NewStore returns a store containing only the system project.
func NewStore() *Store {
	return &Store{projects: []*Project{{
		ID:     uuid.New().String(),
		Name:   SystemProjectName,
		System: true,
	}}}
}

// Projects returns the ordered list, system project first.
func (s *Store) Projects() []*Project { return s.projects }

// Get returns the project with the given id.
func (s *Store) Get(id string) (*Project, bool) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Validate rebuilds the system project from the live window set and
// intersects every user project with it, dropping references to closed
// windows.
func (s *Store) Validate(live []wm.WindowInfo) {
	system := s.projects[0]
	system.Windows = system.Windows[:0]
	for _, w := range live {
		system.Windows = append(system.Windows, w.ID)
	}
	for _, p := range s.projects[1:] {
		p.Windows = wm.PruneToLive(p.Windows, live)
	}
}

// Create appends a new empty user project and returns it. Duplicate names
// get a numeric suffix.
func (s *Store) Create(name string) *Project {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	name = s.uniqueName(name)
	p := &Project{ID: uuid.New().String(), Name: name}
	s.projects = append(s.projects, p)
	return p
}

// Rename changes a user project's name. The system project cannot be renamed.
func (s *Store) Rename(id, name string) error {
	p, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("project %s not found", id)
	}
	if p.System {
		return fmt.Errorf("the system project cannot be renamed")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("project name is required")
	}
	p.Name = s.uniqueName(name)
	return nil
}

// Clone duplicates a project (including the system project) into a new user
// project and returns it.
func (s *Store) Clone(id string) (*Project, error) {
	src, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("project %s not found", id)
	}
	dup := &Project{
		ID:      uuid.New().String(),
		Name:    s.uniqueName(src.Name + " copy"),
		Windows: append([]wm.WindowID(nil), src.Windows...),
	}
	s.projects = append(s.projects, dup)
	return dup, nil
}

// Delete removes a user project. Deleting the system project is refused.
func (s *Store) Delete(id string) error {
	for i, p := range s.projects {
		if p.ID != id {
			continue
		}
		if p.System {
			return fmt.Errorf("the system project cannot be deleted")
		}
		s.projects = append(s.projects[:i], s.projects[i+1:]...)
		return nil
	}
	return fmt.Errorf("project %s not found", id)
}

// Move shifts a user project by delta positions within the user range. The
// system project is pinned at index 0.
func (s *Store) Move(id string, delta int) {
	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return
	}
	target := idx + delta
	if target < 1 {
		target = 1
	}
	if target > len(s.projects)-1 {
		target = len(s.projects) - 1
	}
	p := s.projects[idx]
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	s.projects = append(s.projects[:target], append([]*Project{p}, s.projects[target:]...)...)
}

// Filter returns projects whose name contains query, case-insensitive. An
// empty query returns everything.
func (s *Store) Filter(query string) []*Project {
	if query == "" {
		return s.projects
	}
	q := strings.ToLower(query)
	var out []*Project
	for _, p := range s.projects {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) uniqueName(name string) string {
	taken := make(map[string]bool, len(s.projects))
	for _, p := range s.projects {
		taken[p.Name] = true
	}
	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
