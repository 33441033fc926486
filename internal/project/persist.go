package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// fileFormat is the on-disk shape. Only user projects are persisted; the
// system project is rebuilt from the live window set on every validation.
type fileFormat struct {
	Projects []*Project `toml:"projects"`
}

// StatePath returns the project store file path.
func StatePath() (string, error) {
	path, err := xdg.StateFile(filepath.Join("whirl", "projects.toml"))
	if err != nil {
		return "", fmt.Errorf("could not resolve project store path: %w", err)
	}
	return path, nil
}

// Load reads persisted user projects into a fresh store. A missing file
// yields a store with only the system project.
func Load() (*Store, error) {
	s := NewStore()
	path, err := StatePath()
	if err != nil {
		return s, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("could not read project store: %w", err)
	}
	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return s, fmt.Errorf("could not parse project store %s: %w", path, err)
	}
	for _, p := range f.Projects {
		if p.System || p.Name == "" {
			continue
		}
		s.projects = append(s.projects, p)
	}
	return s, nil
}

// Save writes the user projects to disk.
func (s *Store) Save() error {
	path, err := StatePath()
	if err != nil {
		return err
	}
	f := fileFormat{}
	for _, p := range s.projects {
		if !p.System {
			f.Projects = append(f.Projects, p)
		}
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("could not marshal project store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write project store: %w", err)
	}
	return nil
}
