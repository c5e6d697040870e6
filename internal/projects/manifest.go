package projects

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"aegis/pkg/aegistypes"
)

// ManifestFileName is the per-project manifest. Its leading dot keeps it out of bot listings.
const ManifestFileName = ".aegis-project.yaml"

// Manifest records project metadata that the directory listing alone cannot express.
type Manifest struct {
	Description string   `yaml:"description,omitempty"`
	Bots        []string `yaml:"bots"` // Bot file names in the order they were added
}

func (s *Store) manifestPath(project string) string {
	return filepath.Join(s.ProjectDir(project), ManifestFileName)
}

// ReadManifest loads a project's manifest. A missing manifest is an empty one.
func (s *Store) ReadManifest(project string) (*Manifest, error) {
	path := s.manifestPath(project)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, &aegistypes.PersistenceError{Op: "read", Path: path, Err: err}
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, &aegistypes.PersistenceError{Op: "parse", Path: path, Err: err}
	}
	return &manifest, nil
}

// WriteManifest stores a project's manifest.
func (s *Store) WriteManifest(project string, manifest *Manifest) error {
	path := s.manifestPath(project)
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return &aegistypes.PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &aegistypes.PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// RecordBot appends a bot file to the manifest if it is not listed yet.
func (s *Store) RecordBot(project, file string) error {
	manifest, err := s.ReadManifest(project)
	if err != nil {
		return err
	}
	if slices.Contains(manifest.Bots, file) {
		return nil
	}
	manifest.Bots = append(manifest.Bots, file)
	return s.WriteManifest(project, manifest)
}

// ForgetBot removes a bot file from the manifest.
func (s *Store) ForgetBot(project, file string) error {
	manifest, err := s.ReadManifest(project)
	if err != nil {
		return err
	}
	idx := slices.Index(manifest.Bots, file)
	if idx < 0 {
		return nil
	}
	manifest.Bots = slices.Delete(manifest.Bots, idx, idx+1)
	return s.WriteManifest(project, manifest)
}
