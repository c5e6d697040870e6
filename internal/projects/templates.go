package projects

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aegis/internal/stringprocessing"
	"aegis/pkg/aegistypes"
)

// Template is a named, reusable system instruction stored as a text file.
type Template struct {
	Name string // Display name ("Code Reviewer")
	File string // File name ("Code_Reviewer.txt")
}

// ListTemplates returns all templates sorted by file name.
func (s *Store) ListTemplates() ([]Template, error) {
	entries, err := readDirIfExists(s.TemplatesDir())
	if err != nil {
		return nil, err
	}

	var templates []Template
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, stringprocessing.TemplateFileExt) {
			continue
		}
		templates = append(templates, Template{
			Name: stringprocessing.TemplateDisplayName(name),
			File: name,
		})
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].File < templates[j].File })
	return templates, nil
}

func (s *Store) templatePath(name string) (string, error) {
	file := strings.TrimSpace(name)
	if !strings.HasSuffix(file, stringprocessing.TemplateFileExt) {
		base, err := stringprocessing.SanitizeFileBase(name)
		if err != nil {
			return "", err
		}
		file = base + stringprocessing.TemplateFileExt
	}
	if err := checkNames(file); err != nil {
		return "", err
	}
	return filepath.Join(s.TemplatesDir(), file), nil
}

// ReadTemplate returns a template's content. name is either the display name or the file name.
func (s *Store) ReadTemplate(name string) (string, error) {
	path, err := s.templatePath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", &aegistypes.PreconditionError{Reason: fmt.Sprintf("template '%s' not found", name)}
	}
	if err != nil {
		return "", &aegistypes.PersistenceError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

// CreateTemplate writes a new template. Empty names or contents are rejected.
func (s *Store) CreateTemplate(name, content string) (Template, error) {
	if strings.TrimSpace(name) == "" {
		return Template{}, &aegistypes.PreconditionError{Reason: "template name cannot be empty"}
	}
	if strings.TrimSpace(content) == "" {
		return Template{}, &aegistypes.PreconditionError{Reason: "template content cannot be empty"}
	}

	path, err := s.templatePath(name)
	if err != nil {
		return Template{}, err
	}
	if err := os.MkdirAll(s.TemplatesDir(), 0755); err != nil {
		return Template{}, &aegistypes.PersistenceError{Op: "create", Path: s.TemplatesDir(), Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return Template{}, &aegistypes.PersistenceError{Op: "write", Path: path, Err: err}
	}

	file := filepath.Base(path)
	return Template{Name: stringprocessing.TemplateDisplayName(file), File: file}, nil
}

// DeleteTemplate removes a template file.
func (s *Store) DeleteTemplate(t Template) error {
	if err := checkNames(t.File); err != nil {
		return err
	}
	path := filepath.Join(s.TemplatesDir(), t.File)
	if err := os.Remove(path); err != nil {
		return &aegistypes.PersistenceError{Op: "delete", Path: path, Err: err}
	}
	return nil
}
