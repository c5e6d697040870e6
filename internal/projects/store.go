// Package projects manages the on-disk layout Aegis works in:
//
//	<root>/projects/<project>/<bot>.json   bots grouped in a project
//	<root>/projects/<bot>.json             standalone bots
//	<root>/templates/<name>.txt            reusable system instructions
//
// Each project may carry a YAML manifest recording the order bots were added in.
package projects

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aegis/internal/botfile"
	"aegis/internal/stringprocessing"
	"aegis/pkg/aegistypes"
)

const (
	projectsDirName  = "projects"
	templatesDirName = "templates"
)

// BotRef locates a bot file inside a project.
type BotRef struct {
	Project string // Project directory name
	File    string // File name inside the project directory
}

// Name returns the bot name the file loads as.
func (r BotRef) Name() string {
	return stringprocessing.BotNameFromPath(r.File)
}

// Store gives access to projects, standalone bots and templates below a root directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. Nothing is created on disk until EnsureLayout.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// ProjectsDir returns the directory holding projects and standalone bots.
func (s *Store) ProjectsDir() string {
	return filepath.Join(s.root, projectsDirName)
}

// TemplatesDir returns the directory holding template files.
func (s *Store) TemplatesDir() string {
	return filepath.Join(s.root, templatesDirName)
}

// ProjectDir returns the directory of a project.
func (s *Store) ProjectDir(project string) string {
	return filepath.Join(s.ProjectsDir(), project)
}

// EnsureLayout creates the projects and templates directories if missing.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{s.ProjectsDir(), s.TemplatesDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &aegistypes.PersistenceError{Op: "create", Path: dir, Err: err}
		}
	}
	return nil
}

// ListProjects returns project names sorted alphabetically.
func (s *Store) ListProjects() ([]string, error) {
	entries, err := readDirIfExists(s.ProjectsDir())
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ProjectExists reports whether a project directory exists.
func (s *Store) ProjectExists(project string) bool {
	if !stringprocessing.IsSafeFileBase(project) {
		return false
	}
	info, err := os.Stat(s.ProjectDir(project))
	return err == nil && info.IsDir()
}

// CreateProject creates an empty project directory. The name is sanitized for the file system.
func (s *Store) CreateProject(name string) (string, error) {
	project, err := stringprocessing.SanitizeFileBase(name)
	if err != nil {
		return "", err
	}
	if s.ProjectExists(project) {
		return "", &aegistypes.PreconditionError{Reason: fmt.Sprintf("project '%s' already exists", project)}
	}
	if err := os.MkdirAll(s.ProjectDir(project), 0755); err != nil {
		return "", &aegistypes.PersistenceError{Op: "create", Path: s.ProjectDir(project), Err: err}
	}
	return project, nil
}

// DeleteProject removes a project directory and everything in it.
func (s *Store) DeleteProject(name string) error {
	project, err := stringprocessing.SanitizeFileBase(name)
	if err != nil {
		return err
	}
	if !s.ProjectExists(project) {
		return &aegistypes.PreconditionError{Reason: fmt.Sprintf("project '%s' not found", name)}
	}
	if err := os.RemoveAll(s.ProjectDir(project)); err != nil {
		return &aegistypes.PersistenceError{Op: "delete", Path: s.ProjectDir(project), Err: err}
	}
	return nil
}

// BotPath returns the file a new bot with the given name is written to.
// An empty project means a standalone bot.
func (s *Store) BotPath(project, botName string) (string, error) {
	base, err := stringprocessing.SanitizeFileBase(botName)
	if err != nil {
		return "", err
	}
	file := base + stringprocessing.BotFileExt
	if project == "" {
		return filepath.Join(s.ProjectsDir(), file), nil
	}
	if !stringprocessing.IsSafeFileBase(project) {
		return "", invalidName(project)
	}
	return filepath.Join(s.ProjectDir(project), file), nil
}

func invalidName(name string) error {
	return &aegistypes.PreconditionError{Reason: fmt.Sprintf("invalid name '%s'", name)}
}

// checkNames rejects any name that is not a single path element.
func checkNames(names ...string) error {
	for _, name := range names {
		if !stringprocessing.IsSafeFileBase(name) {
			return invalidName(name)
		}
	}
	return nil
}

// ProjectBotFiles returns the paths of every bot file in a project: first in manifest
// order, then any unlisted bot files by name. Files that are not valid JSON are skipped.
func (s *Store) ProjectBotFiles(project string) ([]string, error) {
	if !s.ProjectExists(project) {
		return nil, &aegistypes.PreconditionError{Reason: fmt.Sprintf("project '%s' not found", project)}
	}

	dir := s.ProjectDir(project)
	entries, err := readDirIfExists(dir)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if botfile.IsBotFile(filepath.Join(dir, name)) {
			present[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)

	manifest, err := s.ReadManifest(project)
	if err != nil {
		return nil, err
	}

	var ordered []string
	seen := make(map[string]bool)
	for _, name := range manifest.Bots {
		if present[name] && !seen[name] {
			ordered = append(ordered, filepath.Join(dir, name))
			seen[name] = true
		}
	}
	for _, name := range names {
		if !seen[name] {
			ordered = append(ordered, filepath.Join(dir, name))
		}
	}
	return ordered, nil
}

// ListProjectBots returns refs to all bots in every project except the excluded one.
func (s *Store) ListProjectBots(exclude string) ([]BotRef, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}

	var refs []BotRef
	for _, project := range projects {
		if project == exclude {
			continue
		}
		files, err := s.ProjectBotFiles(project)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			refs = append(refs, BotRef{Project: project, File: filepath.Base(file)})
		}
	}
	return refs, nil
}

// FindStandaloneBot looks for a bot file directly in the projects directory whose name,
// with or without ".json", case-insensitively equals query.
func (s *Store) FindStandaloneBot(query string) (string, bool) {
	entries, err := readDirIfExists(s.ProjectsDir())
	if err != nil {
		return "", false
	}

	query = strings.TrimSpace(query)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(name, query) && !strings.EqualFold(stringprocessing.BotNameFromPath(name), query) {
			continue
		}
		path := filepath.Join(s.ProjectsDir(), name)
		if botfile.IsBotFile(path) {
			return path, true
		}
	}
	return "", false
}

// CopyBot copies a bot file into the destination project and returns the new path.
// An existing destination file is only replaced when overwrite is true.
func (s *Store) CopyBot(ref BotRef, destProject string, overwrite bool) (string, error) {
	if err := checkNames(ref.Project, ref.File, destProject); err != nil {
		return "", err
	}
	src := filepath.Join(s.ProjectDir(ref.Project), ref.File)
	dst := filepath.Join(s.ProjectDir(destProject), ref.File)

	if _, err := os.Stat(dst); err == nil && !overwrite {
		return "", &aegistypes.DuplicateBotError{Name: ref.Name()}
	}

	if err := copyFile(src, dst); err != nil {
		return "", &aegistypes.PersistenceError{Op: "write", Path: dst, Err: err}
	}
	if err := s.RecordBot(destProject, ref.File); err != nil {
		return "", err
	}
	return dst, nil
}

// DeleteBot removes a bot file from a project and its manifest entry.
func (s *Store) DeleteBot(project, file string) error {
	if err := checkNames(project, file); err != nil {
		return err
	}
	path := filepath.Join(s.ProjectDir(project), file)
	if err := os.Remove(path); err != nil {
		return &aegistypes.PersistenceError{Op: "delete", Path: path, Err: err}
	}
	return s.ForgetBot(project, file)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func readDirIfExists(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &aegistypes.PersistenceError{Op: "read", Path: dir, Err: err}
	}
	return entries, nil
}
