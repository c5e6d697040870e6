package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aegis/internal/botfile"
	"aegis/internal/logger"
	"aegis/internal/projects"
	"aegis/internal/stringprocessing"
	"aegis/internal/workspace"
	"aegis/pkg/aegistypes"
)

// LoadReport summarizes loading a set of bot files into the workspace.
type LoadReport struct {
	Project string   // Active project after the load ("" for standalone)
	Loaded  []string // Canonical names of loaded bots, in load order
	Skipped []error  // Files that could not be loaded
	Offline []string // Bots left without a live session
}

// ProjectService owns workspace lifecycle: loading projects and standalone bots,
// creating and deleting bots, and persisting dirty conversations.
type ProjectService struct {
	workspace *workspace.Workspace
	store     *projects.Store
	sessions  *SessionService
}

// NewProjectService creates a project service.
func NewProjectService(ws *workspace.Workspace, store *projects.Store, sessions *SessionService) *ProjectService {
	return &ProjectService{workspace: ws, store: store, sessions: sessions}
}

// Name returns the service name.
func (p *ProjectService) Name() string {
	return "project"
}

// Workspace returns the workspace this service loads bots into.
func (p *ProjectService) Workspace() *workspace.Workspace {
	return p.workspace
}

// Store returns the underlying project store.
func (p *ProjectService) Store() *projects.Store {
	return p.store
}

// SaveAll writes every dirty bot back to its file. Failed bots stay dirty; the
// returned error joins every failure and the count covers successful saves only.
func (p *ProjectService) SaveAll() (int, error) {
	saved := 0
	var errs []error
	for _, bot := range p.workspace.DirtyBots() {
		if bot.FilePath == "" {
			continue
		}
		if err := botfile.Save(bot.FilePath, bot.Conversation); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.workspace.MarkSaved(bot.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
		logger.Debug("Bot saved", "bot", bot.Name, "path", bot.FilePath, "turns", bot.Conversation.Len())
	}
	return saved, errors.Join(errs...)
}

// LoadBot reads a bot file into the workspace, replacing any bot of the same name,
// and binds a session to it. A failing session start leaves the bot offline.
func (p *ProjectService) LoadBot(ctx context.Context, path string) (*workspace.Bot, error) {
	conv, err := botfile.Load(path)
	if err != nil {
		return nil, err
	}

	name := stringprocessing.BotNameFromPath(path)
	bot := p.workspace.Register(name, path, conv)
	if err := p.sessions.Bind(ctx, bot.Name); err != nil {
		logger.Warn("Bot loaded without a live session", "bot", bot.Name, "error", err)
	}
	return bot, nil
}

// clearWorkspace persists dirty bots and then empties the workspace. If saving fails
// the workspace is left untouched so no turns are lost.
func (p *ProjectService) clearWorkspace() error {
	if _, err := p.SaveAll(); err != nil {
		return fmt.Errorf("refusing to clear workspace with unsaved bots: %w", err)
	}
	p.workspace.Clear()
	return nil
}

// SwitchProject saves the current workspace, clears it and loads every bot of project.
func (p *ProjectService) SwitchProject(ctx context.Context, project string) (*LoadReport, error) {
	project, err := stringprocessing.SanitizeFileBase(project)
	if err != nil {
		return nil, err
	}
	if !p.store.ProjectExists(project) {
		return nil, &aegistypes.PreconditionError{Reason: fmt.Sprintf("project '%s' not found", project)}
	}

	files, err := p.store.ProjectBotFiles(project)
	if err != nil {
		return nil, err
	}

	if err := p.clearWorkspace(); err != nil {
		return nil, err
	}
	p.workspace.SetActiveProject(project)

	report := &LoadReport{Project: project}
	for _, file := range files {
		bot, err := p.LoadBot(ctx, file)
		if err != nil {
			logger.Warn("Skipping bot file", "path", file, "error", err)
			report.Skipped = append(report.Skipped, err)
			continue
		}
		report.Loaded = append(report.Loaded, bot.Name)
		if bot.Offline() {
			report.Offline = append(report.Offline, bot.Name)
		}
	}

	logger.Info("Project activated", "project", project, "bots", len(report.Loaded), "skipped", len(report.Skipped))
	return report, nil
}

// LoadStandalone saves and clears the workspace, then loads the standalone bot matching query.
func (p *ProjectService) LoadStandalone(ctx context.Context, query string) (*workspace.Bot, error) {
	path, ok := p.store.FindStandaloneBot(query)
	if !ok {
		return nil, &aegistypes.UnknownBotError{Name: query}
	}

	if err := p.clearWorkspace(); err != nil {
		return nil, err
	}
	p.workspace.SetActiveProject("")

	return p.LoadBot(ctx, path)
}

// CreateProject creates an empty project directory and returns its sanitized name.
func (p *ProjectService) CreateProject(name string) (string, error) {
	return p.store.CreateProject(name)
}

// DeleteProject removes a project from disk. Deleting the active project also clears
// the workspace without saving, since the files it would save to are gone.
func (p *ProjectService) DeleteProject(name string) error {
	project, err := stringprocessing.SanitizeFileBase(name)
	if err != nil {
		return err
	}
	if err := p.store.DeleteProject(project); err != nil {
		return err
	}
	if p.workspace.ActiveProject() == project {
		p.workspace.Clear()
		p.workspace.SetActiveProject("")
	}
	logger.Info("Project deleted", "project", project)
	return nil
}

func (p *ProjectService) requireActiveProject() (string, error) {
	project := p.workspace.ActiveProject()
	if project == "" {
		return "", &aegistypes.PreconditionError{Reason: "no active project; set one first"}
	}
	return project, nil
}

// CreateBot bootstraps a new bot in the active project from a system instruction.
func (p *ProjectService) CreateBot(ctx context.Context, name, instruction string) (*workspace.Bot, error) {
	project, err := p.requireActiveProject()
	if err != nil {
		return nil, err
	}

	base, err := stringprocessing.SanitizeFileBase(name)
	if err != nil {
		return nil, err
	}
	if p.workspace.Contains(base) {
		return nil, &aegistypes.DuplicateBotError{Name: base}
	}

	path, err := p.store.BotPath(project, base)
	if err != nil {
		return nil, err
	}
	conv, err := botfile.Create(path, instruction)
	if err != nil {
		return nil, err
	}

	bot, err := p.workspace.RegisterUnique(base, path, conv)
	if err != nil {
		return nil, err
	}
	if err := p.store.RecordBot(project, filepath.Base(path)); err != nil {
		logger.Warn("Failed to update project manifest", "project", project, "error", err)
	}
	if err := p.sessions.Bind(ctx, bot.Name); err != nil {
		logger.Warn("Bot created without a live session", "bot", bot.Name, "error", err)
	}

	logger.Info("Bot created", "bot", bot.Name, "project", project)
	return bot, nil
}

// CreateStandaloneBot writes a new bot file directly in the projects directory, then
// saves and clears the workspace and loads the bot on its own, as LoadStandalone does.
// A standalone bot or project of the same name makes it fail with DuplicateBotError.
func (p *ProjectService) CreateStandaloneBot(ctx context.Context, name, instruction string) (*workspace.Bot, error) {
	base, err := stringprocessing.SanitizeFileBase(name)
	if err != nil {
		return nil, err
	}
	if p.store.ProjectExists(base) {
		return nil, &aegistypes.DuplicateBotError{Name: base}
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, &aegistypes.PreconditionError{Reason: "system instruction cannot be empty"}
	}
	path, err := p.store.BotPath("", base)
	if err != nil {
		return nil, err
	}
	if _, found := p.store.FindStandaloneBot(base); found {
		return nil, &aegistypes.DuplicateBotError{Name: base}
	}
	if _, err := os.Stat(path); err == nil {
		return nil, &aegistypes.DuplicateBotError{Name: base}
	}

	if err := p.clearWorkspace(); err != nil {
		return nil, err
	}
	p.workspace.SetActiveProject("")

	if _, err := botfile.Create(path, instruction); err != nil {
		return nil, err
	}
	bot, err := p.LoadBot(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Info("Standalone bot created", "bot", bot.Name)
	return bot, nil
}

// AddExistingBot copies a bot from another project into the active one and loads it.
// If a bot with that name is already loaded or present in the project, DuplicateBotError
// is returned unless replace is set.
func (p *ProjectService) AddExistingBot(ctx context.Context, ref projects.BotRef, replace bool) (*workspace.Bot, error) {
	project, err := p.requireActiveProject()
	if err != nil {
		return nil, err
	}
	if ref.Project == project {
		return nil, &aegistypes.PreconditionError{Reason: fmt.Sprintf("bot '%s' is already part of project '%s'", ref.Name(), project)}
	}
	if !replace && p.workspace.Contains(ref.Name()) {
		return nil, &aegistypes.DuplicateBotError{Name: ref.Name()}
	}

	path, err := p.store.CopyBot(ref, project, replace)
	if err != nil {
		return nil, err
	}
	return p.LoadBot(ctx, path)
}

// DeleteBot removes a bot file from the active project and drops it from the workspace.
func (p *ProjectService) DeleteBot(file string) error {
	project, err := p.requireActiveProject()
	if err != nil {
		return err
	}

	if err := p.store.DeleteBot(project, file); err != nil {
		return err
	}

	name := stringprocessing.BotNameFromPath(file)
	if p.workspace.Contains(name) {
		if err := p.workspace.Remove(name); err != nil {
			return err
		}
	}
	logger.Info("Bot deleted", "bot", name, "project", project)
	return nil
}

// ProjectBots lists the bot files of the active project.
func (p *ProjectService) ProjectBots() ([]projects.BotRef, error) {
	project, err := p.requireActiveProject()
	if err != nil {
		return nil, err
	}

	files, err := p.store.ProjectBotFiles(project)
	if err != nil {
		return nil, err
	}
	refs := make([]projects.BotRef, 0, len(files))
	for _, file := range files {
		refs = append(refs, projects.BotRef{Project: project, File: filepath.Base(file)})
	}
	return refs, nil
}

// Shutdown persists every dirty bot.
func (p *ProjectService) Shutdown() error {
	saved, err := p.SaveAll()
	logger.Info("Workspace saved on shutdown", "bots", saved)
	return err
}
