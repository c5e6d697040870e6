package shell

import (
	"errors"
	"fmt"
	"strings"

	"aegis/internal/projects"
	"aegis/internal/stringprocessing"
	"aegis/pkg/aegistypes"
)

func (s *Shell) projectMenu(in LineReader, _ []string) {
	s.printer.ClearScreen()
	active := s.workspace.ActiveProject()
	if active == "" {
		active = "None"
	}
	title := fmt.Sprintf("--- Project Management [Active: %s] ---", active)
	s.printer.Heading(title)
	s.printer.Println("1: Create New Bot (in active project)")
	s.printer.Println("2: Add Existing Bot (copy from another project)")
	s.printer.Println("3: List & Set Active Project")
	s.printer.Println("4: Create New Project")
	s.printer.Println("5: Create Standalone Bot (outside any project)")
	s.printer.Println("0: Cancel / Go Back")
	s.printer.Muted(strings.Repeat("-", len(title)))

	switch s.ask(in, "Select an option: ") {
	case "1":
		s.createBot(in)
	case "2":
		s.addExistingBot(in)
	case "3":
		s.setActiveProject(in)
	case "4":
		s.createProject(in)
	case "5":
		s.createStandaloneBot(in)
	case "0", "":
	default:
		s.printer.Println("Invalid option.")
	}
}

func (s *Shell) createBot(in LineReader) {
	project := s.workspace.ActiveProject()
	if project == "" {
		s.printer.Error("Error: No active project. Please use option 3 to set one first, or option 5 for a standalone bot.")
		return
	}

	instruction, name, ok := s.askNewBot(in)
	if !ok {
		return
	}
	bot, err := s.projects.CreateBot(s.ctx, name, instruction)
	if err != nil {
		s.report(err)
		return
	}
	s.printer.Success(fmt.Sprintf("Bot '%s' created in project '%s'.", bot.Name, project))
	s.showStatus()
}

func (s *Shell) createStandaloneBot(in LineReader) {
	instruction, name, ok := s.askNewBot(in)
	if !ok {
		return
	}
	bot, err := s.projects.CreateStandaloneBot(s.ctx, name, instruction)
	if err != nil {
		s.report(err)
		return
	}
	s.lastViewed = ""
	s.printer.Success(fmt.Sprintf("Standalone bot '%s' created and loaded.", bot.Name))
	s.showStatus()
}

// askNewBot walks through choosing a system instruction and a name for a new bot.
func (s *Shell) askNewBot(in LineReader) (instruction, name string, ok bool) {
	s.printer.Println("\nHow would you like to create this bot?")
	s.printer.Println("1: From a Template")
	s.printer.Println("2: From a New, Unique Prompt")
	s.printer.Println("0: Cancel")

	switch s.ask(in, "Select creation method: ") {
	case "1":
		templates, err := s.projects.Store().ListTemplates()
		if err != nil {
			s.report(err)
			return "", "", false
		}
		if len(templates) == 0 {
			s.printer.Println("No templates found. Please create one first via the 'template' command.")
			return "", "", false
		}
		s.printer.Menu("\nSelect a template:", templateNames(templates))
		idx, ok := s.choose(in, "Choose template: ", len(templates))
		if !ok {
			s.printer.Println("Invalid template choice.")
			return "", "", false
		}
		instruction, err = s.projects.Store().ReadTemplate(templates[idx].File)
		if err != nil {
			s.report(err)
			return "", "", false
		}
	case "2":
		instruction = s.askLines(in, "\nEnter the System Instruction. Press Enter on an empty line to save.")
	default:
		return "", "", false
	}

	if strings.TrimSpace(instruction) == "" {
		s.printer.Println("System instruction cannot be empty. Creation cancelled.")
		return "", "", false
	}

	name = s.ask(in, "\nEnter a name for the new bot: ")
	if name == "" {
		s.printer.Println("Bot name cannot be empty.")
		return "", "", false
	}
	return instruction, name, true
}

func (s *Shell) addExistingBot(in LineReader) {
	project := s.workspace.ActiveProject()
	if project == "" {
		s.printer.Error("Error: No active project. Please use option 3 to set one first.")
		return
	}

	refs, err := s.projects.Store().ListProjectBots(project)
	if err != nil {
		s.report(err)
		return
	}
	if len(refs) == 0 {
		s.printer.Println("No other bots found in other projects to add.")
		return
	}

	items := make([]string, len(refs))
	for i, ref := range refs {
		items[i] = fmt.Sprintf("[%s] -> %s", ref.Project, ref.Name())
	}
	s.printer.Menu("\nSelect a bot to copy into this project:", items)
	idx, ok := s.choose(in, "Choose bot to copy: ", len(refs))
	if !ok {
		s.printer.Println("Invalid bot choice.")
		return
	}
	ref := refs[idx]

	_, err = s.projects.AddExistingBot(s.ctx, ref, false)
	var duplicate *aegistypes.DuplicateBotError
	if errors.As(err, &duplicate) {
		if !s.confirm(in, fmt.Sprintf("Bot '%s' already exists in '%s'. Replace it?", duplicate.Name, project)) {
			s.printer.Println("Add cancelled.")
			return
		}
		_, err = s.projects.AddExistingBot(s.ctx, ref, true)
	}
	if err != nil {
		s.report(err)
		return
	}

	s.printer.Success(fmt.Sprintf("Bot '%s' copied to '%s'.", ref.File, project))
	s.showStatus()
}

func (s *Shell) setActiveProject(in LineReader) {
	names, err := s.projects.Store().ListProjects()
	if err != nil {
		s.report(err)
		return
	}

	s.printer.Println("\nAvailable Projects:")
	if len(names) == 0 {
		s.printer.Println("- No projects found. Use 'project' -> '4: Create New Project' to start.")
		return
	}
	s.printer.Menu("", names)
	s.printer.Println("  0: Go Back")

	answer := s.ask(in, "\nChoose project number to set as active (or 0 to go back): ")
	if answer == "0" || answer == "" {
		return
	}
	idx, ok := parseChoice(answer, len(names))
	if !ok {
		s.printer.Println("Invalid project choice.")
		return
	}
	s.activate(names[idx])
}

func (s *Shell) createProject(in LineReader) {
	name := s.ask(in, "Enter new project name: ")
	project, err := s.projects.CreateProject(name)
	if err != nil {
		s.report(err)
		return
	}
	s.printer.Success(fmt.Sprintf("Project '%s' created.", project))
	s.activate(project)
}

func (s *Shell) activate(project string) {
	report, err := s.projects.SwitchProject(s.ctx, project)
	if err != nil {
		s.report(err)
		return
	}
	s.lastViewed = ""

	s.printer.Success(fmt.Sprintf("\nActive project set to '%s' and loaded with %d bot(s).", report.Project, len(report.Loaded)))
	for _, skipped := range report.Skipped {
		s.printer.Warning("Skipped: " + skipped.Error())
	}
	if s.sessions.Online() && len(report.Offline) > 0 {
		s.printer.Warning("No live session for: " + strings.Join(report.Offline, ", "))
	}
}

func (s *Shell) templateMenu(in LineReader, _ []string) {
	store := s.projects.Store()

	s.printer.ClearScreen()
	s.printer.Heading("--- Template Management ---")
	s.printer.Println("1: Create New Template")
	s.printer.Println("2: List All Templates")
	s.printer.Println("3: View Template Content")
	s.printer.Println("0: Cancel / Go Back")
	s.printer.Muted("--------------------------")

	switch s.ask(in, "Select an option: ") {
	case "1":
		name := s.ask(in, "Enter new template name (e.g., Code Reviewer): ")
		if name == "" {
			s.printer.Println("Name cannot be empty.")
			return
		}
		content := s.askLines(in, "Enter the System Instruction for this template. Press Enter on an empty line to save.")
		if strings.TrimSpace(content) == "" {
			s.printer.Println("Template content cannot be empty.")
			return
		}
		if _, err := store.CreateTemplate(name, content); err != nil {
			s.report(err)
			return
		}
		s.printer.Success(fmt.Sprintf("Template '%s' created successfully.", name))

	case "2":
		templates, err := store.ListTemplates()
		if err != nil {
			s.report(err)
			return
		}
		s.printer.Println("\nAvailable Templates:")
		if len(templates) == 0 {
			s.printer.Println("- No templates found.")
		}
		for _, t := range templates {
			s.printer.Println("- " + t.Name)
		}

	case "3":
		name := s.ask(in, "Enter template name to view: ")
		content, err := store.ReadTemplate(name)
		if err != nil {
			var precondition *aegistypes.PreconditionError
			if errors.As(err, &precondition) {
				s.printer.Error(fmt.Sprintf("Error: Template '%s' not found.", name))
				return
			}
			s.report(err)
			return
		}
		s.printer.Heading(fmt.Sprintf("\n--- Content of '%s' ---", name))
		s.printer.Println(content)
		s.printer.Muted("----------------" + strings.Repeat("-", len(name)))

	case "0", "":
	default:
		s.printer.Println("Invalid option.")
	}
}

func (s *Shell) deleteMenu(in LineReader, _ []string) {
	s.printer.ClearScreen()
	s.printer.Heading("--- Delete Asset ---")
	s.printer.Warning("WARNING: This action is irreversible.")
	s.printer.Println("1: Delete a Project (and all its contents)")
	s.printer.Println("2: Delete a Bot (from the active project)")
	s.printer.Println("3: Delete a Template")
	s.printer.Println("0: Cancel")
	s.printer.Muted("--------------------")

	switch s.ask(in, "Select an option: ") {
	case "1":
		s.deleteProject(in)
	case "2":
		s.deleteBot(in)
	case "3":
		s.deleteTemplate(in)
	case "0", "":
	default:
		s.printer.Println("Invalid option.")
	}
}

func (s *Shell) deleteProject(in LineReader) {
	name := s.ask(in, "Enter the name of the project to DELETE: ")
	project, err := stringprocessing.SanitizeFileBase(name)
	if err != nil || !s.projects.Store().ProjectExists(project) {
		s.printer.Error(fmt.Sprintf("Error: Project '%s' not found.", name))
		return
	}
	if !s.confirm(in, fmt.Sprintf("ARE YOU SURE you want to delete project '%s' and ALL its contents?", name)) {
		s.printer.Println("Deletion cancelled.")
		return
	}

	wasActive := s.workspace.ActiveProject() == project
	if err := s.projects.DeleteProject(project); err != nil {
		s.report(err)
		return
	}
	if wasActive {
		s.lastViewed = ""
	}
	s.printer.Success(fmt.Sprintf("Project '%s' and its contents DELETED.", name))
}

func (s *Shell) deleteBot(in LineReader) {
	project := s.workspace.ActiveProject()
	if project == "" {
		s.printer.Error("Error: No active project. Set one to delete a bot from it.")
		return
	}

	refs, err := s.projects.ProjectBots()
	if err != nil {
		s.report(err)
		return
	}
	if len(refs) == 0 {
		s.printer.Println(fmt.Sprintf("No bots found in active project '%s'.", project))
		return
	}

	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name()
	}
	s.printer.Menu("\nBots in current project:", names)
	idx, ok := s.choose(in, "Select the number of the bot to DELETE: ", len(refs))
	if !ok {
		s.printer.Println("Invalid selection.")
		return
	}
	ref := refs[idx]

	if !s.confirm(in, fmt.Sprintf("ARE YOU SURE you want to delete bot '%s' from '%s'?", ref.Name(), project)) {
		s.printer.Println("Deletion cancelled.")
		return
	}
	if err := s.projects.DeleteBot(ref.File); err != nil {
		s.report(err)
		return
	}
	if strings.EqualFold(s.lastViewed, ref.Name()) {
		s.lastViewed = ""
	}

	s.printer.Success(fmt.Sprintf("Bot '%s' DELETED from project '%s'.", ref.Name(), project))
	s.showStatus()
}

func (s *Shell) deleteTemplate(in LineReader) {
	templates, err := s.projects.Store().ListTemplates()
	if err != nil {
		s.report(err)
		return
	}
	if len(templates) == 0 {
		s.printer.Println("No templates found to delete.")
		return
	}

	s.printer.Menu("\nAvailable Templates:", templateNames(templates))
	idx, ok := s.choose(in, "Select the number of the template to DELETE: ", len(templates))
	if !ok {
		s.printer.Println("Invalid selection.")
		return
	}
	t := templates[idx]

	if !s.confirm(in, fmt.Sprintf("ARE YOU SURE you want to delete template '%s'?", t.Name)) {
		s.printer.Println("Deletion cancelled.")
		return
	}
	if err := s.projects.Store().DeleteTemplate(t); err != nil {
		s.report(err)
		return
	}
	s.printer.Success(fmt.Sprintf("Template '%s' DELETED.", t.Name))
}

func templateNames(templates []projects.Template) []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return names
}
