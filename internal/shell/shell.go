// Package shell provides the interactive Aegis command loop: the command table,
// the guided menus and wizards, and the glue that mounts them on an ishell shell.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"aegis/internal/logger"
	"aegis/internal/output"
	"aegis/internal/services"
	"aegis/internal/stringprocessing"
	"aegis/internal/workspace"
	"aegis/pkg/aegistypes"
)

// ExitMessage is printed when the shell terminates.
const ExitMessage = "Aegis OS shutdown. Session terminated."

// UnknownCommandMessage is printed for input that matches no command.
const UnknownCommandMessage = "Unknown command or missing arguments."

// LineReader reads one line of user input. *ishell.Context satisfies it.
type LineReader interface {
	ReadLine() string
}

// command is one entry of the shell's command table.
type command struct {
	name string
	help string
	run  func(in LineReader, args []string)
}

// Shell holds the UI state of one interactive session on top of the registered services.
type Shell struct {
	ctx        context.Context
	registry   *services.Registry
	projects   *services.ProjectService
	sessions   *services.SessionService
	forwarding *services.ForwardingService
	journal    *services.JournalService
	workspace  *workspace.Workspace
	printer    *output.Printer

	lastViewed string // canonical name of the bot last shown by show/forward/mcf
}

// New resolves the services the shell needs from registry.
func New(ctx context.Context, registry *services.Registry, printer *output.Printer) (*Shell, error) {
	projectService, err := services.Lookup[*services.ProjectService](registry, "project")
	if err != nil {
		return nil, err
	}
	sessions, err := services.Lookup[*services.SessionService](registry, "session")
	if err != nil {
		return nil, err
	}
	forwarding, err := services.Lookup[*services.ForwardingService](registry, "forwarding")
	if err != nil {
		return nil, err
	}
	journalService, err := services.Lookup[*services.JournalService](registry, "journal")
	if err != nil {
		return nil, err
	}

	return &Shell{
		ctx:        ctx,
		registry:   registry,
		projects:   projectService,
		sessions:   sessions,
		forwarding: forwarding,
		journal:    journalService,
		workspace:  projectService.Workspace(),
		printer:    printer,
	}, nil
}

// Prompt returns the prompt for the current active project.
func (s *Shell) Prompt() string {
	project := s.workspace.ActiveProject()
	if project == "" {
		project = "No Project"
	}
	return fmt.Sprintf("(Aegis OS) [%s]> ", project)
}

// LastViewed returns the bot that expand resolves ids against.
func (s *Shell) LastViewed() string {
	return s.lastViewed
}

func (s *Shell) commands() []command {
	return []command{
		{name: "project", help: "manage projects and the bots in them", run: s.projectMenu},
		{name: "template", help: "create, list and view system-instruction templates", run: s.templateMenu},
		{name: "delete", help: "delete a project, bot or template", run: s.deleteMenu},
		{name: "status", help: "show the bots loaded in the workspace", run: s.status},
		{name: "show", help: "show <bot>: two-column preview of a conversation", run: s.show},
		{name: "expand", help: "expand <id>: full text of a message of the last shown bot", run: s.expand},
		{name: "forward", help: "forward one message from a bot to another bot", run: s.forward},
		{name: "mcf", help: "gather context from several bots and send it to one", run: s.mcf},
		{name: "chat", help: "chat <bot>: send one prompt to a bot", run: s.chat},
		{name: "save", help: "save every bot with unsaved turns", run: s.save},
		{name: "journal", help: "journal [bot] [limit]: list recent model exchanges", run: s.journalList},
	}
}

// CommandList is the one-line command summary shown before the prompt.
func (s *Shell) CommandList() string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, cmd := range s.commands() {
		name := cmd.name
		switch name {
		case "show", "chat":
			name += " <bot>"
		case "expand":
			name += " <id>"
		}
		b.WriteString(" [" + name + "]")
	}
	b.WriteString(" [exit]")
	return b.String()
}

// Welcome prints the startup status screen and the command list.
func (s *Shell) Welcome() {
	s.status(nil, nil)
	if !s.sessions.Online() {
		s.printer.Warning("No API key configured: running in offline simulation mode.")
	}
	s.printCommands()
}

func (s *Shell) printCommands() {
	s.printer.Muted("\n" + s.CommandList())
}

// Dispatch runs one input line. It returns false when the line asks the shell to exit.
func (s *Shell) Dispatch(in LineReader, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	name := strings.ToLower(fields[0])
	if name == "exit" {
		return false
	}
	for _, cmd := range s.commands() {
		if cmd.name == name {
			s.runCommand(cmd, in, fields[1:])
			return true
		}
	}

	s.printer.Println(UnknownCommandMessage)
	return true
}

func (s *Shell) runCommand(cmd command, in LineReader, args []string) {
	logger.Debug("Running command", "command", cmd.name, "args", len(args))
	cmd.run(in, args)
	s.printCommands()
}

// Shutdown saves the workspace and closes every service.
func (s *Shell) Shutdown() error {
	return s.registry.ShutdownAll()
}

// ask prints question and returns the trimmed answer.
func (s *Shell) ask(in LineReader, question string) string {
	s.printer.Print(s.printer.Style(output.SemanticPrompt, question))
	return strings.TrimSpace(in.ReadLine())
}

// askLines reads lines until an empty one and joins them with newlines.
func (s *Shell) askLines(in LineReader, intro string) string {
	s.printer.Println(intro)
	var lines []string
	for {
		s.printer.Print(s.printer.Style(output.SemanticPrompt, "> "))
		line := in.ReadLine()
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// confirm asks a yes/no question; only the exact answer "yes" confirms.
func (s *Shell) confirm(in LineReader, question string) bool {
	s.printer.Print(s.printer.Style(output.SemanticPrompt, question+" (type 'yes' to confirm): "))
	return stringprocessing.IsConfirmed(in.ReadLine())
}

// choose asks for a 1-based menu number and returns the 0-based index.
func (s *Shell) choose(in LineReader, question string, count int) (int, bool) {
	return parseChoice(s.ask(in, question), count)
}

func parseChoice(answer string, count int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > count {
		return 0, false
	}
	return n - 1, true
}

// findBot resolves a user-typed bot name against the workspace.
func (s *Shell) findBot(query string) (*workspace.Bot, bool) {
	bot, err := s.workspace.Get(query)
	if err != nil {
		return nil, false
	}
	return bot, true
}

// report prints err the way the user should see it and logs it.
func (s *Shell) report(err error) {
	var remote *aegistypes.RemoteQueryError
	if errors.As(err, &remote) {
		logger.Error("Model request failed", "bot", remote.Bot, "error", remote.Err)
	} else {
		logger.Debug("Command error", "error", err)
	}
	s.printer.Error("Error: " + err.Error())
}

func (s *Shell) showStatus() {
	s.printer.Status(output.StatusView{
		Project:  s.workspace.ActiveProject(),
		Provider: s.sessions.ProviderName(),
		Bots:     s.workspace.Status(),
	})
}
