package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"aegis/pkg/aegistypes"
)

func (s *Shell) status(_ LineReader, _ []string) {
	s.printer.ClearScreen()
	s.showStatus()
}

func (s *Shell) show(_ LineReader, args []string) {
	if len(args) == 0 {
		s.printer.Println("Usage: show <bot_name>")
		return
	}

	query := strings.Join(args, " ")
	bot, ok := s.findBot(query)
	if !ok {
		s.printer.Error(fmt.Sprintf("Error: Bot '%s' not found.", query))
		return
	}

	s.printer.ClearScreen()
	s.printer.BotPreview(bot.Name, bot.Conversation.Turns())
	s.lastViewed = bot.Name
}

func (s *Shell) expand(_ LineReader, args []string) {
	if len(args) == 0 {
		s.printer.Println("Usage: expand <message_id>")
		return
	}
	if s.lastViewed == "" {
		s.printer.Error("--- Error: Use 'show <bot_name>' first to select a conversation. ---")
		return
	}

	bot, entry, err := s.forwarding.ResolveMessage(s.lastViewed, args[0])
	if err != nil {
		var notFound *aegistypes.MessageNotFoundError
		if errors.As(err, &notFound) {
			s.printer.Error(fmt.Sprintf("--- Error: Message ID %s not found in '%s'. ---", args[0], notFound.Bot))
			return
		}
		s.report(err)
		return
	}

	s.printer.ClearScreen()
	s.printer.FullMessage(bot.Name, entry)
}

// chat sends one prompt to a loaded bot. With no active project a standalone bot
// file matching the name is loaded first.
func (s *Shell) chat(in LineReader, args []string) {
	if len(args) == 0 {
		s.printer.Println("Usage: chat <bot_name>")
		return
	}

	query := strings.Join(args, " ")
	bot, ok := s.findBot(query)
	if !ok {
		project := s.workspace.ActiveProject()
		if project != "" {
			s.printer.Error(fmt.Sprintf("Error: Bot '%s' not found in active project '%s'.", query, project))
			s.printer.Println("Use 'project -> Add Existing Bot' to add it, or 'project -> List & Set Active Project' to reload all bots.")
			return
		}

		loaded, err := s.projects.LoadStandalone(s.ctx, query)
		if err != nil {
			var unknown *aegistypes.UnknownBotError
			if errors.As(err, &unknown) {
				s.printer.Error(fmt.Sprintf("Error: Bot '%s' not found in current workspace or 'projects/' root.", query))
				return
			}
			s.report(err)
			return
		}
		s.lastViewed = ""
		s.printer.Success(fmt.Sprintf("Single bot '%s' loaded for chat.", loaded.Name))
		bot = loaded
	}

	prompt := s.ask(in, fmt.Sprintf("Chatting with '%s': ", bot.Name))
	if prompt == "" {
		s.printer.Println("Prompt cannot be empty.")
		return
	}

	response, err := s.sessions.Send(s.ctx, bot.Name, prompt)
	if err != nil {
		s.report(err)
		return
	}
	s.printer.Response(bot.Name, response)
}

func (s *Shell) save(_ LineReader, _ []string) {
	saved, err := s.projects.SaveAll()
	if err != nil {
		s.report(err)
	}
	s.printer.Success(fmt.Sprintf("Saved %d bot(s).", saved))
}

// journalList prints recent exchanges. Arguments are an optional bot name and an
// optional trailing limit, e.g. "journal Research 5".
func (s *Shell) journalList(_ LineReader, args []string) {
	if !s.journal.Enabled() {
		s.printer.Warning("Journal is disabled.")
		return
	}

	limit := 0
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			if n <= 0 {
				s.printer.Println("Usage: journal [bot] [limit]")
				return
			}
			limit = n
			args = args[:len(args)-1]
		}
	}

	entries, err := s.journal.Recent(s.ctx, strings.Join(args, " "), limit)
	if err != nil {
		s.report(err)
		return
	}
	s.printer.JournalEntries(entries)
}
