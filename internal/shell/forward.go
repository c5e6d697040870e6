package shell

import (
	"fmt"

	"aegis/internal/stringprocessing"
	"aegis/internal/workspace"
)

// askBot keeps asking until the answer names a loaded bot. An empty answer cancels.
func (s *Shell) askBot(in LineReader, question string) (*workspace.Bot, bool) {
	for {
		query := s.ask(in, question)
		if query == "" {
			return nil, false
		}
		if bot, ok := s.findBot(query); ok {
			return bot, true
		}
		s.printer.Error(fmt.Sprintf("  Error: Bot '%s' not found. Try again.", query))
	}
}

// previewOrigin shows the origin's conversation and makes it the expand target.
func (s *Shell) previewOrigin(bot *workspace.Bot) {
	s.printer.BotPreview(bot.Name, bot.Conversation.Turns())
	s.lastViewed = bot.Name
}

func (s *Shell) requireBots() bool {
	if s.workspace.Len() == 0 {
		s.printer.Println("Workspace is empty. Use 'project' to populate workspace.")
		return false
	}
	return true
}

// forward is the guided single-message forward: origin, message id, target, instruction.
func (s *Shell) forward(in LineReader, _ []string) {
	s.printer.ClearScreen()
	s.printer.Heading("--- Interactive Forward ---")
	if !s.requireBots() {
		return
	}

	origin, ok := s.askBot(in, "1. Enter name of ORIGIN bot (to forward FROM): ")
	if !ok {
		s.printer.Println("Forward cancelled.")
		return
	}
	s.previewOrigin(origin)

	id := s.ask(in, fmt.Sprintf("\n2. Enter Message ID from '%s' to forward (e.g., A5): ", origin.Name))
	if _, _, err := s.forwarding.ResolveMessage(origin.Name, id); err != nil {
		s.printer.Error(fmt.Sprintf("  Error: Message '%s' not found. Aborting.", id))
		return
	}

	target, ok := s.askBot(in, "3. Enter name of TARGET bot (to forward TO): ")
	if !ok {
		s.printer.Println("Forward cancelled.")
		return
	}

	instruction := s.ask(in, fmt.Sprintf("4. Enter your new prompt for '%s': ", target.Name))
	result, err := s.forwarding.Forward(s.ctx, origin.Name, id, target.Name, instruction)
	if err != nil {
		s.report(err)
		return
	}
	s.printer.Response(result.Target, result.Response)
}

// mcf is the multi-context forward wizard: collect snippets from turns and JIT
// queries in any order, then send them all to one target.
func (s *Shell) mcf(in LineReader, _ []string) {
	s.printer.ClearScreen()
	s.printer.Heading("--- Multi-Context Forward ---")
	if !s.requireBots() {
		return
	}

	builder := s.forwarding.NewMCF()
	for {
		s.printer.Println(fmt.Sprintf("\nContext collected: %d snippet(s)", builder.Len()))
		s.printer.Println("1: Add a message from a bot")
		s.printer.Println("2: Add a JIT query to a bot")
		s.printer.Println("3: Finish and send to a target bot")
		s.printer.Println("0: Cancel")

		switch s.ask(in, "Select an option: ") {
		case "1":
			origin, ok := s.askBot(in, "Enter name of ORIGIN bot: ")
			if !ok {
				continue
			}
			s.previewOrigin(origin)
			id := s.ask(in, fmt.Sprintf("\nEnter Message ID from '%s' (e.g., A5): ", origin.Name))
			snippet, err := builder.AddTurn(origin.Name, id)
			if err != nil {
				s.report(err)
				continue
			}
			s.printer.Success(fmt.Sprintf("Added msg %s from '%s'.", snippet.DisplayID, snippet.Origin))

		case "2":
			origin, ok := s.askBot(in, "Enter name of bot to query: ")
			if !ok {
				continue
			}
			question := s.ask(in, fmt.Sprintf("Enter JIT question for '%s': ", origin.Name))
			snippet, err := builder.AddJIT(s.ctx, origin.Name, question)
			if err != nil {
				s.report(err)
				continue
			}
			s.printer.Success(fmt.Sprintf("Added JIT answer from '%s': %s", snippet.Origin, stringprocessing.ShortenPreview(snippet.Content, 60)))

		case "3":
			if builder.Len() == 0 {
				s.printer.Error("Error: add at least one context snippet before finishing.")
				continue
			}
			target, ok := s.askBot(in, "Enter name of TARGET bot: ")
			if !ok {
				continue
			}
			instruction := s.ask(in, fmt.Sprintf("Enter your final request for '%s': ", target.Name))
			result, err := builder.Finish(s.ctx, target.Name, instruction)
			if err != nil {
				s.report(err)
				continue
			}
			s.printer.Response(result.Target, result.Response)
			return

		case "0", "":
			s.printer.Println("MCF cancelled.")
			return

		default:
			s.printer.Println("Invalid option.")
		}
	}
}
