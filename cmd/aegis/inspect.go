package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aegis/internal/botfile"
	"aegis/internal/output"
	"aegis/internal/stringprocessing"
	"aegis/pkg/aegistypes"
)

// inspectPreviewWidth is the preview length of one message line.
const inspectPreviewWidth = 70

func runInspect(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	printer, err := newPrinter(theme, wrapWidth, testMode)
	if err != nil {
		return err
	}
	return inspectBot(printer, args[0], id)
}

// inspectBot prints every message of the bot file at path with its display id,
// or the full text of the message id when id is set.
func inspectBot(printer *output.Printer, path, id string) error {
	conv, err := botfile.Load(path)
	if err != nil {
		return err
	}
	name := stringprocessing.BotNameFromPath(path)

	if id != "" {
		entry, ok := stringprocessing.FindByDisplayID(conv.Turns(), id)
		if !ok {
			return &aegistypes.MessageNotFoundError{Bot: name, ID: id}
		}
		printer.FullMessage(name, entry)
		return nil
	}

	entries := stringprocessing.AssignDisplayIDs(conv.Turns())
	printer.Heading(fmt.Sprintf("--- %s: %d message(s) ---", name, len(entries)))
	for _, entry := range entries {
		semantic := output.SemanticUser
		if entry.Turn.Role == aegistypes.RoleModel {
			semantic = output.SemanticModel
		}
		label := printer.Style(semantic, fmt.Sprintf("%-4s", entry.ID))
		printer.Println(label + " " + stringprocessing.ShortenPreview(entry.Turn.Content, inspectPreviewWidth))
	}
	return nil
}
