package stringprocessing

import (
	"fmt"
	"strings"

	"aegis/pkg/aegistypes"
)

// Display id prefixes for user and model turns.
const (
	UserIDPrefix  = "U"
	ModelIDPrefix = "A"
)

// DisplayEntry pairs a turn with its computed display id.
type DisplayEntry struct {
	// ID is the short human id, e.g. "U3" or "A5"
	ID string
	// Index is the 0-based position of the turn in the conversation
	Index int
	// Turn is the addressed turn
	Turn aegistypes.Turn
}

// FormatDisplayID builds the display id for the n-th (1-based) turn of a role.
func FormatDisplayID(role aegistypes.Role, n int) string {
	if role == aegistypes.RoleModel {
		return fmt.Sprintf("%s%d", ModelIDPrefix, n)
	}
	return fmt.Sprintf("%s%d", UserIDPrefix, n)
}

// AssignDisplayIDs computes display ids for every turn, in conversation order.
// User and model turns are numbered by two independent 1-based counters.
// The result depends only on the turn sequence, so appending turns never changes existing ids.
func AssignDisplayIDs(turns []aegistypes.Turn) []DisplayEntry {
	entries := make([]DisplayEntry, 0, len(turns))
	userCount, modelCount := 0, 0

	for i, turn := range turns {
		var id string
		switch turn.Role {
		case aegistypes.RoleModel:
			modelCount++
			id = FormatDisplayID(aegistypes.RoleModel, modelCount)
		default:
			userCount++
			id = FormatDisplayID(aegistypes.RoleUser, userCount)
		}
		entries = append(entries, DisplayEntry{ID: id, Index: i, Turn: turn})
	}

	return entries
}

// FindByDisplayID re-runs the id traversal and returns the first entry whose id
// case-insensitively equals query. Surrounding whitespace in query is ignored.
func FindByDisplayID(turns []aegistypes.Turn, query string) (DisplayEntry, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return DisplayEntry{}, false
	}

	for _, entry := range AssignDisplayIDs(turns) {
		if strings.EqualFold(entry.ID, query) {
			return entry, true
		}
	}
	return DisplayEntry{}, false
}

// FilterByRole returns the entries whose turn has the given role, preserving order.
func FilterByRole(entries []DisplayEntry, role aegistypes.Role) []DisplayEntry {
	var out []DisplayEntry
	for _, entry := range entries {
		if entry.Turn.Role == role {
			out = append(out, entry)
		}
	}
	return out
}
