package stringprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/pkg/aegistypes"
)

func sampleTurns() []aegistypes.Turn {
	return []aegistypes.Turn{
		aegistypes.NewTurn(aegistypes.RoleUser, "You are a reviewer."),
		aegistypes.NewTurn(aegistypes.RoleUser, "Review this."),
		aegistypes.NewTurn(aegistypes.RoleModel, "Looks fine."),
		aegistypes.NewTurn(aegistypes.RoleUser, "And this?"),
		aegistypes.NewTurn(aegistypes.RoleModel, "result: 42"),
	}
}

func TestAssignDisplayIDs(t *testing.T) {
	entries := AssignDisplayIDs(sampleTurns())

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"U1", "U2", "A1", "U3", "A2"}, ids)
	assert.Equal(t, 4, entries[4].Index)
	assert.Equal(t, "result: 42", entries[4].Turn.Content)
}

func TestAssignDisplayIDs_Deterministic(t *testing.T) {
	turns := sampleTurns()
	assert.Equal(t, AssignDisplayIDs(turns), AssignDisplayIDs(turns))
}

func TestAssignDisplayIDs_StableUnderAppend(t *testing.T) {
	turns := sampleTurns()
	before := AssignDisplayIDs(turns)

	turns = append(turns,
		aegistypes.NewTurn(aegistypes.RoleUser, "next"),
		aegistypes.NewTurn(aegistypes.RoleModel, "reply"),
	)
	after := AssignDisplayIDs(turns)

	require.Len(t, after, len(before)+2)
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, "U4", after[5].ID)
	assert.Equal(t, "A3", after[6].ID)
}

func TestAssignDisplayIDs_Empty(t *testing.T) {
	assert.Empty(t, AssignDisplayIDs(nil))
}

func TestFindByDisplayID(t *testing.T) {
	turns := sampleTurns()

	tests := []struct {
		name        string
		query       string
		expectFound bool
		expectText  string
	}{
		{name: "model id", query: "A2", expectFound: true, expectText: "result: 42"},
		{name: "lowercase", query: "a2", expectFound: true, expectText: "result: 42"},
		{name: "user id", query: "U2", expectFound: true, expectText: "Review this."},
		{name: "padded", query: "  u3 ", expectFound: true, expectText: "And this?"},
		{name: "out of range", query: "A3", expectFound: false},
		{name: "zero", query: "U0", expectFound: false},
		{name: "garbage", query: "X1", expectFound: false},
		{name: "empty", query: "", expectFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, found := FindByDisplayID(turns, tt.query)
			assert.Equal(t, tt.expectFound, found)
			if tt.expectFound {
				assert.Equal(t, tt.expectText, entry.Turn.Content)
			}
		})
	}
}

func TestFindByDisplayID_NoModelTurns(t *testing.T) {
	turns := []aegistypes.Turn{aegistypes.NewTurn(aegistypes.RoleUser, "only user")}

	_, found := FindByDisplayID(turns, "A1")
	assert.False(t, found)

	entry, found := FindByDisplayID(turns, "U1")
	require.True(t, found)
	assert.Equal(t, "only user", entry.Turn.Content)
}

func TestFilterByRole(t *testing.T) {
	entries := AssignDisplayIDs(sampleTurns())

	users := FilterByRole(entries, aegistypes.RoleUser)
	models := FilterByRole(entries, aegistypes.RoleModel)

	assert.Len(t, users, 3)
	assert.Len(t, models, 2)
	assert.Equal(t, "A1", models[0].ID)
	assert.Equal(t, "U3", users[2].ID)
}

func TestFormatDisplayID(t *testing.T) {
	assert.Equal(t, "U7", FormatDisplayID(aegistypes.RoleUser, 7))
	assert.Equal(t, "A12", FormatDisplayID(aegistypes.RoleModel, 12))
}
