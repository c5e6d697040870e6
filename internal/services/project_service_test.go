package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/botfile"
	"aegis/internal/projects"
	"aegis/internal/testutils"
	"aegis/internal/workspace"
	"aegis/pkg/aegistypes"
)

type projectFixture struct {
	ws       *workspace.Workspace
	store    *projects.Store
	model    *testutils.FakeModel
	sessions *SessionService
	svc      *ProjectService
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	store := projects.NewStore(testutils.NewRoot(t))
	ws := workspace.New()
	model := testutils.NewFakeModel()
	sessions := NewSessionService(ws, model)
	return &projectFixture{
		ws:       ws,
		store:    store,
		model:    model,
		sessions: sessions,
		svc:      NewProjectService(ws, store, sessions),
	}
}

func (f *projectFixture) writeBot(t *testing.T, project, name string, turns ...aegistypes.Turn) string {
	t.Helper()
	dir := f.store.ProjectsDir()
	if project != "" {
		dir = f.store.ProjectDir(project)
	}
	return testutils.WriteBotFile(t, dir, name, turns...)
}

func TestProjectService_SwitchProject(t *testing.T) {
	f := newProjectFixture(t)
	f.writeBot(t, "research", "beta", testutils.Exchange("b", "B")...)
	f.writeBot(t, "research", "alpha", testutils.Exchange("a", "A")...)
	testutils.WriteFile(t, filepath.Join(f.store.ProjectDir("research"), "broken.json"), "{")
	require.NoError(t, f.store.RecordBot("research", "beta.json"))

	report, err := f.svc.SwitchProject(context.Background(), "research")
	require.NoError(t, err)

	assert.Equal(t, "research", report.Project)
	assert.Equal(t, []string{"beta", "alpha"}, report.Loaded)
	assert.Empty(t, report.Offline)
	assert.Equal(t, "research", f.ws.ActiveProject())
	assert.Equal(t, 2, f.ws.Len())
	assert.Equal(t, 2, f.model.SessionsStarted())

	_, err = f.svc.SwitchProject(context.Background(), "missing")
	var precondition *aegistypes.PreconditionError
	assert.ErrorAs(t, err, &precondition)
	assert.Equal(t, "research", f.ws.ActiveProject(), "failed switch keeps the workspace")
}

func TestProjectService_SwitchSavesBeforeClear(t *testing.T) {
	f := newProjectFixture(t)
	path := f.writeBot(t, "one", "bot", testutils.Exchange("Hi", "Hello!")...)
	f.writeBot(t, "two", "other", testutils.Exchange("x", "y")...)

	_, err := f.svc.SwitchProject(context.Background(), "one")
	require.NoError(t, err)
	_, err = f.sessions.Send(context.Background(), "bot", "more")
	require.NoError(t, err)

	_, err = f.svc.SwitchProject(context.Background(), "two")
	require.NoError(t, err)
	assert.False(t, f.ws.Contains("bot"))

	conv, err := botfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, conv.Len(), "unsaved turns were persisted before the switch")
}

func TestProjectService_SaveFailureKeepsWorkspace(t *testing.T) {
	f := newProjectFixture(t)
	f.writeBot(t, "two", "other", testutils.Exchange("x", "y")...)

	blocker := testutils.WriteFile(t, filepath.Join(t.TempDir(), "blocker"), "not a directory")
	f.ws.Register("orphan", filepath.Join(blocker, "orphan.json"), aegistypes.NewConversation())
	require.NoError(t, f.ws.Append("orphan", aegistypes.RoleUser, "unsaved"))

	_, err := f.svc.SwitchProject(context.Background(), "two")
	var persistence *aegistypes.PersistenceError
	require.ErrorAs(t, err, &persistence)
	assert.True(t, f.ws.Contains("orphan"), "workspace is not cleared when saving fails")
	assert.Empty(t, f.ws.ActiveProject())
}

func TestProjectService_SaveAll(t *testing.T) {
	f := newProjectFixture(t)
	f.writeBot(t, "p", "a", testutils.Exchange("a", "A")...)
	f.writeBot(t, "p", "b", testutils.Exchange("b", "B")...)
	_, err := f.svc.SwitchProject(context.Background(), "p")
	require.NoError(t, err)

	saved, err := f.svc.SaveAll()
	require.NoError(t, err)
	assert.Zero(t, saved, "nothing dirty yet")

	_, err = f.sessions.Send(context.Background(), "a", "hi")
	require.NoError(t, err)

	saved, err = f.svc.SaveAll()
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Empty(t, f.ws.DirtyBots())
	assert.NoError(t, f.svc.Shutdown())
}

func TestProjectService_LoadStandalone(t *testing.T) {
	f := newProjectFixture(t)
	f.writeBot(t, "", "Hypothesis_Engine", testutils.Exchange("h", "H")...)
	f.writeBot(t, "p", "inproject", testutils.Exchange("x", "y")...)
	_, err := f.svc.SwitchProject(context.Background(), "p")
	require.NoError(t, err)

	bot, err := f.svc.LoadStandalone(context.Background(), "hypothesis_engine")
	require.NoError(t, err)
	assert.Equal(t, "Hypothesis_Engine", bot.Name)
	assert.Empty(t, f.ws.ActiveProject())
	assert.Equal(t, 1, f.ws.Len())

	_, err = f.svc.LoadStandalone(context.Background(), "nobody")
	var unknown *aegistypes.UnknownBotError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, 1, f.ws.Len(), "failed lookup keeps the workspace")
}

func TestProjectService_CreateBot(t *testing.T) {
	f := newProjectFixture(t)

	_, err := f.svc.CreateBot(context.Background(), "Helper", "Be helpful.")
	var precondition *aegistypes.PreconditionError
	require.ErrorAs(t, err, &precondition, "needs an active project")

	_, err = f.svc.CreateProject("research")
	require.NoError(t, err)
	_, err = f.svc.SwitchProject(context.Background(), "research")
	require.NoError(t, err)

	bot, err := f.svc.CreateBot(context.Background(), "Code Helper", "Be helpful.")
	require.NoError(t, err)
	assert.Equal(t, "Code_Helper", bot.Name)
	assert.Equal(t, []aegistypes.Turn{aegistypes.NewTurn(aegistypes.RoleUser, "Be helpful.")}, bot.Conversation.Turns())
	assert.False(t, bot.Offline())
	assert.FileExists(t, filepath.Join(f.store.ProjectDir("research"), "Code_Helper.json"))

	manifest, err := f.store.ReadManifest("research")
	require.NoError(t, err)
	assert.Equal(t, []string{"Code_Helper.json"}, manifest.Bots)

	_, err = f.svc.CreateBot(context.Background(), "code_helper", "Again.")
	var dup *aegistypes.DuplicateBotError
	assert.ErrorAs(t, err, &dup)

	_, err = f.svc.CreateBot(context.Background(), "Empty", "   ")
	assert.ErrorAs(t, err, &precondition)
	assert.NoFileExists(t, filepath.Join(f.store.ProjectDir("research"), "Empty.json"))
}

func TestProjectService_CreateStandaloneBot(t *testing.T) {
	f := newProjectFixture(t)
	path := f.writeBot(t, "one", "bot", testutils.Exchange("Hi", "Hello!")...)
	_, err := f.svc.SwitchProject(context.Background(), "one")
	require.NoError(t, err)
	_, err = f.sessions.Send(context.Background(), "bot", "more")
	require.NoError(t, err)

	bot, err := f.svc.CreateStandaloneBot(context.Background(), "Hypothesis Engine", "Generate hypotheses.")
	require.NoError(t, err)

	assert.Equal(t, "Hypothesis_Engine", bot.Name)
	assert.Equal(t, filepath.Join(f.store.ProjectsDir(), "Hypothesis_Engine.json"), bot.FilePath)
	assert.FileExists(t, bot.FilePath)
	assert.False(t, bot.Offline())
	assert.Empty(t, f.ws.ActiveProject())
	assert.Equal(t, 1, f.ws.Len())
	assert.False(t, f.ws.Contains("bot"))

	conv, err := botfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, conv.Len(), "unsaved turns were persisted before the workspace was cleared")

	found, ok := f.store.FindStandaloneBot("hypothesis_engine")
	require.True(t, ok)
	assert.Equal(t, bot.FilePath, found)

	t.Run("rejects", func(t *testing.T) {
		tests := []struct {
			name        string
			botName     string
			instruction string
			target      any
		}{
			{name: "existing standalone bot", botName: "hypothesis engine", instruction: "x", target: new(*aegistypes.DuplicateBotError)},
			{name: "existing project", botName: "one", instruction: "x", target: new(*aegistypes.DuplicateBotError)},
			{name: "empty instruction", botName: "Fresh", instruction: "  ", target: new(*aegistypes.PreconditionError)},
			{name: "escaping name", botName: "../outside", instruction: "x", target: new(*aegistypes.PreconditionError)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.CreateStandaloneBot(context.Background(), tt.botName, tt.instruction)
				assert.ErrorAs(t, err, tt.target)
				assert.True(t, f.ws.Contains("Hypothesis_Engine"), "a rejected create keeps the workspace")
			})
		}
		assert.NoFileExists(t, filepath.Join(f.store.ProjectsDir(), "Fresh.json"))
		assert.NoFileExists(t, filepath.Join(f.store.Root(), "outside.json"))
	})
}

func TestProjectService_RejectsEscapingNames(t *testing.T) {
	f := newProjectFixture(t)
	f.writeBot(t, "p", "keeper", testutils.Exchange("k", "K")...)
	_, err := f.svc.SwitchProject(context.Background(), "p")
	require.NoError(t, err)

	for _, name := range []string{"..", ".", "x/../../y"} {
		t.Run(name, func(t *testing.T) {
			var precondition *aegistypes.PreconditionError

			assert.ErrorAs(t, f.svc.DeleteProject(name), &precondition)

			_, err := f.svc.SwitchProject(context.Background(), name)
			assert.ErrorAs(t, err, &precondition)

			_, err = f.svc.CreateBot(context.Background(), name, "Be helpful.")
			assert.ErrorAs(t, err, &precondition)

			_, err = f.svc.CreateProject(name)
			assert.ErrorAs(t, err, &precondition)
		})
	}

	assert.Equal(t, "p", f.ws.ActiveProject())
	assert.True(t, f.ws.Contains("keeper"))
	assert.DirExists(t, f.store.ProjectDir("p"))
	assert.DirExists(t, f.store.TemplatesDir())
}

func TestProjectService_AddExistingBot(t *testing.T) {
	f := newProjectFixture(t)
	f.writeBot(t, "library", "shared", testutils.Exchange("s", "S")...)
	f.writeBot(t, "work", "local", testutils.Exchange("l", "L")...)
	_, err := f.svc.SwitchProject(context.Background(), "work")
	require.NoError(t, err)

	refs, err := f.store.ListProjectBots("work")
	require.NoError(t, err)
	require.Len(t, refs, 1)

	bot, err := f.svc.AddExistingBot(context.Background(), refs[0], false)
	require.NoError(t, err)
	assert.Equal(t, "shared", bot.Name)
	assert.FileExists(t, filepath.Join(f.store.ProjectDir("work"), "shared.json"))
	assert.Equal(t, 2, f.ws.Len())

	_, err = f.svc.AddExistingBot(context.Background(), refs[0], false)
	var dup *aegistypes.DuplicateBotError
	require.ErrorAs(t, err, &dup, "already loaded bots need confirmation")

	_, err = f.svc.AddExistingBot(context.Background(), refs[0], true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.ws.Len())

	_, err = f.svc.AddExistingBot(context.Background(), projects.BotRef{Project: "work", File: "local.json"}, false)
	var precondition *aegistypes.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestProjectService_DeleteBot(t *testing.T) {
	f := newProjectFixture(t)
	path := f.writeBot(t, "p", "doomed", testutils.Exchange("d", "D")...)
	f.writeBot(t, "p", "keeper", testutils.Exchange("k", "K")...)
	_, err := f.svc.SwitchProject(context.Background(), "p")
	require.NoError(t, err)

	refs, err := f.svc.ProjectBots()
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	require.NoError(t, f.svc.DeleteBot("doomed.json"))
	assert.NoFileExists(t, path)
	assert.False(t, f.ws.Contains("doomed"))
	assert.True(t, f.ws.Contains("keeper"))
}

func TestProjectService_DeleteProject(t *testing.T) {
	f := newProjectFixture(t)
	f.writeBot(t, "active", "bot", testutils.Exchange("b", "B")...)
	f.writeBot(t, "other", "bot2", testutils.Exchange("b", "B")...)
	_, err := f.svc.SwitchProject(context.Background(), "active")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProject("other"))
	assert.Equal(t, "active", f.ws.ActiveProject())
	assert.Equal(t, 1, f.ws.Len())

	require.NoError(t, f.svc.DeleteProject("active"))
	assert.Empty(t, f.ws.ActiveProject())
	assert.Zero(t, f.ws.Len())
	_, err = os.Stat(f.store.ProjectDir("active"))
	assert.True(t, os.IsNotExist(err))
}
