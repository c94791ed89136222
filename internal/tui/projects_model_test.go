package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/data"
	"github.com/taskdeck/taskdeck/internal/models"
)

func newProjectsModel() ProjectsModel {
	session := &auth.Session{User: models.User{ID: "u1", DisplayName: "Alice"}}
	m := NewProjectsModel(Deps{}, session)
	m.loading = false
	return m
}

func TestProjectsLiveEventReplacesList(t *testing.T) {
	m := newProjectsModel()
	m.selected = 2

	ev := data.ProjectListEvent{Projects: []models.Project{{ID: "p1", Name: "Only"}}}
	m, cmd := m.Update(projectsEventMsg{ev: ev})
	require.NotNil(t, cmd, "list must keep waiting for the next event")

	require.Len(t, m.projects, 1)
	assert.Equal(t, 0, m.selected, "selection clamps to the shrunken list")
}

func TestProjectsEnterOpensBoard(t *testing.T) {
	m := newProjectsModel()
	m.projects = []models.Project{{ID: "p1", Name: "Sprint 1"}, {ID: "p2", Name: "Sprint 2"}}
	m.selected = 1

	_, cmd := m.reduceListKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(openBoardMsg)
	require.True(t, ok)
	assert.Equal(t, "p2", msg.project.ID)
}

func TestProjectsEnterOnEmptyListDoesNothing(t *testing.T) {
	m := newProjectsModel()
	_, cmd := m.reduceListKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestProjectsStopBeforeStartCancelsWatch(t *testing.T) {
	m := newProjectsModel()
	require.NotNil(t, m.cancel, "cancel must exist before the subscription starts")

	m.stop()
	assert.Error(t, m.watchCtx.Err())
}

func TestCreateDialogRequiresName(t *testing.T) {
	m := newProjectsModel()
	m, _ = m.reduceListKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	require.True(t, m.showDialog)

	m, cmd := m.reduceDialogKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "Project name cannot be empty", m.dialog.errMsg)
}

func TestCreateDialogMemberLookupDeduplicates(t *testing.T) {
	m := newProjectsModel()
	m.showDialog = true
	m.dialog = newCreateProjectDialog()

	bob := models.User{ID: "bob", DisplayName: "Bob"}
	m = m.reduceDialogLookup(userLookupMsg{user: &bob})
	m = m.reduceDialogLookup(userLookupMsg{user: &bob})
	assert.Len(t, m.dialog.members, 1)
}

func TestCreateDialogLookupFailureShowsMessage(t *testing.T) {
	m := newProjectsModel()
	m.showDialog = true
	m.dialog = newCreateProjectDialog()

	m = m.reduceDialogLookup(userLookupMsg{err: assert.AnError})
	assert.NotEmpty(t, m.dialog.errMsg)
	assert.Empty(t, m.dialog.members)
}

func TestCreateDialogClosesOnSuccess(t *testing.T) {
	m := newProjectsModel()
	m.showDialog = true
	m.dialog = newCreateProjectDialog()
	m.dialog.loading = true

	m, _ = m.Update(createProjectResultMsg{})
	assert.False(t, m.showDialog)

	m.showDialog = true
	m.dialog.loading = true
	m, _ = m.Update(createProjectResultMsg{err: assert.AnError})
	assert.True(t, m.showDialog, "dialog stays open on failure")
	assert.NotEmpty(t, m.dialog.errMsg)
}
