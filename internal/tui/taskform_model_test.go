package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/models"
)

func typeForm(m TaskFormModel, s string) TaskFormModel {
	for _, msg := range keyRunes(s) {
		m, _ = m.Update(msg)
	}
	return m
}

func pressEnter(m TaskFormModel) TaskFormModel {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func newForm() TaskFormModel {
	session := &auth.Session{User: models.User{ID: "u1", DisplayName: "Alice"}}
	return NewTaskFormModel(Deps{}, "p1", session, nil)
}

func TestTaskFormRequiresTitle(t *testing.T) {
	m := newForm()

	m = pressEnter(m)
	assert.Equal(t, StepTitle, m.currentStep)
	assert.Equal(t, "Task name cannot be empty", m.validationErr)

	m = typeForm(m, "Fix bug")
	m = pressEnter(m)
	assert.Equal(t, StepDescription, m.currentStep)
	assert.Empty(t, m.validationErr)
}

func TestTaskFormRejectsBadDeadline(t *testing.T) {
	m := newForm()
	m = typeForm(m, "Fix bug")
	m = pressEnter(m) // to description
	m = pressEnter(m) // skip description
	require.Equal(t, StepDeadline, m.currentStep)

	m = typeForm(m, "next tuesday")
	m = pressEnter(m)
	assert.Equal(t, StepDeadline, m.currentStep)
	assert.NotEmpty(t, m.validationErr)
}

func TestTaskFormDeduplicatesTags(t *testing.T) {
	m := newForm()
	m = typeForm(m, "Fix bug")
	m = pressEnter(m) // to description
	m = pressEnter(m) // to deadline
	m = pressEnter(m) // skip deadline
	m = pressEnter(m) // skip priority
	require.Equal(t, StepTags, m.currentStep)

	m = typeForm(m, "backend")
	m = pressEnter(m)
	m = typeForm(m, "backend")
	m = pressEnter(m)
	m = typeForm(m, "Backend")
	m = pressEnter(m)

	// Exact duplicates collapse, case still matters
	assert.Equal(t, []string{"backend", "Backend"}, m.tags)
	assert.Equal(t, StepTags, m.currentStep)

	m = pressEnter(m) // empty field advances
	assert.Equal(t, StepAssignees, m.currentStep)
}

func TestTaskFormPriorityCycles(t *testing.T) {
	m := newForm()
	m = typeForm(m, "Fix bug")
	m = pressEnter(m)
	m = pressEnter(m)
	m = pressEnter(m)
	require.Equal(t, StepPriority, m.currentStep)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, models.PriorityLow, priorityCycle[m.priorityIdx])
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, models.PriorityHigh, priorityCycle[m.priorityIdx])
}

func TestTaskFormEscCancelsWithoutSaving(t *testing.T) {
	m := newForm()
	m = typeForm(m, "Fix bug")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	msg, ok := cmd().(closeTaskFormMsg)
	require.True(t, ok)
	assert.False(t, msg.saved)
}

func TestTaskFormSaveClosesOnSuccess(t *testing.T) {
	m := newForm()
	m.loading = true

	m, cmd := m.Update(opDoneMsg{op: "add task"})
	require.NotNil(t, cmd)
	msg, ok := cmd().(closeTaskFormMsg)
	require.True(t, ok)
	assert.True(t, msg.saved)
	assert.False(t, m.loading)
}

func TestTaskFormSaveFailureStaysOpen(t *testing.T) {
	m := newForm()
	m.loading = true

	m, cmd := m.Update(opDoneMsg{op: "add task", err: assert.AnError})
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.errMsg)
}

func TestTaskFormEditModePrefills(t *testing.T) {
	deadline := time.Date(2030, time.March, 15, 23, 59, 59, 0, time.Local)
	task := &models.Task{
		ID:       "t1",
		Title:    "Existing",
		Deadline: &deadline,
		Priority: models.PriorityHigh,
		Status:   models.StatusInProgress,
		Tags:     []string{"backend"},
	}
	session := &auth.Session{User: models.User{ID: "u1"}}
	m := NewTaskFormModel(Deps{}, "p1", session, task)

	assert.True(t, m.isEditMode)
	assert.Equal(t, "Existing", m.inputs[0].Value())
	assert.Equal(t, "15/03/2030", m.inputs[2].Value())
	assert.Equal(t, models.PriorityHigh, priorityCycle[m.priorityIdx])
	assert.Equal(t, []string{"backend"}, m.tags)
}

func TestTaskFormEditKeepsStoredDeadlineWhenUntouched(t *testing.T) {
	// The field shows only the date, so resaving an edit must not collapse
	// an intraday deadline to end of day.
	deadline := time.Date(2030, time.March, 15, 14, 30, 0, 0, time.Local)
	task := &models.Task{ID: "t1", Title: "Existing", Deadline: &deadline}
	session := &auth.Session{User: models.User{ID: "u1"}}
	m := NewTaskFormModel(Deps{}, "p1", session, task)

	built, err := m.taskFromForm()
	require.NoError(t, err)
	require.NotNil(t, built.Deadline)
	assert.True(t, built.Deadline.Equal(deadline))
}

func TestTaskFormEditReparsesChangedDeadline(t *testing.T) {
	deadline := time.Date(2030, time.March, 15, 14, 30, 0, 0, time.Local)
	task := &models.Task{ID: "t1", Title: "Existing", Deadline: &deadline}
	session := &auth.Session{User: models.User{ID: "u1"}}
	m := NewTaskFormModel(Deps{}, "p1", session, task)

	m.inputs[2].SetValue("16/03/2030")
	built, err := m.taskFromForm()
	require.NoError(t, err)
	require.NotNil(t, built.Deadline)
	want := time.Date(2030, time.March, 16, 23, 59, 59, 0, time.Local)
	assert.True(t, built.Deadline.Equal(want))
}

func TestTaskFormAssigneeDeduplication(t *testing.T) {
	m := newForm()
	bob := models.User{ID: "bob", DisplayName: "Bob"}

	m, _ = m.Update(userLookupMsg{user: &bob})
	m, _ = m.Update(userLookupMsg{user: &bob})
	assert.Len(t, m.assignees, 1)
}
