package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/parser"
)

// Step represents the current step in the task form wizard
type Step int

const (
	StepTitle Step = iota
	StepDescription
	StepDeadline
	StepPriority
	StepTags
	StepAssignees
	StepSave
)

var stepLabels = []string{
	"Title",
	"Description",
	"Deadline",
	"Priority",
	"Tags",
	"Assignees",
	"Save",
}

var priorityCycle = []models.Priority{
	models.PriorityNone,
	models.PriorityLow,
	models.PriorityMedium,
	models.PriorityHigh,
}

// TaskFormModel is the create/edit task wizard
type TaskFormModel struct {
	deps      Deps
	projectID string
	session   *auth.Session

	currentStep Step
	inputs      []textinput.Model

	priorityIdx int
	tags        []string
	assignees   []models.User

	// Edit mode
	isEditMode      bool
	editTask        models.Task
	deadlinePrefill string

	loading       bool
	errMsg        string
	validationErr string
}

// NewTaskFormModel creates the wizard; task != nil switches to edit mode
// with fields prefilled.
func NewTaskFormModel(deps Deps, projectID string, session *auth.Session, task *models.Task) TaskFormModel {
	inputs := make([]textinput.Model, 5)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 60
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[0].Placeholder = "Task title... (required)"
	inputs[0].CharLimit = 200
	inputs[0].Focus()
	inputs[1].Placeholder = "Description (Enter to skip)"
	inputs[1].CharLimit = 500
	inputs[2].Placeholder = "Deadline: dd/mm/yyyy, 3 days, 24 hours, 2 weeks (Enter to skip)"
	inputs[2].CharLimit = 50
	inputs[3].Placeholder = "Add tag (Enter on empty field when done)"
	inputs[3].CharLimit = 50
	inputs[4].Placeholder = "Assignee email (Enter on empty field when done)"
	inputs[4].CharLimit = 100

	m := TaskFormModel{
		deps:      deps,
		projectID: projectID,
		session:   session,
		inputs:    inputs,
		tags:      []string{},
	}

	if task != nil {
		m.isEditMode = true
		m.editTask = *task
		m.inputs[0].SetValue(task.Title)
		m.inputs[1].SetValue(task.Description)
		if task.Deadline != nil {
			m.inputs[2].SetValue(task.Deadline.Format("02/01/2006"))
			m.deadlinePrefill = m.inputs[2].Value()
		}
		for i, p := range priorityCycle {
			if p == task.Priority {
				m.priorityIdx = i
			}
		}
		m.tags = append(m.tags, task.Tags...)
		m.assignees = append(m.assignees, task.AssignedTo...)
	}
	return m
}

// Init is a no-op; the wizard is driven entirely by key input
func (m TaskFormModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the task form
func (m TaskFormModel) Update(msg tea.Msg) (TaskFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return closeTaskFormMsg{saved: false} }

		case "enter":
			return m.handleEnter()

		case "shift+tab":
			return m.prevStep(), nil

		case "left", "right":
			if m.currentStep == StepPriority {
				return m.cyclePriority(msg.String() == "right"), nil
			}
		}

	case userLookupMsg:
		if msg.err != nil {
			m.validationErr = errText(msg.err)
			return m, nil
		}
		m.validationErr = ""
		for _, existing := range m.assignees {
			if existing.ID == msg.user.ID {
				return m, nil
			}
		}
		m.assignees = append(m.assignees, *msg.user)
		m.inputs[4].SetValue("")
		return m, nil

	case opDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = errText(msg.err)
			return m, nil
		}
		return m, func() tea.Msg { return closeTaskFormMsg{saved: true} }
	}

	if m.currentStep < StepSave && m.currentStep != StepPriority {
		idx := m.inputIndex()
		var cmd tea.Cmd
		m.inputs[idx], cmd = m.inputs[idx].Update(msg)
		return m, cmd
	}
	return m, nil
}

// inputIndex maps the current step to its text input
func (m TaskFormModel) inputIndex() int {
	switch m.currentStep {
	case StepTitle:
		return 0
	case StepDescription:
		return 1
	case StepDeadline:
		return 2
	case StepTags:
		return 3
	default:
		return 4
	}
}

func (m TaskFormModel) handleEnter() (TaskFormModel, tea.Cmd) {
	switch m.currentStep {
	case StepTitle:
		if strings.TrimSpace(m.inputs[0].Value()) == "" {
			m.validationErr = "Task name cannot be empty"
			return m, nil
		}
		return m.nextStep(), nil

	case StepDescription:
		return m.nextStep(), nil

	case StepDeadline:
		if _, err := parser.ParseDeadline(m.inputs[2].Value()); err != nil {
			m.validationErr = err.Error()
			return m, nil
		}
		return m.nextStep(), nil

	case StepPriority:
		return m.nextStep(), nil

	case StepTags:
		tag := strings.TrimSpace(m.inputs[3].Value())
		if tag == "" {
			return m.nextStep(), nil
		}
		// Tags are case-sensitive and deduplicated before persistence
		for _, existing := range m.tags {
			if existing == tag {
				m.inputs[3].SetValue("")
				return m, nil
			}
		}
		m.tags = append(m.tags, tag)
		m.inputs[3].SetValue("")
		return m, nil

	case StepAssignees:
		email := strings.TrimSpace(m.inputs[4].Value())
		if email == "" {
			return m.nextStep(), nil
		}
		deps := m.deps
		return m, func() tea.Msg {
			user, err := deps.Repo.UserByEmail(context.Background(), email)
			return userLookupMsg{user: user, err: err}
		}

	case StepSave:
		return m.submit()
	}
	return m, nil
}

func (m TaskFormModel) nextStep() TaskFormModel {
	m.validationErr = ""
	if m.currentStep < StepSave {
		if m.currentStep != StepPriority {
			m.inputs[m.inputIndex()].Blur()
		}
		m.currentStep++
		if m.currentStep < StepSave && m.currentStep != StepPriority {
			m.inputs[m.inputIndex()].Focus()
		}
	}
	return m
}

func (m TaskFormModel) prevStep() TaskFormModel {
	m.validationErr = ""
	if m.currentStep > StepTitle {
		if m.currentStep < StepSave && m.currentStep != StepPriority {
			m.inputs[m.inputIndex()].Blur()
		}
		m.currentStep--
		if m.currentStep != StepPriority {
			m.inputs[m.inputIndex()].Focus()
		}
	}
	return m
}

func (m TaskFormModel) cyclePriority(forward bool) TaskFormModel {
	if forward {
		m.priorityIdx = (m.priorityIdx + 1) % len(priorityCycle)
	} else {
		m.priorityIdx = (m.priorityIdx + len(priorityCycle) - 1) % len(priorityCycle)
	}
	return m
}

// taskFromForm builds the task to persist from the current form state
func (m TaskFormModel) taskFromForm() (models.Task, error) {
	deadline, err := parser.ParseDeadline(m.inputs[2].Value())
	if err != nil {
		return models.Task{}, err
	}
	// The prefill renders only the date; an untouched field keeps the
	// stored timestamp instead of collapsing it to end of day.
	if m.isEditMode && m.editTask.Deadline != nil && m.inputs[2].Value() == m.deadlinePrefill {
		deadline = m.editTask.Deadline
	}

	task := models.Task{
		ProjectID:   m.projectID,
		Title:       strings.TrimSpace(m.inputs[0].Value()),
		Description: m.inputs[1].Value(),
		Deadline:    deadline,
		Priority:    priorityCycle[m.priorityIdx],
		Status:      models.StatusTodo,
		Tags:        append([]string{}, m.tags...),
		AssignedTo:  append([]models.User{}, m.assignees...),
	}

	if m.isEditMode {
		task.ID = m.editTask.ID
		task.Owner = m.editTask.Owner
		task.Status = m.editTask.Status
		task.CreatedAt = m.editTask.CreatedAt
		task.StartDate = m.editTask.StartDate
	} else {
		task.Owner = m.session.User
	}
	return task, nil
}

func (m TaskFormModel) submit() (TaskFormModel, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	task, err := m.taskFromForm()
	if err != nil {
		m.validationErr = err.Error()
		return m, nil
	}

	m.loading = true
	m.errMsg = ""

	deps := m.deps
	if m.isEditMode {
		return m, func() tea.Msg {
			err := deps.Repo.UpdateTask(context.Background(), task)
			return opDoneMsg{op: "update task", err: err}
		}
	}

	projectID := m.projectID
	return m, func() tea.Msg {
		_, err := deps.Repo.AddTask(context.Background(), projectID, task)
		return opDoneMsg{op: "add task", err: err}
	}
}

// View renders the task form wizard
func (m TaskFormModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	stepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	activeStepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))

	var b strings.Builder
	if m.isEditMode {
		b.WriteString(titleStyle.Render("Edit task"))
	} else {
		b.WriteString(titleStyle.Render("New task"))
	}
	b.WriteString("\n\n")

	for i, label := range stepLabels {
		if Step(i) == m.currentStep {
			b.WriteString(activeStepStyle.Render("> " + label))
		} else {
			b.WriteString(stepStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.currentStep {
	case StepPriority:
		b.WriteString(mutedStyle.Render("Priority: "))
		b.WriteString(activeStepStyle.Render(strings.ToLower(string(priorityCycle[m.priorityIdx]))))
		b.WriteString("\n")
	case StepSave:
		b.WriteString(mutedStyle.Render("Press enter to save"))
		b.WriteString("\n")
	default:
		b.WriteString(m.inputs[m.inputIndex()].View())
		b.WriteString("\n")
	}

	if len(m.tags) > 0 {
		b.WriteString(mutedStyle.Render("Tags: " + strings.Join(m.tags, ", ")))
		b.WriteString("\n")
	}
	if len(m.assignees) > 0 {
		names := make([]string, 0, len(m.assignees))
		for _, u := range m.assignees {
			names = append(names, u.DisplayName)
		}
		b.WriteString(mutedStyle.Render("Assignees: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}

	if m.validationErr != "" {
		b.WriteString(errStyle.Render(m.validationErr))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	if m.loading {
		b.WriteString(mutedStyle.Render("Saving..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: next/confirm • shift+tab: back • ←/→: priority • esc: cancel"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2)
	return card.Render(b.String())
}
