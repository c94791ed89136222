package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/data"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/parser"
)

var boardColumns = []models.Status{
	models.StatusTodo,
	models.StatusInProgress,
	models.StatusCompleted,
}

// BoardModel is the per-project task board: three status columns fed by a
// live subscription to the project and its tasks.
type BoardModel struct {
	deps      Deps
	projectID string
	project   models.Project

	// The watch context is owned by the model from construction, so a
	// back-out racing the subscription start still detaches it.
	watchCtx context.Context
	cancel   context.CancelFunc
	events   <-chan data.ProjectEvent

	col int // selected status column
	row int // selected task inside the column

	loading     bool
	errMsg      string
	terminal    bool
	showDetails bool
	detailsID   string
}

// NewBoardModel creates the board for project
func NewBoardModel(deps Deps, project models.Project) BoardModel {
	ctx, cancel := context.WithCancel(context.Background())
	return BoardModel{
		deps:      deps,
		projectID: project.ID,
		project:   project,
		watchCtx:  ctx,
		cancel:    cancel,
		loading:   true,
	}
}

// Init starts the live single-project subscription
func (m BoardModel) Init() tea.Cmd {
	events := m.deps.Repo.WatchProject(m.watchCtx, m.projectID)
	return tea.Batch(
		func() tea.Msg { return boardStartedMsg{events: events} },
		waitForProjectEvent(events),
	)
}

type boardStartedMsg struct {
	events <-chan data.ProjectEvent
}

// stop cancels the live subscription
func (m *BoardModel) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// tasksIn returns the project's tasks with the given status, in task order
func (m BoardModel) tasksIn(status models.Status) []models.Task {
	var tasks []models.Task
	for _, t := range m.project.Tasks {
		if t.Status == status {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (m BoardModel) selectedTask() *models.Task {
	tasks := m.tasksIn(boardColumns[m.col])
	if m.row < 0 || m.row >= len(tasks) {
		return nil
	}
	t := tasks[m.row]
	return &t
}

// Update handles messages for the board screen
func (m BoardModel) Update(msg tea.Msg) (BoardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case boardStartedMsg:
		m.events = msg.events
		return m, nil

	case projectEventMsg:
		if msg.ev.Err != nil {
			m.loading = false
			m.terminal = true
			m.errMsg = errText(msg.ev.Err)
			return m, nil
		}
		m.loading = false
		m.errMsg = ""
		m.project = msg.ev.Project
		m.clampSelection()
		return m, waitForProjectEvent(m.events)

	case projectClosedMsg:
		return m, nil

	case opDoneMsg:
		// Optimistic changes stay; the live view re-emits authoritative
		// state either way.
		if msg.err != nil {
			m.errMsg = errText(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.reduceKey(msg)
	}

	return m, nil
}

func (m BoardModel) reduceKey(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	if m.showDetails {
		switch msg.String() {
		case "esc", "v", "q":
			m.showDetails = false
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.stop()
		return m, func() tea.Msg { return backToProjectsMsg{} }

	case "left", "h":
		if m.col > 0 {
			m.col--
			m.clampSelection()
		}
		return m, nil

	case "right", "l":
		if m.col < len(boardColumns)-1 {
			m.col++
			m.clampSelection()
		}
		return m, nil

	case "up", "k":
		if m.row > 0 {
			m.row--
		}
		return m, nil

	case "down", "j":
		if m.row < len(m.tasksIn(boardColumns[m.col]))-1 {
			m.row++
		}
		return m, nil

	case "enter", " ":
		return m.advanceSelected()

	case "n":
		projectID := m.projectID
		return m, func() tea.Msg { return openTaskFormMsg{projectID: projectID} }

	case "e":
		task := m.selectedTask()
		if task == nil {
			return m, nil
		}
		projectID := m.projectID
		edited := *task
		return m, func() tea.Msg { return openTaskFormMsg{projectID: projectID, task: &edited} }

	case "d":
		return m.deleteSelected()

	case "v":
		if task := m.selectedTask(); task != nil {
			m.showDetails = true
			m.detailsID = task.ID
		}
		return m, nil
	}
	return m, nil
}

// advanceSelected moves the selected task one status forward. The change is
// applied to local state first and persisted after; a failed persist keeps
// the optimistic value and only surfaces the error.
func (m BoardModel) advanceSelected() (BoardModel, tea.Cmd) {
	task := m.selectedTask()
	if task == nil || task.Status == models.StatusCompleted {
		return m, nil
	}

	updated := *task
	updated.Status = task.Status.Advance()
	m.project = applyTask(m.project, updated)
	m.clampSelection()

	deps := m.deps
	return m, func() tea.Msg {
		err := deps.Repo.UpdateTask(context.Background(), updated)
		return opDoneMsg{op: "update task", err: err}
	}
}

func (m BoardModel) deleteSelected() (BoardModel, tea.Cmd) {
	task := m.selectedTask()
	if task == nil {
		return m, nil
	}
	deps := m.deps
	projectID := m.projectID
	taskID := task.ID
	return m, func() tea.Msg {
		err := deps.Repo.RemoveTask(context.Background(), projectID, taskID)
		return opDoneMsg{op: "remove task", err: err}
	}
}

func (m *BoardModel) clampSelection() {
	tasks := m.tasksIn(boardColumns[m.col])
	if m.row >= len(tasks) {
		m.row = len(tasks) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// applyTask replaces the task with the same id inside the project
func applyTask(p models.Project, task models.Task) models.Project {
	tasks := make([]models.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		if t.ID == task.ID {
			tasks[i] = task
		} else {
			tasks[i] = t
		}
	}
	p.Tasks = tasks
	return p
}

// View renders the board screen
func (m BoardModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.project.Name))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(mutedStyle.Render("Loading board..."))
		b.WriteString("\n")
	} else if m.showDetails {
		b.WriteString(m.renderDetails())
	} else {
		columns := make([]string, 0, len(boardColumns))
		for i, status := range boardColumns {
			columns = append(columns, m.renderColumn(status, i == m.col))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.showDetails {
		b.WriteString(helpStyle.Render("esc: close details"))
	} else {
		b.WriteString(helpStyle.Render("space: advance • n: new • e: edit • d: delete • v: details • esc: back"))
	}
	return b.String()
}

func statusColor(status models.Status) string {
	switch status {
	case models.StatusInProgress:
		return ColorStatusInProgress
	case models.StatusCompleted:
		return ColorStatusCompleted
	default:
		return ColorStatusTodo
	}
}

func statusLabel(status models.Status) string {
	switch status {
	case models.StatusInProgress:
		return "In progress"
	case models.StatusCompleted:
		return "Completed"
	default:
		return "To do"
	}
}

func (m BoardModel) renderColumn(status models.Status, active bool) string {
	tasks := m.tasksIn(status)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(statusColor(status))).
		Bold(true)
	taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", statusLabel(status), len(tasks))))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render("—"))
		b.WriteString("\n")
	}
	for i, t := range tasks {
		line := t.Title
		if t.Deadline != nil {
			line += " " + parser.FormatDeadline(t.Deadline)
		}
		if active && i == m.row {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(taskStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	borderColor := ColorBorder
	if active {
		borderColor = ColorAccentMain
	}
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(30)
	return column.Render(b.String())
}

func (m BoardModel) renderDetails() string {
	var task *models.Task
	for _, t := range m.project.Tasks {
		if t.ID == m.detailsID {
			task = &t
			break
		}
	}
	if task == nil {
		return "Task no longer exists."
	}

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))

	line := func(label, value string) string {
		return labelStyle.Render(label+": ") + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(valueStyle.Bold(true).Render(task.Title))
	b.WriteString("\n\n")
	if task.Description != "" {
		b.WriteString(valueStyle.Render(task.Description))
		b.WriteString("\n\n")
	}
	b.WriteString(line("Status", statusLabel(task.Status)))
	b.WriteString(line("Priority", strings.ToLower(string(task.Priority))))
	b.WriteString(line("Owner", task.Owner.DisplayName))
	if len(task.AssignedTo) > 0 {
		names := make([]string, 0, len(task.AssignedTo))
		for _, u := range task.AssignedTo {
			names = append(names, u.DisplayName)
		}
		b.WriteString(line("Assigned to", strings.Join(names, ", ")))
	}
	if len(task.Tags) > 0 {
		b.WriteString(line("Tags", strings.Join(task.Tags, ", ")))
	}
	if task.Deadline != nil {
		b.WriteString(line("Deadline", parser.FormatDeadline(task.Deadline)))
	}
	b.WriteString(line("Created", task.CreatedAt.Format("02/01/2006")))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2)
	return card.Render(b.String())
}
