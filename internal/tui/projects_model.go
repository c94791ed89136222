package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/data"
	"github.com/taskdeck/taskdeck/internal/models"
)

const (
	dialogFieldName = iota
	dialogFieldMember
	dialogFieldCount
)

// createProjectDialog is the in-screen dialog for creating a project and
// inviting members by email.
type createProjectDialog struct {
	inputs  []textinput.Model
	focus   int
	members []models.User
	loading bool
	errMsg  string
}

// ProjectsModel is the project list screen, fed by a live subscription to
// every project the user owns or belongs to.
type ProjectsModel struct {
	deps    Deps
	session *auth.Session

	// The watch context is owned by the model from construction, so a
	// logout racing the subscription start still detaches it.
	watchCtx context.Context
	cancel   context.CancelFunc
	events   <-chan data.ProjectListEvent

	projects []models.Project
	selected int
	loading  bool
	errMsg   string

	showDialog bool
	dialog     createProjectDialog
}

// NewProjectsModel creates the project list screen for the signed-in user
func NewProjectsModel(deps Deps, session *auth.Session) ProjectsModel {
	ctx, cancel := context.WithCancel(context.Background())
	return ProjectsModel{
		deps:     deps,
		session:  session,
		watchCtx: ctx,
		cancel:   cancel,
		loading:  true,
	}
}

// Init starts the live project-list subscription
func (m ProjectsModel) Init() tea.Cmd {
	if m.session == nil {
		return nil
	}
	ch := m.deps.Repo.WatchUserProjects(m.watchCtx, m.session.User.ID)
	return tea.Batch(
		func() tea.Msg { return projectsStartedMsg{events: ch} },
		waitForProjectsEvent(ch),
	)
}

// projectsStartedMsg carries the event channel back into the model, since
// Init runs on a value copy.
type projectsStartedMsg struct {
	events <-chan data.ProjectListEvent
}

// stop cancels the live subscription; all listeners detach promptly
func (m *ProjectsModel) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Update handles messages for the project list screen
func (m ProjectsModel) Update(msg tea.Msg) (ProjectsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsStartedMsg:
		m.events = msg.events
		return m, nil

	case projectsEventMsg:
		if msg.ev.Err != nil {
			m.loading = false
			m.errMsg = errText(msg.ev.Err)
			return m, nil
		}
		m.loading = false
		m.errMsg = ""
		m.projects = msg.ev.Projects
		if m.selected >= len(m.projects) {
			m.selected = max(0, len(m.projects)-1)
		}
		return m, waitForProjectsEvent(m.events)

	case projectsClosedMsg:
		return m, nil

	case userLookupMsg:
		return m.reduceDialogLookup(msg), nil

	case createProjectResultMsg:
		m.dialog.loading = false
		if msg.err != nil {
			m.dialog.errMsg = errText(msg.err)
			return m, nil
		}
		m.showDialog = false
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.errMsg = errText(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.showDialog {
			return m.reduceDialogKey(msg)
		}
		return m.reduceListKey(msg)
	}

	return m, nil
}

func (m ProjectsModel) reduceListKey(msg tea.KeyMsg) (ProjectsModel, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.stop()
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.selected < len(m.projects)-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		if len(m.projects) == 0 {
			return m, nil
		}
		project := m.projects[m.selected]
		return m, func() tea.Msg { return openBoardMsg{project: project} }

	case "n":
		m.showDialog = true
		m.dialog = newCreateProjectDialog()
		return m, nil

	case "d":
		if len(m.projects) == 0 {
			return m, nil
		}
		projectID := m.projects[m.selected].ID
		deps := m.deps
		return m, func() tea.Msg {
			err := deps.Repo.DeleteProject(context.Background(), projectID)
			return opDoneMsg{op: "delete project", err: err}
		}

	case "ctrl+l":
		m.stop()
		deps := m.deps
		return m, func() tea.Msg {
			if err := deps.Auth.SignOut(context.Background()); err != nil {
				return opDoneMsg{op: "sign out", err: err}
			}
			return loggedOutMsg{}
		}
	}
	return m, nil
}

func newCreateProjectDialog() createProjectDialog {
	inputs := make([]textinput.Model, dialogFieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].CharLimit = 100
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
	}
	inputs[dialogFieldName].Placeholder = "Project name"
	inputs[dialogFieldName].Focus()
	inputs[dialogFieldMember].Placeholder = "Member email (enter to add)"
	return createProjectDialog{inputs: inputs}
}

func (m ProjectsModel) reduceDialogKey(msg tea.KeyMsg) (ProjectsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showDialog = false
		return m, nil

	case "tab", "shift+tab":
		m.dialog.inputs[m.dialog.focus].Blur()
		m.dialog.focus = (m.dialog.focus + 1) % dialogFieldCount
		m.dialog.inputs[m.dialog.focus].Focus()
		return m, nil

	case "enter":
		if m.dialog.focus == dialogFieldMember {
			email := strings.TrimSpace(m.dialog.inputs[dialogFieldMember].Value())
			if email == "" {
				return m.submitDialog()
			}
			deps := m.deps
			return m, func() tea.Msg {
				user, err := deps.Repo.UserByEmail(context.Background(), email)
				return userLookupMsg{user: user, err: err}
			}
		}
		return m.submitDialog()
	}

	var cmd tea.Cmd
	m.dialog.inputs[m.dialog.focus], cmd = m.dialog.inputs[m.dialog.focus].Update(msg)
	return m, cmd
}

func (m ProjectsModel) reduceDialogLookup(msg userLookupMsg) ProjectsModel {
	if msg.err != nil {
		m.dialog.errMsg = errText(msg.err)
		return m
	}
	m.dialog.errMsg = ""
	for _, existing := range m.dialog.members {
		if existing.ID == msg.user.ID {
			return m
		}
	}
	m.dialog.members = append(m.dialog.members, *msg.user)
	m.dialog.inputs[dialogFieldMember].SetValue("")
	return m
}

func (m ProjectsModel) submitDialog() (ProjectsModel, tea.Cmd) {
	if m.dialog.loading {
		return m, nil
	}
	name := strings.TrimSpace(m.dialog.inputs[dialogFieldName].Value())
	if name == "" {
		m.dialog.errMsg = "Project name cannot be empty"
		return m, nil
	}

	m.dialog.loading = true
	m.dialog.errMsg = ""

	deps := m.deps
	owner := m.session.User
	members := append([]models.User{}, m.dialog.members...)
	return m, func() tea.Msg {
		_, err := deps.Repo.CreateProject(context.Background(), owner, name, members)
		return createProjectResultMsg{err: err}
	}
}

// View renders the project list screen
func (m ProjectsModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Projects — %s", m.session.User.DisplayName)))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render("Loading projects..."))
		b.WriteString("\n")
	case len(m.projects) == 0:
		b.WriteString(mutedStyle.Render("No projects yet. Press 'n' to create one."))
		b.WriteString("\n")
	default:
		for i, p := range m.projects {
			b.WriteString(m.renderProjectRow(p, i == m.selected))
			b.WriteString("\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: open • n: new • d: delete • ctrl+l: logout • q: quit"))

	if m.showDialog {
		return lipgloss.JoinVertical(lipgloss.Left, b.String(), m.renderDialog())
	}
	return b.String()
}

func (m ProjectsModel) renderProjectRow(p models.Project, selected bool) string {
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	if selected {
		nameStyle = nameStyle.Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	}

	counts := p.CountByStatus()
	countStr := fmt.Sprintf("todo %d · doing %d · done %d",
		counts[models.StatusTodo],
		counts[models.StatusInProgress],
		counts[models.StatusCompleted],
	)

	cursor := "  "
	if selected {
		cursor = "> "
	}
	membersStr := fmt.Sprintf("%d member(s)", len(p.Users)+1)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	return cursor + nameStyle.Render(p.Name) + "  " + muted.Render(countStr+" · "+membersStr)
}

func (m ProjectsModel) renderDialog() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))

	var b strings.Builder
	b.WriteString(labelStyle.Bold(true).Render("New project"))
	b.WriteString("\n\n")
	b.WriteString(m.dialog.inputs[dialogFieldName].View())
	b.WriteString("\n")
	b.WriteString(m.dialog.inputs[dialogFieldMember].View())
	b.WriteString("\n")

	if len(m.dialog.members) > 0 {
		names := make([]string, 0, len(m.dialog.members))
		for _, u := range m.dialog.members {
			names = append(names, u.DisplayName)
		}
		b.WriteString(mutedStyle.Render("Members: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}

	if m.dialog.loading {
		b.WriteString(mutedStyle.Render("Creating..."))
		b.WriteString("\n")
	}
	if m.dialog.errMsg != "" {
		b.WriteString(errStyle.Render(m.dialog.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: add member / create • tab: switch field • esc: cancel"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Padding(1, 2)
	return card.Render(b.String())
}
