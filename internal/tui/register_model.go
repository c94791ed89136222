package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/validate"
)

const (
	registerFieldName = iota
	registerFieldSurname
	registerFieldEmail
	registerFieldPassword
	registerFieldRepeat
	registerFieldCount
)

// RegisterModel is the account creation screen
type RegisterModel struct {
	deps   Deps
	inputs []textinput.Model
	focus  int

	emailErr    string
	passwordErr string
	repeatErr   string

	loading bool
	errMsg  string
}

// NewRegisterModel creates the registration screen model
func NewRegisterModel(deps Deps) RegisterModel {
	inputs := make([]textinput.Model, registerFieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].CharLimit = 100
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[registerFieldName].Placeholder = "First name"
	inputs[registerFieldName].Focus()
	inputs[registerFieldSurname].Placeholder = "Last name"
	inputs[registerFieldEmail].Placeholder = "Email"
	inputs[registerFieldPassword].Placeholder = "Password"
	inputs[registerFieldPassword].EchoMode = textinput.EchoPassword
	inputs[registerFieldRepeat].Placeholder = "Repeat password"
	inputs[registerFieldRepeat].EchoMode = textinput.EchoPassword

	return RegisterModel{
		deps:   deps,
		inputs: inputs,
	}
}

// Update handles messages for the registration screen
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return switchToLoginMsg{} }

		case "tab", "down":
			return m.moveFocus(1), nil

		case "shift+tab", "up":
			return m.moveFocus(-1), nil

		case "enter":
			if m.focus < registerFieldRepeat {
				return m.moveFocus(1), nil
			}
			return m.submit()
		}

	case authResultMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = errText(msg.err)
			return m, nil
		}
		session := msg.session
		return m, func() tea.Msg { return loggedInMsg{session: session} }
	}

	return m.updateInputs(msg)
}

func (m RegisterModel) updateInputs(msg tea.Msg) (RegisterModel, tea.Cmd) {
	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}

	// Names are letters only; the filter runs per change so disallowed
	// characters never stick.
	for _, i := range []int{registerFieldName, registerFieldSurname} {
		filtered := validate.FilterName(m.inputs[i].Value())
		if filtered != m.inputs[i].Value() {
			m.inputs[i].SetValue(filtered)
		}
	}

	email := validate.StripSpaces(m.inputs[registerFieldEmail].Value())
	if email != m.inputs[registerFieldEmail].Value() {
		m.inputs[registerFieldEmail].SetValue(email)
	}

	m.emailErr = validate.EmailError(email)
	m.passwordErr = validate.PasswordError(m.inputs[registerFieldPassword].Value())
	if m.inputs[registerFieldRepeat].Value() != m.inputs[registerFieldPassword].Value() {
		m.repeatErr = "Passwords do not match"
	} else {
		m.repeatErr = ""
	}

	return m, tea.Batch(cmds...)
}

func (m RegisterModel) moveFocus(delta int) RegisterModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + registerFieldCount) % registerFieldCount
	m.inputs[m.focus].Focus()
	return m
}

func (m RegisterModel) submit() (RegisterModel, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if m.emailErr != "" || m.passwordErr != "" || m.repeatErr != "" {
		return m, nil
	}
	name := m.inputs[registerFieldName].Value()
	if name == "" {
		m.errMsg = "First name is required"
		return m, nil
	}

	m.loading = true
	m.errMsg = ""

	displayName := strings.TrimSpace(name + " " + m.inputs[registerFieldSurname].Value())
	user := models.User{
		Email:       m.inputs[registerFieldEmail].Value(),
		DisplayName: displayName,
	}
	password := m.inputs[registerFieldPassword].Value()
	deps := m.deps
	return m, func() tea.Msg {
		session, err := deps.Auth.Register(context.Background(), user, password)
		return authResultMsg{session: session, err: err}
	}
}

// View renders the registration screen
func (m RegisterModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))

	b.WriteString(titleStyle.Render("taskdeck — create account"))
	b.WriteString("\n\n")

	labels := []string{"First name", "Last name", "Email", "Password", "Repeat password"}
	fieldErrs := []string{"", "", m.emailErr, m.passwordErr, m.repeatErr}
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))

	for i, label := range labels {
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if fieldErrs[i] != "" && m.inputs[i].Value() != "" {
			b.WriteString(errStyle.Render(fieldErrs[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(helpStyle.Render("Creating account..."))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: create account • esc: back to sign in"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2)
	return card.Render(b.String())
}
