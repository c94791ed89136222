package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/validate"
)

const (
	loginFieldEmail = iota
	loginFieldPassword
	loginFieldCount
)

// LoginModel is the sign-in screen. Field validation is recomputed on every
// change and kept as derived state; it never blocks typing.
type LoginModel struct {
	deps   Deps
	inputs []textinput.Model
	focus  int

	emailErr    string
	passwordErr string

	loading bool
	errMsg  string
}

// NewLoginModel creates the sign-in screen model
func NewLoginModel(deps Deps) LoginModel {
	inputs := make([]textinput.Model, loginFieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[loginFieldEmail].Placeholder = "Email"
	inputs[loginFieldEmail].CharLimit = 100
	inputs[loginFieldEmail].Focus()

	inputs[loginFieldPassword].Placeholder = "Password"
	inputs[loginFieldPassword].CharLimit = 100
	inputs[loginFieldPassword].EchoMode = textinput.EchoPassword

	return LoginModel{
		deps:   deps,
		inputs: inputs,
	}
}

// Update handles messages for the login screen
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, tea.Quit

		case "ctrl+r":
			return m, func() tea.Msg { return switchToRegisterMsg{} }

		case "tab", "down":
			return m.moveFocus(1), nil

		case "shift+tab", "up":
			return m.moveFocus(-1), nil

		case "enter":
			if m.focus < loginFieldPassword {
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

func (m LoginModel) updateInputs(msg tea.Msg) (LoginModel, tea.Cmd) {
	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}

	// Email never contains whitespace
	email := validate.StripSpaces(m.inputs[loginFieldEmail].Value())
	if email != m.inputs[loginFieldEmail].Value() {
		m.inputs[loginFieldEmail].SetValue(email)
	}

	m.emailErr = validate.EmailError(email)
	m.passwordErr = validate.PasswordError(m.inputs[loginFieldPassword].Value())

	return m, tea.Batch(cmds...)
}

func (m LoginModel) moveFocus(delta int) LoginModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + loginFieldCount) % loginFieldCount
	m.inputs[m.focus].Focus()
	return m
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if m.emailErr != "" || m.passwordErr != "" {
		return m, nil
	}

	m.loading = true
	m.errMsg = ""

	deps := m.deps
	email := m.inputs[loginFieldEmail].Value()
	password := m.inputs[loginFieldPassword].Value()
	return m, func() tea.Msg {
		session, err := deps.Auth.SignIn(context.Background(), email, password)
		return authResultMsg{session: session, err: err}
	}
}

// View renders the login screen
func (m LoginModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))

	b.WriteString(titleStyle.Render("taskdeck — sign in"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.inputs[loginFieldEmail].View())
	b.WriteString("\n")
	if m.emailErr != "" && m.inputs[loginFieldEmail].Value() != "" {
		b.WriteString(errStyle.Render(m.emailErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.inputs[loginFieldPassword].View())
	b.WriteString("\n")

	if m.loading {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("Signing in..."))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: sign in • ctrl+r: create account • esc: quit"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2)
	return card.Render(b.String())
}
