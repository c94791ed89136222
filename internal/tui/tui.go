package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive taskdeck TUI and blocks until the user quits
func Run(deps Deps) error {
	p := tea.NewProgram(NewApp(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
