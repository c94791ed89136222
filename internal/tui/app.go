package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/data"
	"github.com/taskdeck/taskdeck/internal/logger"
)

// Deps is everything the screens need to do their work
type Deps struct {
	Auth auth.Provider
	Repo *data.Repo
}

// Screen identifies the currently active screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenProjects
	ScreenBoard
	ScreenTaskForm
)

// App is the root model. It owns navigation between screens and routes
// every other message to the screen that should reduce it.
type App struct {
	deps   Deps
	screen Screen
	width  int
	height int

	login    LoginModel
	register RegisterModel
	projects ProjectsModel
	board    BoardModel
	form     TaskFormModel

	session *auth.Session
}

// NewApp creates the root model starting at the login screen
func NewApp(deps Deps) App {
	return App{
		deps:   deps,
		screen: ScreenLogin,
		login:  NewLoginModel(deps),
	}
}

// Init tries to restore a persisted session before showing login
func (a App) Init() tea.Cmd {
	deps := a.deps
	return func() tea.Msg {
		session, err := deps.Auth.CurrentSession(context.Background())
		return sessionRestoredMsg{session: session, err: err}
	}
}

// Update handles navigation; everything else goes to the active screen
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Screens size themselves lazily; just forward.

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.stopWatches()
			return a, tea.Quit
		}

	case sessionRestoredMsg:
		if msg.err != nil {
			logger.Error("session restore failed", msg.err)
		}
		if msg.session != nil {
			return a.toProjects(msg.session)
		}
		return a, nil

	case loggedInMsg:
		return a.toProjects(msg.session)

	case loggedOutMsg:
		a.stopWatches()
		a.session = nil
		a.screen = ScreenLogin
		a.login = NewLoginModel(a.deps)
		return a, nil

	case switchToRegisterMsg:
		a.screen = ScreenRegister
		a.register = NewRegisterModel(a.deps)
		return a, nil

	case switchToLoginMsg:
		a.screen = ScreenLogin
		a.login = NewLoginModel(a.deps)
		return a, nil

	case openBoardMsg:
		a.screen = ScreenBoard
		a.board = NewBoardModel(a.deps, msg.project)
		return a, a.board.Init()

	case backToProjectsMsg:
		a.board.stop()
		a.screen = ScreenProjects
		return a, nil

	case openTaskFormMsg:
		a.screen = ScreenTaskForm
		a.form = NewTaskFormModel(a.deps, msg.projectID, a.session, msg.task)
		return a, a.form.Init()

	case closeTaskFormMsg:
		a.screen = ScreenBoard
		return a, nil
	}

	return a.routeToScreen(msg)
}

// routeToScreen forwards msg to the screen that owns it. Live-view events
// always reach their owning screen even when another screen is on top, so
// background subscriptions keep reducing.
func (a App) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.(type) {
	case projectsEventMsg, projectsClosedMsg:
		a.projects, cmd = a.projects.Update(msg)
		return a, cmd
	case projectEventMsg, projectClosedMsg:
		a.board, cmd = a.board.Update(msg)
		return a, cmd
	}

	switch a.screen {
	case ScreenLogin:
		a.login, cmd = a.login.Update(msg)
	case ScreenRegister:
		a.register, cmd = a.register.Update(msg)
	case ScreenProjects:
		a.projects, cmd = a.projects.Update(msg)
	case ScreenBoard:
		a.board, cmd = a.board.Update(msg)
	case ScreenTaskForm:
		a.form, cmd = a.form.Update(msg)
	}
	return a, cmd
}

// View renders the active screen
func (a App) View() string {
	switch a.screen {
	case ScreenLogin:
		return a.login.View()
	case ScreenRegister:
		return a.register.View()
	case ScreenProjects:
		return a.projects.View()
	case ScreenBoard:
		return a.board.View()
	case ScreenTaskForm:
		return a.form.View()
	}
	return ""
}

func (a *App) toProjects(session *auth.Session) (tea.Model, tea.Cmd) {
	a.session = session
	a.screen = ScreenProjects
	a.projects = NewProjectsModel(a.deps, session)
	return *a, a.projects.Init()
}

// stopWatches cancels every live subscription before quitting or logging
// out, so no listener or recomputation outlives the screens.
func (a *App) stopWatches() {
	a.projects.stop()
	a.board.stop()
}
