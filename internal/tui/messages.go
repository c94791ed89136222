package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/data"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/store"
)

// Navigation messages emitted by screens and handled by the App

type switchToRegisterMsg struct{}
type switchToLoginMsg struct{}

type loggedInMsg struct{ session *auth.Session }
type loggedOutMsg struct{}

type openBoardMsg struct{ project models.Project }
type backToProjectsMsg struct{}

// task == nil means "create a new task"
type openTaskFormMsg struct {
	projectID string
	task      *models.Task
}
type closeTaskFormMsg struct{ saved bool }

// Async operation results

type sessionRestoredMsg struct {
	session *auth.Session
	err     error
}

type authResultMsg struct {
	session *auth.Session
	err     error
}

type userLookupMsg struct {
	user *models.User
	err  error
}

type createProjectResultMsg struct{ err error }

// opDoneMsg reports a fire-and-forget mutation (task update/delete,
// project delete).
type opDoneMsg struct {
	op  string
	err error
}

// Live view events

type projectsEventMsg struct{ ev data.ProjectListEvent }
type projectsClosedMsg struct{}

type projectEventMsg struct{ ev data.ProjectEvent }
type projectClosedMsg struct{}

// waitForProjectsEvent blocks on the live project-list channel and turns
// the next event into a message. Reissued after every receipt.
func waitForProjectsEvent(ch <-chan data.ProjectListEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return projectsClosedMsg{}
		}
		return projectsEventMsg{ev: ev}
	}
}

func waitForProjectEvent(ch <-chan data.ProjectEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return projectClosedMsg{}
		}
		return projectEventMsg{ev: ev}
	}
}

// errText maps any failure to the stable user-facing message for it.
// Cancellation yields an empty string: it is control flow, never an error
// to show.
func errText(err error) string {
	switch {
	case err == nil:
		return ""
	case store.IsCancellation(err):
		return ""
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, auth.ErrEmailTaken):
		return "An account with this email already exists."
	default:
		return store.UserMessage(err)
	}
}
