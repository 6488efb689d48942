package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/editor"
	"github.com/nhle/reply-desk/internal/queue"
	"github.com/nhle/reply-desk/internal/tracker"
	"github.com/nhle/reply-desk/internal/ui/command"
	"github.com/nhle/reply-desk/internal/ui/desk"
	"github.com/nhle/reply-desk/internal/ui/inbox"
	"github.com/nhle/reply-desk/internal/workspace"
)

// run performs fn off the UI goroutine and reports how it ended.
func run(op string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(context.Background())}
	}
}

// runSync wraps a call that does not block on the backend.
func runSync(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn()}
	}
}

// flashFor returns a status-bar message for errors the workspace does
// not already report through its notice. Stale results stay silent.
func flashFor(err error) string {
	switch {
	case err == nil, errors.Is(err, workspace.ErrStale), errors.Is(err, queue.ErrSuperseded):
		return ""
	case errors.Is(err, queue.ErrNoPage):
		return "No more pages"
	case errors.Is(err, workspace.ErrBusy), errors.Is(err, tracker.ErrBusy), errors.Is(err, editor.ErrBusy):
		return "Already in progress"
	case errors.Is(err, workspace.ErrAlreadySent):
		return "Reply already sent; press n for the next email"
	case errors.Is(err, workspace.ErrNoSelection):
		return "Select an email first"
	case errors.Is(err, workspace.ErrUnknownTemplate):
		return "Template not found"
	}
	return ""
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
			m.currentView = m.previousView
		}
		return m, nil
	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		return m.updateActiveView(msg)
	case ViewMain:
	default:
		return m.updateActiveView(msg)
	}

	if m.desk.Editing() {
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.command.Init()
	case key.Matches(msg, m.keys.Categories):
		cmd := m.openCategories()
		return m, cmd
	case key.Matches(msg, m.keys.Templates):
		cmd := m.openTemplates()
		return m, cmd
	case key.Matches(msg, m.keys.Setup):
		cmd := m.openSetup()
		return m, cmd
	case key.Matches(msg, m.keys.Back):
		m.flash = ""
		m.deps.Workspace.ClearNotice()
		return m, nil
	}

	m.flash = ""
	return m.updateActiveView(msg)
}

func (m *Model) openCategories() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewCategories
	return m.categories.Init()
}

func (m *Model) openTemplates() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewTemplates
	m.templates.SetCategories(m.snap.Categories)
	return m.templates.Init()
}

func (m Model) handleInboxIntent(msg tea.Msg) (tea.Model, tea.Cmd) {
	w := m.deps.Workspace
	switch msg := msg.(type) {
	case inbox.SelectMsg:
		return m, runSync("select", func() error { return w.SelectID(msg.ID) })
	case inbox.DeleteMsg:
		cmd := m.askDelete(msg)
		return m, cmd
	case inbox.RefreshMsg:
		return m, run("refresh", w.Refresh)
	case inbox.SyncMsg:
		return m, run("sync", w.Sync)
	case inbox.NavMsg:
		switch msg.Nav {
		case inbox.NavFirst:
			return m, run("first page", w.FirstPage)
		case inbox.NavPrev:
			return m, run("previous page", w.PrevPage)
		case inbox.NavNext:
			return m, run("next page", w.NextPage)
		case inbox.NavLast:
			return m, run("last page", w.LastPage)
		}
	}
	return m, nil
}

func (m Model) handleDeskIntent(msg tea.Msg) (tea.Model, tea.Cmd) {
	w := m.deps.Workspace
	switch msg := msg.(type) {
	case desk.ActionMsg:
		switch msg.Action {
		case desk.ActionAnalyze:
			return m, run("analyze", func(ctx context.Context) error { return w.Analyze(ctx, false) })
		case desk.ActionForceAI:
			return m, run("analyze", func(ctx context.Context) error { return w.Analyze(ctx, true) })
		case desk.ActionRegenerate:
			return m, run("regenerate", w.RegenerateReply)
		case desk.ActionVariables:
			return m, runSync("variables", w.ApplyVariables)
		case desk.ActionForward:
			return m, run("translate", w.TranslateForward)
		case desk.ActionReverse:
			return m, run("translate", w.TranslateReverse)
		case desk.ActionSend:
			return m, run("send", w.Send)
		case desk.ActionNext:
			return m, runSync("next", w.ProcessNext)
		}
	case desk.EditReplyMsg:
		return m, runSync("edit reply", func() error { return w.EditReply(msg.Text) })
	case desk.EditPreviewMsg:
		return m, runSync("edit translation", func() error { return w.EditTranslation(msg.Text) })
	case desk.ApplyTemplateMsg:
		return m, runSync("template", func() error { return w.ApplyTemplateID(msg.ID) })
	}
	return m, nil
}

// askDelete opens a confirmation before the email is removed.
func (m *Model) askDelete(msg inbox.DeleteMsg) tea.Cmd {
	if _, busy := m.snap.OperationFor(msg.ID); busy {
		m.flash = "Already in progress"
		return nil
	}
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	*m.confirmDelete = false
	m.pendingDelete = msg.ID
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", subject)).
				Description("The email is removed from the backend.").
				Affirmative("Delete").
				Negative("Keep").
				Value(m.confirmDelete),
		),
	).WithWidth(min(m.layout.Width, 60)).WithShowHelp(false)
	return m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		m.confirm = nil
		if !*m.confirmDelete {
			return m, nil
		}
		id := m.pendingDelete
		w := m.deps.Workspace
		m.logger.Info("deleting email", zap.Int64("email_id", id))
		return m, run("delete", func(ctx context.Context) error { return w.Delete(ctx, id) })
	case huh.StateAborted:
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

// executeCommand runs a palette command.
func (m *Model) executeCommand(msg command.Msg) tea.Cmd {
	w := m.deps.Workspace
	switch msg.Name {
	case "sync":
		return run("sync", w.Sync)
	case "refresh":
		return run("refresh", w.Refresh)
	case "page":
		n, ok := intArg(msg.Args)
		if !ok {
			m.flash = "Usage: page N"
			return nil
		}
		return run("page", func(ctx context.Context) error { return w.GoToPage(ctx, n) })
	case "pagesize":
		n, ok := intArg(msg.Args)
		if !ok || n <= 0 {
			m.flash = "Usage: pagesize N"
			return nil
		}
		return run("page size", func(ctx context.Context) error { return w.SetPageSize(ctx, n) })
	case "categories":
		m.currentView = ViewMain
		return m.openCategories()
	case "templates":
		m.currentView = ViewMain
		return m.openTemplates()
	case "settings":
		m.currentView = ViewMain
		return m.openSetup()
	case "quit", "q":
		m.shutdown()
		return tea.Quit
	}
	m.flash = fmt.Sprintf("Unknown command: %s", msg.Name)
	return nil
}

func intArg(args []string) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	return n, err == nil
}
