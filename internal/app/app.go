package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/keys"
	appsync "github.com/nhle/reply-desk/internal/sync"
	"github.com/nhle/reply-desk/internal/ui"
	"github.com/nhle/reply-desk/internal/ui/categorymgr"
	"github.com/nhle/reply-desk/internal/ui/command"
	"github.com/nhle/reply-desk/internal/ui/desk"
	helpview "github.com/nhle/reply-desk/internal/ui/help"
	"github.com/nhle/reply-desk/internal/ui/inbox"
	"github.com/nhle/reply-desk/internal/ui/setup"
	"github.com/nhle/reply-desk/internal/ui/templatemgr"
	"github.com/nhle/reply-desk/internal/workspace"
)

// Workspace is the controller surface the UI drives.
type Workspace interface {
	Snapshot() workspace.Snapshot
	Subscribe() (<-chan workspace.Event, func())
	Bootstrap(ctx context.Context) error
	ClearNotice()

	SelectID(id int64) error
	Analyze(ctx context.Context, forceAI bool) error
	RegenerateReply(ctx context.Context) error
	ApplyTemplateID(id int64) error
	ApplyVariables() error
	EditReply(text string) error
	EditTranslation(text string) error
	TranslateForward(ctx context.Context) error
	TranslateReverse(ctx context.Context) error
	Send(ctx context.Context) error
	Delete(ctx context.Context, id int64) error
	ProcessNext() error

	GoToPage(ctx context.Context, p int) error
	Refresh(ctx context.Context) error
	FirstPage(ctx context.Context) error
	PrevPage(ctx context.Context) error
	NextPage(ctx context.Context) error
	LastPage(ctx context.Context) error
	SetPageSize(ctx context.Context, n int) error
	Sync(ctx context.Context) error
}

// Deps wires the app to its collaborators.
type Deps struct {
	Workspace  Workspace
	Categories categorymgr.Editor
	Templates  templatemgr.Editor
	Settings   setup.Saver
	Checker    setup.Checker
	// Vault may be nil when no keyring is available.
	Vault  setup.Vault
	Poller *appsync.Poller

	// AutoSyncSec is the configured auto-sync period; see
	// sync.ResolveInterval.
	AutoSyncSec int
	Logger      *zap.Logger
}

// ViewState is the active screen.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewHelp
	ViewCommand
	ViewCategories
	ViewTemplates
	ViewSetup
)

type eventMsg struct {
	reason workspace.Reason
}

type bootstrapDoneMsg struct{ err error }

type opDoneMsg struct {
	op  string
	err error
}

type tickMsg time.Time

// Model is the root Bubble Tea model. It routes keys to the views and
// turns their intents into workspace calls.
type Model struct {
	deps   Deps
	logger *zap.Logger
	keys   *keys.KeyMap
	layout ui.Layout
	ready  bool

	currentView  ViewState
	previousView ViewState

	inbox      inbox.Model
	desk       desk.Model
	help       helpview.Model
	command    command.Model
	categories categorymgr.Model
	templates  templatemgr.Model
	setup      setup.Model

	events      <-chan workspace.Event
	unsubscribe func()
	snap        workspace.Snapshot
	now         time.Time

	confirm       *huh.Form
	confirmDelete *bool
	pendingDelete int64

	flash string
}

// New creates the root model.
func New(d Deps) Model {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	k := keys.DefaultKeyMap()
	events, unsubscribe := d.Workspace.Subscribe()

	return Model{
		deps:          d,
		logger:        logger.Named("ui"),
		keys:          k,
		inbox:         inbox.New(k, 40, 20),
		desk:          desk.New(k, 60, 20),
		help:          helpview.New(k, 80, 24),
		command:       command.New(80, 24),
		categories:    categorymgr.New(d.Categories, k, 80, 24),
		templates:     templatemgr.New(d.Templates, k, 80, 24),
		setup:         setup.New(d.Settings, d.Checker, d.Vault, 80, 24),
		events:        events,
		unsubscribe:   unsubscribe,
		now:           time.Now(),
		confirmDelete: new(bool),
	}
}

// Init subscribes to the workspace, runs the initial load and starts the
// poller and the clock.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.waitForEvent(),
		m.bootstrap(),
		m.desk.Init(),
		tickEvery(),
	}
	if m.deps.Poller != nil {
		cmds = append(cmds, m.deps.Poller.Start())
	}
	return tea.Batch(cmds...)
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{reason: ev.Reason}
	}
}

func (m Model) bootstrap() tea.Cmd {
	w := m.deps.Workspace
	return func() tea.Msg {
		return bootstrapDoneMsg{err: w.Bootstrap(context.Background())}
	}
}

// tickEvery refreshes relative timestamps once a minute.
func tickEvery() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.ready = true
		return m.updateActiveView(msg)

	case eventMsg:
		cmd := m.applySnapshot(m.deps.Workspace.Snapshot())
		return m, tea.Batch(cmd, m.waitForEvent())

	case bootstrapDoneMsg:
		if msg.err != nil {
			m.logger.Warn("initial load incomplete", zap.Error(msg.err))
		}
		cmd := m.applySnapshot(m.deps.Workspace.Snapshot())
		if m.snap.NeedsSetup {
			setupCmd := m.openSetup()
			return m, tea.Batch(cmd, setupCmd)
		}
		return m, cmd

	case opDoneMsg:
		if text := flashFor(msg.err); text != "" {
			m.flash = text
		} else if msg.err != nil {
			m.logger.Debug("operation ended", zap.String("op", msg.op), zap.Error(msg.err))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.desk, cmd = m.desk.Update(msg)
		return m, cmd

	case tickMsg:
		m.now = time.Time(msg)
		m.inbox.SetNow(m.now)
		m.desk.SetNow(m.now)
		return m, tickEvery()

	case appsync.ResultMsg:
		if msg.Error != nil {
			m.logger.Warn("auto-sync failed", zap.Error(msg.Error))
		}
		return m, m.deps.Poller.WaitForNextResult()

	case inbox.SelectMsg, inbox.NavMsg, inbox.DeleteMsg, inbox.RefreshMsg, inbox.SyncMsg:
		return m.handleInboxIntent(msg)

	case desk.ActionMsg, desk.EditReplyMsg, desk.EditPreviewMsg, desk.ApplyTemplateMsg:
		return m.handleDeskIntent(msg)

	case command.Msg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case categorymgr.CloseMsg, templatemgr.CloseMsg:
		m.currentView = ViewMain
		return m, nil

	case setup.DoneMsg:
		m.currentView = ViewMain
		m.flash = "Settings saved"
		if msg.VaultErr != nil {
			m.logger.Warn("caching secrets", zap.Error(msg.VaultErr))
			m.flash = "Settings saved; secrets were not cached in the keyring"
		}
		return m, nil

	case setup.CancelMsg:
		m.currentView = ViewMain
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	return m.updateActiveView(msg)
}

// applySnapshot pushes a fresh snapshot into the views and follows the
// backend's fetch interval.
func (m *Model) applySnapshot(s workspace.Snapshot) tea.Cmd {
	m.snap = s
	cmd := m.inbox.SetSnapshot(s)
	m.desk.SetSnapshot(s)
	m.templates.SetCategories(s.Categories)

	if m.deps.Poller != nil && s.Settings != nil {
		want := appsync.ResolveInterval(m.deps.AutoSyncSec, s.Settings.Settings.FetchInterval)
		if m.deps.Poller.Status().Interval != want {
			m.deps.Poller.SetInterval(want)
		}
	}
	return cmd
}

func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	h := m.layout.ContentHeight()
	listW, deskW := m.layout.SplitWidth()
	// Panel borders take two cells each way.
	m.inbox.SetSize(max(listW-4, 10), max(h-2, 3))
	m.desk.SetSize(max(deskW-4, 10), max(h-2, 3))
	m.help.SetSize(width, h)
	m.command.SetSize(width, h)
	m.categories.SetSize(width, h)
	m.templates.SetSize(width, h)
	m.setup.SetSize(width, h)
}

func (m *Model) openSetup() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSetup
	return m.setup.Start(m.snap.Settings)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.shutdown()
	return m, tea.Quit
}

// shutdown stops the poller and drops the event subscription.
func (m Model) shutdown() {
	if m.deps.Poller != nil {
		m.deps.Poller.Stop()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// updateActiveView dispatches msg to the current view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewMain:
		if m.desk.Editing() {
			m.desk, cmd = m.desk.Update(msg)
			return m, cmd
		}
		var c1, c2 tea.Cmd
		m.inbox, c1 = m.inbox.Update(msg)
		m.desk, c2 = m.desk.Update(msg)
		return m, tea.Batch(c1, c2)
	case ViewCommand:
		m.command, cmd = m.command.Update(msg)
	case ViewCategories:
		m.categories, cmd = m.categories.Update(msg)
	case ViewTemplates:
		m.templates, cmd = m.templates.Update(msg)
	case ViewSetup:
		m.setup, cmd = m.setup.Update(msg)
	}
	return m, cmd
}
