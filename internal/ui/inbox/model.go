package inbox

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/keys"
	"github.com/nhle/reply-desk/internal/queue"
	"github.com/nhle/reply-desk/internal/theme"
	"github.com/nhle/reply-desk/internal/workspace"
)

// SelectMsg asks for an email to become the selection.
type SelectMsg struct {
	ID int64
}

// Nav names a page movement.
type Nav int

const (
	NavFirst Nav = iota
	NavPrev
	NavNext
	NavLast
)

// NavMsg asks for a page movement.
type NavMsg struct {
	Nav Nav
}

// DeleteMsg asks for an email to be deleted after confirmation.
type DeleteMsg struct {
	ID      int64
	Subject string
}

// RefreshMsg asks for the current page to be reloaded.
type RefreshMsg struct{}

// SyncMsg asks the backend to fetch new mail.
type SyncMsg struct{}

// Model is the paged pending-email list.
type Model struct {
	list   list.Model
	pager  paginator.Model
	keys   *keys.KeyMap
	ctx    *rowContext
	queue  queue.State
	width  int
	height int
}

// New creates an empty inbox.
func New(k *keys.KeyMap, width, height int) Model {
	ctx := &rowContext{}
	l := list.New([]list.Item{}, Delegate{ctx: ctx}, width, height)
	l.Title = "Pending"
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("•")
	p.InactiveDot = theme.DimmedStyle.Render("•")

	m := Model{list: l, pager: p, keys: k, ctx: ctx}
	m.SetSize(width, height)
	return m
}

// SetSnapshot replaces the rows and counters from a workspace snapshot.
func (m *Model) SetSnapshot(s workspace.Snapshot) tea.Cmd {
	m.queue = s.Queue
	m.ctx.ops = s.Operations
	m.ctx.categories = make(map[int64]string, len(s.Categories))
	for _, c := range s.Categories {
		m.ctx.categories[c.ID] = c.Name
	}
	m.ctx.selectedID = 0
	if s.Selected != nil {
		m.ctx.selectedID = s.Selected.ID
	}

	items := make([]list.Item, len(s.Queue.Items))
	for i, e := range s.Queue.Items {
		items[i] = EmailItem{Email: e}
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}

	m.pager.TotalPages = max(s.Queue.TotalPages, 1)
	m.pager.Page = max(s.Queue.Page-1, 0)
	return cmd
}

// SetNow sets the reference time for relative timestamps.
func (m *Model) SetNow(now time.Time) {
	m.ctx.now = now
}

// Cursor returns the email under the cursor.
func (m Model) Cursor() (EmailItem, bool) {
	it, ok := m.list.SelectedItem().(EmailItem)
	return it, ok
}

// Update handles inbox keys. Navigation keys the list does not own are
// turned into intent messages for the app.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(k, m.keys.Select):
		it, ok := m.Cursor()
		if !ok {
			return m, nil
		}
		return m, emit(SelectMsg{ID: it.Email.ID})

	case key.Matches(k, m.keys.Delete):
		it, ok := m.Cursor()
		if !ok {
			return m, nil
		}
		return m, emit(DeleteMsg{ID: it.Email.ID, Subject: it.Email.Subject})

	case key.Matches(k, m.keys.PrevPage):
		return m, emit(NavMsg{Nav: NavPrev})
	case key.Matches(k, m.keys.NextPage):
		return m, emit(NavMsg{Nav: NavNext})
	case key.Matches(k, m.keys.FirstPage):
		return m, emit(NavMsg{Nav: NavFirst})
	case key.Matches(k, m.keys.LastPage):
		return m, emit(NavMsg{Nav: NavLast})
	case key.Matches(k, m.keys.Refresh):
		return m, emit(RefreshMsg{})
	case key.Matches(k, m.keys.Sync):
		return m, emit(SyncMsg{})

	case key.Matches(k, m.keys.Up), key.Matches(k, m.keys.Down):
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the list, or a placeholder when the queue is empty.
func (m Model) View() string {
	header := m.renderHeader()
	var body string
	switch {
	case !m.queue.Loaded && m.queue.Loading:
		body = m.placeholder("Loading emails...")
	case !m.queue.Loaded:
		body = m.placeholder("Emails not loaded.\nPress r to retry.")
	case len(m.queue.Items) == 0:
		body = m.placeholder("Inbox zero.\nPress s to check for new mail.")
	default:
		body = m.list.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m Model) renderHeader() string {
	title := theme.TitleStyle.Render("Pending")
	counts := theme.DimmedStyle.Render(fmt.Sprintf(
		"%d pending · %d total", m.queue.PendingCount, m.queue.TotalCount,
	))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", counts)
}

func (m Model) renderFooter() string {
	if m.queue.TotalPages == 0 {
		return theme.DimmedStyle.Render("page 0/0")
	}
	label := theme.DimmedStyle.Render(fmt.Sprintf(
		"page %d/%d · %d per page", m.queue.Page, m.queue.TotalPages, m.queue.PageSize,
	))
	if m.queue.TotalPages > 1 && m.queue.TotalPages <= 20 {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.pager.View(), "  ", label)
	}
	return label
}

func (m Model) placeholder(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.listHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

func (m Model) listHeight() int {
	return max(m.height-2, 1)
}

// SetSize updates the inbox dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, m.listHeight())
}
