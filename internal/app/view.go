package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	appsync "github.com/nhle/reply-desk/internal/sync"
	"github.com/nhle/reply-desk/internal/theme"
	"github.com/nhle/reply-desk/internal/timefmt"
	"github.com/nhle/reply-desk/internal/ui/command"
)

// View renders the current screen inside the header and status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewHelp:
		content = m.help.View()
	case ViewCommand:
		content = m.renderCommand()
	case ViewCategories:
		content = m.categories.View()
	case ViewTemplates:
		content = m.templates.View()
	case ViewSetup:
		content = m.setup.View()
	default:
		content = m.renderMain()
	}

	header := m.layout.RenderHeader("Reply Desk", m.headerStatus())
	status := m.layout.RenderStatusBar(m.statusText(), m.help.ShortView())
	return m.layout.RenderWithFrame(header, content, status)
}

func (m Model) renderMain() string {
	listW, deskW := m.layout.SplitWidth()
	h := m.layout.ContentHeight()

	listStyle, deskStyle := theme.FocusedPanelStyle, theme.PanelStyle
	if m.desk.Editing() {
		listStyle, deskStyle = theme.PanelStyle, theme.FocusedPanelStyle
	}
	left := listStyle.Width(max(listW-2, 0)).Height(max(h-2, 0)).Render(m.inbox.View())
	right := deskStyle.Width(max(deskW-2, 0)).Height(max(h-2, 0)).Render(m.desk.View())
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	if m.confirm != nil {
		box := theme.FocusedPanelStyle.Render(m.confirm.View())
		return lipgloss.Place(m.layout.Width, h, lipgloss.Center, lipgloss.Center, box)
	}
	return main
}

func (m Model) renderCommand() string {
	var b strings.Builder
	b.WriteString(m.command.View())
	b.WriteString("\n\n")
	for _, c := range command.Commands {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", c[0], theme.DimmedStyle.Render(c[1])))
	}
	return b.String()
}

// headerStatus summarizes the day's progress and auto-sync.
func (m Model) headerStatus() string {
	parts := []string{fmt.Sprintf("sent today %d", m.snap.SentToday)}
	if m.snap.Queue.Total > 0 {
		parts = append(parts, humanize.Comma(int64(m.snap.Queue.Total))+" emails")
	}
	switch {
	case m.snap.Syncing:
		parts = append(parts, "syncing...")
	case m.deps.Poller != nil:
		parts = append(parts, pollerStatus(m.deps.Poller.Status(), m.now))
	}
	return strings.Join(parts, " · ")
}

func pollerStatus(st appsync.Status, now time.Time) string {
	if st.Interval == 0 {
		return "auto-sync off"
	}
	s := "auto-sync " + st.Interval.String()
	switch {
	case st.State == appsync.Failed:
		s += " (failed)"
	case !st.LastSync.IsZero():
		s += ", last " + timefmt.Relative(st.LastSync, now)
	}
	return s
}

// statusText prefers the workspace notice over the local flash.
func (m Model) statusText() string {
	if n := m.snap.Notice; n.Text != "" {
		return theme.NoticeStyle(n.Level.String()).Render(n.Text)
	}
	if m.flash != "" {
		return theme.NoticeStyle("info").Render(m.flash)
	}
	return ""
}
