package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/theme"
)

// Layout holds the terminal dimensions and the fixed bar heights.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with one-line header and status bar.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight is the height between the header and the status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// SplitWidth divides the content width into a list column and a detail
// column.
func (l Layout) SplitWidth() (list, detail int) {
	list = l.Width * 2 / 5
	if list < 30 {
		list = min(30, l.Width)
	}
	return list, max(l.Width-list, 0)
}

// RenderHeader renders the title bar with a right-aligned status.
func (l Layout) RenderHeader(title, status string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(status)
	return joinBar(theme.HeaderStyle, l.Width, left, right)
}

// RenderStatusBar renders the bottom bar with the notice on the left
// and key hints on the right.
func (l Layout) RenderStatusBar(notice, hints string) string {
	left := theme.StatusBarStyle.Render(notice)
	right := theme.StatusBarStyle.Render(hints)
	return joinBar(theme.StatusBarStyle, l.Width, left, right)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func joinBar(style lipgloss.Style, width int, left, right string) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
