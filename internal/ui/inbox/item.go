package inbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/theme"
	"github.com/nhle/reply-desk/internal/timefmt"
	"github.com/nhle/reply-desk/internal/tracker"
)

// EmailItem wraps a model.Email for bubbles/list.
type EmailItem struct {
	Email model.Email
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string { return i.Email.Subject }

// Title returns the email subject.
func (i EmailItem) Title() string { return i.Email.Subject }

// Description returns the sender.
func (i EmailItem) Description() string { return i.Email.SenderName() }

// rowContext is shared by reference between the Model and its delegate
// so snapshot updates reach rendering without rebuilding the list.
type rowContext struct {
	ops        map[int64]tracker.Kind
	categories map[int64]string
	selectedID int64
	now        time.Time
}

// Delegate renders one email per line.
type Delegate struct {
	ctx *rowContext
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update is a no-op.
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a row: selection mark, operation badge, sender, subject,
// category and received time.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(EmailItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderRow(it.Email, index == m.Index(), m.Width()))
}

func (d Delegate) renderRow(e model.Email, cursor bool, width int) string {
	mark := " "
	if d.ctx != nil && e.ID == d.ctx.selectedID {
		mark = "▸"
	}

	badge := ""
	if d.ctx != nil {
		if op, ok := d.ctx.ops[e.ID]; ok {
			badge = theme.OperationStyle(string(op)).Render(opLabel(op)) + " "
		}
	}

	sender := truncate(e.SenderName(), 20)
	subject := e.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "(no subject)"
	}

	var extras []string
	if name := d.categoryName(e); name != "" {
		extras = append(extras, lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render(name))
	}
	now := time.Now()
	if d.ctx != nil && !d.ctx.now.IsZero() {
		now = d.ctx.now
	}
	extras = append(extras, theme.DimmedStyle.Render(timefmt.Relative(e.ReceivedAt(), now)))
	tail := strings.Join(extras, " ")

	head := fmt.Sprintf("%s %s%s  %s", mark, badge, lipgloss.NewStyle().Bold(true).Render(sender), subject)
	if width > 0 {
		room := width - lipgloss.Width(tail) - 4
		head = truncate(head, max(room, 10))
	}
	line := head + "  " + tail

	if cursor {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (d Delegate) categoryName(e model.Email) string {
	if d.ctx == nil || e.CategoryID == nil {
		return ""
	}
	return d.ctx.categories[*e.CategoryID]
}

func opLabel(k tracker.Kind) string {
	switch k {
	case tracker.Analyzing:
		return "[analyzing]"
	case tracker.Sending:
		return "[sending]"
	case tracker.Deleting:
		return "[deleting]"
	default:
		return "[" + string(k) + "]"
	}
}

// truncate shortens s to n display cells, marking the cut with "…".
func truncate(s string, n int) string {
	if n <= 0 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
