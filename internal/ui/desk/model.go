package desk

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/keys"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/theme"
	"github.com/nhle/reply-desk/internal/timefmt"
	"github.com/nhle/reply-desk/internal/workspace"
)

// Action names a workflow step requested from the desk.
type Action string

const (
	ActionAnalyze    Action = "analyze"
	ActionForceAI    Action = "force_ai"
	ActionRegenerate Action = "regenerate"
	ActionVariables  Action = "variables"
	ActionForward    Action = "forward"
	ActionReverse    Action = "reverse"
	ActionSend       Action = "send"
	ActionNext       Action = "next"
)

// ActionMsg asks the app to run a workflow step.
type ActionMsg struct {
	Action Action
}

// EditReplyMsg carries the edited reply text.
type EditReplyMsg struct {
	Text string
}

// EditPreviewMsg carries the edited translation preview.
type EditPreviewMsg struct {
	Text string
}

// ApplyTemplateMsg asks for a template to replace the reply.
type ApplyTemplateMsg struct {
	ID int64
}

type mode int

const (
	modeView mode = iota
	modeEditReply
	modeEditPreview
	modePickTemplate
)

// Model is the detail pane for the selected email.
type Model struct {
	keys     *keys.KeyMap
	snap     workspace.Snapshot
	mode     mode
	viewport viewport.Model
	editor   textarea.Model
	picker   *huh.Form
	choice   *int64
	spinner  spinner.Model
	now      time.Time
	width    int
	height   int
}

// New creates an empty desk.
func New(k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorMagenta)

	m := Model{
		keys:     k,
		viewport: viewport.New(width, height),
		editor:   ta,
		choice:   new(int64),
		spinner:  sp,
	}
	m.SetSize(width, height)
	return m
}

// Init starts the busy spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Editing reports whether the desk is capturing raw keystrokes.
func (m Model) Editing() bool {
	return m.mode != modeView
}

// SetSnapshot re-renders from a workspace snapshot. While editing, the
// text being typed is left alone.
func (m *Model) SetSnapshot(s workspace.Snapshot) {
	prevID := selectedID(m.snap)
	m.snap = s
	if selectedID(s) != prevID && m.mode != modeView {
		m.mode = modeView
		m.editor.Blur()
	}
	m.refreshContent(selectedID(s) != prevID)
}

// SetNow sets the reference time for relative timestamps.
func (m *Model) SetNow(now time.Time) {
	m.now = now
	m.refreshContent(false)
}

func selectedID(s workspace.Snapshot) int64 {
	if s.Selected == nil {
		return 0
	}
	return s.Selected.ID
}

func (m *Model) refreshContent(top bool) {
	m.viewport.SetContent(m.renderContent())
	if top {
		m.viewport.GotoTop()
	}
}

// Update handles desk keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.refreshContent(false)
		}
		return m, cmd
	case tea.KeyMsg:
		switch m.mode {
		case modeEditReply, modeEditPreview:
			return m.updateEditor(msg)
		case modePickTemplate:
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	if m.mode == modePickTemplate {
		return m.updatePicker(msg)
	}
	if m.Editing() {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.snap.Selected == nil {
		return m, nil
	}

	actions := []struct {
		binding key.Binding
		action  Action
	}{
		{m.keys.Analyze, ActionAnalyze},
		{m.keys.ForceAI, ActionForceAI},
		{m.keys.Regenerate, ActionRegenerate},
		{m.keys.Variables, ActionVariables},
		{m.keys.Forward, ActionForward},
		{m.keys.Reverse, ActionReverse},
		{m.keys.Send, ActionSend},
		{m.keys.Next, ActionNext},
	}
	for _, a := range actions {
		if key.Matches(msg, a.binding) {
			action := a.action
			return m, func() tea.Msg { return ActionMsg{Action: action} }
		}
	}

	switch {
	case key.Matches(msg, m.keys.EditReply):
		return m.startEdit(modeEditReply, m.snap.Reply)
	case key.Matches(msg, m.keys.EditPreview):
		return m.startEdit(modeEditPreview, m.snap.Preview)
	case key.Matches(msg, m.keys.Template):
		return m.openPicker()
	}

	switch msg.String() {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d", "home", "end":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) startEdit(md mode, text string) (Model, tea.Cmd) {
	m.mode = md
	m.editor.SetValue(text)
	m.editor.CursorEnd()
	return m, m.editor.Focus()
}

// updateEditor commits on esc.
func (m Model) updateEditor(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		text := m.editor.Value()
		md := m.mode
		m.mode = modeView
		m.editor.Blur()
		if md == modeEditPreview {
			return m, func() tea.Msg { return EditPreviewMsg{Text: text} }
		}
		return m, func() tea.Msg { return EditReplyMsg{Text: text} }
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) openPicker() (Model, tea.Cmd) {
	tpls := m.snap.ApplicableTemplates
	if len(tpls) == 0 {
		return m, nil
	}
	opts := make([]huh.Option[int64], 0, len(tpls))
	for _, t := range tpls {
		opts = append(opts, huh.NewOption(t.Name, t.ID))
	}
	*m.choice = tpls[0].ID
	if m.snap.SelectedTemplateID != nil {
		*m.choice = *m.snap.SelectedTemplateID
	}
	m.picker = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Apply template").
				Description("Replaces the current reply").
				Options(opts...).
				Value(m.choice),
		),
	).WithWidth(max(m.width-4, 20)).WithShowHelp(false)
	m.mode = modePickTemplate
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.Msg) (Model, tea.Cmd) {
	if m.picker == nil {
		m.mode = modeView
		return m, nil
	}
	mdl, cmd := m.picker.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.picker = f
	}
	switch m.picker.State {
	case huh.StateCompleted:
		id := *m.choice
		m.mode = modeView
		m.picker = nil
		return m, func() tea.Msg { return ApplyTemplateMsg{ID: id} }
	case huh.StateAborted:
		m.mode = modeView
		m.picker = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) busy() bool {
	s := m.snap
	return s.SelectedBusy() || s.Regenerating || s.TranslatingForward || s.TranslatingReverse
}

// View renders the desk.
func (m Model) View() string {
	if m.snap.Selected == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No email selected")
	}

	switch m.mode {
	case modeEditReply, modeEditPreview:
		title := "Editing reply"
		if m.mode == modeEditPreview {
			title = "Editing translation"
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			theme.TitleStyle.Render(title),
			theme.HelpStyle.Render("esc to save"),
			m.editor.View(),
		)
	case modePickTemplate:
		return lipgloss.NewStyle().Padding(1, 1).Render(m.picker.View())
	}
	return m.viewport.View()
}

func (m Model) renderContent() string {
	s := m.snap
	if s.Selected == nil {
		return ""
	}
	e := s.Selected
	now := m.now
	if now.IsZero() {
		now = time.Now()
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-2, 80), 1)))

	subject := e.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "(no subject)"
	}
	lines := []string{
		theme.TitleStyle.Render(subject),
		field("From", e.Sender),
		field("Received", fmt.Sprintf("%s (%s)", timefmt.Full(e.ReceivedAt()), timefmt.Relative(e.ReceivedAt(), now))),
		field("Category", s.ActiveCategoryName),
		field("Status", m.statusLine()),
	}
	if e.Language != "" {
		lines = append(lines, field("Language", e.Language))
	}
	lines = append(lines, m.analysisLines()...)

	body := e.BodyText
	if strings.TrimSpace(body) == "" {
		body = theme.DimmedStyle.Italic(true).Render("No text body")
	}
	lines = append(lines, "", sep, "", wrap(body, m.width-2))
	if e.Translation != nil && *e.Translation != "" {
		lines = append(lines, "", theme.DimmedStyle.Render("Translation:"), wrap(*e.Translation, m.width-2))
	}

	lines = append(lines, "", sep, "", theme.TitleStyle.Render("Reply"))
	reply := s.Reply
	if reply == "" {
		reply = theme.DimmedStyle.Italic(true).Render("Empty. Press a to analyze, p for a template or e to write.")
	}
	lines = append(lines, wrap(reply, m.width-2))
	if len(s.Placeholders) > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ColorOrange).Render(
			"Unfilled: {"+strings.Join(s.Placeholders, "}, {")+"}",
		))
	}

	lines = append(lines, "", theme.TitleStyle.Render("Translation preview"))
	preview := s.Preview
	if preview == "" {
		preview = theme.DimmedStyle.Italic(true).Render("None. Press t to translate the reply.")
	}
	lines = append(lines, wrap(preview, m.width-2))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) statusLine() string {
	s := m.snap
	parts := []string{s.Phase.String()}
	if op, ok := s.OperationFor(s.Selected.ID); ok {
		parts = append(parts, theme.OperationStyle(string(op)).Render(m.spinner.View()+" "+string(op)))
	}
	if s.Regenerating {
		parts = append(parts, m.spinner.View()+" generating")
	}
	if s.TranslatingForward || s.TranslatingReverse {
		parts = append(parts, m.spinner.View()+" translating")
	}
	return strings.Join(parts, "  ")
}

func (m Model) analysisLines() []string {
	a := m.snap.Analysis
	if a == nil {
		return nil
	}
	lines := []string{
		field("Confidence", theme.ConfidenceStyle(a.Confidence).Render(fmt.Sprintf("%.0f%%", a.Confidence*100))+
			theme.MethodStyle(string(a.Method)).Render(string(a.Method))),
	}
	if a.Reason != "" {
		lines = append(lines, field("Reason", a.Reason))
	}
	if id := m.snap.SelectedTemplateID; id != nil {
		lines = append(lines, field("Template", templateName(m.snap.Templates, *id)))
	}
	if a.ReplySource != "" {
		lines = append(lines, field("Reply from", string(a.ReplySource)))
	}
	return lines
}

func templateName(list []model.Template, id int64) string {
	if t, ok := model.FindTemplate(list, id); ok {
		return t.Name
	}
	return fmt.Sprintf("#%d", id)
}

func field(label, value string) string {
	return theme.LabelStyle.Render(label) + " " + value
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// SetSize updates the desk dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.editor.SetWidth(max(width-2, 10))
	m.editor.SetHeight(max(height-3, 3))
	m.refreshContent(false)
}
