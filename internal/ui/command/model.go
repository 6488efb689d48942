package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/theme"
)

// Msg is emitted when the operator runs a command line.
type Msg struct {
	Name string
	Args []string
}

// Commands lists the palette's verbs with a short description, in the
// order they are shown.
var Commands = [][2]string{
	{"sync", "fetch new mail now"},
	{"refresh", "reload the current page"},
	{"page N", "jump to page N"},
	{"pagesize N", "show N emails per page"},
	{"categories", "manage categories"},
	{"templates", "manage templates"},
	{"settings", "run the setup wizard"},
	{"quit", "exit"},
}

// Parse splits a command line into a Msg. Blank input yields false.
func Parse(line string) (Msg, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Msg{}, false
	}
	return Msg{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// Model is the command palette.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a focused command palette.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()

	m := Model{input: ti}
	m.SetSize(width, height)
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input; enter emits a Msg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "enter" {
		parsed, ok := Parse(m.input.Value())
		m.input.Reset()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return parsed }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the input and the command list.
func (m Model) View() string {
	lines := []string{theme.TitleStyle.MarginBottom(1).Render("Command Palette"), m.input.View(), ""}
	for _, c := range Commands {
		lines = append(lines, theme.DimmedStyle.Render(c[0]+"  "+c[1]))
	}
	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 0)
}
