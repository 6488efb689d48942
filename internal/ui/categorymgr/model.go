package categorymgr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/keys"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/taxonomy"
	"github.com/nhle/reply-desk/internal/theme"
)

// CloseMsg signals the parent to close the category manager.
type CloseMsg struct{}

// Editor is the category collection the manager drives.
type Editor interface {
	List() []model.Category
	Status(id int64) (taxonomy.Marker, bool)
	Load(ctx context.Context) error
	Save(ctx context.Context, id int64, in model.CategoryInput) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name        string
	description string
	keywords    string
	priority    string
	isDefault   bool
	confirm     bool
}

type loadedMsg struct{ err error }
type savedMsg struct {
	id  int64
	err error
}
type deletedMsg struct{ err error }

// Model manages categories.
type Model struct {
	mode        mode
	editor      Editor
	keys        *keys.KeyMap
	categories  []model.Category
	selectedIdx int
	editingID   int64
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a category manager.
func New(e Editor, k *keys.KeyMap, width, height int) Model {
	return Model{
		editor: e,
		keys:   k,
		fb:     &formBindings{},
		width:  width, height: height,
	}
}

// Init loads categories.
func (m Model) Init() tea.Cmd {
	e := m.editor
	return func() tea.Msg {
		return loadedMsg{err: e.Load(context.Background())}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.sync()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Category saved"
		}
		m.sync()
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Category deleted"
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// sync pulls the editor's current list.
func (m *Model) sync() {
	m.categories = m.editor.List()
	if m.selectedIdx >= len(m.categories) {
		m.selectedIdx = max(len(m.categories)-1, 0)
	}
}

func (m Model) current() (model.Category, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.categories) {
		return model.Category{}, false
	}
	return m.categories[m.selectedIdx], true
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.categories) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.categories)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.categories) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.categories)) % len(m.categories)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = ""
		return m, m.Init()

	case msg.String() == "n":
		m.editingID = 0
		*m.fb = formBindings{priority: "0"}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "e":
		c, ok := m.current()
		if !ok {
			return m, nil
		}
		m.editingID = c.ID
		*m.fb = formBindings{
			name:        c.Name,
			description: c.Description,
			keywords:    c.KeywordsRaw,
			priority:    strconv.Itoa(c.Priority),
			isDefault:   c.IsDefault,
		}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "d":
		if _, ok := m.current(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Shipping").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Description("Helps the AI classifier").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Keywords").
				Placeholder("shipping, delivery, tracking").
				Description("Comma separated").
				Value(&m.fb.keywords),
			huh.NewInput().
				Title("Priority").
				Description("Higher is matched first").
				Value(&m.fb.priority).
				Validate(validatePriority),
			huh.NewConfirm().
				Title("Default category?").
				Value(&m.fb.isDefault),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func validatePriority(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("priority must be a number")
	}
	if n < 0 {
		return fmt.Errorf("priority must not be negative")
	}
	return nil
}

func (m Model) buildConfirmForm() *huh.Form {
	c, _ := m.current()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete category %q?", c.Name)).
				Description("Templates in this category become uncategorized.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modeList
		return m, m.save()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeList
		if c, ok := m.current(); ok && m.fb.confirm {
			return m, m.delete(c.ID)
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// input converts the form bindings into a save payload.
func (fb formBindings) input() model.CategoryInput {
	prio, _ := strconv.Atoi(strings.TrimSpace(fb.priority))
	return model.CategoryInput{
		Name:        strings.TrimSpace(fb.name),
		Description: strings.TrimSpace(fb.description),
		Keywords:    strings.TrimSpace(fb.keywords),
		IsDefault:   fb.isDefault,
		Priority:    prio,
	}
}

func (m Model) save() tea.Cmd {
	e := m.editor
	id := m.editingID
	in := m.fb.input()
	return func() tea.Msg {
		newID, err := e.Save(context.Background(), id, in)
		return savedMsg{id: newID, err: err}
	}
}

func (m Model) delete(id int64) tea.Cmd {
	e := m.editor
	return func() tea.Msg {
		return deletedMsg{err: e.Delete(context.Background(), id)}
	}
}

// View renders the category manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.MarginBottom(1).Render("Categories"))
	b.WriteString("\n\n")

	if len(m.categories) == 0 {
		b.WriteString(theme.DimmedStyle.Italic(true).Render("No categories yet. Press 'n' to create one."))
	}
	for i, c := range m.categories {
		label := fmt.Sprintf("%-24s p%-3d %s", c.Name, c.Priority, theme.DimmedStyle.Render(strings.Join(c.Keywords(), ", ")))
		if c.IsDefault {
			label += lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(" (default)")
		}
		if mk, ok := m.editor.Status(c.ID); ok {
			label += theme.OperationStyle("").Render(" [" + string(mk.Action) + "...]")
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}
	if _, ok := m.editor.Status(0); ok {
		b.WriteString(theme.DimmedStyle.Render("  creating..."))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render("n new | e edit | d delete | r reload | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
