package templatemgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/reply-desk/internal/keys"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/subst"
	"github.com/nhle/reply-desk/internal/taxonomy"
	"github.com/nhle/reply-desk/internal/theme"
)

// CloseMsg signals the parent to close the template manager.
type CloseMsg struct{}

// Editor is the template collection the manager drives.
type Editor interface {
	List() []model.Template
	Status(id int64) (taxonomy.Marker, bool)
	Load(ctx context.Context) error
	Save(ctx context.Context, id int64, in model.TemplateInput) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name       string
	categoryID int64
	content    string
	variables  string
	confirm    bool
}

func (fb formBindings) input() model.TemplateInput {
	in := model.TemplateInput{
		Name:      strings.TrimSpace(fb.name),
		Content:   fb.content,
		Variables: strings.TrimSpace(fb.variables),
	}
	if fb.categoryID != 0 {
		id := fb.categoryID
		in.CategoryID = &id
	}
	return in
}

type loadedMsg struct{ err error }
type savedMsg struct{ err error }
type deletedMsg struct{ err error }

// Model manages reply templates.
type Model struct {
	mode        mode
	editor      Editor
	keys        *keys.KeyMap
	templates   []model.Template
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

// New creates a template manager.
func New(e Editor, k *keys.KeyMap, width, height int) Model {
	return Model{
		editor: e,
		keys:   k,
		fb:     &formBindings{},
		width:  width, height: height,
	}
}

// SetCategories supplies the categories offered in the form.
func (m *Model) SetCategories(list []model.Category) {
	m.categories = list
}

// Init loads templates.
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
		m.report(msg.err, "")
		return m, nil
	case savedMsg:
		m.report(msg.err, "Template saved")
		return m, nil
	case deletedMsg:
		m.report(msg.err, "Template deleted")
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

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
	} else if ok != "" {
		m.statusMsg = ok
	}
	m.templates = m.editor.List()
	if m.selectedIdx >= len(m.templates) {
		m.selectedIdx = max(len(m.templates)-1, 0)
	}
}

func (m Model) current() (model.Template, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.templates) {
		return model.Template{}, false
	}
	return m.templates[m.selectedIdx], true
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.templates) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.templates)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.templates) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.templates)) % len(m.templates)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = ""
		return m, m.Init()

	case msg.String() == "n":
		m.editingID = 0
		*m.fb = formBindings{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "e":
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.editingID = t.ID
		*m.fb = formBindings{name: t.Name, content: t.Content, variables: t.VariablesRaw}
		if t.CategoryID != nil {
			m.fb.categoryID = *t.CategoryID
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

func (m Model) categoryOptions() []huh.Option[int64] {
	opts := []huh.Option[int64]{huh.NewOption("Uncategorized", int64(0))}
	for _, c := range m.categories {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	return opts
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Shipping delay").
				Value(&m.fb.name).
				Validate(required("name")),
			huh.NewSelect[int64]().
				Title("Category").
				Options(m.categoryOptions()...).
				Value(&m.fb.categoryID),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Content").
				Description("Use {name} placeholders for variables").
				Lines(8).
				Value(&m.fb.content).
				Validate(required("content")),
			huh.NewInput().
				Title("Variables").
				Description("Comma separated; leave blank to use the placeholders in the content").
				Value(&m.fb.variables),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (m Model) buildConfirmForm() *huh.Form {
	t, _ := m.current()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete template %q?", t.Name)).
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
		if t, ok := m.current(); ok && m.fb.confirm {
			return m, m.delete(t.ID)
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) save() tea.Cmd {
	e := m.editor
	id := m.editingID
	in := m.fb.input()
	return func() tea.Msg {
		_, err := e.Save(context.Background(), id, in)
		return savedMsg{err: err}
	}
}

func (m Model) delete(id int64) tea.Cmd {
	e := m.editor
	return func() tea.Msg {
		return deletedMsg{err: e.Delete(context.Background(), id)}
	}
}

// View renders the template manager.
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

func (m Model) categoryName(id *int64) string {
	if id == nil {
		return "Uncategorized"
	}
	if c, ok := model.FindCategory(m.categories, *id); ok {
		return c.Name
	}
	return fmt.Sprintf("#%d", *id)
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.MarginBottom(1).Render("Templates"))
	b.WriteString("\n\n")

	if len(m.templates) == 0 {
		b.WriteString(theme.DimmedStyle.Italic(true).Render("No templates yet. Press 'n' to create one."))
	}
	for i, t := range m.templates {
		label := fmt.Sprintf("%-28s %s", t.Name,
			lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render(m.categoryName(t.CategoryID)))
		if mk, ok := m.editor.Status(t.ID); ok {
			label += theme.DimmedStyle.Render(" [" + string(mk.Action) + "...]")
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if t, ok := m.current(); ok {
		b.WriteString("\n")
		b.WriteString(theme.PanelStyle.Width(min(max(m.width-8, 20), 100)).Render(t.Content))
		if vars := subst.Placeholders(t.Content); len(vars) > 0 {
			b.WriteString("\n")
			b.WriteString(theme.DimmedStyle.Render("placeholders: " + strings.Join(vars, ", ")))
		}
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
	return max(m.height-4, 12)
}
