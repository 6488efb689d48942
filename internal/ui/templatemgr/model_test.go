package templatemgr

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/reply-desk/internal/keys"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/taxonomy"
)

type fakeEditor struct {
	list  []model.Template
	saved map[int64]model.TemplateInput
	busy  map[int64]taxonomy.Marker
}

func (f *fakeEditor) List() []model.Template { return f.list }

func (f *fakeEditor) Status(id int64) (taxonomy.Marker, bool) {
	mk, ok := f.busy[id]
	return mk, ok
}

func (f *fakeEditor) Load(context.Context) error { return nil }

func (f *fakeEditor) Delete(context.Context, int64) error { return nil }

func (f *fakeEditor) Save(_ context.Context, id int64, in model.TemplateInput) (int64, error) {
	if f.saved == nil {
		f.saved = map[int64]model.TemplateInput{}
	}
	f.saved[id] = in
	return id, nil
}

func ptr(v int64) *int64 { return &v }

func loaded(f *fakeEditor) Model {
	m := New(f, keys.DefaultKeyMap(), 100, 40)
	m.SetCategories([]model.Category{{ID: 2, Name: "Refund"}})
	m, _ = m.Update(m.Init()())
	return m
}

func TestListShowsCategoryAndPlaceholders(t *testing.T) {
	f := &fakeEditor{list: []model.Template{
		{ID: 1, Name: "Refund ack", CategoryID: ptr(2), Content: "Hi {name}, order {order_id} refunded."},
		{ID: 3, Name: "Generic", Content: "Thanks!"},
	}}
	m := loaded(f)
	view := m.View()
	assert.Contains(t, view, "Refund ack")
	assert.Contains(t, view, "Refund")
	assert.Contains(t, view, "Uncategorized")
	assert.Contains(t, view, "placeholders: name, order_id")
}

func TestBusyMarkerShown(t *testing.T) {
	f := &fakeEditor{
		list: []model.Template{{ID: 1, Name: "A", Content: "x"}},
		busy: map[int64]taxonomy.Marker{1: {Action: taxonomy.ActionDelete, TargetID: 1}},
	}
	assert.Contains(t, loaded(f).View(), "[delete...]")
}

func TestEditPrefills(t *testing.T) {
	f := &fakeEditor{list: []model.Template{{ID: 1, Name: "A", CategoryID: ptr(2), Content: "x", VariablesRaw: "name"}}}
	m := loaded(f)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, int64(2), m.fb.categoryID)
	assert.Equal(t, "name", m.fb.variables)
}

func TestInputMapsUncategorized(t *testing.T) {
	in := formBindings{name: " A ", content: "c"}.input()
	assert.Nil(t, in.CategoryID)
	assert.Equal(t, "A", in.Name)

	in = formBindings{name: "A", content: "c", categoryID: 2}.input()
	require.NotNil(t, in.CategoryID)
	assert.Equal(t, int64(2), *in.CategoryID)
}

func TestSave(t *testing.T) {
	f := &fakeEditor{}
	m := loaded(f)
	m.editingID = 7
	*m.fb = formBindings{name: "N", content: "Body"}
	m, _ = m.Update(m.save()())
	assert.Equal(t, "N", f.saved[7].Name)
	assert.Contains(t, m.View(), "Template saved")
}

func TestRequired(t *testing.T) {
	assert.Error(t, required("name")("  "))
	assert.NoError(t, required("name")("x"))
}
