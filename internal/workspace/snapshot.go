package workspace

import (
	"maps"

	"github.com/nhle/reply-desk/internal/editor"
	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/queue"
	"github.com/nhle/reply-desk/internal/subst"
	"github.com/nhle/reply-desk/internal/tracker"
)

// UncategorizedLabel is shown when no category applies.
const UncategorizedLabel = "Uncategorized"

// Snapshot is a deep copy of the workspace state. Mutating it has no
// effect on the controller.
type Snapshot struct {
	Phase    Phase
	Selected *model.Email
	Analysis *model.AnalysisResult

	Reply   string
	Preview string

	// SelectedTemplateID is the template last applied or matched.
	SelectedTemplateID *int64

	// ActiveCategoryName is the analysis' category, else the stored one,
	// else UncategorizedLabel.
	ActiveCategoryName string

	// ApplicableTemplates is every template when no category has been
	// suggested, otherwise those of the suggested category.
	ApplicableTemplates []model.Template

	// Placeholders lists {name} markers still present in the reply.
	Placeholders []string

	Categories []model.Category
	Templates  []model.Template
	Queue      queue.State

	// Operations maps email ids to their in-flight operation.
	Operations map[int64]tracker.Kind

	Regenerating       bool
	Syncing            bool
	Bootstrapping      bool
	TranslatingForward bool
	TranslatingReverse bool

	// Settings is nil until settings are loaded.
	Settings   *model.SettingsBundle
	NeedsSetup bool

	SentToday int
	Notice    Notice
}

// OperationFor returns the in-flight operation on id, if any.
func (s Snapshot) OperationFor(id int64) (tracker.Kind, bool) {
	k, ok := s.Operations[id]
	return k, ok
}

// SelectedBusy reports whether the selected email has an operation in
// flight.
func (s Snapshot) SelectedBusy() bool {
	if s.Selected == nil {
		return false
	}
	_, ok := s.Operations[s.Selected.ID]
	return ok
}

// Snapshot returns a copy of the current state with derived fields
// computed.
func (c *Controller) Snapshot() Snapshot {
	q := c.queue.State()
	ops := c.tracker.Snapshot()
	fwd := c.coord.Busy(editor.Forward)
	rev := c.coord.Busy(editor.Reverse)

	c.mu.Lock()
	defer c.mu.Unlock()

	buf := c.buf.State()
	s := Snapshot{
		Phase:              c.phase,
		Reply:              buf.Reply,
		Preview:            buf.Preview,
		SelectedTemplateID: copyID(c.selectedTemplate),
		Placeholders:       subst.Placeholders(buf.Reply),
		Categories:         append([]model.Category(nil), c.categories...),
		Templates:          copyTemplates(c.templates),
		Queue:              q,
		Operations:         ops,
		Regenerating:       c.regenerating,
		Syncing:            c.syncing,
		Bootstrapping:      c.bootstrapping,
		TranslatingForward: fwd,
		TranslatingReverse: rev,
		SentToday:          c.sentToday,
		Notice:             c.notice,
	}
	if c.selected != nil {
		e := copyEmail(*c.selected)
		s.Selected = &e
	}
	if c.analysis != nil {
		a := copyAnalysis(*c.analysis)
		s.Analysis = &a
	}
	if c.settings != nil {
		b := copySettings(*c.settings)
		s.Settings = &b
		s.NeedsSetup = b.NeedsSetup()
	}
	s.ActiveCategoryName = c.activeCategoryNameLocked()
	s.ApplicableTemplates = c.applicableTemplatesLocked()
	return s
}

func (c *Controller) activeCategoryNameLocked() string {
	if c.analysis != nil && c.analysis.Category != nil {
		if cat, ok := model.FindCategory(c.categories, c.analysis.Category.ID); ok {
			return cat.Name
		}
		if c.analysis.Category.Name != "" {
			return c.analysis.Category.Name
		}
	}
	if c.selected != nil && c.selected.CategoryID != nil {
		if cat, ok := model.FindCategory(c.categories, *c.selected.CategoryID); ok {
			return cat.Name
		}
	}
	return UncategorizedLabel
}

func (c *Controller) applicableTemplatesLocked() []model.Template {
	id, ok := c.analysis.CategoryID()
	if !ok {
		return copyTemplates(c.templates)
	}
	var out []model.Template
	for _, t := range c.templates {
		if t.InCategory(id) {
			out = append(out, copyTemplate(t))
		}
	}
	return out
}

func copyID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyEmail(e model.Email) model.Email {
	e.Translation = copyString(e.Translation)
	e.CategoryID = copyID(e.CategoryID)
	e.Confidence = copyFloat(e.Confidence)
	e.AIReply = copyString(e.AIReply)
	e.FinalReply = copyString(e.FinalReply)
	return e
}

func copyTemplate(t model.Template) model.Template {
	t.CategoryID = copyID(t.CategoryID)
	return t
}

func copyTemplates(list []model.Template) []model.Template {
	if list == nil {
		return nil
	}
	out := make([]model.Template, len(list))
	for i, t := range list {
		out[i] = copyTemplate(t)
	}
	return out
}

func copyAnalysis(a model.AnalysisResult) model.AnalysisResult {
	if a.Category != nil {
		cat := *a.Category
		a.Category = &cat
	}
	a.MatchedTemplateID = copyID(a.MatchedTemplateID)
	a.ExtractedVariables = maps.Clone(a.ExtractedVariables)
	a.Templates = copyTemplates(a.Templates)
	return a
}

func copySettings(b model.SettingsBundle) model.SettingsBundle {
	if b.Account != nil {
		acct := *b.Account
		b.Account = &acct
	}
	return b
}
