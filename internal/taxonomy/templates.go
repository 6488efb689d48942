package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/subst"
)

// TemplateBackend is the template half of the backend API.
type TemplateBackend interface {
	ListTemplates(ctx context.Context) ([]model.Template, error)
	CreateTemplate(ctx context.Context, in model.TemplateInput) (int64, error)
	UpdateTemplate(ctx context.Context, id int64, in model.TemplateInput) error
	DeleteTemplate(ctx context.Context, id int64) error
}

// Templates edits the template collection.
type Templates struct {
	backend  TemplateBackend
	onChange func([]model.Template)
	logger   *zap.Logger
	ops      markers

	mu   sync.Mutex
	list []model.Template
}

// NewTemplates returns an editor. onChange receives every reloaded list.
func NewTemplates(backend TemplateBackend, onChange func([]model.Template), logger *zap.Logger) *Templates {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Templates{backend: backend, onChange: onChange, logger: logger.Named("templates")}
}

// List returns the last loaded templates.
func (t *Templates) List() []model.Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Template(nil), t.list...)
}

// InFlight returns the operations currently running.
func (t *Templates) InFlight() []Marker { return t.ops.list() }

// Status returns the operation on id, if any.
func (t *Templates) Status(id int64) (Marker, bool) { return t.ops.status(id) }

// Load fetches the list and pushes it.
func (t *Templates) Load(ctx context.Context) error {
	list, err := t.backend.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	t.mu.Lock()
	t.list = append([]model.Template(nil), list...)
	t.mu.Unlock()
	if t.onChange != nil {
		t.onChange(list)
	}
	return nil
}

// ValidateTemplate checks a template before it is saved.
func ValidateTemplate(in model.TemplateInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("template name is required: %w", ErrInvalid)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("template content is required: %w", ErrInvalid)
	}
	return nil
}

// DeclaredVariables fills an empty variable list from the placeholders
// used in content.
func DeclaredVariables(in model.TemplateInput) model.TemplateInput {
	if strings.TrimSpace(in.Variables) == "" {
		in.Variables = strings.Join(subst.Placeholders(in.Content), ",")
	}
	return in
}

// Save creates a template when id is 0, otherwise updates it, then
// reloads. It returns the record's id.
func (t *Templates) Save(ctx context.Context, id int64, in model.TemplateInput) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := ValidateTemplate(in); err != nil {
		return 0, err
	}
	in = DeclaredVariables(in)

	done, err := t.ops.begin(ActionSave, id)
	if err != nil {
		return 0, err
	}
	defer done()

	if id == 0 {
		id, err = t.backend.CreateTemplate(ctx, in)
	} else {
		err = t.backend.UpdateTemplate(ctx, id, in)
	}
	if err != nil {
		return 0, err
	}
	t.logger.Info("template saved", zap.Int64("template_id", id), zap.String("name", in.Name))
	return id, t.Load(ctx)
}

// Delete removes a template, then reloads.
func (t *Templates) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return fmt.Errorf("template id is required: %w", ErrInvalid)
	}
	done, err := t.ops.begin(ActionDelete, id)
	if err != nil {
		return err
	}
	defer done()

	if err := t.backend.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	t.logger.Info("template deleted", zap.Int64("template_id", id))
	return t.Load(ctx)
}
