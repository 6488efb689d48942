package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/reply-desk/internal/model"
)

// CategoryBackend is the category half of the backend API.
type CategoryBackend interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in model.CategoryInput) (int64, error)
	UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) error
	DeleteCategory(ctx context.Context, id int64) error
}

// Categories edits the category collection.
type Categories struct {
	backend  CategoryBackend
	onChange func([]model.Category)
	logger   *zap.Logger
	ops      markers

	mu   sync.Mutex
	list []model.Category
}

// NewCategories returns an editor. onChange receives every reloaded list.
func NewCategories(backend CategoryBackend, onChange func([]model.Category), logger *zap.Logger) *Categories {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Categories{backend: backend, onChange: onChange, logger: logger.Named("categories")}
}

// List returns the last loaded categories.
func (c *Categories) List() []model.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Category(nil), c.list...)
}

// InFlight returns the operations currently running.
func (c *Categories) InFlight() []Marker { return c.ops.list() }

// Status returns the operation on id, if any.
func (c *Categories) Status(id int64) (Marker, bool) { return c.ops.status(id) }

// Load fetches the list and pushes it.
func (c *Categories) Load(ctx context.Context) error {
	list, err := c.backend.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	c.mu.Lock()
	c.list = append([]model.Category(nil), list...)
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(list)
	}
	return nil
}

// ValidateCategory checks a category before it is saved.
func ValidateCategory(in model.CategoryInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("category name is required: %w", ErrInvalid)
	}
	if in.Priority < 0 {
		return fmt.Errorf("priority must not be negative: %w", ErrInvalid)
	}
	return nil
}

// Save creates a category when id is 0, otherwise updates it, then
// reloads. It returns the record's id.
func (c *Categories) Save(ctx context.Context, id int64, in model.CategoryInput) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := ValidateCategory(in); err != nil {
		return 0, err
	}
	done, err := c.ops.begin(ActionSave, id)
	if err != nil {
		return 0, err
	}
	defer done()

	if id == 0 {
		id, err = c.backend.CreateCategory(ctx, in)
	} else {
		err = c.backend.UpdateCategory(ctx, id, in)
	}
	if err != nil {
		return 0, err
	}
	c.logger.Info("category saved", zap.Int64("category_id", id), zap.String("name", in.Name))
	return id, c.Load(ctx)
}

// Delete removes a category, then reloads.
func (c *Categories) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return fmt.Errorf("category id is required: %w", ErrInvalid)
	}
	done, err := c.ops.begin(ActionDelete, id)
	if err != nil {
		return err
	}
	defer done()

	if err := c.backend.DeleteCategory(ctx, id); err != nil {
		return err
	}
	c.logger.Info("category deleted", zap.Int64("category_id", id))
	return c.Load(ctx)
}
