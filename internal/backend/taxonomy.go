package backend

import (
	"context"
	"fmt"

	"github.com/nhle/reply-desk/internal/model"
)

type createdID struct {
	ID int64 `json:"id"`
}

// ListCategories returns all categories, highest priority first.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.get(ctx, "/categories", &out); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return out, nil
}

// CreateCategory creates a category and returns its id.
func (c *Client) CreateCategory(ctx context.Context, in model.CategoryInput) (int64, error) {
	var out createdID
	if err := c.post(ctx, "/categories", in, &out); err != nil {
		return 0, fmt.Errorf("creating category %q: %w", in.Name, err)
	}
	return out.ID, nil
}

// UpdateCategory replaces the category's editable fields.
func (c *Client) UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) error {
	if err := c.put(ctx, fmt.Sprintf("/categories/%d", id), in, nil); err != nil {
		return fmt.Errorf("updating category %d: %w", id, err)
	}
	return nil
}

// DeleteCategory removes the category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/categories/%d", id)); err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	return nil
}

// ListTemplates returns all reply templates.
func (c *Client) ListTemplates(ctx context.Context) ([]model.Template, error) {
	var out []model.Template
	if err := c.get(ctx, "/templates", &out); err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return out, nil
}

// CreateTemplate creates a template and returns its id.
func (c *Client) CreateTemplate(ctx context.Context, in model.TemplateInput) (int64, error) {
	var out createdID
	if err := c.post(ctx, "/templates", in, &out); err != nil {
		return 0, fmt.Errorf("creating template %q: %w", in.Name, err)
	}
	return out.ID, nil
}

// UpdateTemplate replaces the template's editable fields.
func (c *Client) UpdateTemplate(ctx context.Context, id int64, in model.TemplateInput) error {
	if err := c.put(ctx, fmt.Sprintf("/templates/%d", id), in, nil); err != nil {
		return fmt.Errorf("updating template %d: %w", id, err)
	}
	return nil
}

// DeleteTemplate removes the template.
func (c *Client) DeleteTemplate(ctx context.Context, id int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/templates/%d", id)); err != nil {
		return fmt.Errorf("deleting template %d: %w", id, err)
	}
	return nil
}
