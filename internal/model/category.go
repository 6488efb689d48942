package model

import "strings"

// Category is a classification bucket for inbound email.
// At most one category should have IsDefault set; the backend owns that rule.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	KeywordsRaw string `json:"keywords"`
	IsDefault   bool   `json:"is_default"`
	Priority    int    `json:"priority"`
}

// Keywords splits the comma-delimited keyword list, dropping blanks.
func (c Category) Keywords() []string {
	return splitList(c.KeywordsRaw)
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	IsDefault   bool   `json:"is_default"`
	Priority    int    `json:"priority"`
}

// Input returns the editable fields of c.
func (c Category) Input() CategoryInput {
	return CategoryInput{
		Name:        c.Name,
		Description: c.Description,
		Keywords:    c.KeywordsRaw,
		IsDefault:   c.IsDefault,
		Priority:    c.Priority,
	}
}

// FindCategory returns the category with the given id.
func FindCategory(categories []Category, id int64) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
