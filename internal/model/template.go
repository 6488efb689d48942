package model

// Template is a reusable reply skeleton. Content holds {name} placeholders.
type Template struct {
	ID int64 `json:"id"`

	// CategoryID scopes the template; nil means uncategorized.
	CategoryID *int64 `json:"category_id"`

	Name    string `json:"name"`
	Content string `json:"content"`

	// VariablesRaw is the comma-delimited list of declared variable names.
	VariablesRaw string `json:"variables"`
}

// VariableNames splits the declared variable list, dropping blanks.
func (t Template) VariableNames() []string {
	return splitList(t.VariablesRaw)
}

// InCategory reports whether t is scoped to the given category.
func (t Template) InCategory(categoryID int64) bool {
	return t.CategoryID != nil && *t.CategoryID == categoryID
}

// TemplateInput is the payload for creating or updating a template.
type TemplateInput struct {
	CategoryID *int64 `json:"category_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	Variables  string `json:"variables"`
}

// Input returns the editable fields of t.
func (t Template) Input() TemplateInput {
	return TemplateInput{
		CategoryID: t.CategoryID,
		Name:       t.Name,
		Content:    t.Content,
		Variables:  t.VariablesRaw,
	}
}

// FindTemplate returns the template with the given id.
func FindTemplate(templates []Template, id int64) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
