package model

// ClassificationMethod records how the backend picked a category.
type ClassificationMethod string

const (
	MethodKeyword ClassificationMethod = "keyword"
	MethodAI      ClassificationMethod = "ai"
	MethodDefault ClassificationMethod = "default"
)

// ReplySource records where a suggested reply came from.
type ReplySource string

const (
	ReplyFromTemplate ReplySource = "template"
	ReplyFromAI       ReplySource = "ai"
)

// AnalysisResult is the outcome of one analyze call. It is replaced
// wholesale on each call and never persisted by the workspace.
type AnalysisResult struct {
	// Category is the suggested category.
	Category *Category `json:"category"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence"`

	Method ClassificationMethod `json:"method"`

	// Reason is a human-readable explanation of the classification.
	Reason string `json:"reason"`

	// Reply is the suggested reply body; ReplySource says how it was made.
	Reply       string      `json:"reply"`
	ReplySource ReplySource `json:"reply_source"`

	// MatchedTemplateID is set when the reply was rendered from a template.
	MatchedTemplateID *int64 `json:"matched_template_id"`

	// ExtractedVariables maps placeholder names to values pulled from the
	// email. Values may be null.
	ExtractedVariables map[string]any `json:"extracted_variables"`

	// Templates is the backend's template list at analysis time.
	Templates []Template `json:"templates,omitempty"`
}

// CategoryID returns the suggested category's id, if any.
func (a *AnalysisResult) CategoryID() (int64, bool) {
	if a == nil || a.Category == nil {
		return 0, false
	}
	return a.Category.ID, true
}
