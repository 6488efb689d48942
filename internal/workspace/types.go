package workspace

import (
	"errors"
	"time"

	"github.com/nhle/reply-desk/internal/backend"
)

// Phase is where the selected email is in its lifecycle.
type Phase int

const (
	// Idle means nothing is selected.
	Idle Phase = iota
	// Selected means an email is loaded for editing without analysis.
	Selected
	// Analyzed means an analysis result is attached.
	Analyzed
	// Sent means the reply went out; only ProcessNext or a new
	// selection leave this phase.
	Sent
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Analyzed:
		return "analyzed"
	case Sent:
		return "sent"
	default:
		return "unknown"
	}
}

// Reason says what kind of transition produced an Event.
type Reason string

const (
	ReasonSelection Reason = "selection"
	ReasonAnalysis  Reason = "analysis"
	ReasonReply     Reason = "reply"
	ReasonPreview   Reason = "preview"
	ReasonQueue     Reason = "queue"
	ReasonOperation Reason = "operation"
	ReasonTaxonomy  Reason = "taxonomy"
	ReasonSettings  Reason = "settings"
	ReasonNotice    Reason = "notice"
	ReasonSent      Reason = "sent"
	ReasonDeleted   Reason = "deleted"
)

// Event signals that the controller state changed. Read Snapshot for
// the new state.
type Event struct {
	Reason Reason
}

// NoticeLevel grades a Notice.
type NoticeLevel int

const (
	NoticeNone NoticeLevel = iota
	NoticeInfo
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeError:
		return "error"
	default:
		return ""
	}
}

// Notice is a one-line message for the operator.
type Notice struct {
	Level NoticeLevel
	Text  string
	At    time.Time
}

// describe renders err for a notice, preferring the backend's detail.
func describe(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
