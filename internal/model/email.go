package model

import (
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// EmailStatus is the lifecycle status of an email as stored by the backend.
type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailDeleted EmailStatus = "deleted"
)

// Email is an inbound support message owned by the backend. The workspace
// keeps a read-mostly copy per page and one selected copy.
type Email struct {
	// ID is the backend's stable identifier.
	ID int64 `json:"id"`

	// MessageID is the RFC 5322 Message-ID header, when known.
	MessageID string `json:"message_id,omitempty"`

	// Sender is the raw From header (e.g. "Alice <alice@example.com>").
	Sender string `json:"sender"`

	// Subject is the message subject line.
	Subject string `json:"subject"`

	// BodyText is the plain-text body.
	BodyText string `json:"body_text"`

	// BodyHTML is the HTML body, when the message had one.
	BodyHTML string `json:"body_html,omitempty"`

	// ReceivedAtRaw is the received timestamp exactly as the backend
	// returned it. Use ReceivedAt to get a parsed value.
	ReceivedAtRaw string `json:"received_at"`

	// Language is the detected language code of the body.
	Language string `json:"language,omitempty"`

	// Translation is the backend's stored translation of the body.
	Translation *string `json:"translation"`

	// Status is the lifecycle status.
	Status EmailStatus `json:"status"`

	// CategoryID is the category assigned by the last analysis, if any.
	CategoryID *int64 `json:"category_id"`

	// Confidence is the classification confidence of the last analysis.
	Confidence *float64 `json:"confidence"`

	// AIReply is the last suggested reply stored by the backend.
	AIReply *string `json:"ai_reply"`

	// FinalReply is the reply the operator sent, once sent.
	FinalReply *string `json:"final_reply"`
}

// receivedLayouts are the timestamp shapes the backend is known to emit.
var receivedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
}

// ReceivedAt parses ReceivedAtRaw. Naive timestamps are read as UTC.
// The zero time is returned when the value is missing or unparseable.
func (e Email) ReceivedAt() time.Time {
	raw := strings.TrimSpace(e.ReceivedAtRaw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range receivedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SeedReply returns the text the reply buffer starts with when the email
// is selected: the finalized reply, else the AI reply, else empty.
func (e Email) SeedReply() string {
	if e.FinalReply != nil {
		return *e.FinalReply
	}
	if e.AIReply != nil {
		return *e.AIReply
	}
	return ""
}

// EmailPage is one page of the pending queue as returned by the backend.
type EmailPage struct {
	Data         []Email `json:"data"`
	Total        int     `json:"total"`
	TotalPages   int     `json:"total_pages"`
	Page         int     `json:"page"`
	TotalCount   int     `json:"total_count"`
	PendingCount int     `json:"pending_count"`
}

// SenderName returns the display name from the From header, falling back
// to the address and then to the raw value.
func (e Email) SenderName() string {
	addr, err := mail.ParseAddress(e.Sender)
	if err != nil {
		return strings.TrimSpace(e.Sender)
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

// SenderAddress returns the bare address from the From header, or the
// raw value when it does not parse.
func (e Email) SenderAddress() string {
	addr, err := mail.ParseAddress(e.Sender)
	if err != nil {
		return strings.TrimSpace(e.Sender)
	}
	return addr.Address
}
