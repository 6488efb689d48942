package model

import "time"

// ActivityAction is what the operator did to an email.
type ActivityAction string

const (
	ActivitySent    ActivityAction = "sent"
	ActivityDeleted ActivityAction = "deleted"
)

// Activity is one entry in the local journal of terminal actions.
type Activity struct {
	ID         string         `json:"id" db:"id"`
	EmailID    int64          `json:"email_id" db:"email_id"`
	Action     ActivityAction `json:"action" db:"action"`
	Subject    string         `json:"subject" db:"subject"`
	Sender     string         `json:"sender" db:"sender"`
	CategoryID *int64         `json:"category_id" db:"category_id"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
