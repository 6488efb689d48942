// Package timefmt renders received times for the inbox and detail views.
package timefmt

import (
	"time"

	"github.com/dustin/go-humanize"
)

const (
	week = 7 * 24 * time.Hour

	// FullLayout is the detail-pane timestamp format.
	FullLayout = "2006-01-02 15:04"
)

// Relative describes t relative to now: "just now" under a minute,
// "5 minutes ago" up to a week, then a short date. Zero times render
// as "-".
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < week:
		return humanize.RelTime(t, now, "ago", "from now")
	case t.Year() == now.Year():
		return t.Local().Format("Jan 2")
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

// Full formats t in local time, or "-" when zero.
func Full(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(FullLayout)
}
