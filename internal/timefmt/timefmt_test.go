package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelative(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "-"},
		{"seconds", now.Add(-20 * time.Second), "just now"},
		{"future skew", now.Add(10 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-3 * time.Hour), "3 hours ago"},
		{"days", now.Add(-2 * 24 * time.Hour), "2 days ago"},
		{"same year", time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local), "Mar 4"},
		{"older", time.Date(2023, 11, 20, 9, 0, 0, 0, time.Local), "Nov 20, 2023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relative(tt.t, now))
		})
	}
}

func TestFull(t *testing.T) {
	assert.Equal(t, "-", Full(time.Time{}))
	ts := time.Date(2025, 6, 15, 8, 30, 0, 0, time.Local)
	assert.Equal(t, "2025-06-15 08:30", Full(ts))
}
