package reltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var labels = Labels{
	Day:   "days ago",
	Hour:  "hours ago",
	Min:   "mins ago",
	Month: "months ago",
	Just:  "just now",
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixed() time.Time { return now }

func TestDetailed(t *testing.T) {
	f := New(labels, WithNow(fixed))

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{name: "45 seconds", ago: 45 * time.Second, want: "just now"},
		{name: "exactly one minute", ago: time.Minute, want: "1 mins ago"},
		{name: "59 minutes", ago: 59*time.Minute + 59*time.Second, want: "59 mins ago"},
		{name: "just over an hour", ago: 3_700_000 * time.Millisecond, want: "1 hours ago"},
		{name: "23 hours", ago: 23 * time.Hour, want: "23 hours ago"},
		{name: "one day", ago: Day, want: "1 days ago"},
		{name: "29 days", ago: 29*Day + 23*time.Hour, want: "29 days ago"},
		{name: "one month", ago: Month, want: "1 months ago"},
		{name: "exactly twelve months", ago: 12 * Month, want: "12 months ago"},
		{name: "future", ago: -time.Hour, want: "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Detailed(now.Add(-tt.ago)))
		})
	}
}

func TestDetailed_OlderThanAYearIsISODate(t *testing.T) {
	f := New(labels, WithNow(fixed))

	got := f.Detailed(now.Add(-400 * Day))
	assert.Len(t, got, 10)
	assert.Equal(t, "2023-03-28", got)

	// Dates are rendered in UTC regardless of the input zone.
	tz := time.FixedZone("UTC+9", 9*3600)
	got = f.Detailed(time.Date(2020, 1, 1, 3, 0, 0, 0, tz))
	assert.Equal(t, "2019-12-31", got)
}

func TestDays(t *testing.T) {
	f := New(labels, WithNow(fixed))

	assert.Equal(t, int64(0), f.Days(now.Add(-23*time.Hour)))
	assert.Equal(t, int64(3), f.Days(now.Add(-3*Day-time.Hour)))
	assert.Equal(t, int64(400), f.Days(now.Add(-400*Day)))
	assert.Equal(t, int64(-2), f.Days(now.Add(2*Day+time.Hour)), "future is not clamped")
	assert.Equal(t, int64(0), f.Days(now.Add(time.Hour)), "truncated toward zero")
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, int64(1), DaysBetween(now, now.Add(36*time.Hour)))
	assert.Equal(t, int64(2), DaysBetween(now, now.Add(2*Day)))
	assert.Equal(t, int64(-2), DaysBetween(now, now.Add(-36*time.Hour)), "rounds down")
	assert.Equal(t, int64(-1), DaysBetween(now, now.Add(-Day)))
}

func TestFormat(t *testing.T) {
	f := New(labels, WithNow(fixed))
	event := now.Add(-50 * time.Hour)

	assert.Equal(t, "2", f.Format(event, false))
	assert.Equal(t, "2 days ago", f.Format(event, true))
}

func TestNew_DefaultsToWallClock(t *testing.T) {
	f := New(labels)
	assert.Equal(t, "just now", f.Detailed(time.Now()))
}
