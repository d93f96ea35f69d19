// Package reltime renders timestamps relative to now ("3 days ago") using
// locale supplied unit labels. A month is treated as exactly 30 days and all
// counts are truncated toward zero.
package reltime

import (
	"strconv"
	"time"
)

const (
	Minute = time.Minute
	Hour   = time.Hour
	Day    = 24 * time.Hour
	Month  = 30 * Day
)

// Labels are the locale strings appended to counts.
type Labels struct {
	Day   string `yaml:"day" json:"day"`
	Hour  string `yaml:"hour" json:"hour"`
	Min   string `yaml:"min" json:"min"`
	Month string `yaml:"month" json:"month"`
	Just  string `yaml:"just" json:"just"`
}

// Formatter formats timestamps against a reference clock.
type Formatter struct {
	labels Labels
	now    func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithNow sets the reference time source. Defaults to time.Now.
func WithNow(now func() time.Time) Option {
	return func(f *Formatter) { f.now = now }
}

// New creates a Formatter using labels.
func New(labels Labels, opts ...Option) *Formatter {
	f := &Formatter{labels: labels, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DaysBetween returns the days from from to to, rounded down. Negative when
// to is earlier than from.
func DaysBetween(from, to time.Time) int64 {
	d := to.Sub(from)
	n := int64(d / Day)
	if d%Day < 0 {
		n--
	}
	return n
}

// Days returns the whole days elapsed since t, truncated toward zero.
// Future timestamps yield zero or negative values.
func (f *Formatter) Days(t time.Time) int64 {
	return int64(f.now().Sub(t) / Day)
}

// Detailed returns a label such as "3 hours ago". Timestamps older than
// twelve months are rendered as their UTC date, YYYY-MM-DD.
func (f *Formatter) Detailed(t time.Time) string {
	diff := f.now().Sub(t)

	switch {
	case diff > 12*Month:
		return t.UTC().Format(time.DateOnly)
	case diff >= Month:
		return count(diff, Month, f.labels.Month)
	case diff >= Day:
		return count(diff, Day, f.labels.Day)
	case diff >= Hour:
		return count(diff, Hour, f.labels.Hour)
	case diff >= Minute:
		return count(diff, Minute, f.labels.Min)
	default:
		return f.labels.Just
	}
}

// Format returns Detailed(t) when detailed is set, otherwise Days(t) as a
// decimal string.
func (f *Formatter) Format(t time.Time, detailed bool) string {
	if detailed {
		return f.Detailed(t)
	}
	return strconv.FormatInt(f.Days(t), 10)
}

func count(diff, unit time.Duration, label string) string {
	return strconv.FormatInt(int64(diff/unit), 10) + " " + label
}
