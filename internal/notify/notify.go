// Package notify shows transient snackbar notifications and implements the
// copy-to-clipboard flow that reports its outcome through them.
package notify

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pagekit/internal/clock"

	"golang.org/x/time/rate"
)

const (
	// DefaultDuration is how long a snackbar stays up when unspecified.
	DefaultDuration = 5 * time.Second

	// CopyDuration is the display time of copy feedback.
	CopyDuration = 2 * time.Second

	PositionTopCenter = "top-center"
)

// ErrNoClipboard is logged when copy is attempted without a clipboard.
var ErrNoClipboard = errors.New("notify: clipboard unavailable")

// Snackbar is one transient notification.
type Snackbar struct {
	Text       string
	ShowAction bool
	Duration   time.Duration
	Position   string
}

// NewSnackbar returns a snackbar with default duration and position.
func NewSnackbar(text string) Snackbar {
	return Snackbar{Text: text, Duration: DefaultDuration, Position: PositionTopCenter}
}

// Notifier displays snackbars.
type Notifier interface {
	Show(s Snackbar)
}

// Limited drops notifications that exceed a token bucket so a burst of
// events cannot stack snackbars.
type Limited struct {
	next    Notifier
	limiter *rate.Limiter
	clock   clock.Clock
	logger  *slog.Logger
	dropped atomic.Int64
}

// LimitedOption configures a Limited notifier.
type LimitedOption func(*Limited)

// WithLimitClock sets the time source used for token accounting.
func WithLimitClock(c clock.Clock) LimitedOption {
	return func(l *Limited) { l.clock = c }
}

// WithLimitLogger sets the logger used to report dropped notifications.
func WithLimitLogger(logger *slog.Logger) LimitedOption {
	return func(l *Limited) { l.logger = logger }
}

// NewLimited allows one notification per every, with bursts of up to burst.
func NewLimited(next Notifier, every time.Duration, burst int, opts ...LimitedOption) *Limited {
	l := &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(every), burst),
		clock:   clock.System(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Show forwards s unless the bucket is empty.
func (l *Limited) Show(s Snackbar) {
	if !l.limiter.AllowN(l.clock.Now(), 1) {
		l.dropped.Add(1)
		l.logger.Debug("Snackbar dropped", "text", s.Text)
		return
	}
	l.next.Show(s)
}

// Dropped returns how many notifications were suppressed.
func (l *Limited) Dropped() int64 {
	return l.dropped.Load()
}

// Recorder keeps every snackbar it is shown.
type Recorder struct {
	mu    sync.Mutex
	shown []Snackbar
}

func (r *Recorder) Show(s Snackbar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, s)
}

// Shown returns a copy of the recorded snackbars.
func (r *Recorder) Shown() []Snackbar {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Snackbar, len(r.shown))
	copy(out, r.shown)
	return out
}

// LogNotifier writes snackbars to a logger. Used by headless runs.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Show(s Snackbar) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Snackbar",
		"text", s.Text,
		"duration", s.Duration,
		"position", s.Position,
		"show_action", s.ShowAction,
	)
}
