package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Clipboard accepts text writes.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// CopyLabels are the localized copy outcome messages.
type CopyLabels struct {
	Success string `yaml:"success" json:"success"`
	Error   string `yaml:"error" json:"error"`
}

// Copy writes text to the clipboard and reports the outcome as a short
// snackbar. Failures are logged and shown, never returned.
func Copy(ctx context.Context, cb Clipboard, n Notifier, labels CopyLabels, text string) {
	var err error
	if cb == nil {
		err = ErrNoClipboard
	} else {
		err = cb.WriteText(ctx, text)
	}

	s := Snackbar{Text: labels.Success, Duration: CopyDuration, Position: PositionTopCenter}
	if err != nil {
		slog.WarnContext(ctx, "Copy to clipboard failed", "error", err)
		s.Text = labels.Error
	}
	if n != nil {
		n.Show(s)
	}
}

// MemoryClipboard is an in-process clipboard. Err, when set, is returned
// from every write.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
	Err  error
}

func (c *MemoryClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.text = text
	return nil
}

// Text returns the last written text.
func (c *MemoryClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
