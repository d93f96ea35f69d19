package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"pagekit/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labels = CopyLabels{Success: "Copied", Error: "Copy failed"}

func TestNewSnackbar_Defaults(t *testing.T) {
	s := NewSnackbar("hello")
	assert.Equal(t, "hello", s.Text)
	assert.Equal(t, 5*time.Second, s.Duration)
	assert.Equal(t, "top-center", s.Position)
	assert.False(t, s.ShowAction)
}

func TestLimited_DropsBurstOverflow(t *testing.T) {
	c := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rec := &Recorder{}
	l := NewLimited(rec, time.Second, 2, WithLimitClock(c))

	l.Show(NewSnackbar("a"))
	l.Show(NewSnackbar("b"))
	l.Show(NewSnackbar("c"))
	require.Len(t, rec.Shown(), 2)
	assert.Equal(t, int64(1), l.Dropped())

	c.Advance(time.Second)
	l.Show(NewSnackbar("d"))

	shown := rec.Shown()
	require.Len(t, shown, 3)
	assert.Equal(t, "d", shown[2].Text)
	assert.Equal(t, int64(1), l.Dropped())
}

func TestCopy_Success(t *testing.T) {
	cb := &MemoryClipboard{}
	rec := &Recorder{}

	Copy(context.Background(), cb, rec, labels, "snippet")

	assert.Equal(t, "snippet", cb.Text())
	shown := rec.Shown()
	require.Len(t, shown, 1)
	assert.Equal(t, "Copied", shown[0].Text)
	assert.Equal(t, 2*time.Second, shown[0].Duration)
	assert.Equal(t, PositionTopCenter, shown[0].Position)
}

func TestCopy_Failure(t *testing.T) {
	tests := []struct {
		name string
		cb   Clipboard
		ctx  func() context.Context
	}{
		{
			name: "write rejected",
			cb:   &MemoryClipboard{Err: errors.New("permission denied")},
			ctx:  context.Background,
		},
		{
			name: "no clipboard",
			cb:   nil,
			ctx:  context.Background,
		},
		{
			name: "cancelled context",
			cb:   &MemoryClipboard{},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			Copy(tt.ctx(), tt.cb, rec, labels, "snippet")

			shown := rec.Shown()
			require.Len(t, shown, 1)
			assert.Equal(t, "Copy failed", shown[0].Text)
			assert.Equal(t, CopyDuration, shown[0].Duration)
		})
	}
}

func TestCopy_NilNotifier(t *testing.T) {
	cb := &MemoryClipboard{}
	assert.NotPanics(t, func() {
		Copy(context.Background(), cb, nil, labels, "x")
	})
	assert.Equal(t, "x", cb.Text())
}
