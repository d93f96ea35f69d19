// Package gallery decorates article images: lightbox viewers (medium zoom or
// fancybox) and lazy loading.
package gallery

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"pagekit/internal/dom"

	"golang.org/x/net/html"
)

// Kind selects the lightbox implementation.
type Kind string

const (
	KindNone       Kind = ""
	KindMediumZoom Kind = "mediumZoom"
	KindFancybox   Kind = "fancybox"
)

// ZoomBackground is the overlay color passed to the zoomer.
const ZoomBackground = "var(--efu-card-bg)"

// FancyboxSelector matches the anchors produced by wrapping.
const FancyboxSelector = "[data-fancybox]"

// ZoomOptions configure a medium zoom attachment.
type ZoomOptions struct {
	Background string
}

// Zoomer attaches a medium zoom viewer to images.
type Zoomer interface {
	Zoom(images []*html.Node, opts ZoomOptions)
}

// ToolbarDisplay lists toolbar buttons per region.
type ToolbarDisplay struct {
	Left   []string
	Middle []string
	Right  []string
}

// FancyboxOptions mirror the options handed to the fancybox binder.
type FancyboxOptions struct {
	Hash               bool
	ThumbsShowOnStart  bool
	PanzoomMaxScale    float64
	CarouselTransition string
	Toolbar            ToolbarDisplay
}

// DefaultFancyboxOptions returns the gallery viewer settings.
func DefaultFancyboxOptions() FancyboxOptions {
	return FancyboxOptions{
		Hash:               false,
		ThumbsShowOnStart:  false,
		PanzoomMaxScale:    4,
		CarouselTransition: "slide",
		Toolbar: ToolbarDisplay{
			Left:   []string{"infobar"},
			Middle: []string{"zoomIn", "zoomOut", "toggle1to1", "rotateCCW", "rotateCW", "flipX", "flipY"},
			Right:  []string{"slideshow", "thumbs", "close"},
		},
	}
}

// Binder registers the fancybox viewer for a selector.
type Binder interface {
	Bind(selector string, opts FancyboxOptions)
}

// Lightbox applies the configured viewer to images.
type Lightbox struct {
	kind   Kind
	zoomer Zoomer
	binder Binder
	logger *slog.Logger

	mu    sync.Mutex
	bound bool
}

// NewLightbox creates a Lightbox. zoomer and binder may be nil when the host
// does not provide them.
func NewLightbox(kind Kind, zoomer Zoomer, binder Binder, logger *slog.Logger) *Lightbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lightbox{kind: kind, zoomer: zoomer, binder: binder, logger: logger}
}

// Kind returns the configured viewer.
func (l *Lightbox) Kind() Kind {
	return l.kind
}

// Apply attaches the viewer to images and returns how many were wrapped in
// fancybox anchors. Images that cannot be wrapped are reported in the
// joined error and skipped.
func (l *Lightbox) Apply(images []*html.Node) (int, error) {
	switch l.kind {
	case KindMediumZoom:
		if l.zoomer != nil && len(images) > 0 {
			l.zoomer.Zoom(images, ZoomOptions{Background: ZoomBackground})
		}
		return 0, nil
	case KindFancybox:
		return l.applyFancybox(images)
	default:
		return 0, nil
	}
}

func (l *Lightbox) applyFancybox(images []*html.Node) (int, error) {
	var errs []error
	wrapped := 0
	for _, img := range images {
		if img.Parent != nil && img.Parent.Type == html.ElementNode && strings.EqualFold(img.Parent.Data, "a") {
			continue
		}
		src := Source(img)
		caption, _ := dom.Attr(img, "title")
		if caption == "" {
			caption, _ = dom.Attr(img, "alt")
		}
		_, err := dom.Wrap(img, "a", map[string]string{
			"class":         "fancybox",
			"href":          src,
			"data-fancybox": "gallery",
			"data-caption":  caption,
			"data-thumb":    src,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("wrap image %q: %w", src, err))
			continue
		}
		wrapped++
	}

	l.mu.Lock()
	bind := !l.bound && l.binder != nil
	if bind {
		l.bound = true
	}
	l.mu.Unlock()

	if bind {
		l.binder.Bind(FancyboxSelector, DefaultFancyboxOptions())
		l.logger.Debug("Fancybox bound", "selector", FancyboxSelector)
	}
	return wrapped, errors.Join(errs...)
}

// Source returns the image's full-size source: data-lazy-src when present,
// otherwise src.
func Source(img *html.Node) string {
	if v, ok := dom.Attr(img, "data-lazy-src"); ok && v != "" {
		return v
	}
	v, _ := dom.Attr(img, "src")
	return v
}
