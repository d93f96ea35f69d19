package cmd

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"pagekit/internal/clock"
	"pagekit/internal/dom"
	"pagekit/internal/gallery"
	"pagekit/internal/lifecycle"
	"pagekit/internal/logger"
	"pagekit/internal/models"
	"pagekit/internal/notify"
	"pagekit/internal/page"
	"pagekit/internal/ratelimit"
	"pagekit/internal/scroll"
	"pagekit/internal/visibility"

	"golang.org/x/net/html"
)

//go:embed demo.html
var demoPage []byte

// defaultDocumentHeight is used when the document root carries no height.
const defaultDocumentHeight = 4000

type simOptions struct {
	Clock           clock.Clock
	Frames          clock.FrameScheduler
	LimiterObserver ratelimit.Observer
	ScrollObserver  scroll.Observer
	Logger          *slog.Logger
	// Step is how far the simulated reader scrolls per Step call.
	Step float64
}

// simulation plays a reader on a headless page: it scrolls down one step at
// a time, resizes the window now and then, animates back to the top at the
// end of the page and navigates to a fresh copy of the document.
type simulation struct {
	source   []byte
	opts     simOptions
	cfg      *models.Config
	logger   *slog.Logger
	viewport *scroll.MemoryViewport
	events   *lifecycle.Events
	geometry *visibility.Geometry
	ctrl     *page.Controller
	unbridge func()

	mu       sync.Mutex
	bottom   float64
	steps    int
	passes   int
	comments int
	back     *scroll.Animation
}

type logBinder struct {
	logger *slog.Logger
}

func (b logBinder) Bind(selector string, opts gallery.FancyboxOptions) {
	b.logger.Debug("Fancybox bound", "selector", selector, "max_scale", opts.PanzoomMaxScale)
}

func newSimulation(source []byte, cfg *models.Config, opts simOptions) (*simulation, error) {
	if opts.Step <= 0 {
		opts.Step = 120
	}
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Frames == nil {
		opts.Frames = clock.NewTickerFrames(opts.Clock, cfg.Page.Scroll.FrameInterval)
	}

	doc, err := dom.Parse(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	s := &simulation{
		source:   source,
		opts:     opts,
		cfg:      cfg,
		logger:   logger.Component(opts.Logger, "simulation"),
		viewport: scroll.NewMemoryViewport(0),
		events:   lifecycle.NewEvents(),
		geometry: visibility.NewGeometry(dom.AttrLayout{}, cfg.Page.ViewportHeight),
		bottom:   documentBottom(doc, cfg.Page.ViewportHeight),
	}

	s.ctrl, err = page.New(page.Deps{
		Document:        doc,
		Viewport:        s.viewport,
		Frames:          opts.Frames,
		Events:          s.events,
		Clock:           opts.Clock,
		Observers:       s.geometry,
		Notifier:        notify.LogNotifier{Logger: opts.Logger},
		Clipboard:       &notify.MemoryClipboard{},
		Binder:          logBinder{logger: s.logger},
		Loader:          &gallery.DocumentLoader{Root: doc},
		LoadComments:    s.loadComments,
		LimiterObserver: opts.LimiterObserver,
		ScrollObserver:  opts.ScrollObserver,
		Logger:          opts.Logger,
	}, cfg)
	if err != nil {
		return nil, err
	}

	// Every viewport write reaches scroll listeners, as in a browser.
	s.unbridge = s.viewport.Subscribe(func(float64) { s.events.Emit(page.EventScroll) })
	return s, nil
}

func documentBottom(doc *html.Node, viewportHeight float64) float64 {
	height := float64(defaultDocumentHeight)
	if root, err := dom.Query(doc, "main"); err == nil && root != nil {
		layout := dom.AttrLayout{}
		if h := dom.ElementTop(layout, root) + layout.Box(root).Height; h > 0 {
			height = h
		}
	}
	return max(height-viewportHeight, 0)
}

func (s *simulation) Start(ctx context.Context) error {
	if err := s.ctrl.Start(); err != nil {
		return err
	}
	s.ctrl.Copy(ctx, "npm install hexo-theme-pagekit")
	return nil
}

// Step advances the reader by one increment.
func (s *simulation) Step() {
	s.mu.Lock()
	if s.back != nil && s.back.State() != scroll.Done {
		s.mu.Unlock()
		return
	}
	returned := s.back != nil
	s.back = nil
	s.steps++
	resize := s.steps%10 == 0
	s.mu.Unlock()

	if returned {
		s.navigate()
		return
	}
	if resize {
		s.events.Emit(page.EventResize)
	}

	next := s.viewport.Offset() + s.opts.Step
	if next < s.bottom {
		s.viewport.ScrollTo(next)
		return
	}

	s.viewport.ScrollTo(s.bottom)
	anim := s.ctrl.ScrollTo(0)
	if anim == nil {
		// Handled natively; nothing to wait for.
		s.viewport.ScrollTo(0)
		s.navigate()
		return
	}
	s.mu.Lock()
	s.back = anim
	s.mu.Unlock()
	s.logger.Info("Reached end of page, scrolling back to top", "offset", s.bottom)
}

func (s *simulation) navigate() {
	doc, err := dom.Parse(bytes.NewReader(s.source))
	if err != nil {
		s.logger.Error("Failed to parse page", "error", err)
		return
	}
	n, err := s.ctrl.Navigate(doc)
	if err != nil {
		s.logger.Error("Navigation failed", "error", err)
		return
	}
	s.mu.Lock()
	s.passes++
	passes := s.passes
	s.mu.Unlock()
	s.logger.Info("Navigated to fresh page", "pass", passes, "cleanups", n)
}

func (s *simulation) loadComments() {
	s.mu.Lock()
	s.comments++
	s.mu.Unlock()
	s.logger.Info("Comments section visible")
}

// Passes returns how many times the reader finished the page.
func (s *simulation) Passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

// CommentLoads returns how many times comments were loaded.
func (s *simulation) CommentLoads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comments
}

func (s *simulation) Stats() page.Stats {
	return s.ctrl.Stats()
}

func (s *simulation) Close() {
	s.unbridge()
	s.ctrl.Close()
}
