// Package page composes the page runtime: rate limited scroll and resize
// handlers, smooth scrolling, the lazy comment loader, relative dates,
// copy feedback and the image gallery, all torn down together on
// navigation.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pagekit/internal/clock"
	"pagekit/internal/dom"
	"pagekit/internal/gallery"
	"pagekit/internal/lifecycle"
	"pagekit/internal/logger"
	"pagekit/internal/models"
	"pagekit/internal/notify"
	"pagekit/internal/ratelimit"
	"pagekit/internal/reltime"
	"pagekit/internal/scroll"
	"pagekit/internal/visibility"

	"golang.org/x/net/html"
)

const (
	// NavigationKey groups everything torn down on navigation.
	NavigationKey = "pjax"

	EventScroll = "scroll"
	EventResize = "resize"

	HeaderID        = "page-header"
	NavFixedClass   = "nav-fixed"
	ArticleImages   = "#article-container img:not(.no-lightbox)"
	scrollLimiter   = "scroll"
	resizeLimiter   = "resize"
	commentsLoaded  = "comments"
	scrollAnimation = "animation"
)

var (
	// ErrNoDocument is returned when no document is supplied.
	ErrNoDocument = errors.New("page: document is nil")

	// ErrNoEvents is returned when no event source is supplied.
	ErrNoEvents = errors.New("page: event source is nil")

	// ErrElementNotFound is returned when a scroll target does not exist.
	ErrElementNotFound = errors.New("page: element not found")
)

// Deps are the host capabilities the controller drives. Document,
// Viewport, Frames and Events are required.
type Deps struct {
	Document *html.Node
	Viewport scroll.Viewport
	Frames   clock.FrameScheduler
	Events   lifecycle.Subscriber

	// Clock defaults to the system clock.
	Clock clock.Clock
	// Layout defaults to dom.AttrLayout.
	Layout dom.Layout
	// Observers detects element visibility. When nil, comments load
	// immediately. Factories with an Update(offset) method are moved along
	// with the viewport.
	Observers visibility.ObserverFactory

	Notifier  notify.Notifier
	Clipboard notify.Clipboard
	Zoomer    gallery.Zoomer
	Binder    gallery.Binder
	Loader    gallery.Loader

	// LoadComments is called once when the comment section becomes visible.
	LoadComments func()

	LimiterObserver ratelimit.Observer
	ScrollObserver  scroll.Observer
	Logger          *slog.Logger
}

type offsetUpdater interface {
	Update(offset float64)
}

// Controller owns the page runtime.
type Controller struct {
	deps     Deps
	cfg      models.PageConfig
	logger   *slog.Logger
	registry *lifecycle.Registry

	animator  *scroll.Animator
	onScroll  *ratelimit.Throttler[float64]
	onResize  *ratelimit.Debouncer[float64]
	formatter *reltime.Formatter
	notifier  *notify.Limited
	lightbox  *gallery.Lightbox
	copy      notify.CopyLabels

	mu       sync.Mutex
	doc      *html.Node
	header   *html.Node
	comments *visibility.Binding

	scrolls  atomic.Int64
	resizes  atomic.Int64
	commentN atomic.Int64
}

// New builds a Controller from deps and cfg. Call Start to attach it to the
// document.
func New(deps Deps, cfg *models.Config) (*Controller, error) {
	if deps.Document == nil {
		return nil, ErrNoDocument
	}
	if deps.Events == nil {
		return nil, ErrNoEvents
	}
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.Layout == nil {
		deps.Layout = dom.AttrLayout{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{Logger: deps.Logger}
	}
	log := logger.Component(deps.Logger, "page")

	c := &Controller{
		deps:     deps,
		cfg:      cfg.Page,
		logger:   log,
		registry: lifecycle.NewRegistry(),
		copy:     cfg.Locale.Copy,
		doc:      deps.Document,
		header:   dom.ByID(deps.Document, HeaderID),
	}

	var err error
	c.animator, err = scroll.NewAnimator(deps.Viewport, deps.Frames,
		scroll.WithDuration(cfg.Page.Scroll.Duration),
		scroll.WithHeaderOffset(cfg.Page.Scroll.HeaderOffset),
		scroll.WithNativeSmooth(cfg.Page.Scroll.NativeSmooth),
		scroll.WithHeaderFixed(c.NavFixed),
		scroll.WithObserver(deps.ScrollObserver),
		scroll.WithLogger(logger.Component(deps.Logger, "scroll")),
	)
	if err != nil {
		return nil, fmt.Errorf("create animator: %w", err)
	}

	c.onScroll, err = ratelimit.NewThrottler(c.handleScroll, cfg.Page.Throttle.Wait,
		ratelimit.WithClock(deps.Clock),
		ratelimit.WithName(scrollLimiter),
		ratelimit.WithLeading(cfg.Page.Throttle.Leading),
		ratelimit.WithTrailing(cfg.Page.Throttle.Trailing),
		ratelimit.WithObserver(deps.LimiterObserver),
	)
	if err != nil {
		return nil, fmt.Errorf("create scroll throttle: %w", err)
	}

	c.onResize, err = ratelimit.NewDebouncer(c.handleResize, cfg.Page.Debounce.Wait,
		ratelimit.WithClock(deps.Clock),
		ratelimit.WithName(resizeLimiter),
		ratelimit.WithImmediate(cfg.Page.Debounce.Immediate),
		ratelimit.WithObserver(deps.LimiterObserver),
	)
	if err != nil {
		return nil, fmt.Errorf("create resize debounce: %w", err)
	}

	c.formatter = reltime.New(cfg.Locale.Time, reltime.WithNow(deps.Clock.Now))
	c.notifier = notify.NewLimited(deps.Notifier, cfg.Page.Snackbar.Every, cfg.Page.Snackbar.Burst,
		notify.WithLimitClock(deps.Clock),
		notify.WithLimitLogger(log),
	)
	c.lightbox = gallery.NewLightbox(gallery.Kind(cfg.Page.Lightbox), deps.Zoomer, deps.Binder, log)

	return c, nil
}

// Start attaches event handlers, decorates article images, starts lazy
// loading and arms the comment loader. Everything it sets up, and stopping
// a running scroll animation, is registered under NavigationKey.
func (c *Controller) Start() error {
	c.registry.Listen(NavigationKey, c.deps.Events, EventScroll, func() {
		c.onScroll.Call(c.deps.Viewport.Offset())
	})
	c.registry.Listen(NavigationKey, c.deps.Events, EventResize, func() {
		c.onResize.Call(c.deps.Viewport.Offset())
	})
	c.registry.AddNamed(NavigationKey, scrollAnimation, func() { c.animator.Stop() })

	doc := c.document()
	images, err := dom.QueryAll(doc, ArticleImages)
	if err != nil {
		return fmt.Errorf("query article images: %w", err)
	}
	c.mu.Lock()
	wrapped, err := c.lightbox.Apply(images)
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("Some images could not be decorated", "error", err)
	}
	c.logger.Debug("Gallery applied", "images", len(images), "wrapped", wrapped, "lightbox", c.lightbox.Kind())

	gallery.StartLazyLoad(c.deps.Loader, c.cfg.LazyLoad)

	return c.armComments(doc)
}

func (c *Controller) armComments(doc *html.Node) error {
	el, err := dom.Query(doc, c.cfg.CommentSelector)
	if err != nil {
		return fmt.Errorf("query comment section: %w", err)
	}
	if el == nil {
		c.logger.Debug("No comment section on page", "selector", c.cfg.CommentSelector)
		return nil
	}

	binding := visibility.OnFirstVisible(c.deps.Observers, el, c.loadComments)
	c.mu.Lock()
	c.comments = binding
	c.mu.Unlock()
	c.registry.AddNamed(NavigationKey, commentsLoaded, binding.Disconnect)
	return nil
}

func (c *Controller) loadComments() {
	c.commentN.Add(1)
	c.logger.Info("Loading comments")
	if c.deps.LoadComments != nil {
		c.deps.LoadComments()
	}
}

func (c *Controller) handleScroll(offset float64) {
	c.scrolls.Add(1)
	c.setNavFixed(offset > c.cfg.Scroll.NavFixedAt)
	if u, ok := c.deps.Observers.(offsetUpdater); ok {
		u.Update(offset)
	}
}

func (c *Controller) handleResize(offset float64) {
	c.resizes.Add(1)
	c.setNavFixed(offset > c.cfg.Scroll.NavFixedAt)
	if u, ok := c.deps.Observers.(offsetUpdater); ok {
		u.Update(offset)
	}
}

func (c *Controller) setNavFixed(fixed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.header == nil {
		return
	}
	if fixed {
		dom.AddClass(c.header, NavFixedClass)
	} else {
		dom.RemoveClass(c.header, NavFixedClass)
	}
}

// NavFixed reports whether the header is pinned.
func (c *Controller) NavFixed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dom.HasClass(c.header, NavFixedClass)
}

// ScrollTo smoothly scrolls to pos.
func (c *Controller) ScrollTo(pos float64) *scroll.Animation {
	return c.animator.ScrollTo(pos)
}

// ScrollToElement smoothly scrolls to the element with id.
func (c *Controller) ScrollToElement(id string) (*scroll.Animation, error) {
	c.mu.Lock()
	el := dom.ByID(c.doc, id)
	c.mu.Unlock()
	if el == nil {
		return nil, fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return c.animator.ScrollTo(dom.ElementTop(c.deps.Layout, el)), nil
}

// Copy copies text to the clipboard and shows the outcome.
func (c *Controller) Copy(ctx context.Context, text string) {
	notify.Copy(ctx, c.deps.Clipboard, c.notifier, c.copy, text)
}

// Notify shows a snackbar, subject to the notification rate limit.
func (c *Controller) Notify(text string, showAction bool, d time.Duration) {
	s := notify.NewSnackbar(text)
	s.ShowAction = showAction
	if d > 0 {
		s.Duration = d
	}
	c.notifier.Show(s)
}

// RelativeTime formats t relative to the controller clock.
func (c *Controller) RelativeTime(t time.Time, detailed bool) string {
	return c.formatter.Format(t, detailed)
}

// Navigate tears down the current page and starts on doc. It returns how
// many cleanup functions ran.
func (c *Controller) Navigate(doc *html.Node) (int, error) {
	if doc == nil {
		return 0, ErrNoDocument
	}
	n := c.registry.Run(NavigationKey)

	c.mu.Lock()
	c.doc = doc
	c.header = dom.ByID(doc, HeaderID)
	c.comments = nil
	c.mu.Unlock()

	c.logger.Info("Navigated", "cleanups", n)
	return n, c.Start()
}

// Close runs every registered cleanup.
func (c *Controller) Close() {
	for _, key := range c.registry.Keys() {
		c.registry.Run(key)
	}
}

// Registry exposes the cleanup registry for page scripts.
func (c *Controller) Registry() *lifecycle.Registry {
	return c.registry
}

// Stats reports handler activity.
type Stats struct {
	Scrolls          int64
	Resizes          int64
	CommentLoads     int64
	NotificationsCut int64
}

// Stats returns handler activity counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Scrolls:          c.scrolls.Load(),
		Resizes:          c.resizes.Load(),
		CommentLoads:     c.commentN.Load(),
		NotificationsCut: c.notifier.Dropped(),
	}
}

// CommentsArmed reports whether a comment binding is waiting to fire.
func (c *Controller) CommentsArmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.comments != nil && !c.comments.Fired()
}

func (c *Controller) document() *html.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}
