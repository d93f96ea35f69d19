// Package models defines the configuration structures shared by the page
// runtime, the CLI and the ambient stack.
//
// Configuration is grouped by concern: page behavior (scrolling, rate
// limits, notifications, gallery), locale strings, logging, metrics and
// tracing. Every section has safe defaults and its own Validate method.
package models

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"pagekit/internal/gallery"
	"pagekit/internal/notify"
	"pagekit/internal/reltime"
)

// SchemaVersion is the configuration schema written by this build.
const SchemaVersion = "1.0.0"

// Lightbox constants
const (
	LightboxNone       = ""
	LightboxMediumZoom = "mediumZoom"
	LightboxFancybox   = "fancybox"
)

// Config is the root configuration structure.
type Config struct {
	Version       string              `yaml:"version" json:"version"`
	Page          PageConfig          `yaml:"page" json:"page"`
	Locale        LocaleConfig        `yaml:"locale" json:"locale"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type PageConfig struct {
	Scroll          ScrollConfig           `yaml:"scroll" json:"scroll"`
	Throttle        ThrottleConfig         `yaml:"throttle" json:"throttle"`
	Debounce        DebounceConfig         `yaml:"debounce" json:"debounce"`
	Snackbar        SnackbarConfig         `yaml:"snackbar" json:"snackbar"`
	Lightbox        string                 `yaml:"lightbox" json:"lightbox"`
	LazyLoad        gallery.LazyLoadConfig `yaml:"lazyload" json:"lazyload"`
	CommentSelector string                 `yaml:"comment_selector" json:"comment_selector"`
	ViewportHeight  float64                `yaml:"viewport_height" json:"viewport_height"`
}

type ScrollConfig struct {
	Duration      time.Duration `yaml:"duration" json:"duration"`
	HeaderOffset  float64       `yaml:"header_offset" json:"header_offset"`
	NativeSmooth  bool          `yaml:"native_smooth" json:"native_smooth"`
	FrameInterval time.Duration `yaml:"frame_interval" json:"frame_interval"`
	// NavFixedAt is the scroll offset past which the header is pinned.
	NavFixedAt float64 `yaml:"nav_fixed_at" json:"nav_fixed_at"`
}

type ThrottleConfig struct {
	Wait     time.Duration `yaml:"wait" json:"wait"`
	Leading  bool          `yaml:"leading" json:"leading"`
	Trailing bool          `yaml:"trailing" json:"trailing"`
}

type DebounceConfig struct {
	Wait      time.Duration `yaml:"wait" json:"wait"`
	Immediate bool          `yaml:"immediate" json:"immediate"`
}

// SnackbarConfig caps how often notifications may appear.
type SnackbarConfig struct {
	Every time.Duration `yaml:"every" json:"every"`
	Burst int           `yaml:"burst" json:"burst"`
}

type LocaleConfig struct {
	Time reltime.Labels    `yaml:"time" json:"time"`
	Copy notify.CopyLabels `yaml:"copy" json:"copy"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration that matches the behavior of a
// stock theme install: 500ms smooth scrolling with a 70px header offset,
// scroll handling throttled to 200ms and resize handling debounced to 300ms.
func NewDefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Page: PageConfig{
			Scroll: ScrollConfig{
				Duration:      500 * time.Millisecond,
				HeaderOffset:  70,
				NativeSmooth:  true,
				FrameInterval: 16 * time.Millisecond,
				NavFixedAt:    56,
			},
			Throttle: ThrottleConfig{
				Wait:     200 * time.Millisecond,
				Leading:  true,
				Trailing: true,
			},
			Debounce: DebounceConfig{
				Wait: 300 * time.Millisecond,
			},
			Snackbar: SnackbarConfig{
				Every: time.Second,
				Burst: 3,
			},
			Lightbox:        LightboxFancybox,
			LazyLoad:        gallery.DefaultLazyLoadConfig(),
			CommentSelector: "#post-comment",
			ViewportHeight:  800,
		},
		Locale: LocaleConfig{
			Time: reltime.Labels{
				Day:   "days ago",
				Hour:  "hours ago",
				Min:   "minutes ago",
				Month: "months ago",
				Just:  "just now",
			},
			Copy: notify.CopyLabels{
				Success: "Copied",
				Error:   "Copy failed",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "pagekit",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("version cannot be empty")
	}

	if err := c.Page.Validate(); err != nil {
		return fmt.Errorf("invalid page config: %w", err)
	}

	if err := c.Locale.Validate(); err != nil {
		return fmt.Errorf("invalid locale config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (pc *PageConfig) Validate() error {
	if pc.Scroll.Duration < 0 {
		return errors.New("scroll duration cannot be negative")
	}

	if pc.Scroll.HeaderOffset < 0 {
		return errors.New("header offset cannot be negative")
	}

	if pc.Scroll.FrameInterval <= 0 {
		return errors.New("frame interval must be positive")
	}

	if pc.Throttle.Wait < 0 {
		return errors.New("throttle wait cannot be negative")
	}

	if pc.Debounce.Wait < 0 {
		return errors.New("debounce wait cannot be negative")
	}

	if pc.Snackbar.Every <= 0 {
		return errors.New("snackbar interval must be positive")
	}

	if pc.Snackbar.Burst < 1 {
		return errors.New("snackbar burst must be at least 1")
	}

	validLightboxes := []string{LightboxNone, LightboxMediumZoom, LightboxFancybox}
	if !slices.Contains(validLightboxes, pc.Lightbox) {
		return fmt.Errorf("invalid lightbox: %s", pc.Lightbox)
	}

	if pc.LazyLoad.Selector == "" {
		return errors.New("lazyload selector cannot be empty")
	}

	if pc.LazyLoad.DataSrc == "" {
		return errors.New("lazyload data_src cannot be empty")
	}

	if pc.CommentSelector == "" {
		return errors.New("comment selector cannot be empty")
	}

	if pc.ViewportHeight <= 0 {
		return errors.New("viewport height must be positive")
	}

	return nil
}

func (lc *LocaleConfig) Validate() error {
	labels := map[string]string{
		"time.day":     lc.Time.Day,
		"time.hour":    lc.Time.Hour,
		"time.min":     lc.Time.Min,
		"time.month":   lc.Time.Month,
		"time.just":    lc.Time.Just,
		"copy.success": lc.Copy.Success,
		"copy.error":   lc.Copy.Error,
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if labels[k] == "" {
			return fmt.Errorf("label %s cannot be empty", k)
		}
	}
	return nil
}

func (lc *LoggingConfig) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, lc.Level) {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, lc.Format) {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	validOutputs := []string{"stdout", "stderr", "file"}
	if !slices.Contains(validOutputs, lc.Output) {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}

	if !oc.Tracing.Enabled {
		return nil
	}

	switch oc.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if oc.Tracing.OTLPEndpoint == "" {
			return errors.New("OTLP endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
	}

	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}
