package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "1.0.0", config.Version)

	// Page defaults
	assert.Equal(t, 500*time.Millisecond, config.Page.Scroll.Duration)
	assert.Equal(t, 70.0, config.Page.Scroll.HeaderOffset)
	assert.True(t, config.Page.Scroll.NativeSmooth)
	assert.Equal(t, 16*time.Millisecond, config.Page.Scroll.FrameInterval)
	assert.Equal(t, 200*time.Millisecond, config.Page.Throttle.Wait)
	assert.True(t, config.Page.Throttle.Leading)
	assert.True(t, config.Page.Throttle.Trailing)
	assert.Equal(t, 300*time.Millisecond, config.Page.Debounce.Wait)
	assert.False(t, config.Page.Debounce.Immediate)
	assert.Equal(t, "fancybox", config.Page.Lightbox)
	assert.Equal(t, "img", config.Page.LazyLoad.Selector)
	assert.Equal(t, "lazy-src", config.Page.LazyLoad.DataSrc)
	assert.Equal(t, "#post-comment", config.Page.CommentSelector)

	// Locale defaults
	assert.Equal(t, "just now", config.Locale.Time.Just)
	assert.Equal(t, "Copied", config.Locale.Copy.Success)

	// Logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "stdout", config.Logging.Output)

	// Metrics defaults
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, "/metrics", config.Metrics.Path)
	assert.Equal(t, 9090, config.Metrics.Port)

	// Observability defaults
	assert.Equal(t, "pagekit", config.Observability.ServiceName)
	assert.False(t, config.Observability.Tracing.Enabled)
	assert.Equal(t, "stdout", config.Observability.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Observability.Tracing.SampleRate)

	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:     "missing version",
			mutate:   func(c *Config) { c.Version = "" },
			errorMsg: "version cannot be empty",
		},
		{
			name:     "invalid page config",
			mutate:   func(c *Config) { c.Page.Lightbox = "photoswipe" },
			errorMsg: "invalid page config: invalid lightbox: photoswipe",
		},
		{
			name:     "invalid locale config",
			mutate:   func(c *Config) { c.Locale.Time.Hour = "" },
			errorMsg: "invalid locale config: label time.hour cannot be empty",
		},
		{
			name:     "invalid logging config",
			mutate:   func(c *Config) { c.Logging.Level = "verbose" },
			errorMsg: "invalid logging config",
		},
		{
			name:     "invalid metrics config",
			mutate:   func(c *Config) { c.Metrics.Port = 0 },
			errorMsg: "invalid metrics config",
		},
		{
			name:     "invalid observability config",
			mutate:   func(c *Config) { c.Observability.ServiceName = "" },
			errorMsg: "invalid observability config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestPageConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *PageConfig)
		errorMsg string
	}{
		{name: "valid", mutate: func(p *PageConfig) {}},
		{name: "zero duration lands on first frame", mutate: func(p *PageConfig) { p.Scroll.Duration = 0 }},
		{name: "no lightbox", mutate: func(p *PageConfig) { p.Lightbox = LightboxNone }},
		{
			name:     "negative duration",
			mutate:   func(p *PageConfig) { p.Scroll.Duration = -time.Second },
			errorMsg: "scroll duration cannot be negative",
		},
		{
			name:     "negative header offset",
			mutate:   func(p *PageConfig) { p.Scroll.HeaderOffset = -1 },
			errorMsg: "header offset cannot be negative",
		},
		{
			name:     "zero frame interval",
			mutate:   func(p *PageConfig) { p.Scroll.FrameInterval = 0 },
			errorMsg: "frame interval must be positive",
		},
		{
			name:     "negative throttle wait",
			mutate:   func(p *PageConfig) { p.Throttle.Wait = -time.Millisecond },
			errorMsg: "throttle wait cannot be negative",
		},
		{
			name:     "negative debounce wait",
			mutate:   func(p *PageConfig) { p.Debounce.Wait = -time.Millisecond },
			errorMsg: "debounce wait cannot be negative",
		},
		{
			name:     "zero snackbar burst",
			mutate:   func(p *PageConfig) { p.Snackbar.Burst = 0 },
			errorMsg: "snackbar burst must be at least 1",
		},
		{
			name:     "empty lazyload selector",
			mutate:   func(p *PageConfig) { p.LazyLoad.Selector = "" },
			errorMsg: "lazyload selector cannot be empty",
		},
		{
			name:     "empty comment selector",
			mutate:   func(p *PageConfig) { p.CommentSelector = "" },
			errorMsg: "comment selector cannot be empty",
		},
		{
			name:     "zero viewport",
			mutate:   func(p *PageConfig) { p.ViewportHeight = 0 },
			errorMsg: "viewport height must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewDefaultConfig().Page
			tt.mutate(&page)

			err := page.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.errorMsg)
		})
	}
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      LoggingConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name:        "invalid level",
			config:      LoggingConfig{Level: "invalid", Format: "json", Output: "stdout"},
			expectError: true,
			errorMsg:    "invalid log level: invalid",
		},
		{
			name:        "invalid format",
			config:      LoggingConfig{Level: "info", Format: "xml", Output: "stdout"},
			expectError: true,
			errorMsg:    "invalid log format: xml",
		},
		{
			name:        "invalid output",
			config:      LoggingConfig{Level: "info", Format: "json", Output: "syslog"},
			expectError: true,
			errorMsg:    "invalid log output: syslog",
		},
		{
			name:        "file output without path",
			config:      LoggingConfig{Level: "info", Format: "text", Output: "file"},
			expectError: true,
			errorMsg:    "file path is required when output is file",
		},
		{
			name:   "file output with path",
			config: LoggingConfig{Level: "debug", Format: "text", Output: "file", FilePath: "/tmp/pagekit.log"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetricsConfig_Validate(t *testing.T) {
	assert.NoError(t, (&MetricsConfig{Enabled: false}).Validate())
	assert.NoError(t, (&MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}).Validate())
	assert.EqualError(t, (&MetricsConfig{Enabled: true, Port: 9090}).Validate(), "metrics path cannot be empty")
	assert.EqualError(t, (&MetricsConfig{Enabled: true, Path: "/m", Port: 70000}).Validate(), "metrics port must be between 1 and 65535")
}

func TestObservabilityConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		config   ObservabilityConfig
		errorMsg string
	}{
		{
			name:   "tracing disabled",
			config: ObservabilityConfig{ServiceName: "pagekit"},
		},
		{
			name: "otlp with endpoint",
			config: ObservabilityConfig{ServiceName: "pagekit", Tracing: TracingConfig{
				Enabled: true, Exporter: "otlp", OTLPEndpoint: "localhost:4317", SampleRate: 0.5,
			}},
		},
		{
			name: "otlp without endpoint",
			config: ObservabilityConfig{ServiceName: "pagekit", Tracing: TracingConfig{
				Enabled: true, Exporter: "otlp",
			}},
			errorMsg: "OTLP endpoint is required for the otlp exporter",
		},
		{
			name: "unknown exporter",
			config: ObservabilityConfig{ServiceName: "pagekit", Tracing: TracingConfig{
				Enabled: true, Exporter: "zipkin",
			}},
			errorMsg: "invalid trace exporter: zipkin",
		},
		{
			name: "sample rate out of range",
			config: ObservabilityConfig{ServiceName: "pagekit", Tracing: TracingConfig{
				Enabled: true, Exporter: "stdout", SampleRate: 1.5,
			}},
			errorMsg: "sample rate must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.errorMsg)
		})
	}
}
