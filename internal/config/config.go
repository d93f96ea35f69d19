// Package config loads pagekit configuration from defaults, an optional YAML
// file and PAGEKIT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pagekit/internal/models"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the schema version range this build can read.
const SupportedVersions = "^1"

// ErrUnsupportedVersion is returned when the config schema version is not
// readable by this build.
var ErrUnsupportedVersion = errors.New("unsupported config version")

// Load loads configuration from file and environment variables
func Load(configPath string) (*models.Config, error) {
	config := models.NewDefaultConfig()

	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	loadFromEnvironment(config)

	if err := checkVersion(config.Version); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func checkVersion(v string) error {
	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, v, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint: %w", err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, version, SupportedVersions)
	}
	return nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *models.Config, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadFromEnvironment loads configuration from environment variables
func loadFromEnvironment(config *models.Config) {
	if v := os.Getenv("PAGEKIT_CONFIG_VERSION"); v != "" {
		config.Version = v
	}

	// Scrolling
	if d, ok := envDuration("PAGEKIT_SCROLL_DURATION"); ok {
		config.Page.Scroll.Duration = d
	}

	if f, ok := envFloat("PAGEKIT_HEADER_OFFSET"); ok {
		config.Page.Scroll.HeaderOffset = f
	}

	if b, ok := envBool("PAGEKIT_NATIVE_SMOOTH"); ok {
		config.Page.Scroll.NativeSmooth = b
	}

	if d, ok := envDuration("PAGEKIT_FRAME_INTERVAL"); ok {
		config.Page.Scroll.FrameInterval = d
	}

	if f, ok := envFloat("PAGEKIT_VIEWPORT_HEIGHT"); ok {
		config.Page.ViewportHeight = f
	}

	// Rate limits
	if d, ok := envDuration("PAGEKIT_THROTTLE_WAIT"); ok {
		config.Page.Throttle.Wait = d
	}

	if b, ok := envBool("PAGEKIT_THROTTLE_LEADING"); ok {
		config.Page.Throttle.Leading = b
	}

	if b, ok := envBool("PAGEKIT_THROTTLE_TRAILING"); ok {
		config.Page.Throttle.Trailing = b
	}

	if d, ok := envDuration("PAGEKIT_DEBOUNCE_WAIT"); ok {
		config.Page.Debounce.Wait = d
	}

	if b, ok := envBool("PAGEKIT_DEBOUNCE_IMMEDIATE"); ok {
		config.Page.Debounce.Immediate = b
	}

	// Gallery
	if lightbox, ok := os.LookupEnv("PAGEKIT_LIGHTBOX"); ok {
		config.Page.Lightbox = lightbox
	}

	if img := os.Getenv("PAGEKIT_LAZYLOAD_ERROR_IMAGE"); img != "" {
		config.Page.LazyLoad.ErrorImage = img
	}

	if sel := os.Getenv("PAGEKIT_COMMENT_SELECTOR"); sel != "" {
		config.Page.CommentSelector = sel
	}

	// Logging configuration
	if level := os.Getenv("PAGEKIT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := os.Getenv("PAGEKIT_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if output := os.Getenv("PAGEKIT_LOG_OUTPUT"); output != "" {
		config.Logging.Output = output
	}

	if filePath := os.Getenv("PAGEKIT_LOG_FILE_PATH"); filePath != "" {
		config.Logging.FilePath = filePath
	}

	// Metrics configuration
	if b, ok := envBool("PAGEKIT_METRICS_ENABLED"); ok {
		config.Metrics.Enabled = b
	}

	if path := os.Getenv("PAGEKIT_METRICS_PATH"); path != "" {
		config.Metrics.Path = path
	}

	if port := os.Getenv("PAGEKIT_METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Metrics.Port = p
		}
	}

	// Tracing configuration
	if b, ok := envBool("PAGEKIT_TRACING_ENABLED"); ok {
		config.Observability.Tracing.Enabled = b
	}

	if exporter := os.Getenv("PAGEKIT_TRACING_EXPORTER"); exporter != "" {
		config.Observability.Tracing.Exporter = exporter
	}

	if endpoint := os.Getenv("PAGEKIT_OTLP_ENDPOINT"); endpoint != "" {
		config.Observability.Tracing.OTLPEndpoint = endpoint
	}

	if f, ok := envFloat("PAGEKIT_TRACING_SAMPLE_RATE"); ok {
		config.Observability.Tracing.SampleRate = f
	}
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	return d, err == nil
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	return strings.ToLower(v) == "true", true
}

// SaveExample saves an example configuration file
func SaveExample(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	config := models.NewDefaultConfig()
	config.Page.LazyLoad.ErrorImage = "/img/404.jpg"
	config.Observability.Tracing.OTLPEndpoint = "localhost:4317"

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
