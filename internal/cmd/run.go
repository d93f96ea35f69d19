package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"pagekit/internal/logger"
	"pagekit/internal/observability"
	"pagekit/internal/version"

	"github.com/spf13/cobra"
)

var (
	runDuration time.Duration
	runInterval time.Duration
	runStep     float64
	runPage     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the page runtime against a headless reader",
	Long: `Run the page runtime on an annotated HTML page while a simulated reader
scrolls through it. Scroll and resize handling, comment loading, smooth
scrolling and navigation teardown run on the wall clock; metrics and
health are served on the metrics port.

Runs until interrupted or until --duration elapses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if runDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runDuration)
			defer cancel()
		}
		return run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "stop after this long (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 50*time.Millisecond, "time between reader scroll steps")
	runCmd.Flags().Float64Var(&runStep, "step", 120, "pixels scrolled per step")
	runCmd.Flags().StringVar(&runPage, "page", "", "annotated HTML page to load (defaults to the built-in demo)")
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ver := version.GetInfo()
	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	instr, err := observability.NewInstrumentation(nil, nil)
	if err != nil {
		return fmt.Errorf("create instrumentation: %w", err)
	}

	source := demoPage
	if runPage != "" {
		if source, err = os.ReadFile(runPage); err != nil {
			return fmt.Errorf("read page: %w", err)
		}
	}

	sim, err := newSimulation(source, cfg, simOptions{
		LimiterObserver: instr,
		ScrollObserver:  instr,
		Logger:          log,
		Step:            runStep,
	})
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}
	defer sim.Close()

	var running atomic.Bool
	var statusServer *observability.StatusServer
	if cfg.Metrics.Enabled {
		opts := []observability.StatusOption{
			observability.WithMetricsPath(cfg.Metrics.Path),
			observability.WithHealthCheck(func(context.Context) error {
				if !running.Load() {
					return errors.New("page runtime not running")
				}
				return nil
			}),
		}
		if otelProvider.TracingEnabled() {
			opts = append(opts, observability.WithTracing(cfg.Observability.ServiceName))
		}
		statusServer = observability.NewStatusServer(cfg.Metrics.Port, otelProvider, ver, opts...)
		go func() {
			if err := statusServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Status server failed", "error", err)
			}
		}()
	}

	attrs := make([]any, 0, 8)
	for _, a := range ver.Attrs() {
		attrs = append(attrs, a)
	}
	attrs = append(attrs, "lightbox", cfg.Page.Lightbox, "metrics", cfg.Metrics.Enabled)
	log.Info("Starting page runtime", attrs...)

	if err := sim.Start(ctx); err != nil {
		return fmt.Errorf("start page: %w", err)
	}
	running.Store(true)

	ticker := time.NewTicker(runInterval)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			sim.Step()
		}
	}
	running.Store(false)

	stats := sim.Stats()
	log.Info("Stopping page runtime",
		"scrolls", stats.Scrolls,
		"resizes", stats.Resizes,
		"comment_loads", stats.CommentLoads,
		"notifications_dropped", stats.NotificationsCut,
		"passes", sim.Passes(),
	)

	if statusServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Status server forced to shutdown", "error", err)
		}
	}
	return nil
}
