package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pagekit/internal/version"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// HealthCheck reports an error when the process is unhealthy.
type HealthCheck func(ctx context.Context) error

type statusOptions struct {
	metricsPath string
	serviceName string
	health      HealthCheck
}

// StatusOption configures a StatusServer.
type StatusOption func(*statusOptions)

// WithMetricsPath sets where metrics are served. Defaults to /metrics.
func WithMetricsPath(path string) StatusOption {
	return func(o *statusOptions) { o.metricsPath = path }
}

// WithTracing adds OpenTelemetry HTTP middleware for requests other than
// health and metrics scrapes.
func WithTracing(serviceName string) StatusOption {
	return func(o *statusOptions) { o.serviceName = serviceName }
}

// WithHealthCheck sets the check consulted by /health.
func WithHealthCheck(check HealthCheck) StatusOption {
	return func(o *statusOptions) { o.health = check }
}

// StatusServer serves /health and Prometheus metrics on a separate port.
type StatusServer struct {
	server *http.Server
	router *mux.Router
}

// NewStatusServer creates a status server listening on port. Metrics are
// served only when provider exports them.
func NewStatusServer(port int, provider *Provider, ver version.Info, opts ...StatusOption) *StatusServer {
	o := statusOptions{metricsPath: "/metrics"}
	for _, opt := range opts {
		opt(&o)
	}

	router := mux.NewRouter()
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)
	router.Use(recoveryMiddleware, loggingMiddleware)
	if o.serviceName != "" {
		metricsPath := o.metricsPath
		router.Use(otelmux.Middleware(o.serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" && r.URL.Path != metricsPath
			}),
		))
	}

	router.HandleFunc("/health", healthHandler(ver, o.health)).Methods(http.MethodGet)
	if provider != nil && provider.Gatherer() != nil {
		router.Handle(o.metricsPath, promhttp.HandlerFor(provider.Gatherer(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return &StatusServer{
		router: router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the router.
func (s *StatusServer) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. Returns http.ErrServerClosed on graceful
// shutdown.
func (s *StatusServer) Start() error {
	slog.Info("Starting status server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	InstanceID string `json:"instance_id"`
}

func healthHandler(ver version.Info, check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:     "healthy",
			Version:    ver.Version,
			GitCommit:  ver.GitCommit,
			InstanceID: ver.InstanceID,
		}
		code := http.StatusOK
		if check != nil {
			if err := check(r.Context()); err != nil {
				resp.Status = "unhealthy"
				resp.Error = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("Failed to encode health response", "error", err)
		}
	}
}
