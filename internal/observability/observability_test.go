package observability

import (
	"context"
	"testing"

	"pagekit/internal/models"
	"pagekit/internal/version"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_MetricsOnly(t *testing.T) {
	metrics := models.MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}
	obs := models.ObservabilityConfig{ServiceName: "test-service"}
	reg := prometheus.NewRegistry()

	provider, err := Setup(metrics, obs, version.Info{}, WithRegistry(reg))
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.promExporter)
	assert.Nil(t, provider.tracerProvider)
	assert.False(t, provider.TracingEnabled())
	assert.Equal(t, prometheus.Gatherer(reg), provider.Gatherer())

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSetup_TracingStdout(t *testing.T) {
	obs := models.ObservabilityConfig{
		ServiceName: "test-service",
		Tracing: models.TracingConfig{
			Enabled:    true,
			Exporter:   "stdout",
			SampleRate: 1.0,
		},
	}

	provider, err := Setup(models.MetricsConfig{Enabled: false}, obs, version.Info{})
	require.NoError(t, err)
	assert.True(t, provider.TracingEnabled())
	assert.Nil(t, provider.promExporter)
	assert.Nil(t, provider.Gatherer())

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSetup_BothDisabled(t *testing.T) {
	provider, err := Setup(models.MetricsConfig{}, models.ObservabilityConfig{}, version.Info{})
	require.NoError(t, err)
	assert.Nil(t, provider.tracerProvider)
	assert.Nil(t, provider.promExporter)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSetup_InvalidExporter(t *testing.T) {
	obs := models.ObservabilityConfig{
		ServiceName: "test-service",
		Tracing:     models.TracingConfig{Enabled: true, Exporter: "invalid", SampleRate: 1.0},
	}

	provider, err := Setup(models.MetricsConfig{}, obs, version.Info{})
	assert.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestSetup_SamplerConfigurations(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
	}{
		{"always sample", 1.0},
		{"never sample", 0.0},
		{"ratio based", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := models.ObservabilityConfig{
				ServiceName: "test",
				Tracing:     models.TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: tt.sampleRate},
			}

			provider, err := Setup(models.MetricsConfig{}, obs, version.Info{})
			require.NoError(t, err)
			assert.NoError(t, provider.Shutdown(context.Background()))
		})
	}
}

func TestProvider_ShutdownNilProviders(t *testing.T) {
	p := &Provider{}
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("DEPLOYMENT_ENV", "")
	assert.Equal(t, "development", getEnvironment())

	t.Setenv("DEPLOYMENT_ENV", "staging")
	assert.Equal(t, "staging", getEnvironment())

	t.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, "production", getEnvironment())
}
