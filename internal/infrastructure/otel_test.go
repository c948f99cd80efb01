package infrastructure

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"retailflow/internal/config"
)

func TestInitializeTelemetryDisabled(t *testing.T) {
	var buf bytes.Buffer
	providers, err := InitializeTelemetry(context.Background(), config.TelemetryConfig{
		Enabled:        false,
		TraceExporter:  "none",
		MetricExporter: "none",
	}, "1.0.0", NewLogger(&buf, "info"))
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Metrics)
	assert.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "telemetry_initialized")
}

func TestPipelineMetricsRecording(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewPipelineMetrics(mp.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordDataset(ctx, "magasins", 50, 47)
	metrics.RecordExpectations(ctx, "magasins_suite", 6, 2)
	metrics.RecordGate(ctx, false)
	metrics.RecordRun(ctx, "FAILED", 1.5)
	metrics.RecordStage(ctx, "CLEANING", 0.5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	for _, want := range []string{
		"pipeline_rows_in_total",
		"pipeline_rows_out_total",
		"pipeline_expectations_total",
		"pipeline_gate_decisions_total",
		"pipeline_runs_total",
		"pipeline_run_duration_seconds",
		"pipeline_stage_duration_seconds",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestNoopPipelineMetrics(t *testing.T) {
	metrics := NoopPipelineMetrics()
	require.NotNil(t, metrics)
	assert.NotPanics(t, func() {
		metrics.RecordRun(context.Background(), "DONE", 0.1)
	})
}
