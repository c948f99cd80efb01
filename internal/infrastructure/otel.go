package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"retailflow/internal/config"
)

const (
	ServiceName = "retailflow-pipeline"
	MeterName   = "retailflow"
)

// TelemetryProviders holds the OpenTelemetry providers and the pipeline instruments
type TelemetryProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Metrics        *PipelineMetrics
}

// InitializeTelemetry wires tracing and metrics according to cfg.
// When telemetry is disabled the returned providers use the global no-op implementations.
func InitializeTelemetry(ctx context.Context, cfg config.TelemetryConfig, version string, logger *slog.Logger) (*TelemetryProviders, error) {
	providers := &TelemetryProviders{
		Tracer: otel.Tracer(MeterName),
		Meter:  noop.NewMeterProvider().Meter(MeterName),
	}

	if cfg.Enabled {
		res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}

		if cfg.TraceExporter == "stdout" {
			exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
			if err != nil {
				return nil, fmt.Errorf("failed to create trace exporter: %w", err)
			}
			tp := sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(exporter),
				sdktrace.WithResource(res),
				sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
			)
			otel.SetTracerProvider(tp)
			providers.TracerProvider = tp
			providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(version))
		}

		if cfg.MetricExporter == "prometheus" {
			exporter, err := prometheus.New()
			if err != nil {
				return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
			}
			mp := sdkmetric.NewMeterProvider(
				sdkmetric.WithResource(res),
				sdkmetric.WithReader(exporter),
			)
			otel.SetMeterProvider(mp)
			providers.MeterProvider = mp
			providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(version))
			providers.PrometheusHTTP = promhttp.Handler()
		}

		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	metrics, err := NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	providers.Metrics = metrics

	logger.InfoContext(ctx, "telemetry_initialized",
		slog.Bool("enabled", cfg.Enabled),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	return providers, nil
}

// Shutdown flushes and stops the providers that were started
func (p *TelemetryProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PipelineMetrics contains the instruments recorded by pipeline runs and the HTTP surface
type PipelineMetrics struct {
	RunsTotal             metric.Int64Counter
	RunDuration           metric.Float64Histogram
	StageDuration         metric.Float64Histogram
	RowsIn                metric.Int64Counter
	RowsOut               metric.Int64Counter
	ExpectationsEvaluated metric.Int64Counter
	GateDecisions         metric.Int64Counter
	ActiveRuns            metric.Int64UpDownCounter
	HTTPRequestsTotal     metric.Int64Counter
}

// NewPipelineMetrics creates every pipeline instrument on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Pipeline runs by final status"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Wall-clock duration of pipeline runs"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.StageDuration, err = meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Duration of individual pipeline stages"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.RowsIn, err = meter.Int64Counter(
		"pipeline_rows_in_total",
		metric.WithDescription("Rows read before cleaning, per dataset"),
	); err != nil {
		return nil, err
	}
	if m.RowsOut, err = meter.Int64Counter(
		"pipeline_rows_out_total",
		metric.WithDescription("Rows kept after cleaning, per dataset"),
	); err != nil {
		return nil, err
	}
	if m.ExpectationsEvaluated, err = meter.Int64Counter(
		"pipeline_expectations_total",
		metric.WithDescription("Expectation evaluations by outcome"),
	); err != nil {
		return nil, err
	}
	if m.GateDecisions, err = meter.Int64Counter(
		"pipeline_gate_decisions_total",
		metric.WithDescription("Quality gate decisions by outcome"),
	); err != nil {
		return nil, err
	}
	if m.ActiveRuns, err = meter.Int64UpDownCounter(
		"pipeline_active_runs",
		metric.WithDescription("Pipeline runs currently executing"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("HTTP requests by route and status"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// NoopPipelineMetrics returns instruments that record nothing
func NoopPipelineMetrics() *PipelineMetrics {
	m, _ := NewPipelineMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordDataset records row counts for one cleaned dataset
func (m *PipelineMetrics) RecordDataset(ctx context.Context, dataset string, rowsIn, rowsOut int) {
	attrs := metric.WithAttributes(attribute.String("dataset", dataset))
	m.RowsIn.Add(ctx, int64(rowsIn), attrs)
	m.RowsOut.Add(ctx, int64(rowsOut), attrs)
}

// RecordExpectations records passed and failed evaluations for one suite
func (m *PipelineMetrics) RecordExpectations(ctx context.Context, suite string, passed, failed int) {
	m.ExpectationsEvaluated.Add(ctx, int64(passed), metric.WithAttributes(
		attribute.String("suite", suite), attribute.String("outcome", "passed")))
	m.ExpectationsEvaluated.Add(ctx, int64(failed), metric.WithAttributes(
		attribute.String("suite", suite), attribute.String("outcome", "failed")))
}

// RecordGate records a quality gate decision
func (m *PipelineMetrics) RecordGate(ctx context.Context, passed bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.GateDecisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRun records a finished run
func (m *PipelineMetrics) RecordRun(ctx context.Context, status string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, seconds, attrs)
}

// RecordStage records the duration of one stage
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, seconds float64) {
	m.StageDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("stage", stage)))
}
