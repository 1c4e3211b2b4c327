package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"incidentcli/internal/config"
	"incidentcli/internal/dataprocessing"
)

const MeterName = "incidentcli"

// Telemetry holds the OpenTelemetry providers of one merge run.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Metrics        *RunMetrics
	Logger         *slog.Logger

	traceFile   *os.File
	metricsFile string
}

// InitializeOTel sets up tracing and metrics for a run. Spans are written to
// cfg.TraceFile when set, otherwise tracing stays a no-op. Metrics are always
// collected and written as a Prometheus textfile to cfg.MetricsFile on
// Shutdown when that is set.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	t := &Telemetry{
		Logger:      logger,
		metricsFile: cfg.MetricsFile,
	}

	if err := t.initializeTracing(ctx, cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.initializeMetrics(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", t.TracerProvider != nil),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

func (t *Telemetry) initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource) error {
	if cfg.TraceFile == "" {
		t.Tracer = otel.Tracer(MeterName)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	f, err := os.Create(cfg.TraceFile)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)
	otel.SetTracerProvider(tp)

	t.traceFile = f
	t.TracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))

	t.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("trace_file", cfg.TraceFile),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

func (t *Telemetry) initializeMetrics(ctx context.Context, res *resource.Resource) error {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	metrics, err := CreateRunMetrics(mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion)))
	if err != nil {
		return err
	}

	t.Registry = reg
	t.MeterProvider = mp
	t.Metrics = metrics

	t.Logger.DebugContext(ctx, "Metrics initialized")
	return nil
}

// RunMetrics holds the counters of a merge run.
type RunMetrics struct {
	FilesProcessed   metric.Int64Counter
	RowsRead         metric.Int64Counter
	RowsWritten      metric.Int64Counter
	RowsDropped      metric.Int64Counter
	IrregularWindows metric.Int64Counter
	UnparsedTimes    metric.Int64Counter
	OverriddenRows   metric.Int64Counter
	RunDuration      metric.Float64Histogram
}

// CreateRunMetrics creates the run instruments on meter.
func CreateRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	m := &RunMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.FilesProcessed, "incident_files_processed", "Input workbooks merged"},
		{&m.RowsRead, "incident_rows_read", "Data rows read from input workbooks"},
		{&m.RowsWritten, "incident_rows_written", "Rows written to the report"},
		{&m.RowsDropped, "incident_rows_dropped", "Rows dropped as empty"},
		{&m.IrregularWindows, "incident_irregular_windows", "Rows whose incident ends before it starts"},
		{&m.UnparsedTimes, "incident_unparsed_times", "Time cells that could not be parsed"},
		{&m.OverriddenRows, "incident_business_hours_overrides", "Rows whose business hours were overridden"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	hist, err := meter.Float64Histogram(
		"incident_run_duration_seconds",
		metric.WithDescription("Duration of a merge run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident_run_duration_seconds: %w", err)
	}
	m.RunDuration = hist

	return m, nil
}

// RecordBatch adds the outcome of one processed input file.
func (m *RunMetrics) RecordBatch(ctx context.Context, source string, stats dataprocessing.BatchStats) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("file", source))
	m.FilesProcessed.Add(ctx, 1, attrs)
	m.RowsRead.Add(ctx, int64(stats.RowsRead), attrs)
	m.RowsDropped.Add(ctx, int64(stats.RowsDropped), attrs)
	m.IrregularWindows.Add(ctx, int64(stats.IrregularRows), attrs)
	m.UnparsedTimes.Add(ctx, int64(stats.UnparsedTimes), attrs)
	m.OverriddenRows.Add(ctx, int64(stats.OverriddenRows), attrs)
}

// RecordRun records the final outcome of the run.
func (m *RunMetrics) RecordRun(ctx context.Context, rowsWritten int, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.RowsWritten.Add(ctx, int64(rowsWritten))
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// Shutdown writes the metrics textfile, flushes spans and releases the
// providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.metricsFile != "" && t.Registry != nil {
		if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
			errs = append(errs, fmt.Errorf("metrics directory: %w", err))
		} else if err := prometheus.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
			errs = append(errs, fmt.Errorf("metrics textfile: %w", err))
		}
	}

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.traceFile != nil {
		if err := t.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %w", errors.Join(errs...))
	}

	t.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
