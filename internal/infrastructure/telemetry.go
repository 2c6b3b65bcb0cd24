package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"sheetcli/internal/config"
)

const (
	ServiceName = "sheetcli"
	MeterName   = "sheetcli"
)

// Telemetry holds the OpenTelemetry providers and the Prometheus registry
// backing the /metrics endpoint.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Metrics        *PipelineMetrics
	logger         *slog.Logger
}

// PipelineMetrics are the counters and histograms recorded by the
// load/filter/format pipeline and the mailer.
type PipelineMetrics struct {
	TablesLoaded   metric.Int64Counter
	LoadFailures   metric.Int64Counter
	ColumnsDropped metric.Int64Counter
	LoadDuration   metric.Float64Histogram
	EmailsSent     metric.Int64Counter
}

// InitTelemetry sets up tracing and metrics according to cfg and installs
// the providers globally. Disabled parts fall back to the otel no-op globals.
func InitTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	tel := &Telemetry{logger: logger}

	if cfg.Tracing && cfg.TraceExporter != "none" {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tel.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tel.TracerProvider)
		logger.InfoContext(ctx, "Tracing initialized", slog.String("exporter", cfg.TraceExporter))
	}

	if cfg.Metrics {
		tel.Registry = prometheus.NewRegistry()
		tel.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exporter, err := otelprom.New(otelprom.WithRegisterer(tel.Registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		tel.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		otel.SetMeterProvider(tel.MeterProvider)
		logger.InfoContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	}

	metrics, err := NewPipelineMetrics(otel.Meter(MeterName))
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	tel.Metrics = metrics

	return tel, nil
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	tablesLoaded, err := meter.Int64Counter(
		"tables_loaded_total",
		metric.WithDescription("Total number of spreadsheets loaded into the session"),
	)
	if err != nil {
		return nil, err
	}

	loadFailures, err := meter.Int64Counter(
		"table_load_failures_total",
		metric.WithDescription("Total number of failed loads by error type"),
	)
	if err != nil {
		return nil, err
	}

	columnsDropped, err := meter.Int64Counter(
		"sparse_columns_dropped_total",
		metric.WithDescription("Total number of columns removed by the sparse-column filter"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"table_load_duration_seconds",
		metric.WithDescription("Time spent parsing, filtering and formatting a spreadsheet"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	emailsSent, err := meter.Int64Counter(
		"emails_sent_total",
		metric.WithDescription("Total number of email sends by status"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		TablesLoaded:   tablesLoaded,
		LoadFailures:   loadFailures,
		ColumnsDropped: columnsDropped,
		LoadDuration:   loadDuration,
		EmailsSent:     emailsSent,
	}, nil
}

// RecordLoad records the outcome of one load.
func (m *PipelineMetrics) RecordLoad(ctx context.Context, duration time.Duration, dropped int, errType string) {
	if m == nil {
		return
	}
	status := "success"
	if errType != "" {
		status = "failure"
		m.LoadFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", errType)))
	} else {
		m.TablesLoaded.Add(ctx, 1)
		m.ColumnsDropped.Add(ctx, int64(dropped))
	}
	m.LoadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// RecordEmail records one send attempt.
func (m *PipelineMetrics) RecordEmail(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.EmailsSent.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// MetricsHandler returns the Prometheus scrape handler, or nil when metrics
// are disabled.
func (t *Telemetry) MetricsHandler() http.Handler {
	if t == nil || t.Registry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// Tracer returns the application tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(MeterName)
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
