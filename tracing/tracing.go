// Package tracing wires OpenTelemetry for the server. Spans are opened per
// tool call and per Azure DevOps API call; exporting is off unless the
// standard OTEL_* variables ask for it.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "azure-devops-mcp-server"

// Exporter selects where finished spans go.
type Exporter string

const (
	ExporterNone    Exporter = "none"
	ExporterOTLP    Exporter = "otlp"
	ExporterConsole Exporter = "console"
)

// Config holds tracing configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Exporter       Exporter
	OTLPEndpoint   string  // host:port, or a full URL
	SampleRate     float64 // applied to root spans; children follow their parent

	// Console receives spans for ExporterConsole. Stdout carries the MCP
	// stdio transport, so FromEnv sets stderr.
	Console io.Writer
}

// FromEnv reads OTEL_SDK_DISABLED, OTEL_TRACES_EXPORTER,
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_SERVICE_NAME, OTEL_DEPLOYMENT_ENVIRONMENT
// and OTEL_TRACES_SAMPLER_ARG. Without an exporter or endpoint tracing is off.
func FromEnv(version string) (Config, error) {
	cfg := Config{
		ServiceName:    envOr("OTEL_SERVICE_NAME", TracerName),
		ServiceVersion: version,
		Environment:    envOr("OTEL_DEPLOYMENT_ENVIRONMENT", "development"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SampleRate:     1.0,
		Console:        os.Stderr,
	}

	switch exp := Exporter(strings.ToLower(os.Getenv("OTEL_TRACES_EXPORTER"))); exp {
	case "":
		cfg.Exporter = ExporterNone
		if cfg.OTLPEndpoint != "" {
			cfg.Exporter = ExporterOTLP
		}
	case ExporterNone, ExporterOTLP, ExporterConsole:
		cfg.Exporter = exp
	default:
		return Config{}, fmt.Errorf("OTEL_TRACES_EXPORTER: unsupported exporter %q (want otlp, console or none)", exp)
	}
	if strings.EqualFold(os.Getenv("OTEL_SDK_DISABLED"), "true") {
		cfg.Exporter = ExporterNone
	}

	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: %w", err)
		}
		cfg.SampleRate = rate
	}
	return cfg, nil
}

// Setup installs a global tracer provider and returns its shutdown func.
// With ExporterNone it installs nothing and spans stay no-ops.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Exporter == "" || cfg.Exporter == ExporterNone {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterOTLP:
		var opts []otlptracehttp.Option
		switch {
		case strings.Contains(cfg.OTLPEndpoint, "://"):
			opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		case cfg.OTLPEndpoint != "":
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterConsole:
		w := cfg.Console
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}

// newSampler samples root spans at rate. Spans under a remote parent (HTTP
// transport with a traceparent header) follow the parent's decision.
func newSampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

// StartSpan starts a span on the server's tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, opts...)
}

// AddToolAttributes tags a tool span.
func AddToolAttributes(span trace.Span, toolName, area string) {
	span.SetAttributes(
		attribute.String("mcp.tool.name", toolName),
		attribute.String("mcp.tool.area", area),
	)
}

// AddDevOpsAttributes tags an API span with the Azure DevOps area, action and project.
func AddDevOpsAttributes(span trace.Span, area, action, project string) {
	span.SetAttributes(
		attribute.String("azdo.area", area),
		attribute.String("azdo.action", action),
	)
	if project != "" {
		span.SetAttributes(attribute.String("azdo.project", project))
	}
}

func AddWikiAttributes(span trace.Span, wikiID, path string) {
	if wikiID != "" {
		span.SetAttributes(attribute.String("azdo.wiki.id", wikiID))
	}
	if path != "" {
		span.SetAttributes(attribute.String("azdo.wiki.page_path", path))
	}
}

// RecordError marks span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
