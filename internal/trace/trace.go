package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "stocklog"
	serviceVersion = "0.3.0"
)

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	spanFile       *os.File
	enabled        bool
)

// TraceConfig controls span export. Output wins over OutputPath; with
// neither set spans go to stderr so they never mix with command output.
type TraceConfig struct {
	Enabled     bool
	OutputPath  string    // "", "stderr" or a file spans are appended to
	Output      io.Writer // overrides OutputPath, mainly for tests
	SampleRatio float64   // fraction of root spans kept, 0 or 1 keeps all
	PrettyPrint bool
}

// Init configures tracing from the environment
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// LoadConfigFromEnv reads LOG_TRACING_ENABLED, LOG_TRACING_OUTPUT,
// LOG_TRACING_SAMPLE_RATIO and LOG_TRACING_PRETTY
func LoadConfigFromEnv() TraceConfig {
	ratio, err := strconv.ParseFloat(getEnv("LOG_TRACING_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		ratio = 1
	}
	return TraceConfig{
		Enabled:     getEnv("LOG_TRACING_ENABLED", "false") == "true",
		OutputPath:  getEnv("LOG_TRACING_OUTPUT", "stderr"),
		SampleRatio: ratio,
		PrettyPrint: getEnv("LOG_TRACING_PRETTY", "true") == "true",
	}
}

func InitWithConfig(cfg TraceConfig) error {
	enabled = false
	if !cfg.Enabled {
		return nil
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio %v outside [0,1]", cfg.SampleRatio)
	}

	out, err := spanWriter(cfg)
	if err != nil {
		return err
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return err
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	enabled = true
	return nil
}

func spanWriter(cfg TraceConfig) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	switch cfg.OutputPath {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return nil, errors.New("trace output cannot be stdout, it carries command output")
	}
	f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	spanFile = f
	return f, nil
}

// Shutdown flushes pending spans and turns tracing off
func Shutdown(ctx context.Context) error {
	var err error
	if tracerProvider != nil {
		err = tracerProvider.Shutdown(ctx)
	}
	if spanFile != nil {
		err = errors.Join(err, spanFile.Close())
	}
	tracerProvider, tracer, spanFile, enabled = nil, nil, nil, false
	return err
}

// StartSpan returns the context's current span unchanged when tracing is
// off, so callers can always defer span.End().
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

func Enabled() bool {
	return enabled
}

func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
