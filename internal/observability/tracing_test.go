package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Fatal("disabled tracing should produce invalid span contexts")
	}
	span.End()
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 1}, nil)
	if err == nil {
		t.Fatal("expected an error for an unsupported exporter")
	}
}

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("HFPROP_TRACING_ENABLED", "true")
	t.Setenv("HFPROP_TRACING_EXPORTER", "OTLP")
	t.Setenv("HFPROP_TRACING_SAMPLE_RATIO", "7")

	cfg, err := TracingConfigFromEnv(context.Background())
	if err != nil {
		t.Fatalf("TracingConfigFromEnv: %v", err)
	}
	if !cfg.Enabled || cfg.Exporter != "otlp" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.SampleRatio != 1 {
		t.Fatalf("out of range ratio should fall back to 1, got %v", cfg.SampleRatio)
	}
	if cfg.ServiceName != "hfprop" {
		t.Fatalf("ServiceName = %q", cfg.ServiceName)
	}
}

func TestShutdownWithTimeout_Nil(t *testing.T) {
	ShutdownWithTimeout(context.Background(), nil, nil)
}
