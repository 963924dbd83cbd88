package telemetry

import (
	"context"
	"testing"
)

func TestSetupTracingDisabledWithoutURL(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{ServiceName: "svc"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected no-op shutdown, got %v", err)
	}
}

func TestSetupTracingWithZipkin(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{
		ZipkinURL:   "http://127.0.0.1:9411/api/v2/spans",
		ServiceName: "svc",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
