package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOriginAllowList(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name      string
		method    string
		origin    string
		status    int
		allowOrig string
		preflight bool
	}{
		{name: "no origin", method: http.MethodGet, status: http.StatusOK},
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:3000", status: http.StatusOK, allowOrig: "http://localhost:3000"},
		{name: "unlisted origin", method: http.MethodGet, origin: "https://evil.example", status: http.StatusForbidden},
		{name: "allowed preflight", method: http.MethodOptions, origin: "http://localhost:3000", status: http.StatusNoContent, allowOrig: "http://localhost:3000", preflight: true},
		{name: "unlisted preflight", method: http.MethodOptions, origin: "https://evil.example", status: http.StatusForbidden, preflight: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/todos", nil)
			if tt.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tt.origin)
			}
			if tt.preflight {
				req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != tt.allowOrig {
				t.Fatalf("unexpected allow-origin %q", got)
			}
		})
	}
}

func TestWildcardOriginAllowsAny(t *testing.T) {
	e := New(Options{AllowedOrigins: []string{"*"}}, failingTasks{}, failingSnapshots{}, quietLogger())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(echo.HeaderOrigin, "https://anywhere.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestServer(t)
	rec := do(t, e, http.MethodGet, "/todos", "")
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("expected request id header")
	}
}

func TestRequestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
	})

	e := New(Options{AllowedOrigins: testOrigins}, failingTasks{}, failingSnapshots{}, quietLogger())
	do(t, e, http.MethodGet, "/todos", "")

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "GET /todos" {
		t.Fatalf("unexpected span name %q", span.Name())
	}
	if span.Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", span.Status())
	}
	var status int64
	for _, attr := range span.Attributes() {
		if attr.Key == attribute.Key("http.status_code") {
			status = attr.Value.AsInt64()
		}
	}
	if status != http.StatusInternalServerError {
		t.Fatalf("expected status attribute 500, got %d", status)
	}
}
