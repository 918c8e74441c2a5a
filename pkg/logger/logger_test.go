package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestNewLogger(t *testing.T) {
	config := Config{
		Level:   DebugLevel,
		Format:  "json",
		Service: "test-service",
	}

	logger := NewLogger(config)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
}

func TestLoggerWithFields(t *testing.T) {
	logger := NewLogger(Config{Level: InfoLevel, Format: "json", Service: "test-service"})

	loggerWithFields := logger.WithFields(
		StringField("key1", "value1"),
		StringField("key2", "value2"),
	)

	// Original logger should not be affected (immutable)
	if logger == loggerWithFields {
		t.Error("WithFields should return a new logger instance")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Level:   InfoLevel,
		Format:  "json",
		Service: "places",
		Output:  &buf,
	})

	logger.Info("hello", SessionIDField("abc"), ToolField("search_places"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("expected msg 'hello', got %v", entry["msg"])
	}
	if entry["service"] != "places" {
		t.Errorf("expected service 'places', got %v", entry["service"])
	}
	if entry["session_id"] != "abc" {
		t.Errorf("expected session_id 'abc', got %v", entry["session_id"])
	}
	if entry["tool"] != "search_places" {
		t.Errorf("expected tool 'search_places', got %v", entry["tool"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Level:  WarnLevel,
		Format: "json",
		Output: &buf,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info suppressed at warn level, got %q", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("expected warn message to be logged")
	}
}

func TestCorrelationIDContext(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelationIDFromContext(ctx); got != "" {
		t.Errorf("expected empty correlation ID, got %q", got)
	}

	ctx = WithCorrelationIDContext(ctx, "test-id")
	if got := GetCorrelationIDFromContext(ctx); got != "test-id" {
		t.Errorf("expected 'test-id', got %q", got)
	}
}

func TestEnsureHTTPCorrelationID(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantSame  bool
	}{
		{name: "missing header generates new ID", header: "", wantSame: false},
		{name: "valid UUID is preserved", header: uuid.New().String(), wantSame: true},
		{name: "invalid UUID is replaced", header: "not-a-uuid", wantSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("X-Correlation-ID", tt.header)
			}

			r, id := EnsureHTTPCorrelationID(r)

			if id == "" {
				t.Fatal("expected non-empty correlation ID")
			}
			if tt.wantSame && id != tt.header {
				t.Errorf("expected header %q preserved, got %q", tt.header, id)
			}
			if !tt.wantSame && id == tt.header {
				t.Error("expected header to be replaced")
			}
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("correlation ID %q is not a UUID: %v", id, err)
			}
			if got := GetCorrelationIDFromContext(r.Context()); got != id {
				t.Errorf("context correlation ID %q does not match %q", got, id)
			}
		})
	}
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: InfoLevel, Format: "json", Output: &buf})

	handler := logger.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/places", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"http_status":"418"`)) {
		t.Errorf("expected logged status 418, got %q", buf.String())
	}
}
