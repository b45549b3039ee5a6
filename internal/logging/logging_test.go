package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		log, err := New(in)
		if err != nil {
			t.Fatalf("New(%q): %v", in, err)
		}
		if !log.Core().Enabled(want) {
			t.Fatalf("New(%q): level %v not enabled", in, want)
		}
		if want > zapcore.DebugLevel && log.Core().Enabled(want-1) {
			t.Fatalf("New(%q): level %v should be disabled", in, want-1)
		}
	}
}

func TestMiddlewareLogsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", "rid-1")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("tea"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/brew" || fields["request_id"] != "rid-1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["bytes"] != int64(3) {
		t.Fatalf("unexpected bytes: %v", fields["bytes"])
	}
}

func TestMiddlewareErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if logs.Len() != 1 || logs.All()[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected one error entry, got %+v", logs.All())
	}
}
