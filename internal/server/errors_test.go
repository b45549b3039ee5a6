package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// helper to parse the module error body
type stdError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) stdError {
	t.Helper()
	var e stdError
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal error: %v; body=%s", err, rr.Body.String())
	}
	return e
}

func TestCalculate_OriginUnresolved_ErrorJSON(t *testing.T) {
	h := New(Options{})
	body := []byte(`{
		"params": {"to": {"zip": "30130010"}, "items": []},
		"application": {"hidden_data": {"shipping_rules": [{"service_code": "PAC", "total_price": 10}]}}
	}`)
	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
	}
	e := decodeError(t, rr)
	if e.Error != "CALCULATE_ERR" || e.Message == "" {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestCalculate_InvalidJSON_ErrorJSON(t *testing.T) {
	h := New(Options{})
	rr := postCalculate(t, h, []byte(`{"params":`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Error != "INVALID_JSON" {
		t.Fatalf("unexpected error code: %s", e.Error)
	}
}

func TestCalculate_BodyTooLarge_ErrorJSON(t *testing.T) {
	h := New(Options{MaxBodyBytes: 16})
	rr := postCalculate(t, h, []byte(`{"params": {"service_code": "`+strings.Repeat("A", 64)+`"}}`))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d; body=%s", rr.Code, rr.Body.String())
	}
}

func TestCalculate_InvalidConfig_ErrorJSON(t *testing.T) {
	h := New(Options{})
	body := []byte(`{
		"params": {"to": {"zip": "30130010"}},
		"application": {"data": {"zip": "not-a-zip", "shipping_rules": [{"service_code": "has space"}]}}
	}`)
	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Error != "INVALID_PARAMS" {
		t.Fatalf("unexpected error code: %s", e.Error)
	}
	if !strings.Contains(e.Message, "zip") || !strings.Contains(e.Message, "shipping_rules[0].service_code") {
		t.Fatalf("unexpected message: %s", e.Message)
	}
}

func TestCalculate_InvalidApplicationData_ErrorJSON(t *testing.T) {
	h := New(Options{})
	rr := postCalculate(t, h, []byte(`{"params": {}, "application": {"data": "oops"}}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Error != "INVALID_PARAMS" {
		t.Fatalf("unexpected error code: %s", e.Error)
	}
}

func TestGetQuote_Errors(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		path   string
		status int
		code   string
	}{
		{"bad id", Options{Quotes: &memQuotes{}}, "/quotes/not-a-uuid", http.StatusBadRequest, "invalid_request"},
		{"disabled", Options{}, "/quotes/" + uuid.NewString(), http.StatusServiceUnavailable, "quote_log_disabled"},
		{"missing", Options{Quotes: &memQuotes{}}, "/quotes/" + uuid.NewString(), http.StatusNotFound, "resource_not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.opts)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, bytes.NewReader(nil)))
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d; body=%s", tt.status, rr.Code, rr.Body.String())
			}
			if e := decodeError(t, rr); e.Error != tt.code {
				t.Fatalf("unexpected error code: %s", e.Error)
			}
		})
	}
}
