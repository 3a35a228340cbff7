package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/model"
	"github.com/Bahjat/site-audit/backend/internal/platform/errs"
	"github.com/Bahjat/site-audit/backend/internal/platform/identity"
	"github.com/Bahjat/site-audit/backend/internal/ratelimit"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMux(provider Provider, gate Admitter, results ResultStore) *http.ServeMux {
	svc, _ := newTestService(provider, gate, results)
	transport := NewTransport(svc, identity.NewHasher("pepper"), false, discardLogger())
	transport.now = func() time.Time { return fixedNow }
	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)
	return mux
}

func postAudit(mux http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/audit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleAudit_Success(t *testing.T) {
	gate := allowAll()
	mux := newTestMux(&mockProvider{report: sampleReport()}, gate, &mockStore{})

	rec := postAudit(mux, `{"url": "https://example.com"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"id", "url", "timestamp", "scores", "findings", "recommendations", "meta", "technical"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response lacks %q", key)
		}
	}

	var report model.AuditReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Scores.Overall != 85 {
		t.Errorf("Overall = %d, want 85", report.Scores.Overall)
	}

	if gate.gotIdentity == "" || strings.Contains(gate.gotIdentity, "192.0.2.1") {
		t.Errorf("gate identity = %q, want an opaque hash", gate.gotIdentity)
	}
}

func TestHandleAudit_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty url", body: `{"url": ""}`},
		{name: "whitespace url", body: `{"url": "   "}`},
		{name: "missing body", body: ``},
		{name: "not json", body: `url=https://example.com`},
		{name: "unsupported scheme", body: `{"url": "ftp://example.com"}`},
		{name: "bad email", body: `{"url": "https://example.com", "email": "nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := allowAll()
			mux := newTestMux(&mockProvider{report: sampleReport()}, gate, &mockStore{})

			rec := postAudit(mux, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			var resp model.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest || resp.Message == "" {
				t.Errorf("error response = %+v", resp)
			}
			if gate.calls != 0 {
				t.Error("quota consumed by a bad request")
			}
		})
	}
}

func TestHandleAudit_RateLimited(t *testing.T) {
	resetAt := fixedNow.Add(59*time.Minute + 30*time.Second + 200*time.Millisecond)
	gate := &mockGate{decision: ratelimit.Decision{Allowed: false, ResetAt: resetAt}}
	mux := newTestMux(&mockProvider{report: sampleReport()}, gate, &mockStore{})

	rec := postAudit(mux, `{"url": "https://example.com"}`)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "3571" {
		t.Errorf("Retry-After = %q, want %q", got, "3571")
	}

	var resp model.RateLimitResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("error message empty")
	}
	if resp.RetryAfter != "2026-03-01T12:59:30Z" {
		t.Errorf("retryAfter = %q", resp.RetryAfter)
	}
}

func TestHandleAudit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unreachable", err: &errs.AppError{Kind: errs.Unreachable, Message: "cannot reach"}, wantStatus: http.StatusBadGateway},
		{name: "timeout", err: &errs.AppError{Kind: errs.Timeout, Message: "slow", Cause: context.DeadlineExceeded}, wantStatus: http.StatusGatewayTimeout},
		{name: "parsing failed", err: &errs.AppError{Kind: errs.ParsingFailed, Message: "broken"}, wantStatus: http.StatusInternalServerError},
		{name: "unknown kind", err: &errs.AppError{Kind: errs.Unknown, Message: "??"}, wantStatus: http.StatusInternalServerError},
		{name: "plain error", err: errStoreDown, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&mockProvider{err: tt.err}, allowAll(), &mockStore{})

			rec := postAudit(mux, `{"url": "https://example.com"}`)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleAudit_PlainErrorHidesDetails(t *testing.T) {
	mux := newTestMux(&mockProvider{err: errStoreDown}, allowAll(), &mockStore{})

	rec := postAudit(mux, `{"url": "https://example.com"}`)

	if strings.Contains(rec.Body.String(), errStoreDown.Error()) {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}

func TestHandleAudit_GateUnavailable(t *testing.T) {
	mux := newTestMux(&mockProvider{report: sampleReport()}, &mockGate{err: ratelimit.ErrStoreUnavailable}, &mockStore{})

	rec := postAudit(mux, `{"url": "https://example.com"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleAudit_WrongMethod(t *testing.T) {
	mux := newTestMux(&mockProvider{}, allowAll(), &mockStore{})

	req := httptest.NewRequest(http.MethodPut, "/audit", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleReport(t *testing.T) {
	tests := []struct {
		name       string
		results    *mockStore
		wantStatus int
	}{
		{name: "found", results: &mockStore{get: sampleReport()}, wantStatus: http.StatusOK},
		{name: "unknown id", results: &mockStore{}, wantStatus: http.StatusNotFound},
		{name: "store error", results: &mockStore{getErr: errStoreDown}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&mockProvider{}, allowAll(), tt.results)

			req := httptest.NewRequest(http.MethodGet, "/audit/4f2c7b1e-0000-4000-8000-000000000001", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleAudit_SavedReportIsRetrievable(t *testing.T) {
	results := &mockStore{}
	mux := newTestMux(&mockProvider{report: sampleReport()}, allowAll(), results)

	if rec := postAudit(mux, `{"url": "https://example.com"}`); rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d", rec.Code)
	}
	if len(results.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(results.saved))
	}
	results.get = results.saved[0]

	req := httptest.NewRequest(http.MethodGet, "/audit/"+results.saved[0].ID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux(&mockProvider{}, allowAll(), &mockStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp model.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}
