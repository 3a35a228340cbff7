package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/model"
	"github.com/Bahjat/site-audit/backend/internal/platform/metrics"
	"github.com/Bahjat/site-audit/backend/internal/ratelimit"
	"github.com/Bahjat/site-audit/backend/internal/store"
)

var errStoreDown = errors.New("store down")

// mockProvider implements Provider for testing.
type mockProvider struct {
	report *model.AuditReport
	err    error
	block  bool
	calls  int
}

func (m *mockProvider) Audit(ctx context.Context, _ string) (*model.AuditReport, error) {
	m.calls++
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.report, m.err
}

// mockGate implements Admitter for testing.
type mockGate struct {
	decision    ratelimit.Decision
	err         error
	calls       int
	gotIdentity string
	gotEndpoint string
	gotLimit    int
	gotWindow   time.Duration
}

func (m *mockGate) Check(_ context.Context, identity, endpoint string, limit int, window time.Duration) (ratelimit.Decision, error) {
	m.calls++
	m.gotIdentity = identity
	m.gotEndpoint = endpoint
	m.gotLimit = limit
	m.gotWindow = window
	return m.decision, m.err
}

func allowAll() *mockGate {
	return &mockGate{decision: ratelimit.Decision{Allowed: true, Remaining: 19}}
}

// mockStore implements ResultStore for testing.
type mockStore struct {
	mu      sync.Mutex
	saveErr error
	saved   []*model.AuditReport
	getErr  error
	get     *model.AuditReport
}

func (m *mockStore) Save(_ context.Context, report *model.AuditReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, report)
	return nil
}

func (m *mockStore) Get(_ context.Context, _ string) (*model.AuditReport, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.get == nil {
		return nil, store.ErrNotFound
	}
	return m.get, nil
}

func sampleReport() *model.AuditReport {
	return &model.AuditReport{
		ID:  "4f2c7b1e-0000-4000-8000-000000000001",
		URL: "https://example.com",
		Scores: model.Scores{
			Security: 70, SEO: 90, Accessibility: 85, Performance: 100, Structure: 80, Overall: 85,
		},
		Findings:        []model.Finding{{Severity: model.SeverityError, Category: "Sicherheit", Message: "Kein HTTPS"}},
		Recommendations: []model.Recommendation{{Priority: model.P1, Category: "Sicherheit", Text: "HTTPS einrichten"}},
		Meta:            model.PageMeta{Title: "Example", OpenGraph: map[string]string{}},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testOptions = Options{MaxRequests: 20, Window: time.Hour, AuditTimeout: time.Second}

func newTestService(p Provider, g Admitter, s ResultStore) (*Service, *metrics.Metrics) {
	m := metrics.New()
	return NewService(p, g, s, m, testOptions, discardLogger()), m
}
