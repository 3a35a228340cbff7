package audit

import (
	"context"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/model"
	"github.com/Bahjat/site-audit/backend/internal/ratelimit"
)

// Provider produces a report for one page.
type Provider interface {
	Audit(ctx context.Context, targetURL string) (*model.AuditReport, error)
}

// Admitter decides whether a caller may start another audit.
type Admitter interface {
	Check(ctx context.Context, identity, endpoint string, limit int, window time.Duration) (ratelimit.Decision, error)
}

// ResultStore keeps finished reports.
type ResultStore interface {
	Save(ctx context.Context, report *model.AuditReport) error
	Get(ctx context.Context, id string) (*model.AuditReport, error)
}
