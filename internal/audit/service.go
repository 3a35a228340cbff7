// Package audit wires admission control, the page audit engine and result
// storage behind the HTTP API.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/model"
	"github.com/Bahjat/site-audit/backend/internal/pageinsight"
	"github.com/Bahjat/site-audit/backend/internal/platform/errs"
	"github.com/Bahjat/site-audit/backend/internal/platform/metrics"
	"github.com/Bahjat/site-audit/backend/internal/platform/requestid"
	"github.com/Bahjat/site-audit/backend/internal/store"
)

// endpointAudit keys the admission gate for POST /audit.
const endpointAudit = "audit"

// Options holds the per-deployment limits of a Service.
type Options struct {
	MaxRequests  int
	Window       time.Duration
	AuditTimeout time.Duration
}

// Service admits, runs and stores audits.
type Service struct {
	provider Provider
	gate     Admitter
	results  ResultStore
	metrics  *metrics.Metrics
	opts     Options
	logger   *slog.Logger
}

// NewService creates a Service backed by the given collaborators.
func NewService(provider Provider, gate Admitter, results ResultStore, m *metrics.Metrics, opts Options, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		gate:     gate,
		results:  results,
		metrics:  m,
		opts:     opts,
		logger:   logger,
	}
}

// Audit validates target, asks the gate for admission and runs the audit.
// Input errors are reported before any quota is spent. The report is saved
// best-effort: a failing store is logged and does not fail the call.
func (s *Service) Audit(ctx context.Context, target model.AuditTarget) (*model.AuditReport, error) {
	logger := s.logger.With("url", target.URL, "request_id", requestid.FromContext(ctx), "identity", target.Identity)

	if err := validateTarget(target); err != nil {
		s.metrics.AuditsTotal.WithLabelValues(errs.InvalidInput.String()).Inc()
		return nil, err
	}

	decision, err := s.gate.Check(ctx, target.Identity, endpointAudit, s.opts.MaxRequests, s.opts.Window)
	if err != nil {
		s.metrics.GateDecisions.WithLabelValues("error").Inc()
		s.metrics.AuditsTotal.WithLabelValues(errs.Unavailable.String()).Inc()
		return nil, &errs.AppError{
			Kind:    errs.Unavailable,
			Message: "The service is temporarily unavailable. Please try again later.",
			Cause:   err,
		}
	}
	if !decision.Allowed {
		s.metrics.GateDecisions.WithLabelValues("denied").Inc()
		s.metrics.AuditsTotal.WithLabelValues(errs.QuotaExceeded.String()).Inc()
		logger.Warn("audit rejected by gate", "reset_at", decision.ResetAt)
		return nil, &errs.AppError{
			Kind:    errs.QuotaExceeded,
			RetryAt: decision.ResetAt,
			Message: "Too many audits. Please try again later.",
		}
	}
	s.metrics.GateDecisions.WithLabelValues("allowed").Inc()

	report, err := s.run(ctx, target.URL)
	if err != nil {
		attrs := []any{"error", err}
		var appErr *errs.AppError
		if errors.As(err, &appErr) {
			s.metrics.AuditsTotal.WithLabelValues(appErr.Kind.String()).Inc()
			if appErr.UpstreamStatus != 0 {
				attrs = append(attrs, "target_status", appErr.UpstreamStatus)
			}
		} else {
			s.metrics.AuditsTotal.WithLabelValues(errs.Unknown.String()).Inc()
		}
		logger.Error("audit failed", attrs...)
		return nil, err
	}

	s.metrics.AuditsTotal.WithLabelValues("success").Inc()
	s.observeScores(report.Scores)

	// The caller may already be gone; the report is still worth keeping.
	if err := s.results.Save(context.WithoutCancel(ctx), report); err != nil {
		logger.Warn("result store save failed", "error", err, "report_id", report.ID)
	}

	logger.Info("audit complete",
		"report_id", report.ID,
		"overall", report.Scores.Overall,
		"security", report.Scores.Security,
		"seo", report.Scores.SEO,
		"accessibility", report.Scores.Accessibility,
		"structure", report.Scores.Structure,
		"performance", report.Scores.Performance,
		"fetch_ms", report.FetchDuration,
	)
	return report, nil
}

// Report returns a previously stored report.
func (s *Service) Report(ctx context.Context, id string) (*model.AuditReport, error) {
	report, err := s.results.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &errs.AppError{
			Kind:    errs.NotFound,
			Message: "No report exists with this id.",
			Cause:   err,
		}
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) run(ctx context.Context, targetURL string) (*model.AuditReport, error) {
	if s.opts.AuditTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AuditTimeout)
		defer cancel()
	}

	start := time.Now()
	report, err := s.provider.Audit(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			var appErr *errs.AppError
			if !errors.As(err, &appErr) || appErr.Kind != errs.Timeout {
				err = &errs.AppError{
					Kind:    errs.Timeout,
					Message: "The audit timed out. The target URL may be slow to respond.",
					Cause:   err,
				}
			}
		}
		return nil, err
	}
	s.metrics.AuditDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

func (s *Service) observeScores(scores model.Scores) {
	s.metrics.DimensionScores.WithLabelValues(string(model.DimensionSecurity)).Observe(float64(scores.Security))
	s.metrics.DimensionScores.WithLabelValues(string(model.DimensionSEO)).Observe(float64(scores.SEO))
	s.metrics.DimensionScores.WithLabelValues(string(model.DimensionAccessibility)).Observe(float64(scores.Accessibility))
	s.metrics.DimensionScores.WithLabelValues(string(model.DimensionStructure)).Observe(float64(scores.Structure))
	s.metrics.DimensionScores.WithLabelValues(string(model.DimensionPerformance)).Observe(float64(scores.Performance))
}

func validateTarget(target model.AuditTarget) error {
	if _, err := pageinsight.ValidateURL(target.URL); err != nil {
		return err
	}
	if email := strings.TrimSpace(target.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return &errs.AppError{
				Kind:    errs.InvalidInput,
				Message: "The \"email\" field is not a valid e-mail address.",
				Cause:   err,
			}
		}
	}
	return nil
}
