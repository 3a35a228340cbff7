package pageinsight

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/htmldoc"
	"github.com/Bahjat/site-audit/backend/internal/model"
	"github.com/Bahjat/site-audit/backend/internal/platform/errs"
	"github.com/Bahjat/site-audit/backend/internal/scoring"
	"github.com/google/uuid"
)

// Engine orchestrates page fetching, HTML parsing and scoring.
type Engine struct {
	fetcher  Fetcher
	pipeline *scoring.Pipeline
	now      func() time.Time
	newID    func() string
}

// NewEngine returns an Engine backed by the given Fetcher and Pipeline.
func NewEngine(fetcher Fetcher, pipeline *scoring.Pipeline) *Engine {
	return &Engine{
		fetcher:  fetcher,
		pipeline: pipeline,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ValidateURL checks that targetURL is an absolute http or https URL.
func ValidateURL(targetURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(targetURL))
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
			Cause:   err,
		}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com).",
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Only http and https URLs are supported.",
		}
	}
	return parsed, nil
}

// Audit fetches targetURL, parses it and runs every analyzer of the
// pipeline. Any failure aborts the audit; no partial report is returned.
func (e *Engine) Audit(ctx context.Context, targetURL string) (*model.AuditReport, error) {
	parsed, err := ValidateURL(targetURL)
	if err != nil {
		return nil, err
	}

	page, err := e.fetcher.Fetch(ctx, parsed.String())
	if err != nil {
		if timedOut(ctx) {
			return nil, timeoutError(err)
		}
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The provided URL could not be reached. Check the address.",
			Cause:   err,
		}
	}

	if page.StatusCode >= 400 {
		return nil, &errs.AppError{
			Kind:           errs.Unreachable,
			UpstreamStatus: page.StatusCode,
			Message:        "The provided URL returned an error status.",
		}
	}

	doc, err := htmldoc.ParseString(page.Body)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.ParsingFailed,
			Message: "Failed to parse the HTML content.",
			Cause:   err,
		}
	}

	results, err := e.pipeline.Run(ctx, scoring.Input{Doc: doc, Page: page})
	if err != nil {
		if timedOut(ctx) {
			return nil, timeoutError(err)
		}
		return nil, &errs.AppError{
			Kind:    errs.ParsingFailed,
			Message: "The page could not be analyzed.",
			Cause:   err,
		}
	}

	summary := scoring.Aggregate(results)

	return &model.AuditReport{
		ID:              e.newID(),
		URL:             parsed.String(),
		Timestamp:       e.now().UTC(),
		FetchDuration:   page.ResponseTime.Milliseconds(),
		Scores:          summary.Scores,
		Findings:        summary.Findings,
		Recommendations: summary.Recommendations,
		Meta:            summary.Meta,
		Technical: model.Technical{
			HTTPS:         strings.EqualFold(page.Scheme, "https"),
			ResponseTime:  page.ResponseTime.Milliseconds(),
			ContentLength: page.Size,
			ContentType:   page.Headers.Get("Content-Type"),
			Server:        page.Headers.Get("Server"),
		},
	}, nil
}

func timedOut(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func timeoutError(cause error) error {
	return &errs.AppError{
		Kind:    errs.Timeout,
		Message: "The audit took too long and was aborted.",
		Cause:   cause,
	}
}
