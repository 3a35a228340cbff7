package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/model"
	"github.com/Bahjat/site-audit/backend/internal/platform/errs"
	"github.com/Bahjat/site-audit/backend/internal/platform/identity"
)

var errURLRequired = errors.New("the \"url\" field is required")

// Transport handles HTTP requests for page audits.
type Transport struct {
	service    *Service
	hasher     *identity.Hasher
	trustProxy bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewTransport creates an HTTP transport backed by the given service. Caller
// addresses are hashed before they reach the service.
func NewTransport(service *Service, hasher *identity.Hasher, trustProxy bool, logger *slog.Logger) *Transport {
	return &Transport{
		service:    service,
		hasher:     hasher,
		trustProxy: trustProxy,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /audit", t.handleAudit)
	mux.HandleFunc("GET /audit/{id}", t.handleReport)
	mux.HandleFunc("GET /healthz", t.handleHealth)
}

type auditRequest struct {
	URL   string `json:"url"`
	Email string `json:"email,omitempty"`
}

func (r auditRequest) validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return errURLRequired
	}
	return nil
}

func (t *Transport) handleAudit(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 1 << 20 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "Invalid request body. Please send a JSON object with a \"url\" field.")
		return
	}

	if err := req.validate(); err != nil {
		t.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	target := model.AuditTarget{
		URL:      strings.TrimSpace(req.URL),
		Email:    strings.TrimSpace(req.Email),
		Identity: t.hasher.Hash(identity.FromRequest(r, t.trustProxy)),
	}

	report, err := t.service.Audit(r.Context(), target)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, report)
}

func (t *Transport) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := t.service.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		t.handleServiceError(w, err)
		return
	}
	t.renderJSON(w, http.StatusOK, report)
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, model.HealthResponse{Status: "ok"})
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case errs.InvalidInput:
			status = http.StatusBadRequest
		case errs.Unreachable:
			status = http.StatusBadGateway
		case errs.Timeout:
			status = http.StatusGatewayTimeout
		case errs.QuotaExceeded:
			t.renderRateLimited(w, appErr.RetryAt)
			return
		case errs.Unavailable:
			status = http.StatusServiceUnavailable
		case errs.NotFound:
			status = http.StatusNotFound
		case errs.ParsingFailed, errs.Unknown:
			// 500 Internal Server Error
		}
		t.renderError(w, status, appErr.Message)
		return
	}

	t.renderError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}

// renderRateLimited answers 429 with the reset time both as an ISO-8601
// timestamp in the body and as whole seconds in Retry-After.
func (t *Transport) renderRateLimited(w http.ResponseWriter, resetAt time.Time) {
	seconds := int(math.Ceil(resetAt.Sub(t.now()).Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	t.renderJSON(w, http.StatusTooManyRequests, model.RateLimitResponse{
		Error:      "Too many requests. Please try again later.",
		RetryAfter: resetAt.UTC().Format(time.RFC3339),
	})
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	t.renderJSON(w, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}
