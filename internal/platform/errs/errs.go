package errs

import (
	"fmt"
	"time"
)

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified internal failure (HTTP 500).
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Unreachable indicates the target URL could not be reached (HTTP 502).
	Unreachable
	// Timeout indicates the audit exceeded its deadline (HTTP 504).
	Timeout
	// ParsingFailed indicates the page could not be parsed or scored (HTTP 500).
	ParsingFailed
	// QuotaExceeded indicates the admission gate denied the request (HTTP 429).
	QuotaExceeded
	// Unavailable indicates a required collaborator is down (HTTP 503).
	Unavailable
	// NotFound indicates a requested report does not exist (HTTP 404).
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case ParsingFailed:
		return "parsing_failed"
	case QuotaExceeded:
		return "quota_exceeded"
	case Unavailable:
		return "unavailable"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int       // HTTP status code returned by the target domain
	RetryAt        time.Time // set for QuotaExceeded
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}
