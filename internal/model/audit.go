package model

import (
	"net/http"
	"time"
)

// AuditTarget is the validated input of a single audit.
type AuditTarget struct {
	URL      string
	Email    string // optional contact for report delivery
	Identity string // hashed caller identity, used only for admission control
}

// FetchedPage is what the fetcher hands to the parser and analyzers.
type FetchedPage struct {
	URL          string // final URL after redirects
	Scheme       string
	StatusCode   int
	Headers      http.Header
	Body         string
	Size         int // byte length of the UTF-8 body
	ResponseTime time.Duration
}

// Severity grades a single finding.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Priority ranks a recommendation. P1 must be fixed, P3 is nice to have.
type Priority string

const (
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// Rank orders priorities for sorting; unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case P1:
		return 1
	case P2:
		return 2
	case P3:
		return 3
	}
	return 4
}

// Dimension names one of the five quality axes.
type Dimension string

const (
	DimensionSecurity      Dimension = "security"
	DimensionSEO           Dimension = "seo"
	DimensionAccessibility Dimension = "accessibility"
	DimensionStructure     Dimension = "structure"
	DimensionPerformance   Dimension = "performance"
)

// Finding is one explanatory statement about a check's outcome.
type Finding struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// Recommendation is one actionable improvement.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Category string   `json:"category"`
	Text     string   `json:"text"`
}

// DimensionResult is the output of exactly one analyzer.
type DimensionResult struct {
	Score           int              `json:"score"`
	Findings        []Finding        `json:"findings"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PageMeta is the page metadata extracted while scoring SEO.
type PageMeta struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	HasFavicon  bool              `json:"hasFavicon"`
	Language    string            `json:"language"`
	Charset     string            `json:"charset"`
	HasViewport bool              `json:"hasViewport"`
	Canonical   string            `json:"canonical"`
	OpenGraph   map[string]string `json:"openGraph"`
}

// Scores holds the per-dimension scores and their rounded mean.
type Scores struct {
	Security      int `json:"security"`
	SEO           int `json:"seo"`
	Accessibility int `json:"accessibility"`
	Performance   int `json:"performance"`
	Structure     int `json:"structure"`
	Overall       int `json:"overall"`
}

// Technical summarizes transport-level facts about the fetched page.
type Technical struct {
	HTTPS         bool   `json:"https"`
	ResponseTime  int64  `json:"responseTime"` // milliseconds
	ContentLength int    `json:"contentLength"`
	ContentType   string `json:"contentType"`
	Server        string `json:"server"`
}

// AuditReport is the complete, immutable result of one audit.
type AuditReport struct {
	ID              string           `json:"id"`
	URL             string           `json:"url"`
	Timestamp       time.Time        `json:"timestamp"`
	FetchDuration   int64            `json:"fetchDuration"` // milliseconds
	Scores          Scores           `json:"scores"`
	Findings        []Finding        `json:"findings"`
	Recommendations []Recommendation `json:"recommendations"`
	Meta            PageMeta         `json:"meta"`
	Technical       Technical        `json:"technical"`
}
