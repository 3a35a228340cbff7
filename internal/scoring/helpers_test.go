package scoring

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/htmldoc"
	"github.com/Bahjat/site-audit/backend/internal/model"
)

const (
	goodTitle       = "Beispiel GmbH | Webdesign und Beratung aus Berlin"
	goodDescription = "Wir entwickeln barrierefreie, schnelle und suchmaschinenoptimierte Websites für kleine und mittlere Unternehmen in ganz Deutschland."
)

// page builds a document from head and body fragments.
func page(head, body string) string {
	return "<!DOCTYPE html><html lang=\"de\"><head>" + head + "</head><body>" + body + "</body></html>"
}

// goodHead satisfies every SEO check.
const goodHead = `<meta charset="utf-8">
<title>` + goodTitle + `</title>
<meta name="description" content="` + goodDescription + `">
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="canonical" href="https://example.com/">
<link rel="icon" href="/favicon.ico">
<meta property="og:title" content="Beispiel GmbH">`

func fastPage(scheme string) *model.FetchedPage {
	return &model.FetchedPage{
		URL:          scheme + "://example.com/",
		Scheme:       scheme,
		StatusCode:   http.StatusOK,
		Headers:      http.Header{},
		Size:         10 * 1024,
		ResponseTime: 200 * time.Millisecond,
	}
}

func analyze(t *testing.T, a Analyzer, body string, p *model.FetchedPage) Outcome {
	t.Helper()
	doc, err := htmldoc.ParseString(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return a.Analyze(Input{Doc: doc, Page: p})
}

func countSeverity(findings []model.Finding, sev model.Severity) int {
	var n int
	for _, f := range findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

func findingContaining(findings []model.Finding, substr string) (model.Finding, bool) {
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return f, true
		}
	}
	return model.Finding{}, false
}

func recsWithPriority(recs []model.Recommendation, p model.Priority) []model.Recommendation {
	var out []model.Recommendation
	for _, r := range recs {
		if r.Priority == p {
			out = append(out, r)
		}
	}
	return out
}
