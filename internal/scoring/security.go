package scoring

import (
	"fmt"
	"strings"

	"github.com/Bahjat/site-audit/backend/internal/model"
)

const categorySecurity = "Sicherheit"

type securityHeader struct {
	name    string
	penalty int
	advice  string
}

// securityHeaders are checked in this order; the order is part of the report.
var securityHeaders = []securityHeader{
	{"Strict-Transport-Security", 10, "HSTS-Header setzen, z. B. \"Strict-Transport-Security: max-age=31536000; includeSubDomains\"."},
	{"X-Content-Type-Options", 5, "\"X-Content-Type-Options: nosniff\" setzen, um MIME-Sniffing zu verhindern."},
	{"X-Frame-Options", 5, "\"X-Frame-Options: DENY\" oder \"SAMEORIGIN\" setzen, um Clickjacking zu verhindern."},
	{"X-XSS-Protection", 5, "\"X-XSS-Protection: 1; mode=block\" für ältere Browser setzen."},
	{"Content-Security-Policy", 15, "Eine Content-Security-Policy definieren, die erlaubte Quellen für Skripte, Styles und Medien festlegt."},
	{"Referrer-Policy", 5, "\"Referrer-Policy: strict-origin-when-cross-origin\" setzen."},
	{"Permissions-Policy", 5, "Eine Permissions-Policy setzen, die nicht benötigte Browser-APIs (Kamera, Mikrofon, Geolocation) deaktiviert."},
}

// SecurityAnalyzer checks transport encryption and security response headers.
type SecurityAnalyzer struct{}

func (SecurityAnalyzer) Dimension() model.Dimension { return model.DimensionSecurity }

func (SecurityAnalyzer) Analyze(in Input) Outcome {
	t := newTally(categorySecurity)

	if in.Page != nil && strings.EqualFold(in.Page.Scheme, "https") {
		t.pass("HTTPS ist aktiv.")
	} else {
		t.penalize(30, model.SeverityError, "Kein HTTPS: Die Seite wird unverschlüsselt übertragen.")
		t.recommend(model.P1, "SSL/TLS-Zertifikat einrichten und alle HTTP-Anfragen per 301 auf HTTPS umleiten.")
	}

	for _, h := range securityHeaders {
		if headerValue(in.Page, h.name) != "" {
			t.pass(fmt.Sprintf("%s ist gesetzt.", h.name))
			continue
		}
		t.penalize(h.penalty, model.SeverityWarning, fmt.Sprintf("%s fehlt.", h.name))
		if h.penalty >= 10 {
			t.recommend(model.P1, h.advice)
		} else {
			t.recommend(model.P2, h.advice)
		}
	}

	return Outcome{Result: t.result()}
}

func headerValue(page *model.FetchedPage, name string) string {
	if page == nil {
		return ""
	}
	return strings.TrimSpace(page.Headers.Get(name))
}
