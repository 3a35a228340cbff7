package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/Bahjat/site-audit/backend/internal/htmldoc"
	"github.com/Bahjat/site-audit/backend/internal/model"
)

const categoryAccessibility = "Barrierefreiheit"

const maxAltPenalty = 30

// AccessibilityAnalyzer checks alt texts, form labels, link texts,
// skip navigation and heading hierarchy.
type AccessibilityAnalyzer struct{}

func (AccessibilityAnalyzer) Dimension() model.Dimension { return model.DimensionAccessibility }

func (AccessibilityAnalyzer) Analyze(in Input) Outcome {
	t := newTally(categoryAccessibility)

	checkAltTexts(t, in.Doc)

	if n := countUnlabeledControls(in.Doc); n > 0 {
		t.penalize(15, model.SeverityWarning, fmt.Sprintf("%d Formularfelder ohne Label.", n))
		t.recommend(model.P1, "Jedem Formularfeld ein <label for=\"...\"> oder ein aria-label zuordnen.")
	} else {
		t.pass("Alle Formularfelder sind beschriftet.")
	}

	if n := countEmptyLinks(in.Doc); n > 0 {
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("%d Links ohne erkennbaren Text.", n))
		t.recommend(model.P2, "Links mit aussagekräftigem Text, aria-label oder Bild-Alt-Text versehen.")
	} else {
		t.pass("Alle Links haben einen erkennbaren Text.")
	}

	if hasSkipLink(in.Doc) {
		t.pass("Skip-Link zum Hauptinhalt vorhanden.")
	} else {
		t.penalize(5, model.SeverityInfo, "Kein Skip-Link zum Hauptinhalt gefunden.")
		t.recommend(model.P3, "Einen \"Zum Inhalt springen\"-Link als erstes fokussierbares Element ergänzen.")
	}

	if n := countHeadingJumps(in.Doc); n > 0 {
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("Überschriften-Hierarchie springt %d-mal um mehr als eine Ebene.", n))
		t.recommend(model.P2, "Überschriften ohne Sprünge verschachteln (H1 → H2 → H3).")
	} else {
		t.pass("Überschriften-Hierarchie ist konsistent.")
	}

	return Outcome{Result: t.result()}
}

// checkAltTexts deducts half the percentage of images lacking an alt
// attribute, capped at maxAltPenalty. An empty alt marks a decorative image
// and counts as present.
func checkAltTexts(t *tally, doc *htmldoc.Document) {
	total := doc.Count("img")
	if total == 0 {
		t.pass("Keine Bilder gefunden.")
		return
	}

	missing := len(doc.WithoutAttr("img", "alt"))
	if missing == 0 {
		t.pass(fmt.Sprintf("Alle %d Bilder haben einen Alt-Text.", total))
		return
	}

	missingPct := float64(missing) * 100 / float64(total)
	penalty := min(maxAltPenalty, int(math.Round(missingPct/2)))
	t.penalize(penalty, model.SeverityWarning, fmt.Sprintf("%d von %d Bildern ohne Alt-Text.", missing, total))
	t.recommend(model.P1, "Allen inhaltlichen Bildern einen beschreibenden Alt-Text geben; dekorative Bilder mit alt=\"\" kennzeichnen.")
}

var unlabeledInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"image":  true,
	"reset":  true,
}

func countUnlabeledControls(doc *htmldoc.Document) int {
	labelled := make(map[string]bool)
	for _, l := range doc.WithAttr("label", "for") {
		if id := strings.TrimSpace(l.AttrOr("for", "")); id != "" {
			labelled[id] = true
		}
	}

	var n int
	for _, c := range doc.All("input, select, textarea") {
		if c.Tag() == "input" && unlabeledInputTypes[strings.ToLower(strings.TrimSpace(c.AttrOr("type", "text")))] {
			continue
		}
		if nonEmptyAttr(c, "aria-label") || nonEmptyAttr(c, "aria-labelledby") {
			continue
		}
		if id := strings.TrimSpace(c.AttrOr("id", "")); id != "" && labelled[id] {
			continue
		}
		if _, ok := c.Closest("label"); ok {
			continue
		}
		n++
	}
	return n
}

func countEmptyLinks(doc *htmldoc.Document) int {
	var n int
	for _, a := range doc.WithAttr("a", "href") {
		if a.Text() != "" || nonEmptyAttr(a, "aria-label") || nonEmptyAttr(a, "title") {
			continue
		}
		described := false
		for _, img := range a.Find("img[alt]") {
			if nonEmptyAttr(img, "alt") {
				described = true
				break
			}
		}
		if !described {
			n++
		}
	}
	return n
}

var skipTargets = map[string]bool{
	"#main":         true,
	"#content":      true,
	"#main-content": true,
	"#maincontent":  true,
	"#inhalt":       true,
	"#hauptinhalt":  true,
}

// skipPhrases must point at the content; "Nach oben springen" is not a skip link.
var skipPhrases = []string{"skip to", "skip navigation", "zum inhalt", "zum hauptinhalt", "überspringen"}

func hasSkipLink(doc *htmldoc.Document) bool {
	for _, a := range doc.All(`a[href^="#"]`) {
		if skipTargets[strings.ToLower(a.AttrOr("href", ""))] {
			return true
		}
		if strings.Contains(strings.ToLower(a.AttrOr("class", "")), "skip") {
			return true
		}
		text := strings.ToLower(a.Text())
		for _, p := range skipPhrases {
			if strings.Contains(text, p) {
				return true
			}
		}
	}
	return false
}

// countHeadingJumps counts consecutive headings whose level increases by
// more than one, e.g. H2 followed directly by H4.
func countHeadingJumps(doc *htmldoc.Document) int {
	var jumps, prev int
	for _, h := range doc.All("h1, h2, h3, h4, h5, h6") {
		level := int(h.Tag()[1] - '0')
		if prev > 0 && level > prev+1 {
			jumps++
		}
		prev = level
	}
	return jumps
}

func nonEmptyAttr(e htmldoc.Element, name string) bool {
	return strings.TrimSpace(e.AttrOr(name, "")) != ""
}
