package scoring

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/Bahjat/site-audit/backend/internal/htmldoc"
	"github.com/Bahjat/site-audit/backend/internal/model"
)

const categorySEO = "SEO"

const (
	titleMinLen       = 30
	titleMaxLen       = 60
	descriptionMinLen = 120
	descriptionMaxLen = 160
)

// SEOAnalyzer checks search-engine readiness and extracts page metadata.
type SEOAnalyzer struct{}

func (SEOAnalyzer) Dimension() model.Dimension { return model.DimensionSEO }

func (SEOAnalyzer) Analyze(in Input) Outcome {
	t := newTally(categorySEO)
	meta := ExtractMeta(in.Doc, in.Page)

	checkTitle(t, meta.Title)
	checkDescription(t, meta.Description)
	checkH1(t, in.Doc.Count("h1"))

	if meta.Canonical != "" {
		t.pass("Canonical-URL ist definiert.")
	} else {
		t.penalize(5, model.SeverityInfo, "Keine Canonical-URL definiert.")
		t.recommend(model.P3, "Einen <link rel=\"canonical\"> setzen, um Duplicate Content zu vermeiden.")
	}

	if meta.Language != "" {
		t.pass(fmt.Sprintf("Sprache ist deklariert (%s).", meta.Language))
	} else {
		t.penalize(5, model.SeverityWarning, "Das lang-Attribut am <html>-Element fehlt.")
		t.recommend(model.P2, "Die Seitensprache am <html>-Element angeben, z. B. <html lang=\"de\">.")
	}

	if n := len(meta.OpenGraph); n > 0 {
		t.pass(fmt.Sprintf("%d Open-Graph-Tags gefunden.", n))
	} else {
		t.penalize(10, model.SeverityWarning, "Keine Open-Graph-Tags gefunden.")
		t.recommend(model.P2, "Open-Graph-Tags (og:title, og:description, og:image) für Social-Media-Vorschauen ergänzen.")
	}

	if meta.HasFavicon {
		t.pass("Favicon ist vorhanden.")
	} else {
		t.penalize(5, model.SeverityWarning, "Kein Favicon gefunden.")
		t.recommend(model.P3, "Ein Favicon per <link rel=\"icon\"> einbinden.")
	}

	if meta.HasViewport {
		t.pass("Viewport-Meta-Tag ist gesetzt.")
	} else {
		t.penalize(10, model.SeverityError, "Viewport-Meta-Tag fehlt: Die Seite ist nicht für Mobilgeräte optimiert.")
		t.recommend(model.P1, "<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"> ergänzen (Viewport für Mobilgeräte).")
	}

	return Outcome{Result: t.result(), Meta: &meta}
}

func checkTitle(t *tally, title string) {
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		t.penalize(20, model.SeverityError, "Kein Seitentitel vorhanden.")
		t.recommend(model.P1, fmt.Sprintf("Einen aussagekräftigen <title> mit %d-%d Zeichen ergänzen.", titleMinLen, titleMaxLen))
	case n < titleMinLen:
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("Seitentitel ist zu kurz (%d Zeichen).", n))
		t.recommend(model.P2, fmt.Sprintf("Den Seitentitel auf %d-%d Zeichen erweitern.", titleMinLen, titleMaxLen))
	case n > titleMaxLen:
		t.penalize(5, model.SeverityWarning, fmt.Sprintf("Seitentitel ist zu lang (%d Zeichen).", n))
		t.recommend(model.P3, fmt.Sprintf("Den Seitentitel auf höchstens %d Zeichen kürzen.", titleMaxLen))
	default:
		t.pass(fmt.Sprintf("Seitentitel hat eine gute Länge (%d Zeichen).", n))
	}
}

func checkDescription(t *tally, desc string) {
	n := utf8.RuneCountInString(desc)
	switch {
	case n == 0:
		t.penalize(15, model.SeverityError, "Keine Meta-Description vorhanden.")
		t.recommend(model.P1, fmt.Sprintf("Eine Meta-Description mit %d-%d Zeichen ergänzen.", descriptionMinLen, descriptionMaxLen))
	case n < descriptionMinLen:
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("Meta-Description ist zu kurz (%d Zeichen).", n))
		t.recommend(model.P2, fmt.Sprintf("Die Meta-Description auf %d-%d Zeichen erweitern.", descriptionMinLen, descriptionMaxLen))
	case n > descriptionMaxLen:
		t.penalize(5, model.SeverityWarning, fmt.Sprintf("Meta-Description ist zu lang (%d Zeichen).", n))
		t.recommend(model.P3, fmt.Sprintf("Die Meta-Description auf höchstens %d Zeichen kürzen.", descriptionMaxLen))
	default:
		t.pass(fmt.Sprintf("Meta-Description hat eine gute Länge (%d Zeichen).", n))
	}
}

func checkH1(t *tally, count int) {
	switch {
	case count == 0:
		t.penalize(15, model.SeverityError, "Keine H1-Überschrift gefunden.")
		t.recommend(model.P1, "Genau eine H1-Überschrift mit dem Hauptthema der Seite ergänzen.")
	case count > 1:
		t.penalize(5, model.SeverityWarning, fmt.Sprintf("%d H1-Überschriften gefunden.", count))
		t.recommend(model.P2, "Nur eine H1 pro Seite verwenden und weitere Überschriften als H2-H6 auszeichnen.")
	default:
		t.pass("Genau eine H1-Überschrift vorhanden.")
	}
}

// ExtractMeta collects the page metadata reported alongside the scores.
func ExtractMeta(doc *htmldoc.Document, page *model.FetchedPage) model.PageMeta {
	meta := model.PageMeta{OpenGraph: map[string]string{}}

	if title, ok := doc.First("head > title"); ok {
		meta.Title = title.OwnText()
	}
	meta.Description, _ = metaContent(doc, "description")
	_, meta.HasViewport = metaContent(doc, "viewport")

	if root, ok := doc.First("html"); ok {
		meta.Language = strings.TrimSpace(root.AttrOr("lang", ""))
	}

	for _, link := range doc.WithAttr("link", "rel") {
		rels := strings.Fields(strings.ToLower(link.AttrOr("rel", "")))
		for _, rel := range rels {
			switch rel {
			case "icon":
				meta.HasFavicon = true
			case "canonical":
				if meta.Canonical == "" {
					meta.Canonical = strings.TrimSpace(link.AttrOr("href", ""))
				}
			}
		}
	}

	for _, og := range doc.WithAttr("meta", "property") {
		prop := strings.ToLower(strings.TrimSpace(og.AttrOr("property", "")))
		if strings.HasPrefix(prop, "og:") {
			meta.OpenGraph[prop] = og.AttrOr("content", "")
		}
	}

	meta.Charset = detectCharset(doc, page)
	return meta
}

// metaContent finds <meta name=...> case-insensitively and returns its trimmed content.
func metaContent(doc *htmldoc.Document, name string) (string, bool) {
	for _, m := range doc.WithAttr("meta", "name") {
		if strings.EqualFold(strings.TrimSpace(m.AttrOr("name", "")), name) {
			return strings.TrimSpace(m.AttrOr("content", "")), true
		}
	}
	return "", false
}

func detectCharset(doc *htmldoc.Document, page *model.FetchedPage) string {
	if m, ok := doc.First("meta[charset]"); ok {
		return strings.ToLower(strings.TrimSpace(m.AttrOr("charset", "")))
	}
	for _, m := range doc.WithAttr("meta", "http-equiv") {
		if strings.EqualFold(m.AttrOr("http-equiv", ""), "content-type") {
			if cs := charsetParam(m.AttrOr("content", "")); cs != "" {
				return cs
			}
		}
	}
	return charsetParam(headerValue(page, "Content-Type"))
}

func charsetParam(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}
