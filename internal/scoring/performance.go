package scoring

import (
	"fmt"
	"strings"

	"github.com/Bahjat/site-audit/backend/internal/htmldoc"
	"github.com/Bahjat/site-audit/backend/internal/model"
)

const categoryPerformance = "Performance"

const (
	fastLoadMs        = 1000
	slowLoadMs        = 3000
	mediumPageKB      = 100
	largePageKB       = 500
	maxRenderBlocking = 3
)

// PerformanceAnalyzer scores load time, page weight and asset loading.
type PerformanceAnalyzer struct{}

func (PerformanceAnalyzer) Dimension() model.Dimension { return model.DimensionPerformance }

func (PerformanceAnalyzer) Analyze(in Input) Outcome {
	t := newTally(categoryPerformance)

	var loadMs int64
	var size int
	if in.Page != nil {
		loadMs = in.Page.ResponseTime.Milliseconds()
		size = in.Page.Size
	}

	switch {
	case loadMs > slowLoadMs:
		t.penalize(25, model.SeverityError, fmt.Sprintf("Sehr lange Ladezeit (%d ms).", loadMs))
		t.recommend(model.P1, "Serverantwortzeit reduzieren: Caching, CDN und schlankere Server-Verarbeitung prüfen.")
	case loadMs >= fastLoadMs:
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("Ladezeit könnte besser sein (%d ms).", loadMs))
		t.recommend(model.P2, "Ladezeit unter 1 Sekunde bringen, z. B. durch Caching und Komprimierung.")
	default:
		t.pass(fmt.Sprintf("Schnelle Ladezeit (%d ms).", loadMs))
	}

	kb := float64(size) / 1024
	switch {
	case kb > largePageKB:
		t.penalize(15, model.SeverityWarning, fmt.Sprintf("Sehr große Seite (%.0f KB).", kb))
		t.recommend(model.P2, "HTML-Größe reduzieren: eingebettete Daten, Inline-Skripte und unnötiges Markup entfernen.")
	case kb >= mediumPageKB:
		t.penalize(5, model.SeverityInfo, fmt.Sprintf("Seitengröße ist erhöht (%.0f KB).", kb))
	default:
		t.pass(fmt.Sprintf("Kompakte Seitengröße (%.0f KB).", kb))
	}

	checkImageLoading(t, in.Doc)

	if n := countRenderBlocking(in.Doc); n > maxRenderBlocking {
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("%d render-blockierende Skripte.", n))
		t.recommend(model.P2, "Skripte mit async oder defer laden.")
	} else {
		t.pass(fmt.Sprintf("%d render-blockierende Skripte.", n))
	}

	return Outcome{Result: t.result()}
}

func checkImageLoading(t *tally, doc *htmldoc.Document) {
	images := doc.ByTag("img")
	if len(images) == 0 {
		t.pass("Keine Bilder zu optimieren.")
		return
	}

	var eager, unsized int
	for _, img := range images {
		if !strings.EqualFold(strings.TrimSpace(img.AttrOr("loading", "")), "lazy") {
			eager++
		}
		if !img.HasAttr("width") || !img.HasAttr("height") {
			unsized++
		}
	}

	if eager > 0 {
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("%d von %d Bildern ohne Lazy Loading.", eager, len(images)))
		t.recommend(model.P2, "Bilder außerhalb des sichtbaren Bereichs mit loading=\"lazy\" laden.")
	} else {
		t.pass("Alle Bilder nutzen Lazy Loading.")
	}

	if unsized > 0 {
		t.penalize(5, model.SeverityInfo, fmt.Sprintf("%d von %d Bildern ohne feste Breite/Höhe.", unsized, len(images)))
		t.recommend(model.P3, "width- und height-Attribute an Bildern setzen, um Layout-Verschiebungen zu vermeiden.")
	} else {
		t.pass("Alle Bilder haben feste Abmessungen.")
	}
}

// countRenderBlocking counts external scripts loaded without async, defer or type="module".
func countRenderBlocking(doc *htmldoc.Document) int {
	var n int
	for _, s := range doc.WithAttr("script", "src") {
		if s.HasAttr("async") || s.HasAttr("defer") {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "module") {
			continue
		}
		n++
	}
	return n
}
