package scoring

import (
	"fmt"
	"strings"

	"github.com/Bahjat/site-audit/backend/internal/model"
)

const categoryStructure = "Struktur"

var landmarks = []string{"header", "nav", "main", "footer", "article", "section", "aside"}

const (
	minLandmarks      = 3
	maxInlineStyles   = 20
	maxExternalScript = 15
)

// StructureAnalyzer checks semantic markup and asset hygiene.
type StructureAnalyzer struct{}

func (StructureAnalyzer) Dimension() model.Dimension { return model.DimensionStructure }

func (StructureAnalyzer) Analyze(in Input) Outcome {
	t := newTally(categoryStructure)

	var found []string
	for _, tag := range landmarks {
		if in.Doc.Has(tag) {
			found = append(found, tag)
		}
	}
	switch n := len(found); {
	case n >= minLandmarks:
		t.pass(fmt.Sprintf("%d semantische HTML5-Elemente gefunden (%s).", n, strings.Join(found, ", ")))
	case n > 0:
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("Nur %d semantische HTML5-Elemente gefunden (%s).", n, strings.Join(found, ", ")))
		t.recommend(model.P2, "Weitere semantische Elemente wie <header>, <nav>, <main> und <footer> verwenden.")
	default:
		t.penalize(20, model.SeverityError, "Keine semantischen HTML5-Elemente gefunden.")
		t.recommend(model.P1, "Die Seite mit <header>, <nav>, <main> und <footer> semantisch gliedern.")
	}

	if n := in.Doc.Count("[style]"); n > maxInlineStyles {
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("%d Elemente mit Inline-Styles.", n))
		t.recommend(model.P3, "Inline-Styles in externe Stylesheets auslagern.")
	} else {
		t.pass(fmt.Sprintf("%d Elemente mit Inline-Styles.", n))
	}

	if n := in.Doc.Count("script[src]"); n > maxExternalScript {
		t.penalize(10, model.SeverityWarning, fmt.Sprintf("%d externe Skripte eingebunden.", n))
		t.recommend(model.P2, "Externe Skripte bündeln und nicht benötigte entfernen.")
	} else {
		t.pass(fmt.Sprintf("%d externe Skripte eingebunden.", n))
	}

	return Outcome{Result: t.result()}
}
