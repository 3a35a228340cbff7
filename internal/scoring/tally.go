package scoring

import "github.com/Bahjat/site-audit/backend/internal/model"

const maxScore = 100

// tally accumulates one analyzer's score, findings and recommendations.
type tally struct {
	category        string
	score           int
	findings        []model.Finding
	recommendations []model.Recommendation
}

func newTally(category string) *tally {
	return &tally{
		category:        category,
		score:           maxScore,
		findings:        []model.Finding{},
		recommendations: []model.Recommendation{},
	}
}

func (t *tally) pass(msg string) {
	t.add(model.SeveritySuccess, msg)
}

func (t *tally) note(msg string) {
	t.add(model.SeverityInfo, msg)
}

func (t *tally) penalize(points int, sev model.Severity, msg string) {
	t.score -= points
	t.add(sev, msg)
}

func (t *tally) recommend(p model.Priority, text string) {
	t.recommendations = append(t.recommendations, model.Recommendation{
		Priority: p,
		Category: t.category,
		Text:     text,
	})
}

func (t *tally) add(sev model.Severity, msg string) {
	t.findings = append(t.findings, model.Finding{
		Severity: sev,
		Category: t.category,
		Message:  msg,
	})
}

// result floors the score at zero. No rule adds points, so no ceiling is needed.
func (t *tally) result() model.DimensionResult {
	return model.DimensionResult{
		Score:           max(t.score, 0),
		Findings:        t.findings,
		Recommendations: t.recommendations,
	}
}
