package scoring

import (
	"math"
	"slices"

	"github.com/Bahjat/site-audit/backend/internal/model"
)

// Summary is the merged view of all dimension outcomes.
type Summary struct {
	Scores          model.Scores
	Findings        []model.Finding
	Recommendations []model.Recommendation
	Meta            model.PageMeta
}

// Aggregate merges outcomes given in pipeline order. Findings and
// recommendations keep that order; recommendations are then stably sorted by
// priority so equal priorities stay in pipeline order. The overall score is
// the rounded mean of the dimension scores.
func Aggregate(results []Scored) Summary {
	s := Summary{
		Findings:        []model.Finding{},
		Recommendations: []model.Recommendation{},
		Meta:            model.PageMeta{OpenGraph: map[string]string{}},
	}

	var sum int
	for _, r := range results {
		sum += r.Result.Score
		s.Findings = append(s.Findings, r.Result.Findings...)
		s.Recommendations = append(s.Recommendations, r.Result.Recommendations...)

		switch r.Dimension {
		case model.DimensionSecurity:
			s.Scores.Security = r.Result.Score
		case model.DimensionSEO:
			s.Scores.SEO = r.Result.Score
		case model.DimensionAccessibility:
			s.Scores.Accessibility = r.Result.Score
		case model.DimensionStructure:
			s.Scores.Structure = r.Result.Score
		case model.DimensionPerformance:
			s.Scores.Performance = r.Result.Score
		}

		if r.Meta != nil {
			s.Meta = *r.Meta
		}
	}

	if len(results) > 0 {
		s.Scores.Overall = int(math.Round(float64(sum) / float64(len(results))))
	}

	slices.SortStableFunc(s.Recommendations, func(a, b model.Recommendation) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})

	return s
}
