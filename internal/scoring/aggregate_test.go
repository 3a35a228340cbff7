package scoring

import (
	"context"
	"testing"

	"github.com/Bahjat/site-audit/backend/internal/model"
)

func scored(dim model.Dimension, score int, recs ...model.Recommendation) Scored {
	return Scored{
		Dimension: dim,
		Outcome: Outcome{Result: model.DimensionResult{
			Score:           score,
			Findings:        []model.Finding{{Severity: model.SeverityInfo, Category: string(dim), Message: string(dim)}},
			Recommendations: recs,
		}},
	}
}

func rec(p model.Priority, text string) model.Recommendation {
	return model.Recommendation{Priority: p, Text: text}
}

func TestAggregate_OverallScore(t *testing.T) {
	tests := []struct {
		name   string
		scores [5]int
		want   int
	}{
		{name: "exact", scores: [5]int{100, 100, 100, 100, 95}, want: 99},
		{name: "rounds down", scores: [5]int{100, 90, 85, 80, 77}, want: 86},
		{name: "rounds up", scores: [5]int{100, 90, 85, 80, 78}, want: 87},
		{name: "all zero", scores: [5]int{0, 0, 0, 0, 0}, want: 0},
		{name: "all perfect", scores: [5]int{100, 100, 100, 100, 100}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Aggregate([]Scored{
				scored(model.DimensionSecurity, tt.scores[0]),
				scored(model.DimensionSEO, tt.scores[1]),
				scored(model.DimensionAccessibility, tt.scores[2]),
				scored(model.DimensionStructure, tt.scores[3]),
				scored(model.DimensionPerformance, tt.scores[4]),
			})

			if s.Scores.Overall != tt.want {
				t.Errorf("Overall = %d, want %d", s.Scores.Overall, tt.want)
			}
			if s.Scores.Security != tt.scores[0] || s.Scores.Performance != tt.scores[4] {
				t.Errorf("dimension scores not mapped: %+v", s.Scores)
			}
		})
	}
}

func TestAggregate_StablePrioritySort(t *testing.T) {
	s := Aggregate([]Scored{
		scored(model.DimensionSecurity, 50, rec(model.P2, "sec-p2"), rec(model.P1, "sec-p1")),
		scored(model.DimensionSEO, 50, rec(model.P3, "seo-p3"), rec(model.P1, "seo-p1")),
		scored(model.DimensionAccessibility, 50, rec(model.P2, "acc-p2")),
		scored(model.DimensionStructure, 50),
		scored(model.DimensionPerformance, 50, rec(model.P1, "perf-p1"), rec(model.P3, "perf-p3")),
	})

	want := []string{"sec-p1", "seo-p1", "perf-p1", "sec-p2", "acc-p2", "seo-p3", "perf-p3"}
	if len(s.Recommendations) != len(want) {
		t.Fatalf("recommendations = %d, want %d", len(s.Recommendations), len(want))
	}
	for i, r := range s.Recommendations {
		if r.Text != want[i] {
			t.Errorf("recommendation %d = %q, want %q", i, r.Text, want[i])
		}
	}
}

func TestAggregate_FindingsInPipelineOrder(t *testing.T) {
	s := Aggregate([]Scored{
		scored(model.DimensionSecurity, 1),
		scored(model.DimensionSEO, 1),
		scored(model.DimensionAccessibility, 1),
		scored(model.DimensionStructure, 1),
		scored(model.DimensionPerformance, 1),
	})

	want := []string{"security", "seo", "accessibility", "structure", "performance"}
	for i, f := range s.Findings {
		if f.Message != want[i] {
			t.Errorf("finding %d = %q, want %q", i, f.Message, want[i])
		}
	}
}

func TestAggregate_FullPipeline(t *testing.T) {
	body := page(goodHead, skipLink+images(7, 3)+"<h1>x</h1><header></header><nav></nav><main></main>")
	results, err := DefaultPipeline().Run(context.Background(), mustInput(t, body, fastPage("http")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := Aggregate(results)

	if s.Findings[0].Severity != model.SeverityError || s.Findings[0].Category != categorySecurity {
		t.Errorf("first finding = %+v, want security error about HTTPS", s.Findings[0])
	}
	if s.Meta.Title != goodTitle {
		t.Errorf("Meta.Title = %q", s.Meta.Title)
	}

	sum := s.Scores.Security + s.Scores.SEO + s.Scores.Accessibility + s.Scores.Structure + s.Scores.Performance
	if want := (sum*10/5 + 5) / 10; s.Scores.Overall != want {
		t.Errorf("Overall = %d, want %d (sum %d)", s.Scores.Overall, want, sum)
	}

	for i := 1; i < len(s.Recommendations); i++ {
		if s.Recommendations[i-1].Priority.Rank() > s.Recommendations[i].Priority.Rank() {
			t.Fatalf("recommendations not sorted at %d: %v", i, s.Recommendations)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)

	if s.Scores.Overall != 0 {
		t.Errorf("Overall = %d, want 0", s.Scores.Overall)
	}
	if s.Findings == nil || s.Recommendations == nil || s.Meta.OpenGraph == nil {
		t.Error("empty aggregate should carry non-nil slices and map")
	}
}
