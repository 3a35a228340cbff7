// Package scoring holds the rule-based page analyzers and the aggregator
// that turns their results into a single report.
//
// Every analyzer starts at 100 points and subtracts fixed penalties for each
// failed check. Rules are deterministic: the same page always yields the same
// score, findings and recommendations.
package scoring

import (
	"context"
	"fmt"

	"github.com/Bahjat/site-audit/backend/internal/htmldoc"
	"github.com/Bahjat/site-audit/backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// Input is the read-only data shared by all analyzers of one audit.
type Input struct {
	Doc  *htmldoc.Document
	Page *model.FetchedPage
}

// Outcome is what an analyzer produces. Meta is set only by the SEO analyzer.
type Outcome struct {
	Result model.DimensionResult
	Meta   *model.PageMeta
}

// Analyzer scores one quality dimension of a page.
type Analyzer interface {
	Dimension() model.Dimension
	Analyze(in Input) Outcome
}

// Scored pairs an analyzer's dimension with its outcome.
type Scored struct {
	Dimension model.Dimension
	Outcome
}

// Pipeline runs a fixed, ordered set of analyzers against one page.
type Pipeline struct {
	analyzers []Analyzer
}

// NewPipeline returns a Pipeline whose result order is the argument order.
func NewPipeline(analyzers ...Analyzer) *Pipeline {
	return &Pipeline{analyzers: analyzers}
}

// DefaultPipeline returns the five standard analyzers in report order:
// security, seo, accessibility, structure, performance.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		SecurityAnalyzer{},
		SEOAnalyzer{},
		AccessibilityAnalyzer{},
		StructureAnalyzer{},
		PerformanceAnalyzer{},
	)
}

// Run executes all analyzers concurrently and returns their outcomes in
// pipeline order. A panicking analyzer fails the whole run; no partial
// result is returned.
func (p *Pipeline) Run(ctx context.Context, in Input) ([]Scored, error) {
	results := make([]Scored, len(p.analyzers))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range p.analyzers {
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("%s analyzer panicked: %v", a.Dimension(), rec)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Scored{Dimension: a.Dimension(), Outcome: a.Analyze(in)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
