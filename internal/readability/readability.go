// Package readability runs the complete readability engine over a text:
// statistics, formula scores and issue detection.
//
// The engine is a pure function of its input. It holds no state, so a single
// Engine (or the package-level Analyze) may be shared by any number of goroutines.
package readability

import (
	"github.com/ppiankov/readscope/internal/issues"
	"github.com/ppiankov/readscope/internal/model"
	"github.com/ppiankov/readscope/internal/score"
	"github.com/ppiankov/readscope/internal/textstats"
)

// Engine wires the statistics, scoring and detection stages together
type Engine struct {
	scorer   *score.Scorer
	detector *issues.Detector
}

// NewEngine creates an engine using the default issue rules
func NewEngine() *Engine {
	return &Engine{
		scorer:   score.NewScorer(),
		detector: issues.NewDetector(),
	}
}

// NewEngineWithDetector creates an engine with a custom rule table
func NewEngineWithDetector(detector *issues.Detector) *Engine {
	return &Engine{
		scorer:   score.NewScorer(),
		detector: detector,
	}
}

// Analyze computes statistics, scores and issues for text.
// Text without any words is not scored: Scores stays zero and Scored is false.
func (e *Engine) Analyze(text string) model.Result {
	stats := textstats.Analyze(text)

	result := model.Result{
		Statistics: stats,
		Issues:     e.detector.Detect(text, stats),
	}

	if score.CheckPrecondition(stats) == nil {
		result.Scores = e.scorer.Score(stats)
		result.Scored = true
	}

	return result
}

// Explain returns the per-formula breakdown for a result, or nil when it was not scored
func (e *Engine) Explain(result model.Result) []model.FormulaBreakdown {
	if !result.Scored {
		return nil
	}
	return e.scorer.Explain(result.Statistics)
}

var defaultEngine = NewEngine()

// Analyze runs the default engine
func Analyze(text string) model.Result {
	return defaultEngine.Analyze(text)
}
