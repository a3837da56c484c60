package progress

import (
	"time"

	"github.com/verte-zerg/bookkit/internal/manuscript"
	"github.com/verte-zerg/bookkit/internal/model"
)

// Generator builds reports from the current state of a manuscript tree.
type Generator struct {
	analyzer *manuscript.Analyzer
	scoring  model.Scoring
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator returns a Generator using analyzer and scoring.
func NewGenerator(analyzer *manuscript.Analyzer, scoring model.Scoring, opts ...Option) *Generator {
	g := &Generator{
		analyzer: analyzer,
		scoring:  scoring,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate discovers chapters, analyzes each and aggregates the summary.
// Any failure aborts the whole report.
func (g *Generator) Generate() (model.Report, error) {
	dirs, err := g.analyzer.ListChapters()
	if err != nil {
		return model.Report{}, err
	}
	report := model.Report{
		GeneratedAt: g.now(),
		Chapters:    make(map[string]model.ChapterReport, len(dirs)),
	}
	progressValues := make([]float64, 0, len(dirs))
	for _, dir := range dirs {
		stats, err := g.analyzer.Analyze(dir)
		if err != nil {
			return model.Report{}, err
		}
		pct := Compute(stats, g.scoring)
		report.Chapters[stats.Name] = model.ChapterReport{
			Metadata:     stats.Metadata,
			ContentStats: stats.Content,
			Progress:     pct,
		}
		report.Summary.Add(stats.Content)
		progressValues = append(progressValues, pct)
	}
	report.Summary.AverageProgress = Average(progressValues)
	return report, nil
}
