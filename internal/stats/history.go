package stats

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/bookkit/internal/model"
	"github.com/verte-zerg/bookkit/internal/store"
)

// History contains recorded runs and per-chapter progress series.
type History struct {
	Runs     []model.RunSummary
	Chapters []string
	// Series maps chapter to progress per run, aligned with Runs. Runs
	// that predate a chapter contribute 0.
	Series map[string][]float64
}

// BuildHistory loads the last runs recorded for root.
func BuildHistory(ctx context.Context, st *store.Store, root string, last int) (History, error) {
	runs, err := st.ListRuns(ctx, root, last)
	if err != nil {
		return History{}, err
	}
	ids := make([]string, len(runs))
	index := make(map[string]int, len(runs))
	for i, run := range runs {
		ids[i] = run.RunID
		index[run.RunID] = i
	}
	points, err := st.ListChapterPoints(ctx, ids)
	if err != nil {
		return History{}, err
	}
	return assembleHistory(runs, points, index), nil
}

func assembleHistory(runs []model.RunSummary, points []model.ChapterPoint, index map[string]int) History {
	h := History{Runs: runs, Series: map[string][]float64{}}
	for _, pt := range points {
		i, ok := index[pt.RunID]
		if !ok {
			continue
		}
		series, ok := h.Series[pt.Chapter]
		if !ok {
			series = make([]float64, len(runs))
			h.Chapters = append(h.Chapters, pt.Chapter)
		}
		series[i] = pt.Progress
		h.Series[pt.Chapter] = series
	}
	sort.Strings(h.Chapters)
	return h
}

// AverageSeries returns the average progress of each run.
func (h History) AverageSeries() []float64 {
	out := make([]float64, len(h.Runs))
	for i, run := range h.Runs {
		out[i] = run.Summary.AverageProgress
	}
	return out
}

// RenderHistory prints a run table followed by progress sparklines.
func RenderHistory(w io.Writer, h History) error {
	if len(h.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No recorded runs. Record one with: bookkit progress <root> --record")
		return err
	}
	if _, err := fmt.Fprintln(w, "Recorded Runs"); err != nil {
		return err
	}
	headers := []string{"Generated", "Average", "Chars", "Exercises", "Code Examples"}
	rows := make([][]string, 0, len(h.Runs))
	for _, run := range h.Runs {
		rows = append(rows, []string{
			run.GeneratedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%.1f%%", run.Summary.AverageProgress),
			fmt.Sprintf("%d", run.Summary.TotalChars),
			fmt.Sprintf("%d", run.Summary.TotalExercises),
			fmt.Sprintf("%d", run.Summary.TotalCodeExamples),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Trend"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %s |%s|\n", runewidth.FillRight("average", nameColumnWidth), Sparkline(h.AverageSeries())); err != nil {
		return err
	}
	for _, name := range h.Chapters {
		series := h.Series[name]
		if _, err := fmt.Fprintf(w, "  %s |%s| %5.1f%%\n",
			runewidth.FillRight(name, nameColumnWidth), Sparkline(series), series[len(series)-1]); err != nil {
			return err
		}
	}
	return nil
}
