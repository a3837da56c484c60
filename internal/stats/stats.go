// Package stats contains progress rendering and history summaries.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verte-zerg/bookkit/internal/model"
)

const (
	sparkChars      = " .:-=+*#%@"
	barFilled       = '█'
	barEmpty        = '░'
	DefaultBarWidth = 30
	nameColumnWidth = 20
	ruleWidth       = 60
	colorFilled     = "\x1b[32m"
	colorReset      = "\x1b[0m"
)

// RenderOptions controls console report output.
type RenderOptions struct {
	BarWidth int
	Lagging  int
	Color    bool
}

// ProgressBar renders a fixed-width bar with floor(width*progress/100)
// filled cells. Progress outside [0,100] is clamped.
func ProgressBar(progress float64, width int) string {
	filled, empty := barCells(progress, width)
	return strings.Repeat(string(barFilled), filled) + strings.Repeat(string(barEmpty), empty)
}

func barCells(progress float64, width int) (int, int) {
	if width <= 0 {
		return 0, 0
	}
	filled := int(math.Floor(float64(width) * progress / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return filled, width - filled
}

func colorBar(progress float64, width int) string {
	filled, empty := barCells(progress, width)
	return colorFilled + strings.Repeat(string(barFilled), filled) + colorReset + strings.Repeat(string(barEmpty), empty)
}

// RenderReport prints the console progress report.
func RenderReport(w io.Writer, report model.Report, opts RenderOptions) error {
	if opts.BarWidth <= 0 {
		opts.BarWidth = DefaultBarWidth
	}
	p := message.NewPrinter(language.English)
	rule := strings.Repeat("=", ruleWidth)

	lines := []string{
		"",
		rule,
		"Writing Progress Report",
		rule,
		"Generated: " + report.GeneratedAt.Format(time.RFC3339),
		"",
		"Chapters:",
	}
	names := report.ChapterNames()
	if len(names) == 0 {
		lines = append(lines, "  (no chapters found)")
	}
	for _, name := range names {
		ch := report.Chapters[name]
		bar := ProgressBar(ch.Progress, opts.BarWidth)
		if opts.Color {
			bar = colorBar(ch.Progress, opts.BarWidth)
		}
		lines = append(lines, fmt.Sprintf("  %s [%s] %5.1f%% (%s)",
			runewidth.FillRight(name, nameColumnWidth), bar, ch.Progress, ch.Status()))
	}

	if lagging := SelectLagging(report, opts.Lagging); len(lagging) > 0 {
		lines = append(lines, "", "Needs attention:")
		for _, name := range lagging {
			ch := report.Chapters[name]
			lines = append(lines, fmt.Sprintf("  %s %5.1f%% (%s)",
				runewidth.FillRight(name, nameColumnWidth), ch.Progress, ch.Status()))
		}
	}

	s := report.Summary
	lines = append(lines,
		"",
		"Summary:",
		p.Sprintf("  Total chars:      %d", s.TotalChars),
		p.Sprintf("  Total words:      %d", s.TotalWords),
		p.Sprintf("  Exercises:        %d", s.TotalExercises),
		p.Sprintf("  Code examples:    %d", s.TotalCodeExamples),
		fmt.Sprintf("  Average progress: %.1f%%", s.AverageProgress),
		rule,
	)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

var isTerminal = term.IsTerminal

// ShouldUseColor reports whether ANSI color suits w. disabled carries the
// caller's NO_COLOR decision.
func ShouldUseColor(w io.Writer, disabled bool) bool {
	if disabled {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(int(file.Fd()))
}
