package stats

import (
	"sort"

	"github.com/verte-zerg/bookkit/internal/model"
)

// SelectLagging returns up to top chapter names with the lowest progress,
// ties broken by name. Chapters at 100% are never lagging.
func SelectLagging(report model.Report, top int) []string {
	if top <= 0 || len(report.Chapters) == 0 {
		return nil
	}
	candidates := make([]string, 0, len(report.Chapters))
	for name, ch := range report.Chapters {
		if ch.Progress >= 100 {
			continue
		}
		candidates = append(candidates, name)
	}
	sort.Slice(candidates, func(i, j int) bool {
		pi := report.Chapters[candidates[i]].Progress
		pj := report.Chapters[candidates[j]].Progress
		if pi == pj {
			return candidates[i] < candidates[j]
		}
		return pi < pj
	})
	if top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}
