package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/bookkit/internal/model"
	"github.com/verte-zerg/bookkit/internal/store"
)

func TestBuildHistory(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	first := model.Report{
		GeneratedAt: base,
		Chapters:    map[string]model.ChapterReport{"ch01": {Progress: 10}},
		Summary:     model.Summary{AverageProgress: 10},
	}
	second := model.Report{
		GeneratedAt: base.Add(24 * time.Hour),
		Chapters: map[string]model.ChapterReport{
			"ch01": {Progress: 40},
			"ch02": {Progress: 20},
		},
		Summary: model.Summary{AverageProgress: 30},
	}
	for _, r := range []model.Report{first, second} {
		if _, err := st.InsertRun(ctx, "/book", r); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	h, err := BuildHistory(ctx, st, "/book", 0)
	if err != nil {
		t.Fatalf("build history: %v", err)
	}
	if len(h.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(h.Runs))
	}
	if strings.Join(h.Chapters, ",") != "ch01,ch02" {
		t.Fatalf("unexpected chapters: %v", h.Chapters)
	}
	if got := h.Series["ch01"]; got[0] != 10 || got[1] != 40 {
		t.Fatalf("unexpected ch01 series: %v", got)
	}
	if got := h.Series["ch02"]; got[0] != 0 || got[1] != 20 {
		t.Fatalf("unexpected ch02 series: %v", got)
	}
	if got := h.AverageSeries(); got[0] != 10 || got[1] != 30 {
		t.Fatalf("unexpected average series: %v", got)
	}

	var buf bytes.Buffer
	if err := RenderHistory(&buf, h); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Recorded Runs", "Generated", "30.0%", "Trend", "ch02", " 20.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, History{}); err != nil {
		t.Fatalf("render history: %v", err)
	}
	if !strings.Contains(buf.String(), "No recorded runs") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}
}
