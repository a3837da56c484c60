package progressui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/bookkit/internal/model"
	"github.com/verte-zerg/bookkit/internal/stats"
)

func sampleReport() model.Report {
	return model.Report{
		GeneratedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Chapters: map[string]model.ChapterReport{
			"ch02": {Progress: 0},
			"ch01": {
				Metadata:     &model.Metadata{Pages: 10, Exercises: 2, Status: "draft"},
				ContentStats: model.ContentStats{CharCount: 2000, ExercisesCount: 1, CodeExamples: 3},
				Progress:     50,
			},
		},
		Summary: model.Summary{TotalChars: 2000, TotalExercises: 1, TotalCodeExamples: 3, AverageProgress: 25},
	}
}

func TestChapterRowsInNameOrder(t *testing.T) {
	rows := chapterRows(sampleReport())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ch01" || rows[1][0] != "ch02" {
		t.Fatalf("unexpected order: %v", rows)
	}
	if rows[0][2] != "50.0" || rows[0][3] != "draft" || rows[0][6] != "3" {
		t.Fatalf("unexpected ch01 row: %v", rows[0])
	}
	if rows[1][3] != "unknown" {
		t.Fatalf("expected default status, got %q", rows[1][3])
	}
	if got := strings.Count(rows[0][1], "█"); got != tableBarWidth/2 {
		t.Fatalf("expected half-filled bar, got %d cells", got)
	}
}

func TestModelTabsAndView(t *testing.T) {
	m := NewModel(sampleReport(), stats.History{}, nil)
	if m.View() != "" {
		t.Fatalf("expected empty view before sizing")
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	if !strings.Contains(view, "Overview") || !strings.Contains(view, "average=25.0%") {
		t.Fatalf("unexpected overview view:\n%s", view)
	}
	if !strings.Contains(view, "Needs attention:") {
		t.Fatalf("expected lagging chapters in overview:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != tabChapters {
		t.Fatalf("expected chapters tab, got %d", m.activeTab)
	}
	if view := m.View(); !strings.Contains(view, "ch01") || !strings.Contains(view, "draft") {
		t.Fatalf("unexpected chapters view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if view := m.View(); !strings.Contains(view, "No recorded runs") {
		t.Fatalf("unexpected history view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.activeTab != tabHistory {
		t.Fatalf("expected wrap back to history, got %d", m.activeTab)
	}
}

func TestModelShowsHistoryError(t *testing.T) {
	m := NewModel(sampleReport(), stats.History{}, errors.New("db locked"))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "history unavailable: db locked") {
		t.Fatalf("expected history error in footer")
	}
}

func TestModelQuit(t *testing.T) {
	m := NewModel(sampleReport(), stats.History{}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
