package progress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/bookkit/internal/manuscript"
	"github.com/verte-zerg/bookkit/internal/model"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func nonSpace(n int) string {
	b := make([]byte, 0, n+n/50)
	for i := 0; i < n; i++ {
		b = append(b, 'x')
		if i%50 == 49 {
			b = append(b, '\n')
		}
	}
	return string(b)
}

// buildBook lays out ch01 (full scenario) and ch02 (no metadata).
func buildBook(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	chapters := filepath.Join(root, "manuscript", "chapters")
	writeFile(t, filepath.Join(chapters, "ch01", "metadata.yaml"), "pages: 10\nexercises: 2\nstatus: draft\n")
	writeFile(t, filepath.Join(chapters, "ch01", "chapter.md"), nonSpace(2000))
	writeFile(t, filepath.Join(chapters, "ch01", "exercises", "ex1.md"), "exercise")
	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, filepath.Join(root, "code-examples", "ch01", name, "Cargo.toml"), "[package]\n")
	}
	writeFile(t, filepath.Join(chapters, "ch02", "chapter.md"), "hello world\n")
	return root
}

func newTestGenerator(t *testing.T, root string) *Generator {
	analyzer := manuscript.NewAnalyzer(root, nil, zaptest.NewLogger(t))
	return NewGenerator(analyzer, model.DefaultScoring(), WithClock(func() time.Time { return fixedNow }))
}

func TestGenerateScenario(t *testing.T) {
	report, err := newTestGenerator(t, buildBook(t)).Generate()
	require.NoError(t, err)

	require.Equal(t, fixedNow, report.GeneratedAt)
	require.Equal(t, []string{"ch01", "ch02"}, report.ChapterNames())

	ch01 := report.Chapters["ch01"]
	require.Equal(t, 2000, ch01.CharCount)
	require.Equal(t, 1, ch01.ExercisesCount)
	require.Equal(t, 3, ch01.CodeExamples)
	require.Equal(t, 50.0, ch01.Progress)
	require.Equal(t, "draft", ch01.Status())

	ch02 := report.Chapters["ch02"]
	require.Nil(t, ch02.Metadata)
	require.Equal(t, 0.0, ch02.Progress)
	require.Equal(t, "unknown", ch02.Status())
	require.Equal(t, 10, ch02.CharCount)
	require.Equal(t, 12, ch02.WordCount)

	require.Equal(t, 25.0, report.Summary.AverageProgress)
}

func TestGenerateSummaryEqualsChapterSums(t *testing.T) {
	report, err := newTestGenerator(t, buildBook(t)).Generate()
	require.NoError(t, err)

	var want model.Summary
	for _, name := range report.ChapterNames() {
		want.Add(report.Chapters[name].ContentStats)
	}
	require.Equal(t, want.TotalWords, report.Summary.TotalWords)
	require.Equal(t, want.TotalChars, report.Summary.TotalChars)
	require.Equal(t, want.TotalExercises, report.Summary.TotalExercises)
	require.Equal(t, want.TotalCodeExamples, report.Summary.TotalCodeExamples)
}

func TestGenerateNoChapters(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "manuscript", "chapters"), 0o755))

	report, err := newTestGenerator(t, root).Generate()
	require.NoError(t, err)
	require.Empty(t, report.Chapters)
	require.Equal(t, 0.0, report.Summary.AverageProgress)
}

func TestGenerateMissingChaptersDir(t *testing.T) {
	_, err := newTestGenerator(t, t.TempDir()).Generate()
	require.ErrorIs(t, err, manuscript.ErrNoChaptersDir)
}

func TestGenerateAbortsOnMalformedMetadata(t *testing.T) {
	root := buildBook(t)
	writeFile(t, filepath.Join(root, "manuscript", "chapters", "ch03", "metadata.yaml"), "pages: [10\n")

	report, err := newTestGenerator(t, root).Generate()
	var metaErr *manuscript.MetadataError
	require.ErrorAs(t, err, &metaErr)
	require.Equal(t, "ch03", metaErr.Chapter)
	require.Nil(t, report.Chapters)
}
