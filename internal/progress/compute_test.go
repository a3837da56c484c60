package progress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bookkit/internal/model"
)

func chapter(meta *model.Metadata, chars, exercises int) model.ChapterStats {
	return model.ChapterStats{
		Name:     "ch",
		Metadata: meta,
		Content:  model.ContentStats{CharCount: chars, ExercisesCount: exercises},
	}
}

func TestComputeScenario(t *testing.T) {
	meta := &model.Metadata{Pages: 10, Exercises: 2, Status: "draft"}
	require.Equal(t, 50.0, Compute(chapter(meta, 2000, 1), model.DefaultScoring()))
}

func TestComputeWithoutMetadataIsZero(t *testing.T) {
	require.Equal(t, 0.0, Compute(chapter(nil, 100000, 20), model.DefaultScoring()))
}

func TestComputeZeroTargets(t *testing.T) {
	scoring := model.DefaultScoring()
	noPages := &model.Metadata{Pages: 0, Exercises: 2}
	require.Equal(t, 30.0, Compute(chapter(noPages, 5000, 2), scoring))

	noExercises := &model.Metadata{Pages: 1, Exercises: 0}
	require.Equal(t, 70.0, Compute(chapter(noExercises, 400, 3), scoring))

	neither := &model.Metadata{}
	require.Equal(t, 0.0, Compute(chapter(neither, 400, 3), scoring))
}

func TestComputeCapsAtHundred(t *testing.T) {
	meta := &model.Metadata{Pages: 1, Exercises: 1}
	require.Equal(t, 100.0, Compute(chapter(meta, 1_000_000, 50), model.DefaultScoring()))
}

func TestComputeMonotonic(t *testing.T) {
	scoring := model.DefaultScoring()
	meta := &model.Metadata{Pages: 3, Exercises: 4}

	prev := -1.0
	for chars := 0; chars <= 2000; chars += 37 {
		got := Compute(chapter(meta, chars, 1), scoring)
		require.GreaterOrEqual(t, got, prev, "chars=%d", chars)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 100.0)
		prev = got
	}

	prev = -1.0
	for ex := 0; ex <= 8; ex++ {
		got := Compute(chapter(meta, 600, ex), scoring)
		require.GreaterOrEqual(t, got, prev, "exercises=%d", ex)
		require.LessOrEqual(t, got, 100.0)
		prev = got
	}
}

func TestComputeCustomScoring(t *testing.T) {
	meta := &model.Metadata{Pages: 2, Exercises: 4}
	scoring := model.Scoring{CharsPerPage: 500, TextWeight: 0.5}
	// text 500/1000 = 50%, exercises 1/4 = 25%.
	require.Equal(t, 37.5, Compute(chapter(meta, 500, 1), scoring))
}

func TestRound1HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{12.25, 12.3},
		{12.35, 12.4},
		{35.349999999999994, 35.4},
		{0.75, 0.8},
		{0.25, 0.3},
		{33.33333, 33.3},
		{66.66666, 66.7},
		{100, 100},
		{0, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Round1(tc.in), "Round1(%v)", tc.in)
	}
}

func TestComputeTiesRoundUp(t *testing.T) {
	scoring := model.DefaultScoring()
	// text 2020/4000 = 50.5%, 0.7*50.5 = 35.35.
	require.Equal(t, 35.4, Compute(chapter(&model.Metadata{Pages: 10, Exercises: 2}, 2020, 0), scoring))
	// text 42/400 = 10.5%, 0.7*10.5 = 7.35.
	require.Equal(t, 7.4, Compute(chapter(&model.Metadata{Pages: 1, Exercises: 2}, 42, 0), scoring))
}

func TestAverage(t *testing.T) {
	require.Equal(t, 0.0, Average(nil))
	require.Equal(t, 25.0, Average([]float64{50, 0}))
	require.Equal(t, 33.3, Average([]float64{100, 0, 0}))
	require.Equal(t, 12.4, Average([]float64{12.3, 12.4}))
}
