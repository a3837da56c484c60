package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	report, err := newTestGenerator(t, buildBook(t)).Generate()
	require.NoError(t, err)

	for _, file := range []string{"progress-report.json", "progress-report.yaml"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), file)
			require.NoError(t, Save(path, report))

			loaded, err := Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(report, loaded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveJSONLayout(t *testing.T) {
	report, err := newTestGenerator(t, buildBook(t)).Generate()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "progress-report.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, Save(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "generated_at")
	require.Contains(t, raw, "summary")

	var chapters map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw["chapters"], &chapters))
	require.Contains(t, chapters["ch01"], "metadata")
	require.NotContains(t, chapters["ch02"], "metadata")
	require.Equal(t, 50.0, chapters["ch01"]["progress_percentage"])
	require.Equal(t, 3.0, chapters["ch01"]["code_examples"])

	require.Less(t, strings.Index(string(data), `"generated_at"`), strings.Index(string(data), `"chapters"`))
	require.Less(t, strings.Index(string(data), `"ch01"`), strings.Index(string(data), `"ch02"`))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
