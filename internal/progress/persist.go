package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/bookkit/internal/fsutil"
	"github.com/verte-zerg/bookkit/internal/model"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Save writes the report to path, replacing any existing file. The format
// is YAML for .yaml/.yml paths and indented JSON otherwise.
func Save(path string, report model.Report) error {
	return fsutil.WriteFileAtomic(path, func(w io.Writer) error {
		return Encode(w, report, isYAML(path))
	})
}

// Encode serializes the report as YAML or indented JSON.
func Encode(w io.Writer, report model.Report, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Load reads a report previously written by Save.
func Load(path string) (model.Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Report{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only report.
			_ = cerr
		}
	}()

	var report model.Report
	if isYAML(path) {
		err = yaml.NewDecoder(file).Decode(&report)
	} else {
		err = json.NewDecoder(file).Decode(&report)
	}
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	if report.Chapters == nil {
		report.Chapters = map[string]model.ChapterReport{}
	}
	return report, nil
}
