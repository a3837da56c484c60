// Package manuscript reads chapter directories from a manuscript tree.
package manuscript

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/bookkit/internal/config"
	"github.com/verte-zerg/bookkit/internal/fsutil"
	"github.com/verte-zerg/bookkit/internal/model"
)

// DefaultDescriptors are the build files that mark one code example.
var DefaultDescriptors = []string{"Cargo.toml"}

// ErrNoChaptersDir is returned when the chapters directory does not exist.
var ErrNoChaptersDir = errors.New("chapters directory not found")

const exercisesDir = "exercises"

// Analyzer inspects chapters beneath a project root.
type Analyzer struct {
	root        string
	descriptors map[string]struct{}
	logger      *zap.Logger
	readFile    func(string) ([]byte, error)
}

// NewAnalyzer returns an Analyzer for root. An empty descriptor list falls
// back to DefaultDescriptors.
func NewAnalyzer(root string, descriptors []string, logger *zap.Logger) *Analyzer {
	if len(descriptors) == 0 {
		descriptors = DefaultDescriptors
	}
	set := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		d = strings.TrimSpace(d)
		if d != "" {
			set[d] = struct{}{}
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{root: root, descriptors: set, logger: logger, readFile: os.ReadFile}
}

// Root returns the project root.
func (a *Analyzer) Root() string {
	return a.root
}

// ChaptersDir returns the directory chapters are discovered in.
func (a *Analyzer) ChaptersDir() string {
	return config.ChaptersDir(a.root)
}

// ListChapters returns chapter directory paths sorted by name.
func (a *Analyzer) ListChapters() ([]string, error) {
	dir := a.ChaptersDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoChaptersDir, dir)
		}
		return nil, fmt.Errorf("failed to read chapters directory: %w", err)
	}
	// os.ReadDir sorts by filename.
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if isDir, err = fsutil.DirExists(path); err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", path, err)
			}
		}
		if isDir {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// Analyze reads one chapter directory. Missing optional inputs leave their
// facet at zero; a malformed metadata descriptor returns *MetadataError.
func (a *Analyzer) Analyze(chapterDir string) (model.ChapterStats, error) {
	name := filepath.Base(chapterDir)
	stats := model.ChapterStats{Name: name}

	metaPath, err := firstExisting(chapterDir, MetadataFiles)
	if err != nil {
		return model.ChapterStats{}, err
	}
	if metaPath != "" {
		data, err := a.readFile(metaPath)
		if err != nil {
			return model.ChapterStats{}, fmt.Errorf("chapter %s: failed to read metadata: %w", name, err)
		}
		meta, err := ParseMetadata(metaPath, data)
		if err != nil {
			return model.ChapterStats{}, &MetadataError{Chapter: name, Path: metaPath, Err: err}
		}
		stats.Metadata = &meta
	}

	contentPath, err := firstExisting(chapterDir, ContentFiles)
	if err != nil {
		return model.ChapterStats{}, err
	}
	if contentPath != "" {
		data, err := a.readFile(contentPath)
		if err != nil {
			return model.ChapterStats{}, fmt.Errorf("chapter %s: failed to read content: %w", name, err)
		}
		stats.Content = MeasureText(string(data))
	}

	stats.Content.ExercisesCount, err = countExercises(filepath.Join(chapterDir, exercisesDir))
	if err != nil {
		return model.ChapterStats{}, fmt.Errorf("chapter %s: %w", name, err)
	}
	stats.Content.CodeExamples, err = a.countCodeExamples(a.CodeExamplesDirFor(name))
	if err != nil {
		return model.ChapterStats{}, fmt.Errorf("chapter %s: %w", name, err)
	}

	a.logger.Debug("analyzed chapter",
		zap.String("chapter", name),
		zap.Bool("metadata", stats.Metadata != nil),
		zap.Bool("content", contentPath != ""),
		zap.Int("chars", stats.Content.CharCount),
		zap.Int("exercises", stats.Content.ExercisesCount),
		zap.Int("code_examples", stats.Content.CodeExamples))
	return stats, nil
}

// CodeExamplesDirFor maps a chapter name to its code examples directory.
func (a *Analyzer) CodeExamplesDirFor(chapter string) string {
	return filepath.Join(config.CodeExamplesDir(a.root), strings.ReplaceAll(chapter, "-", "_"))
}

// ContentPath returns the chapter's primary content file, or "" if absent.
func ContentPath(chapterDir string) (string, error) {
	return firstExisting(chapterDir, ContentFiles)
}

func firstExisting(dir string, names []string) (string, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		ok, err := fsutil.FileExists(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if ok {
			return path, nil
		}
	}
	return "", nil
}

// countExercises counts regular, non-hidden files directly inside dir.
func countExercises(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read exercises: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		count++
	}
	return count, nil
}

func (a *Analyzer) countCodeExamples(dir string) (int, error) {
	ok, err := fsutil.DirExists(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to stat code examples: %w", err)
	}
	if !ok {
		return 0, nil
	}
	count := 0
	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := a.descriptors[d.Name()]; ok {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk code examples: %w", err)
	}
	return count, nil
}
