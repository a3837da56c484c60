// Package zenn converts manuscript chapters into Zenn articles.
package zenn

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/bookkit/internal/fsutil"
	"github.com/verte-zerg/bookkit/internal/manuscript"
)

const untitled = "Untitled"

var (
	fencePattern = regexp.MustCompile("(?m)^([ \t]*```)[ \t]*([A-Za-z0-9_+#.-]+)")
	imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
)

// FrontMatter is the article header Zenn reads.
type FrontMatter struct {
	Title           string   `yaml:"title"`
	Emoji           string   `yaml:"emoji"`
	Type            string   `yaml:"type"`
	Topics          []string `yaml:"topics"`
	Published       bool     `yaml:"published"`
	PublicationName string   `yaml:"publication_name,omitempty"`
}

// Options holds per-book article settings.
type Options struct {
	Emoji           string
	Type            string
	Topics          []string
	Published       bool
	PublicationName string
	// ImageBase, when set, prefixes relative image paths.
	ImageBase string
}

// DefaultOptions returns the settings used when the config file is silent.
func DefaultOptions() Options {
	return Options{
		Emoji:           "🦀",
		Type:            "tech",
		Topics:          []string{"rust", "programming", "systems"},
		PublicationName: "rust_professional_book",
	}
}

// Result records one converted chapter.
type Result struct {
	Chapter string
	Source  string
	Output  string
	Title   string
}

// Converter writes Zenn articles for every chapter with content.
type Converter struct {
	analyzer  *manuscript.Analyzer
	outputDir string
	opts      Options
	now       func() time.Time
	logger    *zap.Logger
}

// NewConverter returns a Converter writing into outputDir.
func NewConverter(analyzer *manuscript.Analyzer, outputDir string, opts Options, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		analyzer:  analyzer,
		outputDir: outputDir,
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

// ConvertAll converts chapters in name order. Chapters without a content
// file are skipped.
func (c *Converter) ConvertAll() ([]Result, error) {
	dirs, err := c.analyzer.ListChapters()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	var results []Result
	for _, dir := range dirs {
		source, err := manuscript.ContentPath(dir)
		if err != nil {
			return nil, err
		}
		if source == "" {
			c.logger.Debug("skipping chapter without content", zap.String("chapter", filepath.Base(dir)))
			continue
		}
		res, err := c.ConvertChapter(filepath.Base(dir), source)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ConvertChapter converts one content file into <chapter>-<YYYYMMDD>.md.
func (c *Converter) ConvertChapter(chapter, source string) (Result, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return Result{}, fmt.Errorf("chapter %s: failed to read content: %w", chapter, err)
	}
	content := string(data)
	fm := FrontMatter{
		Title:           ExtractTitle(content),
		Emoji:           c.opts.Emoji,
		Type:            c.opts.Type,
		Topics:          c.opts.Topics,
		Published:       c.opts.Published,
		PublicationName: c.opts.PublicationName,
	}
	header, err := RenderFrontMatter(fm)
	if err != nil {
		return Result{}, fmt.Errorf("chapter %s: %w", chapter, err)
	}
	body := ConvertContent(content, c.opts.ImageBase)

	out := filepath.Join(c.outputDir, fmt.Sprintf("%s-%s.md", chapter, c.now().Format("20060102")))
	err = fsutil.WriteFileAtomic(out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "---\n%s---\n\n%s", header, body)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("converted chapter", zap.String("source", source), zap.String("output", out))
	return Result{Chapter: chapter, Source: source, Output: out, Title: fm.Title}, nil
}

// RenderFrontMatter serializes fm as YAML without document markers.
func RenderFrontMatter(fm FrontMatter) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	return buf.String(), nil
}

// ExtractTitle returns the text of the first "# " heading.
func ExtractTitle(content string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "# ") {
			if title := strings.TrimSpace(line[2:]); title != "" {
				return title
			}
		}
	}
	return untitled
}

// ConvertContent lowercases code fence languages and, when imageBase is
// set, rewrites relative image paths against it.
func ConvertContent(content, imageBase string) string {
	content = fencePattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := fencePattern.FindStringSubmatch(m)
		return sub[1] + strings.ToLower(sub[2])
	})
	if imageBase == "" {
		return content
	}
	base := strings.TrimRight(imageBase, "/")
	return imagePattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := imagePattern.FindStringSubmatch(m)
		alt, target := sub[1], sub[2]
		if isAbsoluteRef(target) {
			return m
		}
		return fmt.Sprintf("![%s](%s/%s)", alt, base, imageRelPath(target))
	})
}

// imageRelPath cleans a relative image reference and drops leading "./"
// and "../" segments so it nests under the base URL.
func imageRelPath(target string) string {
	rel := path.Clean(filepath.ToSlash(target))
	for strings.HasPrefix(rel, "../") {
		rel = strings.TrimPrefix(rel, "../")
	}
	return rel
}

func isAbsoluteRef(target string) bool {
	return strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "#") ||
		strings.Contains(target, "://") ||
		strings.HasPrefix(target, "data:")
}
