// Package model defines shared data structures.
package model

import (
	"sort"
	"time"
)

// Metadata defaults applied when a key is missing from a chapter descriptor.
const (
	DefaultPages     = 50
	DefaultExercises = 5
	DefaultStatus    = "unknown"
)

// Scoring controls how chapter progress is weighted.
type Scoring struct {
	CharsPerPage int
	TextWeight   float64
}

// DefaultScoring returns the 400 chars/page, 70/30 text/exercise weighting.
func DefaultScoring() Scoring {
	return Scoring{CharsPerPage: 400, TextWeight: 0.7}
}

// Metadata is the target descriptor for a chapter.
type Metadata struct {
	Pages     int    `json:"pages" yaml:"pages" toml:"pages"`
	Exercises int    `json:"exercises" yaml:"exercises" toml:"exercises"`
	Status    string `json:"status" yaml:"status" toml:"status"`
}

// DefaultMetadata returns metadata populated with the defaults.
func DefaultMetadata() Metadata {
	return Metadata{
		Pages:     DefaultPages,
		Exercises: DefaultExercises,
		Status:    DefaultStatus,
	}
}

// ContentStats holds counts derived from one chapter directory.
type ContentStats struct {
	WordCount      int `json:"word_count" yaml:"word_count"`
	CharCount      int `json:"char_count" yaml:"char_count"`
	LineCount      int `json:"line_count" yaml:"line_count"`
	CodeBlocks     int `json:"code_blocks" yaml:"code_blocks"`
	ExercisesCount int `json:"exercises_count" yaml:"exercises_count"`
	CodeExamples   int `json:"code_examples" yaml:"code_examples"`
}

// ChapterStats is the analyzed state of one chapter.
type ChapterStats struct {
	Name     string
	Metadata *Metadata
	Content  ContentStats
}

// Status returns the metadata status or the default label.
func (c ChapterStats) Status() string {
	return StatusOf(c.Metadata)
}

// StatusOf returns m's status, or DefaultStatus when m is nil or blank.
func StatusOf(m *Metadata) string {
	if m == nil || m.Status == "" {
		return DefaultStatus
	}
	return m.Status
}

// ChapterReport is the persisted per-chapter record.
type ChapterReport struct {
	Metadata     *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	ContentStats `yaml:",inline"`
	Progress     float64 `json:"progress_percentage" yaml:"progress_percentage"`
}

// Status returns the metadata status or the default label.
func (c ChapterReport) Status() string {
	return StatusOf(c.Metadata)
}

// Summary aggregates totals across all chapters.
type Summary struct {
	TotalWords        int     `json:"total_words" yaml:"total_words"`
	TotalChars        int     `json:"total_chars" yaml:"total_chars"`
	TotalExercises    int     `json:"total_exercises" yaml:"total_exercises"`
	TotalCodeExamples int     `json:"total_code_examples" yaml:"total_code_examples"`
	AverageProgress   float64 `json:"average_progress" yaml:"average_progress"`
}

// Add accumulates one chapter's counts into the summary.
func (s *Summary) Add(c ContentStats) {
	s.TotalWords += c.WordCount
	s.TotalChars += c.CharCount
	s.TotalExercises += c.ExercisesCount
	s.TotalCodeExamples += c.CodeExamples
}

// Report is the output of one aggregation run.
type Report struct {
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
	Chapters    map[string]ChapterReport `json:"chapters" yaml:"chapters"`
	Summary     Summary                  `json:"summary" yaml:"summary"`
}

// ChapterNames returns chapter names in lexicographic order.
func (r Report) ChapterNames() []string {
	names := make([]string, 0, len(r.Chapters))
	for name := range r.Chapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunSummary describes one recorded report in the history store.
type RunSummary struct {
	RunID       string
	Root        string
	GeneratedAt time.Time
	Summary     Summary
}

// ChapterPoint is one chapter's state within a recorded run.
type ChapterPoint struct {
	RunID          string
	Chapter        string
	Progress       float64
	CharCount      int
	ExercisesCount int
	Status         string
}
