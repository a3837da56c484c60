// Package store handles SQLite persistence of progress history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/bookkit/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so generated_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for recorded progress runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			generated_at TEXT NOT NULL,
			total_words INTEGER NOT NULL,
			total_chars INTEGER NOT NULL,
			total_exercises INTEGER NOT NULL,
			total_code_examples INTEGER NOT NULL,
			average_progress REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_chapters (
			run_id TEXT NOT NULL,
			chapter TEXT NOT NULL,
			progress REAL NOT NULL,
			char_count INTEGER NOT NULL,
			exercises_count INTEGER NOT NULL,
			status TEXT NOT NULL,
			PRIMARY KEY (run_id, chapter)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_root_generated_at ON runs(root, generated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun records a report and its chapters, returning the new run id.
func (s *Store) InsertRun(ctx context.Context, root string, report model.Report) (_ string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	id := uuid.NewString()
	sum := report.Summary
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, root, generated_at, total_words, total_chars, total_exercises, total_code_examples, average_progress)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		root,
		report.GeneratedAt.UTC().Format(timeLayout),
		sum.TotalWords,
		sum.TotalChars,
		sum.TotalExercises,
		sum.TotalCodeExamples,
		sum.AverageProgress,
	); err != nil {
		return "", err
	}

	if len(report.Chapters) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_chapters (run_id, chapter, progress, char_count, exercises_count, status)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, name := range report.ChapterNames() {
			ch := report.Chapters[name]
			if _, err = stmt.ExecContext(ctx, id, name, ch.Progress, ch.CharCount, ch.ExercisesCount, ch.Status()); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns runs for root in chronological order. last > 0 keeps
// only the most recent last runs.
func (s *Store) ListRuns(ctx context.Context, root string, last int) ([]model.RunSummary, error) {
	limit := -1
	if last > 0 {
		limit = last
	}
	query := `SELECT id, root, generated_at, total_words, total_chars, total_exercises, total_code_examples, average_progress
		FROM (
			SELECT * FROM runs
			WHERE root = ?
			ORDER BY generated_at DESC
			LIMIT ?
		)
		ORDER BY generated_at ASC`
	rows, err := s.db.QueryContext(ctx, query, root, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var generatedAt string
		if err := rows.Scan(&run.RunID, &run.Root, &generatedAt,
			&run.Summary.TotalWords, &run.Summary.TotalChars, &run.Summary.TotalExercises,
			&run.Summary.TotalCodeExamples, &run.Summary.AverageProgress); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return nil, err
		}
		run.GeneratedAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListChapterPoints returns chapter states for the given runs.
func (s *Store) ListChapterPoints(ctx context.Context, runIDs []string) ([]model.ChapterPoint, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT run_id, chapter, progress, char_count, exercises_count, status
		FROM run_chapters
		WHERE run_id IN (%s)
		ORDER BY chapter ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var points []model.ChapterPoint
	for rows.Next() {
		var pt model.ChapterPoint
		if err := rows.Scan(&pt.RunID, &pt.Chapter, &pt.Progress, &pt.CharCount, &pt.ExercisesCount, &pt.Status); err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
