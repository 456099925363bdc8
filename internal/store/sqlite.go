// Package store keeps a history of analysis reports in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/readscope/internal/model"
)

var (
	// ErrNotFound is returned when no record matches an id
	ErrNotFound = errors.New("record not found")
	// ErrAmbiguousID is returned when an id prefix matches several records
	ErrAmbiguousID = errors.New("id prefix matches more than one record")
)

// Record is the summary row stored for each analysis
type Record struct {
	ID                string
	Subject           string
	Source            string
	SourceKind        string
	AnalyzedAt        time.Time
	WordCount         int
	Scored            bool
	FleschReadingEase float64
	AverageGradeLevel float64
	IssueCount        int
}

// SQLiteStore stores reports in SQLite
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS analyses (
		id                  TEXT PRIMARY KEY,
		subject             TEXT NOT NULL,
		source              TEXT NOT NULL,
		source_kind         TEXT NOT NULL,
		analyzed_at         TEXT NOT NULL,
		word_count          INTEGER NOT NULL,
		scored              INTEGER NOT NULL,
		flesch_reading_ease REAL NOT NULL,
		average_grade_level REAL NOT NULL,
		issue_count         INTEGER NOT NULL,
		report              TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_source ON analyses(source);
	CREATE INDEX IF NOT EXISTS idx_analyses_analyzed ON analyses(analyzed_at DESC);
	`)
	return err
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Save assigns the report an id and stores it
func (s *SQLiteStore) Save(ctx context.Context, report *model.Report) (Record, error) {
	if report.AnalyzedAt.IsZero() {
		report.AnalyzedAt = time.Now().UTC()
	}
	report.ID = s.newID(report.AnalyzedAt)

	payload, err := json.Marshal(report)
	if err != nil {
		return Record{}, fmt.Errorf("marshal report: %w", err)
	}

	rec := recordOf(report)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, subject, source, source_kind, analyzed_at, word_count, scored,
		                      flesch_reading_ease, average_grade_level, issue_count, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Subject, rec.Source, rec.SourceKind, rec.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		rec.WordCount, rec.Scored, rec.FleschReadingEase, rec.AverageGradeLevel, rec.IssueCount, string(payload))
	if err != nil {
		return Record{}, fmt.Errorf("insert analysis: %w", err)
	}

	return rec, nil
}

// List returns the most recent records, newest first
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject, source, source_kind, analyzed_at, word_count, scored,
		       flesch_reading_ease, average_grade_level, issue_count
		FROM analyses
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		var analyzedAt string
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.Source, &rec.SourceKind, &analyzedAt,
			&rec.WordCount, &rec.Scored, &rec.FleschReadingEase, &rec.AverageGradeLevel, &rec.IssueCount); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.AnalyzedAt, _ = time.Parse(time.RFC3339Nano, analyzedAt)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Get returns the stored report for an id or a unique id prefix
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Report, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var payload string
	err = s.db.QueryRowContext(ctx, `SELECT report FROM analyses WHERE id = ?`, fullID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", fullID, err)
	}
	return &report, nil
}

// Delete removes the record for an id or a unique id prefix
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, fullID)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return "", fmt.Errorf("empty id: %w", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM analyses WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return "", fmt.Errorf("query analysis: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []string
	for rows.Next() {
		var match string
		if err := rows.Scan(&match); err != nil {
			return "", fmt.Errorf("scan id: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s: %w", id, ErrAmbiguousID)
	}
}

func recordOf(report *model.Report) Record {
	return Record{
		ID:                report.ID,
		Subject:           report.Subject,
		Source:            report.Source,
		SourceKind:        report.SourceKind,
		AnalyzedAt:        report.AnalyzedAt,
		WordCount:         report.Statistics.WordCount,
		Scored:            report.Scored,
		FleschReadingEase: report.Scores.FleschReadingEase,
		AverageGradeLevel: report.Scores.AverageGradeLevel,
		IssueCount:        len(report.Issues),
	}
}
