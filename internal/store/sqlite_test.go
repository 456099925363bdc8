package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/readscope/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(subject string, at time.Time) *model.Report {
	return &model.Report{
		Subject:    subject,
		Source:     subject + ".txt",
		SourceKind: "text",
		AnalyzedAt: at,
		Statistics: model.TextStatistics{WordCount: 42, SentenceCount: 3, ParagraphCount: 1},
		Scored:     true,
		Scores:     model.ReadabilityScore{FleschReadingEase: 71.5, AverageGradeLevel: 7.25},
		Band:       model.ReadingBand{Label: "Fairly Easy"},
		Issues: []model.ReadabilityIssue{
			{Type: model.IssueJargon, Description: "Jargon detected", Suggestion: "Use plain words"},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	report := sampleReport("intro", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rec, err := s.Save(ctx, report)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(rec.ID) != 26 || report.ID != rec.ID {
		t.Errorf("expected a ULID assigned to report and record, got %q / %q", rec.ID, report.ID)
	}
	if rec.IssueCount != 1 || rec.WordCount != 42 || !rec.Scored {
		t.Errorf("unexpected record summary: %+v", rec)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Subject != "intro" || got.Scores.FleschReadingEase != 71.5 || got.Band.Label != "Fairly Easy" {
		t.Errorf("unexpected report: %+v", got)
	}
	if len(got.Issues) != 1 || got.Issues[0].Type != model.IssueJargon {
		t.Errorf("expected issues to round-trip, got %+v", got.Issues)
	}
	if !got.AnalyzedAt.Equal(report.AnalyzedAt) {
		t.Errorf("expected analyzed_at %v, got %v", report.AnalyzedAt, got.AnalyzedAt)
	}
}

func TestSave_SetsTimestamp(t *testing.T) {
	s := newTestStore(t)
	report := sampleReport("now", time.Time{})

	if _, err := s.Save(context.Background(), report); err != nil {
		t.Fatal(err)
	}
	if report.AnalyzedAt.IsZero() {
		t.Error("expected Save to stamp the report")
	}
}

func TestList_NewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		if _, err := s.Save(ctx, sampleReport(name, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Subject != "third" || records[1].Subject != "second" {
		t.Errorf("expected newest first, got %s, %s", records[0].Subject, records[1].Subject)
	}
	if !records[0].AnalyzedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("unexpected timestamp: %v", records[0].AnalyzedAt)
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected default limit to include all 3, got %d", len(all))
	}
}

func TestGet_Prefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Save(ctx, sampleReport("prefix", time.Now().UTC()))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, rec.ID[:12])
	if err != nil {
		t.Fatalf("Get by prefix: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("expected %s, got %s", rec.ID, got.ID)
	}
}

func TestGet_AmbiguousPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)

	a, _ := s.Save(ctx, sampleReport("a", at))
	if _, err := s.Save(ctx, sampleReport("b", at)); err != nil {
		t.Fatal(err)
	}

	// Same millisecond, so the 10-character time prefix is shared
	if _, err := s.Get(ctx, a.ID[:10]); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("expected ErrAmbiguousID, got %v", err)
	}
}

func TestGetAndDelete_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from Get, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from Delete, got %v", err)
	}
	if _, err := s.Get(ctx, "  "); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Save(ctx, sampleReport("gone", time.Now().UTC()))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted record to be gone, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s1, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s1.Save(ctx, sampleReport("kept", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	_ = s1.Close()

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s2.Close() }()

	records, err := s2.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Subject != "kept" {
		t.Errorf("expected history to survive reopen, got %+v", records)
	}
}
