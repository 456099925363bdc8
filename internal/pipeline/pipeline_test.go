package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/readscope/internal/cache"
	"github.com/ppiankov/readscope/internal/llm"
	"github.com/ppiankov/readscope/internal/model"
	"github.com/ppiankov/readscope/internal/store"
	"github.com/ppiankov/readscope/internal/validate"
)

const plainText = "The cat sat on the mat. It was a sunny day. The dog ran to the park and played with a ball."

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Dir = ""
	cfg.Output.Color = false
	cfg.HTTP.RespectRobots = false
	cfg.HTTP.Timeout = 5 * time.Second
	return cfg
}

func newTestPipeline(t *testing.T, cfg *model.Config, opts ...Option) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithOutput(&out, &bytes.Buffer{})}, opts...)
	return NewPipeline(cfg, opts...), &out
}

// memoryHistory implements History
type memoryHistory struct {
	mu      sync.Mutex
	reports []*model.Report
	err     error
}

func (h *memoryHistory) Save(ctx context.Context, report *model.Report) (store.Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return store.Record{}, h.err
	}
	report.ID = fmt.Sprintf("ID%d", len(h.reports)+1)
	h.reports = append(h.reports, report)
	return store.Record{ID: report.ID, Subject: report.Subject}, nil
}

// stubProvider implements llm.Provider
type stubProvider struct {
	advice string
	err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Advise(ctx context.Context, req llm.AdviseRequest) (*llm.AdviseResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.AdviseResponse{Advice: s.advice, Model: "stub-1", TokensUsed: 12}, nil
}

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func TestAnalyzeText(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())

	report, err := p.AnalyzeText(context.Background(), "sample", plainText)
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}

	if report.Subject != "sample" || report.SourceKind != "text" {
		t.Errorf("unexpected subject/kind: %q/%q", report.Subject, report.SourceKind)
	}
	if !report.Scored {
		t.Fatal("expected report to be scored")
	}
	if report.Statistics.WordCount != 22 || report.Statistics.SentenceCount != 3 {
		t.Errorf("unexpected statistics: %+v", report.Statistics)
	}
	if report.Band.Label == "" {
		t.Error("expected a reading band for a scored report")
	}
	if len(report.Formulas) != 5 {
		t.Errorf("expected 5 formula breakdowns, got %d", len(report.Formulas))
	}
	if report.Issues == nil || len(report.Issues) != 0 {
		t.Errorf("expected an empty, non-nil issue list, got %#v", report.Issues)
	}
	if report.Cached {
		t.Error("first analysis should not be cached")
	}
	if report.AnalyzedAt.IsZero() {
		t.Error("expected an analysis timestamp")
	}
}

func TestAnalyzeText_CacheHit(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())
	ctx := context.Background()

	if _, err := p.AnalyzeText(ctx, "first", plainText); err != nil {
		t.Fatal(err)
	}
	second, err := p.AnalyzeText(ctx, "second", plainText)
	if err != nil {
		t.Fatal(err)
	}

	if !second.Cached {
		t.Error("expected the second analysis of the same text to be cached")
	}
	if second.Subject != "second" {
		t.Errorf("subject must come from the request, got %q", second.Subject)
	}
	if !second.Scored || second.Statistics.WordCount != 22 {
		t.Errorf("cached result lost data: %+v", second.Statistics)
	}
}

func TestAnalyzeText_CacheDisabled(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig(), WithCache(nil))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		report, err := p.AnalyzeText(ctx, "again", plainText)
		if err != nil {
			t.Fatal(err)
		}
		if report.Cached {
			t.Errorf("run %d: expected no caching", i)
		}
	}
}

func TestAnalyzeText_CustomCache(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	p, _ := newTestPipeline(t, testConfig(), WithCache(c))

	if _, err := p.AnalyzeText(context.Background(), "x", plainText); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("expected one cached result, got %d", c.Len())
	}
}

func TestAnalyzeText_Policy(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())
	ctx := context.Background()

	if _, err := p.AnalyzeText(ctx, "short", "Too short."); !errors.Is(err, validate.ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
	if _, err := p.AnalyzeText(ctx, "blank", "   \n\t "); !errors.Is(err, validate.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestAnalyzeText_Issues(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())

	text := "We leverage synergy to optimize the paradigm. The report was reviewed by the team and was approved by the board."
	report, err := p.AnalyzeText(context.Background(), "jargon", text)
	if err != nil {
		t.Fatal(err)
	}
	if !report.HasIssue(model.IssueJargon) {
		t.Errorf("expected jargon issue, got %+v", report.Issues)
	}
	if !report.HasIssue(model.IssuePassiveVoice) {
		t.Errorf("expected passive voice issue, got %+v", report.Issues)
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain-notes.txt")
	if err := os.WriteFile(path, []byte(plainText+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, _ := newTestPipeline(t, testConfig())
	report, err := p.AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if report.Subject != "plain-notes" {
		t.Errorf("expected subject from file name, got %q", report.Subject)
	}
	if report.Source != path || report.SourceKind != "text" {
		t.Errorf("unexpected source %q (%s)", report.Source, report.SourceKind)
	}
	if report.Statistics.WordCount != 22 {
		t.Errorf("expected 22 words, got %d", report.Statistics.WordCount)
	}
}

func TestAnalyzeFile_HTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	page := `<!DOCTYPE html><html><head><title>Garden Guide</title><script>var x = 1;</script></head>
<body><nav>Home About</nav><main><p>` + plainText + `</p></main></body></html>`
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	p, _ := newTestPipeline(t, testConfig())
	report, err := p.AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if report.SourceKind != "html" {
		t.Errorf("expected html kind, got %q", report.SourceKind)
	}
	if report.Subject != "Garden Guide" {
		t.Errorf("expected subject from <title>, got %q", report.Subject)
	}
	if report.Statistics.WordCount < 22 {
		t.Errorf("expected the paragraph text to be analyzed, got %d words", report.Statistics.WordCount)
	}
}

func TestAnalyzeFile_Errors(t *testing.T) {
	dir := t.TempDir()
	p, _ := newTestPipeline(t, testConfig())
	ctx := context.Background()

	if _, err := p.AnalyzeFile(ctx, dir); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("expected directory error, got %v", err)
	}
	if _, err := p.AnalyzeFile(ctx, filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	cfg := testConfig()
	cfg.Input.MaxBytes = 10
	big := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(big, []byte(plainText), 0o644); err != nil {
		t.Fatal(err)
	}
	small, _ := newTestPipeline(t, cfg)
	if _, err := small.AnalyzeFile(ctx, big); !errors.Is(err, validate.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestAnalyzeSource_Stdin(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig(), WithStdin(strings.NewReader(plainText)))

	report, err := p.AnalyzeSource(context.Background(), StdinSource)
	if err != nil {
		t.Fatalf("AnalyzeSource failed: %v", err)
	}
	if report.Source != "stdin" || report.Subject != "stdin" {
		t.Errorf("unexpected source %q subject %q", report.Source, report.Subject)
	}
}

func TestAnalyzeReader_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Input.MaxBytes = 16
	p, _ := newTestPipeline(t, cfg)

	if _, err := p.AnalyzeReader(context.Background(), "stdin", strings.NewReader(plainText)); !errors.Is(err, validate.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestAnalyzeReader_DetectsHTML(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig())
	page := "<html><body><p>" + plainText + "</p></body></html>"

	report, err := p.AnalyzeReader(context.Background(), "stdin", strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if report.SourceKind != "html" {
		t.Errorf("expected html detection, got %q", report.SourceKind)
	}
	if report.Statistics.WordCount != 22 {
		t.Errorf("markup must not be counted, got %d words", report.Statistics.WordCount)
	}
}

func TestAnalyzeSource_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<html><head><title>Park Day</title></head><body><article><p>%s</p></article></body></html>", plainText)
	}))
	defer server.Close()

	p, _ := newTestPipeline(t, testConfig())
	report, err := p.AnalyzeSource(context.Background(), server.URL+"/park-day")
	if err != nil {
		t.Fatalf("AnalyzeSource failed: %v", err)
	}
	if report.Subject != "Park Day" || report.SourceKind != "html" {
		t.Errorf("unexpected subject/kind: %q/%q", report.Subject, report.SourceKind)
	}
	if report.FetchMeta == nil || report.FetchMeta.StatusCode != http.StatusOK {
		t.Errorf("expected fetch metadata, got %+v", report.FetchMeta)
	}
}

func TestAnalyzeSource_URLNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	p, _ := newTestPipeline(t, testConfig())
	_, err := p.AnalyzeSource(context.Background(), server.URL+"/missing")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
}

func TestAnalyze_RecordsHistory(t *testing.T) {
	history := &memoryHistory{}
	p, _ := newTestPipeline(t, testConfig(), WithHistory(history))

	report, err := p.AnalyzeText(context.Background(), "kept", plainText)
	if err != nil {
		t.Fatal(err)
	}
	if len(history.reports) != 1 || report.ID != "ID1" {
		t.Errorf("expected the report to be recorded, got %d records and id %q", len(history.reports), report.ID)
	}
}

func TestAnalyze_HistoryFailureIsNotFatal(t *testing.T) {
	history := &memoryHistory{err: errors.New("disk full")}
	p, _ := newTestPipeline(t, testConfig(), WithHistory(history))

	if _, err := p.AnalyzeText(context.Background(), "kept", plainText); err != nil {
		t.Errorf("history errors must not fail the analysis, got %v", err)
	}
}

func TestAnalyze_WithAdvice(t *testing.T) {
	advisor := llm.NewAdvisorWithProvider(&stubProvider{advice: "Use shorter words."}, llm.Config{Provider: "stub"})
	p, _ := newTestPipeline(t, testConfig(), WithAdvisor(advisor))

	report, err := p.AnalyzeText(context.Background(), "advised", plainText)
	if err != nil {
		t.Fatal(err)
	}
	if report.LLM == nil || !report.LLM.Enabled {
		t.Fatalf("expected advice, got %+v", report.LLM)
	}
	if report.LLM.AdviceMD != "Use shorter words." || report.LLM.Provider != "stub" {
		t.Errorf("unexpected advice: %+v", report.LLM)
	}

	baseline, _ := newTestPipeline(t, testConfig())
	plain, err := baseline.AnalyzeText(context.Background(), "advised", plainText)
	if err != nil {
		t.Fatal(err)
	}
	if plain.Scores != report.Scores {
		t.Error("advice must not change scores")
	}
}

func TestAnalyze_AdviceFailureBecomesWarning(t *testing.T) {
	advisor := llm.NewAdvisorWithProvider(&stubProvider{err: errors.New("quota")}, llm.Config{Provider: "stub"})
	p, _ := newTestPipeline(t, testConfig(), WithAdvisor(advisor))

	report, err := p.AnalyzeText(context.Background(), "advised", plainText)
	if err != nil {
		t.Fatalf("advice failure must not fail the analysis: %v", err)
	}
	if report.LLM == nil || report.LLM.Enabled || len(report.LLM.Warnings) == 0 {
		t.Errorf("expected a disabled advice block with warnings, got %+v", report.LLM)
	}
}

func TestNewPipeline_AdvisorInitWarning(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "mystery"

	var out, log bytes.Buffer
	p := NewPipeline(cfg, WithOutput(&out, &log))

	if p.advisor != nil {
		t.Error("an unknown provider must leave advice disabled")
	}
	if !strings.Contains(log.String(), "Warning: Failed to initialize LLM provider: unknown LLM provider: mystery") {
		t.Errorf("expected the warning on the configured log writer, got %q", log.String())
	}
	if out.Len() != 0 {
		t.Errorf("warnings must not reach report output, got %q", out.String())
	}

	log.Reset()
	advisor := llm.NewAdvisorWithProvider(&stubProvider{advice: "ok"}, llm.Config{Provider: "stub"})
	p = NewPipeline(cfg, WithOutput(&out, &log), WithAdvisor(advisor))
	if p.advisor != advisor {
		t.Error("WithAdvisor must take precedence over the configured provider")
	}
	if log.Len() != 0 {
		t.Errorf("no provider should be built when an advisor is supplied, got %q", log.String())
	}
}

func TestRenderReport_Files(t *testing.T) {
	dir := t.TempDir()
	advisor := llm.NewAdvisorWithProvider(&stubProvider{advice: "Split the second sentence."}, llm.Config{Provider: "stub"})
	p, out := newTestPipeline(t, testConfig(), WithAdvisor(advisor))

	report, err := p.AnalyzeText(context.Background(), "files", plainText)
	if err != nil {
		t.Fatal(err)
	}

	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	if err := p.RenderReport(report, jsonPath, mdPath); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}

	for _, path := range []string{jsonPath, mdPath, filepath.Join(dir, "report.llm.md")} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to be written: %v", path, err)
		}
	}
	if !strings.Contains(out.String(), "Reading ease") {
		t.Errorf("expected a summary on stdout, got %q", out.String())
	}
}

func TestRenderReport_StdoutJSON(t *testing.T) {
	p, out := newTestPipeline(t, testConfig())

	report, err := p.AnalyzeText(context.Background(), "streamed", plainText)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.RenderReport(report, "-", ""); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "{") || !strings.Contains(got, `"subject": "streamed"`) {
		t.Errorf("expected JSON on stdout, got %q", got)
	}
	if strings.Contains(got, "Reading ease") {
		t.Error("summary must not be mixed into streamed JSON")
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := map[string]bool{
		"<!DOCTYPE html><html></html>":      true,
		"  <html lang=\"en\"><body></body>": true,
		"<div><body>text</body></div>":      true,
		"Plain text with a < sign.":         false,
		"<notes>just angle brackets":        false,
	}
	for input, want := range tests {
		if got := looksLikeHTML(input); got != want {
			t.Errorf("looksLikeHTML(%q) = %v, want %v", input, got, want)
		}
	}
}
