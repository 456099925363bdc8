package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/readscope/internal/cache"
	"github.com/ppiankov/readscope/internal/extract"
	"github.com/ppiankov/readscope/internal/extract/adapters"
	"github.com/ppiankov/readscope/internal/llm"
	"github.com/ppiankov/readscope/internal/model"
	"github.com/ppiankov/readscope/internal/readability"
	"github.com/ppiankov/readscope/internal/score"
	"github.com/ppiankov/readscope/internal/store"
	"github.com/ppiankov/readscope/internal/validate"
	"github.com/ppiankov/readscope/internal/worker"
)

// StdinSource is the source name that reads text from standard input
const StdinSource = "-"

// History records finished reports
type History interface {
	Save(ctx context.Context, report *model.Report) (store.Record, error)
}

// Pipeline orchestrates reading a source, analyzing it and decorating the report
type Pipeline struct {
	fetcher  *Fetcher
	adapters *adapters.Registry
	engine   *readability.Engine
	policy   validate.Policy
	cache    cache.Cache  // nil when caching is disabled
	advisor  *llm.Advisor // nil when LLM advice is disabled
	history  History      // nil when history is disabled
	renderer *Renderer
	config   *model.Config
	stdin    io.Reader
	logOut   io.Writer
	now      func() time.Time
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithStdin sets the reader used for the "-" source
func WithStdin(r io.Reader) Option {
	return func(p *Pipeline) { p.stdin = r }
}

// WithCache overrides the result cache; nil disables caching
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithHistory records every report in h
func WithHistory(h History) Option {
	return func(p *Pipeline) { p.history = h }
}

// WithAdvisor overrides the LLM advisor
func WithAdvisor(a *llm.Advisor) Option {
	return func(p *Pipeline) { p.advisor = a }
}

// WithOutput sets where summaries and progress lines are written
func WithOutput(out, log io.Writer) Option {
	return func(p *Pipeline) {
		p.renderer = NewRenderer(p.config.Output.IncludeFooter, p.config.Output.Color, out)
		p.logOut = log
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:  NewFetcher(cfg.HTTP),
		adapters: adapters.NewRegistry(),
		engine:   readability.NewEngine(),
		policy:   validate.PolicyFromConfig(cfg.Input),
		renderer: NewRenderer(cfg.Output.IncludeFooter, cfg.Output.Color, os.Stdout),
		config:   cfg,
		stdin:    os.Stdin,
		logOut:   os.Stderr,
		now:      func() time.Time { return time.Now().UTC() },
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			p.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			p.cache = cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
	}

	for _, opt := range opts {
		opt(p)
	}

	// Options run first so WithAdvisor wins and warnings follow WithOutput
	if cfg.LLM.Provider != "" && p.advisor == nil {
		advisor, err := llm.NewAdvisor(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			fmt.Fprintf(p.logOut, "Warning: Failed to initialize LLM provider: %v\n", err)
		} else {
			p.advisor = advisor
		}
	}
	return p
}

// source describes where analyzed text came from
type source struct {
	name      string
	subject   string
	kind      extract.Kind
	fetchMeta *model.FetchMeta
}

// AnalyzeSource analyzes a file path, an http(s) URL or "-" for standard input
func (p *Pipeline) AnalyzeSource(ctx context.Context, src string) (*model.Report, error) {
	switch {
	case src == StdinSource:
		return p.AnalyzeReader(ctx, "stdin", p.stdin)
	case worker.IsURL(src):
		return p.AnalyzeURL(ctx, src)
	default:
		return p.AnalyzeFile(ctx, src)
	}
}

// AnalyzeText analyzes text as given
func (p *Pipeline) AnalyzeText(ctx context.Context, subject, text string) (*model.Report, error) {
	return p.analyze(ctx, source{name: "text", subject: subject, kind: extract.KindText}, text)
}

// AnalyzeReader analyzes text read from r; HTML is detected by content
func (p *Pipeline) AnalyzeReader(ctx context.Context, name string, r io.Reader) (*model.Report, error) {
	data, err := p.readLimited(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	content := string(data)
	src := source{name: name, subject: name, kind: extract.KindText}
	if looksLikeHTML(content) {
		src.kind = extract.KindHTML
	}
	return p.analyzeContent(ctx, src, content, "")
}

// AnalyzeFile analyzes a plain-text or HTML file
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*model.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if limit := p.config.Input.MaxBytes; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%s: %w: %d bytes (limit %d)", path, validate.ErrTooLarge, info.Size(), limit)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	base := filepath.Base(path)
	src := source{
		name:    path,
		subject: strings.TrimSuffix(base, filepath.Ext(base)),
		kind:    extract.DetectKind(path, ""),
	}
	return p.analyzeContent(ctx, src, string(data), "")
}

// AnalyzeURL fetches a web page and analyzes its main text
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*model.Report, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	p.logf("✓ Fetched %s (%d bytes)\n", fetched.FinalURL, len(fetched.Body))

	meta := fetched.Meta
	src := source{
		name:      fetched.FinalURL,
		subject:   fetched.Subject,
		kind:      extract.DetectKind(fetched.FinalURL, fetched.ContentType),
		fetchMeta: &meta,
	}
	return p.analyzeContent(ctx, src, fetched.Body, fetched.ContentType)
}

// analyzeContent turns raw content into prose, then analyzes it
func (p *Pipeline) analyzeContent(ctx context.Context, src source, content, contentType string) (*model.Report, error) {
	text := content
	if src.kind == extract.KindHTML {
		extracted, adapterName, err := p.adapters.Extract(content, src.name, contentType)
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
		p.logf("✓ Extracted text with %s adapter\n", adapterName)
		if title := extract.Title(content); title != "" {
			src.subject = title
		}
		text = extracted
	} else {
		text = extract.Normalize(text)
	}

	return p.analyze(ctx, src, text)
}

func (p *Pipeline) analyze(ctx context.Context, src source, text string) (*model.Report, error) {
	if err := p.policy.Check(text); err != nil {
		return nil, fmt.Errorf("%s: %w", src.name, err)
	}

	result, cached := p.lookup(text)
	if !cached {
		result = p.engine.Analyze(text)
		p.store(text, result)
	}

	report := &model.Report{
		Subject:    src.subject,
		Source:     src.name,
		SourceKind: string(src.kind),
		AnalyzedAt: p.now(),
		FetchMeta:  src.fetchMeta,
		Cached:     cached,
		Statistics: result.Statistics,
		Scores:     result.Scores,
		Scored:     result.Scored,
		Formulas:   p.engine.Explain(result),
		Issues:     result.Issues,
	}
	if report.Issues == nil {
		report.Issues = []model.ReadabilityIssue{}
	}
	if result.Scored {
		report.Band = score.Band(result.Scores.FleschReadingEase)
	}

	// Advice comes after scoring and never changes it
	if p.advisor.IsEnabled() {
		advice, err := p.advisor.GenerateAdvice(ctx, *report, text)
		if err != nil {
			p.logf("Warning: LLM advice failed: %v\n", err)
		} else if advice != nil {
			report.LLM = advice
		}
	}

	if p.history != nil {
		if _, err := p.history.Save(ctx, report); err != nil {
			p.logf("Warning: failed to record history: %v\n", err)
		}
	}

	return report, nil
}

func (p *Pipeline) lookup(text string) (model.Result, bool) {
	if p.cache == nil {
		return model.Result{}, false
	}
	data, found := p.cache.Get(cache.Key("result", text))
	if !found {
		return model.Result{}, false
	}
	var result model.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return model.Result{}, false
	}
	return result, true
}

func (p *Pipeline) store(text string, result model.Result) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := p.cache.Set(cache.Key("result", text), data, 0); err != nil {
		p.logf("Warning: cache write failed: %v\n", err)
	}
}

func (p *Pipeline) readLimited(r io.Reader) ([]byte, error) {
	limit := p.config.Input.MaxBytes
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", validate.ErrTooLarge, limit)
	}
	return data, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(p.logOut, format, args...)
	}
}

// RenderReport renders the report to the requested outputs and prints the summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if jsonPath != "-" {
			p.logf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if mdPath != "-" {
			p.logf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Advice also gets its own file next to the Markdown report
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" && mdPath != "-" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			fmt.Fprintf(p.logOut, "Warning: Failed to write LLM advice: %v\n", err)
		} else {
			p.logf("✓ Wrote LLM advice: %s\n", llmPath)
		}
	}

	// Keep stdout clean when a report is streamed there
	if jsonPath != "-" && mdPath != "-" {
		p.renderer.RenderSummary(report)
	}
	return nil
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") ||
		(strings.HasPrefix(head, "<") && strings.Contains(head, "<body"))
}
