package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/readscope/internal/model"
)

// ErrNotAnalyzed marks a source the batch never reached
var ErrNotAnalyzed = errors.New("source was not analyzed")

// Analyzer analyzes one source (file path, URL or "-")
type Analyzer interface {
	AnalyzeSource(ctx context.Context, source string) (*model.Report, error)
}

// AnalyzeJob analyzes a single source
type AnalyzeJob struct {
	Source   string
	Analyzer Analyzer
	Limiter  *Limiter
}

// Execute waits for the source's rate limit, then analyzes it
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Source); err != nil {
			return &SourceResult{Source: j.Source, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	report, err := j.Analyzer.AnalyzeSource(ctx, j.Source)
	return &SourceResult{
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// SourceResult is the outcome of analyzing one source
type SourceResult struct {
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the analysis
func (r *SourceResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many sources concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. URL sources are throttled per
// host at requestsPerSecond; a non-positive rate disables throttling.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// ProcessSources analyzes sources concurrently. The result slice has one
// entry per source, in input order.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*SourceResult {
	if len(sources) == 0 {
		return []*SourceResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&AnalyzeJob{
			Source:   source,
			Analyzer: b.analyzer,
			Limiter:  b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*SourceResult, len(sources))
	for i := range sources {
		if i < len(results) {
			if r, ok := results[i].(*SourceResult); ok {
				out[i] = r
				continue
			}
		}
		err := ctx.Err()
		if err == nil {
			err = ErrNotAnalyzed
		}
		out[i] = &SourceResult{Source: sources[i], Error: err}
	}

	return out
}

// ProcessFile reads sources from a list file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*SourceResult, error) {
	sources, err := ReadSourcesFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// Counts returns the number of successful and failed results
func Counts(results []*SourceResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// ReadSourcesFromFile reads sources from a file, one per line. Blank lines and
// lines starting with # are skipped; duplicates keep their first position.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
