package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/readscope/internal/model"
	"github.com/ppiankov/readscope/internal/pipeline"
	"github.com/ppiankov/readscope/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// analysis flags are defined in analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many files and URLs listed in a file, in parallel",
	Long: `Batch processes multiple sources concurrently:
- Read sources from the input file (one path or URL per line, # for comments)
- Analyze sources in parallel with a configurable worker count
- Pace requests per host so that web servers are not flooded
- Write a JSON and a Markdown report for each source

Example:
  readscope batch sources.txt
  readscope batch sources.txt --concurrency 8 --output-dir ./reports
  readscope batch sources.txt --timeout 5m --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config: 4)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./readscope-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared with analyze
	batchCmd.Flags().IntVar(&minChars, "min-chars", 0, "minimum text length in characters (default from config: 50)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	batchCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record these analyses in history")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	addHTTPFlags(batchCmd)
	addLLMFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  readscope Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var opts []pipeline.Option
	if history := openHistory(cfg); history != nil {
		defer func() { _ = history.Close() }()
		opts = append(opts, pipeline.WithHistory(history))
	}
	p := pipeline.NewPipeline(cfg, opts...)

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing sources with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	written := writeBatchReports(results, cfg, outputDir)
	succeeded, failed := worker.Counts(results)

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "  Reports:   %d in %s\n", written, outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if succeeded == 0 && failed > 0 {
		return fmt.Errorf("all %d sources failed", failed)
	}
	return nil
}

// writeBatchReports writes a JSON and Markdown report per successful result and
// returns how many sources were written
func writeBatchReports(results []*worker.SourceResult, cfg *model.Config, dir string) int {
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter, false, os.Stdout)
	used := make(map[string]int)
	written := 0

	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		slug := uniqueName(used, sanitizeFilename(result.Report.Subject))
		jsonPath := filepath.Join(dir, slug+".json")
		mdPath := filepath.Join(dir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Source, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Source, err)
			continue
		}
		written++

		if result.Report.Scored {
			fmt.Fprintf(os.Stderr, "✓ %s (reading ease %.1f, grade %.1f, %d issues)\n",
				result.Report.Subject, result.Report.Scores.FleschReadingEase, result.Report.Scores.AverageGradeLevel, len(result.Report.Issues))
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s (not scored)\n", result.Report.Subject)
		}
	}

	return written
}

// sanitizeFilename turns a report subject into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".-_")

	// Limit length
	if len(s) > 100 {
		s = strings.ToValidUTF8(s[:100], "")
	}
	if s == "" {
		s = "report"
	}

	return s
}

// uniqueName appends a counter when two sources share a subject
func uniqueName(used map[string]int, name string) string {
	candidate := name
	for n := 2; used[candidate] > 0; n++ {
		candidate = fmt.Sprintf("%s-%d", name, n)
	}
	used[candidate]++
	return candidate
}
