package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/readscope/internal/model"
	"github.com/ppiankov/readscope/internal/pipeline"
	"github.com/ppiankov/readscope/internal/store"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	minChars    int
	noCache     bool
	noHistory   bool
	noFooter    bool
	noRobots    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->",
	Short: "Score the readability of a file, web page or standard input",
	Long: `Analyze reads a piece of prose and reports:
- Word, sentence, paragraph, character and syllable counts
- Flesch Reading Ease and four grade-level formulas
- The reading band and average grade level
- Readability issues with suggestions for fixing them

HTML files and web pages are reduced to their main text before scoring.
Use "-" to read from standard input.

Example:
  readscope analyze essay.txt
  readscope analyze https://example.com/blog/post --md report.md
  cat draft.md | readscope analyze - --json -
  readscope analyze essay.txt --llm --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", `output JSON path ("-" for stdout)`)
	analyzeCmd.Flags().StringVar(&outMD, "md", "", `output Markdown path ("-" for stdout)`)
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Input flags
	analyzeCmd.Flags().IntVar(&minChars, "min-chars", 0, "minimum text length in characters (default from config: 50)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	analyzeCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this analysis in history")

	// HTTP flags
	addHTTPFlags(analyzeCmd)
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")

	// LLM flags
	addLLMFlags(analyzeCmd)
}

func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	cmd.Flags().BoolVar(&noRobots, "no-robots", false, "ignore robots.txt when fetching pages")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM rewrite advice (never affects scores)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default depends on provider)")
}

// applyFlags overlays command-line flags on the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()

	if flags.Changed("min-chars") {
		cfg.Input.MinCharacters = minChars
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noHistory {
		cfg.History.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	if llmEnabled && (flags.Changed("llm-provider") || cfg.LLM.Provider == "") {
		previous := cfg.LLM.Provider
		if previous == "" {
			previous = "openai"
		}
		// The configured model belongs to the configured provider
		if llmProvider != previous {
			cfg.LLM.Model = ""
		}
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

// buildConfig loads configuration and applies the command's flags
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := configureLLM(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openHistory opens the history store, or returns nil when history is disabled
// or unavailable. Analysis never fails because history cannot be written.
func openHistory(cfg *model.Config) *store.SQLiteStore {
	if !cfg.History.Enabled || cfg.History.Path == "" {
		return nil
	}
	s, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		return nil
	}
	return s
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	var opts []pipeline.Option
	if history := openHistory(cfg); history != nil {
		defer func() { _ = history.Close() }()
		opts = append(opts, pipeline.WithHistory(history))
	}

	p := pipeline.NewPipeline(cfg, opts...)

	report, err := p.AnalyzeSource(ctx, source)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Counted %d words in %d sentences\n", report.Statistics.WordCount, report.Statistics.SentenceCount)
		fmt.Fprintf(os.Stderr, "✓ Detected %d issues\n", len(report.Issues))
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM advice using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		if report.ID != "" {
			fmt.Fprintf(os.Stderr, "✓ Recorded in history as %s\n", report.ID)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	if err := p.RenderReport(report, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
