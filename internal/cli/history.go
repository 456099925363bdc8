package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/readscope/internal/pipeline"
	"github.com/ppiankov/readscope/internal/store"
)

var (
	historyLimit int
	historyJSON  bool
	historyMD    bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analyses",
	Long: `Every analysis is recorded in a local SQLite database
(~/.readscope/history.db unless history.path says otherwise).

Records are identified by a ULID; any unique prefix of it works.

Example:
  readscope history list --limit 5
  readscope history show 01J8Z3
  readscope history show 01J8Z3 --md > report.md
  readscope history rm 01J8Z3`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		records, err := s.List(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}

		printRecords(cmd.OutOrStdout(), records)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		report, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}

		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter, cfg.Output.Color && !historyJSON && !historyMD, cmd.OutOrStdout())

		switch {
		case historyJSON:
			return renderer.RenderJSON(report, "-")
		case historyMD:
			return renderer.RenderMarkdown(report, "-")
		default:
			renderer.RenderSummary(report)
			return nil
		}
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Delete(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, store.ErrAmbiguousID) {
				return fmt.Errorf("rm: %w (use a longer prefix)", err)
			}
			return fmt.Errorf("rm: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "max records")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the report as JSON")
	historyShowCmd.Flags().BoolVar(&historyMD, "md", false, "print the report as Markdown")
	historyShowCmd.MarkFlagsMutuallyExclusive("json", "md")
}

func openHistoryStore() (*store.SQLiteStore, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.History.Path == "" {
		return nil, errors.New("history path is not configured")
	}
	s, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return s, nil
}

func printRecords(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No analyses recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-26s  %-20s  %6s  %6s  %6s  %s\n", "ID", "ANALYZED", "WORDS", "EASE", "GRADE", "SUBJECT")
	for _, rec := range records {
		ease, grade := "-", "-"
		if rec.Scored {
			ease = fmt.Sprintf("%.1f", rec.FleschReadingEase)
			grade = fmt.Sprintf("%.1f", rec.AverageGradeLevel)
		}
		subject := rec.Subject
		if rec.IssueCount > 0 {
			subject += fmt.Sprintf(" (%d %s)", rec.IssueCount, plural(rec.IssueCount, "issue"))
		}
		fmt.Fprintf(w, "%-26s  %-20s  %6d  %6s  %6s  %s\n",
			rec.ID, rec.AnalyzedAt.Local().Format("2006-01-02 15:04:05"), rec.WordCount, ease, grade, strings.TrimSpace(subject))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
