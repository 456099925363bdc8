package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/readscope/internal/model"
	"github.com/ppiankov/readscope/internal/score"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
	out           io.Writer

	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
	card    lipgloss.Style
	colored bool
}

// NewRenderer creates a renderer writing summaries to out. With color off the
// summary is plain text.
func NewRenderer(includeFooter, color bool, out io.Writer) *Renderer {
	r := &Renderer{
		includeFooter: includeFooter,
		out:           out,
		colored:       color,
	}

	if !color {
		plain := lipgloss.NewStyle()
		r.title, r.label, r.value, r.good, r.bad, r.muted, r.card = plain, plain, plain, plain, plain, plain, plain
		return r
	}

	lr := lipgloss.NewRenderer(out)
	r.title = lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	r.label = lr.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Width(16)
	r.value = lr.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	r.good = lr.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	r.bad = lr.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	r.muted = lr.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	r.card = lr.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(lipgloss.Color("#4A4A4A"))
	return r
}

// RenderJSON writes the report as indented JSON. A path of "-" writes to the
// renderer's output.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return r.write(path, data)
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return r.write(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes already-rendered advice Markdown
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	return r.write(path, []byte(markdown))
}

func (r *Renderer) write(path string, data []byte) error {
	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Readability Report: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- **Source:** %s (%s)\n", report.Source, report.SourceKind)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", report.AnalyzedAt.UTC().Format(time.RFC3339))
	if report.Cached {
		b.WriteString("- **Cached:** yes\n")
	}
	b.WriteString("\n")

	b.WriteString("## Scores\n\n")
	if !report.Scored {
		b.WriteString("_Not scored: the text contains no words._\n\n")
	} else {
		s := report.Scores
		fmt.Fprintf(&b, "**%s** (reading ease %.1f): %s\n\n", report.Band.Label, s.FleschReadingEase, report.Band.Audience)
		b.WriteString("| Formula | Score | Reading level |\n")
		b.WriteString("|---------|------:|---------------|\n")
		fmt.Fprintf(&b, "| Flesch Reading Ease | %.1f | %s |\n", s.FleschReadingEase, report.Band.Label)
		fmt.Fprintf(&b, "| Flesch-Kincaid Grade | %.1f | %s |\n", s.FleschKincaidGrade, score.GradeLabel(s.FleschKincaidGrade))
		fmt.Fprintf(&b, "| SMOG Index | %.1f | %s |\n", s.SMOGIndex, score.GradeLabel(s.SMOGIndex))
		fmt.Fprintf(&b, "| Coleman-Liau Index | %.1f | %s |\n", s.ColemanLiauIndex, score.GradeLabel(s.ColemanLiauIndex))
		fmt.Fprintf(&b, "| Automated Readability Index | %.1f | %s |\n", s.AutomatedReadabilityIndex, score.GradeLabel(s.AutomatedReadabilityIndex))
		fmt.Fprintf(&b, "| **Average grade level** | **%.1f** | **%s** |\n\n", s.AverageGradeLevel, score.GradeLabel(s.AverageGradeLevel))
	}

	st := report.Statistics
	b.WriteString("## Statistics\n\n")
	b.WriteString("| Measure | Value |\n|---------|------:|\n")
	fmt.Fprintf(&b, "| Words | %d |\n", st.WordCount)
	fmt.Fprintf(&b, "| Sentences | %d |\n", st.SentenceCount)
	fmt.Fprintf(&b, "| Paragraphs | %d |\n", st.ParagraphCount)
	fmt.Fprintf(&b, "| Characters | %d |\n", st.CharacterCount)
	fmt.Fprintf(&b, "| Syllables | %d |\n", st.SyllableCount)
	fmt.Fprintf(&b, "| Average word length | %.2f |\n", st.AverageWordLength)
	fmt.Fprintf(&b, "| Average sentence length | %.2f |\n\n", st.AverageSentenceLength)

	b.WriteString("## Issues\n\n")
	if len(report.Issues) == 0 {
		b.WriteString("No readability issues detected.\n\n")
	}
	for _, issue := range report.Issues {
		fmt.Fprintf(&b, "- **%s**: %s  \n  _Suggestion:_ %s\n", issue.Type, issue.Description, issue.Suggestion)
	}
	if len(report.Issues) > 0 {
		b.WriteString("\n")
	}

	if len(report.Formulas) > 0 {
		b.WriteString("## How the scores were computed\n\n")
		for _, f := range report.Formulas {
			fmt.Fprintf(&b, "- `%s`: %s = %.2f", f.Name, f.Formula, f.Raw)
			if f.Clamped {
				fmt.Fprintf(&b, " (clamped to %.2f)", f.Value)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if report.LLM != nil && report.LLM.Enabled {
		b.WriteString("## Rewrite advice\n\n")
		fmt.Fprintf(&b, "_LLM-generated by %s; not part of the scores._\n\n", report.LLM.Provider)
		b.WriteString(report.LLM.AdviceMD)
		b.WriteString("\n\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by readscope. Readability formulas estimate difficulty from word, sentence and syllable counts; they do not judge content._\n")
	}

	return b.String()
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(report *model.Report) {
	_, _ = fmt.Fprintln(r.out, r.Summary(report))
}

// Summary returns the terminal summary for a report
func (r *Renderer) Summary(report *model.Report) string {
	var lines []string

	title := report.Subject
	if report.Cached {
		title += r.muted.Render(" (cached)")
	}
	lines = append(lines, r.title.Render(title))

	row := func(label, value string) string {
		if !r.colored {
			return fmt.Sprintf("%-16s%s", label, value)
		}
		return r.label.Render(label) + value
	}

	if report.Scored {
		s := report.Scores
		lines = append(lines,
			row("Reading ease", r.value.Render(fmt.Sprintf("%.1f", s.FleschReadingEase))+" "+report.Band.Label),
			row("Grade level", r.value.Render(fmt.Sprintf("%.1f", s.AverageGradeLevel))+" "+score.GradeLabel(s.AverageGradeLevel)),
		)
	} else {
		lines = append(lines, row("Reading ease", r.muted.Render("not scored")))
	}

	st := report.Statistics
	lines = append(lines, row("Text", fmt.Sprintf("%d words, %d sentences, %d paragraphs", st.WordCount, st.SentenceCount, st.ParagraphCount)))

	if len(report.Issues) == 0 {
		lines = append(lines, r.good.Render("✓ No readability issues detected"))
	}
	for _, issue := range report.Issues {
		lines = append(lines, r.bad.Render("✗ "+string(issue.Type))+" "+issue.Description)
	}

	if report.LLM != nil {
		switch {
		case report.LLM.Enabled:
			lines = append(lines, r.muted.Render(fmt.Sprintf("Rewrite advice from %s included", report.LLM.Provider)))
		case len(report.LLM.Warnings) > 0:
			lines = append(lines, r.muted.Render("LLM: "+report.LLM.Warnings[0]))
		}
	}

	body := strings.Join(lines, "\n")
	if !r.colored {
		return body
	}
	return r.card.Render(body)
}
