package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/readscope/internal/model"
	"github.com/ppiankov/readscope/internal/score"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Advise generates plain-language rewrite advice for an analyzed text
	Advise(ctx context.Context, req AdviseRequest) (*AdviseResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AdviseRequest contains the input for advice generation
type AdviseRequest struct {
	// Report holds the deterministic analysis the advice must be based on
	Report model.Report

	// Excerpt is the beginning of the analyzed text, already truncated
	Excerpt string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AdviseResponse contains the LLM's advice
type AdviseResponse struct {
	Advice     string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

const (
	defaultMaxTokens  = 800
	defaultTimeout    = 30
	maxExcerptRunes   = 4000
	adviceTemperature = 0.3
)

const systemPrompt = "You are an editor who helps writers make their text easier to read. " +
	"You base every suggestion on the measured statistics you are given and never invent new scores."

// BuildPrompt constructs the default advice prompt from a report and a text excerpt
func BuildPrompt(report model.Report, excerpt string) string {
	var b strings.Builder

	b.WriteString("Suggest concrete edits that would make the following text easier to read.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. Do not restate or recompute the scores below; they are final.\n")
	b.WriteString("2. Address the detected issues first, most impactful edit first.\n")
	b.WriteString("3. Quote the sentence you are rewriting, then give the rewrite.\n")
	b.WriteString("4. Answer in Markdown with at most 5 bullet points.\n\n")

	stats := report.Statistics
	fmt.Fprintf(&b, "Subject: %s\n", report.Subject)
	fmt.Fprintf(&b, "Words: %d, sentences: %d, paragraphs: %d\n", stats.WordCount, stats.SentenceCount, stats.ParagraphCount)
	fmt.Fprintf(&b, "Average sentence length: %.1f words\n", stats.AverageSentenceLength)

	if report.Scored {
		fmt.Fprintf(&b, "Flesch Reading Ease: %.1f (%s)\n", report.Scores.FleschReadingEase, report.Band.Label)
		fmt.Fprintf(&b, "Average grade level: %.1f (%s)\n", report.Scores.AverageGradeLevel, score.GradeLabel(report.Scores.AverageGradeLevel))
	}

	b.WriteString("\nDetected issues:\n")
	if len(report.Issues) == 0 {
		b.WriteString("- none\n")
	}
	for _, issue := range report.Issues {
		fmt.Fprintf(&b, "- %s: %s\n", issue.Type, issue.Description)
	}

	if excerpt != "" {
		b.WriteString("\nText:\n\"\"\"\n")
		b.WriteString(excerpt)
		b.WriteString("\n\"\"\"\n")
	}

	return b.String()
}

// Excerpt truncates text to the number of runes sent to a provider
func Excerpt(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxExcerptRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxExcerptRunes]) + " [...]"
}

func resolveModel(reqModel, configModel, fallback string) string {
	if reqModel != "" {
		return reqModel
	}
	if configModel != "" {
		return configModel
	}
	return fallback
}

func resolveMaxTokens(reqMax, configMax int) int {
	if reqMax > 0 {
		return reqMax
	}
	if configMax > 0 {
		return configMax
	}
	return defaultMaxTokens
}

func promptFor(req AdviseRequest) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return BuildPrompt(req.Report, req.Excerpt)
}
