package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/readscope/internal/model"
)

// Advisor produces optional rewrite advice for a finished report.
// Advice is stored next to the report and never changes its scores or issues.
type Advisor struct {
	provider Provider
	config   Config
}

// NewAdvisor creates an advisor; with no provider configured it is disabled
func NewAdvisor(config Config) (*Advisor, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Advisor{provider: provider, config: config}, nil
}

// NewAdvisorWithProvider creates an advisor around an existing provider
func NewAdvisorWithProvider(provider Provider, config Config) *Advisor {
	return &Advisor{provider: provider, config: config}
}

// IsEnabled reports whether a provider is configured
func (a *Advisor) IsEnabled() bool {
	return a != nil && a.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (a *Advisor) ProviderName() string {
	if !a.IsEnabled() {
		return ""
	}
	return a.provider.Name()
}

// GenerateAdvice asks the provider for advice on report, given the analyzed text.
// It returns nil when disabled. Provider failures are reported as warnings on a
// disabled LLMAdvice rather than as errors, so analysis never fails because of them.
func (a *Advisor) GenerateAdvice(ctx context.Context, report model.Report, text string) (*model.LLMAdvice, error) {
	if !a.IsEnabled() {
		return nil, nil
	}

	advice := &model.LLMAdvice{
		Provider: a.provider.Name(),
		Model:    a.config.Model,
	}

	if !a.provider.IsAvailable(ctx) {
		advice.Warnings = append(advice.Warnings, fmt.Sprintf("LLM provider %s is not available", a.provider.Name()))
		return advice, nil
	}

	resp, err := a.provider.Advise(ctx, AdviseRequest{
		Report:    report,
		Excerpt:   Excerpt(text),
		Model:     a.config.Model,
		MaxTokens: a.config.MaxTokens,
	})
	if err != nil {
		advice.Warnings = append(advice.Warnings, fmt.Sprintf("advice generation failed: %v", err))
		return advice, nil
	}

	if strings.TrimSpace(resp.Advice) == "" {
		advice.Warnings = append(advice.Warnings, "LLM returned empty advice")
		return advice, nil
	}

	advice.Enabled = true
	advice.AdviceMD = resp.Advice
	advice.TokensUsed = resp.TokensUsed
	if resp.Model != "" {
		advice.Model = resp.Model
	}
	return advice, nil
}

// RenderSeparateMarkdown renders advice as a standalone Markdown document
func RenderSeparateMarkdown(advice *model.LLMAdvice) string {
	if advice == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Rewrite Advice\n\n")
	b.WriteString("> Generated by an LLM from the measured statistics. It does not change any score.\n\n")

	if advice.Provider != "" {
		fmt.Fprintf(&b, "**Provider:** %s", advice.Provider)
		if advice.Model != "" {
			fmt.Fprintf(&b, " (%s)", advice.Model)
		}
		b.WriteString("\n\n")
	}

	if advice.Enabled && advice.AdviceMD != "" {
		b.WriteString(advice.AdviceMD)
		b.WriteString("\n")
	} else {
		b.WriteString("_No advice was generated._\n")
	}

	if len(advice.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range advice.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if advice.TokensUsed > 0 {
		fmt.Fprintf(&b, "\n_Tokens used: %d_\n", advice.TokensUsed)
	}

	return b.String()
}
