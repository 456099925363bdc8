package model

import "time"

// Report represents the complete readscope analysis report
type Report struct {
	ID         string     `json:"id,omitempty"`         // History record id when stored
	Subject    string     `json:"subject"`              // Human-readable name of the analyzed text
	Source     string     `json:"source"`               // File path, URL or "stdin"
	SourceKind string     `json:"source_kind"`          // text, html
	AnalyzedAt time.Time  `json:"analyzed_at"`          // When the analysis ran
	FetchMeta  *FetchMeta `json:"fetch_meta,omitempty"` // HTTP metadata for URL sources
	Cached     bool       `json:"cached"`               // Whether the result came from cache

	Statistics TextStatistics     `json:"statistics"`
	Scores     ReadabilityScore   `json:"scores"`
	Scored     bool               `json:"scored"`
	Band       ReadingBand        `json:"band"`
	Formulas   []FormulaBreakdown `json:"formulas,omitempty"` // Transparent scoring data
	Issues     []ReadabilityIssue `json:"issues"`

	LLM *LLMAdvice `json:"llm,omitempty"` // Optional LLM advice (separate, never affects scores)
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// LLMAdvice contains optional LLM-generated rewrite advice
// This never affects scoring and is clearly separated
type LLMAdvice struct {
	Enabled    bool     `json:"enabled"`
	Provider   string   `json:"provider,omitempty"` // openai, anthropic, ollama
	Model      string   `json:"model,omitempty"`
	AdviceMD   string   `json:"advice_md,omitempty"` // Markdown advice
	TokensUsed int      `json:"tokens_used,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// HasIssue reports whether the report flagged the given issue type
func (r *Report) HasIssue(t IssueType) bool {
	for _, issue := range r.Issues {
		if issue.Type == t {
			return true
		}
	}
	return false
}
