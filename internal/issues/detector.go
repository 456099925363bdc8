// Package issues flags common prose problems with a fixed table of heuristics.
package issues

import (
	"regexp"

	"github.com/ppiankov/readscope/internal/model"
)

// Thresholds used by the default rules
const (
	MaxAverageSentenceLength  = 20.0
	MaxAverageParagraphLength = 100.0
	MaxPassiveConstructions   = 1
	MaxComplexWords           = 2
	MaxJargonTerms            = 0
)

var (
	passivePattern = regexp.MustCompile(`(?i)\b(am|is|are|was|were|be|being|been)\s+(\w+ed|built|done|grown|known|worn)\b`)
	complexPattern = regexp.MustCompile(`\b\w{13,}\b`)
	jargonPattern  = regexp.MustCompile(`(?i)\b(paradigm|leverage|synergy|optimize|utilize|implementation|functionality|interface)\b`)
)

// Rule is a single heuristic check. Predicate must be a pure function of its inputs.
type Rule struct {
	Type        model.IssueType
	Predicate   func(text string, stats model.TextStatistics) bool
	Description string
	Suggestion  string
}

// Rules returns the default rule table in presentation order
func Rules() []Rule {
	return []Rule{
		{
			Type: model.IssueSentenceLength,
			Predicate: func(_ string, stats model.TextStatistics) bool {
				return stats.AverageSentenceLength > MaxAverageSentenceLength
			},
			Description: "Sentences are too long on average",
			Suggestion:  "Break long sentences into shorter ones. Aim for 15-20 words per sentence.",
		},
		{
			Type: model.IssueParagraphLength,
			Predicate: func(_ string, stats model.TextStatistics) bool {
				return float64(stats.WordCount)/float64(stats.ParagraphCount) > MaxAverageParagraphLength
			},
			Description: "Paragraphs are too long",
			Suggestion:  "Split long paragraphs into smaller chunks of 3-5 sentences each.",
		},
		{
			Type: model.IssuePassiveVoice,
			Predicate: func(text string, _ model.TextStatistics) bool {
				return countMatches(passivePattern, text) > MaxPassiveConstructions
			},
			Description: "Multiple instances of passive voice detected",
			Suggestion:  "Use active voice to make your writing more direct and engaging.",
		},
		{
			Type: model.IssueComplexWord,
			Predicate: func(text string, _ model.TextStatistics) bool {
				return countMatches(complexPattern, text) > MaxComplexWords
			},
			Description: "Several complex words detected",
			Suggestion:  "Replace complex words with simpler alternatives when possible.",
		},
		{
			Type: model.IssueJargon,
			Predicate: func(text string, _ model.TextStatistics) bool {
				return countMatches(jargonPattern, text) > MaxJargonTerms
			},
			Description: "Business jargon detected",
			Suggestion:  "Replace jargon with clear, everyday language that everyone can understand.",
		},
	}
}

// Detector evaluates a rule table against a text
type Detector struct {
	rules []Rule
}

// NewDetector creates a detector. With no rules it uses the default table;
// extra heuristics are added by passing Rules() plus the new entries.
func NewDetector(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = Rules()
	}
	return &Detector{rules: rules}
}

// Detect runs every rule in order. Each issue type is reported at most once.
func (d *Detector) Detect(text string, stats model.TextStatistics) []model.ReadabilityIssue {
	found := make([]model.ReadabilityIssue, 0, len(d.rules))
	seen := make(map[model.IssueType]bool, len(d.rules))

	for _, rule := range d.rules {
		if seen[rule.Type] || !rule.Predicate(text, stats) {
			continue
		}
		seen[rule.Type] = true
		found = append(found, model.ReadabilityIssue{
			Type:        rule.Type,
			Description: rule.Description,
			Suggestion:  rule.Suggestion,
		})
	}

	return found
}

// Detect runs the default rule table
func Detect(text string, stats model.TextStatistics) []model.ReadabilityIssue {
	return defaultDetector.Detect(text, stats)
}

var defaultDetector = NewDetector()

func countMatches(re *regexp.Regexp, text string) int {
	return len(re.FindAllStringIndex(text, -1))
}
