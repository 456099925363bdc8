package model

// TextStatistics holds the structural counts of a text and the averages derived from them
type TextStatistics struct {
	WordCount             int     `json:"word_count"`
	SentenceCount         int     `json:"sentence_count"`  // Never below 1
	ParagraphCount        int     `json:"paragraph_count"` // Never below 1
	CharacterCount        int     `json:"character_count"` // Non-whitespace runes, punctuation included
	SyllableCount         int     `json:"syllable_count"`
	AverageWordLength     float64 `json:"average_word_length"`
	AverageSentenceLength float64 `json:"average_sentence_length"`
}

// ReadabilityScore holds the five formula scores for a text
type ReadabilityScore struct {
	FleschReadingEase         float64 `json:"flesch_reading_ease"`         // 0-100, higher is easier
	FleschKincaidGrade        float64 `json:"flesch_kincaid_grade"`        // U.S. grade level
	SMOGIndex                 float64 `json:"smog_index"`                  // Grade level from polysyllable density
	ColemanLiauIndex          float64 `json:"coleman_liau_index"`          // Grade level from letters per word
	AutomatedReadabilityIndex float64 `json:"automated_readability_index"` // Grade level from characters per word
	AverageGradeLevel         float64 `json:"average_grade_level"`         // Mean of the four grade scores
}

// IssueType classifies a flagged prose problem
type IssueType string

const (
	IssueSentenceLength  IssueType = "sentence_length"  // Long average sentences
	IssueParagraphLength IssueType = "paragraph_length" // Long average paragraphs
	IssuePassiveVoice    IssueType = "passive_voice"    // Repeated be-verb + participle
	IssueComplexWord     IssueType = "complex_word"     // Several very long words
	IssueJargon          IssueType = "jargon"           // Corporate buzzwords
)

// ReadabilityIssue is a single heuristic finding with advice on how to fix it
type ReadabilityIssue struct {
	Type        IssueType `json:"type"`
	Description string    `json:"description"`
	Suggestion  string    `json:"suggestion"`
}

// FormulaBreakdown documents how a single readability score was computed
type FormulaBreakdown struct {
	Name    string             `json:"name"`
	Formula string             `json:"formula"`
	Inputs  map[string]float64 `json:"inputs"`
	Raw     float64            `json:"raw"`     // Before clamping
	Value   float64            `json:"value"`   // After clamping
	Clamped bool               `json:"clamped"` // Whether Raw was outside the allowed range
}

// ReadingBand is a human label for a Flesch Reading Ease range
type ReadingBand struct {
	Label    string `json:"label"`
	Audience string `json:"audience"`
}

// Result is the combined output of one engine run
type Result struct {
	Statistics TextStatistics     `json:"statistics"`
	Scores     ReadabilityScore   `json:"scores"`
	Scored     bool               `json:"scored"` // False when the text had no words
	Issues     []ReadabilityIssue `json:"issues"`
}
