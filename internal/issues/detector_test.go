package issues

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/readscope/internal/model"
)

// statsFor builds statistics without depending on the textstats package
func statsFor(words, sentences, paragraphs int) model.TextStatistics {
	return model.TextStatistics{
		WordCount:             words,
		SentenceCount:         sentences,
		ParagraphCount:        paragraphs,
		AverageSentenceLength: float64(words) / float64(sentences),
	}
}

func issueTypes(found []model.ReadabilityIssue) []model.IssueType {
	types := make([]model.IssueType, 0, len(found))
	for _, issue := range found {
		types = append(types, issue.Type)
	}
	return types
}

func TestDetect_OnlySentenceLength(t *testing.T) {
	text := "The cat sat on the mat and then the dog ran to the park with a ball while the kids played in the warm sun today."
	found := Detect(text, statsFor(26, 1, 1))

	if len(found) != 1 {
		t.Fatalf("expected exactly 1 issue, got %d: %v", len(found), issueTypes(found))
	}
	if found[0].Type != model.IssueSentenceLength {
		t.Errorf("expected sentence_length, got %s", found[0].Type)
	}
	if found[0].Description == "" || found[0].Suggestion == "" {
		t.Error("expected description and suggestion to be set")
	}
}

func TestDetect_SentenceLengthBoundary(t *testing.T) {
	// Exactly 20 words per sentence does not fire
	if found := Detect("short text", statsFor(20, 1, 1)); len(found) != 0 {
		t.Errorf("expected no issues at the threshold, got %v", issueTypes(found))
	}
}

func TestDetect_ParagraphLength(t *testing.T) {
	found := Detect("plain words", statsFor(202, 20, 2))
	if !reflect.DeepEqual(issueTypes(found), []model.IssueType{model.IssueParagraphLength}) {
		t.Errorf("expected only paragraph_length, got %v", issueTypes(found))
	}

	// 100 words per paragraph is still fine
	if found := Detect("plain words", statsFor(200, 20, 2)); len(found) != 0 {
		t.Errorf("expected no issues at the threshold, got %v", issueTypes(found))
	}
}

func TestDetect_PassiveVoice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"two constructions", "The house was built last year. The cake was baked today.", true},
		{"capitalized be-verb", "Was finished early. Were painted blue.", true},
		{"irregular participles", "It is known. It is done.", true},
		{"single construction", "The house was built last year. We ate cake.", false},
		{"participle not in list", "The letter was written. The song was sung.", false},
		{"no be-verb", "She walked home and cooked dinner.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := Detect(tt.text, statsFor(5, 2, 1))
			got := len(found) == 1 && found[0].Type == model.IssuePassiveVoice
			if got != tt.want {
				t.Errorf("expected passive_voice=%v, got issues %v", tt.want, issueTypes(found))
			}
		})
	}
}

func TestDetect_ComplexWords(t *testing.T) {
	three := "Internationalization responsibilities characteristics matter."
	if found := Detect(three, statsFor(4, 1, 1)); !reflect.DeepEqual(issueTypes(found), []model.IssueType{model.IssueComplexWord}) {
		t.Errorf("expected complex_word, got %v", issueTypes(found))
	}

	two := "Internationalization responsibilities matter."
	if found := Detect(two, statsFor(3, 1, 1)); len(found) != 0 {
		t.Errorf("expected no issues for two complex words, got %v", issueTypes(found))
	}

	// 12 letters is below the length threshold
	short := "Accomplished accomplished accomplished."
	if found := Detect(short, statsFor(3, 1, 1)); len(found) != 0 {
		t.Errorf("expected no issues for 12-letter words, got %v", issueTypes(found))
	}
}

func TestDetect_Jargon(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"We will Leverage our strengths.", true},
		{"A new PARADIGM.", true},
		{"Plug it into the interface.", true},
		{"Plug it into the interfaces.", false},
		{"We will use our strengths.", false},
	}

	for _, tt := range tests {
		found := Detect(tt.text, statsFor(5, 1, 1))
		got := len(found) == 1 && found[0].Type == model.IssueJargon
		if got != tt.want {
			t.Errorf("%q: expected jargon=%v, got %v", tt.text, tt.want, issueTypes(found))
		}
	}
}

func TestDetect_FixedOrder(t *testing.T) {
	text := strings.Join([]string{
		"The synergy was leveraged and the paradigm was optimized.",
		"Internationalization responsibilities characteristics.",
	}, " ")

	found := Detect(text, statsFor(250, 2, 1))
	want := []model.IssueType{
		model.IssueSentenceLength,
		model.IssueParagraphLength,
		model.IssuePassiveVoice,
		model.IssueComplexWord,
		model.IssueJargon,
	}
	if !reflect.DeepEqual(issueTypes(found), want) {
		t.Errorf("expected %v, got %v", want, issueTypes(found))
	}

	again := Detect(text, statsFor(250, 2, 1))
	if !reflect.DeepEqual(found, again) {
		t.Error("expected repeated detection to return identical issues")
	}
}

func TestDetector_CustomRule(t *testing.T) {
	exclaim := Rule{
		Type: "exclamation",
		Predicate: func(text string, _ model.TextStatistics) bool {
			return strings.Count(text, "!") > 2
		},
		Description: "Too many exclamation marks",
		Suggestion:  "Let the words carry the emphasis.",
	}

	d := NewDetector(append(Rules(), exclaim)...)
	found := d.Detect("Wow! Great! Amazing!", statsFor(3, 3, 1))
	if !reflect.DeepEqual(issueTypes(found), []model.IssueType{"exclamation"}) {
		t.Errorf("expected custom rule to fire alone, got %v", issueTypes(found))
	}
}

func TestDetector_DuplicateTypeReportedOnce(t *testing.T) {
	always := Rule{
		Type:      model.IssueJargon,
		Predicate: func(string, model.TextStatistics) bool { return true },
	}

	found := NewDetector(always, always).Detect("", statsFor(0, 1, 1))
	if len(found) != 1 {
		t.Errorf("expected one issue per type, got %d", len(found))
	}
}
