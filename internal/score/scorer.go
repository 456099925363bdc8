package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppiankov/readscope/internal/model"
)

// ErrNoWords is returned by CheckPrecondition for statistics without any words.
// The formulas divide by the word count, so such statistics must never be scored.
var ErrNoWords = errors.New("readability scores require at least one word")

// Formula coefficients. These are the published values and must not be tuned.
const (
	freBase          = 206.835
	freSentenceCoeff = 1.015
	freSyllableCoeff = 84.6

	fkSentenceCoeff = 0.39
	fkSyllableCoeff = 11.8
	fkOffset        = 15.59

	smogCoeff      = 1.043
	smogSampleSize = 30.0
	smogOffset     = 3.1291

	clLetterCoeff   = 5.89
	clSentenceCoeff = 0.3
	clOffset        = 15.8

	ariCharCoeff = 4.71
	ariWordCoeff = 0.5
	ariOffset    = 21.43
)

// Scorer calculates readability formula scores
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// CheckPrecondition reports whether stats can be scored
func CheckPrecondition(stats model.TextStatistics) error {
	if stats.WordCount < 1 {
		return ErrNoWords
	}
	return nil
}

// Score applies the five readability formulas to stats.
//
// Callers must ensure stats.WordCount >= 1 (see CheckPrecondition). The word
// count is not floored here; zero-word statistics produce NaN or Inf values.
func (s *Scorer) Score(stats model.TextStatistics) model.ReadabilityScore {
	breakdown := s.Explain(stats)

	result := model.ReadabilityScore{
		FleschReadingEase:         breakdown[0].Value,
		FleschKincaidGrade:        breakdown[1].Value,
		SMOGIndex:                 breakdown[2].Value,
		ColemanLiauIndex:          breakdown[3].Value,
		AutomatedReadabilityIndex: breakdown[4].Value,
	}
	result.AverageGradeLevel = (result.FleschKincaidGrade +
		result.SMOGIndex +
		result.ColemanLiauIndex +
		result.AutomatedReadabilityIndex) / 4

	return result
}

// Explain returns the transparent breakdown of every formula in a fixed order:
// Flesch Reading Ease, Flesch-Kincaid Grade, SMOG, Coleman-Liau, ARI.
// The same precondition as Score applies.
func (s *Scorer) Explain(stats model.TextStatistics) []model.FormulaBreakdown {
	w := float64(stats.WordCount)
	sent := float64(stats.SentenceCount)
	syl := float64(stats.SyllableCount)
	c := float64(stats.CharacterCount)

	wordsPerSentence := w / sent
	syllablesPerWord := syl / w
	charsPerWord := c / w

	fre := freBase - freSentenceCoeff*wordsPerSentence - freSyllableCoeff*syllablesPerWord
	fk := fkSentenceCoeff*wordsPerSentence + fkSyllableCoeff*syllablesPerWord - fkOffset
	smog := smogCoeff*math.Sqrt(syl*(smogSampleSize/sent)) + smogOffset
	cl := clLetterCoeff*charsPerWord - clSentenceCoeff*(sent/w) - clOffset
	ari := ariCharCoeff*charsPerWord + ariWordCoeff*wordsPerSentence - ariOffset

	return []model.FormulaBreakdown{
		breakdown("flesch_reading_ease",
			"206.835 - 1.015*(W/S) - 84.6*(Syl/W), clamped to [0,100]",
			map[string]float64{"words_per_sentence": wordsPerSentence, "syllables_per_word": syllablesPerWord},
			fre, clamp(fre, 0, 100)),
		breakdown("flesch_kincaid_grade",
			"0.39*(W/S) + 11.8*(Syl/W) - 15.59, clamped to >= 0",
			map[string]float64{"words_per_sentence": wordsPerSentence, "syllables_per_word": syllablesPerWord},
			fk, floorZero(fk)),
		breakdown("smog_index",
			"1.043*sqrt(Syl*(30/S)) + 3.1291, clamped to >= 0",
			map[string]float64{"syllables": syl, "sentences": sent},
			smog, floorZero(smog)),
		breakdown("coleman_liau_index",
			"5.89*(C/W) - 0.3*(S/W) - 15.8, clamped to >= 0",
			map[string]float64{"characters_per_word": charsPerWord, "sentences_per_word": sent / w},
			cl, floorZero(cl)),
		breakdown("automated_readability_index",
			"4.71*(C/W) + 0.5*(W/S) - 21.43, clamped to >= 0",
			map[string]float64{"characters_per_word": charsPerWord, "words_per_sentence": wordsPerSentence},
			ari, floorZero(ari)),
	}
}

func breakdown(name, formula string, inputs map[string]float64, raw, value float64) model.FormulaBreakdown {
	return model.FormulaBreakdown{
		Name:    name,
		Formula: formula,
		Inputs:  inputs,
		Raw:     raw,
		Value:   value,
		Clamped: raw != value,
	}
}

// clamp limits v to [lo, hi]. NaN passes through unchanged.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Band maps a Flesch Reading Ease score to a descriptive label
func Band(fre float64) model.ReadingBand {
	switch {
	case fre >= 90:
		return model.ReadingBand{Label: "Very Easy", Audience: "easily understood by an average 11-year-old student"}
	case fre >= 80:
		return model.ReadingBand{Label: "Easy", Audience: "conversational English for consumers"}
	case fre >= 70:
		return model.ReadingBand{Label: "Fairly Easy", Audience: "easily understood by 13- to 15-year-old students"}
	case fre >= 60:
		return model.ReadingBand{Label: "Standard", Audience: "plain English, understood by most adults"}
	case fre >= 50:
		return model.ReadingBand{Label: "Fairly Difficult", Audience: "high school seniors and early college"}
	case fre >= 30:
		return model.ReadingBand{Label: "Difficult", Audience: "best understood by college graduates"}
	default:
		return model.ReadingBand{Label: "Very Confusing", Audience: "best understood by university graduates"}
	}
}

// GradeLabel renders a grade level the way reports show it
func GradeLabel(grade float64) string {
	rounded := int(math.Round(grade))
	switch {
	case rounded < 1:
		return "Kindergarten"
	case rounded >= 16:
		return "College graduate"
	case rounded >= 13:
		return "College"
	default:
		return fmt.Sprintf("Grade %d", rounded)
	}
}
