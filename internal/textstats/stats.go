// Package textstats computes structural statistics of raw prose.
//
// Tokenization is deliberately naive: words are whitespace-separated tokens
// with punctuation left attached, sentences end at runs of '.', '!' or '?',
// and paragraphs are separated by blank lines.
package textstats

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/readscope/internal/model"
)

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
)

// Analyze tokenizes text and returns its counts and averages.
// It never fails: empty input yields zero words with one sentence and one paragraph.
func Analyze(text string) model.TextStatistics {
	words := strings.Fields(text)

	syllables := 0
	for _, w := range words {
		syllables += EstimateSyllables(w)
	}

	wordCount := len(words)
	sentenceCount := atLeastOne(countFragments(sentenceSplit.Split(text, -1)))
	paragraphCount := atLeastOne(countFragments(paragraphSplit.Split(text, -1)))
	characterCount := countNonSpace(text)

	return model.TextStatistics{
		WordCount:             wordCount,
		SentenceCount:         sentenceCount,
		ParagraphCount:        paragraphCount,
		CharacterCount:        characterCount,
		SyllableCount:         syllables,
		AverageWordLength:     float64(characterCount) / float64(atLeastOne(wordCount)),
		AverageSentenceLength: float64(wordCount) / float64(atLeastOne(sentenceCount)),
	}
}

// countFragments counts fragments that contain something other than whitespace
func countFragments(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

// countNonSpace counts runes that are not whitespace
func countNonSpace(text string) int {
	n := 0
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if !unicode.IsSpace(r) {
			n++
		}
		text = text[size:]
	}
	return n
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
