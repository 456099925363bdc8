package textstats

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var vowelGroup = regexp.MustCompile(`[aeiouy]+`)

// EstimateSyllables approximates the syllable count of a single word by
// counting vowel groups, with a silent-e adjustment. The result is at least 1.
// Numerals, acronyms and non-English words are not handled specially.
func EstimateSyllables(word string) int {
	lower := strings.ToLower(word)

	count := len(vowelGroup.FindAllStringIndex(lower, -1))
	if count == 0 {
		count = 1
	}

	// Silent e: "make", "there"
	if utf8.RuneCountInString(lower) > 3 && strings.HasSuffix(lower, "e") {
		count--
	}

	if count < 1 {
		return 1
	}
	return count
}
