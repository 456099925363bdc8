// Package validate enforces the input policy applied before text reaches the
// readability engine. The engine itself accepts any string; the policy keeps
// users from scoring fragments too small to mean anything.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/readscope/internal/model"
)

var (
	// ErrEmpty is returned for input without any non-whitespace character
	ErrEmpty = errors.New("input is empty")
	// ErrTooShort is returned when the trimmed input is below the minimum length
	ErrTooShort = errors.New("input is too short")
	// ErrTooFewWords is returned when the input has fewer words than required
	ErrTooFewWords = errors.New("input has too few words")
	// ErrTooLarge is returned when the input exceeds the byte limit
	ErrTooLarge = errors.New("input is too large")
)

// Policy is the input validation policy
type Policy struct {
	MinCharacters int
	MinWords      int
	MaxBytes      int64
}

// PolicyFromConfig builds a policy from configuration. MinWords is never below 1
// because the scoring formulas divide by the word count.
func PolicyFromConfig(cfg model.InputConfig) Policy {
	p := Policy{
		MinCharacters: cfg.MinCharacters,
		MinWords:      cfg.MinWords,
		MaxBytes:      cfg.MaxBytes,
	}
	if p.MinWords < 1 {
		p.MinWords = 1
	}
	return p
}

// Check validates text against the policy
func (p Policy) Check(text string) error {
	if p.MaxBytes > 0 && int64(len(text)) > p.MaxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(text), p.MaxBytes)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmpty
	}

	if n := utf8.RuneCountInString(trimmed); n < p.MinCharacters {
		return fmt.Errorf("%w: please enter at least %d characters (got %d)", ErrTooShort, p.MinCharacters, n)
	}

	if n := len(strings.Fields(trimmed)); n < p.MinWords {
		return fmt.Errorf("%w: need at least %d words (got %d)", ErrTooFewWords, p.MinWords, n)
	}

	return nil
}
