package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/readscope/internal/model"
)

func TestPolicy_Check(t *testing.T) {
	policy := Policy{MinCharacters: 10, MinWords: 2, MaxBytes: 100}

	tests := []struct {
		name string
		text string
		want error
	}{
		{"valid", "Short words help readers.", nil},
		{"empty", "", ErrEmpty},
		{"whitespace", " \n\t ", ErrEmpty},
		{"too short after trim", "   Hi there   ", ErrTooShort},
		{"one long word", "Supercalifragilistic", ErrTooFewWords},
		{"too large", strings.Repeat("word ", 30), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Check(tt.text)
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPolicy_Unlimited(t *testing.T) {
	policy := Policy{MinWords: 1}
	if err := policy.Check(strings.Repeat("a ", 10000)); err != nil {
		t.Errorf("expected no error without limits, got %v", err)
	}
}

func TestPolicyFromConfig_FloorsMinWords(t *testing.T) {
	policy := PolicyFromConfig(model.InputConfig{MinCharacters: 0, MinWords: 0})
	if policy.MinWords != 1 {
		t.Errorf("expected MinWords floored to 1, got %d", policy.MinWords)
	}
	if err := policy.Check("."); err != nil {
		t.Errorf("expected a single token to pass, got %v", err)
	}
}
