// Package normalize canonicalizes raw input text before morphological
// analysis.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/ieee0824/yomiage-go/internal/ttserr"
)

// Policy selects what happens to characters the pipeline cannot pronounce
// or use as a phrase boundary.
type Policy int

const (
	// Lenient drops unsupported characters.
	Lenient Policy = iota
	// Strict fails on the first unsupported character.
	Strict
)

func (p Policy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "lenient" or "strict" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "lenient", "":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, fmt.Errorf("unknown symbol handling %q", s)
}

// ErrUnsupportedSymbol is wrapped by Normalize under the Strict policy.
var ErrUnsupportedSymbol = errors.New("unsupported symbol")

// punctuation that survives normalization; everything here is either a
// phrase boundary or carries intonation.
const punctuation = "、。，．,.!?！？・「」『』（）()～~-:;'\"ー"

// Supported reports whether r passes through normalization.
func Supported(r rune) bool {
	switch {
	case r == ' ':
		return true
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return true
	case strings.ContainsRune(punctuation, r):
		return true
	}
	return false
}

// Normalize folds character widths, composes kana with their voicing marks,
// applies the symbol policy and collapses whitespace to single spaces.
// The result is a fixed point: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string, policy Policy) (string, error) {
	s := text
	// Filtering can bring composable characters next to each other, so
	// iterate until the composition step no longer changes anything.
	for i := 0; i < 4; i++ {
		out, err := pass(s, policy)
		if err != nil {
			return "", err
		}
		if out == s {
			break
		}
		s = out
	}
	return s, nil
}

func pass(text string, policy Policy) (string, error) {
	s := norm.NFC.String(width.Fold.String(text))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if !Supported(r) {
			if policy == Strict {
				return "", ttserr.New(ttserr.KindAnalysis, ttserr.StageNormalize,
					fmt.Errorf("%w %q (U+%04X)", ErrUnsupportedSymbol, r, r))
			}
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String()), nil
}
