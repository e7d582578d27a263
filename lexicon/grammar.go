package lexicon

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Grammar holds the part-of-speech patterns that group morphemes into
// accent phrases.
type Grammar struct {
	AttachPOS     []string `yaml:"attach_pos"`     // majors joining the previous phrase
	AttachPOS1    []string `yaml:"attach_pos1"`    // sub-categories joining the previous phrase
	PrefixPOS     []string `yaml:"prefix_pos"`     // majors joining the following phrase
	BoundaryPOS   []string `yaml:"boundary_pos"`   // majors that close a phrase
	PausePOS1     []string `yaml:"pause_pos1"`     // boundary sub-categories that add a pause
	QuestionMarks string   `yaml:"question_marks"` // surfaces marking a question
}

// DefaultGrammar returns the patterns used when a manifest omits them.
func DefaultGrammar() Grammar {
	return Grammar{
		AttachPOS:     []string{"助詞", "助動詞"},
		AttachPOS1:    []string{"接尾", "非自立"},
		PrefixPOS:     []string{"接頭詞"},
		BoundaryPOS:   []string{"記号"},
		PausePOS1:     []string{"句点", "読点"},
		QuestionMarks: "?？",
	}
}

// Attaches reports whether a morpheme with pos joins the preceding phrase.
func (g *Grammar) Attaches(pos POS) bool {
	return slices.Contains(g.AttachPOS, pos.Major) || slices.Contains(g.AttachPOS1, pos.Sub1)
}

// IsPrefix reports whether pos joins the following phrase.
func (g *Grammar) IsPrefix(pos POS) bool {
	return slices.Contains(g.PrefixPOS, pos.Major)
}

// IsBoundary reports whether pos closes the current phrase.
func (g *Grammar) IsBoundary(pos POS) bool {
	return slices.Contains(g.BoundaryPOS, pos.Major)
}

// IsPause reports whether a boundary with pos inserts a pause.
func (g *Grammar) IsPause(pos POS) bool {
	return g.IsBoundary(pos) && slices.Contains(g.PausePOS1, pos.Sub1)
}

// IsQuestion reports whether surface marks an interrogative phrase.
func (g *Grammar) IsQuestion(surface string) bool {
	return surface != "" && strings.Contains(g.QuestionMarks, surface)
}

// ChainRule is an accent combination rule applied when a morpheme attaches
// to a phrase.
type ChainRule struct {
	Kind string // "", C1..C5, F1..F5
	N    int    // offset for F2..F4
}

// ParseChainRule parses "*", "C1".."C5", "F1", "F5" and "F2@n".."F4@n".
// Of several "/"-separated alternatives only the first is used.
func ParseChainRule(s string) (ChainRule, error) {
	s, _, _ = strings.Cut(s, "/")
	if s == "*" || s == "" {
		return ChainRule{}, nil
	}
	kind, arg, hasArg := strings.Cut(s, "@")
	switch kind {
	case "C1", "C2", "C3", "C4", "C5", "F1", "F5":
		if hasArg {
			return ChainRule{}, fmt.Errorf("chain rule %q takes no offset", s)
		}
		return ChainRule{Kind: kind}, nil
	case "F2", "F3", "F4":
		n := 0
		if hasArg {
			var err error
			if n, err = strconv.Atoi(arg); err != nil {
				return ChainRule{}, fmt.Errorf("chain rule %q: %w", s, err)
			}
		}
		return ChainRule{Kind: kind, N: n}, nil
	}
	return ChainRule{}, fmt.Errorf("unknown chain rule %q", s)
}

// Apply combines an accent phrase of moras moras with accent accent and an
// attaching word with its own accent, returning the new accent.
// The caller clamps the result to the combined mora count.
func (c ChainRule) Apply(moras, accent, own int) int {
	switch c.Kind {
	case "C1":
		return moras + own
	case "C2":
		return moras + 1
	case "C3":
		return moras
	case "C4", "F5":
		return 0
	case "F2":
		if accent == 0 {
			return moras + c.N
		}
	case "F3":
		if accent != 0 {
			return moras + c.N
		}
	case "F4":
		return moras + c.N
	}
	// F1, C5 and no rule keep the phrase accent.
	return accent
}
