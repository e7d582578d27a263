package morph

import "github.com/ieee0824/yomiage-go/lexicon"

// Morpheme is one word of the best segmentation. It is never modified
// after analysis; prosody builds new records around it.
type Morpheme struct {
	Surface       string
	POS           lexicon.POS
	Base          string
	Reading       string
	Pronunciation string // katakana; empty when the word is silent
	Accent        int    // nucleus mora, 0 = flat
	Moras         int
	ChainRule     lexicon.ChainRule
	Unknown       bool
	Start, End    int // rune offsets in the analyzed text
	Cost          int // word cost
}

// Result holds the analysis output.
type Result struct {
	Morphemes []Morpheme
	Cost      int // total path cost including connection costs
}
