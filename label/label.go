// Package label defines the phoneme label that hands the front end's
// output to the acoustic engine, and extracts labels from accent phrases.
package label

import (
	"fmt"

	"github.com/ieee0824/yomiage-go/acoustic"
)

// SchemaVersion identifies the label layout. A voice declares the schema it
// was built for and the engine refuses any other.
const SchemaVersion = "yomiage-label/1"

// Label is one phoneme with its structural context. Fields that do not
// apply to a pause are zero.
type Label struct {
	Phoneme acoustic.Phoneme
	Prev    acoustic.Phoneme // sil at the utterance start
	Next    acoustic.Phoneme // sil at the utterance end

	MoraInPhrase  int // 1-based
	PhonemeInMora int // 0-based

	PhraseIndex int // 1-based
	PhraseCount int
	PhraseMoras int
	Accent      int // nucleus mora, 0 = flat

	AccentOffset    int // MoraInPhrase minus the nucleus position
	NucleusDistance int // moras until the nucleus, 0 at and after it

	High          bool // high pitch mora
	Unvoiced      bool
	Interrogative bool

	FromStart       int // phonemes before this one in the utterance
	ToEnd           int // phonemes after this one in the utterance
	FromPhraseStart int
	ToPhraseEnd     int
}

// IsPause reports whether l is an inserted pause.
func (l Label) IsPause() bool {
	return l.Phoneme == acoustic.PhonSP
}

func symbol(p acoustic.Phoneme) string {
	if p == acoustic.PhonSP {
		return "pau"
	}
	return string(p)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// String renders an HTS-style full-context line:
//
//	prev-cur+next/A:offset+mora+distance/M:pos/F:moras_accent#q/P:phrase_count/U:from_to/W:from_to/V:unvoiced/H:high
func (l Label) String() string {
	return fmt.Sprintf("%s-%s+%s/A:%d+%d+%d/M:%d/F:%d_%d#%d/P:%d_%d/U:%d_%d/W:%d_%d/V:%d/H:%d",
		symbol(l.Prev), symbol(l.Phoneme), symbol(l.Next),
		l.AccentOffset, l.MoraInPhrase, l.NucleusDistance,
		l.PhonemeInMora,
		l.PhraseMoras, l.Accent, flag(l.Interrogative),
		l.PhraseIndex, l.PhraseCount,
		l.FromStart, l.ToEnd,
		l.FromPhraseStart, l.ToPhraseEnd,
		flag(l.Unvoiced), flag(l.High))
}

// Strings renders every label.
func Strings(labels []Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.String()
	}
	return out
}
