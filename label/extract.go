package label

import (
	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/lexicon"
	"github.com/ieee0824/yomiage-go/prosody"
)

type expanded struct {
	src    prosody.AccentPhrase
	moras  [][]acoustic.Phoneme
	accent int
}

// expand splits each phrase into moras, dropping moras the kana table
// does not cover and phrases left without any. A prolonged sound mark
// repeats the last vowel of the utterance so far, crossing phrase
// boundaries; with no vowel before it the mark is dropped.
func expand(aps []prosody.AccentPhrase) []expanded {
	var (
		out       []expanded
		lastVowel acoustic.Phoneme
	)
	for _, ap := range aps {
		e := expanded{src: ap}
		for _, m := range ap.Morphemes {
			for _, mora := range lexicon.Moras(m.Pronunciation) {
				ph := lexicon.MoraPhonemes(mora)
				if len(ph) == 1 && ph[0] == acoustic.PhonLong {
					if lastVowel == "" {
						continue
					}
					ph = []acoustic.Phoneme{lastVowel}
				}
				if len(ph) == 0 {
					continue
				}
				for _, p := range ph {
					if p.IsVowel() {
						lastVowel = p
					}
				}
				e.moras = append(e.moras, ph)
			}
		}
		if len(e.moras) == 0 {
			if n := len(out); n > 0 && ap.Pause {
				out[n-1].src.Pause = true
			}
			continue
		}
		e.accent = ap.Accent
		if e.accent > len(e.moras) {
			e.accent = len(e.moras)
		}
		out = append(out, e)
	}
	return out
}

// high reports whether mora pos (1-based) is high in a Tokyo-type phrase
// with the given accent.
func high(pos, accent int) bool {
	switch {
	case accent == 1:
		return pos == 1
	case pos == 1:
		return false
	case accent == 0:
		return true
	}
	return pos <= accent
}

// Extract projects accent phrases onto a flat label sequence. A pause label
// separates phrases that end with a pause; no silence is added at the
// utterance edges.
func Extract(aps []prosody.AccentPhrase) []Label {
	phrases := expand(aps)
	var labels []Label
	for pi, p := range phrases {
		if pi > 0 && phrases[pi-1].src.Pause {
			labels = append(labels, Label{Phoneme: acoustic.PhonSP})
		}
		nucleus := p.accent
		if nucleus == 0 {
			nucleus = len(p.moras)
		}
		start := len(labels)
		for mi, mora := range p.moras {
			pos := mi + 1
			for k, ph := range mora {
				labels = append(labels, Label{
					Phoneme:         ph,
					MoraInPhrase:    pos,
					PhonemeInMora:   k,
					PhraseIndex:     pi + 1,
					PhraseCount:     len(phrases),
					PhraseMoras:     len(p.moras),
					Accent:          p.accent,
					AccentOffset:    pos - nucleus,
					NucleusDistance: max(0, nucleus-pos),
					High:            high(pos, p.accent),
					Interrogative:   p.src.Interrogative,
				})
			}
		}
		n := len(labels) - start
		for i := start; i < len(labels); i++ {
			labels[i].FromPhraseStart = i - start
			labels[i].ToPhraseEnd = n - 1 - (i - start)
		}
	}

	for i := range labels {
		labels[i].FromStart = i
		labels[i].ToEnd = len(labels) - 1 - i
		labels[i].Prev, labels[i].Next = acoustic.PhonSil, acoustic.PhonSil
		if i > 0 {
			labels[i].Prev = labels[i-1].Phoneme
		}
		if i+1 < len(labels) {
			labels[i].Next = labels[i+1].Phoneme
		}
	}
	markUnvoiced(labels)
	return labels
}

// markUnvoiced devoices i and u between voiceless consonants unless the
// mora carries the accent nucleus, and a final u after s. Two adjacent
// moras are never both devoiced.
func markUnvoiced(labels []Label) {
	lastUnvoiced := -1
	for i, l := range labels {
		if l.Phoneme != acoustic.PhonI && l.Phoneme != acoustic.PhonU {
			continue
		}
		if l.PhonemeInMora == 0 || l.MoraInPhrase == l.Accent {
			continue
		}
		if !labels[i-1].Phoneme.IsVoiceless() {
			continue
		}
		final := i+1 == len(labels) || labels[i+1].IsPause()
		between := !final && labels[i+1].Phoneme.IsVoiceless()
		sFinal := final && l.Phoneme == acoustic.PhonU && labels[i-1].Phoneme == acoustic.PhonS
		if !between && !sFinal {
			continue
		}
		if lastUnvoiced >= 0 && labels[lastUnvoiced].PhraseIndex == l.PhraseIndex &&
			l.MoraInPhrase-labels[lastUnvoiced].MoraInPhrase == 1 {
			continue
		}
		labels[i].Unvoiced = true
		lastUnvoiced = i
	}
}
