// Package prosody groups morphemes into accent phrases and assigns each
// phrase its accent nucleus.
package prosody

import (
	"strings"

	"github.com/ieee0824/yomiage-go/lexicon"
	"github.com/ieee0824/yomiage-go/morph"
)

// AccentPhrase is a run of morphemes sharing one pitch-accent nucleus.
type AccentPhrase struct {
	Morphemes     []morph.Morpheme
	Moras         int
	Accent        int  // nucleus mora (1-based), 0 = flat
	Pause         bool // a pause follows the phrase
	Interrogative bool
}

// Pronunciation returns the katakana pronunciation of the phrase.
func (p AccentPhrase) Pronunciation() string {
	var sb strings.Builder
	for _, m := range p.Morphemes {
		sb.WriteString(m.Pronunciation)
	}
	return sb.String()
}

// Surface returns the phrase text.
func (p AccentPhrase) Surface() string {
	return morph.Surfaces(p.Morphemes, "")
}

// builder accumulates the phrase under construction.
type builder struct {
	phrases []AccentPhrase
	cur     *AccentPhrase
	prefix  []morph.Morpheme // prefixes and silent words waiting for a head
}

// Annotate groups ms into accent phrases with a single left-to-right pass.
// Attaching words (particles, auxiliaries, suffixes) join the previous
// phrase and combine accents by their chain rule; prefixes look one word
// ahead and join the following phrase; boundary symbols close the phrase
// and may add a pause or mark it interrogative. Phrases without moras are
// not emitted.
func Annotate(ms []morph.Morpheme, g *lexicon.Grammar) []AccentPhrase {
	b := &builder{}
	for i, m := range ms {
		switch {
		case g.IsBoundary(m.POS):
			b.boundary(m, g)
		case g.IsPrefix(m.POS):
			b.flush()
			b.prefix = append(b.prefix, m)
			if i+1 == len(ms) || g.IsBoundary(ms[i+1].POS) {
				b.flushPrefix()
			}
		case g.Attaches(m.POS) && b.cur != nil:
			b.attach(m)
		case m.Moras == 0:
			if b.cur != nil {
				b.cur.Morphemes = append(b.cur.Morphemes, m)
			} else {
				b.prefix = append(b.prefix, m)
			}
		default:
			b.flush()
			b.start(m)
		}
	}
	b.flush()
	b.flushPrefix()
	return b.phrases
}

func (b *builder) start(m morph.Morpheme) {
	p := &AccentPhrase{}
	pre := 0
	preAccent := 0
	for _, x := range b.prefix {
		p.Morphemes = append(p.Morphemes, x)
		if pre == 0 && x.Moras > 0 {
			preAccent = x.Accent
		}
		pre += x.Moras
	}
	b.prefix = nil
	p.Morphemes = append(p.Morphemes, m)
	p.Moras = pre + m.Moras
	switch {
	case pre == 0:
		p.Accent = m.Accent
	case m.ChainRule.Kind != "":
		p.Accent = m.ChainRule.Apply(pre, preAccent, m.Accent)
	case m.Accent > 0:
		p.Accent = pre + m.Accent
	}
	p.Accent = clamp(p.Accent, p.Moras)
	b.cur = p
}

func (b *builder) attach(m morph.Morpheme) {
	p := b.cur
	p.Morphemes = append(p.Morphemes, m)
	if m.Moras == 0 {
		return
	}
	p.Accent = m.ChainRule.Apply(p.Moras, p.Accent, m.Accent)
	p.Moras += m.Moras
	p.Accent = clamp(p.Accent, p.Moras)
}

func (b *builder) boundary(m morph.Morpheme, g *lexicon.Grammar) {
	trailing := false
	switch {
	case m.Moras > 0:
		// a pronounced symbol stands alone
		b.flush()
		b.start(m)
	case b.cur != nil:
		b.cur.Morphemes = append(b.cur.Morphemes, m)
	default:
		trailing = true
	}
	b.flush()
	b.flushPrefix()
	if len(b.phrases) == 0 {
		return
	}
	last := &b.phrases[len(b.phrases)-1]
	if trailing {
		last.Morphemes = append(last.Morphemes, m)
	}
	if g.IsPause(m.POS) || g.IsQuestion(m.Surface) {
		last.Pause = true
	}
	if g.IsQuestion(m.Surface) {
		last.Interrogative = true
	}
}

func (b *builder) flush() {
	if b.cur == nil {
		return
	}
	if b.cur.Moras > 0 {
		b.phrases = append(b.phrases, *b.cur)
	} else if n := len(b.phrases); n > 0 {
		b.phrases[n-1].Morphemes = append(b.phrases[n-1].Morphemes, b.cur.Morphemes...)
	}
	b.cur = nil
}

// flushPrefix emits prefixes that found no head as a phrase of their own.
func (b *builder) flushPrefix() {
	if len(b.prefix) == 0 {
		return
	}
	p := AccentPhrase{Morphemes: b.prefix}
	for _, x := range b.prefix {
		if p.Moras == 0 && x.Moras > 0 {
			p.Accent = x.Accent
		}
		p.Moras += x.Moras
	}
	b.prefix = nil
	p.Accent = clamp(p.Accent, p.Moras)
	if p.Moras > 0 {
		b.phrases = append(b.phrases, p)
	} else if n := len(b.phrases); n > 0 {
		b.phrases[n-1].Morphemes = append(b.phrases[n-1].Morphemes, p.Morphemes...)
	}
}

func clamp(accent, moras int) int {
	if accent < 0 {
		return 0
	}
	if accent > moras {
		return moras
	}
	return accent
}
