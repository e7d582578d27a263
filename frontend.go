package yomiage

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ieee0824/yomiage-go/label"
	"github.com/ieee0824/yomiage-go/lexicon"
	"github.com/ieee0824/yomiage-go/prosody"
)

// analyze runs the text front end under one resource reference.
func (s *Synthesizer) analyze(ctx context.Context, text string, opts Options) ([]prosody.AccentPhrase, []label.Label, error) {
	if err := s.checkInput(text, opts); err != nil {
		return nil, nil, err
	}
	res, release, err := s.acquire()
	if err != nil {
		return nil, nil, err
	}
	defer release()
	r := &request{id: uuid.NewString(), ctx: ctx, s: s}
	return r.frontend(res, text, opts)
}

// RunFrontend returns the accent phrases of text.
func (s *Synthesizer) RunFrontend(ctx context.Context, text string, opts Options) ([]prosody.AccentPhrase, error) {
	phrases, _, err := s.analyze(ctx, text, opts)
	return phrases, err
}

// ExtractFullContext returns one full-context label line per phoneme of
// text.
func (s *Synthesizer) ExtractFullContext(ctx context.Context, text string, opts Options) ([]string, error) {
	_, labels, err := s.analyze(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	return label.Strings(labels), nil
}

// G2P converts text to its pronunciation with default options. With kana
// set it returns the katakana pronunciation, keeping boundary symbols;
// otherwise it returns space-separated phonemes with "pau" for pauses and
// unvoiced vowels in upper case.
func (s *Synthesizer) G2P(ctx context.Context, text string, kana bool) (string, error) {
	phrases, labels, err := s.analyze(ctx, text, DefaultOptions())
	if err != nil {
		return "", err
	}
	if kana {
		return kanaString(phrases, &s.dictInfo.Grammar), nil
	}
	return phonemeString(labels), nil
}

func kanaString(phrases []prosody.AccentPhrase, g *lexicon.Grammar) string {
	var sb strings.Builder
	for _, p := range phrases {
		for _, m := range p.Morphemes {
			switch {
			case m.Pronunciation != "":
				sb.WriteString(m.Pronunciation)
			case g.IsBoundary(m.POS):
				sb.WriteString(m.Surface)
			}
		}
	}
	return sb.String()
}

func phonemeString(labels []label.Label) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		switch {
		case l.IsPause():
			parts = append(parts, "pau")
		case l.Unvoiced && l.Phoneme.IsVowel():
			parts = append(parts, strings.ToUpper(string(l.Phoneme)))
		default:
			parts = append(parts, string(l.Phoneme))
		}
	}
	return strings.Join(parts, " ")
}
