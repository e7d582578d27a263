package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

)

// POS is a part-of-speech tag with up to three sub-categories.
type POS struct {
	Major string
	Sub1  string
	Sub2  string
	Sub3  string
}

func (p POS) String() string {
	return strings.Join([]string{p.Major, p.Sub1, p.Sub2, p.Sub3}, ",")
}

// Entry is one lexicon row.
type Entry struct {
	Surface       string
	LeftID        int
	RightID       int
	Cost          int
	POS           POS
	CType         string // conjugation type
	CForm         string // conjugation form
	Base          string
	Reading       string // katakana
	Pronunciation string // katakana with ー for long vowels
	Accent        int    // accent nucleus mora, 0 = flat
	Moras         int
	ChainRule     string // accent combination rule, "*" if none
}

// Dictionary is a loaded lexicon with its connection matrix, unknown-word
// rules and accent grammar. It is immutable once built and safe for
// concurrent readers.
type Dictionary struct {
	manifest Manifest
	entries  map[string][]Entry // surface -> homographs
	maxLen   int                // longest surface in runes
	matrix   *Matrix
	unknown  map[CharClass][]UnknownRule
	size     int
}

// New assembles a dictionary and checks that every connection id fits the
// matrix.
func New(m Manifest, entries []Entry, matrix *Matrix, unknown []UnknownRule) (*Dictionary, error) {
	if matrix == nil {
		return nil, errors.New("lexicon: nil connection matrix")
	}
	d := &Dictionary{
		manifest: m,
		entries:  make(map[string][]Entry, len(entries)),
		matrix:   matrix,
		unknown:  make(map[CharClass][]UnknownRule),
		size:     len(entries),
	}
	for i, e := range entries {
		if !matrix.ValidLeft(e.LeftID) || !matrix.ValidRight(e.RightID) {
			return nil, fmt.Errorf("lexicon: entry %d (%s): ids %d/%d outside matrix %dx%d",
				i, e.Surface, e.LeftID, e.RightID, matrix.Rights(), matrix.Lefts())
		}
		if e.Surface == "" {
			return nil, fmt.Errorf("lexicon: entry %d: empty surface", i)
		}
		d.entries[e.Surface] = append(d.entries[e.Surface], e)
		if n := len([]rune(e.Surface)); n > d.maxLen {
			d.maxLen = n
		}
	}
	for i, u := range unknown {
		if !matrix.ValidLeft(u.LeftID) || !matrix.ValidRight(u.RightID) {
			return nil, fmt.Errorf("lexicon: unknown rule %d (%s): ids %d/%d outside matrix",
				i, u.Class, u.LeftID, u.RightID)
		}
		d.unknown[u.Class] = append(d.unknown[u.Class], u)
	}
	return d, nil
}

// LoadLexicon reads lexicon rows in CSV form:
// surface,left_id,right_id,cost,pos,pos1,pos2,pos3,ctype,cform,base,reading,pronunciation,accent/moras,chain_rule
// Lines starting with # are comments.
func LoadLexicon(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var entries []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		e, err := parseEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadLexiconFile is a convenience wrapper that opens a file path.
func LoadLexiconFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadLexicon(f)
}

func parseEntry(rec []string) (Entry, error) {
	if len(rec) < 15 {
		return Entry{}, fmt.Errorf("expected 15 fields, got %d", len(rec))
	}
	var e Entry
	var err error
	e.Surface = rec[0]
	if e.LeftID, err = strconv.Atoi(rec[1]); err != nil {
		return e, fmt.Errorf("left id: %w", err)
	}
	if e.RightID, err = strconv.Atoi(rec[2]); err != nil {
		return e, fmt.Errorf("right id: %w", err)
	}
	if e.Cost, err = strconv.Atoi(rec[3]); err != nil {
		return e, fmt.Errorf("cost: %w", err)
	}
	e.POS = POS{Major: rec[4], Sub1: rec[5], Sub2: rec[6], Sub3: rec[7]}
	e.CType = rec[8]
	e.CForm = rec[9]
	e.Base = rec[10]
	e.Reading = HiraganaToKatakana(rec[11])
	e.Pronunciation = HiraganaToKatakana(rec[12])
	if e.Reading == "*" {
		e.Reading = ""
	}
	if e.Pronunciation == "*" {
		e.Pronunciation = e.Reading
	}
	e.Accent, e.Moras, err = parseAccent(rec[13])
	if err != nil {
		return e, err
	}
	if e.Moras == 0 {
		e.Moras = MoraCount(e.Pronunciation)
	}
	if e.Accent > e.Moras {
		return e, fmt.Errorf("accent %d exceeds %d moras", e.Accent, e.Moras)
	}
	e.ChainRule = rec[14]
	if e.ChainRule == "" {
		e.ChainRule = "*"
	}
	if _, err := ParseChainRule(e.ChainRule); err != nil {
		return e, err
	}
	return e, nil
}

// parseAccent reads "accent/moras"; "*" means no accent information.
func parseAccent(s string) (int, int, error) {
	if s == "*" || s == "" {
		return 0, 0, nil
	}
	a, m, ok := strings.Cut(s, "/")
	acc, err := strconv.Atoi(a)
	if err != nil || acc < 0 {
		return 0, 0, fmt.Errorf("bad accent field %q", s)
	}
	if !ok {
		return acc, 0, nil
	}
	moras, err := strconv.Atoi(m)
	if err != nil || moras < 0 {
		return 0, 0, fmt.Errorf("bad accent field %q", s)
	}
	return acc, moras, nil
}

// Manifest returns the bundle manifest.
func (d *Dictionary) Manifest() Manifest { return d.manifest }

// Grammar returns the accent-phrase grammar.
func (d *Dictionary) Grammar() *Grammar { return &d.manifest.Grammar }

// Len returns the number of lexicon entries.
func (d *Dictionary) Len() int { return d.size }

// Lookup returns all entries whose surface equals word.
func (d *Dictionary) Lookup(word string) []Entry {
	return d.entries[word]
}

// CommonPrefix returns every entry whose surface is a prefix of text[start:],
// shortest first.
func (d *Dictionary) CommonPrefix(text []rune, start int) []Entry {
	var out []Entry
	end := start + d.maxLen
	if end > len(text) {
		end = len(text)
	}
	for i := start + 1; i <= end; i++ {
		out = append(out, d.Lookup(string(text[start:i]))...)
	}
	return out
}

// ConnectionCost returns the cost of placing a word with left id left
// after a word with right id right.
func (d *Dictionary) ConnectionCost(right, left int) int {
	return d.matrix.Cost(right, left)
}

// UnknownRules returns the unknown-word rules for class, falling back to
// the DEFAULT rules.
func (d *Dictionary) UnknownRules(class CharClass) []UnknownRule {
	if rs, ok := d.unknown[class]; ok {
		return rs
	}
	return d.unknown[ClassDefault]
}

// Close drops the dictionary's tables. The dictionary must not be used
// afterwards; ownership is managed by the pipeline that loaded it.
func (d *Dictionary) Close() error {
	d.entries = nil
	d.unknown = nil
	d.matrix = nil
	return nil
}
