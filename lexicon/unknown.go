package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode"
)

// CharClass groups characters for unknown-word handling.
type CharClass string

const (
	ClassDefault  CharClass = "DEFAULT"
	ClassSpace    CharClass = "SPACE"
	ClassKanji    CharClass = "KANJI"
	ClassHiragana CharClass = "HIRAGANA"
	ClassKatakana CharClass = "KATAKANA"
	ClassAlpha    CharClass = "ALPHA"
	ClassNumeric  CharClass = "NUMERIC"
	ClassSymbol   CharClass = "SYMBOL"
)

var classes = map[CharClass]bool{
	ClassDefault: true, ClassSpace: true, ClassKanji: true, ClassHiragana: true,
	ClassKatakana: true, ClassAlpha: true, ClassNumeric: true, ClassSymbol: true,
}

// ClassOf classifies a rune.
func ClassOf(r rune) CharClass {
	switch {
	case r == ' ':
		return ClassSpace
	case r >= '0' && r <= '9':
		return ClassNumeric
	case r < 0x80 && unicode.IsLetter(r):
		return ClassAlpha
	case r == 'ー' || unicode.Is(unicode.Katakana, r):
		return ClassKatakana
	case unicode.Is(unicode.Hiragana, r):
		return ClassHiragana
	case r == '々' || unicode.Is(unicode.Han, r):
		return ClassKanji
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return ClassSymbol
	}
	return ClassDefault
}

// UnknownRule describes how to build an unknown-word candidate for a
// character class.
type UnknownRule struct {
	Class   CharClass
	LeftID  int
	RightID int
	Cost    int
	POS     POS
	Group   bool // a whole run of the class forms one word
	Invoke  bool // generate candidates even where dictionary words start
}

// LoadUnknown parses unk.def rows: class,left_id,right_id,cost,pos,pos1,group,invoke.
func LoadUnknown(r io.Reader) ([]UnknownRule, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	var rules []UnknownRule
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != 8 {
			return nil, fmt.Errorf("line %d: expected 8 fields, got %d", line, len(rec))
		}
		u := UnknownRule{Class: CharClass(rec[0]), POS: POS{Major: rec[4], Sub1: rec[5], Sub2: "*", Sub3: "*"}}
		if !classes[u.Class] {
			return nil, fmt.Errorf("line %d: unknown character class %q", line, rec[0])
		}
		ints := []*int{&u.LeftID, &u.RightID, &u.Cost}
		for i, p := range ints {
			if *p, err = strconv.Atoi(rec[1+i]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if u.Group, err = strconv.ParseBool(rec[6]); err != nil {
			return nil, fmt.Errorf("line %d: group: %w", line, err)
		}
		if u.Invoke, err = strconv.ParseBool(rec[7]); err != nil {
			return nil, fmt.Errorf("line %d: invoke: %w", line, err)
		}
		rules = append(rules, u)
	}
	return rules, nil
}

// LoadUnknownFile is a convenience wrapper that opens a file path.
func LoadUnknownFile(path string) ([]UnknownRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadUnknown(f)
}

// UnknownReading returns the katakana reading used for an unknown word of
// the given class. Classes without a reading return "".
func UnknownReading(class CharClass, surface string) string {
	switch class {
	case ClassKatakana:
		return surface
	case ClassHiragana:
		return HiraganaToKatakana(surface)
	case ClassNumeric:
		return DigitReading(surface)
	case ClassAlpha:
		return SpellAlphabet(surface)
	}
	return ""
}
