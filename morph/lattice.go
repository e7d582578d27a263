// Package morph segments normalized text into morphemes by a minimum-cost
// search over a lattice of dictionary and unknown-word candidates.
package morph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ieee0824/yomiage-go/internal/ttserr"
	"github.com/ieee0824/yomiage-go/lexicon"
)

// ErrNoPath is wrapped by the analysis error returned when no segmentation
// covers the whole input.
var ErrNoPath = errors.New("morph: lattice has no path")

// Config holds lattice construction parameters.
type Config struct {
	MaxGroupLength int // longest unknown word built from one character class run
}

// DefaultConfig returns reasonable default parameters.
func DefaultConfig() Config {
	return Config{MaxGroupLength: 24}
}

// node is one lattice candidate together with its best incoming path.
type node struct {
	start, end int
	leftID     int
	rightID    int
	cost       int
	entry      lexicon.Entry
	unknown    bool

	total int   // best path cost up to and including this node
	count int   // morphemes on that path
	prev  *node // nil for BOS
}

// ends returns the end positions of the path through n, first to last.
func (n *node) ends() []int {
	out := make([]int, n.count)
	for cur, i := n, n.count-1; i >= 0; cur, i = cur.prev, i-1 {
		out[i] = cur.end
	}
	return out
}

// better reports whether reaching a node via path a (cost ca, count na)
// beats path b. Lower cost wins, then fewer morphemes, then the path whose
// first differing morpheme ends later.
func better(ca, na int, a *node, cb, nb int, b *node) bool {
	if ca != cb {
		return ca < cb
	}
	if na != nb {
		return na < nb
	}
	ea, eb := a.ends(), b.ends()
	for i := range ea {
		if ea[i] != eb[i] {
			return ea[i] > eb[i]
		}
	}
	return false
}

// Analyze segments text with dict and returns the best path.
// Empty text yields an empty result.
func Analyze(text string, dict *lexicon.Dictionary, cfg Config) (*Result, error) {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return &Result{}, nil
	}
	if cfg.MaxGroupLength <= 0 {
		cfg.MaxGroupLength = DefaultConfig().MaxGroupLength
	}

	bos := &node{}
	endAt := make([][]*node, n+1)
	endAt[0] = []*node{bos}
	blocked := -1

	for pos := 0; pos < n; pos++ {
		if len(endAt[pos]) == 0 {
			continue
		}
		cands := candidates(runes, pos, dict, cfg)
		if len(cands) == 0 && blocked < 0 {
			blocked = pos
		}
		for _, c := range cands {
			for _, p := range endAt[pos] {
				total := p.total + dict.ConnectionCost(p.rightID, c.leftID) + c.cost
				if c.count == 0 || better(total, p.count+1, p, c.total, c.count, c.prev) {
					c.total, c.count, c.prev = total, p.count+1, p
				}
			}
			endAt[c.end] = append(endAt[c.end], c)
		}
	}

	var best *node
	bestTotal := 0
	for _, p := range endAt[n] {
		total := p.total + dict.ConnectionCost(p.rightID, 0)
		if best == nil || better(total, p.count, p, bestTotal, best.count, best) {
			best, bestTotal = p, total
		}
	}
	if best == nil {
		at := blocked
		if at < 0 {
			at = 0
		}
		return nil, ttserr.New(ttserr.KindAnalysis, ttserr.StageAnalyze,
			fmt.Errorf("%w: no candidate at rune %d (%q)", ErrNoPath, at, string(runes[at])))
	}

	res := &Result{Cost: bestTotal, Morphemes: make([]Morpheme, best.count)}
	for cur, i := best, best.count-1; i >= 0; cur, i = cur.prev, i-1 {
		m, err := cur.morpheme(runes)
		if err != nil {
			return nil, ttserr.New(ttserr.KindAnalysis, ttserr.StageAnalyze, err)
		}
		res.Morphemes[i] = m
	}
	return res, nil
}

// candidates returns the dictionary words starting at pos plus the
// unknown-word candidates the character class rules allow.
func candidates(runes []rune, pos int, dict *lexicon.Dictionary, cfg Config) []*node {
	var out []*node
	for _, e := range dict.CommonPrefix(runes, pos) {
		out = append(out, &node{
			start: pos, end: pos + len([]rune(e.Surface)),
			leftID: e.LeftID, rightID: e.RightID, cost: e.Cost, entry: e,
		})
	}

	class := lexicon.ClassOf(runes[pos])
	known := len(out) > 0
	for _, rule := range dict.UnknownRules(class) {
		if known && !rule.Invoke {
			continue
		}
		length := 1
		if rule.Group {
			for pos+length < len(runes) && length < cfg.MaxGroupLength &&
				lexicon.ClassOf(runes[pos+length]) == class {
				length++
			}
		}
		surface := string(runes[pos : pos+length])
		out = append(out, &node{
			start: pos, end: pos + length,
			leftID: rule.LeftID, rightID: rule.RightID, cost: rule.Cost,
			unknown: true,
			entry: lexicon.Entry{
				Surface:       surface,
				POS:           rule.POS,
				Base:          surface,
				Reading:       lexicon.UnknownReading(class, surface),
				Pronunciation: lexicon.UnknownReading(class, surface),
				ChainRule:     "*",
			},
		})
	}
	return out
}

func (n *node) morpheme(runes []rune) (Morpheme, error) {
	e := n.entry
	chain, err := lexicon.ParseChainRule(e.ChainRule)
	if err != nil {
		return Morpheme{}, fmt.Errorf("word %q: %w", e.Surface, err)
	}
	moras := e.Moras
	if n.unknown {
		moras = lexicon.MoraCount(e.Pronunciation)
	}
	return Morpheme{
		Surface:       string(runes[n.start:n.end]),
		POS:           e.POS,
		Base:          e.Base,
		Reading:       e.Reading,
		Pronunciation: e.Pronunciation,
		Accent:        e.Accent,
		Moras:         moras,
		ChainRule:     chain,
		Unknown:       n.unknown,
		Start:         n.start,
		End:           n.end,
		Cost:          n.cost,
	}, nil
}

// Surfaces joins the surfaces of ms with sep.
func Surfaces(ms []Morpheme, sep string) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.Surface
	}
	return strings.Join(parts, sep)
}
