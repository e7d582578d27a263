package main

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/ieee0824/yomiage-go/lexicon"
)

func TestConvertRecord(t *testing.T) {
	tests := []struct {
		name  string
		rec   string
		want  string
		valid bool
	}{
		{
			"naist-jdic",
			"天気,1285,1285,3000,名詞,一般,*,*,*,*,天気,テンキ,テンキ,1/3,C1",
			"天気,1285,1285,3000,名詞,一般,*,*,*,*,天気,テンキ,テンキ,1/3,C1",
			true,
		},
		{
			"qualified chain rule",
			"です,460,460,2000,助動詞,*,*,*,特殊・デス,基本形,です,デス,デス,1/2,動詞%F2@0/形容詞%F2@1",
			"です,460,460,2000,助動詞,*,*,*,特殊・デス,基本形,です,デス,デス,1/2,F2@0",
			true,
		},
		{
			"ipadic",
			"東京,1293,1293,3000,名詞,固有名詞,地域,一般,*,*,東京,トウキョウ,トーキョー",
			"東京,1293,1293,3000,名詞,固有名詞,地域,一般,*,*,東京,トウキョウ,トーキョー,*,*",
			true,
		},
		{
			"bad accent",
			"木,1285,1285,4000,名詞,一般,*,*,*,*,木,キ,キ,x,C1",
			"木,1285,1285,4000,名詞,一般,*,*,*,*,木,キ,キ,*,C1",
			true,
		},
		{
			"symbol",
			"。,5,5,0,記号,句点,*,*,*,*,。,。,。,0/0,*",
			"。,5,5,0,記号,句点,*,*,*,*,。,*,*,*,*",
			true,
		},
		{
			"unreadable word",
			"ABC,1285,1285,4000,名詞,一般,*,*,*,*,ABC,ABC,ABC,0/0,*",
			"",
			false,
		},
		{"short", "a,b,c", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := csv.NewReader(strings.NewReader(tt.rec)).Read()
			if err != nil {
				t.Fatal(err)
			}
			got, ok := convertRecord(rec)
			if ok != tt.valid {
				t.Fatalf("convertRecord ok = %v, want %v", ok, tt.valid)
			}
			if ok && strings.Join(got, ",") != tt.want {
				t.Errorf("convertRecord = %s\nwant %s", strings.Join(got, ","), tt.want)
			}
		})
	}
}

func TestConvertOutputLoads(t *testing.T) {
	input := strings.Join([]string{
		"天気,1,1,3000,名詞,一般,*,*,*,*,天気,テンキ,テンキ,1/3,C1",
		"天気,1,1,3000,名詞,一般,*,*,*,*,天気,テンキ,テンキ,1/3,C1",
		"、,4,4,0,記号,読点,*,*,*,*,、,*,*,*,*",
		"broken,row",
		"は,2,2,2000,助詞,係助詞,*,*,*,*,は,ハ,ワ,0/1,F1",
	}, "\n")

	rows, skipped := convert(strings.NewReader(input))
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	sortRows(rows)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
	entries, err := lexicon.LoadLexicon(&buf)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("entries = %d, want 4", len(entries))
	}
}

func TestChainRule(t *testing.T) {
	tests := []struct{ in, want string }{
		{"C1", "C1"},
		{"*", "*"},
		{"", "*"},
		{"名詞%F1", "F1"},
		{"動詞%F2@0/形容詞%F1", "F2@0"},
		{"P1", "*"},
	}
	for _, tt := range tests {
		if got := chainRule(tt.in); got != tt.want {
			t.Errorf("chainRule(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
