package lexicon

import "testing"

func TestDigitReading(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "ゼロ"},
		{"1", "イチ"},
		{"10", "ジュウ"},
		{"11", "ジュウイチ"},
		{"25", "ニジュウゴ"},
		{"100", "ヒャク"},
		{"300", "サンビャク"},
		{"600", "ロッピャク"},
		{"800", "ハッピャク"},
		{"1000", "セン"},
		{"3000", "サンゼン"},
		{"8000", "ハッセン"},
		{"2024", "ニセンニジュウヨン"},
		{"10000", "イチマン"},
		{"100000000", "イチオク"},
		{"1000000000000", "イッチョウ"},
		{"12345", "イチマンニセンサンビャクヨンジュウゴ"},
		{"007", "ゼロゼロナナ"},
		{"", ""},
		{"12a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DigitReading(tt.in); got != tt.want {
				t.Errorf("DigitReading(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSpellAlphabet(t *testing.T) {
	if got := SpellAlphabet("NHK"); got != "エヌエイチケー" {
		t.Errorf("SpellAlphabet(NHK) = %q", got)
	}
	if got := SpellAlphabet("a-z"); got != "エーゼット" {
		t.Errorf("SpellAlphabet(a-z) = %q", got)
	}
}
