package lexicon

import "strings"

var digitKana = [...]string{"ゼロ", "イチ", "ニ", "サン", "ヨン", "ゴ", "ロク", "ナナ", "ハチ", "キュウ"}

// hundreds and thousands with their sound changes (1 is read without イチ).
var hundredKana = [...]string{"", "ヒャク", "ニヒャク", "サンビャク", "ヨンヒャク", "ゴヒャク", "ロッピャク", "ナナヒャク", "ハッピャク", "キュウヒャク"}
var thousandKana = [...]string{"", "セン", "ニセン", "サンゼン", "ヨンセン", "ゴセン", "ロクセン", "ナナセン", "ハッセン", "キュウセン"}

// large units per group of four digits.
var unitKana = [...]string{"", "マン", "オク", "チョウ"}

// DigitReading returns the katakana reading of a string of ASCII digits.
// Values up to 16 digits are read as a number (300 → サンビャク); longer
// strings and strings with a leading zero are read digit by digit.
func DigitReading(digits string) string {
	if digits == "" {
		return ""
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ""
		}
	}
	if digits == "0" {
		return digitKana[0]
	}
	if digits[0] == '0' || len(digits) > 16 {
		var b strings.Builder
		for _, r := range digits {
			b.WriteString(digitKana[r-'0'])
		}
		return b.String()
	}

	// Split into groups of four from the right.
	var groups []string
	for end := len(digits); end > 0; end -= 4 {
		start := end - 4
		if start < 0 {
			start = 0
		}
		groups = append(groups, digits[start:end])
	}

	var b strings.Builder
	for gi := len(groups) - 1; gi >= 0; gi-- {
		g := groups[gi]
		r := groupReading(g)
		if r == "" {
			continue
		}
		if gi == 3 && r == "イチ" {
			r = "イッ" // イッチョウ
		}
		b.WriteString(r)
		b.WriteString(unitKana[gi])
	}
	return b.String()
}

// groupReading reads up to four digits (0-9999).
func groupReading(g string) string {
	g = strings.Repeat("0", 4-len(g)) + g
	th, hu, te, on := g[0]-'0', g[1]-'0', g[2]-'0', g[3]-'0'

	var b strings.Builder
	b.WriteString(thousandKana[th])
	b.WriteString(hundredKana[hu])
	if te > 0 {
		if te > 1 {
			b.WriteString(digitKana[te])
		}
		b.WriteString("ジュウ")
	}
	if on > 0 {
		b.WriteString(digitKana[on])
	}
	return b.String()
}

var alphabetKana = [...]string{
	"エー", "ビー", "シー", "ディー", "イー", "エフ", "ジー", "エイチ", "アイ", "ジェー",
	"ケー", "エル", "エム", "エヌ", "オー", "ピー", "キュー", "アール", "エス", "ティー",
	"ユー", "ブイ", "ダブリュー", "エックス", "ワイ", "ゼット",
}

// SpellAlphabet reads ASCII letters one by one (ABC → エービーシー).
// Other runes are skipped.
func SpellAlphabet(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteString(alphabetKana[r-'a'])
		case r >= 'A' && r <= 'Z':
			b.WriteString(alphabetKana[r-'A'])
		}
	}
	return b.String()
}
