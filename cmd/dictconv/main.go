package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ieee0824/yomiage-go/lexicon"
)

func main() {
	outDir := flag.String("out", "", "write a dictionary bundle into this directory (default: lexicon rows to stdout)")
	name := flag.String("name", "converted", "dictionary name for the bundle manifest")
	matrixPath := flag.String("matrix", "", "matrix.def to copy into the bundle")
	unkPath := flag.String("unk", "", "unk.def to copy into the bundle")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: dictconv [-out DIR -matrix matrix.def -unk unk.def] <csv-files...>")
		fmt.Fprintln(os.Stderr, "  Converts naist-jdic / IPAdic CSV files to bundle lexicon rows.")
		fmt.Fprintln(os.Stderr, "  Supports glob patterns: dictconv /path/to/naist-jdic/*.csv")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Expand glob patterns
	var files []string
	for _, arg := range flag.Args() {
		matches, err := filepath.Glob(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad pattern %q: %v\n", arg, err)
			os.Exit(1)
		}
		if matches == nil {
			files = append(files, arg)
		} else {
			files = append(files, matches...)
		}
	}

	var rows [][]string
	seen := make(map[string]bool)
	skipped := 0
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
			continue
		}
		rs, n := convert(f)
		f.Close()
		skipped += n
		for _, r := range rs {
			key := strings.Join(r, ",")
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, r)
		}
	}
	sortRows(rows)

	var out io.Writer = os.Stdout
	if *outDir != "" {
		if err := writeBundleFiles(*outDir, *name, *matrixPath, *unkPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		f, err := os.Create(filepath.Join(*outDir, lexicon.LexiconFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write rows: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Converted %d entries from %d files (%d skipped)\n", len(rows), len(files), skipped)
}

// convert reads CSV rows from r and returns them in bundle form together
// with the number of rows it could not use.
func convert(r io.Reader) ([][]string, int) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1 // variable fields

	var rows [][]string
	skipped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		row, ok := convertRecord(record)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

// convertRecord maps one naist-jdic (15+ fields) or IPAdic (13 fields) row
// to the 15-field bundle layout.
func convertRecord(rec []string) ([]string, bool) {
	if len(rec) < 13 {
		return nil, false
	}
	row := make([]string, 15)
	copy(row, rec[:13])
	if row[11] == "" {
		row[11] = "*"
	}
	if row[12] == "" {
		row[12] = "*"
	}
	row[13] = "*"
	row[14] = "*"
	if len(rec) >= 15 {
		row[13] = accentField(rec[13])
		row[14] = chainRule(rec[14])
	}
	pron := row[12]
	if pron == "*" {
		pron = row[11]
	}
	if pron != "*" && lexicon.MoraCount(lexicon.HiraganaToKatakana(pron)) == 0 {
		// Symbols stay as silent boundaries; other unreadable words are dropped.
		if row[4] != "記号" {
			return nil, false
		}
		row[11], row[12], row[13] = "*", "*", "*"
	}
	if _, err := lexicon.ParseChainRule(row[14]); err != nil {
		row[14] = "*"
	}
	return row, true
}

// accentField keeps well-formed "accent/moras" values.
func accentField(s string) string {
	a, m, ok := strings.Cut(s, "/")
	if !ok || !digits(a) || !digits(m) {
		return "*"
	}
	return s
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// chainRule picks the first alternative of a naist-jdic chain rule,
// dropping part-of-speech qualifiers such as "名詞%F1".
func chainRule(s string) string {
	for _, alt := range strings.Split(s, "/") {
		if _, rule, ok := strings.Cut(alt, "%"); ok {
			alt = rule
		}
		if _, err := lexicon.ParseChainRule(alt); err == nil && alt != "" {
			return alt
		}
	}
	return "*"
}

// sortRows orders rows by surface then cost for stable output.
func sortRows(rows [][]string) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i][0] != rows[j][0] {
			return rows[i][0] < rows[j][0]
		}
		return rows[i][3] < rows[j][3]
	})
}

func writeBundleFiles(dir, name, matrixPath, unkPath string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	manifest := lexicon.Manifest{Name: name, Version: lexicon.BundleVersion, Grammar: lexicon.DefaultGrammar()}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, lexicon.ManifestFile), data, 0644); err != nil {
		return err
	}
	copies := []struct{ src, dst string }{
		{matrixPath, lexicon.MatrixFile},
		{unkPath, lexicon.UnknownFile},
	}
	for _, c := range copies {
		if c.src == "" {
			continue
		}
		b, err := os.ReadFile(c.src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, c.dst), b, 0644); err != nil {
			return err
		}
	}
	return nil
}
