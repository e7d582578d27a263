package lexicon

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ieee0824/yomiage-go/internal/logger"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
)

// BundleVersion is the dictionary bundle format this package reads.
const BundleVersion = 1

// Bundle file names.
const (
	ManifestFile = "manifest.yaml"
	LexiconFile  = "lexicon.csv"
	MatrixFile   = "matrix.def"
	UnknownFile  = "unk.def"
)

// Manifest describes a dictionary bundle.
type Manifest struct {
	Name    string  `yaml:"name"`
	Version int     `yaml:"version"`
	Grammar Grammar `yaml:"grammar"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.Version != BundleVersion {
		return m, fmt.Errorf("%s: bundle version %d, want %d", path, m.Version, BundleVersion)
	}
	if m.Name == "" {
		m.Name = filepath.Base(filepath.Dir(path))
	}
	def := DefaultGrammar()
	g := &m.Grammar
	if g.AttachPOS == nil {
		g.AttachPOS = def.AttachPOS
	}
	if g.AttachPOS1 == nil {
		g.AttachPOS1 = def.AttachPOS1
	}
	if g.PrefixPOS == nil {
		g.PrefixPOS = def.PrefixPOS
	}
	if g.BoundaryPOS == nil {
		g.BoundaryPOS = def.BoundaryPOS
	}
	if g.PausePOS1 == nil {
		g.PausePOS1 = def.PausePOS1
	}
	if g.QuestionMarks == "" {
		g.QuestionMarks = def.QuestionMarks
	}
	return m, nil
}

// LoadBundle loads a dictionary bundle directory. Every failure is a
// resource-load error tagged with the load-dictionary stage.
func LoadBundle(dir string) (*Dictionary, error) {
	d, err := loadBundle(dir)
	if err != nil {
		return nil, ttserr.New(ttserr.KindResourceLoad, ttserr.StageLoadDictionary,
			fmt.Errorf("dictionary bundle %s: %w", dir, err))
	}
	logger.Infof("[lexicon] loaded %s v%d: %d entries", d.manifest.Name, d.manifest.Version, d.size)
	return d, nil
}

func loadBundle(dir string) (*Dictionary, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory")
	}
	m, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	entries, err := LoadLexiconFile(filepath.Join(dir, LexiconFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LexiconFile, err)
	}
	matrix, err := LoadMatrixFile(filepath.Join(dir, MatrixFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MatrixFile, err)
	}
	unknown, err := LoadUnknownFile(filepath.Join(dir, UnknownFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", UnknownFile, err)
	}
	return New(m, entries, matrix, unknown)
}
