package acoustic

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ieee0824/yomiage-go/internal/logger"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
)

// Bundle file names.
const (
	ManifestFile = "manifest.yaml"
	ModelFile    = "voice.gob"
)

// VoiceManifest describes a voice bundle.
type VoiceManifest struct {
	Name        string  `yaml:"name"`
	LabelSchema string  `yaml:"label_schema"` // label format the models were trained on
	SampleRate  int     `yaml:"sample_rate"`
	FramePeriod float64 `yaml:"frame_period"` // seconds
	Order       int     `yaml:"order"`        // cepstral order
	BaseF0      float64 `yaml:"base_f0"`      // Hz
	AccentRange float64 `yaml:"accent_range"` // semitones between high and low morae
	Gain        float64 `yaml:"gain"`
}

// LoadBundle loads a voice bundle directory. Every failure is a
// resource-load error tagged with the load-voice stage.
func LoadBundle(dir string) (*Voice, error) {
	v, err := loadBundle(dir)
	if err != nil {
		return nil, ttserr.New(ttserr.KindResourceLoad, ttserr.StageLoadVoice,
			fmt.Errorf("voice bundle %s: %w", dir, err))
	}
	logger.Infof("[acoustic] loaded voice %s: %d phonemes, %d Hz, schema %s",
		v.Manifest.Name, len(v.Phonemes), v.Manifest.SampleRate, v.Manifest.LabelSchema)
	return v, nil
}

func loadBundle(dir string) (*Voice, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m VoiceManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	if m.LabelSchema == "" {
		return nil, errors.New("manifest has no label_schema")
	}
	if m.Gain == 0 {
		m.Gain = 1
	}

	f, err := os.Open(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	models, order, err := LoadModels(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ModelFile, err)
	}
	if order != m.Order {
		return nil, fmt.Errorf("model order %d does not match manifest order %d", order, m.Order)
	}

	v := &Voice{Manifest: m, Phonemes: models}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// WriteBundle writes v as a voice bundle into dir, creating it if needed.
func WriteBundle(dir string, v *Voice) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(v.Manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		return err
	}
	return v.SaveFile(filepath.Join(dir, ModelFile))
}
