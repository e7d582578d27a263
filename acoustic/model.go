package acoustic

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Voice is a loaded acoustic model: per-phoneme HMMs plus the speaker and
// framing constants the engine and vocoder need. It is immutable once
// loaded and safe for concurrent readers.
type Voice struct {
	Manifest VoiceManifest
	Phonemes map[Phoneme]*PhonemeHMM
}

// HMM returns the model for p.
func (v *Voice) HMM(p Phoneme) (*PhonemeHMM, bool) {
	h, ok := v.Phonemes[p]
	return h, ok
}

// FrameSamples returns the hop size in samples at the voice sample rate.
func (v *Voice) FrameSamples() int {
	return int(float64(v.Manifest.SampleRate)*v.Manifest.FramePeriod + 0.5)
}

// Validate checks internal consistency between the manifest and the models.
func (v *Voice) Validate() error {
	m := v.Manifest
	if m.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d must be positive", m.SampleRate)
	}
	if !(m.FramePeriod > 0) || v.FrameSamples() < 1 {
		return fmt.Errorf("frame period %v too small for %d Hz", m.FramePeriod, m.SampleRate)
	}
	if m.Order < 1 {
		return fmt.Errorf("cepstral order %d must be at least 1", m.Order)
	}
	if !(m.BaseF0 > 0) {
		return fmt.Errorf("base F0 %v must be positive", m.BaseF0)
	}
	if _, ok := v.Phonemes[PhonSil]; !ok {
		return errors.New("voice has no silence model")
	}
	for _, p := range sortedPhonemes(v.Phonemes) {
		if err := v.Phonemes[p].validate(m.Order); err != nil {
			return err
		}
	}
	return nil
}

// Close drops the model tables.
func (v *Voice) Close() error {
	v.Phonemes = nil
	return nil
}

func sortedPhonemes(m map[Phoneme]*PhonemeHMM) []Phoneme {
	ps := make([]Phoneme, 0, len(m))
	for p := range m {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	return ps
}

// serializable types for gob encoding
type serializedModel struct {
	Order int
	HMMs  map[string]serializedHMM
}

type serializedHMM struct {
	Phoneme string
	States  []serializedState
}

type serializedState struct {
	Duration     float64
	Mean         []float64
	Variance     []float64
	Aperiodicity float64
	Voiced       bool
}

// Save serializes the phoneme models to a writer using gob encoding.
// The manifest is stored separately in the bundle.
func (v *Voice) Save(w io.Writer) error {
	sm := serializedModel{
		Order: v.Manifest.Order,
		HMMs:  make(map[string]serializedHMM, len(v.Phonemes)),
	}
	for p, hmm := range v.Phonemes {
		sh := serializedHMM{Phoneme: string(p)}
		for _, s := range hmm.States {
			sh.States = append(sh.States, serializedState{
				Duration:     s.Duration,
				Mean:         s.Spectrum.Mean,
				Variance:     s.Spectrum.Variance,
				Aperiodicity: s.Aperiodicity,
				Voiced:       s.Voiced,
			})
		}
		sm.HMMs[string(p)] = sh
	}
	return gob.NewEncoder(w).Encode(sm)
}

// SaveFile writes the models to path.
func (v *Voice) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := v.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadModels deserializes phoneme models and returns them with the
// cepstral order they were trained with.
func LoadModels(r io.Reader) (map[Phoneme]*PhonemeHMM, int, error) {
	var sm serializedModel
	if err := gob.NewDecoder(r).Decode(&sm); err != nil {
		return nil, 0, err
	}
	models := make(map[Phoneme]*PhonemeHMM, len(sm.HMMs))
	for pStr, sh := range sm.HMMs {
		if len(sh.States) != NumEmittingStates {
			return nil, 0, fmt.Errorf("phoneme %s: %d states, want %d", pStr, len(sh.States), NumEmittingStates)
		}
		hmm := &PhonemeHMM{Phoneme: Phoneme(pStr)}
		for i, ss := range sh.States {
			hmm.States[i] = StateModel{
				Duration:     ss.Duration,
				Spectrum:     Gaussian{Mean: ss.Mean, Variance: ss.Variance},
				Aperiodicity: ss.Aperiodicity,
				Voiced:       ss.Voiced,
			}
		}
		models[hmm.Phoneme] = hmm
	}
	return models, sm.Order, nil
}
