// Package paramgen is the acoustic engine: it turns a label sequence into
// frame-level spectral, F0 and aperiodicity trajectories using a voice's
// per-phoneme models.
package paramgen

import (
	"errors"
	"fmt"
	"math"

	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/internal/mathutil"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
	"github.com/ieee0824/yomiage-go/label"
)

var (
	// ErrSchemaMismatch is wrapped when a voice was built for another label schema.
	ErrSchemaMismatch = errors.New("paramgen: label schema mismatch")
	// ErrUnknownPhoneme is wrapped when the voice has no model for a label's phoneme.
	ErrUnknownPhoneme = errors.New("paramgen: no model for phoneme")
)

// Config holds generation parameters.
type Config struct {
	Speed        float64 // speaking rate multiplier, > 0
	PitchShift   float64 // semitones
	Declination  float64 // semitones of fall over the utterance
	QuestionRise float64 // semitones of rise on an interrogative final mora
	SmoothFrames int     // moving-average width for F0 and spectrum
}

// DefaultConfig returns reasonable default parameters.
func DefaultConfig() Config {
	return Config{
		Speed:        1.0,
		Declination:  2.0,
		QuestionRise: 5.0,
		SmoothFrames: 5,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !(c.Speed > 0) || math.IsInf(c.Speed, 0) {
		return fmt.Errorf("speed %v must be a positive finite number", c.Speed)
	}
	if math.IsNaN(c.PitchShift) || math.IsInf(c.PitchShift, 0) {
		return fmt.Errorf("pitch shift %v must be finite", c.PitchShift)
	}
	if c.SmoothFrames < 0 {
		return fmt.Errorf("smooth frames %d must not be negative", c.SmoothFrames)
	}
	return nil
}

// unit is one phoneme to render: its model and the label it came from
// (nil for edge silence).
type unit struct {
	hmm    *acoustic.PhonemeHMM
	lab    *label.Label
	frames [acoustic.NumEmittingStates]int
}

// StateFrames returns the number of frames a state of mean duration d
// occupies at the given speed.
func StateFrames(d, speed float64) int {
	return max(1, int(math.Round(d/speed)))
}

// Generate renders labels with voice v. The utterance is padded with the
// voice's silence model on both ends. Identical inputs give identical
// trajectories.
func Generate(labels []label.Label, v *acoustic.Voice, cfg Config) (*acoustic.Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ttserr.New(ttserr.KindConfiguration, ttserr.StageAcoustic, err)
	}
	if v.Manifest.LabelSchema != label.SchemaVersion {
		return nil, ttserr.New(ttserr.KindSynthesis, ttserr.StageAcoustic,
			fmt.Errorf("%w: voice %s expects %q, labels are %q",
				ErrSchemaMismatch, v.Manifest.Name, v.Manifest.LabelSchema, label.SchemaVersion))
	}
	units, err := plan(labels, v, cfg.Speed)
	if err != nil {
		return nil, ttserr.New(ttserr.KindSynthesis, ttserr.StageAcoustic, err)
	}

	total := 0
	for _, u := range units {
		for _, n := range u.frames {
			total += n
		}
	}
	dim := v.Manifest.Order + 1
	means := mathutil.NewMat(total, dim)
	weights := mathutil.NewVec(total)
	lf0 := mathutil.NewVec(total)
	tr := &acoustic.Trajectory{
		SampleRate:  v.Manifest.SampleRate,
		FramePeriod: v.Manifest.FramePeriod,
		Gain:        v.Manifest.Gain,
		Frames:      make([]acoustic.Frame, total),
		Segments:    make([]acoustic.Segment, 0, len(units)),
	}

	base := math.Log(v.Manifest.BaseF0)
	t := 0
	for _, u := range units {
		seg := acoustic.Segment{Phoneme: u.hmm.Phoneme, Start: t}
		phoneFrames := 0
		for _, n := range u.frames {
			phoneFrames += n
		}
		k := 0
		for s, n := range u.frames {
			st := u.hmm.States[s]
			for i := 0; i < n; i++ {
				mathutil.CopyVec(means[t], st.Spectrum.Mean)
				weights[t] = st.Spectrum.Precision()
				f := &tr.Frames[t]
				f.Voiced = st.Voiced
				f.Aperiodicity = st.Aperiodicity
				if u.hmm.Phoneme.IsSilence() || (u.lab != nil && u.lab.Unvoiced) {
					f.Voiced = false
					f.Aperiodicity = 1
				}
				lf0[t] = base + semitones(pitchTarget(u.lab, v.Manifest.AccentRange, cfg, float64(k+1)/float64(phoneFrames), float64(t)/float64(total)))
				t++
				k++
			}
		}
		seg.End = t
		tr.Segments = append(tr.Segments, seg)
	}

	lf0 = mathutil.MovingAverage(lf0, nil, cfg.SmoothFrames)
	smoothSpectrum(means, weights, cfg.SmoothFrames)
	for i := range tr.Frames {
		tr.Frames[i].Spectrum = means[i]
		tr.Frames[i].LogF0 = lf0[i]
	}
	return tr, nil
}

// plan resolves every label to a model and distributes frames over states.
func plan(labels []label.Label, v *acoustic.Voice, speed float64) ([]unit, error) {
	sil, ok := v.HMM(acoustic.PhonSil)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPhoneme, acoustic.PhonSil)
	}
	units := make([]unit, 0, len(labels)+2)
	units = append(units, unit{hmm: sil})
	for i := range labels {
		h, ok := v.HMM(labels[i].Phoneme)
		if !ok {
			return nil, fmt.Errorf("%w: %s (label %d)", ErrUnknownPhoneme, labels[i].Phoneme, i)
		}
		units = append(units, unit{hmm: h, lab: &labels[i]})
	}
	units = append(units, unit{hmm: sil})
	for i := range units {
		for s, st := range units[i].hmm.States {
			units[i].frames[s] = StateFrames(st.Duration, speed)
		}
	}
	return units, nil
}

// pitchTarget returns the F0 offset in semitones for a frame at relative
// position pos within its phoneme and progress through the utterance.
func pitchTarget(l *label.Label, accentRange float64, cfg Config, pos, progress float64) float64 {
	st := cfg.PitchShift - cfg.Declination*progress
	if l == nil || l.IsPause() {
		return st - accentRange/2
	}
	if l.High {
		st += accentRange / 2
	} else {
		st -= accentRange / 2
	}
	if l.Interrogative && l.MoraInPhrase == l.PhraseMoras {
		st += cfg.QuestionRise * pos
	}
	return st
}

func semitones(st float64) float64 {
	return st * math.Ln2 / 12
}

// smoothSpectrum blends each frame with its neighbours, weighting each
// state mean by its precision, so that transitions between states are
// gradual while steady regions keep their mean.
func smoothSpectrum(means mathutil.Mat, weights mathutil.Vec, w int) {
	if w <= 1 || len(means) == 0 {
		return
	}
	col := mathutil.NewVec(len(means))
	for d := range means[0] {
		mathutil.Column(col, means, d)
		mathutil.SetColumn(means, d, mathutil.MovingAverage(col, weights, w))
	}
}
