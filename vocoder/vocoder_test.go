package vocoder

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
)

// steady builds a trajectory of n identical frames using the middle state
// of phoneme p from the demo voice.
func steady(t *testing.T, p acoustic.Phoneme, n int, f0 float64) *acoustic.Trajectory {
	t.Helper()
	v := acoustic.DemoVoice(acoustic.DemoManifest("demo", "s/1"))
	h, ok := v.HMM(p)
	require.True(t, ok)
	st := h.States[1]
	tr := &acoustic.Trajectory{SampleRate: acoustic.DemoSampleRate, FramePeriod: acoustic.DemoFramePeriod, Gain: 1}
	for i := 0; i < n; i++ {
		tr.Frames = append(tr.Frames, acoustic.Frame{
			LogF0:        math.Log(f0),
			Voiced:       st.Voiced,
			Spectrum:     st.Spectrum.Mean,
			Aperiodicity: st.Aperiodicity,
		})
	}
	return tr
}

func rms(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s / float64(len(x)))
}

func TestVocodeLength(t *testing.T) {
	for _, n := range []int{1, 7, 50} {
		b, err := Vocode(steady(t, acoustic.PhonA, n, 150), DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, n*80, b.Len())
		assert.Equal(t, acoustic.DemoSampleRate, b.SampleRate())
	}
}

func TestVocodeEmpty(t *testing.T) {
	tr := &acoustic.Trajectory{SampleRate: 16000, FramePeriod: 0.005}
	b, err := Vocode(tr, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
}

func TestVocodeDeterministic(t *testing.T) {
	tr := steady(t, acoustic.PhonS, 30, 150)
	a, err := Vocode(tr, DefaultConfig())
	require.NoError(t, err)
	b, err := Vocode(tr, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestVocodePeriodicity(t *testing.T) {
	tr := steady(t, acoustic.PhonA, 60, 200)
	for i := range tr.Frames {
		tr.Frames[i].Aperiodicity = 0
	}
	b, err := Vocode(tr, DefaultConfig())
	require.NoError(t, err)
	x := b.Samples()[1600:4000]

	bestLag, best := 0, math.Inf(-1)
	for lag := 50; lag <= 120; lag++ {
		r := 0.0
		for i := 0; i+lag < len(x); i++ {
			r += x[i] * x[i+lag]
		}
		if r > best {
			bestLag, best = lag, r
		}
	}
	assert.InDelta(t, 80, bestLag, 1)
}

func TestVocodeLevels(t *testing.T) {
	vowel, err := Vocode(steady(t, acoustic.PhonA, 40, 150), DefaultConfig())
	require.NoError(t, err)
	sil, err := Vocode(steady(t, acoustic.PhonSil, 40, 150), DefaultConfig())
	require.NoError(t, err)
	assert.Greater(t, rms(vowel.Samples()), 10*rms(sil.Samples()))
	assert.Greater(t, rms(sil.Samples()), 0.0)
}

func TestVocodeClips(t *testing.T) {
	tr := steady(t, acoustic.PhonA, 20, 150)
	tr.Gain = 1e6
	b, err := Vocode(tr, DefaultConfig())
	require.NoError(t, err)
	for _, s := range b.Samples() {
		require.LessOrEqual(t, math.Abs(s), 1.0)
	}
}

func TestVocodeResample(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 8000
	b, err := Vocode(steady(t, acoustic.PhonA, 10, 150), cfg)
	require.NoError(t, err)
	assert.Equal(t, 8000, b.SampleRate())
	assert.Equal(t, 400, b.Len())

	cfg.SampleRate = 1
	b, err = Vocode(steady(t, acoustic.PhonA, 1, 150), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestVocodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tr *acoustic.Trajectory, cfg *Config)
	}{
		{"no sample rate", func(tr *acoustic.Trajectory, _ *Config) { tr.SampleRate = 0 }},
		{"tiny frame", func(tr *acoustic.Trajectory, _ *Config) { tr.FramePeriod = 1e-6 }},
		{"bad fft size", func(_ *acoustic.Trajectory, cfg *Config) { cfg.FFTSize = 500 }},
		{"cepstrum too long", func(_ *acoustic.Trajectory, cfg *Config) { cfg.FFTSize = 32 }},
		{"empty cepstrum", func(tr *acoustic.Trajectory, _ *Config) { tr.Frames[0].Spectrum = nil }},
		{"negative output rate", func(_ *acoustic.Trajectory, cfg *Config) { cfg.SampleRate = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := steady(t, acoustic.PhonA, 3, 150)
			cfg := DefaultConfig()
			tt.mutate(tr, &cfg)
			_, err := Vocode(tr, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ttserr.ErrSynthesis))
			assert.Equal(t, ttserr.StageVocode, ttserr.StageOf(err))
		})
	}
}
