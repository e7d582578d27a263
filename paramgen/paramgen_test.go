package paramgen

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
	"github.com/ieee0824/yomiage-go/label"
)

func demoVoice() *acoustic.Voice {
	return acoustic.DemoVoice(acoustic.DemoManifest("demo", label.SchemaVersion))
}

// ame returns labels for a two-mora phrase "a me" with the given pitch pattern.
func ame(firstHigh, secondHigh bool) []label.Label {
	return []label.Label{
		{Phoneme: acoustic.PhonA, MoraInPhrase: 1, PhraseIndex: 1, PhraseCount: 1, PhraseMoras: 2, High: firstHigh},
		{Phoneme: acoustic.PhonM, MoraInPhrase: 2, PhraseIndex: 1, PhraseCount: 1, PhraseMoras: 2, High: secondHigh},
		{Phoneme: acoustic.PhonE, MoraInPhrase: 2, PhonemeInMora: 1, PhraseIndex: 1, PhraseCount: 1, PhraseMoras: 2, High: secondHigh},
	}
}

func expectedFrames(t *testing.T, v *acoustic.Voice, phones []acoustic.Phoneme, speed float64) int {
	t.Helper()
	n := 0
	for _, p := range phones {
		h, ok := v.HMM(p)
		require.True(t, ok)
		for _, st := range h.States {
			n += StateFrames(st.Duration, speed)
		}
	}
	return n
}

func TestGenerateFrameCount(t *testing.T) {
	v := demoVoice()
	phones := []acoustic.Phoneme{acoustic.PhonSil, acoustic.PhonA, acoustic.PhonM, acoustic.PhonE, acoustic.PhonSil}
	for _, speed := range []float64{0.5, 1, 1.3, 2} {
		cfg := DefaultConfig()
		cfg.Speed = speed
		tr, err := Generate(ame(false, true), v, cfg)
		require.NoError(t, err)
		assert.Len(t, tr.Frames, expectedFrames(t, v, phones, speed), "speed %v", speed)
		require.Len(t, tr.Segments, 5)
		assert.Equal(t, 0, tr.Segments[0].Start)
		assert.Equal(t, len(tr.Frames), tr.Segments[4].End)
		for i := 1; i < len(tr.Segments); i++ {
			assert.Equal(t, tr.Segments[i-1].End, tr.Segments[i].Start)
		}
	}
}

func TestStateFrames(t *testing.T) {
	assert.Equal(t, 8, StateFrames(8, 1))
	assert.Equal(t, 4, StateFrames(8, 2))
	assert.Equal(t, 1, StateFrames(1, 4))
	assert.Equal(t, 16, StateFrames(8, 0.5))
}

func TestGenerateTrajectoryMetadata(t *testing.T) {
	v := demoVoice()
	tr, err := Generate(ame(false, true), v, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, acoustic.DemoSampleRate, tr.SampleRate)
	assert.Equal(t, acoustic.DemoFramePeriod, tr.FramePeriod)
	assert.Equal(t, 0.5, tr.Gain)
	assert.Equal(t, 80, tr.FrameSamples())
	for _, f := range tr.Frames {
		assert.Len(t, f.Spectrum, acoustic.DemoOrder+1)
	}
	assert.False(t, tr.Frames[0].Voiced)
}

func TestGeneratePitch(t *testing.T) {
	v := demoVoice()
	cfg := DefaultConfig()
	cfg.SmoothFrames = 0
	cfg.Declination = 0

	tr, err := Generate(ame(false, true), v, cfg)
	require.NoError(t, err)
	a := tr.Segments[1]
	e := tr.Segments[3]
	low := tr.Frames[(a.Start+a.End)/2].LogF0
	hi := tr.Frames[(e.Start+e.End)/2].LogF0
	assert.InDelta(t, v.Manifest.AccentRange*math.Ln2/12, hi-low, 1e-12)
	assert.InDelta(t, math.Log(v.Manifest.BaseF0)-v.Manifest.AccentRange/2*math.Ln2/12, low, 1e-12)

	cfg.PitchShift = 12
	shifted, err := Generate(ame(false, true), v, cfg)
	require.NoError(t, err)
	for i := range tr.Frames {
		assert.InDelta(t, tr.Frames[i].LogF0+math.Ln2, shifted.Frames[i].LogF0, 1e-12)
	}
}

func TestGenerateDeclination(t *testing.T) {
	v := demoVoice()
	cfg := DefaultConfig()
	cfg.SmoothFrames = 0
	tr, err := Generate(ame(true, true), v, cfg)
	require.NoError(t, err)
	a, e := tr.Segments[1], tr.Segments[3]
	assert.Greater(t, tr.Frames[a.Start].LogF0, tr.Frames[e.End-1].LogF0)
}

func TestGenerateQuestionRise(t *testing.T) {
	v := demoVoice()
	cfg := DefaultConfig()
	cfg.SmoothFrames = 0
	cfg.Declination = 0

	labels := ame(false, true)
	plain, err := Generate(labels, v, cfg)
	require.NoError(t, err)
	for i := range labels {
		labels[i].Interrogative = true
	}
	q, err := Generate(labels, v, cfg)
	require.NoError(t, err)

	e := q.Segments[3]
	last := e.End - 1
	assert.InDelta(t, cfg.QuestionRise*math.Ln2/12, q.Frames[last].LogF0-plain.Frames[last].LogF0, 1e-12)
	// the first mora is untouched
	a := q.Segments[1]
	assert.Equal(t, plain.Frames[a.Start].LogF0, q.Frames[a.Start].LogF0)
}

func TestGenerateUnvoiced(t *testing.T) {
	v := demoVoice()
	labels := []label.Label{
		{Phoneme: acoustic.PhonS, MoraInPhrase: 1, PhraseIndex: 1, PhraseCount: 1, PhraseMoras: 1},
		{Phoneme: acoustic.PhonU, MoraInPhrase: 1, PhonemeInMora: 1, PhraseIndex: 1, PhraseCount: 1, PhraseMoras: 1, Unvoiced: true},
	}
	tr, err := Generate(labels, v, DefaultConfig())
	require.NoError(t, err)
	u := tr.Segments[2]
	for i := u.Start; i < u.End; i++ {
		assert.False(t, tr.Frames[i].Voiced)
		assert.Equal(t, 1.0, tr.Frames[i].Aperiodicity)
	}
}

func TestGenerateSpectrumSteadyState(t *testing.T) {
	v := demoVoice()
	tr, err := Generate(ame(false, true), v, DefaultConfig())
	require.NoError(t, err)
	h, _ := v.HMM(acoustic.PhonA)
	a := tr.Segments[1]
	// the middle state spans frames 4..11 of the phoneme
	mid := tr.Frames[a.Start+8].Spectrum
	for d, m := range h.States[1].Spectrum.Mean {
		assert.InDelta(t, m, mid[d], 1e-9)
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("schema mismatch", func(t *testing.T) {
		v := acoustic.DemoVoice(acoustic.DemoManifest("demo", "other/1"))
		_, err := Generate(ame(false, true), v, DefaultConfig())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ttserr.ErrSynthesis))
		assert.True(t, errors.Is(err, ErrSchemaMismatch))
		assert.Equal(t, ttserr.StageAcoustic, ttserr.StageOf(err))
	})
	t.Run("unknown phoneme", func(t *testing.T) {
		v := demoVoice()
		delete(v.Phonemes, acoustic.PhonM)
		_, err := Generate(ame(false, true), v, DefaultConfig())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ttserr.ErrSynthesis))
		assert.True(t, errors.Is(err, ErrUnknownPhoneme))
	})
	t.Run("bad speed", func(t *testing.T) {
		for _, speed := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			cfg := DefaultConfig()
			cfg.Speed = speed
			_, err := Generate(ame(false, true), demoVoice(), cfg)
			assert.True(t, errors.Is(err, ttserr.ErrConfiguration), "speed %v", speed)
		}
	})
}

func TestGenerateEmptyIsSilence(t *testing.T) {
	v := demoVoice()
	tr, err := Generate(nil, v, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, tr.Frames, expectedFrames(t, v, []acoustic.Phoneme{acoustic.PhonSil, acoustic.PhonSil}, 1))
	for _, f := range tr.Frames {
		assert.False(t, f.Voiced)
	}
}

func TestGenerateSilenceNeverVoiced(t *testing.T) {
	v := demoVoice()
	for _, p := range []acoustic.Phoneme{acoustic.PhonSil, acoustic.PhonSP} {
		h, ok := v.HMM(p)
		require.True(t, ok)
		for i := range h.States {
			h.States[i].Voiced = true
			h.States[i].Aperiodicity = 0
		}
	}
	labels := append(ame(false, true), label.Label{Phoneme: acoustic.PhonSP})
	tr, err := Generate(labels, v, DefaultConfig())
	require.NoError(t, err)
	for _, seg := range tr.Segments {
		if !seg.Phoneme.IsSilence() {
			continue
		}
		for i := seg.Start; i < seg.End; i++ {
			assert.False(t, tr.Frames[i].Voiced, "%s frame %d", seg.Phoneme, i)
			assert.Equal(t, 1.0, tr.Frames[i].Aperiodicity)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	v := demoVoice()
	a, err := Generate(ame(false, true), v, DefaultConfig())
	require.NoError(t, err)
	b, err := Generate(ame(false, true), v, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
