package acoustic

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/yomiage-go/internal/ttserr"
)

const testSchema = "test-schema/1"

func TestDemoVoiceValidates(t *testing.T) {
	v := DemoVoice(DemoManifest("demo", testSchema))
	require.NoError(t, v.Validate())
	assert.Equal(t, 80, v.FrameSamples())

	for _, p := range AllPhonemes() {
		h, ok := v.HMM(p)
		require.True(t, ok, "missing model for %s", p)
		for _, st := range h.States {
			assert.Greater(t, st.Duration, 0.0, "phoneme %s", p)
		}
	}
}

func TestDemoVoiceEnvelopes(t *testing.T) {
	v := DemoVoice(DemoManifest("demo", testSchema))
	omega := func(hz float64) float64 { return 2 * math.Pi * hz / DemoSampleRate }

	a, _ := v.HMM(PhonA)
	sil, _ := v.HMM(PhonSil)
	mid := a.States[1].Spectrum.Mean
	assert.Greater(t, LogAmplitude(mid, omega(800)), LogAmplitude(mid, omega(6000)))
	assert.Greater(t, LogAmplitude(mid, omega(800)), LogAmplitude(sil.States[1].Spectrum.Mean, omega(800)))

	s, _ := v.HMM(PhonS)
	assert.False(t, s.States[1].Voiced)
	assert.Equal(t, 1.0, s.States[1].Aperiodicity)
	assert.True(t, a.States[1].Voiced)
}

func TestVoiceSaveLoad(t *testing.T) {
	v := DemoVoice(DemoManifest("demo", testSchema))
	var buf bytes.Buffer
	require.NoError(t, v.Save(&buf))

	models, order, err := LoadModels(&buf)
	require.NoError(t, err)
	assert.Equal(t, DemoOrder, order)
	require.Len(t, models, len(v.Phonemes))
	assert.Equal(t, v.Phonemes[PhonE].States, models[PhonE].States)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *Voice)
	}{
		{"zero sample rate", func(v *Voice) { v.Manifest.SampleRate = 0 }},
		{"tiny frame period", func(v *Voice) { v.Manifest.FramePeriod = 1e-6 }},
		{"zero order", func(v *Voice) { v.Manifest.Order = 0 }},
		{"no base f0", func(v *Voice) { v.Manifest.BaseF0 = 0 }},
		{"no silence", func(v *Voice) { delete(v.Phonemes, PhonSil) }},
		{"order mismatch", func(v *Voice) { v.Manifest.Order = DemoOrder + 1 }},
		{"bad duration", func(v *Voice) { v.Phonemes[PhonA].States[0].Duration = 0 }},
		{"bad aperiodicity", func(v *Voice) { v.Phonemes[PhonA].States[2].Aperiodicity = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DemoVoice(DemoManifest("demo", testSchema))
			tt.mutate(v)
			assert.Error(t, v.Validate())
		})
	}
}

func TestBundleRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "voice")
	require.NoError(t, WriteBundle(dir, DemoVoice(DemoManifest("demo", testSchema))))

	v, err := LoadBundle(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", v.Manifest.Name)
	assert.Equal(t, testSchema, v.Manifest.LabelSchema)
	assert.Equal(t, 0.5, v.Manifest.Gain)
	require.NoError(t, v.Close())
	assert.Nil(t, v.Phonemes)
}

func TestLoadBundleErrors(t *testing.T) {
	write := func(t *testing.T, manifest string, withModel bool) string {
		t.Helper()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0644))
		if withModel {
			require.NoError(t, DemoVoice(DemoManifest("demo", testSchema)).SaveFile(filepath.Join(dir, ModelFile)))
		}
		return dir
	}
	good := "name: x\nlabel_schema: s\nsample_rate: 16000\nframe_period: 0.005\norder: 24\nbase_f0: 120\n"

	tests := []struct {
		name string
		dir  func(t *testing.T) string
	}{
		{"missing dir", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }},
		{"bad yaml", func(t *testing.T) string { return write(t, "name: [", true) }},
		{"no schema", func(t *testing.T) string {
			return write(t, "name: x\nsample_rate: 16000\nframe_period: 0.005\norder: 24\nbase_f0: 120\n", true)
		}},
		{"no model", func(t *testing.T) string { return write(t, good, false) }},
		{"order mismatch", func(t *testing.T) string {
			return write(t, "name: x\nlabel_schema: s\nsample_rate: 16000\nframe_period: 0.005\norder: 12\nbase_f0: 120\n", true)
		}},
		{"corrupt model", func(t *testing.T) string {
			dir := write(t, good, false)
			require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFile), []byte("garbage"), 0644))
			return dir
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBundle(tt.dir(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ttserr.ErrResourceLoad))
			assert.Equal(t, ttserr.StageLoadVoice, ttserr.StageOf(err))
		})
	}
}

func TestPhonemeClasses(t *testing.T) {
	assert.True(t, PhonA.IsVowel())
	assert.False(t, PhonK.IsVowel())
	assert.True(t, PhonK.IsVoiceless())
	assert.True(t, PhonQ.IsVoiceless())
	assert.False(t, PhonG.IsVoiceless())
	assert.True(t, PhonSP.IsSilence())
	assert.False(t, PhonN.IsSilence())
}

func TestGaussianPrecision(t *testing.T) {
	assert.Equal(t, 1.0, Gaussian{Mean: []float64{0}, Variance: []float64{1}}.Precision())
	assert.Equal(t, 3.0, Gaussian{Mean: []float64{0, 0}, Variance: []float64{0.5, 0.25}}.Precision())
	assert.Equal(t, 1.0, Gaussian{}.Precision())
}
