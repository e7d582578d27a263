package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader(t *testing.T) {
	const doc = `
dictionary: /srv/dict
voice: /srv/voice
log:
  level: debug
synthesis:
  symbol_handling: strict
  sample_rate: 22050
  speed: 1.25
  pitch_shift: -2
cache:
  path: /tmp/cache.db
workers: 8
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "/srv/dict", cfg.Dictionary)
	assert.Equal(t, "/srv/voice", cfg.Voice)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "strict", cfg.Synthesis.SymbolHandling)
	assert.Equal(t, 22050, cfg.Synthesis.SampleRate)
	assert.Equal(t, 1.25, cfg.Synthesis.Speed)
	assert.Equal(t, -2.0, cfg.Synthesis.PitchShift)
	assert.Equal(t, "/tmp/cache.db", cfg.Cache.Path)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 4096, cfg.MaxInputRunes)
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "lenient", cfg.Synthesis.SymbolHandling)
	assert.Equal(t, 1.0, cfg.Synthesis.Speed)
	assert.Equal(t, 4, cfg.Workers)
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("YOMIAGE_TEST_DICT", "/opt/dict")
	cfg, err := LoadFromReader(strings.NewReader("dictionary: ${YOMIAGE_TEST_DICT}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/dict", cfg.Dictionary)
}

func TestUnknownField(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("dictionry: x\n"))
	require.Error(t, err)
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Synthesis.Speed = -1
	cfg.Synthesis.SymbolHandling = "loose"
	cfg.Log.Level = "trace"

	err := Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "synthesis.speed")
	assert.Contains(t, msg, "synthesis.symbol_handling")
	assert.Contains(t, msg, "log.level")
}

func TestValidateSampleRate(t *testing.T) {
	tests := []struct {
		rate    int
		wantErr bool
	}{
		{0, false},
		{8000, false},
		{48000, false},
		{192000, false},
		{1, true},
		{7999, true},
		{-16000, true},
		{192001, true},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Synthesis.SampleRate = tt.rate
		err := Validate(cfg)
		if tt.wantErr {
			require.Error(t, err, "rate %d", tt.rate)
			assert.Contains(t, err.Error(), "synthesis.sample_rate")
		} else {
			assert.NoError(t, err, "rate %d", tt.rate)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yomiage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("voice: v\nworkers: 2\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "v", cfg.Voice)
	assert.Equal(t, 2, cfg.Workers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
