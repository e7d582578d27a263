package cache

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/yomiage-go/audio"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	key := Key{Text: "今日は", Speed: 1, Dictionary: "demo", DictionaryVersion: 1, Voice: "demo", LabelSchema: "x"}

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := audio.NewBuffer([]float64{0, 0.1, -0.25, 1e-300, math.SmallestNonzeroFloat64, -1}, 16000)
	require.NoError(t, s.Put(ctx, key, want))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, want.Equal(got))
	assert.Equal(t, 16000, got.SampleRate())

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPutReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	key := Key{Text: "a"}

	require.NoError(t, s.Put(ctx, key, audio.NewBuffer([]float64{1}, 8000)))
	require.NoError(t, s.Put(ctx, key, audio.NewBuffer([]float64{2, 3}, 8000)))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{2, 3}, got.Samples())
}

func TestKeyHash(t *testing.T) {
	base := Key{Text: "天気", SymbolHandling: "lenient", Speed: 1, Dictionary: "d", DictionaryVersion: 1, Voice: "v", LabelSchema: "s"}
	assert.Equal(t, base.Hash(), base.Hash())
	assert.Len(t, base.Hash(), 64)

	variants := []Key{base, base, base, base, base, base}
	variants[0].Text = "天気 "
	variants[1].Speed = 1.5
	variants[2].PitchShift = 1
	variants[3].Dictionary = "e"
	variants[4].Voice = "w"
	variants[5].SampleRate = 8000
	for i, v := range variants {
		assert.NotEqual(t, base.Hash(), v.Hash(), "variant %d", i)
	}

	// Field boundaries are length-prefixed.
	a := Key{Dictionary: "ab", Voice: "c"}
	b := Key{Dictionary: "a", Voice: "bc"}
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
