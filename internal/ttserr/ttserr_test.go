package ttserr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := New(KindAnalysis, StageAnalyze, io.ErrUnexpectedEOF)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrAnalysis))
	assert.False(t, errors.Is(err, ErrSynthesis))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, StageAnalyze, StageOf(err))
	assert.Equal(t, KindAnalysis, KindOf(err))
}

func TestNewPreservesOriginatingStage(t *testing.T) {
	inner := New(KindResourceLoad, StageLoadVoice, errors.New("bad gob"))
	outer := New(KindSynthesis, StageAcoustic, fmt.Errorf("wrap: %w", inner))

	assert.Equal(t, StageLoadVoice, StageOf(outer))
	assert.True(t, errors.Is(outer, ErrResourceLoad))
	assert.False(t, errors.Is(outer, ErrSynthesis))
}

func TestNewNil(t *testing.T) {
	assert.NoError(t, New(KindAnalysis, StageAnalyze, nil))
}

func TestErrorMessage(t *testing.T) {
	err := Errorf(KindConfiguration, StageConfig, "speed %v must be positive", -1.0)
	assert.Equal(t, "config: configuration error: speed -1 must be positive", err.Error())
	assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
}
