package yomiage

import (
	"github.com/ieee0824/yomiage-go/internal/resource"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
)

// Error kinds. Every error returned by a Synthesizer matches exactly one of
// these with errors.Is, except ErrClosed and context cancellation.
var (
	ErrResourceLoad  = ttserr.ErrResourceLoad
	ErrAnalysis      = ttserr.ErrAnalysis
	ErrSynthesis     = ttserr.ErrSynthesis
	ErrConfiguration = ttserr.ErrConfiguration

	// ErrClosed is returned by every call made after Close.
	ErrClosed = resource.ErrClosed
)

// Error carries the kind and originating stage of a failure. Use errors.As
// to read it.
type Error = ttserr.Error

// Stage names a pipeline step.
type Stage = ttserr.Stage

const (
	StageConfig         = ttserr.StageConfig
	StageLoadDictionary = ttserr.StageLoadDictionary
	StageLoadVoice      = ttserr.StageLoadVoice
	StageNormalize      = ttserr.StageNormalize
	StageAnalyze        = ttserr.StageAnalyze
	StageAnnotate       = ttserr.StageAnnotate
	StageExtract        = ttserr.StageExtract
	StageAcoustic       = ttserr.StageAcoustic
	StageVocode         = ttserr.StageVocode
)

// StageOf returns the stage an error originated in, or "".
func StageOf(err error) Stage { return ttserr.StageOf(err) }
