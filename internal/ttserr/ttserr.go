// Package ttserr defines the error taxonomy shared by every pipeline stage.
//
// Each failure carries a Kind (what went wrong) and a Stage (where it
// happened). Callers match kinds with errors.Is against the sentinel values
// and read the stage with errors.As.
package ttserr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindResourceLoad Kind = iota + 1
	KindAnalysis
	KindSynthesis
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindResourceLoad:
		return "resource_load"
	case KindAnalysis:
		return "analysis"
	case KindSynthesis:
		return "synthesis"
	case KindConfiguration:
		return "configuration"
	}
	return "unknown"
}

// Stage names the pipeline step an error originated in.
type Stage string

const (
	StageConfig         Stage = "config"
	StageLoadDictionary Stage = "load-dictionary"
	StageLoadVoice      Stage = "load-voice"
	StageNormalize      Stage = "normalize"
	StageAnalyze        Stage = "analyze"
	StageAnnotate       Stage = "annotate"
	StageExtract        Stage = "extract"
	StageAcoustic       Stage = "acoustic"
	StageVocode         Stage = "vocode"
)

// Sentinels for errors.Is matching on the kind of an *Error.
var (
	ErrResourceLoad  = errors.New("resource load error")
	ErrAnalysis      = errors.New("analysis error")
	ErrSynthesis     = errors.New("synthesis error")
	ErrConfiguration = errors.New("configuration error")
)

// Error is a failure tagged with its kind and originating stage.
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.sentinel(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindResourceLoad:
		return ErrResourceLoad
	case KindAnalysis:
		return ErrAnalysis
	case KindSynthesis:
		return ErrSynthesis
	case KindConfiguration:
		return ErrConfiguration
	}
	return nil
}

// New wraps err with kind and stage. A nil err yields nil.
// If err already carries a *Error it is returned unchanged so the
// originating stage is preserved.
func New(kind Kind, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// Errorf formats a message and wraps it as New would.
func Errorf(kind Kind, stage Stage, format string, args ...any) error {
	return New(kind, stage, fmt.Errorf(format, args...))
}

// StageOf returns the stage recorded in err, or "" when err is untagged.
func StageOf(err error) Stage {
	var te *Error
	if errors.As(err, &te) {
		return te.Stage
	}
	return ""
}

// KindOf returns the kind recorded in err, or 0 when err is untagged.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
