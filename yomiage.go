// Package yomiage synthesizes Japanese speech from text.
//
// A Synthesizer owns one dictionary bundle and one voice bundle and runs
// normalization, morphological analysis, accent phrasing, label extraction,
// parameter generation and vocoding in sequence. It is safe for concurrent
// use; Close waits for in-flight requests before releasing the resources.
package yomiage

import (
	"errors"
	"fmt"
	"math"

	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/cache"
	"github.com/ieee0824/yomiage-go/internal/logger"
	"github.com/ieee0824/yomiage-go/internal/resource"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
	"github.com/ieee0824/yomiage-go/label"
	"github.com/ieee0824/yomiage-go/lexicon"
	"github.com/ieee0824/yomiage-go/morph"
	"github.com/ieee0824/yomiage-go/normalize"
	"github.com/ieee0824/yomiage-go/observe"
	"github.com/ieee0824/yomiage-go/paramgen"
	"github.com/ieee0824/yomiage-go/vocoder"
)

// DefaultMaxInputRunes bounds the input length accepted by Synthesize.
const DefaultMaxInputRunes = 4096

// Output rates accepted in Options and the CLI configuration. Zero keeps
// the voice rate.
const (
	MinSampleRate = 8000
	MaxSampleRate = 192000
)

// Options are the per-request settings.
type Options struct {
	SymbolHandling normalize.Policy
	SampleRate     int     // output rate in Hz; 0 uses the voice rate
	Speed          float64 // speaking rate multiplier, > 0
	PitchShift     float64 // semitones
}

// DefaultOptions returns lenient symbol handling at the voice rate and
// normal speed.
func DefaultOptions() Options {
	return Options{
		SymbolHandling: normalize.Lenient,
		Speed:          1.0,
	}
}

// Validate reports the first invalid option as a configuration error.
func (o Options) Validate() error {
	var err error
	switch {
	case o.SymbolHandling != normalize.Lenient && o.SymbolHandling != normalize.Strict:
		err = fmt.Errorf("unknown symbol handling %v", o.SymbolHandling)
	case o.SampleRate != 0 && (o.SampleRate < MinSampleRate || o.SampleRate > MaxSampleRate):
		err = fmt.Errorf("sample rate %d out of range [%d, %d]", o.SampleRate, MinSampleRate, MaxSampleRate)
	case !(o.Speed > 0) || math.IsInf(o.Speed, 0):
		err = fmt.Errorf("speed %v must be a positive finite number", o.Speed)
	case math.IsNaN(o.PitchShift) || math.IsInf(o.PitchShift, 0):
		err = fmt.Errorf("pitch shift %v must be finite", o.PitchShift)
	}
	return ttserr.New(ttserr.KindConfiguration, ttserr.StageConfig, err)
}

// resources are the two loaded bundles a pipeline reads from.
type resources struct {
	dict  *lexicon.Dictionary
	voice *acoustic.Voice
}

func (r *resources) close() error {
	return errors.Join(r.dict.Close(), r.voice.Close())
}

// Synthesizer is the pipeline coordinator.
type Synthesizer struct {
	res       *resource.Handle[*resources]
	dictInfo  lexicon.Manifest
	voiceInfo acoustic.VoiceManifest

	maxInputRunes int
	analyzerCfg   morph.Config
	paramCfg      paramgen.Config
	vocoderCfg    vocoder.Config
	cache         *cache.Store
	metrics       *observe.Metrics
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCache serves repeated requests from store. The caller keeps
// ownership of store and closes it after the Synthesizer.
func WithCache(store *cache.Store) Option {
	return func(s *Synthesizer) {
		s.cache = store
	}
}

// WithMetrics records stage latency and request counts into m, typically
// [observe.DefaultMetrics] or an instance built with [observe.NewMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Synthesizer) {
		s.metrics = m
	}
}

// WithMaxInputRunes sets the longest accepted input. n <= 0 keeps the
// default.
func WithMaxInputRunes(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxInputRunes = n
		}
	}
}

// WithAnalyzerConfig sets custom lattice parameters.
func WithAnalyzerConfig(cfg morph.Config) Option {
	return func(s *Synthesizer) {
		s.analyzerCfg = cfg
	}
}

// WithParamConfig sets custom prosody generation parameters. Speed and
// PitchShift are taken from the per-request Options.
func WithParamConfig(cfg paramgen.Config) Option {
	return func(s *Synthesizer) {
		s.paramCfg = cfg
	}
}

// WithVocoderConfig sets custom vocoder parameters. SampleRate is taken
// from the per-request Options.
func WithVocoderConfig(cfg vocoder.Config) Option {
	return func(s *Synthesizer) {
		s.vocoderCfg = cfg
	}
}

// New loads the dictionary bundle at dictDir and the voice bundle at
// voiceDir. Load failures are resource-load errors tagged with
// load-dictionary or load-voice.
func New(dictDir, voiceDir string, opts ...Option) (*Synthesizer, error) {
	dict, err := lexicon.LoadBundle(dictDir)
	if err != nil {
		return nil, err
	}
	voice, err := acoustic.LoadBundle(voiceDir)
	if err != nil {
		dict.Close()
		return nil, err
	}
	return NewFromResources(dict, voice, opts...), nil
}

// NewFromResources creates a Synthesizer from loaded bundles. The
// Synthesizer takes ownership of both and closes them in Close.
func NewFromResources(dict *lexicon.Dictionary, voice *acoustic.Voice, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		dictInfo:      dict.Manifest(),
		voiceInfo:     voice.Manifest,
		maxInputRunes: DefaultMaxInputRunes,
		analyzerCfg:   morph.DefaultConfig(),
		paramCfg:      paramgen.DefaultConfig(),
		vocoderCfg:    vocoder.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.res = resource.New(&resources{dict: dict, voice: voice}, (*resources).close)

	if voice.Manifest.LabelSchema != label.SchemaVersion {
		logger.Warnf("[pipeline] voice %s uses label schema %q, expected %q; synthesis will fail",
			voice.Manifest.Name, voice.Manifest.LabelSchema, label.SchemaVersion)
	}
	return s
}

// Dictionary returns the manifest of the loaded dictionary.
func (s *Synthesizer) Dictionary() lexicon.Manifest { return s.dictInfo }

// Voice returns the manifest of the loaded voice.
func (s *Synthesizer) Voice() acoustic.VoiceManifest { return s.voiceInfo }

// Close waits for in-flight requests and releases both resources. Later
// calls on s return ErrClosed.
func (s *Synthesizer) Close() error {
	return s.res.Close()
}

func (s *Synthesizer) acquire() (*resources, func(), error) {
	r, release, err := s.res.Acquire()
	if err != nil {
		return nil, release, fmt.Errorf("yomiage: %w", err)
	}
	return r, release, nil
}

func (s *Synthesizer) checkInput(text string, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if n := len([]rune(text)); n > s.maxInputRunes {
		return ttserr.Errorf(ttserr.KindConfiguration, ttserr.StageConfig,
			"input of %d runes exceeds limit %d", n, s.maxInputRunes)
	}
	return nil
}
