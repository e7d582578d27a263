package yomiage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/audio"
	"github.com/ieee0824/yomiage-go/cache"
	"github.com/ieee0824/yomiage-go/internal/logger"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
	"github.com/ieee0824/yomiage-go/label"
	"github.com/ieee0824/yomiage-go/morph"
	"github.com/ieee0824/yomiage-go/normalize"
	"github.com/ieee0824/yomiage-go/observe"
	"github.com/ieee0824/yomiage-go/paramgen"
	"github.com/ieee0824/yomiage-go/prosody"
	"github.com/ieee0824/yomiage-go/vocoder"
)

// request carries one pipeline run.
type request struct {
	id    string
	trace string
	ctx   context.Context
	s     *Synthesizer
}

// stage runs fn as the named pipeline step. Untagged errors from fn are
// tagged with kind and stage; a cancelled context stops the run before fn.
func (r *request) stage(stage ttserr.Stage, kind ttserr.Kind, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("yomiage: cancelled before %s: %w", stage, err)
	}
	start := time.Now()
	err := ttserr.New(kind, stage, fn())
	if r.s.metrics != nil {
		r.s.metrics.RecordStage(r.ctx, string(stage), start)
	}
	logger.Z.Debug("[pipeline] stage done",
		zap.String("request", r.id),
		zap.String("trace", r.trace),
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return err
}

// frontend runs normalization through label extraction.
func (r *request) frontend(res *resources, text string, opts Options) ([]prosody.AccentPhrase, []label.Label, error) {
	var (
		normalized string
		analysis   *morph.Result
		phrases    []prosody.AccentPhrase
		labels     []label.Label
	)
	err := r.stage(ttserr.StageNormalize, ttserr.KindAnalysis, func() (err error) {
		normalized, err = normalize.Normalize(text, opts.SymbolHandling)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	err = r.stage(ttserr.StageAnalyze, ttserr.KindAnalysis, func() (err error) {
		analysis, err = morph.Analyze(normalized, res.dict, r.s.analyzerCfg)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	err = r.stage(ttserr.StageAnnotate, ttserr.KindAnalysis, func() error {
		phrases = prosody.Annotate(analysis.Morphemes, res.dict.Grammar())
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	err = r.stage(ttserr.StageExtract, ttserr.KindAnalysis, func() error {
		labels = label.Extract(phrases)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return phrases, labels, nil
}

// backend renders labels to audio.
func (r *request) backend(res *resources, labels []label.Label, opts Options) (*audio.Buffer, error) {
	pcfg := r.s.paramCfg
	pcfg.Speed = opts.Speed
	pcfg.PitchShift = opts.PitchShift
	vcfg := r.s.vocoderCfg
	vcfg.SampleRate = opts.SampleRate

	var (
		tr  *acoustic.Trajectory
		buf *audio.Buffer
	)
	err := r.stage(ttserr.StageAcoustic, ttserr.KindSynthesis, func() (err error) {
		tr, err = paramgen.Generate(labels, res.voice, pcfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = r.stage(ttserr.StageVocode, ttserr.KindSynthesis, func() (err error) {
		buf, err = vocoder.Vocode(tr, vcfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *Synthesizer) cacheKey(text string, opts Options) cache.Key {
	return cache.Key{
		Text:              text,
		SymbolHandling:    opts.SymbolHandling.String(),
		SampleRate:        opts.SampleRate,
		Speed:             opts.Speed,
		PitchShift:        opts.PitchShift,
		Dictionary:        s.dictInfo.Name,
		DictionaryVersion: s.dictInfo.Version,
		Voice:             s.voiceInfo.Name,
		LabelSchema:       s.voiceInfo.LabelSchema,
	}
}

// Synthesize renders text to audio. Option errors are reported before any
// stage runs. The first failing stage aborts the request and its error
// carries that stage. Text that normalizes to nothing pronounceable yields
// an empty buffer at the output rate.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts Options) (buf *audio.Buffer, err error) {
	r := &request{id: uuid.NewString(), s: s}
	ctx, span := observe.StartSpan(ctx, "yomiage.Synthesize",
		trace.WithAttributes(
			attribute.String("request.id", r.id),
			attribute.Int("text.runes", len([]rune(text))),
		),
	)
	r.ctx = ctx
	r.trace = observe.TraceID(ctx)
	start := time.Now()
	cached := false
	defer func() {
		s.finish(r, start, cached, err)
		observe.EndSpan(span, err)
	}()

	if err := s.checkInput(text, opts); err != nil {
		return nil, err
	}
	res, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if s.metrics != nil {
		s.metrics.InFlight.Add(ctx, 1)
		defer s.metrics.InFlight.Add(ctx, -1)
	}

	var key cache.Key
	if s.cache != nil {
		key = s.cacheKey(text, opts)
		hit, ok, cerr := s.cache.Get(ctx, key)
		if cerr != nil {
			logger.Warnf("[pipeline] %s: cache lookup: %v", r.id, cerr)
		} else if ok {
			cached = true
			return hit, nil
		}
	}

	_, labels, err := r.frontend(res, text, opts)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		rate := opts.SampleRate
		if rate == 0 {
			rate = res.voice.Manifest.SampleRate
		}
		return audio.NewBuffer(nil, rate), nil
	}
	buf, err = r.backend(res, labels, opts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cerr := s.cache.Put(ctx, key, buf); cerr != nil {
			logger.Warnf("[pipeline] %s: cache store: %v", r.id, cerr)
		}
	}
	return buf, nil
}

// finish logs the outcome of a request and records its metrics.
func (s *Synthesizer) finish(r *request, start time.Time, cached bool, err error) {
	status := observe.StatusOK
	switch {
	case err != nil:
		status = observe.StatusError
		stage := ttserr.StageOf(err)
		logger.Z.Warn("[pipeline] synthesis failed",
			zap.String("request", r.id),
			zap.String("trace", r.trace),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordError(r.ctx, string(stage), ttserr.KindOf(err).String())
		}
	case cached:
		status = observe.StatusCacheHit
		logger.Z.Debug("[pipeline] cache hit",
			zap.String("request", r.id),
			zap.String("trace", r.trace),
		)
	default:
		logger.Z.Debug("[pipeline] synthesized",
			zap.String("request", r.id),
			zap.String("trace", r.trace),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordRequest(r.ctx, status)
	}
}

// SynthesizeBatch renders texts concurrently with at most workers requests
// in flight (workers <= 0 means no limit). Results are in input order. The
// first error cancels the remaining requests and is returned.
func (s *Synthesizer) SynthesizeBatch(ctx context.Context, texts []string, opts Options, workers int) ([]*audio.Buffer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	out := make([]*audio.Buffer, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			buf, err := s.Synthesize(ctx, text, opts)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			out[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
