// Package vocoder converts acoustic parameter trajectories into audio.
//
// Each frame's cepstrum is turned into a zero-phase impulse response via
// the FFT; a mixed pulse/noise excitation is filtered frame by frame and
// the results are overlap-added.
package vocoder

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ieee0824/yomiage-go/acoustic"
	"github.com/ieee0824/yomiage-go/audio"
	"github.com/ieee0824/yomiage-go/internal/dsp"
	"github.com/ieee0824/yomiage-go/internal/ttserr"
)

// Config holds vocoder parameters.
type Config struct {
	FFTSize    int   // impulse response length, power of two
	Seed       int64 // noise seed
	SampleRate int   // output rate; 0 keeps the trajectory rate
}

// DefaultConfig returns reasonable default parameters.
func DefaultConfig() Config {
	return Config{FFTSize: 512, Seed: 1}
}

// Vocode renders tr. The output has exactly len(tr.Frames) hops at the
// trajectory rate before any resampling to cfg.SampleRate. Identical
// inputs give identical samples.
func Vocode(tr *acoustic.Trajectory, cfg Config) (*audio.Buffer, error) {
	if err := validate(tr, cfg); err != nil {
		return nil, ttserr.New(ttserr.KindSynthesis, ttserr.StageVocode, err)
	}
	ws, err := dsp.NewWorkspace(cfg.FFTSize)
	if err != nil {
		return nil, ttserr.New(ttserr.KindSynthesis, ttserr.StageVocode, err)
	}

	n := cfg.FFTSize
	half := n / 2
	hop := tr.FrameSamples()
	fs := float64(tr.SampleRate)
	outLen := len(tr.Frames) * hop
	buf := make([]float64, outLen+n)
	win := dsp.Hann(n)
	h := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))
	phase := 0.0

	for t, f := range tr.Frames {
		impulseResponse(ws, f.Spectrum, win, h)
		ap := math.Min(math.Max(f.Aperiodicity, 0), 1)
		pw, nw := math.Sqrt(1-ap), math.Sqrt(ap)
		f0 := math.Exp(f.LogF0)
		for i := 0; i < hop; i++ {
			e := nw * rng.NormFloat64()
			if f.Voiced && f0 > 0 {
				phase += f0 / fs
				if phase >= 1 {
					phase -= math.Floor(phase)
					e += pw * math.Sqrt(fs/f0)
				}
			} else {
				e = rng.NormFloat64()
			}
			if e == 0 {
				continue
			}
			// buf is offset by half so that output sample s lands at s+half
			base := t*hop + i
			for k, hk := range h {
				buf[base+k] += e * hk
			}
		}
	}

	gain := tr.Gain
	if gain == 0 {
		gain = 1
	}
	out := buf[half : half+outLen]
	for i, s := range out {
		out[i] = math.Max(-1, math.Min(1, s*gain))
	}
	b := audio.NewBuffer(out, tr.SampleRate)
	if cfg.SampleRate > 0 {
		b = b.Resample(cfg.SampleRate)
	}
	return b, nil
}

func validate(tr *acoustic.Trajectory, cfg Config) error {
	if tr.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d must be positive", tr.SampleRate)
	}
	if tr.FrameSamples() < 1 {
		return fmt.Errorf("frame period %v too small for %d Hz", tr.FramePeriod, tr.SampleRate)
	}
	if cfg.SampleRate < 0 {
		return fmt.Errorf("output sample rate %d must not be negative", cfg.SampleRate)
	}
	if !dsp.IsPow2(cfg.FFTSize) {
		return fmt.Errorf("fft size %d is not a power of two", cfg.FFTSize)
	}
	for i, f := range tr.Frames {
		if len(f.Spectrum) == 0 || len(f.Spectrum) > cfg.FFTSize/2 {
			return fmt.Errorf("frame %d: cepstrum length %d outside [1, %d]", i, len(f.Spectrum), cfg.FFTSize/2)
		}
	}
	return nil
}

// impulseResponse writes into h the Hann-windowed, zero-phase impulse
// response of the envelope exp(c0 + 2 sum c_m cos(m w)), centred at len(h)/2.
func impulseResponse(ws *dsp.Workspace, c, win, h []float64) {
	n := ws.Size()
	clear(ws.Re)
	clear(ws.Im)
	ws.Re[0] = c[0]
	for m := 1; m < len(c); m++ {
		ws.Re[m] = c[m]
		ws.Re[n-m] = c[m]
	}
	ws.Forward()
	for k := range ws.Re {
		ws.Re[k] = math.Exp(ws.Re[k])
		ws.Im[k] = 0
	}
	ws.Inverse()
	half := n / 2
	for i := range h {
		h[i] = ws.Re[(i-half+n)%n] * win[i]
	}
}
