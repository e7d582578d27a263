// Package dsp holds the FFT and window functions used by the vocoder.
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
)

func bitReverse(x, bits int) int {
	var result int
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

func log2(n int) int {
	bits := 0
	for v := n; v > 1; v >>= 1 {
		bits++
	}
	return bits
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Workspace holds reusable buffers and twiddle tables for repeated
// transforms of one size. It uses a split real/imaginary layout and does
// not allocate per call. A Workspace is not safe for concurrent use.
type Workspace struct {
	Re, Im []float64
	perm   []int
	twRe   [][]float64 // twiddle factors per stage
	twIm   [][]float64
}

// NewWorkspace allocates a workspace for transforms of size n.
func NewWorkspace(n int) (*Workspace, error) {
	if !IsPow2(n) {
		return nil, fmt.Errorf("dsp: fft size %d is not a power of two", n)
	}
	bits := log2(n)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = bitReverse(i, bits)
	}

	var twRe, twIm [][]float64
	for size := 2; size <= n; size *= 2 {
		halfSize := size / 2
		re := make([]float64, halfSize)
		im := make([]float64, halfSize)
		w := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		wn := complex(1, 0)
		for k := 0; k < halfSize; k++ {
			re[k] = real(wn)
			im[k] = imag(wn)
			wn *= w
		}
		twRe = append(twRe, re)
		twIm = append(twIm, im)
	}
	return &Workspace{
		Re:   make([]float64, n),
		Im:   make([]float64, n),
		perm: perm,
		twRe: twRe,
		twIm: twIm,
	}, nil
}

// Size returns the transform length.
func (ws *Workspace) Size() int { return len(ws.Re) }

// Forward transforms Re/Im in place.
func (ws *Workspace) Forward() {
	ws.run()
}

// Inverse computes the inverse transform of Re/Im in place, scaled by 1/N.
// It uses the conjugation identity ifft(x) = conj(fft(conj(x)))/N.
func (ws *Workspace) Inverse() {
	for i := range ws.Im {
		ws.Im[i] = -ws.Im[i]
	}
	ws.run()
	fn := float64(len(ws.Re))
	for i := range ws.Re {
		ws.Re[i] /= fn
		ws.Im[i] = -ws.Im[i] / fn
	}
}

func (ws *Workspace) run() {
	n := len(ws.Re)
	for i := 0; i < n; i++ {
		j := ws.perm[i]
		if i < j {
			ws.Re[i], ws.Re[j] = ws.Re[j], ws.Re[i]
			ws.Im[i], ws.Im[j] = ws.Im[j], ws.Im[i]
		}
	}
	for stage, size := 0, 2; size <= n; stage, size = stage+1, size*2 {
		halfSize := size / 2
		for start := 0; start < n; start += size {
			butterfly(
				ws.Re[start:start+halfSize],
				ws.Im[start:start+halfSize],
				ws.Re[start+halfSize:start+size],
				ws.Im[start+halfSize:start+size],
				ws.twRe[stage],
				ws.twIm[stage])
		}
	}
}

// butterfly performs one block of radix-2 butterflies:
//
//	t = tw[k] * v[k]
//	u[k], v[k] = u[k]+t, u[k]-t
func butterfly(uRe, uIm, vRe, vIm, twRe, twIm []float64) {
	for k := range uRe {
		tre := twRe[k]*vRe[k] - twIm[k]*vIm[k]
		tim := twRe[k]*vIm[k] + twIm[k]*vRe[k]
		ur := uRe[k]
		ui := uIm[k]
		uRe[k] = ur + tre
		uIm[k] = ui + tim
		vRe[k] = ur - tre
		vIm[k] = ui - tim
	}
}
