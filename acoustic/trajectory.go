package acoustic

import "time"

// Frame is one fixed-period slice of generated acoustic parameters.
type Frame struct {
	LogF0        float64   // natural log of F0 in Hz; meaningless when !Voiced
	Voiced       bool
	Spectrum     []float64 // cepstral envelope c0..cOrder
	Aperiodicity float64
}

// Segment is the frame span [Start, End) of one phoneme.
type Segment struct {
	Phoneme    Phoneme
	Start, End int
}

// Trajectory is the frame sequence produced by the acoustic engine and
// consumed once by the vocoder.
type Trajectory struct {
	SampleRate  int
	FramePeriod float64 // seconds
	Gain        float64
	Frames      []Frame
	Segments    []Segment
}

// FrameSamples returns the hop size in samples.
func (t *Trajectory) FrameSamples() int {
	return int(float64(t.SampleRate)*t.FramePeriod + 0.5)
}

// Duration returns the playback length implied by the frame count.
func (t *Trajectory) Duration() time.Duration {
	return time.Duration(len(t.Frames)*t.FrameSamples()) * time.Second / time.Duration(max(t.SampleRate, 1))
}
