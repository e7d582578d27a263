package acoustic

import "math"

// Demo voice constants.
const (
	DemoSampleRate  = 16000
	DemoFramePeriod = 0.005
	DemoOrder       = 24
	demoGridSize    = 512
)

// resonance is a formant or noise band: centre frequency and bandwidth in Hz.
type resonance struct {
	freq, bw float64
}

// stateShape describes the spectral target of one state.
type stateShape struct {
	bands  []resonance
	level  float64 // peak linear amplitude of the envelope
	aper   float64
	voiced bool
	vari   float64
}

type phoneShape struct {
	dur    [NumEmittingStates]float64
	states [NumEmittingStates]stateShape
}

func vowelBands(f1, f2, f3 float64) []resonance {
	return []resonance{{f1, 80}, {f2, 100}, {f3, 160}}
}

func vowel(f1, f2, f3 float64) phoneShape {
	s := stateShape{bands: vowelBands(f1, f2, f3), level: 1, aper: 0.05, voiced: true, vari: 0.005}
	return phoneShape{dur: [3]float64{4, 8, 4}, states: [3]stateShape{s, s, s}}
}

func steady(dur [3]float64, s stateShape) phoneShape {
	return phoneShape{dur: dur, states: [3]stateShape{s, s, s}}
}

func silence(dur [3]float64) phoneShape {
	return steady(dur, stateShape{level: 0.001, aper: 1, vari: 0.05})
}

// stop builds closure, burst and release states.
func stop(burst float64, voiced bool) phoneShape {
	closure := stateShape{level: 0.003, aper: 1, vari: 0.05}
	if voiced {
		closure = stateShape{bands: []resonance{{200, 120}}, level: 0.05, aper: 0.2, voiced: true, vari: 0.02}
	}
	b := stateShape{bands: []resonance{{burst, 1200}}, level: 0.3, aper: 1, vari: 0.02}
	rel := stateShape{bands: []resonance{{burst, 1500}, {2500, 400}}, level: 0.15, aper: 0.9, vari: 0.02}
	if voiced {
		b.aper, b.voiced = 0.6, true
		rel.aper, rel.voiced = 0.3, true
	}
	return phoneShape{dur: [3]float64{3, 1, 2}, states: [3]stateShape{closure, b, rel}}
}

func fricative(centre, bw, level float64, voiced bool) phoneShape {
	s := stateShape{bands: []resonance{{centre, bw}}, level: level, aper: 1, vari: 0.02}
	if voiced {
		s.aper, s.voiced = 0.5, true
		s.bands = append(s.bands, resonance{250, 150})
	}
	return steady([3]float64{3, 4, 3}, s)
}

func affricate(centre float64, voiced bool) phoneShape {
	p := fricative(centre, 1500, 0.3, voiced)
	p.states[0] = stateShape{level: 0.003, aper: 1, vari: 0.05}
	if voiced {
		p.states[0] = stateShape{bands: []resonance{{200, 120}}, level: 0.05, aper: 0.2, voiced: true, vari: 0.02}
	}
	p.dur = [3]float64{2, 2, 3}
	return p
}

func sonorant(f1, f2, f3, level float64, dur [3]float64) phoneShape {
	return steady(dur, stateShape{bands: vowelBands(f1, f2, f3), level: level, aper: 0.1, voiced: true, vari: 0.01})
}

var demoShapes = map[Phoneme]phoneShape{
	PhonSil: silence([3]float64{4, 4, 4}),
	PhonSP:  silence([3]float64{3, 4, 3}),
	PhonQ:   silence([3]float64{3, 4, 3}),

	PhonA:    vowel(800, 1200, 2500),
	PhonI:    vowel(300, 2300, 3000),
	PhonU:    vowel(350, 1300, 2400),
	PhonE:    vowel(500, 1900, 2600),
	PhonO:    vowel(500, 900, 2400),
	PhonLong: vowel(500, 1500, 2500),

	PhonK: stop(1800, false),
	PhonT: stop(4000, false),
	PhonP: stop(800, false),
	PhonG: stop(1800, true),
	PhonD: stop(4000, true),
	PhonB: stop(800, true),

	PhonS:  fricative(5500, 2000, 0.3, false),
	PhonSh: fricative(3000, 1500, 0.3, false),
	PhonH:  fricative(1500, 2500, 0.15, false),
	PhonF:  fricative(1000, 2500, 0.1, false),
	PhonZ:  fricative(5000, 2000, 0.2, true),

	PhonCh: affricate(3000, false),
	PhonTs: affricate(5500, false),
	PhonJ:  affricate(3000, true),

	PhonM:  sonorant(250, 1100, 2200, 0.4, [3]float64{2, 3, 2}),
	PhonN:  sonorant(250, 1700, 2600, 0.4, [3]float64{2, 3, 2}),
	PhonNg: sonorant(250, 1300, 2400, 0.4, [3]float64{3, 6, 3}),
	PhonR:  sonorant(400, 1300, 2300, 0.5, [3]float64{1, 2, 1}),
	PhonY:  sonorant(300, 2200, 3000, 0.6, [3]float64{2, 2, 2}),
	PhonW:  sonorant(350, 800, 2300, 0.6, [3]float64{2, 2, 2}),
}

// DemoManifest returns the manifest of the demo voice for the given label
// schema.
func DemoManifest(name, schema string) VoiceManifest {
	return VoiceManifest{
		Name:        name,
		LabelSchema: schema,
		SampleRate:  DemoSampleRate,
		FramePeriod: DemoFramePeriod,
		Order:       DemoOrder,
		BaseF0:      140,
		AccentRange: 4,
		Gain:        0.5,
	}
}

// DemoVoice builds a small rule-based voice. Vowels and sonorants are
// cascades of formant resonators, obstruents are noise bands, and every
// envelope is converted to a cepstrum of order m.Order.
func DemoVoice(m VoiceManifest) *Voice {
	v := &Voice{Manifest: m, Phonemes: make(map[Phoneme]*PhonemeHMM, len(demoShapes))}
	for _, p := range AllPhonemes() {
		shape, ok := demoShapes[p]
		if !ok {
			continue
		}
		hmm := &PhonemeHMM{Phoneme: p}
		for i, s := range shape.states {
			mean := envelopeCepstrum(s, float64(m.SampleRate), m.Order)
			vari := make([]float64, len(mean))
			for j := range vari {
				vari[j] = s.vari
			}
			hmm.States[i] = StateModel{
				Duration:     shape.dur[i],
				Spectrum:     Gaussian{Mean: mean, Variance: vari},
				Aperiodicity: s.aper,
				Voiced:       s.voiced,
			}
		}
		v.Phonemes[p] = hmm
	}
	return v
}

// resonatorLogGain returns the log magnitude of a two-pole resonator at
// angular frequency w, normalized to unit gain at DC.
func resonatorLogGain(r resonance, fs, w float64) float64 {
	rad := math.Exp(-math.Pi * r.bw / fs)
	theta := 2 * math.Pi * r.freq / fs
	dc := 1 - 2*rad*math.Cos(theta) + rad*rad
	// |1 - rad e^{j(theta-w)}| * |1 - rad e^{-j(theta+w)}|
	d1 := 1 - 2*rad*math.Cos(theta-w) + rad*rad
	d2 := 1 - 2*rad*math.Cos(theta+w) + rad*rad
	return math.Log(dc) - 0.5*math.Log(d1) - 0.5*math.Log(d2)
}

func envelopeCepstrum(s stateShape, fs float64, order int) []float64 {
	logA := make([]float64, demoGridSize)
	peak := math.Inf(-1)
	for k := range logA {
		w := 2 * math.Pi * float64(k) / demoGridSize
		for _, b := range s.bands {
			logA[k] += resonatorLogGain(b, fs, w)
		}
		peak = math.Max(peak, logA[k])
	}
	shift := math.Log(s.level) - peak
	c := make([]float64, order+1)
	for m := range c {
		sum := 0.0
		for k, a := range logA {
			sum += (a + shift) * math.Cos(2*math.Pi*float64(m*k)/demoGridSize)
		}
		c[m] = sum / demoGridSize
	}
	return c
}

// LogAmplitude evaluates the log spectral envelope of cepstrum c at
// angular frequency w.
func LogAmplitude(c []float64, w float64) float64 {
	if len(c) == 0 {
		return 0
	}
	a := c[0]
	for m := 1; m < len(c); m++ {
		a += 2 * c[m] * math.Cos(float64(m)*w)
	}
	return a
}
