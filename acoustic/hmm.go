package acoustic

import "fmt"

// StateModel holds the generation parameters of one emitting state.
type StateModel struct {
	Duration     float64  // mean duration in frames
	Spectrum     Gaussian // cepstral envelope, dim = Order+1
	Aperiodicity float64  // 0 = pulse only, 1 = noise only
	Voiced       bool
}

// PhonemeHMM is a left-to-right model of one phoneme for synthesis.
// States are visited in order with no skips; each state occupies a
// whole number of frames.
type PhonemeHMM struct {
	Phoneme Phoneme
	States  [NumEmittingStates]StateModel
}

func (h *PhonemeHMM) validate(order int) error {
	for i, s := range h.States {
		if !(s.Duration > 0) {
			return fmt.Errorf("phoneme %s state %d: duration %v must be positive", h.Phoneme, i, s.Duration)
		}
		if !s.Spectrum.validate(order + 1) {
			return fmt.Errorf("phoneme %s state %d: spectrum must have dim %d and positive variance", h.Phoneme, i, order+1)
		}
		if s.Aperiodicity < 0 || s.Aperiodicity > 1 {
			return fmt.Errorf("phoneme %s state %d: aperiodicity %v outside [0,1]", h.Phoneme, i, s.Aperiodicity)
		}
	}
	return nil
}
