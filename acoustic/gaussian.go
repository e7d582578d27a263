package acoustic

// Gaussian is a diagonal-covariance Gaussian over a parameter vector.
type Gaussian struct {
	Mean     []float64 // [dim]
	Variance []float64 // [dim] diagonal covariance
}

// Precision returns the mean inverse variance, used as a smoothing weight
// when neighbouring states are blended.
func (g Gaussian) Precision() float64 {
	if len(g.Variance) == 0 {
		return 1
	}
	s := 0.0
	for _, v := range g.Variance {
		s += 1.0 / v
	}
	return s / float64(len(g.Variance))
}

func (g Gaussian) validate(dim int) bool {
	if len(g.Mean) != dim || len(g.Variance) != dim {
		return false
	}
	for _, v := range g.Variance {
		if !(v > 0) {
			return false
		}
	}
	return true
}
