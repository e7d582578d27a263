// Package mathutil holds the dense vector and matrix helpers used for
// parameter trajectories.
package mathutil

// Vec is a float64 vector.
type Vec = []float64

// Mat is a 2D float64 matrix stored as row-major [][]float64.
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero. Rows share one
// backing array.
func NewMat(rows, cols int) Mat {
	m := make(Mat, rows)
	data := make([]float64, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols]
	}
	return m
}

// NewVec creates a vector of length n initialized to zero.
func NewVec(n int) Vec {
	return make(Vec, n)
}

// CopyVec copies src into dst.
func CopyVec(dst, src Vec) {
	copy(dst, src)
}

// Column copies column j of m into dst.
func Column(dst Vec, m Mat, j int) {
	for i := range m {
		dst[i] = m[i][j]
	}
}

// SetColumn overwrites column j of m with src.
func SetColumn(m Mat, j int, src Vec) {
	for i := range m {
		m[i][j] = src[i]
	}
}

// MovingAverage smooths x with a centred window of width w, shrinking the
// window at the edges. When weights is non-nil each sample contributes in
// proportion to its weight. x is returned unchanged when w <= 1.
func MovingAverage(x, weights Vec, w int) Vec {
	if w <= 1 || len(x) == 0 {
		return x
	}
	half := w / 2
	out := make(Vec, len(x))
	for i := range x {
		sum, norm := 0.0, 0.0
		for j := max(0, i-half); j <= min(len(x)-1, i+half); j++ {
			wt := 1.0
			if weights != nil {
				wt = weights[j]
			}
			sum += wt * x[j]
			norm += wt
		}
		out[i] = sum / norm
	}
	return out
}
