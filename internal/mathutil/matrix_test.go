package mathutil

import (
	"math"
	"testing"
)

func TestNewMat(t *testing.T) {
	m := NewMat(3, 4)
	if len(m) != 3 {
		t.Fatalf("rows = %d, want 3", len(m))
	}
	for i, row := range m {
		if len(row) != 4 {
			t.Fatalf("row %d cols = %d, want 4", i, len(row))
		}
	}
	m[0][3] = 1
	if m[1][0] != 0 {
		t.Errorf("rows overlap: m[1][0] = %f", m[1][0])
	}
}

func TestColumn(t *testing.T) {
	m := NewMat(3, 2)
	SetColumn(m, 1, Vec{1, 2, 3})
	got := NewVec(3)
	Column(got, m, 1)
	for i, want := range []float64{1, 2, 3} {
		if got[i] != want {
			t.Errorf("col[%d] = %f, want %f", i, got[i], want)
		}
		if m[i][0] != 0 {
			t.Errorf("m[%d][0] = %f, want 0", i, m[i][0])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name    string
		x       Vec
		weights Vec
		w       int
		want    Vec
	}{
		{"width 1 is identity", Vec{1, 5, 2}, nil, 1, Vec{1, 5, 2}},
		{"flat", Vec{2, 2, 2, 2}, nil, 3, Vec{2, 2, 2, 2}},
		{"step", Vec{0, 0, 3, 3}, nil, 3, Vec{0, 1, 2, 3}},
		{"weighted", Vec{0, 4}, Vec{1, 3}, 3, Vec{3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.x, tt.weights, tt.w)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("got[%d] = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}
