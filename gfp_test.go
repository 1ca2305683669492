package microstates

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGFPMethods(t *testing.T) {
	tests := []struct {
		name   string
		method GFPMethod
		sample []float64
		want   float64
	}{
		{"L1 alternating", L1GFP{}, []float64{1, -1, 1, -1}, 1.0},
		{"L2 alternating", L2GFP{}, []float64{1, -1, 1, -1}, 1.0},
		{"L1 flat", L1GFP{}, []float64{3, 3, 3, 3}, 0.0},
		{"L2 flat", L2GFP{}, []float64{3, 3, 3, 3}, 0.0},
		{"L1 offset", L1GFP{}, []float64{2, 0, 2, 0}, 1.0},
		{"L2 two-channel", L2GFP{}, []float64{1, 3}, 1.0},
		{"L1 empty", L1GFP{}, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.method.FieldPower(tt.sample)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("FieldPower: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGFPFunc(t *testing.T) {
	m := GFPFunc(func(sample []float64) float64 { return float64(len(sample)) })
	if got := m.FieldPower([]float64{1, 2, 3}); got != 3 {
		t.Errorf("GFPFunc: got %v, want 3", got)
	}
}

func TestGFPSeries(t *testing.T) {
	data := mat.NewDense(2, 3, []float64{
		1, 0, 2,
		-1, 0, -2,
	})
	series := GFPSeries(data, L2GFP{})
	want := []float64{1, 0, 2}
	if len(series) != 3 {
		t.Fatalf("series length: got %d, want 3", len(series))
	}
	for i := range want {
		if math.Abs(series[i]-want[i]) > 1e-12 {
			t.Errorf("series[%d]: got %v, want %v", i, series[i], want[i])
		}
	}
}
