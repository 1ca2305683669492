package microstates

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBackfitKnownAssignment(t *testing.T) {
	// Two orthogonal prototypes; samples are scaled copies of each.
	prototypes := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 1,
	})
	data := mat.NewDense(2, 4, []float64{
		2, 0, -3, 0.1,
		0, 5, 0.2, -4,
	})

	seq := Backfit(data, prototypes)
	want := []int{0, 1, 0, 1}
	for i := range want {
		if seq[i] != want[i] {
			t.Errorf("seq[%d]: got %d, want %d", i, seq[i], want[i])
		}
	}
}

func TestBackfitPolarityInvariance(t *testing.T) {
	data, _ := buildSignal(fourChannelTopos(), cyclePattern(9, 3), 20, 1.0, 0.05, 2)
	topos := fourChannelTopos()

	prototypes := mat.NewDense(4, 3, nil)
	for j, topo := range topos {
		prototypes.SetCol(j, topo)
	}
	seq := Backfit(data, prototypes)

	// Negating any prototype must not change a single assignment.
	flipped := mat.DenseCopyOf(prototypes)
	for j := 0; j < 3; j++ {
		col := colSlice(prototypes, j)
		for i := range col {
			col[i] = -col[i]
		}
		flipped.SetCol(j, col)
	}
	flippedSeq := Backfit(data, flipped)

	for i := range seq {
		if seq[i] != flippedSeq[i] {
			t.Fatalf("assignment %d changed under polarity flip: %d vs %d", i, seq[i], flippedSeq[i])
		}
	}
}

func TestBackfitLabelRange(t *testing.T) {
	data, _ := buildSignal(fourChannelTopos(), cyclePattern(6, 3), 10, 1.0, 0.2, 9)
	prototypes := mat.NewDense(4, 2, nil)
	prototypes.SetCol(0, fourChannelTopos()[0])
	prototypes.SetCol(1, fourChannelTopos()[1])

	seq := Backfit(data, prototypes)
	if len(seq) != 60 {
		t.Fatalf("sequence length: got %d, want 60", len(seq))
	}
	for i, s := range seq {
		if s < 0 || s >= 2 {
			t.Fatalf("seq[%d] = %d out of range [0, 2)", i, s)
		}
	}
}
