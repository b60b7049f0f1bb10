package quant

import (
	"math"
	"testing"
)

func feq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestQuantileInterpolation(t *testing.T) {
	// Positions fall between neighbors and are interpolated linearly.
	xs := []float64{1, 2, 3, 4}
	if v := Quantile(xs, 0.25); !feq(v, 1.75) {
		t.Fatalf("q1: got %g", v)
	}
	if v := Quantile(xs, 0.5); !feq(v, 2.5) {
		t.Fatalf("median: got %g", v)
	}
	if v := Quantile(xs, 0.75); !feq(v, 3.25) {
		t.Fatalf("q3: got %g", v)
	}
	if v := Quantile(xs, 0); !feq(v, 1) {
		t.Fatalf("min: got %g", v)
	}
	if v := Quantile(xs, 1); !feq(v, 4) {
		t.Fatalf("max: got %g", v)
	}
}

func TestSummarizeSingle(t *testing.T) {
	s, ok := Summarize([]float64{7})
	if !ok {
		t.Fatal("Single sample must have a summary")
	}
	if !feq(s.Q1, 7) || !feq(s.Median, 7) || !feq(s.Q3, 7) {
		t.Fatalf("Single-sample summary wrong: %v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, ok := Summarize(nil); ok {
		t.Fatal("Empty sample set must have no summary")
	}
	if _, ok := Median(nil); ok {
		t.Fatal("Empty sample set must have no median")
	}
}

func TestSummarizeUnsortedInputUntouched(t *testing.T) {
	xs := []float64{3, 1, 2}
	s, _ := Summarize(xs)
	if !feq(s.Median, 2) {
		t.Fatalf("median: got %g", s.Median)
	}
	if xs[0] != 3 || xs[1] != 1 || xs[2] != 2 {
		t.Fatal("Input mutated")
	}
}

func TestCrossRankOrdering(t *testing.T) {
	perRank := []Summary{
		{Q1: 2, Median: 5, Q3: 6},
		{Q1: 1, Median: 8, Q3: 9},
		{Q1: 4, Median: 4.5, Q3: 20},
	}
	s, ok := CrossRank(perRank)
	if !ok {
		t.Fatal("Expected a summary")
	}
	if !feq(s.Q1, 1) || !feq(s.Median, 5) || !feq(s.Q3, 20) {
		t.Fatalf("Cross-rank summary wrong: %v", s)
	}
	if !(s.Q1 <= s.Median && s.Median <= s.Q3) {
		t.Fatal("Quartile ordering violated")
	}
}

func TestCrossRankEmpty(t *testing.T) {
	if _, ok := CrossRank(nil); ok {
		t.Fatal("Zero eligible ranks must have no aggregate")
	}
}
