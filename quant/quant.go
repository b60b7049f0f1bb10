// Percentile helpers shared by the stats and pace analyses.
//
// Quartiles use linear interpolation over the sorted sample values: the p-quantile sits at
// fractional position p*(n-1) and is interpolated between its two neighbors.  A single sample
// yields that sample for all three quartiles; an empty sample set yields no value at all, never
// a sentinel.
//
// The cross-rank summary is an explicit approximation: min of the per-rank Q1s, median of the
// per-rank medians, max of the per-rank Q3s.  It is chosen over a merged-sample percentile so
// that aggregation cost scales with the number of ranks, not the number of raw samples, and
// downstream consumers are written against its looser guarantees.  Since every per-rank summary
// satisfies Q1 <= median <= Q3, the combined summary does too.

package quant

import "slices"

type Summary struct {
	Q1     float64
	Median float64
	Q3     float64
}

// Quantile interpolates in sorted, which must be sorted ascending and nonempty, at q in [0,1].
func Quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

func Median(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return Quantile(sorted, 0.5), true
}

func Summarize(xs []float64) (Summary, bool) {
	if len(xs) == 0 {
		return Summary{}, false
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return Summary{
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}, true
}

// CrossRank combines per-rank summaries into the approximate cross-rank summary.  Ranks with no
// samples must already have been excluded; with zero summaries the aggregate is undefined.
func CrossRank(perRank []Summary) (Summary, bool) {
	if len(perRank) == 0 {
		return Summary{}, false
	}
	q1 := perRank[0].Q1
	q3 := perRank[0].Q3
	medians := make([]float64, len(perRank))
	for i, s := range perRank {
		q1 = min(q1, s.Q1)
		q3 = max(q3, s.Q3)
		medians[i] = s.Median
	}
	med, _ := Median(medians)
	return Summary{Q1: q1, Median: med, Q3: q3}, true
}
