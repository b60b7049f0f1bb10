package pace

import (
	"math"
	"testing"

	"tracelyze/db"
)

func mk(rank, iter int, start, end int64) *db.IterationMarker {
	return &db.IterationMarker{Rank: rank, Iter: iter, Start: start, End: end}
}

func feq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func twoRanks() []*rankMarkers {
	return groupByRank([]*db.IterationMarker{
		mk(0, 0, 0, 50),
		mk(0, 1, 100, 160),
		mk(0, 2, 210, 260),
		mk(1, 0, 5, 60),
		mk(1, 1, 110, 150),
		mk(1, 2, 205, 280),
	})
}

func TestTimeSeries(t *testing.T) {
	ranks := twoRanks()

	starts := timeSeries(ranks, SeriesStart)
	if len(starts) != 6 {
		t.Fatalf("start: expected 6 rows, got %d", len(starts))
	}
	if starts[0].Value != 0 || starts[2].Value != 210 || starts[3].Value != 5 {
		t.Fatalf("start values wrong: %v", starts)
	}

	durs := timeSeries(ranks, SeriesDuration)
	if durs[0].Value != 50 || durs[1].Value != 60 || durs[5].Value != 75 {
		t.Fatalf("duration values wrong: %v", durs)
	}

	accum := timeSeries(ranks, SeriesDurationAccum)
	if accum[0].Value != 50 || accum[1].Value != 110 || accum[2].Value != 160 {
		t.Fatalf("durationaccum values wrong: %v", accum)
	}
	// The accumulator restarts at each rank.
	if accum[3].Value != 55 {
		t.Fatalf("durationaccum rank 1 wrong: %v", accum)
	}
}

func TestDeltaSeries(t *testing.T) {
	ranks := twoRanks()

	// The last iteration of each rank has no delta, so 2 rows per rank.
	deltas := timeSeries(ranks, SeriesDelta)
	if len(deltas) != 4 {
		t.Fatalf("delta: expected 4 rows, got %d", len(deltas))
	}
	if deltas[0].Value != 100 || deltas[1].Value != 110 {
		t.Fatalf("rank 0 deltas wrong: %v", deltas)
	}
	if deltas[2].Value != 105 || deltas[3].Value != 95 {
		t.Fatalf("rank 1 deltas wrong: %v", deltas)
	}
	if deltas[0].Iter != 0 || deltas[1].Iter != 1 {
		t.Fatalf("delta iteration labels wrong: %v", deltas)
	}

	accum := timeSeries(ranks, SeriesDeltaAccum)
	if accum[0].Value != 100 || accum[1].Value != 210 || accum[2].Value != 105 || accum[3].Value != 200 {
		t.Fatalf("deltaaccum values wrong: %v", accum)
	}
}

func TestDeltaMinusMedian(t *testing.T) {
	rows := deltaMinusMedian(twoRanks())
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	// Median deltas are 102.5 at both positions.
	if !feq(rows[0].Value, -2.5) || !feq(rows[1].Value, 7.5) {
		t.Fatalf("rank 0 values wrong: %v %v", rows[0], rows[1])
	}
	if !feq(rows[2].Value, 2.5) || !feq(rows[3].Value, -7.5) {
		t.Fatalf("rank 1 values wrong: %v %v", rows[2], rows[3])
	}
}

func TestDeltaMinusMedianAlignment(t *testing.T) {
	// Rank 1 has an extra iteration; alignment truncates it to the common minimum.
	ranks := groupByRank([]*db.IterationMarker{
		mk(0, 0, 0, 1),
		mk(0, 1, 100, 101),
		mk(1, 0, 0, 1),
		mk(1, 1, 120, 121),
		mk(1, 2, 240, 241),
	})
	rows := deltaMinusMedian(ranks)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	// Median of 100 and 120 is 110.
	if !feq(rows[0].Value, -10) || !feq(rows[1].Value, 10) {
		t.Fatalf("Values wrong: %v %v", rows[0], rows[1])
	}
}

func TestDeltaMinusMedianDegenerate(t *testing.T) {
	if rows := deltaMinusMedian(nil); rows != nil {
		t.Fatal("Expected no rows for no ranks")
	}
	one := groupByRank([]*db.IterationMarker{mk(0, 0, 0, 1)})
	if rows := deltaMinusMedian(one); rows != nil {
		t.Fatal("Expected no rows for a single iteration")
	}
}

func TestDeriveMarkers(t *testing.T) {
	intervals := []*db.OperationInterval{
		{Rank: 0, Device: 0, Start: 50, End: 60, Kind: "step"},
		{Rank: 0, Device: 1, Start: 10, End: 20, Kind: "step"},
		{Rank: 0, Device: 0, Start: 30, End: 40, Kind: "gemm"},
		{Rank: 1, Device: 0, Start: 5, End: 15, Kind: "step"},
	}
	ms := deriveMarkers(intervals, "step")
	if len(ms) != 3 {
		t.Fatalf("Expected 3 markers, got %d", len(ms))
	}
	// Rank 0's instances are numbered in time order regardless of device.
	if ms[0].Rank != 0 || ms[0].Iter != 0 || ms[0].Start != 10 {
		t.Fatalf("Marker 0 wrong: %v", ms[0])
	}
	if ms[1].Iter != 1 || ms[1].Start != 50 {
		t.Fatalf("Marker 1 wrong: %v", ms[1])
	}
	if ms[2].Rank != 1 || ms[2].Iter != 0 {
		t.Fatalf("Marker 2 wrong: %v", ms[2])
	}
}
