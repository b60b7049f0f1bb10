package stats

import (
	"math"
	"testing"

	"tracelyze/db"
)

func ms(rank int, op string, value float64) *db.MetricSample {
	return &db.MetricSample{Rank: rank, Op: op, Value: value}
}

func feq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRankStats(t *testing.T) {
	stats := rankStats([]*db.MetricSample{
		ms(1, "allreduce", 4),
		ms(0, "allreduce", 1),
		ms(0, "allreduce", 2),
		ms(0, "allreduce", 3),
		ms(0, "allreduce", 4),
		ms(0, "gemm", 10),
	})
	if len(stats) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(stats))
	}
	r := stats[0]
	if r.Rank != 0 || r.Op != "allreduce" || r.Samples != 4 {
		t.Fatalf("Row 0 wrong: %v", r)
	}
	if !feq(r.Q1, 1.75) || !feq(r.Median, 2.5) || !feq(r.Q3, 3.25) {
		t.Fatalf("Quartiles wrong: %v", r)
	}
	if stats[1].Op != "gemm" || stats[1].Samples != 1 || !feq(stats[1].Median, 10) {
		t.Fatalf("Row 1 wrong: %v", stats[1])
	}
	if stats[2].Rank != 1 || stats[2].Samples != 1 || !feq(stats[2].Q1, 4) {
		t.Fatalf("Row 2 wrong: %v", stats[2])
	}
}

func TestCrossStats(t *testing.T) {
	stats := crossStats([]*RankStat{
		{Rank: 0, Op: "allreduce", Samples: 3, Q1: 2, Median: 5, Q3: 6},
		{Rank: 1, Op: "allreduce", Samples: 3, Q1: 1, Median: 8, Q3: 9},
		{Rank: 2, Op: "allreduce", Samples: 3, Q1: 4, Median: 4, Q3: 20},
		{Rank: 0, Op: "gemm", Samples: 1, Q1: 7, Median: 7, Q3: 7},
	})
	if len(stats) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(stats))
	}
	a := stats[0]
	if a.Op != "allreduce" || a.Ranks != 3 {
		t.Fatalf("Row 0 wrong: %v", a)
	}
	if !feq(a.Q1, 1) || !feq(a.Median, 5) || !feq(a.Q3, 20) {
		t.Fatalf("Aggregate wrong: %v", a)
	}
	g := stats[1]
	if g.Op != "gemm" || g.Ranks != 1 || !feq(g.Median, 7) {
		t.Fatalf("Row 1 wrong: %v", g)
	}
}

func TestCrossStatsEmpty(t *testing.T) {
	if stats := crossStats(nil); len(stats) != 0 {
		t.Fatalf("Expected no rows, got %d", len(stats))
	}
}
