package utilmap

import (
	"math"
	"testing"

	"tracelyze/db"
)

func iv(rank, device int, start, end int64) *db.OperationInterval {
	return &db.OperationInterval{Rank: rank, Device: device, Start: start, End: end, Kind: "k"}
}

func feq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestChunkBoundaries(t *testing.T) {
	bs := chunkBoundaries(0, 31, 3)
	if len(bs) != 4 || bs[0] != 0 || bs[1] != 10 || bs[2] != 20 || bs[3] != 31 {
		t.Fatalf("Boundaries wrong: %v", bs)
	}
	// The span is too short for 30 chunks, clamp to one chunk per time unit.
	bs = chunkBoundaries(0, 2, 30)
	if len(bs) != 3 || bs[0] != 0 || bs[1] != 1 || bs[2] != 2 {
		t.Fatalf("Clamped boundaries wrong: %v", bs)
	}
	// A zero-length span becomes a single one-unit chunk.
	bs = chunkBoundaries(5, 5, 30)
	if len(bs) != 2 || bs[0] != 5 || bs[1] != 6 {
		t.Fatalf("Degenerate boundaries wrong: %v", bs)
	}
}

func TestChunkUtilization(t *testing.T) {
	g := &deviceIntervals{
		rank:   0,
		device: 0,
		intervals: []*db.OperationInterval{
			iv(0, 0, 0, 10),
			iv(0, 0, 5, 15),
			iv(0, 0, 29, 30),
		},
	}
	cs := chunkUtilization(g, 3)
	if len(cs) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(cs))
	}
	// [0,10): 10 from the first interval plus 5 from the second, 150%.
	if !feq(cs[0].pct, 150) {
		t.Fatalf("chunk 0: got %g", cs[0].pct)
	}
	if !feq(cs[1].pct, 50) {
		t.Fatalf("chunk 1: got %g", cs[1].pct)
	}
	if !feq(cs[2].pct, 10) {
		t.Fatalf("chunk 2: got %g", cs[2].pct)
	}
}

func TestLowUtilRegions(t *testing.T) {
	g := &deviceIntervals{
		rank:   1,
		device: 2,
		intervals: []*db.OperationInterval{
			iv(1, 2, 0, 10),
			iv(1, 2, 5, 15),
			iv(1, 2, 29, 30),
		},
	}
	rs := lowUtilRegions(g, 3, 60)
	if len(rs) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(rs))
	}
	r := rs[0]
	if r.Rank != 1 || r.Device != 2 {
		t.Fatalf("Identity wrong: %v", r)
	}
	if r.Start != 10 || r.End != 30 || r.Duration != 20 {
		t.Fatalf("Extent wrong: %v", r)
	}
	// (10*50 + 10*10) / 20
	if !feq(r.WeightedPercent, 30) {
		t.Fatalf("Weighted percent: got %g", r.WeightedPercent)
	}
}

func TestLowUtilRegionsSeparated(t *testing.T) {
	// Low, high, low: two separate regions, no coalescing across the busy chunk.
	g := &deviceIntervals{
		rank:   0,
		device: 0,
		intervals: []*db.OperationInterval{
			iv(0, 0, 0, 1),
			iv(0, 0, 10, 20),
			iv(0, 0, 29, 30),
		},
	}
	rs := lowUtilRegions(g, 3, 50)
	if len(rs) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(rs))
	}
	if rs[0].Start != 0 || rs[0].End != 10 || rs[1].Start != 20 || rs[1].End != 30 {
		t.Fatalf("Extents wrong: %v %v", rs[0], rs[1])
	}
}

func TestThresholdIsStrict(t *testing.T) {
	// A fully busy device is never below a threshold of 100, and nothing is below 0.
	g := &deviceIntervals{
		rank:   0,
		device: 0,
		intervals: []*db.OperationInterval{
			iv(0, 0, 0, 30),
		},
	}
	if rs := lowUtilRegions(g, 3, 100); len(rs) != 0 {
		t.Fatalf("Expected no regions at threshold 100, got %d", len(rs))
	}
	idle := &deviceIntervals{
		rank:   0,
		device: 0,
		intervals: []*db.OperationInterval{
			iv(0, 0, 0, 0),
		},
	}
	if rs := lowUtilRegions(idle, 3, 0); len(rs) != 0 {
		t.Fatalf("Expected no regions at threshold 0, got %d", len(rs))
	}
}

func TestUtilizationAboveHundred(t *testing.T) {
	// Two concurrent operations double-count, one idle chunk remains.
	g := &deviceIntervals{
		rank:   0,
		device: 0,
		intervals: []*db.OperationInterval{
			iv(0, 0, 0, 10),
			iv(0, 0, 0, 10),
			iv(0, 0, 19, 20),
		},
	}
	cs := chunkUtilization(g, 2)
	if !feq(cs[0].pct, 200) {
		t.Fatalf("chunk 0: got %g", cs[0].pct)
	}
	if !feq(cs[1].pct, 10) {
		t.Fatalf("chunk 1: got %g", cs[1].pct)
	}
}

func TestGroupByDevice(t *testing.T) {
	gs := groupByDevice([]*db.OperationInterval{
		iv(1, 0, 0, 1),
		iv(0, 1, 0, 1),
		iv(0, 0, 0, 1),
		iv(0, 0, 2, 3),
	})
	if len(gs) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(gs))
	}
	if gs[0].rank != 0 || gs[0].device != 0 || len(gs[0].intervals) != 2 {
		t.Fatalf("Group 0 wrong: %v", gs[0])
	}
	if gs[1].rank != 0 || gs[1].device != 1 {
		t.Fatalf("Group 1 wrong: %v", gs[1])
	}
	if gs[2].rank != 1 || gs[2].device != 0 {
		t.Fatalf("Group 2 wrong: %v", gs[2])
	}
}
