package db

import (
	"errors"
	"strings"
	"testing"
)

func TestParseOperationIntervals(t *testing.T) {
	input := `kind,rank,device,pid,start,end,extra
gemm,0,1,42,10,20,ignored
allreduce,1,0,43,15,30,ignored
`
	ops, err := ParseOperationIntervals(strings.NewReader(input), "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(ops))
	}
	// Columns are located by name, not position, and unknown columns are ignored.
	op := ops[0]
	if op.Rank != 0 || op.Device != 1 || op.Pid != 42 || op.Start != 10 || op.End != 20 || op.Kind != "gemm" {
		t.Fatalf("Row 0 wrong: %v", op)
	}
}

func TestParseIntervalsBadInput(t *testing.T) {
	cases := []struct{ name, input string }{
		{"empty", ""},
		{"missing column", "rank,device,pid,start\n"},
		{"bad number", "rank,device,pid,start,end,kind\nx,0,1,2,3,k\n"},
		{"negative rank", "rank,device,pid,start,end,kind\n-1,0,1,2,3,k\n"},
		{"negative device", "rank,device,pid,start,end,kind\n0,-1,1,2,3,k\n"},
		{"end before start", "rank,device,pid,start,end,kind\n0,0,1,5,3,k\n"},
	}
	for _, c := range cases {
		_, err := ParseOperationIntervals(strings.NewReader(c.input), "test")
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if !errors.Is(err, ErrBadInput) {
			t.Fatalf("%s: error not tagged ErrBadInput: %v", c.name, err)
		}
	}
}

func TestParseIterationMarkers(t *testing.T) {
	input := `rank,iter,start,end
0,0,0,50
0,2,100,160
1,0,5,60
`
	ms, err := ParseIterationMarkers(strings.NewReader(input), "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(ms))
	}
	// Iteration indices may have gaps, they need only increase per rank.
	if ms[1].Iter != 2 {
		t.Fatalf("Row 1 wrong: %v", ms[1])
	}
}

func TestParseMarkersOrdering(t *testing.T) {
	// Repeated iteration index within a rank.
	bad1 := "rank,iter,start,end\n0,1,0,10\n0,1,20,30\n"
	if _, err := ParseIterationMarkers(strings.NewReader(bad1), "test"); err == nil {
		t.Fatal("Expected error for repeated iteration index")
	}
	// Start times going backwards within a rank.
	bad2 := "rank,iter,start,end\n0,0,100,110\n0,1,50,60\n"
	if _, err := ParseIterationMarkers(strings.NewReader(bad2), "test"); err == nil {
		t.Fatal("Expected error for non-monotonic start")
	}
	// The per-rank state is independent, interleaved ranks are fine.
	ok := "rank,iter,start,end\n0,0,100,110\n1,0,5,6\n0,1,120,130\n"
	if _, err := ParseIterationMarkers(strings.NewReader(ok), "test"); err != nil {
		t.Fatal(err)
	}
}

func TestParseMetricSamples(t *testing.T) {
	input := `rank,op,value
0,gemm,1.5
0,gemm,2.5
1,allreduce,-3
`
	ss, err := ParseMetricSamples(strings.NewReader(input), "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(ss) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(ss))
	}
	if ss[2].Rank != 1 || ss[2].Op != "allreduce" || ss[2].Value != -3 {
		t.Fatalf("Row 2 wrong: %v", ss[2])
	}
	bad := "rank,op,value\n0,,1\n"
	if _, err := ParseMetricSamples(strings.NewReader(bad), "test"); err == nil {
		t.Fatal("Expected error for empty operation name")
	}
}

func TestParseRankFiles(t *testing.T) {
	input := `rank,file
0,trace_rank0.sqlite
1,trace_rank1.sqlite
`
	fs, err := ParseRankFiles(strings.NewReader(input), "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 2 || fs[1].Rank != 1 || fs[1].File != "trace_rank1.sqlite" {
		t.Fatalf("Rows wrong: %v", fs)
	}
}
