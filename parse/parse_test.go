package parse

import (
	"strings"
	"testing"

	"tracelyze/db"
)

// Round the intervals table through the printer in csv format and check the exact output.
func TestPrintIntervalsCsv(t *testing.T) {
	pc := new(ParseCommand)
	pc.Table = "intervals"
	var out strings.Builder
	pc.printIntervals(&out, []*db.OperationInterval{
		{Rank: 0, Device: 1, Pid: 42, Start: 10, End: 20, Kind: "gemm"},
		{Rank: 1, Device: 0, Pid: 43, Start: 15, End: 30, Kind: "allreduce"},
	})
	want := "0,1,42,10,20,gemm\n1,0,43,15,30,allreduce\n"
	if out.String() != want {
		t.Fatalf("Expected %q, got %q", want, out.String())
	}
}

func TestPrintSamplesNamed(t *testing.T) {
	pc := new(ParseCommand)
	pc.Table = "samples"
	pc.Fmt = "csvnamed,header"
	var out strings.Builder
	pc.printSamples(&out, []*db.MetricSample{
		{Rank: 2, Op: "gemm", Value: 1.5},
	})
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %v", lines)
	}
	if lines[0] != "rank,metric,value" {
		t.Fatalf("Header wrong: %s", lines[0])
	}
	if lines[1] != "rank=2,metric=gemm,value=1.5" {
		t.Fatalf("Row wrong: %s", lines[1])
	}
}

func TestValidateTable(t *testing.T) {
	pc := new(ParseCommand)
	pc.Table = "nonesuch"
	pc.DataDir = "/tmp"
	if err := pc.Validate(); err == nil {
		t.Fatal("Expected error for unknown table")
	}
}
