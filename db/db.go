// Data store layer for trace tables.
//
// A "run" is one collected multi-process execution.  Its trace data are four tables: operation
// intervals (GPU work on a device), iteration markers (loop-iteration delimiters), metric samples
// (scalar per-rank observations), and the rank-to-original-filename association.  The tables are
// produced by an external collector; this layer only validates and exposes them.
//
// Two providers exist: a directory of CSV files (one directory per run), and a Postgres database
// holding the same tables for many runs.  Reading is all-or-nothing per table: a malformed table
// yields an error and no rows, never a partial result.  An absent table is an empty table.

package db

import (
	"errors"
	"fmt"
)

type TableKind int

const (
	TableIntervals TableKind = iota
	TableMarkers
	TableSamples
	TableRankFiles
)

func (t TableKind) String() string {
	switch t {
	case TableIntervals:
		return "intervals"
	case TableMarkers:
		return "markers"
	case TableSamples:
		return "samples"
	case TableRankFiles:
		return "files"
	default:
		panic("Unknown table kind")
	}
}

func ParseTableKind(name string) (TableKind, error) {
	switch name {
	case "intervals":
		return TableIntervals, nil
	case "markers":
		return TableMarkers, nil
	case "samples":
		return TableSamples, nil
	case "files":
		return TableRankFiles, nil
	default:
		return 0, fmt.Errorf("Unknown table name %s", name)
	}
}

type TraceStore interface {
	ReadOperationIntervals() ([]*OperationInterval, error)
	ReadIterationMarkers() ([]*IterationMarker, error)
	ReadMetricSamples() ([]*MetricSample, error)
	ReadRankFiles() ([]*RankFile, error)
	Close() error
}

// Implemented by the file-backed store only; the Postgres store is read-only because ingestion
// into the database is owned by external ETL code.
type AppendableTraceStore interface {
	TraceStore

	// Payload is a complete CSV table (header plus rows) for the given kind.  The payload is
	// validated in full before anything is written.
	AppendRows(kind TableKind, payload []byte) error
}

// ErrBadInput tags all validation failures so that callers can distinguish corrupt input from
// I/O trouble.
var ErrBadInput = errors.New("malformed input")

func badRow(source string, line int, format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrBadInput, source, line, fmt.Sprintf(format, args...))
}

func badTable(source, what string) error {
	return fmt.Errorf("%w: %s: %s", ErrBadInput, source, what)
}
