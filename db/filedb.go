// Directory-backed trace store: one directory per run, one CSV file per table.
//
// Appends (used by `tracelyze add` and the daemon's Kafka ingest) validate the entire incoming
// payload before any row is written, and rewrite rows in canonical column order so that a trace
// directory always holds well-formed tables regardless of the column order collectors use.

package db

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"sync"
)

const (
	fileIntervals = "intervals.csv"
	fileMarkers   = "markers.csv"
	fileSamples   = "samples.csv"
	fileRankFiles = "files.csv"
)

var canonicalHeader = map[TableKind][]string{
	TableIntervals: {"rank", "device", "pid", "start", "end", "kind"},
	TableMarkers:   {"rank", "iter", "start", "end"},
	TableSamples:   {"rank", "op", "value"},
	TableRankFiles: {"rank", "file"},
}

type traceDir struct {
	dir string
	// Appends serialize on this; reads are lock-free since appended rows are whole lines and
	// readers run against a store that is quiescent during analysis.
	appendLock sync.Mutex
}

func OpenTraceDir(dir string) (AppendableTraceStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("Failed to open trace directory %s\n%w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("Trace directory %s is not a directory", dir)
	}
	return &traceDir{dir: dir}, nil
}

func (td *traceDir) tablePath(kind TableKind) string {
	switch kind {
	case TableIntervals:
		return path.Join(td.dir, fileIntervals)
	case TableMarkers:
		return path.Join(td.dir, fileMarkers)
	case TableSamples:
		return path.Join(td.dir, fileSamples)
	case TableRankFiles:
		return path.Join(td.dir, fileRankFiles)
	default:
		panic("Unknown table kind")
	}
}

// An absent table file is an empty table, not an error: collectors only emit the tables their
// instrumentation produced.

func (td *traceDir) ReadOperationIntervals() ([]*OperationInterval, error) {
	f, err := os.Open(td.tablePath(TableIntervals))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOperationIntervals(f, fileIntervals)
}

func (td *traceDir) ReadIterationMarkers() ([]*IterationMarker, error) {
	f, err := os.Open(td.tablePath(TableMarkers))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseIterationMarkers(f, fileMarkers)
}

func (td *traceDir) ReadMetricSamples() ([]*MetricSample, error) {
	f, err := os.Open(td.tablePath(TableSamples))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMetricSamples(f, fileSamples)
}

func (td *traceDir) ReadRankFiles() ([]*RankFile, error) {
	f, err := os.Open(td.tablePath(TableRankFiles))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRankFiles(f, fileRankFiles)
}

func (td *traceDir) AppendRows(kind TableKind, payload []byte) error {
	input := bytes.NewReader(payload)
	source := kind.String() + " payload"
	var rows [][]string
	switch kind {
	case TableIntervals:
		parsed, err := ParseOperationIntervals(input, source)
		if err != nil {
			return err
		}
		for _, op := range parsed {
			rows = append(rows, []string{
				strconv.Itoa(op.Rank), strconv.Itoa(op.Device), strconv.Itoa(op.Pid),
				strconv.FormatInt(op.Start, 10), strconv.FormatInt(op.End, 10), op.Kind,
			})
		}
	case TableMarkers:
		parsed, err := ParseIterationMarkers(input, source)
		if err != nil {
			return err
		}
		for _, m := range parsed {
			rows = append(rows, []string{
				strconv.Itoa(m.Rank), strconv.Itoa(m.Iter),
				strconv.FormatInt(m.Start, 10), strconv.FormatInt(m.End, 10),
			})
		}
	case TableSamples:
		parsed, err := ParseMetricSamples(input, source)
		if err != nil {
			return err
		}
		for _, s := range parsed {
			rows = append(rows, []string{
				strconv.Itoa(s.Rank), s.Op, strconv.FormatFloat(s.Value, 'g', -1, 64),
			})
		}
	case TableRankFiles:
		parsed, err := ParseRankFiles(input, source)
		if err != nil {
			return err
		}
		for _, rf := range parsed {
			rows = append(rows, []string{strconv.Itoa(rf.Rank), rf.File})
		}
	default:
		panic("Unknown table kind")
	}

	td.appendLock.Lock()
	defer td.appendLock.Unlock()

	fn := td.tablePath(kind)
	needHeader := false
	if _, err := os.Stat(fn); errors.Is(err, fs.ErrNotExist) {
		needHeader = true
	}
	f, err := os.OpenFile(fn, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(canonicalHeader[kind]); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (td *traceDir) Close() error {
	return nil
}
