// CSV readers for the trace tables.  Each table has a mandatory header naming its columns;
// unknown columns are allowed and ignored, missing required columns fail the table.  Any bad row
// fails the whole table - downstream consumers never see a partially parsed table.

package db

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Line numbers in errors are 1-based file lines, so data row i is line i+1 (the header is line 1).

type columnIndex map[string]int

func readHeader(r *csv.Reader, source string, required []string) (columnIndex, error) {
	header, err := r.Read()
	if err == io.EOF {
		return nil, badTable(source, "empty table, header required")
	}
	if err != nil {
		return nil, badTable(source, err.Error())
	}
	ix := make(columnIndex)
	for i, name := range header {
		ix[name] = i
	}
	for _, name := range required {
		if _, found := ix[name]; !found {
			return nil, badTable(source, "missing required column "+name)
		}
	}
	return ix, nil
}

func intField(fields []string, ix columnIndex, name, source string, line int) (int, error) {
	n, err := strconv.Atoi(fields[ix[name]])
	if err != nil {
		return 0, badRow(source, line, "bad %s value %q", name, fields[ix[name]])
	}
	return n, nil
}

func int64Field(fields []string, ix columnIndex, name, source string, line int) (int64, error) {
	n, err := strconv.ParseInt(fields[ix[name]], 10, 64)
	if err != nil {
		return 0, badRow(source, line, "bad %s value %q", name, fields[ix[name]])
	}
	return n, nil
}

func floatField(fields []string, ix columnIndex, name, source string, line int) (float64, error) {
	n, err := strconv.ParseFloat(fields[ix[name]], 64)
	if err != nil {
		return 0, badRow(source, line, "bad %s value %q", name, fields[ix[name]])
	}
	return n, nil
}

func ParseOperationIntervals(input io.Reader, source string) ([]*OperationInterval, error) {
	r := csv.NewReader(input)
	ix, err := readHeader(r, source, []string{"rank", "device", "pid", "start", "end", "kind"})
	if err != nil {
		return nil, err
	}
	rows := make([]*OperationInterval, 0)
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, badRow(source, line, "%s", err.Error())
		}
		var e1, e2, e3, e4, e5 error
		op := new(OperationInterval)
		op.Rank, e1 = intField(fields, ix, "rank", source, line)
		op.Device, e2 = intField(fields, ix, "device", source, line)
		op.Pid, e3 = intField(fields, ix, "pid", source, line)
		op.Start, e4 = int64Field(fields, ix, "start", source, line)
		op.End, e5 = int64Field(fields, ix, "end", source, line)
		op.Kind = fields[ix["kind"]]
		if err := firstError(e1, e2, e3, e4, e5); err != nil {
			return nil, err
		}
		if err := checkInterval(op, source, line); err != nil {
			return nil, err
		}
		rows = append(rows, op)
	}
	return rows, nil
}

func ParseIterationMarkers(input io.Reader, source string) ([]*IterationMarker, error) {
	r := csv.NewReader(input)
	ix, err := readHeader(r, source, []string{"rank", "iter", "start", "end"})
	if err != nil {
		return nil, err
	}
	rows := make([]*IterationMarker, 0)
	ck := newMarkerChecker()
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, badRow(source, line, "%s", err.Error())
		}
		var e1, e2, e3, e4 error
		m := new(IterationMarker)
		m.Rank, e1 = intField(fields, ix, "rank", source, line)
		m.Iter, e2 = intField(fields, ix, "iter", source, line)
		m.Start, e3 = int64Field(fields, ix, "start", source, line)
		m.End, e4 = int64Field(fields, ix, "end", source, line)
		if err := firstError(e1, e2, e3, e4); err != nil {
			return nil, err
		}
		if err := ck.check(m, source, line); err != nil {
			return nil, err
		}
		rows = append(rows, m)
	}
	return rows, nil
}

func ParseMetricSamples(input io.Reader, source string) ([]*MetricSample, error) {
	r := csv.NewReader(input)
	ix, err := readHeader(r, source, []string{"rank", "op", "value"})
	if err != nil {
		return nil, err
	}
	rows := make([]*MetricSample, 0)
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, badRow(source, line, "%s", err.Error())
		}
		var e1, e2 error
		s := new(MetricSample)
		s.Rank, e1 = intField(fields, ix, "rank", source, line)
		s.Value, e2 = floatField(fields, ix, "value", source, line)
		s.Op = fields[ix["op"]]
		if err := firstError(e1, e2); err != nil {
			return nil, err
		}
		if err := checkSample(s, source, line); err != nil {
			return nil, err
		}
		rows = append(rows, s)
	}
	return rows, nil
}

func ParseRankFiles(input io.Reader, source string) ([]*RankFile, error) {
	r := csv.NewReader(input)
	ix, err := readHeader(r, source, []string{"rank", "file"})
	if err != nil {
		return nil, err
	}
	rows := make([]*RankFile, 0)
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, badRow(source, line, "%s", err.Error())
		}
		rf := new(RankFile)
		var e1 error
		rf.Rank, e1 = intField(fields, ix, "rank", source, line)
		rf.File = fields[ix["file"]]
		if e1 != nil {
			return nil, e1
		}
		rows = append(rows, rf)
	}
	return rows, nil
}

func firstError(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
