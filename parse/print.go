package parse

import (
	"errors"
	"io"
	"reflect"

	"tracelyze/db"
	. "tracelyze/table"
)

type IntervalRow struct {
	Rank   int    `alias:"rank" desc:"Rank that produced the interval"`
	Device int    `alias:"device" desc:"GPU device ordinal within the rank"`
	Pid    int    `alias:"pid" desc:"Process ID that issued the operation"`
	Start  int64  `alias:"start" desc:"Start of the operation (ns)"`
	End    int64  `alias:"end" desc:"End of the operation (ns)"`
	Kind   string `alias:"kind" desc:"Operation name"`
}

type MarkerRow struct {
	Rank  int   `alias:"rank" desc:"Rank that produced the marker"`
	Iter  int   `alias:"iter" desc:"Iteration index"`
	Start int64 `alias:"start" desc:"Start of the iteration (ns)"`
	End   int64 `alias:"end" desc:"End of the iteration (ns)"`
}

type SampleRow struct {
	Rank   int     `alias:"rank" desc:"Rank that produced the sample"`
	Metric string  `alias:"metric" desc:"Metric name"`
	Value  float64 `alias:"value" desc:"Sample value"`
}

type FileRow struct {
	Rank int    `alias:"rank" desc:"Rank the file belongs to"`
	File string `alias:"file" desc:"Source file name, passed through unvalidated"`
}

// MT: Constant after initialization; immutable
var (
	intervalFormatters = DefineTableFromTags(reflect.TypeFor[IntervalRow](), nil)
	markerFormatters   = DefineTableFromTags(reflect.TypeFor[MarkerRow](), nil)
	sampleFormatters   = DefineTableFromTags(reflect.TypeFor[SampleRow](), nil)
	fileFormatters     = DefineTableFromTags(reflect.TypeFor[FileRow](), nil)
)

// MT: Constant after initialization; immutable
var (
	intervalAliases = map[string][]string{
		"default": []string{"rank", "device", "pid", "start", "end", "kind"},
		"Default": []string{"Rank", "Device", "Pid", "Start", "End", "Kind"},
	}
	markerAliases = map[string][]string{
		"default": []string{"rank", "iter", "start", "end"},
		"Default": []string{"Rank", "Iter", "Start", "End"},
	}
	sampleAliases = map[string][]string{
		"default": []string{"rank", "metric", "value"},
		"Default": []string{"Rank", "Metric", "Value"},
	}
	fileAliases = map[string][]string{
		"default": []string{"rank", "file"},
		"Default": []string{"Rank", "File"},
	}
)

const parseDefaultFields = "default"

const parseHelp = `
parse
  Export one of the run's raw trace tables in whole or part.  Default output
  format is 'csv'.
`

func (pc *ParseCommand) MaybeFormatHelp() *FormatHelp {
	switch pc.Table {
	case "markers":
		return StandardFormatHelp(pc.Fmt, parseHelp, markerFormatters, markerAliases, parseDefaultFields)
	case "samples":
		return StandardFormatHelp(pc.Fmt, parseHelp, sampleFormatters, sampleAliases, parseDefaultFields)
	case "files":
		return StandardFormatHelp(pc.Fmt, parseHelp, fileFormatters, fileAliases, parseDefaultFields)
	default:
		return StandardFormatHelp(pc.Fmt, parseHelp, intervalFormatters, intervalAliases, parseDefaultFields)
	}
}

func (pc *ParseCommand) printIntervals(out io.Writer, intervals []*db.OperationInterval) error {
	rows := make([]any, len(intervals))
	for i, iv := range intervals {
		rows[i] = &IntervalRow{
			Rank:   iv.Rank,
			Device: iv.Device,
			Pid:    iv.Pid,
			Start:  iv.Start,
			End:    iv.End,
			Kind:   iv.Kind,
		}
	}
	return pc.print(out, intervalFormatters, intervalAliases, rows)
}

func (pc *ParseCommand) printMarkers(out io.Writer, markers []*db.IterationMarker) error {
	rows := make([]any, len(markers))
	for i, m := range markers {
		rows[i] = &MarkerRow{Rank: m.Rank, Iter: m.Iter, Start: m.Start, End: m.End}
	}
	return pc.print(out, markerFormatters, markerAliases, rows)
}

func (pc *ParseCommand) printSamples(out io.Writer, samples []*db.MetricSample) error {
	rows := make([]any, len(samples))
	for i, s := range samples {
		rows[i] = &SampleRow{Rank: s.Rank, Metric: s.Op, Value: s.Value}
	}
	return pc.print(out, sampleFormatters, sampleAliases, rows)
}

func (pc *ParseCommand) printFiles(out io.Writer, files []*db.RankFile) error {
	rows := make([]any, len(files))
	for i, f := range files {
		rows[i] = &FileRow{Rank: f.Rank, File: f.File}
	}
	return pc.print(out, fileFormatters, fileAliases, rows)
}

func (pc *ParseCommand) print(
	out io.Writer,
	formatters map[string]Formatter,
	aliases map[string][]string,
	rows []any,
) error {
	fields, others, err := ParseFormatSpec(parseDefaultFields, pc.Fmt, formatters, aliases)
	if err == nil && len(fields) == 0 {
		err = errors.New("No valid output fields were selected in format string")
	}
	if err != nil {
		return err
	}
	opts := StandardFormatOptions(others, DefaultCsv)
	FormatData(out, fields, formatters, opts, rows)
	return nil
}
