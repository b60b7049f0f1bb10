package pace

import (
	"errors"
	"io"
	"reflect"

	. "tracelyze/table"
)

type PaceReport struct {
	Rank  int   `alias:"rank" desc:"Rank that produced the markers"`
	Iter  int   `alias:"iter" desc:"Iteration index"`
	Value int64 `alias:"value" desc:"Value of the selected series (ns)"`
}

type PaceDeltaReport struct {
	Rank  int     `alias:"rank" desc:"Rank that produced the markers"`
	Iter  int     `alias:"iter" desc:"Iteration index"`
	Value float64 `alias:"value" desc:"Delta minus the cross-rank median delta (ns)"`
}

// MT: Constant after initialization; immutable
var (
	timeFormatters  = DefineTableFromTags(reflect.TypeFor[PaceReport](), nil)
	deltaFormatters = DefineTableFromTags(reflect.TypeFor[PaceDeltaReport](), nil)
)

// MT: Constant after initialization; immutable
var paceAliases = map[string][]string{
	"default": []string{"rank", "iter", "value"},
	"Default": []string{"Rank", "Iter", "Value"},
}

const paceDefaultFields = "default"

const paceHelp = `
pace
  Report iteration pace per rank: per-iteration times, durations, deltas,
  or the delta's offset from the cross-rank median.  Default output format
  is 'fixed'.
`

func (pc *PaceCommand) MaybeFormatHelp() *FormatHelp {
	if pc.Series == SeriesDeltaMinusMedian {
		return StandardFormatHelp(pc.Fmt, paceHelp, deltaFormatters, paceAliases, paceDefaultFields)
	}
	return StandardFormatHelp(pc.Fmt, paceHelp, timeFormatters, paceAliases, paceDefaultFields)
}

func (pc *PaceCommand) printTime(out io.Writer, rows []*PaceReport) error {
	fields, others, err := ParseFormatSpec(paceDefaultFields, pc.Fmt, timeFormatters, paceAliases)
	if err == nil && len(fields) == 0 {
		err = errors.New("No valid output fields were selected in format string")
	}
	if err != nil {
		return err
	}
	opts := StandardFormatOptions(others, DefaultFixed)
	data := make([]any, len(rows))
	for i, r := range rows {
		data[i] = r
	}
	FormatData(out, fields, timeFormatters, opts, data)
	return nil
}

func (pc *PaceCommand) printDelta(out io.Writer, rows []*PaceDeltaReport) error {
	fields, others, err := ParseFormatSpec(paceDefaultFields, pc.Fmt, deltaFormatters, paceAliases)
	if err == nil && len(fields) == 0 {
		err = errors.New("No valid output fields were selected in format string")
	}
	if err != nil {
		return err
	}
	opts := StandardFormatOptions(others, DefaultFixed)
	data := make([]any, len(rows))
	for i, r := range rows {
		data[i] = r
	}
	FormatData(out, fields, deltaFormatters, opts, data)
	return nil
}
