package stats

import (
	"errors"
	"io"
	"reflect"

	. "tracelyze/table"
)

type RankStat struct {
	Rank    int     `alias:"rank" desc:"Rank that produced the samples"`
	Op      string  `alias:"metric" desc:"Metric name"`
	Samples int     `alias:"n" desc:"Number of samples"`
	Q1      float64 `alias:"q1" desc:"First quartile of the sample values"`
	Median  float64 `alias:"median" desc:"Median of the sample values"`
	Q3      float64 `alias:"q3" desc:"Third quartile of the sample values"`
}

type CrossStat struct {
	Op     string  `alias:"metric" desc:"Metric name"`
	Ranks  int     `alias:"ranks" desc:"Number of ranks with samples for the metric"`
	Q1     float64 `alias:"q1" desc:"Minimum of the per-rank first quartiles"`
	Median float64 `alias:"median" desc:"Median of the per-rank medians"`
	Q3     float64 `alias:"q3" desc:"Maximum of the per-rank third quartiles"`
}

// MT: Constant after initialization; immutable
var (
	rankFormatters  = DefineTableFromTags(reflect.TypeFor[RankStat](), nil)
	crossFormatters = DefineTableFromTags(reflect.TypeFor[CrossStat](), nil)
)

// MT: Constant after initialization; immutable
var (
	rankAliases = map[string][]string{
		"default": []string{"rank", "metric", "n", "q1", "median", "q3"},
		"Default": []string{"Rank", "Op", "Samples", "Q1", "Median", "Q3"},
	}
	crossAliases = map[string][]string{
		"default": []string{"metric", "ranks", "q1", "median", "q3"},
		"Default": []string{"Op", "Ranks", "Q1", "Median", "Q3"},
	}
)

const statsDefaultFields = "default"

const statsHelp = `
stats
  Compute quartiles for recorded metric samples, per (rank, metric) pair or
  combined across ranks with -cross.  Default output format is 'fixed'.
`

func (sc *StatsCommand) MaybeFormatHelp() *FormatHelp {
	if sc.Cross {
		return StandardFormatHelp(sc.Fmt, statsHelp, crossFormatters, crossAliases, statsDefaultFields)
	}
	return StandardFormatHelp(sc.Fmt, statsHelp, rankFormatters, rankAliases, statsDefaultFields)
}

func (sc *StatsCommand) printRanks(out io.Writer, stats []*RankStat) error {
	fields, others, err := ParseFormatSpec(statsDefaultFields, sc.Fmt, rankFormatters, rankAliases)
	if err == nil && len(fields) == 0 {
		err = errors.New("No valid output fields were selected in format string")
	}
	if err != nil {
		return err
	}
	opts := StandardFormatOptions(others, DefaultFixed)
	data := make([]any, len(stats))
	for i, s := range stats {
		data[i] = s
	}
	FormatData(out, fields, rankFormatters, opts, data)
	return nil
}

func (sc *StatsCommand) printCross(out io.Writer, stats []*CrossStat) error {
	fields, others, err := ParseFormatSpec(statsDefaultFields, sc.Fmt, crossFormatters, crossAliases)
	if err == nil && len(fields) == 0 {
		err = errors.New("No valid output fields were selected in format string")
	}
	if err != nil {
		return err
	}
	opts := StandardFormatOptions(others, DefaultFixed)
	data := make([]any, len(stats))
	for i, s := range stats {
		data[i] = s
	}
	FormatData(out, fields, crossFormatters, opts, data)
	return nil
}
