// The stats analysis computes per-rank quartiles for the recorded metric samples, and optionally
// an approximate cross-rank aggregate per metric.

package stats

import (
	"errors"
	"fmt"
	"io"

	. "tracelyze/command"
)

type StatsCommand struct {
	SharedArgs
	FormatArgs

	// Analysis args
	Metric []string
	Cross  bool
}

var _ AnalysisCommand = (*StatsCommand)(nil)

func (sc *StatsCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Compute quartiles for recorded metric samples.

By default there is one output row per (rank, metric) pair.  With -cross
the per-rank summaries are combined per metric into an approximate
cross-rank summary: the minimum of the Q1s, the median of the medians,
and the maximum of the Q3s.
`)
}

func (sc *StatsCommand) Add(fs *CLI) {
	sc.SharedArgs.Add(fs)
	sc.FormatArgs.Add(fs)
	fs.Group("analysis")
	fs.Var(NewRepeatableString(&sc.Metric), "metric",
		"Select samples for this `metric` name (repeatable) [default: all]")
	fs.BoolVar(&sc.Cross, "cross", false, "Aggregate the per-rank summaries across ranks")
}

func (sc *StatsCommand) ReifyForRemote(x *Reifier) error {
	x.RepeatableString("metric", sc.Metric)
	x.Bool("cross", sc.Cross)
	return errors.Join(
		sc.SharedArgs.ReifyForRemote(x),
		sc.FormatArgs.ReifyForRemote(x),
	)
}

func (sc *StatsCommand) Validate() error {
	return errors.Join(
		sc.SharedArgs.Validate(),
		sc.FormatArgs.Validate(),
	)
}
