// The pace analysis reports how iterations progress over time, per rank and relative to the
// other ranks.
//
// Iterations come from the recorded iteration markers, or with -marker from the instances of a
// named operation, numbered per rank in time order.  The -series argument selects what is
// reported per iteration: its start or end time, its duration, the delta to the start of the
// next iteration, accumulated variants of those, or the delta's offset from the cross-rank
// median delta.

package pace

import (
	"errors"
	"fmt"
	"io"

	. "tracelyze/command"
	. "tracelyze/common"
)

const (
	SeriesStart            = "start"
	SeriesEnd              = "end"
	SeriesDuration         = "duration"
	SeriesDurationAccum    = "durationaccum"
	SeriesDelta            = "delta"
	SeriesDeltaAccum       = "deltaaccum"
	SeriesDeltaMinusMedian = "deltaminusmedian"
)

type PaceCommand struct {
	SharedArgs
	FormatArgs

	// Analysis args
	Marker string
	Series string
}

var _ AnalysisCommand = (*PaceCommand)(nil)

func (pc *PaceCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Analyze iteration pace per rank.

One row is printed per (rank, iteration) with the value of the selected
series.  Delta-based series have no value for a rank's last iteration,
so those rows are omitted.  The deltaminusmedian series aligns the ranks
on their common minimum iteration count before taking the cross-rank
median.
`)
}

func (pc *PaceCommand) Add(fs *CLI) {
	pc.SharedArgs.Add(fs)
	pc.FormatArgs.Add(fs)
	fs.Group("analysis")
	fs.StringVar(&pc.Marker, "marker", "",
		"Delineate iterations by instances of this `operation` instead of the recorded markers\n"+
			"[default: none]")
	fs.StringVar(&pc.Series, "series", "",
		"Select the reported `series`: start, end, duration, durationaccum, delta, deltaaccum,\n"+
			"or deltaminusmedian [default: delta]")
}

func (pc *PaceCommand) ReifyForRemote(x *Reifier) error {
	x.String("marker", pc.Marker)
	x.String("series", pc.Series)
	return errors.Join(
		pc.SharedArgs.ReifyForRemote(x),
		pc.FormatArgs.ReifyForRemote(x),
	)
}

func (pc *PaceCommand) Validate() error {
	var e1 error
	if pc.Marker == "" {
		ApplyDefault(&pc.Marker, AnalysisMarker)
	}
	switch pc.Series {
	case "":
		pc.Series = SeriesDelta
	case SeriesStart, SeriesEnd, SeriesDuration, SeriesDurationAccum,
		SeriesDelta, SeriesDeltaAccum, SeriesDeltaMinusMedian:
		// ok
	default:
		e1 = fmt.Errorf("Unknown -series %s", pc.Series)
	}
	return errors.Join(
		pc.SharedArgs.Validate(),
		pc.FormatArgs.Validate(),
		e1,
	)
}
