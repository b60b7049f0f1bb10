// The utilmap analysis locates stretches of low GPU time utilization.
//
// Each (rank, device) pair's profiled span is divided into a fixed number of equal chunks and the
// busy time of each chunk is the summed overlap of the device's operation intervals with the
// chunk.  Overlapping operations count separately, so a chunk's utilization can exceed 100%.
// Chunks strictly below the threshold are reported, with consecutive low chunks coalesced into a
// single region carrying the duration-weighted utilization.

package utilmap

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	. "tracelyze/command"
	. "tracelyze/common"
)

const (
	defaultChunks    = 30
	maxChunks        = 1000
	defaultThreshold = 50
)

type UtilmapCommand struct {
	SharedArgs
	FormatArgs

	// Analysis args
	Chunks    uint
	Threshold float64
}

var _ AnalysisCommand = (*UtilmapCommand)(nil)

func (uc *UtilmapCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Map low-utilization regions of the GPU timeline.

Each device's profiled span is chunked, per-chunk time utilization is
computed from the operation intervals, and consecutive chunks whose
utilization is strictly below the threshold are coalesced and printed.
`)
}

func (uc *UtilmapCommand) Add(fs *CLI) {
	uc.SharedArgs.Add(fs)
	uc.FormatArgs.Add(fs)
	fs.Group("analysis")
	fs.UintVar(&uc.Chunks, "chunks", 0,
		"Divide each device's span into `n` chunks, 1 to 1000 [default: 30]")
	fs.Float64Var(&uc.Threshold, "threshold", -1,
		"Report chunks with utilization strictly below `pct`, 0 to 100 [default: 50]")
}

func (uc *UtilmapCommand) ReifyForRemote(x *Reifier) error {
	// Validated values are always forwarded, defaults on the remote end must not reapply.
	x.UintUnchecked("chunks", uc.Chunks)
	x.Float64Unchecked("threshold", uc.Threshold)
	return errors.Join(
		uc.SharedArgs.ReifyForRemote(x),
		uc.FormatArgs.ReifyForRemote(x),
	)
}

func (uc *UtilmapCommand) Validate() error {
	var e1, e2 error
	if uc.Chunks == 0 {
		var s string
		if ApplyDefault(&s, AnalysisChunks) {
			n, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				e1 = fmt.Errorf("Bad chunks default %s in ~/.tracelyze", s)
			} else {
				uc.Chunks = uint(n)
			}
		} else {
			uc.Chunks = defaultChunks
		}
	}
	if e1 == nil && (uc.Chunks == 0 || uc.Chunks > maxChunks) {
		e1 = fmt.Errorf("-chunks must be between 1 and %d", maxChunks)
	}
	if uc.Threshold < 0 {
		var s string
		if ApplyDefault(&s, AnalysisThreshold) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				e2 = fmt.Errorf("Bad threshold default %s in ~/.tracelyze", s)
			} else {
				uc.Threshold = f
			}
		} else {
			uc.Threshold = defaultThreshold
		}
	}
	if e2 == nil && (uc.Threshold < 0 || uc.Threshold > 100) {
		e2 = errors.New("-threshold must be between 0 and 100")
	}
	return errors.Join(
		uc.SharedArgs.Validate(),
		uc.FormatArgs.Validate(),
		e1,
		e2,
	)
}
