// The parse verb exports the raw trace tables, after ingest-time validation, in any of the
// standard output formats.  This is mostly used for testing and for piping data into other
// tools.

package parse

import (
	"errors"
	"fmt"
	"io"

	. "tracelyze/command"
	"tracelyze/db"
)

type ParseCommand struct {
	SharedArgs
	FormatArgs

	Table string

	kind db.TableKind
}

var _ AnalysisCommand = (*ParseCommand)(nil)

func (pc *ParseCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Export raw trace data in various formats.

The -table argument selects which of the run's tables to export:
intervals, markers, samples, or files.
`)
}

func (pc *ParseCommand) Add(fs *CLI) {
	pc.SharedArgs.Add(fs)
	pc.FormatArgs.Add(fs)
	fs.Group("operation-selection")
	fs.StringVar(&pc.Table, "table", "intervals",
		"Select the `table` to export: intervals, markers, samples or files")
}

func (pc *ParseCommand) ReifyForRemote(x *Reifier) error {
	x.String("table", pc.Table)
	return errors.Join(
		pc.SharedArgs.ReifyForRemote(x),
		pc.FormatArgs.ReifyForRemote(x),
	)
}

func (pc *ParseCommand) Validate() error {
	var e1 error
	pc.kind, e1 = db.ParseTableKind(pc.Table)
	return errors.Join(
		pc.SharedArgs.Validate(),
		pc.FormatArgs.Validate(),
		e1,
	)
}

func (pc *ParseCommand) Perform(out io.Writer, store db.TraceStore) error {
	switch pc.kind {
	case db.TableIntervals:
		intervals, err := store.ReadOperationIntervals()
		if err != nil {
			return err
		}
		return pc.printIntervals(out, intervals)
	case db.TableMarkers:
		markers, err := store.ReadIterationMarkers()
		if err != nil {
			return err
		}
		return pc.printMarkers(out, markers)
	case db.TableSamples:
		samples, err := store.ReadMetricSamples()
		if err != nil {
			return err
		}
		return pc.printSamples(out, samples)
	case db.TableRankFiles:
		files, err := store.ReadRankFiles()
		if err != nil {
			return err
		}
		return pc.printFiles(out, files)
	default:
		panic("Unexpected table kind")
	}
}
