// The "add" command appends trace rows to a run.  It reads a complete CSV table, header
// included, from a provided stream.  This command is remotable.
//
// Major operations:
//
//  add -intervals
//    Append operation intervals.
//
//  add -markers
//    Append iteration markers.
//
//  add -samples
//    Append metric samples.
//
//  add -files
//    Append rank-to-file associations.

package add

import (
	"errors"
	"fmt"
	"io"

	. "tracelyze/command"
	"tracelyze/common"
	"tracelyze/db"
)

type AddCommand struct {
	DevArgs
	VerboseArgs
	SourceArgs
	Intervals bool
	Markers   bool
	Samples   bool
	Files     bool
}

var _ RemotableCommand = (*AddCommand)(nil)

func (ac *AddCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Append trace rows to a run.

Data are read from stdin as a complete CSV table with a header line; the
table is implied by exactly one of -intervals, -markers, -samples or
-files.  The payload is validated in full before anything is written.
`)
}

func (ac *AddCommand) Add(fs *CLI) {
	ac.DevArgs.Add(fs)
	ac.VerboseArgs.Add(fs)
	ac.SourceArgs.Add(fs)
	fs.Group("operation-selection")
	fs.BoolVar(&ac.Intervals, "intervals", false, "Append operation intervals from stdin")
	fs.BoolVar(&ac.Markers, "markers", false, "Append iteration markers from stdin")
	fs.BoolVar(&ac.Samples, "samples", false, "Append metric samples from stdin")
	fs.BoolVar(&ac.Files, "files", false, "Append rank-file associations from stdin")
}

func (ac *AddCommand) Validate() error {
	var e1 error
	count := 0
	for _, b := range []bool{ac.Intervals, ac.Markers, ac.Samples, ac.Files} {
		if b {
			count++
		}
	}
	if count != 1 {
		e1 = errors.New("Exactly one of -intervals, -markers, -samples or -files must be requested")
	}
	var e2 error
	err := ac.SourceArgs.Validate()
	switch {
	case err != nil:
		e2 = err
	case ac.PgURI != "":
		e2 = errors.New("add writes to a trace directory, -pg-uri is not supported")
	}
	return errors.Join(
		ac.DevArgs.Validate(),
		ac.VerboseArgs.Validate(),
		e1,
		e2,
	)
}

func (ac *AddCommand) ReifyForRemote(x *Reifier) error {
	// VerboseArgs and the local parts of SourceArgs aren't used in remoting and all error
	// checking has already been performed.
	x.String("run", ac.Run)
	x.Bool("intervals", ac.Intervals)
	x.Bool("markers", ac.Markers)
	x.Bool("samples", ac.Samples)
	x.Bool("files", ac.Files)
	return ac.DevArgs.ReifyForRemote(x)
}

func (ac *AddCommand) table() db.TableKind {
	switch {
	case ac.Intervals:
		return db.TableIntervals
	case ac.Markers:
		return db.TableMarkers
	case ac.Samples:
		return db.TableSamples
	case ac.Files:
		return db.TableRankFiles
	default:
		panic("Unexpected")
	}
}

func (ac *AddCommand) AddData(stdin io.Reader, _, _ io.Writer) error {
	payload, err := io.ReadAll(stdin)
	if err != nil {
		return err
	}
	if ac.Verbose {
		common.Log.Infof("%s payload %d bytes", ac.table(), len(payload))
	}
	store, err := db.OpenTraceDir(ac.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.AppendRows(ac.table(), payload)
}
