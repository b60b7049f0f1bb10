package command

import (
	"io"

	"tracelyze/db"
	"tracelyze/table"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Interfaces that the various commands can implement to respond to various situations.

type FormatHelpAPI interface {
	// If the command accepts a -fmt argument and the value of that argument is "help", return a
	// non-nil object here with formatter help.
	MaybeFormatHelp() *table.FormatHelp
}

type SetRestArgumentsAPI interface {
	// Install any left-over arguments into the arguments object
	SetRestArguments(args []string)
}

var _ = SetRestArgumentsAPI((*SourceArgs)(nil))

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Any command of any type must be able to define and validate command line args, and handle some
// developer arguments.

type Command interface {
	// Return the name of the cpu profile file, if requested
	CpuProfileFile() string

	// Documentation, with formatting and line breaks
	Summary(out io.Writer)

	// Add all arguments including shared arguments
	Add(fs *CLI)

	// Validate all arguments including shared arguments
	Validate() error

	// The -v flag
	VerboseFlag() bool
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Represents a command that can be forwarded to a remote tracelyze daemon.

type RemotableCommand interface {
	Command

	// Reify all arguments including shared arguments for remote execution, with checking
	ReifyForRemote(x *Reifier) error

	// Retrieve remoting arguments
	RemotingFlags() *RemotingArgs
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Represents a simple command that handles its own logic completely, on no trace data.

type PrimitiveCommand interface {
	Command

	Perform(in io.Reader, stdout, stderr io.Writer) error
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Represents a tracelyze analysis command: utilmap, stats, pace, parse.  These run against an
// opened trace store.

type AnalysisCommand interface {
	RemotableCommand
	FormatHelpAPI

	// Retrieve shared arguments
	SharedFlags() *SharedArgs

	// Perform the operation against the data in the store
	Perform(out io.Writer, store db.TraceStore) error
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// This is a container for behavior.  There are two of these: one for the one-shot behavior and
// one for the daemon behavior.  CommandLineHandler is a hack that's really only necessary to deal
// with Go's prohibition against circular package dependencies: the daemon code calls indirect
// back up to the application level, which can then call down to the engine again.

type CommandLineHandler struct {
	// Translate `maybeVerb` into a Command and return a normalized verb.  If the translation failed
	// then `cmd` will be nil and `verb` will be "".  The `cmdName` is the name of the program
	// (argv[0]).
	ParseVerb func(cmdName, maybeVerb string) (cmd Command, verb string)

	// Given a verb and command returned from ParseVerb, and a list of arguments and an empty but
	// otherwise initialized flag set, set up argument parsing, perform it, and validate the result.
	ParseArgs func(verb string, args []string, cmd Command, fs *CLI) error

	// The `profileFile` should be the cpu profile file name in the DevArgs structure.  If not
	// empty, this will start the profiler and return a stop function to be deferred until the end
	// of the program.
	StartCPUProfile func(profileFile string) (func(), error)

	// Given a command initialized with parsed commands, and i/o streams, run the command.
	HandleCommand func(anyCmd Command, stdin io.Reader, stdout, stderr io.Writer) error
}
