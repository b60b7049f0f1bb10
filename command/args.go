package command

import (
	"errors"
	"path"
	"strings"

	. "tracelyze/common"
)

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// DevArgs are for development and their inclusion can be controlled with the devArgs setting,
// below.

type DevArgs struct {
	CpuProfile string
}

const devArgs = true

func (d *DevArgs) CpuProfileFile() string {
	return d.CpuProfile
}

func (d *DevArgs) Add(fs *CLI) {
	if devArgs {
		fs.Group("development")
		fs.StringVar(&d.CpuProfile, "cpuprofile", "",
			"(Development) write cpu profile to `filename`")
	}
}

func (d *DevArgs) ReifyForRemote(x *Reifier) error {
	if d.CpuProfile != "" {
		return errors.New("-cpuprofile not allowed with remote execution")
	}
	return nil
}

func (d *DevArgs) Validate() error {
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// You wouldn't think -v would be so complicated.

type VerboseArgs struct {
	Verbose bool
}

func (va *VerboseArgs) Add(fs *CLI) {
	fs.Group("development")
	fs.BoolVar(&va.Verbose, "v", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&va.Verbose, "verbose", false, "Print verbose diagnostics to stderr")
}

func (va *VerboseArgs) Validate() error {
	return nil
}

func (va *VerboseArgs) VerboseFlag() bool {
	return va.Verbose
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// RemotingArgs pertain to specifying a remote tracelyze service.  Note that the meaning of the
// -auth-file depends on the operation: for `add` it would normally be `run:run-password` pairs,
// not `user:password`.

type RemotingArgs struct {
	Remote   string
	AuthFile string

	Remoting bool
}

func (ra *RemotingArgs) Add(fs *CLI) {
	fs.Group("remote-data-source")
	fs.StringVar(&ra.Remote, "remote", "",
		"Select a remote `url` to serve the query [default: none].  Requires -run.")
	fs.StringVar(&ra.AuthFile, "auth-file", "",
		"Provide a `file` with username:password [default: none].  For use with -remote.")
}

func (ra *RemotingArgs) Validate() error {
	if ra.Remote != "" {
		ra.Remoting = true
	}
	return nil
}

func (ra *RemotingArgs) RemotingFlags() *RemotingArgs {
	return ra
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// SourceArgs pertain to locating the trace data.  There are three sources: a local trace
// directory (-data-dir or a trailing directory argument), a Postgres database holding ingested
// runs (-pg-uri with -run), and a remote tracelyze daemon (-remote with -run).  Unset values are
// filled in from ~/.tracelyze before consistency checking.

type SourceArgs struct {
	RemotingArgs
	DataDir string
	PgURI   string
	Run     string

	restDirs []string
}

func (s *SourceArgs) Add(fs *CLI) {
	s.RemotingArgs.Add(fs)
	fs.Group("remote-data-source")
	fs.StringVar(&s.Run, "run", "",
		"Select the trace `run` to analyze [default: none].  For use with -remote and -pg-uri.")
	fs.Group("local-data-source")
	fs.StringVar(&s.DataDir, "data-dir", "",
		"Select the trace `directory` to analyze [default: from ~/.tracelyze]")
	fs.StringVar(&s.PgURI, "pg-uri", "",
		"Select a Postgres database `uri` holding ingested runs [default: none].  Requires -run.")
}

func (s *SourceArgs) ReifyForRemote(x *Reifier) error {
	// Validate() has already checked that DataDir, PgURI, Remote, Run, and AuthFile are consistent
	// for remote or local execution; only Run is forwarded.
	x.String("run", s.Run)
	return nil
}

func (s *SourceArgs) SetRestArguments(args []string) {
	s.restDirs = args
}

func (s *SourceArgs) Validate() error {
	if err := s.RemotingArgs.Validate(); err != nil {
		return err
	}

	if len(s.restDirs) > 0 {
		if len(s.restDirs) > 1 {
			return errors.New("Only one trailing trace directory is allowed")
		}
		if s.DataDir != "" {
			return errors.New("Both -data-dir and a trailing trace directory")
		}
		s.DataDir = s.restDirs[0]
	}

	if s.Remoting {
		// An explicit local source contradicts -remote; file defaults are not applied, so any
		// nonempty value here came from the command line.
		if s.DataDir != "" {
			return errors.New("-data-dir may not be used with -remote")
		}
		if s.PgURI != "" {
			return errors.New("-pg-uri may not be used with -remote")
		}
		ApplyDefault(&s.Run, DataSourceRun)
		ApplyDefault(&s.AuthFile, DataSourceAuthFile)
		if s.Run == "" {
			return errors.New("-remote requires -run")
		}
		return nil
	}

	if s.DataDir == "" && s.PgURI == "" {
		// Nothing explicit, so fall back to the defaults file, preferring a remote source if one
		// is configured there.
		if ApplyDefault(&s.Remote, DataSourceRemote) {
			ApplyDefault(&s.AuthFile, DataSourceAuthFile)
			ApplyDefault(&s.Run, DataSourceRun)
			if s.Run == "" {
				return errors.New("Defaulted remote source requires a run name")
			}
			s.Remoting = true
			return nil
		}
		if !ApplyDefault(&s.PgURI, DataSourcePgURI) {
			ApplyDefault(&s.DataDir, DataSourceDataDir)
		}
	}

	if s.DataDir != "" && s.PgURI != "" {
		return errors.New("-data-dir and -pg-uri are mutually exclusive")
	}
	if s.PgURI != "" {
		ApplyDefault(&s.Run, DataSourceRun)
		if s.Run == "" {
			return errors.New("-pg-uri requires -run")
		}
		return nil
	}
	if s.DataDir == "" {
		return errors.New("Required -data-dir, -pg-uri or -remote")
	}
	s.DataDir = path.Clean(s.DataDir)
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Shared by all the analysis commands.

type SharedArgs struct {
	DevArgs
	SourceArgs
	VerboseArgs
}

func (sa *SharedArgs) SharedFlags() *SharedArgs {
	return sa
}

func (s *SharedArgs) Add(fs *CLI) {
	s.DevArgs.Add(fs)
	s.SourceArgs.Add(fs)
	s.VerboseArgs.Add(fs)
}

func (s *SharedArgs) ReifyForRemote(x *Reifier) error {
	// We don't forward s.Verbose, it's mostly useful locally.
	return errors.Join(
		s.DevArgs.ReifyForRemote(x),
		s.SourceArgs.ReifyForRemote(x),
	)
}

func (s *SharedArgs) Validate() error {
	return errors.Join(
		s.DevArgs.Validate(),
		s.SourceArgs.Validate(),
		s.VerboseArgs.Validate(),
	)
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// FormatArgs are shared by all the printing commands.

type FormatArgs struct {
	Fmt string
}

func (fa *FormatArgs) Add(fs *CLI) {
	fs.Group("printing")
	fs.StringVar(&fa.Fmt, "fmt", "",
		"Select `fields` and format for the output [default: try -fmt=help]")
}

func (fa *FormatArgs) ReifyForRemote(x *Reifier) error {
	x.String("fmt", fa.Fmt)
	return nil
}

func (fa *FormatArgs) Validate() error {
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Repeatable arguments.

type RepeatableString struct {
	xs *[]string
}

func NewRepeatableString(xs *[]string) *RepeatableString {
	return &RepeatableString{xs}
}

func (rs *RepeatableString) String() string {
	if rs == nil || rs.xs == nil {
		return ""
	}
	return strings.Join(*rs.xs, ",")
}

func (rs *RepeatableString) Set(s string) error {
	// Values with embedded commas are legal (operation names can contain them), so no
	// comma-splitting here.
	if *rs.xs == nil {
		*rs.xs = []string{s}
	} else {
		*rs.xs = append(*rs.xs, s)
	}
	return nil
}
