// `tracelyze daemon` - HTTP server that runs tracelyze on behalf of a remote client
//
// This server responds to GET and POST requests carrying parameters that specify how to run
// tracelyze against a local data store.  The path for analysis commands is the tracelyze command
// name, eg, `GET /utilmap?...` will run `tracelyze utilmap`.  The path for add commands is
// `POST /add?...` with a parameter naming the table, eg `POST /add?intervals=true&run=r1` will
// run `tracelyze add -intervals`.
//
// A query parameter `run=runName` is required for all requests, it names the run we're operating
// on and determines the trace directory under the data root.
//
// Other parameter names are always the long parameter names for tracelyze and the parameter
// values are always urlencoded as necessary.  Most parameters and names are forwarded to
// tracelyze, with --data-dir supplied by this code.  The returned output is the raw output from
// tracelyze, whether for success or error.  A successful run yields 2xx and an error yields 4xx
// or 5xx.
//
// Arguments:
//
// -data-dir <directory>
//
//  This is a required argument.  The named directory shall have one subdirectory per run, each
//  subdirectory holding the run's trace tables.
//
// -port <port-number>
//
//  This is an optional argument.  It is the port number on which to listen, the default is 8087.
//
// -analysis-auth <filename>
//
//  This is an optional argument.  It names a file with username:password pairs, one per line, to
//  be matched with values in an incoming HTTP basic authentication header for a GET operation.
//  (Note, if the connection is not HTTPS then the password may have been intercepted in transit.)
//
// -upload-auth <filename>
//
//  This is an optional but *strongly* recommended argument.  If provided then the file named must
//  provide username:password combinations, to be matched with one in an HTTP basic
//  authentication header.
//
// -match-user-and-run
//
//  Optional but *strongly* recommended argument.  If set, and -upload-auth is also provided, then
//  the user name provided by the HTTP connection must match the run name in the query string.
//  The effect is to make it possible for each collector to have its own username:password pair
//  and for one collector not to be able to upload data for another's run.
//
// -kafka-broker <host:port>, -kafka-run <run-name>
//
//  Optional.  If both are given then the daemon also ingests trace rows from the Kafka broker,
//  one consumer per named run (-kafka-run is repeatable), from the topics `<run>.intervals`,
//  `<run>.markers`, `<run>.samples` and `<run>.files`.  Record values are complete CSV tables.
//
// Termination:
//
//  Sending SIGHUP or SIGTERM to `tracelyze daemon` will shut it down in an orderly manner.
//
//  The daemon is usually run in the background and exit codes are not easily examined, but when
//  the daemon exits it will deliver a non-zero exit code if an error was discovered during
//  startup or shutdown.
//
// Logging:
//
//  The daemon logs everything to the syslog with the tag defined below ("logTag").  Errors
//  encountered during startup are also logged to stderr.

package daemon

import (
	"errors"
	"fmt"
	"io"
	"os"

	"tracelyze/auth"
	. "tracelyze/command"
)

const (
	defaultListenPort = 8087
	logTag            = "tracelyze"
	authRealm         = "Tracelyze remote access"
)

// Immutable (no mutator operations) and thread-safe.  It *will* be accessed concurrently b/c
// every HTTP handler runs as a separate goroutine.
type DaemonCommand struct {
	DevArgs
	VerboseArgs
	dataRoot        string
	port            uint
	getAuthFile     string
	postAuthFile    string
	matchUserAndRun bool
	kafkaBroker     string
	kafkaRuns       []string

	getAuthenticator  *auth.Authenticator
	postAuthenticator *auth.Authenticator
	cmdlineHandler    CommandLineHandler
}

func New(cmdlineHandler CommandLineHandler) *DaemonCommand {
	dc := new(DaemonCommand)
	dc.cmdlineHandler = cmdlineHandler
	return dc
}

func (dc *DaemonCommand) Add(fs *CLI) {
	dc.DevArgs.Add(fs)
	dc.VerboseArgs.Add(fs)
	fs.Group("daemon-configuration")
	fs.StringVar(&dc.dataRoot, "data-dir", "",
		"Data root `directory` with one subdirectory per run (required)")
	fs.UintVar(&dc.port, "port", defaultListenPort, "Listen for connections on `port`")
	fs.StringVar(&dc.getAuthFile, "analysis-auth", "",
		"Authentication info `filename` for analysis access")
	fs.StringVar(&dc.postAuthFile, "upload-auth", "",
		"Authentication info `filename` for data upload access")
	fs.BoolVar(&dc.matchUserAndRun, "match-user-and-run", false,
		"Require user name to match run name for uploads")
	fs.StringVar(&dc.kafkaBroker, "kafka-broker", "",
		"Also ingest trace rows from this Kafka `broker` [default: none]")
	fs.Var(NewRepeatableString(&dc.kafkaRuns), "kafka-run",
		"Ingest Kafka topics for this `run` (repeatable) [default: none]")
}

func (dc *DaemonCommand) Summary(out io.Writer) {
	fmt.Fprint(out, `Run tracelyze as an HTTP server that responds to GET and POST for data
extraction and update.  See the comment block in daemon/daemon.go for
more information.
`)
}

func (dc *DaemonCommand) Validate() error {
	var e1, e2, e3, e4, e5, e6 error
	e1 = dc.DevArgs.Validate()
	e2 = dc.VerboseArgs.Validate()
	if dc.dataRoot == "" {
		e3 = errors.New("Required -data-dir argument is absent")
	} else if info, err := os.Stat(dc.dataRoot); err != nil || !info.IsDir() {
		e3 = fmt.Errorf("-data-dir %s does not name a directory", dc.dataRoot)
	}
	if dc.getAuthFile != "" {
		dc.getAuthenticator, e4 = auth.ReadPasswords(dc.getAuthFile)
		if e4 != nil {
			e4 = fmt.Errorf("Failed to read analysis authentication file %w", e4)
		}
	}
	if dc.postAuthFile != "" {
		dc.postAuthenticator, e5 = auth.ReadPasswords(dc.postAuthFile)
		if e5 != nil {
			e5 = fmt.Errorf("Failed to read upload authentication file %w", e5)
		}
	}
	if len(dc.kafkaRuns) > 0 && dc.kafkaBroker == "" {
		e6 = errors.New("-kafka-run requires -kafka-broker")
	}
	return errors.Join(e1, e2, e3, e4, e5, e6)
}
