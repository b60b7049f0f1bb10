// When adding a new command to the daemon, several points in this file have to be updated:
//
// - a new handler has to be installed in RunDaemon()
// - any special argument construction has to be created in httpGetHandler() or httpAddHandler()
// - any local-only arguments that should never be forwarded need to be added to the blacklist
//   in argOk()

package daemon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/syslog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"tracelyze/auth"
	. "tracelyze/command"
	. "tracelyze/common"
	"tracelyze/httpsrv"
)

// Note, this should *NOT* be called Perform(), so that we can be sure we're not confusing a
// DaemonCommand with a PrimitiveCommand.

func (dc *DaemonCommand) RunDaemon(_ io.Reader, _, stderr io.Writer) error {
	logger, err := syslog.Dial("", "", syslog.LOG_INFO|syslog.LOG_USER, logTag)
	if err != nil {
		return fmt.Errorf("FATAL ERROR: Failing to open logger: %v", err)
	}
	Log.SetUnderlying(logger)

	// Note "daemon" is not a command here
	http.HandleFunc("/add", httpAddHandler(dc))
	http.HandleFunc("/utilmap", httpGetHandler(dc, "utilmap"))
	http.HandleFunc("/stats", httpGetHandler(dc, "stats"))
	http.HandleFunc("/pace", httpGetHandler(dc, "pace"))
	http.HandleFunc("/parse", httpGetHandler(dc, "parse"))

	stopKafka := dc.startKafkaConsumers()

	var programFailed bool
	s := httpsrv.New(dc.Verbose, int(dc.port), func(err error) {
		programFailed = true
	})
	go s.Start()

	// Wait here until we're stopped by SIGHUP (manual) or SIGTERM (from OS during shutdown).
	//
	// TODO: IMPROVEME: For SIGHUP, we should not exit but should instead reread the password
	// files.
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGHUP, syscall.SIGTERM)
	<-stopSignal
	if stopKafka != nil {
		stopKafka()
	}
	s.Stop()

	if programFailed {
		return errors.New("HTTP server failed to start, or errored out")
	}
	return nil
}

// HTTP handlers
//
// Documented behavior: the server will close the request body, we don't need to do it.
//
// I can find no documentation about needing to consume the body in case of an early (error)
// return, nor anything obvious in the net/http source code to indicate this, nor has google
// turned up anything.  So request handler code assumes it's not necessary.

func httpGetHandler(
	dc *DaemonCommand,
	command string,
) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, runName, ok :=
			requestPreamble(dc, w, r, "GET", dc.getAuthenticator, authRealm, "")
		if !ok {
			return
		}

		verb := command
		arguments := []string{"--data-dir", path.Join(dc.dataRoot, runName)}

		for name, vs := range r.URL.Query() {
			if name == "run" {
				continue
			}

			if !argOk(name) {
				w.WriteHeader(400)
				fmt.Fprintf(w, "Bad parameter %s", name)
				if dc.Verbose {
					Log.Warningf("Bad parameter %s", name)
				}
				return
			}

			// Repeats are OK, the commands allow them in a number of cases.
			//
			// Go requires "=" between parameter and name for boolean params, but allows it for
			// every type, so do it uniformly.
			for _, v := range vs {
				arguments = append(arguments, "--"+name+"="+v)
			}
		}

		stdout, ok := runTracelyze(dc, w, verb, arguments, []byte{})
		if !ok {
			return
		}

		w.WriteHeader(200)
		fmt.Fprint(w, stdout)
	}
}

func parseAddQuery(query url.Values, name string) (isSet bool, err error) {
	vs, isName := query[name]
	if !isName {
		return
	}
	if len(vs) == 1 {
		switch vs[0] {
		case "true":
			isSet = true
			return
		case "false":
			return
		}
	}
	err = fmt.Errorf("Bad `%s` parameter", name)
	return
}

func httpAddHandler(dc *DaemonCommand) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var es []error
		table := ""
		n := 0
		for _, name := range []string{"intervals", "markers", "samples", "files"} {
			isSet, err := parseAddQuery(query, name)
			es = append(es, err)
			if isSet {
				table = name
				n++
			}
		}
		if n != 1 {
			es = append(es,
				errors.New("Need exactly one of `-intervals`, `-markers`, `-samples`, or `-files`"))
		}
		if err := errors.Join(es...); err != nil {
			w.WriteHeader(400)
			fmt.Fprintf(w, "Bad operation: %s", err.Error())
			if dc.Verbose {
				Log.Warningf("Bad operation: %s", err.Error())
			}
			return
		}

		payload, userName, runName, ok :=
			requestPreamble(dc, w, r, "POST", dc.postAuthenticator, "", "text/csv")
		if !ok {
			return
		}

		if dc.matchUserAndRun && userName != "" && runName != userName {
			w.WriteHeader(400)
			fmt.Fprintf(w, "Upload not authorized")
			if dc.Verbose {
				Log.Warningf("Upload not authorized")
			}
			return
		}

		arguments := []string{
			"--" + table,
			"--data-dir",
			path.Join(dc.dataRoot, runName),
		}

		stdout, ok := runTracelyze(dc, w, "add", arguments, payload)
		if !ok {
			return
		}

		w.WriteHeader(200)
		fmt.Fprint(w, stdout)
	}
}

func requestPreamble(
	dc *DaemonCommand,
	w http.ResponseWriter,
	r *http.Request,
	method string,
	authenticator *auth.Authenticator,
	realm string,
	contentType string,
) (payload []byte, userName, runName string, ok bool) {
	if dc.Verbose {
		// Header reveals auth info, don't put it into logs
		Log.Infof("Request from %s: %v", r.RemoteAddr, r.URL.String())
	}

	if !httpsrv.AssertMethod(w, r, method, dc.Verbose) {
		return
	}

	authOk, userName := httpsrv.Authenticate(w, r, authenticator, realm, dc.Verbose)
	if !authOk {
		return
	}

	payload, havePayload := httpsrv.ReadPayload(w, r, dc.Verbose)
	if !havePayload {
		return
	}

	if contentType != "" {
		if !httpsrv.AssertContentType(w, r, contentType, dc.Verbose) {
			return
		}
	}

	runValues, found := r.URL.Query()["run"]
	if !found || len(runValues) != 1 || runValues[0] == "" {
		w.WriteHeader(400)
		fmt.Fprintf(w, "Bad parameters - missing or empty or repeated 'run'")
		if dc.Verbose {
			Log.Warningf("Bad parameters - missing or empty or repeated 'run'")
		}
		return
	}

	// The run name becomes a path component under the data root, keep it simple.
	runName = runValues[0]
	if strings.ContainsAny(runName, "/\\") || strings.Contains(runName, "..") {
		w.WriteHeader(400)
		fmt.Fprintf(w, "Bad parameters - illegal 'run'")
		if dc.Verbose {
			Log.Warningf("Bad parameters - illegal 'run'")
		}
		return
	}

	ok = true
	return
}

func runTracelyze(
	dc *DaemonCommand,
	w http.ResponseWriter,
	verb string,
	arguments []string,
	input []byte,
) (stdout string, ok bool) {
	cmdName := "<tracelyze>"

	// Run the command and report the result

	if dc.Verbose {
		Log.Infof("Command: %s %s", cmdName, verb+" "+strings.Join(arguments, " "))
	}

	anyCmd, _ := dc.cmdlineHandler.ParseVerb(cmdName, verb)
	if anyCmd == nil {
		errResponse(w, 400, fmt.Errorf("Bad verb in daemon-dispatched command: %s", verb), "", dc.Verbose)
		return
	}
	fs := NewCLI(verb, anyCmd, cmdName, false)
	err := dc.cmdlineHandler.ParseArgs(verb, arguments, anyCmd, fs)
	if err != nil {
		errResponse(w, 400, err, "", dc.Verbose)
		return
	}

	// The -cpuprofile option is ignored here, it should have forced ParseArgs to error out.

	var stdoutBuf, stderrBuf strings.Builder
	err = dc.cmdlineHandler.HandleCommand(anyCmd, bytes.NewReader(input), &stdoutBuf, &stderrBuf)
	stdout = stdoutBuf.String()
	stderr := stderrBuf.String()
	if err != nil {
		errResponse(w, 400, err, stderr, dc.Verbose)
		return
	}
	if stderr != "" {
		Log.Warningf(stderr, "")
	}

	ok = true
	return
}

func errResponse(w http.ResponseWriter, code int, err error, stderr string, verbose bool) {
	w.WriteHeader(code)
	fmt.Fprint(w, err.Error())
	if stderr != "" {
		fmt.Fprint(w, "\n", stderr)
	}
	if verbose {
		Log.Warningf("ERROR: %v", err)
	}
}

// Disallow argument names that are malformed or are specific values.  This is not fabulous but
// maintaining a whitelist is a lot of work.

func argOk(arg string) bool {
	// Args are alphabetic and lower-case only, except - is allowed except in the first position
	for i, c := range arg {
		switch {
		case c >= 'a' && c <= 'z':
			// OK
		case c == '-' && i > 0:
			// OK
		default:
			return false
		}
	}

	// Disallow short options (pretty primitive)
	if len(arg) <= 1 {
		return false
	}

	// Specific names are excluded, the names in the comments relate to structure names in
	// command/args.go.
	switch arg {
	case "cpuprofile":
		// DevArgs
		return false
	case "data-dir", "pg-uri", "remote", "auth-file":
		// SourceArgs
		return false
	case "verbose", "v":
		// VerboseArgs
		return false
	default:
		return true
	}
}
