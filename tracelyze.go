// `tracelyze` -- Analyze GPU trace tables
//
// Run `tracelyze help` for brief help.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"tracelyze/add"
	. "tracelyze/command"
	"tracelyze/daemon"
	"tracelyze/pace"
	"tracelyze/parse"
	"tracelyze/stats"
	"tracelyze/table"
	"tracelyze/utilmap"
)

// v0.1.0 - initial version with utilmap, stats, pace, parse, add, daemon

const TracelyzeVersion = "0.1.0"

// The handler is wired up in init() to avoid an initialization cycle: the daemon command holds a
// copy so that it can dispatch parsed HTTP requests back into the normal command path.

var stdhandler CommandLineHandler

func init() {
	stdhandler = CommandLineHandler{
		ParseVerb:       parseVerb,
		ParseArgs:       parseArgs,
		StartCPUProfile: startCPUProfile,
		HandleCommand:   handleCommand,
	}
}

func main() {
	err := tracelyze()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func tracelyze() error {
	out := CLIOutput()

	if len(os.Args) < 2 {
		fmt.Fprintf(out, "Required operation missing, try `tracelyze help`\n")
		os.Exit(2)
	}

	maybeVerb := os.Args[1]
	switch maybeVerb {
	case "help", "-h":
		fmt.Fprintf(out, "Usage: %s command [options] [-- tracedir]\n", os.Args[0])
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  add      - add data to a trace directory\n")
		fmt.Fprintf(out, "  daemon   - run tracelyze as an HTTP server\n")
		fmt.Fprintf(out, "  pace     - print per-rank iteration pace information\n")
		fmt.Fprintf(out, "  parse    - parse, select and reformat trace tables\n")
		fmt.Fprintf(out, "  stats    - print metric statistics per rank or across ranks\n")
		fmt.Fprintf(out, "  utilmap  - print per-device time utilization across chunks\n")
		fmt.Fprintf(out, "  version  - print information about the program\n")
		fmt.Fprintf(out, "  help     - print this message\n")
		fmt.Fprintf(out, "Each command accepts -h to further explain options.\n")
		os.Exit(0)
	case "version":
		// Must print version on stdout.
		fmt.Printf("tracelyze version(%s)\n", TracelyzeVersion)
		os.Exit(0)
	}

	anyCmd, verb := stdhandler.ParseVerb(os.Args[0], maybeVerb)
	if anyCmd == nil {
		fmt.Fprintf(out, "Unknown operation `%s`, try `tracelyze help`\n", maybeVerb)
		os.Exit(2)
	}

	fs := NewCLI(verb, anyCmd, os.Args[0], true)
	if err := stdhandler.ParseArgs(verb, os.Args[2:], anyCmd, fs); err != nil {
		fmt.Fprintf(out, "Bad arguments, try -h\n%v\n", err.Error())
		os.Exit(2)
	}

	if anyCmd.CpuProfileFile() != "" {
		stop, err := stdhandler.StartCPUProfile(anyCmd.CpuProfileFile())
		if err != nil {
			return err
		}
		defer stop()
	}

	// Format help is local even for remotable commands.
	if formatHelp(anyCmd, os.Stdout) {
		return nil
	}

	if cmd, ok := anyCmd.(RemotableCommand); ok && cmd.RemotingFlags().Remoting {
		return remoteOperation(cmd, verb, os.Stdin, os.Stdout, os.Stderr)
	}

	return stdhandler.HandleCommand(anyCmd, os.Stdin, os.Stdout, os.Stderr)
}

func parseVerb(cmdName, maybeVerb string) (cmd Command, verb string) {
	switch maybeVerb {
	case "add":
		cmd = new(add.AddCommand)
	case "daemon":
		cmd = daemon.New(stdhandler)
	case "pace":
		cmd = new(pace.PaceCommand)
	case "parse":
		cmd = new(parse.ParseCommand)
	case "stats":
		cmd = new(stats.StatsCommand)
	case "utilmap":
		cmd = new(utilmap.UtilmapCommand)
	default:
		return nil, ""
	}
	verb = maybeVerb
	return
}

func parseArgs(verb string, args []string, cmd Command, fs *CLI) error {
	cmd.Add(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		if lfCmd, ok := cmd.(SetRestArgumentsAPI); ok {
			lfCmd.SetRestArguments(rest)
		} else {
			return fmt.Errorf("Rest arguments not accepted by `%s`", verb)
		}
	}

	// `-fmt help` must work without a valid data source, so skip validation in that case; the
	// command will only ever be asked to print its format help.
	if fhCmd, ok := cmd.(FormatHelpAPI); ok && fhCmd.MaybeFormatHelp() != nil {
		return nil
	}

	return cmd.Validate()
}

func startCPUProfile(profileFile string) (func(), error) {
	f, err := os.Create(profileFile)
	if err != nil {
		return nil, fmt.Errorf("Failed to create profile\n%w", err)
	}
	pprof.StartCPUProfile(f)
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func handleCommand(anyCmd Command, stdin io.Reader, stdout, stderr io.Writer) error {
	if formatHelp(anyCmd, stdout) {
		return nil
	}
	switch cmd := anyCmd.(type) {
	case AnalysisCommand:
		return localAnalysis(cmd, stdin, stdout, stderr)
	case *add.AddCommand:
		return cmd.AddData(stdin, stdout, stderr)
	case *daemon.DaemonCommand:
		return cmd.RunDaemon(stdin, stdout, stderr)
	case PrimitiveCommand:
		return cmd.Perform(stdin, stdout, stderr)
	default:
		return errors.New("NYI command")
	}
}

func formatHelp(anyCmd Command, stdout io.Writer) bool {
	if fhCmd, ok := anyCmd.(FormatHelpAPI); ok {
		if h := fhCmd.MaybeFormatHelp(); h != nil {
			table.PrintFormatHelp(stdout, h)
			return true
		}
	}
	return false
}
