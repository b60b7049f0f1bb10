// Defaults for command line arguments are read from $HOME/.tracelyze, an ini file with a
// [data-source] section for locating trace data and an [analysis] section for per-analysis
// knobs.  Command line arguments always win over file defaults.

package common

import (
	"errors"
	"os"
	"path"

	ini "github.com/lars-t-hansen/ini"
)

// MT: Constant after initialization
var (
	p     = ini.NewParser()
	store *ini.Store

	dataSource         = p.AddSection("data-source")
	DataSourceRemote   = dataSource.AddString("remote")
	DataSourceAuthFile = dataSource.AddString("auth-file")
	DataSourceRun      = dataSource.AddString("run")
	DataSourceDataDir  = dataSource.AddString("data-dir")
	DataSourcePgURI    = dataSource.AddString("pg-uri")

	analysis          = p.AddSection("analysis")
	AnalysisChunks    = analysis.AddString("chunks")
	AnalysisThreshold = analysis.AddString("threshold")
	AnalysisMarker    = analysis.AddString("marker")
)

func init() {
	home := os.Getenv("HOME")
	if home == "" {
		return
	}
	fn := path.Join(path.Clean(home), ".tracelyze")
	input, err := os.Open(fn)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Log.Errorf("Error in trying to open %s: %s", fn, err.Error())
		}
		return
	}
	defer input.Close()
	store, err = p.Parse(input)
	if err != nil {
		Log.Errorf("Error in trying to parse %s: %s", fn, err.Error())
		return
	}
}

func HasDefault(f *ini.Field) bool {
	return store != nil && f.Present(store)
}

func ApplyDefault(sp *string, f *ini.Field) bool {
	if *sp != "" || store == nil || !f.Present(store) {
		return false
	}
	*sp = os.ExpandEnv(f.StringVal(store))
	return true
}
