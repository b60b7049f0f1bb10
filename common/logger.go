package common

import (
	"os"

	"tracelyze/status"
)

// MT: Constant after initialization; thread-safe
var Log status.Logger = status.Default()

func init() {
	if os.Getenv("TRACELYZE_DEBUG") != "" {
		Log.SetLevel(status.LogLevelInfo)
	}
}
