// Handle local data analysis commands

package main

import (
	"fmt"
	"io"

	. "tracelyze/command"
	"tracelyze/db"
)

func localAnalysis(cmd AnalysisCommand, _ io.Reader, stdout, _ io.Writer) error {
	args := cmd.SharedFlags()

	var store db.TraceStore
	var err error
	if args.PgURI != "" {
		store, err = db.OpenPostgresStore(args.PgURI, args.Run)
	} else {
		store, err = db.OpenTraceDir(args.DataDir)
	}
	if err != nil {
		return fmt.Errorf("Failed to open trace store\n%w", err)
	}
	defer store.Close()

	err = cmd.Perform(stdout, store)
	if err != nil {
		return fmt.Errorf("Failed to perform operation\n%w", err)
	}

	return nil
}
