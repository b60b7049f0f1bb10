package utilmap

import (
	"errors"
	"io"
	"reflect"

	. "tracelyze/table"
)

type UtilReport struct {
	Rank            int     `alias:"rank" desc:"Rank that produced the trace"`
	Device          int     `alias:"device" desc:"GPU device ordinal within the rank"`
	Start           int64   `alias:"start" desc:"Start of the low-utilization region (ns)"`
	End             int64   `alias:"end" desc:"End of the low-utilization region (ns)"`
	Duration        int64   `alias:"duration" desc:"Duration of the region (ns)"`
	WeightedPercent float64 `alias:"util" desc:"Duration-weighted time utilization of the region (percent)"`
}

// MT: Constant after initialization; immutable
var utilmapFormatters = DefineTableFromTags(reflect.TypeFor[UtilReport](), nil)

// MT: Constant after initialization; immutable
var utilmapAliases = map[string][]string{
	"default": []string{"rank", "device", "start", "end", "duration", "util"},
	"Default": []string{"Rank", "Device", "Start", "End", "Duration", "WeightedPercent"},
}

const utilmapDefaultFields = "default"

const utilmapHelp = `
utilmap
  Chunk each device's profiled span, compute per-chunk GPU time utilization,
  and print coalesced regions whose utilization is below the threshold.
  Default output format is 'fixed'.
`

func (uc *UtilmapCommand) MaybeFormatHelp() *FormatHelp {
	return StandardFormatHelp(uc.Fmt, utilmapHelp, utilmapFormatters, utilmapAliases, utilmapDefaultFields)
}

func (uc *UtilmapCommand) printReports(out io.Writer, reports []*UtilReport) error {
	fields, others, err := ParseFormatSpec(utilmapDefaultFields, uc.Fmt, utilmapFormatters, utilmapAliases)
	if err == nil && len(fields) == 0 {
		err = errors.New("No valid output fields were selected in format string")
	}
	if err != nil {
		return err
	}
	opts := StandardFormatOptions(others, DefaultFixed)
	data := make([]any, len(reports))
	for i, r := range reports {
		data[i] = r
	}
	FormatData(out, fields, utilmapFormatters, opts, data)
	return nil
}
