package stats

import (
	"cmp"
	"io"
	"slices"

	"tracelyze/db"
	"tracelyze/quant"
)

func (sc *StatsCommand) Perform(out io.Writer, store db.TraceStore) error {
	samples, err := store.ReadMetricSamples()
	if err != nil {
		return err
	}
	if len(sc.Metric) > 0 {
		samples = slices.DeleteFunc(slices.Clone(samples), func(s *db.MetricSample) bool {
			return !slices.Contains(sc.Metric, s.Op)
		})
	}

	perRank := rankStats(samples)
	if sc.Cross {
		return sc.printCross(out, crossStats(perRank))
	}
	return sc.printRanks(out, perRank)
}

// rankStats summarizes the samples per (rank, metric), ordered by rank then metric.  Pairs with
// no samples simply do not appear; there are no sentinel rows.

func rankStats(samples []*db.MetricSample) []*RankStat {
	type key struct {
		rank int
		op   string
	}
	values := make(map[key][]float64)
	for _, s := range samples {
		k := key{s.Rank, s.Op}
		values[k] = append(values[k], s.Value)
	}
	stats := make([]*RankStat, 0, len(values))
	for k, vs := range values {
		summary, ok := quant.Summarize(vs)
		if !ok {
			continue
		}
		stats = append(stats, &RankStat{
			Rank:    k.rank,
			Op:      k.op,
			Samples: len(vs),
			Q1:      summary.Q1,
			Median:  summary.Median,
			Q3:      summary.Q3,
		})
	}
	slices.SortFunc(stats, func(a, b *RankStat) int {
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		return cmp.Compare(a.Op, b.Op)
	})
	return stats
}

// crossStats combines the per-rank summaries per metric, ordered by metric.  Only ranks that
// contributed samples for a metric take part in that metric's aggregate.

func crossStats(perRank []*RankStat) []*CrossStat {
	byOp := make(map[string][]quant.Summary)
	for _, rs := range perRank {
		byOp[rs.Op] = append(byOp[rs.Op], quant.Summary{Q1: rs.Q1, Median: rs.Median, Q3: rs.Q3})
	}
	stats := make([]*CrossStat, 0, len(byOp))
	for op, summaries := range byOp {
		combined, ok := quant.CrossRank(summaries)
		if !ok {
			continue
		}
		stats = append(stats, &CrossStat{
			Op:     op,
			Ranks:  len(summaries),
			Q1:     combined.Q1,
			Median: combined.Median,
			Q3:     combined.Q3,
		})
	}
	slices.SortFunc(stats, func(a, b *CrossStat) int {
		return cmp.Compare(a.Op, b.Op)
	})
	return stats
}
