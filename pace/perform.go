package pace

import (
	"cmp"
	"io"
	"slices"

	"tracelyze/common"
	"tracelyze/db"
	"tracelyze/quant"
)

func (pc *PaceCommand) Perform(out io.Writer, store db.TraceStore) error {
	var markers []*db.IterationMarker
	var err error
	if pc.Marker != "" {
		var intervals []*db.OperationInterval
		intervals, err = store.ReadOperationIntervals()
		if err == nil {
			markers = deriveMarkers(intervals, pc.Marker)
		}
	} else {
		markers, err = store.ReadIterationMarkers()
	}
	if err != nil {
		return err
	}

	ranks := groupByRank(markers)
	if pc.Series == SeriesDeltaMinusMedian {
		return pc.printDelta(out, deltaMinusMedian(ranks))
	}
	return pc.printTime(out, timeSeries(ranks, pc.Series))
}

type rankMarkers struct {
	rank    int
	markers []*db.IterationMarker
}

// deriveMarkers synthesizes iteration markers from the instances of the named operation.  Within
// each rank the instances are numbered 0..n-1 in time order; the device is irrelevant, a named
// delineator is assumed to run once per iteration per rank.

func deriveMarkers(intervals []*db.OperationInterval, name string) []*db.IterationMarker {
	byRank := make(map[int][]*db.OperationInterval)
	for _, iv := range intervals {
		if iv.Kind == name {
			byRank[iv.Rank] = append(byRank[iv.Rank], iv)
		}
	}
	markers := make([]*db.IterationMarker, 0)
	ranks := make([]int, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	slices.Sort(ranks)
	for _, r := range ranks {
		ivs := byRank[r]
		slices.SortFunc(ivs, func(a, b *db.OperationInterval) int {
			if a.Start != b.Start {
				return cmp.Compare(a.Start, b.Start)
			}
			return cmp.Compare(a.End, b.End)
		})
		for i, iv := range ivs {
			markers = append(markers, &db.IterationMarker{
				Rank:  r,
				Iter:  i,
				Start: iv.Start,
				End:   iv.End,
			})
		}
	}
	return markers
}

// groupByRank partitions the markers by rank, ordered by rank; within a rank the input order,
// which is iteration order, is kept.

func groupByRank(markers []*db.IterationMarker) []*rankMarkers {
	m := make(map[int]*rankMarkers)
	for _, mk := range markers {
		g, found := m[mk.Rank]
		if !found {
			g = &rankMarkers{rank: mk.Rank}
			m[mk.Rank] = g
		}
		g.markers = append(g.markers, mk)
	}
	ranks := make([]*rankMarkers, 0, len(m))
	for _, g := range m {
		ranks = append(ranks, g)
	}
	slices.SortFunc(ranks, func(a, b *rankMarkers) int {
		return a.rank - b.rank
	})
	return ranks
}

// timeSeries computes the per-rank series that need no cross-rank data.  Delta-based series have
// one row fewer per rank than there are iterations.

func timeSeries(ranks []*rankMarkers, series string) []*PaceReport {
	rows := make([]*PaceReport, 0)
	for _, g := range ranks {
		var accum int64
		for i, mk := range g.markers {
			var value int64
			switch series {
			case SeriesStart:
				value = mk.Start
			case SeriesEnd:
				value = mk.End
			case SeriesDuration:
				value = mk.End - mk.Start
			case SeriesDurationAccum:
				accum += mk.End - mk.Start
				value = accum
			case SeriesDelta, SeriesDeltaAccum:
				if i+1 == len(g.markers) {
					continue
				}
				value = g.markers[i+1].Start - mk.Start
				if series == SeriesDeltaAccum {
					accum += value
					value = accum
				}
			default:
				panic("Unexpected series")
			}
			rows = append(rows, &PaceReport{Rank: g.rank, Iter: mk.Iter, Value: value})
		}
	}
	return rows
}

// deltaMinusMedian reports each rank's start-to-start delta relative to the cross-rank median
// delta at the same iteration position.  The ranks are aligned on the common minimum iteration
// count; ranks with more iterations than that contribute only their leading iterations.

func deltaMinusMedian(ranks []*rankMarkers) []*PaceDeltaReport {
	if len(ranks) == 0 {
		return nil
	}
	n := len(ranks[0].markers)
	for _, g := range ranks {
		n = min(n, len(g.markers))
	}
	for _, g := range ranks {
		if len(g.markers) > n {
			common.Log.Warningf(
				"Rank %d has %d iterations, only the first %d are used", g.rank, len(g.markers), n)
		}
	}
	if n < 2 {
		return nil
	}

	deltas := make([][]float64, len(ranks))
	for i, g := range ranks {
		ds := make([]float64, n-1)
		for j := 0; j < n-1; j++ {
			ds[j] = float64(g.markers[j+1].Start - g.markers[j].Start)
		}
		deltas[i] = ds
	}

	medians := make([]float64, n-1)
	column := make([]float64, len(ranks))
	for j := 0; j < n-1; j++ {
		for i := range deltas {
			column[i] = deltas[i][j]
		}
		medians[j], _ = quant.Median(column)
	}

	rows := make([]*PaceDeltaReport, 0, len(ranks)*(n-1))
	for i, g := range ranks {
		for j := 0; j < n-1; j++ {
			rows = append(rows, &PaceDeltaReport{
				Rank:  g.rank,
				Iter:  g.markers[j].Iter,
				Value: deltas[i][j] - medians[j],
			})
		}
	}
	return rows
}
