package utilmap

import (
	"io"
	"slices"
	"sync"

	"tracelyze/db"
)

func (uc *UtilmapCommand) Perform(out io.Writer, store db.TraceStore) error {
	intervals, err := store.ReadOperationIntervals()
	if err != nil {
		return err
	}

	groups := groupByDevice(intervals)

	// The groups are independent, so chunk them in parallel.  Each group's result lands in its
	// own slot, keeping the output deterministic.
	reports := make([][]*UtilReport, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g *deviceIntervals) {
			defer wg.Done()
			reports[i] = lowUtilRegions(g, uc.Chunks, uc.Threshold)
		}(i, g)
	}
	wg.Wait()

	merged := make([]*UtilReport, 0)
	for _, rs := range reports {
		merged = append(merged, rs...)
	}
	return uc.printReports(out, merged)
}

type deviceIntervals struct {
	rank, device int
	intervals    []*db.OperationInterval
}

// groupByDevice partitions the intervals by (rank, device), ordered by rank then device.  The
// providers deliver intervals sorted that way already but the grouping does not depend on it.

func groupByDevice(intervals []*db.OperationInterval) []*deviceIntervals {
	type key struct{ rank, device int }
	m := make(map[key]*deviceIntervals)
	for _, iv := range intervals {
		k := key{iv.Rank, iv.Device}
		g, found := m[k]
		if !found {
			g = &deviceIntervals{rank: iv.Rank, device: iv.Device}
			m[k] = g
		}
		g.intervals = append(g.intervals, iv)
	}
	groups := make([]*deviceIntervals, 0, len(m))
	for _, g := range m {
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b *deviceIntervals) int {
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return a.device - b.device
	})
	return groups
}

type chunk struct {
	start, end int64
	pct        float64
}

// chunkBoundaries divides [lo, hi) into n left-closed chunks of equal width, any remainder going
// into the last chunk.  A zero-length span is widened to one time unit, and n is clamped to the
// span so that no chunk is empty.

func chunkBoundaries(lo, hi int64, n uint) []int64 {
	span := hi - lo
	if span <= 0 {
		span = 1
		hi = lo + 1
	}
	if int64(n) > span {
		n = uint(span)
	}
	width := span / int64(n)
	bs := make([]int64, n+1)
	for i := uint(0); i < n; i++ {
		bs[i] = lo + int64(i)*width
	}
	bs[n] = hi
	return bs
}

// chunkUtilization computes per-chunk time utilization in percent.  Busy time is the summed
// overlap of all intervals with the chunk; concurrent operations are counted separately, so a
// value above 100 is possible.

func chunkUtilization(g *deviceIntervals, n uint) []chunk {
	lo := g.intervals[0].Start
	hi := g.intervals[0].End
	for _, iv := range g.intervals {
		lo = min(lo, iv.Start)
		hi = max(hi, iv.End)
	}
	bs := chunkBoundaries(lo, hi, n)
	numChunks := len(bs) - 1
	width := bs[1] - bs[0]

	busy := make([]int64, numChunks)
	for _, iv := range g.intervals {
		// All chunks except the last have the same width, so the start chunk can be found by
		// division; clamping covers starts that fall in the last chunk's remainder.
		i := 0
		if width > 0 {
			i = int((iv.Start - lo) / width)
		}
		i = min(i, numChunks-1)
		for ; i < numChunks && bs[i] < iv.End; i++ {
			overlap := min(iv.End, bs[i+1]) - max(iv.Start, bs[i])
			if overlap > 0 {
				busy[i] += overlap
			}
		}
	}

	chunks := make([]chunk, numChunks)
	for i := range chunks {
		w := bs[i+1] - bs[i]
		chunks[i] = chunk{
			start: bs[i],
			end:   bs[i+1],
			pct:   100 * float64(busy[i]) / float64(w),
		}
	}
	return chunks
}

// coalesceLow extracts the chunks whose utilization is strictly below the threshold and merges
// consecutive ones, computing the duration-weighted utilization of each merged region.

func coalesceLow(rank, device int, chunks []chunk, threshold float64) []*UtilReport {
	reports := make([]*UtilReport, 0)
	i := 0
	for i < len(chunks) {
		if chunks[i].pct >= threshold {
			i++
			continue
		}
		j := i
		var weighted float64
		var total int64
		for j < len(chunks) && chunks[j].pct < threshold {
			w := chunks[j].end - chunks[j].start
			weighted += float64(w) * chunks[j].pct
			total += w
			j++
		}
		reports = append(reports, &UtilReport{
			Rank:            rank,
			Device:          device,
			Start:           chunks[i].start,
			End:             chunks[j-1].end,
			Duration:        chunks[j-1].end - chunks[i].start,
			WeightedPercent: weighted / float64(total),
		})
		i = j
	}
	return reports
}

func lowUtilRegions(g *deviceIntervals, n uint, threshold float64) []*UtilReport {
	if len(g.intervals) == 0 {
		return nil
	}
	return coalesceLow(g.rank, g.device, chunkUtilization(g, n), threshold)
}
