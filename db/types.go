package db

// OperationInterval is one GPU operation on one device: a closed-open interval [Start,End) on a
// monotonic nanosecond clock.  Rows are immutable once ingested.
type OperationInterval struct {
	Rank   int
	Device int
	Pid    int
	Start  int64
	End    int64
	Kind   string
}

// IterationMarker delimits one loop iteration on one rank.  Iter is strictly increasing per rank,
// consistently 0- or 1-based across ranks.
type IterationMarker struct {
	Rank  int
	Iter  int
	Start int64
	End   int64
}

// MetricSample is a raw scalar observation feeding percentile computation.
type MetricSample struct {
	Rank  int
	Op    string
	Value float64
}

// RankFile associates a rank with the original report file it was collected from.  Pass-through
// only; nothing in the analyses interprets the file name.
type RankFile struct {
	Rank int
	File string
}
