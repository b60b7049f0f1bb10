// Row validation shared by the CSV and Postgres providers.  Failures carry enough context (rank,
// device, iteration, source row) to locate the offending input.

package db

type markerKey struct {
	rank int
}

type markerState struct {
	haveLast  bool
	lastIter  int
	lastStart int64
	line      int
}

func checkInterval(op *OperationInterval, source string, line int) error {
	if op.Rank < 0 {
		return badRow(source, line, "negative rank %d", op.Rank)
	}
	if op.Device < 0 {
		return badRow(source, line, "negative device %d (rank %d)", op.Device, op.Rank)
	}
	if op.End < op.Start {
		return badRow(source, line, "negative duration: end %d precedes start %d (rank %d, device %d)",
			op.End, op.Start, op.Rank, op.Device)
	}
	return nil
}

func checkSample(s *MetricSample, source string, line int) error {
	if s.Rank < 0 {
		return badRow(source, line, "negative rank %d", s.Rank)
	}
	if s.Op == "" {
		return badRow(source, line, "empty operation name (rank %d)", s.Rank)
	}
	return nil
}

// Marker validation is stateful per rank: iteration indices must be strictly increasing and marker
// timestamps monotonic in table order.
type markerChecker struct {
	perRank map[markerKey]*markerState
}

func newMarkerChecker() *markerChecker {
	return &markerChecker{perRank: make(map[markerKey]*markerState)}
}

func (ck *markerChecker) check(m *IterationMarker, source string, line int) error {
	if m.Rank < 0 {
		return badRow(source, line, "negative rank %d", m.Rank)
	}
	if m.Iter < 0 {
		return badRow(source, line, "negative iteration index %d (rank %d)", m.Iter, m.Rank)
	}
	if m.End < m.Start {
		return badRow(source, line, "negative duration: end %d precedes start %d (rank %d, iteration %d)",
			m.End, m.Start, m.Rank, m.Iter)
	}
	st := ck.perRank[markerKey{m.Rank}]
	if st == nil {
		st = new(markerState)
		ck.perRank[markerKey{m.Rank}] = st
	}
	if st.haveLast {
		if m.Iter <= st.lastIter {
			return badRow(source, line, "iteration index %d not above %d from line %d (rank %d)",
				m.Iter, st.lastIter, st.line, m.Rank)
		}
		if m.Start < st.lastStart {
			return badRow(source, line, "non-monotonic marker timestamp %d below %d from line %d (rank %d, iteration %d)",
				m.Start, st.lastStart, st.line, m.Rank, m.Iter)
		}
	}
	st.haveLast = true
	st.lastIter = m.Iter
	st.lastStart = m.Start
	st.line = line
	return nil
}
