// Reader-only Postgres provider, allowing a database populated by external ingestion code to act
// as the primitive trace store.  All of the analysis logic then applies unchanged to database-held
// runs; nothing is cached here.
//
// Expected schema, one row per trace table row, keyed by run name:
//
//   interval (run text, rank int, device int, pid int, start_time bigint, end_time bigint, kind text)
//   marker   (run text, rank int, iter int, start_time bigint, end_time bigint)
//   sample   (run text, rank int, op text, value double precision)
//   rankfile (run text, rank int, file text)
//
// The same validation is applied as for file data; "line" numbers in errors are 1-based row
// ordinals in query order.

package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

type postgresStore struct {
	// The connection is not thread-safe; Query takes the lock around every use.
	conn *pgx.Conn
	lock sync.Mutex
	run  string
}

func OpenPostgresStore(databaseURI, run string) (TraceStore, error) {
	conn, err := pgx.Connect(context.Background(), databaseURI)
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to database\n%w", err)
	}
	return &postgresStore{conn: conn, run: run}, nil
}

func (ps *postgresStore) query(q string, args ...any) (pgx.Rows, error) {
	ps.lock.Lock()
	defer ps.lock.Unlock()
	return ps.conn.Query(context.Background(), q, args...)
}

func (ps *postgresStore) ReadOperationIntervals() ([]*OperationInterval, error) {
	var rank, device, pid int
	var start, end int64
	var kind string

	// Alpha order and keep the two lists in sync.
	fields := "device, end_time, kind, pid, rank, start_time"
	boxes := []any{&device, &end, &kind, &pid, &rank, &start}
	unbox := func() *OperationInterval {
		return &OperationInterval{
			Rank:   rank,
			Device: device,
			Pid:    pid,
			Start:  start,
			End:    end,
			Kind:   kind,
		}
	}
	rows, err := querySlice(ps, "interval", fields, "rank, device, start_time", boxes, unbox)
	if err != nil {
		return nil, err
	}
	for i, op := range rows {
		if err := checkInterval(op, "interval table", i+1); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (ps *postgresStore) ReadIterationMarkers() ([]*IterationMarker, error) {
	var rank, iter int
	var start, end int64

	fields := "end_time, iter, rank, start_time"
	boxes := []any{&end, &iter, &rank, &start}
	unbox := func() *IterationMarker {
		return &IterationMarker{
			Rank:  rank,
			Iter:  iter,
			Start: start,
			End:   end,
		}
	}
	rows, err := querySlice(ps, "marker", fields, "rank, iter", boxes, unbox)
	if err != nil {
		return nil, err
	}
	ck := newMarkerChecker()
	for i, m := range rows {
		if err := ck.check(m, "marker table", i+1); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (ps *postgresStore) ReadMetricSamples() ([]*MetricSample, error) {
	var rank int
	var op string
	var value float64

	fields := "op, rank, value"
	boxes := []any{&op, &rank, &value}
	unbox := func() *MetricSample {
		return &MetricSample{
			Rank:  rank,
			Op:    op,
			Value: value,
		}
	}
	rows, err := querySlice(ps, "sample", fields, "rank, op", boxes, unbox)
	if err != nil {
		return nil, err
	}
	for i, s := range rows {
		if err := checkSample(s, "sample table", i+1); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (ps *postgresStore) ReadRankFiles() ([]*RankFile, error) {
	var rank int
	var file string

	fields := "file, rank"
	boxes := []any{&file, &rank}
	unbox := func() *RankFile {
		return &RankFile{Rank: rank, File: file}
	}
	return querySlice(ps, "rankfile", fields, "rank", boxes, unbox)
}

func (ps *postgresStore) Close() error {
	ps.lock.Lock()
	defer ps.lock.Unlock()
	return ps.conn.Close(context.Background())
}

func querySlice[T any](
	ps *postgresStore,
	table, fields, order string,
	boxes []any,
	unbox func() *T,
) ([]*T, error) {
	qstr := "SELECT " + fields + " FROM " + table + " WHERE run=$1 ORDER BY " + order
	rows, err := ps.query(qstr, ps.run)
	if err != nil {
		return nil, err
	}
	dataRows := make([]*T, 0)
	_, err = pgx.ForEachRow(rows, boxes, func() error {
		dataRows = append(dataRows, unbox())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dataRows, nil
}
