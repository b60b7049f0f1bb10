package daemon

import (
	"context"
	"path"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	. "tracelyze/common"
	"tracelyze/db"
)

// Start one consumer goroutine per run named by -kafka-run, just to be a little resilient.
// Returns a function that cancels the consumers and waits for them to drain, or nil if Kafka
// ingest is not configured.

func (dc *DaemonCommand) startKafkaConsumers() func() {
	if dc.kafkaBroker == "" || len(dc.kafkaRuns) == 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, run := range dc.kafkaRuns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runKafka(ctx, dc.kafkaBroker, run, path.Join(dc.dataRoot, run), dc.Verbose)
		}()
	}
	return func() {
		cancel()
		wg.Wait()
	}
}

// The topics are `<run>.intervals`, `<run>.markers`, `<run>.samples` and `<run>.files`.  Record
// values are complete CSV tables with a header line, the same payload format that `tracelyze add`
// accepts, and go through the same validation before being appended.

func runKafka(ctx context.Context, kafkaBroker, run, dataDir string, verbose bool) {
	store, err := db.OpenTraceDir(dataDir)
	if err != nil {
		Log.Errorf("%s: Failed to open trace directory: %v", run, err)
		return
	}
	defer store.Close()

	tables := make(map[string]db.TableKind)
	topics := make([]string, 0)
	for _, kind := range []db.TableKind{
		db.TableIntervals, db.TableMarkers, db.TableSamples, db.TableRankFiles,
	} {
		topic := run + "." + kind.String()
		tables[topic] = kind
		topics = append(topics, topic)
	}

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(kafkaBroker),
		kgo.ConsumerGroup("tracelyze-ingest"),
		kgo.ConsumeTopics(topics...),
	)
	if err != nil {
		// This should be surfaced somehow, but probably we should just back off and retry later,
		// the broker could be down - depends on the error!
		Log.Errorf("%s: Failed to create client: %v", run, err)
		return
	}
	defer cl.Close()
	if verbose {
		Log.Infof("%s: Connected!", run)
	}

	for {
		if verbose {
			Log.Infof("%s: Fetching data", run)
		}
		fetches := cl.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			// All errors are retried internally when fetching, but non-retriable errors are
			// returned from polls so that users can notice and take action.
			Log.Warningf("%s: SOFT ERROR: Failed to fetch data! %v", run, errs)
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			if verbose {
				Log.Infof("  %s: %s", run, record.Topic)
			}
			kind, found := tables[record.Topic]
			if !found {
				Log.Warningf("  %s: SOFT ERROR: No handler for topic: %s", run, record.Topic)
				continue
			}
			if err := store.AppendRows(kind, record.Value); err != nil {
				Log.Warningf("  %s: SOFT ERROR: Topic handler %s failed: %v", run, record.Topic, err)
			}
		}
		if err := cl.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			Log.Warningf("  %s: SOFT ERROR: Commit records failed: %v", run, err)
		}
	}
}
