// Package ingest implements partitioned ingestion into the chunk store: a
// Saver which drives the full save lifecycle, and an Orchestrator which
// fans row delivery out across source partitions.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/catalog"
	"github.com/chunksink/chunksink/coordinator"
	"github.com/chunksink/chunksink/errors"
	"github.com/chunksink/chunksink/logging"
	"github.com/chunksink/chunksink/metrics"
	"github.com/jonboulle/clockwork"
)

// defaultChunkSize is the per-request row batch size applied when neither
// the save options nor the dataset definition supply one
const defaultChunkSize = 1000

// CoordinatorFactory constructs the StoreCoordinator used for ingestion.
// It is invoked at most once per process, via coordinator.GetOrInit.
type CoordinatorFactory func() (chunksink.StoreCoordinator, error)

// OrchestratorConf configures an Orchestrator. Only Coordinator is
// required; every other field has a default.
type OrchestratorConf struct {
	Coordinator    CoordinatorFactory
	Runner         TaskRunner        // defaults to a LocalTaskRunner
	Catalog        chunksink.Catalog // defaults to a NopCatalog
	Clock          clockwork.Clock   // defaults to the real clock
	Log            *slog.Logger      // defaults to a no-op logger
	MaxConcurrency int               // partition-level parallelism for the default Runner; defaults to NumCPU
}

// Orchestrator fans ingestion out across the partitions of a RowSource,
// truncating first in overwrite mode and flushing afterwards
type Orchestrator struct {
	factory CoordinatorFactory
	runner  TaskRunner
	catalog chunksink.Catalog
	clock   clockwork.Clock
	log     *slog.Logger
}

// CreateOrchestrator is a factory for Orchestrators
func CreateOrchestrator(conf *OrchestratorConf) (*Orchestrator, error) {
	if conf == nil || conf.Coordinator == nil {
		return nil, fmt.Errorf("An OrchestratorConf with a Coordinator factory is required")
	}
	runner := conf.Runner
	if runner == nil {
		maxConcurrency := conf.MaxConcurrency
		if maxConcurrency < 1 {
			maxConcurrency = runtime.NumCPU()
		}
		runner = CreateLocalTaskRunner(maxConcurrency)
	}
	cat := conf.Catalog
	if cat == nil {
		cat = catalog.CreateNopCatalog()
	}
	clock := conf.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := conf.Log
	if log == nil {
		log = logging.CreateNopLogger()
	}
	return &Orchestrator{
		factory: conf.Coordinator,
		runner:  runner,
		catalog: cat,
		clock:   clock,
		log:     log,
	}, nil
}

// Ingest writes every partition of src into the dataset described by ds. In
// overwrite mode, existing rows for the target version are truncated first;
// a failed truncate aborts the request before any row is delivered. Partition
// failures are aggregated, each tagged with its partition index. A flush is
// issued once all partitions complete, unless the options skip it; flush
// failures and timeouts are logged, never surfaced.
func (o *Orchestrator) Ingest(ctx context.Context, src chunksink.RowSource, ds *chunksink.Dataset,
	mode chunksink.WriteMode, opts *chunksink.SaveOptions) error {
	opts = chunksink.EnsureDefaultSaveOptionsValues(opts)
	coord, err := coordinator.GetOrInit(o.factory)
	if err != nil {
		return err
	}
	start := o.clock.Now()

	if mode == chunksink.Overwrite {
		if err := coord.Truncate(ctx, ds.Ref, opts.Version); err != nil {
			metrics.Truncations.WithLabelValues("error").Inc()
			return errors.TruncateFailedError{Ref: ds.Ref.String(), Version: opts.Version, Cause: err}
		}
		metrics.Truncations.WithLabelValues("ok").Inc()
		o.log.Info("truncated dataset before overwrite", "dataset", ds.Ref.String(), "version", opts.Version)
	}

	chunkSize := opts.ChunkSize
	if chunkSize < 1 {
		chunkSize = ds.ChunkSize
	}
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}
	columnNames := src.Schema().ColumnNames()

	err = o.runner.Run(ctx, src.NumPartitions(), func(ctx context.Context, partition int) error {
		if err := o.ingestPartition(ctx, coord, src, ds.Ref, columnNames, opts.Version, partition, chunkSize); err != nil {
			return fmt.Errorf("Partition %d: %w", partition, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !opts.SkipFlushAfterInsert {
		o.flush(ctx, coord, ds.Ref, opts.Version, opts.WriteTimeout)
	}
	if err := o.catalog.SyncDataset(ctx, ds); err != nil {
		o.log.Warn("catalog sync failed", "dataset", ds.Ref.String(), "error", err)
	}
	metrics.IngestDuration.WithLabelValues(ds.Ref.String()).Observe(o.clock.Since(start).Seconds())
	return nil
}

// ingestPartition streams one partition's rows to the coordinator in
// chunk-sized batches, in the partition's iteration order
func (o *Orchestrator) ingestPartition(ctx context.Context, coord chunksink.StoreCoordinator,
	src chunksink.RowSource, ref chunksink.DatasetRef, columnNames []string,
	version int, partition int, chunkSize int) error {
	iter, err := src.Partition(partition)
	if err != nil {
		return err
	}
	batch := make([][]interface{}, 0, chunkSize)
	send := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := coord.IngestRows(ctx, &chunksink.IngestBatch{
			Ref:            ref,
			ColumnNames:    columnNames,
			Version:        version,
			PartitionIndex: partition,
			Rows:           batch,
		})
		if err != nil {
			return err
		}
		metrics.RowsIngested.WithLabelValues(ref.String()).Add(float64(len(batch)))
		batch = make([][]interface{}, 0, chunkSize)
		return nil
	}
	for iter.HasNextRow() {
		row, err := iter.NextRow()
		if err != nil {
			return err
		}
		batch = append(batch, row.Values())
		if len(batch) == chunkSize {
			if err := send(); err != nil {
				return err
			}
		}
	}
	return send()
}

// flush issues a best-effort flush bounded by timeout. The coordinator call
// runs on its own goroutine with a cancelable context, so an unresponsive
// coordinator cannot outlive the timeout.
func (o *Orchestrator) flush(ctx context.Context, coord chunksink.StoreCoordinator,
	ref chunksink.DatasetRef, version int, timeout time.Duration) {
	flushCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	type flushResult struct {
		status chunksink.FlushStatus
		err    error
	}
	resultCh := make(chan flushResult, 1)
	go func() {
		status, err := coord.Flush(flushCtx, ref, version)
		resultCh <- flushResult{status: status, err: err}
	}()
	select {
	case res := <-resultCh:
		if res.err != nil {
			o.log.Warn("flush failed", "dataset", ref.String(), "version", version, "error", res.err)
			metrics.Flushes.WithLabelValues("error").Inc()
			return
		}
		if res.status != chunksink.Flushed {
			o.log.Warn("flush not acknowledged", "dataset", ref.String(), "version", version, "status", res.status.String())
			metrics.Flushes.WithLabelValues("unknown").Inc()
			return
		}
		metrics.Flushes.WithLabelValues("ok").Inc()
	case <-o.clock.After(timeout):
		cancel()
		terr := errors.FlushTimeoutError{Ref: ref.String(), Version: version, Timeout: timeout}
		o.log.Warn("flush timed out", "dataset", ref.String(), "version", version, "error", terr.Error())
		metrics.Flushes.WithLabelValues("timeout").Inc()
	}
}
