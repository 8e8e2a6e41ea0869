package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/colmap"
	"github.com/chunksink/chunksink/errors"
	"github.com/chunksink/chunksink/logging"
	"github.com/chunksink/chunksink/meta"
	"github.com/gofrs/uuid"
)

// Saver drives the full save lifecycle for a RowSource: dataset resolution
// and lifecycle dispatch, column reconciliation, then partitioned ingestion
type Saver struct {
	manager *meta.Manager
	orch    *Orchestrator
	log     *slog.Logger
}

// CreateSaver is a factory for Savers
func CreateSaver(manager *meta.Manager, orch *Orchestrator, log *slog.Logger) *Saver {
	if log == nil {
		log = logging.CreateNopLogger()
	}
	return &Saver{manager: manager, orch: orch, log: log}
}

// Save writes src into the dataset identified by ref under the given write
// mode, creating or updating the dataset definition as the mode dictates.
// Column mapping failures surface before any metadata is persisted, and
// reconciliation failures surface before any row is written. In Ignore mode
// an existing dataset makes the entire request a no-op, rows included.
func (s *Saver) Save(ctx context.Context, src chunksink.RowSource, ref chunksink.DatasetRef,
	rowKeys []string, segmentKey string, partitionKeys []string,
	mode chunksink.WriteMode, opts *chunksink.SaveOptions) error {
	opts = chunksink.EnsureDefaultSaveOptionsValues(opts)
	if opts.Version < 0 {
		return fmt.Errorf("Version must be >= 0, got %d", opts.Version)
	}
	requestID, err := uuid.NewV4()
	if err != nil {
		return err
	}
	log := s.log.With("request", requestID.String(), "dataset", ref.String(), "mode", mode.String(), "version", opts.Version)

	// map the tabular schema first, so an unsupported column type fails the
	// request before any dataset definition exists
	defs, err := colmap.Map(src.Schema())
	if err != nil {
		return err
	}

	_, err = s.manager.Resolve(ctx, ref)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	exists := err == nil
	if mode == chunksink.Ignore && exists {
		log.Info("dataset exists, ignoring save request")
		return nil
	}

	err = s.manager.CreateOrUpdate(ctx, src.Schema(), ref, rowKeys, segmentKey, partitionKeys,
		opts.ChunkSize, opts.ResetSchema, mode)
	if err != nil {
		return err
	}
	if err := s.manager.Reconcile(ctx, defs, ref, opts.Version); err != nil {
		return err
	}
	ds, err := s.manager.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	log.Info("ingesting rows", "partitions", src.NumPartitions())
	if err := s.orch.Ingest(ctx, src, ds, mode, opts); err != nil {
		return err
	}
	log.Info("save complete")
	return nil
}
