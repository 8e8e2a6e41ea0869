// Package catalog provides Catalog implementations for publishing dataset
// definitions to external consumers.
package catalog

import (
	"context"
	"log/slog"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/logging"
)

// LogCatalog is a Catalog which records dataset synchronizations to a
// structured logger, for deployments without an external catalog service
type LogCatalog struct {
	log *slog.Logger
}

// CreateLogCatalog is a factory for LogCatalogs
func CreateLogCatalog(log *slog.Logger) *LogCatalog {
	if log == nil {
		log = logging.CreateNopLogger()
	}
	return &LogCatalog{log: log}
}

// SyncDataset logs the dataset definition being published
func (c *LogCatalog) SyncDataset(ctx context.Context, dataset *chunksink.Dataset) error {
	c.log.Info("syncing dataset to catalog",
		"dataset", dataset.Ref.String(),
		"columns", len(dataset.Columns),
		"rowKeys", dataset.RowKeys,
		"segmentKey", dataset.SegmentKey,
		"partitionKeys", dataset.PartitionKeys)
	return nil
}

// NopCatalog is a Catalog which discards all synchronizations
type NopCatalog struct{}

// CreateNopCatalog is a factory for NopCatalogs
func CreateNopCatalog() *NopCatalog {
	return &NopCatalog{}
}

// SyncDataset does nothing
func (c *NopCatalog) SyncDataset(ctx context.Context, dataset *chunksink.Dataset) error {
	return nil
}
