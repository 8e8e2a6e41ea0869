package chunksink

import "context"

// MetaStore persists dataset definitions. Implementations must be safe for
// concurrent use within a process; across concurrent writers, AddColumn is
// last-writer-wins (no optimistic versioning is performed by this library).
type MetaStore interface {
	// GetDataset returns the persisted definition for ref, or a
	// chunksink/errors.NotFoundError when none exists
	GetDataset(ctx context.Context, ref DatasetRef) (*Dataset, error)
	// CreateDataset persists a new definition, failing with a
	// chunksink/errors.AlreadyExistsError when one exists for the same ref
	CreateDataset(ctx context.Context, dataset *Dataset) error
	// DeleteDataset removes the definition for ref, if any
	DeleteDataset(ctx context.Context, ref DatasetRef) error
	// AddColumn appends a column to the definition for ref. Existing columns
	// are never retyped or removed by this call.
	AddColumn(ctx context.Context, ref DatasetRef, col ColumnDef) error
}
