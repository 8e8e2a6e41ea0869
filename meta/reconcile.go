package meta

import (
	"context"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/errors"
)

// Reconcile diffs incoming column definitions against the persisted column
// set for ref, appending any absent columns. A column present with the same
// type is a no-op; a column present with a conflicting type fails with a
// ColumnTypeConflictError before any row is written. Reconcile is
// idempotent, has no cross-column ordering requirement, and does not roll
// back columns already appended when a later column conflicts.
func (m *Manager) Reconcile(ctx context.Context, cols []chunksink.ColumnDef, ref chunksink.DatasetRef, version int) error {
	ds, err := m.store.GetDataset(ctx, ref)
	if err != nil {
		return err
	}
	for _, col := range cols {
		existing, ok := ds.Columns[col.Name]
		if !ok {
			if err := m.store.AddColumn(ctx, ref, col); err != nil {
				return err
			}
			m.log.Debug("appended column", "dataset", ref.String(), "version", version, "column", col.Name, "type", string(col.Type))
			continue
		}
		if existing != col.Type {
			return errors.ColumnTypeConflictError{
				Column:   col.Name,
				Existing: string(existing),
				Incoming: string(col.Type),
			}
		}
	}
	return nil
}
