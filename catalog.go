package chunksink

import "context"

// Catalog mirrors dataset existence and schema into an external table
// catalog. Chunksink notifies it fire-and-forget: sync failures are logged
// by the caller, never surfaced to the save request.
type Catalog interface {
	SyncDataset(ctx context.Context, dataset *Dataset) error
}
