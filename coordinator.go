package chunksink

import "context"

// IngestBatch is a batch of rows destined for a single partition of a
// single dataset version. Row values are in ColumnNames order.
type IngestBatch struct {
	Ref            DatasetRef
	ColumnNames    []string
	Version        int
	PartitionIndex int
	Rows           [][]interface{}
}

// FlushStatus is the closed set of outcomes of a flush request
type FlushStatus int

const (
	// Flushed indicates the coordinator acknowledged the flush
	Flushed FlushStatus = iota
	// FlushUnknown indicates the coordinator returned something other than an acknowledgement
	FlushUnknown
)

// String returns a textual representation of this FlushStatus
func (s FlushStatus) String() string {
	if s == Flushed {
		return "flushed"
	}
	return "unknown"
}

// StoreCoordinator is the message-passing service which physically stores
// rows and performs flush and truncate operations for the chunk store. All
// calls are blocking request/response exchanges; implementations must not
// leak their underlying transport into this interface.
type StoreCoordinator interface {
	// IngestRows delivers a batch of rows, blocking until the coordinator
	// acknowledges receipt or the call fails
	IngestRows(ctx context.Context, batch *IngestBatch) error
	// Truncate removes all rows for the given dataset version
	Truncate(ctx context.Context, ref DatasetRef, version int) error
	// Flush forces buffered writes for the given dataset version to durable
	// storage, blocking until the coordinator responds
	Flush(ctx context.Context, ref DatasetRef, version int) (FlushStatus, error)
}
