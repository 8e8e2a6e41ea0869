// Package memory provides an in-memory StoreCoordinator which records
// everything it receives, suitable for tests and embedded use.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/chunksink/chunksink"
)

// Coordinator is an in-memory StoreCoordinator. Its exported knobs allow
// tests to inject failures and control flush behavior; leave them zero for
// a well-behaved coordinator.
type Coordinator struct {
	FailTruncate bool                                    // iff true, Truncate requests fail
	BlockFlush   bool                                    // iff true, Flush blocks until its context is cancelled
	FlushStatus  chunksink.FlushStatus                   // status returned by Flush when not blocking
	IngestHook   func(batch *chunksink.IngestBatch) error // invoked before recording a batch; a non-nil return rejects it

	lock        sync.Mutex
	rows        map[string]map[int][][]interface{} // dataset/version key -> partition index -> rows in arrival order
	truncations []string
	flushes     []string
}

// CreateCoordinator is a factory for in-memory Coordinators
func CreateCoordinator() *Coordinator {
	return &Coordinator{
		rows: make(map[string]map[int][][]interface{}),
	}
}

func versionKey(ref chunksink.DatasetRef, version int) string {
	return fmt.Sprintf("%s/%d", ref.String(), version)
}

// IngestRows records a batch of rows for its partition, preserving arrival order
func (c *Coordinator) IngestRows(ctx context.Context, batch *chunksink.IngestBatch) error {
	if c.IngestHook != nil {
		if err := c.IngestHook(batch); err != nil {
			return err
		}
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	key := versionKey(batch.Ref, batch.Version)
	if _, ok := c.rows[key]; !ok {
		c.rows[key] = make(map[int][][]interface{})
	}
	c.rows[key][batch.PartitionIndex] = append(c.rows[key][batch.PartitionIndex], batch.Rows...)
	return nil
}

// Truncate discards all recorded rows for the given dataset version
func (c *Coordinator) Truncate(ctx context.Context, ref chunksink.DatasetRef, version int) error {
	if c.FailTruncate {
		return fmt.Errorf("Coordinator rejected truncate")
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	key := versionKey(ref, version)
	delete(c.rows, key)
	c.truncations = append(c.truncations, key)
	return nil
}

// Flush records the flush request and acknowledges it, unless configured to block
func (c *Coordinator) Flush(ctx context.Context, ref chunksink.DatasetRef, version int) (chunksink.FlushStatus, error) {
	if c.BlockFlush {
		<-ctx.Done()
		return chunksink.FlushUnknown, ctx.Err()
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.flushes = append(c.flushes, versionKey(ref, version))
	return c.FlushStatus, nil
}

// PartitionRows returns the rows recorded for one partition of a dataset
// version, in arrival order
func (c *Coordinator) PartitionRows(ref chunksink.DatasetRef, version int, partition int) [][]interface{} {
	c.lock.Lock()
	defer c.lock.Unlock()
	parts, ok := c.rows[versionKey(ref, version)]
	if !ok {
		return nil
	}
	return parts[partition]
}

// NumRows returns the total number of rows recorded for a dataset version
func (c *Coordinator) NumRows(ref chunksink.DatasetRef, version int) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	total := 0
	for _, rows := range c.rows[versionKey(ref, version)] {
		total += len(rows)
	}
	return total
}

// Truncations returns the dataset/version keys truncated so far, in order
func (c *Coordinator) Truncations() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string{}, c.truncations...)
}

// Flushes returns the dataset/version keys flushed so far, in order
func (c *Coordinator) Flushes() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string{}, c.flushes...)
}
