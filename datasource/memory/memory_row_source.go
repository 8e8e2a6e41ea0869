// Package memory provides a RowSource over pre-partitioned in-memory data,
// suitable for tests and embedded use.
package memory

import (
	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/datasource"
	"github.com/chunksink/chunksink/errors"
)

// RowSource serves pre-partitioned rows from memory. Each partition is a
// slice of rows; each row is a value slice in schema field order.
type RowSource struct {
	schema     chunksink.Schema
	partitions [][][]interface{}
}

// CreateRowSource is a factory for memory RowSources. partitions must
// contain at least one partition (possibly empty).
func CreateRowSource(schema chunksink.Schema, partitions [][][]interface{}) *RowSource {
	if len(partitions) == 0 {
		partitions = [][][]interface{}{{}}
	}
	return &RowSource{schema: schema, partitions: partitions}
}

// Schema describes the fields of this source's rows
func (s *RowSource) Schema() chunksink.Schema {
	return s.schema
}

// NumPartitions returns the number of partitions this source divides into
func (s *RowSource) NumPartitions() int {
	return len(s.partitions)
}

// Partition returns a RowIterator over the rows of the given partition
func (s *RowSource) Partition(idx int) (chunksink.RowIterator, error) {
	if idx < 0 || idx >= len(s.partitions) {
		return nil, errors.NoSuchPartitionError{Index: idx}
	}
	return &rowIterator{schema: s.schema, rows: s.partitions[idx]}, nil
}

type rowIterator struct {
	schema chunksink.Schema
	rows   [][]interface{}
	next   int
}

// HasNextRow returns true iff this iterator can produce another Row
func (it *rowIterator) HasNextRow() bool {
	return it.next < len(it.rows)
}

// NextRow returns the next Row in this partition
func (it *rowIterator) NextRow() (chunksink.Row, error) {
	if !it.HasNextRow() {
		return nil, errors.NoMoreRowsError{}
	}
	row, err := datasource.CreateRow(it.schema, it.rows[it.next])
	if err != nil {
		return nil, err
	}
	it.next++
	return row, nil
}
