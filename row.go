package chunksink

// Row is a representation of a single row of tabular data, along with a
// reference to the Schema for that row. Values are held in schema field order.
type Row interface {
	Schema() Schema                                  // Schema returns a read-only copy of the schema for this row
	Get(colName string) (col interface{}, err error) // Get returns the value of the column with the given name, if it exists
	Values() []interface{}                           // Values returns this row's values, in schema field order
	ToString() string                                // ToString returns a string representation of this row
}

// RowIterator is a generalized interface for iterating over the Rows of a
// single partition, in that partition's fixed iteration order.
type RowIterator interface {
	HasNextRow() bool         // HasNextRow returns true iff this iterator can produce another Row
	NextRow() (Row, error)    // NextRow returns the next Row in this partition
}

// RowSource is a distributed tabular value: an ordered Schema plus row data
// divisible into a fixed number of independent partitions, each producing a
// sequence of Rows in a fixed order. RowSources are the ingestion input to
// the chunk store.
type RowSource interface {
	Schema() Schema                        // Schema describes the fields of this source's rows
	NumPartitions() int                    // NumPartitions returns the number of partitions this source divides into. Always at least 1.
	Partition(idx int) (RowIterator, error) // Partition returns a RowIterator over the rows of the given partition
}
