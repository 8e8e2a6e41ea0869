package chunksink

import (
	"fmt"
	"strings"
)

// DefaultNamespace is the namespace used for DatasetRefs which do not specify one
const DefaultNamespace = "default"

// DatasetRef identifies a target dataset by name, with an optional
// namespace qualifier. Equality is structural.
type DatasetRef struct {
	Namespace string
	Name      string
}

// ParseDatasetRef parses a "<namespace>.<name>" or bare "<name>" string
// into a DatasetRef, applying DefaultNamespace when no qualifier is present.
func ParseDatasetRef(s string) (DatasetRef, error) {
	if len(s) == 0 {
		return DatasetRef{}, fmt.Errorf("Dataset reference cannot be empty")
	}
	parts := strings.SplitN(s, ".", 2)
	if len(parts) == 2 {
		if len(parts[0]) == 0 || len(parts[1]) == 0 {
			return DatasetRef{}, fmt.Errorf("Invalid dataset reference %s", s)
		}
		return DatasetRef{Namespace: parts[0], Name: parts[1]}, nil
	}
	return DatasetRef{Namespace: DefaultNamespace, Name: s}, nil
}

// String renders this DatasetRef as "<namespace>.<name>"
func (r DatasetRef) String() string {
	return fmt.Sprintf("%s.%s", r.Namespace, r.Name)
}

// Dataset is the persisted definition of a named columnar table instance
// within the chunk store: its keys, chunking hint, and column set. The
// column set mutates append-only; full replacement requires deletion and
// recreation of the Dataset.
type Dataset struct {
	Ref           DatasetRef                 `json:"ref"`
	RowKeys       []string                   `json:"row_keys"`       // intra-partition primary ordering/uniqueness, in order
	SegmentKey    string                     `json:"segment_key"`    // column or computed expression grouping rows within a partition
	PartitionKeys []string                   `json:"partition_keys"` // columns or computed expressions determining physical partition assignment, in order
	ChunkSize     int                        `json:"chunk_size"`     // write batching hint; 0 means engine default
	Columns       map[string]StoreColumnType `json:"columns"`        // column name to chunk store type; insertion order irrelevant
}

// Clone returns a deep copy of this Dataset
func (d *Dataset) Clone() *Dataset {
	cols := make(map[string]StoreColumnType, len(d.Columns))
	for k, v := range d.Columns {
		cols[k] = v
	}
	return &Dataset{
		Ref:           d.Ref,
		RowKeys:       append([]string{}, d.RowKeys...),
		SegmentKey:    d.SegmentKey,
		PartitionKeys: append([]string{}, d.PartitionKeys...),
		ChunkSize:     d.ChunkSize,
		Columns:       cols,
	}
}

// WriteMode governs how an ingestion request interacts with an existing
// dataset definition and existing row data.
type WriteMode int

const (
	// Append adds incoming rows to any existing rows for the target version
	Append WriteMode = iota
	// Overwrite truncates existing rows for the target version before writing
	Overwrite
	// ErrorIfExists fails the request when the target dataset already exists
	ErrorIfExists
	// Ignore skips the request entirely when the target dataset already exists
	Ignore
)

// String returns a textual representation of this WriteMode
func (m WriteMode) String() string {
	switch m {
	case Append:
		return "append"
	case Overwrite:
		return "overwrite"
	case ErrorIfExists:
		return "errorifexists"
	case Ignore:
		return "ignore"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}
