package chunksink

import "time"

// DefaultWriteTimeout is the flush acknowledgement timeout applied when
// SaveOptions does not supply one
const DefaultWriteTimeout = 30 * time.Second

// SaveOptions configure a single save request. The zero value is valid and
// carries the defaults: version 0, the dataset's chunk size, the default
// write timeout, flush after insert, no schema reset.
type SaveOptions struct {
	Version              int           // target schema/data generation; must be >= 0
	ChunkSize            int           // write batching hint override; 0 means use the dataset's chunk size
	WriteTimeout         time.Duration // how long to await flush acknowledgement; 0 means DefaultWriteTimeout
	SkipFlushAfterInsert bool          // iff true, do not issue a flush once all partitions complete
	ResetSchema          bool          // with Overwrite, delete and recreate the dataset definition
}

// EnsureDefaultSaveOptionsValues fills in defaults for any unset option,
// returning a copy. A nil opts is treated as all-defaults.
func EnsureDefaultSaveOptionsValues(opts *SaveOptions) *SaveOptions {
	res := &SaveOptions{}
	if opts != nil {
		*res = *opts
	}
	if res.WriteTimeout == 0 {
		res.WriteTimeout = DefaultWriteTimeout
	}
	return res
}
