package errors

import (
	goerrors "errors"
	"fmt"
	"time"
)

// NotFoundError occurs when a dataset lookup does not match a persisted definition
type NotFoundError struct{ Ref string }

// Error returns a textual representation of this NotFoundError
func (e NotFoundError) Error() string {
	return fmt.Sprintf("Dataset %s does not exist", e.Ref)
}

// IsNotFound returns true iff err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var nfe NotFoundError
	return goerrors.As(err, &nfe)
}

// AlreadyExistsError occurs when a dataset is created in ErrorIfExists mode but already exists
type AlreadyExistsError struct{ Ref string }

// Error returns a textual representation of this AlreadyExistsError
func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("Dataset %s already exists", e.Ref)
}

// InvalidKeyError occurs when a row, segment or partition key does not resolve
// to a schema column or a recognized computed expression
type InvalidKeyError struct {
	Key  string
	Kind string // "row", "segment" or "partition"
}

// Error returns a textual representation of this InvalidKeyError
func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("%s key %s does not resolve to a schema column or computed expression", e.Kind, e.Key)
}

// UnsupportedColumnTypeError occurs when a tabular schema field has no chunk store mapping
type UnsupportedColumnTypeError struct {
	Column string
	Type   string
}

// Error returns a textual representation of this UnsupportedColumnTypeError
func (e UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("Column %s has unsupported type %s", e.Column, e.Type)
}

// ColumnTypeConflictError occurs when reconciliation finds an incoming column
// whose type conflicts with the persisted column of the same name
type ColumnTypeConflictError struct {
	Column   string
	Existing string
	Incoming string
}

// Error returns a textual representation of this ColumnTypeConflictError
func (e ColumnTypeConflictError) Error() string {
	return fmt.Sprintf("Column %s is persisted as %s but incoming data is %s", e.Column, e.Existing, e.Incoming)
}

// TruncateFailedError occurs when the coordinator fails a truncate request
type TruncateFailedError struct {
	Ref     string
	Version int
	Cause   error
}

// Error returns a textual representation of this TruncateFailedError
func (e TruncateFailedError) Error() string {
	return fmt.Sprintf("Truncate of %s version %d failed: %v", e.Ref, e.Version, e.Cause)
}

// Unwrap returns the underlying coordinator error
func (e TruncateFailedError) Unwrap() error {
	return e.Cause
}

// FlushTimeoutError occurs when the coordinator does not acknowledge a flush
// within the write timeout. It is logged, never surfaced to save callers.
type FlushTimeoutError struct {
	Ref     string
	Version int
	Timeout time.Duration
}

// Error returns a textual representation of this FlushTimeoutError
func (e FlushTimeoutError) Error() string {
	return fmt.Sprintf("Flush of %s version %d was not acknowledged within %s", e.Ref, e.Version, e.Timeout)
}

// NoMoreRowsError occurs when there are no more rows in a RowIterator
type NoMoreRowsError struct{}

// Error returns a textual representation of this NoMoreRowsError
func (e NoMoreRowsError) Error() string {
	return "No more rows"
}

// NoSuchPartitionError occurs when a RowSource is asked for a partition index it does not contain
type NoSuchPartitionError struct{ Index int }

// Error returns a textual representation of this NoSuchPartitionError
func (e NoSuchPartitionError) Error() string {
	return fmt.Sprintf("Partition %d does not exist in this source", e.Index)
}
