// Package colmap converts tabular schemas into chunk store column definitions.
package colmap

import (
	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/errors"
)

// Map converts a tabular Schema into an equivalent ordered sequence of chunk
// store column definitions. The mapping is total over all built-in tabular
// column types; a field with no mapping fails with an
// UnsupportedColumnTypeError naming the field. Map has no side effects.
func Map(s chunksink.Schema) ([]chunksink.ColumnDef, error) {
	defs := make([]chunksink.ColumnDef, 0, s.NumColumns())
	err := s.ForEachColumn(func(name string, colType chunksink.ColumnType) error {
		storeType, ok := mapType(colType)
		if !ok {
			return errors.UnsupportedColumnTypeError{Column: name, Type: colType.Name()}
		}
		defs = append(defs, chunksink.ColumnDef{Name: name, Type: storeType})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// mapType translates a single tabular column type into its chunk store type
func mapType(colType chunksink.ColumnType) (chunksink.StoreColumnType, bool) {
	switch colType.(type) {
	case *chunksink.BoolColumnType:
		return chunksink.StoreBool, true
	case *chunksink.Int8ColumnType, *chunksink.Int16ColumnType, *chunksink.Int32ColumnType,
		*chunksink.Uint8ColumnType, *chunksink.Uint16ColumnType:
		return chunksink.StoreInt, true
	case *chunksink.Int64ColumnType, *chunksink.Uint32ColumnType, *chunksink.Uint64ColumnType:
		return chunksink.StoreLong, true
	case *chunksink.Float32ColumnType, *chunksink.Float64ColumnType:
		return chunksink.StoreDouble, true
	case *chunksink.StringColumnType:
		return chunksink.StoreString, true
	case *chunksink.BytesColumnType:
		return chunksink.StoreBlob, true
	case *chunksink.TimeColumnType:
		return chunksink.StoreTimestamp, true
	default:
		return "", false
	}
}
