package chunksink

import (
	"fmt"
	"strings"
	"time"
)

// ColumnType is an interface which is implemented to define a supported tabular
// column type, as produced by the upstream schema system. Chunksink provides
// built-in types covering everything the compute engine can emit.
type ColumnType interface {
	Name() string                  // returns the canonical name of this type, for logging and error messages
	ToString(v interface{}) string // produces a string representation of a value of this type
}

// StoreColumnType enumerates the column types supported by the chunk store.
type StoreColumnType string

const (
	// StoreInt is a 32-bit integer chunk store column
	StoreInt StoreColumnType = "int"
	// StoreLong is a 64-bit integer chunk store column
	StoreLong StoreColumnType = "long"
	// StoreDouble is a 64-bit floating point chunk store column
	StoreDouble StoreColumnType = "double"
	// StoreString is a variable-length string chunk store column
	StoreString StoreColumnType = "string"
	// StoreBool is a boolean chunk store column
	StoreBool StoreColumnType = "bool"
	// StoreTimestamp is a nanosecond-precision timestamp chunk store column
	StoreTimestamp StoreColumnType = "timestamp"
	// StoreBlob is a variable-length binary chunk store column
	StoreBlob StoreColumnType = "blob"
)

// ColumnDef pairs a column name with its chunk store type
type ColumnDef struct {
	Name string
	Type StoreColumnType
}

// BoolColumnType is a column type which stores a boolean value
type BoolColumnType struct{}

// Name of a BoolColumnType
func (b *BoolColumnType) Name() string {
	return "bool"
}

// ToString produces a string representation of a BoolColumnType value
func (b *BoolColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%t", v.(bool))
}

// Int8ColumnType is a column type which stores an int8 value
type Int8ColumnType struct{}

// Name of an Int8ColumnType
func (b *Int8ColumnType) Name() string {
	return "int8"
}

// ToString produces a string representation of an Int8ColumnType value
func (b *Int8ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int8))
}

// Int16ColumnType is a column type which stores an int16 value
type Int16ColumnType struct{}

// Name of an Int16ColumnType
func (b *Int16ColumnType) Name() string {
	return "int16"
}

// ToString produces a string representation of an Int16ColumnType value
func (b *Int16ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int16))
}

// Int32ColumnType is a column type which stores an int32 value
type Int32ColumnType struct{}

// Name of an Int32ColumnType
func (b *Int32ColumnType) Name() string {
	return "int32"
}

// ToString produces a string representation of an Int32ColumnType value
func (b *Int32ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int32))
}

// Int64ColumnType is a column type which stores an int64 value
type Int64ColumnType struct{}

// Name of an Int64ColumnType
func (b *Int64ColumnType) Name() string {
	return "int64"
}

// ToString produces a string representation of an Int64ColumnType value
func (b *Int64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int64))
}

// Uint8ColumnType is a column type which stores a uint8 value
type Uint8ColumnType struct{}

// Name of a Uint8ColumnType
func (b *Uint8ColumnType) Name() string {
	return "uint8"
}

// ToString produces a string representation of a Uint8ColumnType value
func (b *Uint8ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(uint8))
}

// Uint16ColumnType is a column type which stores a uint16 value
type Uint16ColumnType struct{}

// Name of a Uint16ColumnType
func (b *Uint16ColumnType) Name() string {
	return "uint16"
}

// ToString produces a string representation of a Uint16ColumnType value
func (b *Uint16ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(uint16))
}

// Uint32ColumnType is a column type which stores a uint32 value
type Uint32ColumnType struct{}

// Name of a Uint32ColumnType
func (b *Uint32ColumnType) Name() string {
	return "uint32"
}

// ToString produces a string representation of a Uint32ColumnType value
func (b *Uint32ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(uint32))
}

// Uint64ColumnType is a column type which stores a uint64 value
type Uint64ColumnType struct{}

// Name of a Uint64ColumnType
func (b *Uint64ColumnType) Name() string {
	return "uint64"
}

// ToString produces a string representation of a Uint64ColumnType value
func (b *Uint64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(uint64))
}

// Float32ColumnType is a column type which stores a float32 value
type Float32ColumnType struct{}

// Name of a Float32ColumnType
func (b *Float32ColumnType) Name() string {
	return "float32"
}

// ToString produces a string representation of a Float32ColumnType value
func (b *Float32ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%f", v.(float32))
}

// Float64ColumnType is a column type which stores a float64 value
type Float64ColumnType struct{}

// Name of a Float64ColumnType
func (b *Float64ColumnType) Name() string {
	return "float64"
}

// ToString produces a string representation of a Float64ColumnType value
func (b *Float64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%f", v.(float64))
}

// StringColumnType is a column type which stores a variable-length string value
type StringColumnType struct{}

// Name of a StringColumnType
func (b *StringColumnType) Name() string {
	return "string"
}

// ToString produces a string representation of a StringColumnType value
func (b *StringColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("\"%s\"", v.(string))
}

// BytesColumnType is a column type which stores a variable-length byte array
type BytesColumnType struct{}

// Name of a BytesColumnType
func (b *BytesColumnType) Name() string {
	return "bytes"
}

// ToString produces a string representation of a BytesColumnType value
func (b *BytesColumnType) ToString(v interface{}) string {
	bytes := v.([]byte)
	var res strings.Builder
	fmt.Fprint(&res, "[")
	i := 0
	for _, b := range bytes {
		// don't print more than 5 entries
		if i > 5 {
			fmt.Fprintf(&res, "... %d more", len(bytes)-5)
			break
		}
		fmt.Fprintf(&res, "%x", b)
		i++
	}
	fmt.Fprint(&res, "]")
	return res.String()
}

// TimeColumnType is a column type which stores a time.Time value
type TimeColumnType struct{}

// Name of a TimeColumnType
func (b *TimeColumnType) Name() string {
	return "time"
}

// ToString produces a string representation of a TimeColumnType value
func (b *TimeColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("\"%s\"", v.(time.Time).String())
}
