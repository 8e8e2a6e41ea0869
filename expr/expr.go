// Package expr implements the computed key expressions recognized by dataset
// definitions. A computed expression starts with a colon:
//
//	:const <value>          a constant synthetic column
//	:hash <column> <n>      xxhash of a column's value, bucketed into n shards
//	:round <column> <n>     a numeric column rounded down to a multiple of n
//
// Computed expressions may appear wherever a dataset key expects a column name.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/chunksink/chunksink"
)

// DefaultPartitionKey is the synthetic constant partition key substituted
// when a dataset is created with no partition keys
const DefaultPartitionKey = ":const 0"

// IsComputed returns true iff key is a computed expression rather than a column name
func IsComputed(key string) bool {
	return strings.HasPrefix(key, ":")
}

// Validate checks that a computed expression is recognized and that any
// column it references resolves against the given schema
func Validate(key string, s chunksink.Schema) error {
	parts := strings.Fields(key)
	if len(parts) == 0 {
		return fmt.Errorf("Empty computed expression")
	}
	switch parts[0] {
	case ":const":
		if len(parts) != 2 {
			return fmt.Errorf("Expression %s must have exactly one argument", key)
		}
		return nil
	case ":hash":
		if len(parts) != 3 {
			return fmt.Errorf("Expression %s must have exactly two arguments", key)
		}
		if !s.HasColumn(parts[1]) {
			return fmt.Errorf("Expression %s references unknown column %s", key, parts[1])
		}
		buckets, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil || buckets == 0 {
			return fmt.Errorf("Expression %s bucket count must be a positive integer", key)
		}
		return nil
	case ":round":
		if len(parts) != 3 {
			return fmt.Errorf("Expression %s must have exactly two arguments", key)
		}
		if !s.HasColumn(parts[1]) {
			return fmt.Errorf("Expression %s references unknown column %s", key, parts[1])
		}
		granularity, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || granularity <= 0 {
			return fmt.Errorf("Expression %s granularity must be a positive integer", key)
		}
		return nil
	default:
		return fmt.Errorf("Unrecognized computed expression %s", parts[0])
	}
}

// Eval evaluates a computed expression against a row, producing the
// synthetic column value
func Eval(key string, row chunksink.Row) (interface{}, error) {
	parts := strings.Fields(key)
	if len(parts) == 0 {
		return nil, fmt.Errorf("Empty computed expression")
	}
	switch parts[0] {
	case ":const":
		return parts[1], nil
	case ":hash":
		v, err := row.Get(parts[1])
		if err != nil {
			return nil, err
		}
		buckets, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return nil, err
		}
		return hashBucket(fmt.Sprintf("%v", v), buckets), nil
	case ":round":
		v, err := row.Get(parts[1])
		if err != nil {
			return nil, err
		}
		granularity, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, err
		}
		n, err := toInt64(v)
		if err != nil {
			return nil, fmt.Errorf("Expression %s: %w", key, err)
		}
		return n - (n % granularity), nil
	default:
		return nil, fmt.Errorf("Unrecognized computed expression %s", parts[0])
	}
}

// hashBucket assigns a value to one of buckets shards
func hashBucket(v string, buckets uint64) uint64 {
	return xxhash.Sum64String(v) % buckets
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("Value %v is not an integer", v)
	}
}
