// Package jsonl provides a RowSource over JSON lines data. Columns are
// extracted lazily from each document using their column name, which should
// be a gjson path. Values within the JSON which do not correspond to a
// Schema column are ignored.
package jsonl

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/datasource"
	"github.com/chunksink/chunksink/errors"
	"github.com/tidwall/gjson"
)

// Conf configures a JSONL RowSource
type Conf struct {
	PartitionSize int    // The maximum number of rows per partition. Defaults to 128.
	TimeFormat    string // The format used to parse TimeColumnType values. Defaults to time.RFC3339.
	MaxBufferSize int    // Maximum size in bytes of the buffer used to read lines
}

// CreateRowSource reads JSONL documents from r, splitting them into
// partitions of at most conf.PartitionSize rows
func CreateRowSource(r io.Reader, schema chunksink.Schema, conf *Conf) (chunksink.RowSource, error) {
	if conf == nil {
		conf = &Conf{}
	}
	if conf.PartitionSize == 0 {
		conf.PartitionSize = 128
	}
	if conf.TimeFormat == "" {
		conf.TimeFormat = time.RFC3339
	}
	if conf.MaxBufferSize == 0 {
		conf.MaxBufferSize = bufio.MaxScanTokenSize
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), conf.MaxBufferSize)

	names := schema.ColumnNames()
	types := schema.ColumnTypes()
	partitions := make([][][]interface{}, 0)
	current := make([][]interface{}, 0, conf.PartitionSize)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		doc := gjson.Parse(line)
		values := make([]interface{}, len(names))
		for i, name := range names {
			v, err := parseValue(doc.Get(name), name, types[i], conf.TimeFormat)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		current = append(current, values)
		if len(current) == conf.PartitionSize {
			partitions = append(partitions, current)
			current = make([][]interface{}, 0, conf.PartitionSize)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current) > 0 || len(partitions) == 0 {
		partitions = append(partitions, current)
	}
	return &rowSource{schema: schema, partitions: partitions}, nil
}

// parseValue converts a gjson result into a value of the given column type
func parseValue(res gjson.Result, colName string, colType chunksink.ColumnType, timeFormat string) (interface{}, error) {
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	switch colType.(type) {
	case *chunksink.BoolColumnType:
		if !res.IsBool() {
			return nil, fmt.Errorf("Column %s was not a boolean. Was: %s", colName, res.Raw)
		}
		return res.Bool(), nil
	case *chunksink.Int8ColumnType:
		return int8(res.Int()), nil
	case *chunksink.Int16ColumnType:
		return int16(res.Int()), nil
	case *chunksink.Int32ColumnType:
		return int32(res.Int()), nil
	case *chunksink.Int64ColumnType:
		return res.Int(), nil
	case *chunksink.Uint8ColumnType:
		return uint8(res.Uint()), nil
	case *chunksink.Uint16ColumnType:
		return uint16(res.Uint()), nil
	case *chunksink.Uint32ColumnType:
		return uint32(res.Uint()), nil
	case *chunksink.Uint64ColumnType:
		return res.Uint(), nil
	case *chunksink.Float32ColumnType:
		return float32(res.Float()), nil
	case *chunksink.Float64ColumnType:
		return res.Float(), nil
	case *chunksink.StringColumnType:
		return res.String(), nil
	case *chunksink.BytesColumnType:
		return []byte(res.String()), nil
	case *chunksink.TimeColumnType:
		tval, err := time.Parse(timeFormat, res.String())
		if err != nil {
			return nil, fmt.Errorf("Column %s could not be parsed as datetime with format %s. Was: %s", colName, timeFormat, res.Raw)
		}
		return tval, nil
	default:
		return nil, fmt.Errorf("JSONL parsing does not support column type %T", colType)
	}
}

type rowSource struct {
	schema     chunksink.Schema
	partitions [][][]interface{}
}

// Schema describes the fields of this source's rows
func (s *rowSource) Schema() chunksink.Schema {
	return s.schema
}

// NumPartitions returns the number of partitions this source divides into
func (s *rowSource) NumPartitions() int {
	return len(s.partitions)
}

// Partition returns a RowIterator over the rows of the given partition
func (s *rowSource) Partition(idx int) (chunksink.RowIterator, error) {
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
