// Package datasource provides shared building blocks for RowSource
// implementations, along with the built-in sources in its subpackages.
package datasource

import (
	"fmt"
	"strings"

	"github.com/chunksink/chunksink"
)

// row is a value-slice backed Row. Values are in schema field order.
type row struct {
	schema chunksink.Schema
	values []interface{}
}

// CreateRow produces a Row from values in schema field order (useful for the
// implementation of RowSources)
func CreateRow(schema chunksink.Schema, values []interface{}) (chunksink.Row, error) {
	if len(values) != schema.NumColumns() {
		return nil, fmt.Errorf("Row width %d is not compatible with Schema width %d", len(values), schema.NumColumns())
	}
	return &row{schema: schema, values: values}, nil
}

// Schema returns a read-only copy of the schema for this row
func (r *row) Schema() chunksink.Schema {
	return r.schema.Clone()
}

// Get returns the value of the column with the given name, if it exists
func (r *row) Get(colName string) (interface{}, error) {
	idx, err := r.schema.ColumnIndex(colName)
	if err != nil {
		return nil, err
	}
	return r.values[idx], nil
}

// Values returns this row's values, in schema field order
func (r *row) Values() []interface{} {
	return r.values
}

// ToString returns a string representation of this row
func (r *row) ToString() string {
	var res strings.Builder
	fmt.Fprint(&res, "{")
	types := r.schema.ColumnTypes()
	for i, name := range r.schema.ColumnNames() {
		if i > 0 {
			fmt.Fprint(&res, ", ")
		}
		fmt.Fprintf(&res, "%s: %s", name, types[i].ToString(r.values[i]))
	}
	fmt.Fprint(&res, "}")
	return res.String()
}
