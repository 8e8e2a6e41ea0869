package schema

import (
	"fmt"

	"github.com/chunksink/chunksink"
)

type field struct {
	name    string
	colType chunksink.ColumnType
}

// schema is an ordered mapping from column names to tabular column types.
// Field order is insertion order; names are unique.
type schema struct {
	fields []field
	index  map[string]int
}

// CreateSchema is a factory for Schemas
func CreateSchema() chunksink.Schema {
	return &schema{
		fields: make([]field, 0),
		index:  make(map[string]int),
	}
}

// Clone returns a copy of this Schema
func (s *schema) Clone() chunksink.Schema {
	newFields := make([]field, len(s.fields))
	copy(newFields, s.fields)
	newIndex := make(map[string]int, len(s.index))
	for k, v := range s.index {
		newIndex[k] = v
	}
	return &schema{fields: newFields, index: newIndex}
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.fields)
}

// ColumnNames returns the names in this Schema, in field order
func (s *schema) ColumnNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// ColumnTypes returns the types in this Schema, in field order
func (s *schema) ColumnTypes() []chunksink.ColumnType {
	types := make([]chunksink.ColumnType, len(s.fields))
	for i, f := range s.fields {
		types[i] = f.colType
	}
	return types
}

// HasColumn returns true iff this Schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, ok := s.index[colName]
	return ok
}

// ColumnIndex returns the field position of the column with the given name
func (s *schema) ColumnIndex(colName string) (int, error) {
	idx, ok := s.index[colName]
	if !ok {
		return -1, fmt.Errorf("Schema does not contain column with name %s", colName)
	}
	return idx, nil
}

// ColumnType returns the type of the column with the given name
func (s *schema) ColumnType(colName string) (chunksink.ColumnType, error) {
	idx, err := s.ColumnIndex(colName)
	if err != nil {
		return nil, err
	}
	return s.fields[idx].colType, nil
}

// CreateColumn defines a new column within this Schema
func (s *schema) CreateColumn(colName string, colType chunksink.ColumnType) (chunksink.Schema, error) {
	if _, ok := s.index[colName]; ok {
		return nil, fmt.Errorf("Schema already contains column with name %s", colName)
	}
	s.index[colName] = len(s.fields)
	s.fields = append(s.fields, field{name: colName, colType: colType})
	return s, nil
}

// ForEachColumn iterates over the columns in this Schema, in field order
func (s *schema) ForEachColumn(fn func(name string, colType chunksink.ColumnType) error) error {
	for _, f := range s.fields {
		if err := fn(f.name, f.colType); err != nil {
			return err
		}
	}
	return nil
}
