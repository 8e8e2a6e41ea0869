package chunksink

// Schema is an ordered mapping from column names to tabular column types.
// It describes the shape of rows produced by a RowSource, and is the input
// to column mapping and dataset creation.
type Schema interface {
	Clone() Schema                                                      // Clone returns a copy of this Schema
	NumColumns() int                                                    // NumColumns returns the number of columns in this Schema
	ColumnNames() []string                                              // ColumnNames returns the names in this Schema, in field order
	ColumnTypes() []ColumnType                                          // ColumnTypes returns the types in this Schema, in field order
	HasColumn(colName string) bool                                      // HasColumn returns true iff this Schema contains a column with the given name
	ColumnIndex(colName string) (int, error)                            // ColumnIndex returns the field position of the column with the given name
	ColumnType(colName string) (ColumnType, error)                      // ColumnType returns the type of the column with the given name
	CreateColumn(colName string, colType ColumnType) (Schema, error)    // CreateColumn defines a new column within this Schema
	ForEachColumn(fn func(name string, colType ColumnType) error) error // ForEachColumn iterates over the columns in this Schema, in field order
}
