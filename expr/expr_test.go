package expr

import (
	"testing"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/datasource"
	"github.com/chunksink/chunksink/schema"
	"github.com/stretchr/testify/require"
)

func createTestSchema(t *testing.T) chunksink.Schema {
	s := schema.CreateSchema()
	_, err := s.CreateColumn("ts", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	_, err = s.CreateColumn("region", &chunksink.StringColumnType{})
	require.Nil(t, err)
	return s
}

func TestIsComputed(t *testing.T) {
	require.True(t, IsComputed(":const 0"))
	require.True(t, IsComputed(DefaultPartitionKey))
	require.False(t, IsComputed("region"))
}

func TestValidate(t *testing.T) {
	s := createTestSchema(t)
	require.Nil(t, Validate(":const 0", s))
	require.Nil(t, Validate(":hash region 16", s))
	require.Nil(t, Validate(":round ts 10000", s))

	require.NotNil(t, Validate(":const", s))
	require.NotNil(t, Validate(":hash missing 16", s))
	require.NotNil(t, Validate(":hash region 0", s))
	require.NotNil(t, Validate(":round ts -5", s))
	require.NotNil(t, Validate(":bogus region", s))
}

func TestEvalConst(t *testing.T) {
	s := createTestSchema(t)
	row, err := datasource.CreateRow(s, []interface{}{int64(42), "us-east"})
	require.Nil(t, err)
	v, err := Eval(":const 0", row)
	require.Nil(t, err)
	require.Equal(t, "0", v)
}

func TestEvalHashStableAndBounded(t *testing.T) {
	s := createTestSchema(t)
	row, err := datasource.CreateRow(s, []interface{}{int64(42), "us-east"})
	require.Nil(t, err)

	v1, err := Eval(":hash region 16", row)
	require.Nil(t, err)
	v2, err := Eval(":hash region 16", row)
	require.Nil(t, err)
	require.Equal(t, v1, v2)
	require.Less(t, v1.(uint64), uint64(16))
}

func TestEvalRound(t *testing.T) {
	s := createTestSchema(t)
	row, err := datasource.CreateRow(s, []interface{}{int64(12345), "us-east"})
	require.Nil(t, err)
	v, err := Eval(":round ts 1000", row)
	require.Nil(t, err)
	require.Equal(t, int64(12000), v)
}
