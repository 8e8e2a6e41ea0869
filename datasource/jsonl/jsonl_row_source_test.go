package jsonl

import (
	"strings"
	"testing"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/schema"
	"github.com/stretchr/testify/require"
)

func TestCreateRowSourceParsesDocuments(t *testing.T) {
	s := schema.CreateSchema()
	_, err := s.CreateColumn("ts", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	_, err = s.CreateColumn("meta.region", &chunksink.StringColumnType{})
	require.Nil(t, err)
	_, err = s.CreateColumn("value", &chunksink.Float64ColumnType{})
	require.Nil(t, err)

	docs := strings.Join([]string{
		`{"ts": 1, "meta": {"region": "us-east"}, "value": 0.5}`,
		`{"ts": 2, "meta": {"region": "eu-west"}, "value": 1.5}`,
		`{"ts": 3, "value": 2.5}`,
	}, "\n")

	src, err := CreateRowSource(strings.NewReader(docs), s, &Conf{PartitionSize: 2})
	require.Nil(t, err)
	require.Equal(t, 2, src.NumPartitions())

	it, err := src.Partition(0)
	require.Nil(t, err)
	row, err := it.NextRow()
	require.Nil(t, err)
	require.Equal(t, []interface{}{int64(1), "us-east", 0.5}, row.Values())
	row, err = it.NextRow()
	require.Nil(t, err)
	require.Equal(t, []interface{}{int64(2), "eu-west", 1.5}, row.Values())
	require.False(t, it.HasNextRow())

	// missing path yields a nil value
	it, err = src.Partition(1)
	require.Nil(t, err)
	row, err = it.NextRow()
	require.Nil(t, err)
	require.Nil(t, row.Values()[1])
}

func TestCreateRowSourceEmptyInput(t *testing.T) {
	s := schema.CreateSchema()
	_, err := s.CreateColumn("ts", &chunksink.Int64ColumnType{})
	require.Nil(t, err)

	src, err := CreateRowSource(strings.NewReader(""), s, nil)
	require.Nil(t, err)
	require.Equal(t, 1, src.NumPartitions())
	it, err := src.Partition(0)
	require.Nil(t, err)
	require.False(t, it.HasNextRow())
}
