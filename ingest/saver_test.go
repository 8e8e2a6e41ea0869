package ingest

import (
	"context"
	"testing"

	"github.com/chunksink/chunksink"
	coordmem "github.com/chunksink/chunksink/coordinator/memory"
	"github.com/chunksink/chunksink/errors"
	"github.com/chunksink/chunksink/meta"
	"github.com/chunksink/chunksink/schema"
	"github.com/stretchr/testify/require"
)

func createTestSaver(t *testing.T, coord *coordmem.Coordinator) (*Saver, chunksink.MetaStore) {
	store := meta.CreateMemoryMetaStore()
	manager := meta.CreateManager(store, nil)
	orch := createTestOrchestrator(t, coord, nil)
	return CreateSaver(manager, orch, nil), store
}

func TestSaveCreatesDatasetAndIngestsRows(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, store := createTestSaver(t, coord)
	s := createMetricsSchema(t)
	src := createMetricsSource(t, s, 3, 100)

	err := saver.Save(context.Background(), src, ref, []string{"ts"}, "region", []string{"region"},
		chunksink.Append, &chunksink.SaveOptions{ChunkSize: 32})
	require.Nil(t, err)

	ds, err := store.GetDataset(context.Background(), ref)
	require.Nil(t, err)
	require.Equal(t, []string{"ts"}, ds.RowKeys)
	require.Equal(t, "region", ds.SegmentKey)
	require.Equal(t, []string{"region"}, ds.PartitionKeys)
	require.Equal(t, map[string]chunksink.StoreColumnType{
		"ts":     chunksink.StoreLong,
		"region": chunksink.StoreString,
		"value":  chunksink.StoreDouble,
	}, ds.Columns)
	require.Equal(t, 300, coord.NumRows(ref, 0))
	require.Equal(t, []string{"prod.metrics/0"}, coord.Flushes())
}

func TestSaveIgnoreModeSkipsExistingDataset(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, _ := createTestSaver(t, coord)
	s := createMetricsSchema(t)

	err := saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append, nil)
	require.Nil(t, err)
	require.Equal(t, 10, coord.NumRows(ref, 0))

	// second save in Ignore mode must not write a single row
	err = saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Ignore, nil)
	require.Nil(t, err)
	require.Equal(t, 10, coord.NumRows(ref, 0))
}

func TestSaveIgnoreModeCreatesAbsentDataset(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, store := createTestSaver(t, coord)
	s := createMetricsSchema(t)

	err := saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Ignore, nil)
	require.Nil(t, err)
	_, err = store.GetDataset(context.Background(), ref)
	require.Nil(t, err)
	require.Equal(t, 10, coord.NumRows(ref, 0))
}

func TestSaveErrorIfExistsFailsOnExistingDataset(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, _ := createTestSaver(t, coord)
	s := createMetricsSchema(t)

	require.Nil(t, saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append, nil))

	err := saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.ErrorIfExists, nil)
	require.IsType(t, errors.AlreadyExistsError{}, err)
	require.Equal(t, 10, coord.NumRows(ref, 0))
}

func TestSaveOverwriteWithResetSchemaReplacesDefinition(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, store := createTestSaver(t, coord)
	s := createMetricsSchema(t)

	require.Nil(t, saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append, nil))

	narrow := schema.CreateSchema()
	narrow, err := narrow.CreateColumn("ts", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	narrow, err = narrow.CreateColumn("host", &chunksink.StringColumnType{})
	require.Nil(t, err)
	src := createSource(t, narrow, [][]interface{}{{int64(1), "web-1"}})

	err = saver.Save(context.Background(), src, ref, []string{"ts"}, "host", []string{"host"},
		chunksink.Overwrite, &chunksink.SaveOptions{ResetSchema: true})
	require.Nil(t, err)

	ds, err := store.GetDataset(context.Background(), ref)
	require.Nil(t, err)
	require.Equal(t, map[string]chunksink.StoreColumnType{
		"ts":   chunksink.StoreLong,
		"host": chunksink.StoreString,
	}, ds.Columns)
	require.Equal(t, "host", ds.SegmentKey)
	require.Equal(t, []string{"prod.metrics/0"}, coord.Truncations())
	require.Equal(t, 1, coord.NumRows(ref, 0))
}

func TestSaveReconcilesNewColumns(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, store := createTestSaver(t, coord)
	s := createMetricsSchema(t)

	require.Nil(t, saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append, nil))

	wider, err := s.Clone().CreateColumn("host", &chunksink.StringColumnType{})
	require.Nil(t, err)
	src := createSource(t, wider, [][]interface{}{{int64(11), "us-east", 0.5, "web-1"}})

	require.Nil(t, saver.Save(context.Background(), src, ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append, nil))

	ds, err := store.GetDataset(context.Background(), ref)
	require.Nil(t, err)
	require.Equal(t, chunksink.StoreString, ds.Columns["host"])
	require.Equal(t, 11, coord.NumRows(ref, 0))
}

func TestSaveColumnConflictFailsBeforeAnyRow(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, _ := createTestSaver(t, coord)
	s := createMetricsSchema(t)

	require.Nil(t, saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append, nil))

	conflicting := schema.CreateSchema()
	conflicting, err := conflicting.CreateColumn("ts", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	conflicting, err = conflicting.CreateColumn("region", &chunksink.StringColumnType{})
	require.Nil(t, err)
	conflicting, err = conflicting.CreateColumn("value", &chunksink.StringColumnType{})
	require.Nil(t, err)
	src := createSource(t, conflicting, [][]interface{}{{int64(11), "us-east", "not-a-double"}})

	err = saver.Save(context.Background(), src, ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append, nil)
	require.IsType(t, errors.ColumnTypeConflictError{}, err)
	require.Equal(t, 10, coord.NumRows(ref, 0))
}

type unmappableColumnType struct{}

func (c *unmappableColumnType) Name() string                  { return "unmappable" }
func (c *unmappableColumnType) ToString(v interface{}) string { return "unmappable" }

func TestSaveUnsupportedColumnTypeFailsBeforeCreation(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, store := createTestSaver(t, coord)

	s := schema.CreateSchema()
	s, err := s.CreateColumn("ts", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	s, err = s.CreateColumn("payload", &unmappableColumnType{})
	require.Nil(t, err)
	src := createSource(t, s, [][]interface{}{{int64(1), struct{}{}}})

	err = saver.Save(context.Background(), src, ref,
		[]string{"ts"}, "ts", nil, chunksink.Append, nil)
	require.IsType(t, errors.UnsupportedColumnTypeError{}, err)

	_, err = store.GetDataset(context.Background(), ref)
	require.True(t, errors.IsNotFound(err))
	require.Equal(t, 0, coord.NumRows(ref, 0))
}

func TestSaveRejectsNegativeVersion(t *testing.T) {
	ref := chunksink.DatasetRef{Namespace: "prod", Name: "metrics"}
	coord := coordmem.CreateCoordinator()
	saver, _ := createTestSaver(t, coord)
	s := createMetricsSchema(t)

	err := saver.Save(context.Background(), createMetricsSource(t, s, 1, 10), ref,
		[]string{"ts"}, "region", []string{"region"}, chunksink.Append,
		&chunksink.SaveOptions{Version: -1})
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "Version must be >= 0")
}
