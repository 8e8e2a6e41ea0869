package meta

import (
	"context"
	"testing"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/errors"
	"github.com/chunksink/chunksink/expr"
	"github.com/chunksink/chunksink/schema"
	"github.com/stretchr/testify/require"
)

func createMetricsSchema(t *testing.T) chunksink.Schema {
	s := schema.CreateSchema()
	_, err := s.CreateColumn("ts", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	_, err = s.CreateColumn("region", &chunksink.StringColumnType{})
	require.Nil(t, err)
	_, err = s.CreateColumn("value", &chunksink.Float64ColumnType{})
	require.Nil(t, err)
	return s
}

func metricsRef(t *testing.T) chunksink.DatasetRef {
	ref, err := chunksink.ParseDatasetRef("metrics")
	require.Nil(t, err)
	return ref
}

func TestCreateOrUpdateAbsentCreatesForEachMode(t *testing.T) {
	for _, mode := range []chunksink.WriteMode{chunksink.Append, chunksink.Overwrite, chunksink.ErrorIfExists, chunksink.Ignore} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := CreateMemoryMetaStore()
			m := CreateManager(store, nil)
			ref := metricsRef(t)

			err := m.CreateOrUpdate(ctx, createMetricsSchema(t), ref,
				[]string{"ts"}, "region", []string{"region"}, 0, false, mode)
			require.Nil(t, err)

			ds, err := m.Resolve(ctx, ref)
			require.Nil(t, err)
			require.Equal(t, []string{"ts"}, ds.RowKeys)
			require.Equal(t, "region", ds.SegmentKey)
			require.Equal(t, []string{"region"}, ds.PartitionKeys)
			require.Equal(t, map[string]chunksink.StoreColumnType{
				"ts":     chunksink.StoreLong,
				"region": chunksink.StoreString,
				"value":  chunksink.StoreDouble,
			}, ds.Columns)
		})
	}
}

func TestCreateOrUpdateDefaultPartitionKey(t *testing.T) {
	ctx := context.Background()
	m := CreateManager(CreateMemoryMetaStore(), nil)
	ref := metricsRef(t)

	err := m.CreateOrUpdate(ctx, createMetricsSchema(t), ref,
		[]string{"ts"}, "region", nil, 0, false, chunksink.Append)
	require.Nil(t, err)

	ds, err := m.Resolve(ctx, ref)
	require.Nil(t, err)
	require.Equal(t, []string{expr.DefaultPartitionKey}, ds.PartitionKeys)
}

func TestCreateOrUpdateComputedKeys(t *testing.T) {
	ctx := context.Background()
	m := CreateManager(CreateMemoryMetaStore(), nil)
	ref := metricsRef(t)

	err := m.CreateOrUpdate(ctx, createMetricsSchema(t), ref,
		[]string{"ts"}, ":round ts 10000", []string{":hash region 16"}, 0, false, chunksink.Append)
	require.Nil(t, err)

	ds, err := m.Resolve(ctx, ref)
	require.Nil(t, err)
	require.Equal(t, ":round ts 10000", ds.SegmentKey)
	require.Equal(t, []string{":hash region 16"}, ds.PartitionKeys)
}

func TestCreateOrUpdateInvalidKeyBeforePersistence(t *testing.T) {
	ctx := context.Background()
	store := CreateMemoryMetaStore()
	m := CreateManager(store, nil)
	ref := metricsRef(t)

	err := m.CreateOrUpdate(ctx, createMetricsSchema(t), ref,
		[]string{"missing"}, "region", nil, 0, false, chunksink.Append)
	require.NotNil(t, err)
	ike, ok := err.(errors.InvalidKeyError)
	require.True(t, ok)
	require.Equal(t, "missing", ike.Key)
	require.Equal(t, "row", ike.Kind)

	// nothing was persisted
	_, err = store.GetDataset(ctx, ref)
	require.True(t, errors.IsNotFound(err))
}

func TestCreateOrUpdateErrorIfExistsLeavesDefinitionUnchanged(t *testing.T) {
	ctx := context.Background()
	m := CreateManager(CreateMemoryMetaStore(), nil)
	ref := metricsRef(t)

	err := m.CreateOrUpdate(ctx, createMetricsSchema(t), ref,
		[]string{"ts"}, "region", []string{"region"}, 64, false, chunksink.Append)
	require.Nil(t, err)
	before, err := m.Resolve(ctx, ref)
	require.Nil(t, err)

	// attempt to replace with entirely different keys
	other := schema.CreateSchema()
	_, err = other.CreateColumn("id", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	err = m.CreateOrUpdate(ctx, other, ref,
		[]string{"id"}, "id", nil, 0, false, chunksink.ErrorIfExists)
	require.NotNil(t, err)
	_, ok := err.(errors.AlreadyExistsError)
	require.True(t, ok)

	after, err := m.Resolve(ctx, ref)
	require.Nil(t, err)
	require.Equal(t, before, after)
}

func TestCreateOrUpdateOverwriteResetSchemaReplacesColumns(t *testing.T) {
	ctx := context.Background()
	m := CreateManager(CreateMemoryMetaStore(), nil)
	ref := metricsRef(t)

	err := m.CreateOrUpdate(ctx, createMetricsSchema(t), ref,
		[]string{"ts"}, "region", []string{"region"}, 0, false, chunksink.Append)
	require.Nil(t, err)

	// the new column set is not a superset of the old
	replacement := schema.CreateSchema()
	_, err = replacement.CreateColumn("id", &chunksink.Int64ColumnType{})
	require.Nil(t, err)
	_, err = replacement.CreateColumn("score", &chunksink.Float64ColumnType{})
	require.Nil(t, err)
	err = m.CreateOrUpdate(ctx, replacement, ref,
		[]string{"id"}, "id", nil, 0, true, chunksink.Overwrite)
	require.Nil(t, err)

	ds, err := m.Resolve(ctx, ref)
	require.Nil(t, err)
	require.Equal(t, map[string]chunksink.StoreColumnType{
		"id":    chunksink.StoreLong,
		"score": chunksink.StoreDouble,
	}, ds.Columns)
	require.Equal(t, []string{"id"}, ds.RowKeys)
}

func TestCreateOrUpdateNoopModes(t *testing.T) {
	for _, tc := range []struct {
		name        string
		mode        chunksink.WriteMode
		resetSchema bool
	}{
		{"append", chunksink.Append, false},
		{"overwrite-without-reset", chunksink.Overwrite, false},
		{"ignore", chunksink.Ignore, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			m := CreateManager(CreateMemoryMetaStore(), nil)
			ref := metricsRef(t)

			err := m.CreateOrUpdate(ctx, createMetricsSchema(t), ref,
				[]string{"ts"}, "region", []string{"region"}, 0, false, chunksink.Append)
			require.Nil(t, err)
			before, err := m.Resolve(ctx, ref)
			require.Nil(t, err)

			other := schema.CreateSchema()
			_, err = other.CreateColumn("id", &chunksink.Int64ColumnType{})
			require.Nil(t, err)
			err = m.CreateOrUpdate(ctx, other, ref,
				[]string{"id"}, "id", nil, 0, tc.resetSchema, tc.mode)
			require.Nil(t, err)

			after, err := m.Resolve(ctx, ref)
			require.Nil(t, err)
			require.Equal(t, before, after)
		})
	}
}

func TestCreateOrUpdateEmptyRowKeys(t *testing.T) {
	ctx := context.Background()
	m := CreateManager(CreateMemoryMetaStore(), nil)
	err := m.CreateOrUpdate(ctx, createMetricsSchema(t), metricsRef(t),
		nil, "region", nil, 0, false, chunksink.Append)
	require.NotNil(t, err)
	_, ok := err.(errors.InvalidKeyError)
	require.True(t, ok)
}

func TestResolveLifecycleActionExhaustive(t *testing.T) {
	for _, tc := range []struct {
		exists      bool
		mode        chunksink.WriteMode
		resetSchema bool
		expected    lifecycleAction
	}{
		{false, chunksink.Append, false, actionCreate},
		{false, chunksink.Overwrite, false, actionCreate},
		{false, chunksink.Overwrite, true, actionCreate},
		{false, chunksink.ErrorIfExists, false, actionCreate},
		{false, chunksink.Ignore, false, actionCreate},
		{true, chunksink.Append, false, actionNoop},
		{true, chunksink.Append, true, actionNoop},
		{true, chunksink.Overwrite, false, actionNoop},
		{true, chunksink.Overwrite, true, actionRecreate},
		{true, chunksink.ErrorIfExists, false, actionFail},
		{true, chunksink.Ignore, false, actionNoop},
	} {
		action, err := resolveLifecycleAction(tc.exists, tc.mode, tc.resetSchema)
		require.Nil(t, err)
		require.Equal(t, tc.expected, action, "exists=%t mode=%s reset=%t", tc.exists, tc.mode.String(), tc.resetSchema)
	}
}
