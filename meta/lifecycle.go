// Package meta implements the dataset lifecycle: resolving, creating and
// conditionally updating persisted dataset definitions, and reconciling
// ingestion schemas against them.
package meta

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/colmap"
	"github.com/chunksink/chunksink/errors"
	"github.com/chunksink/chunksink/expr"
	"github.com/chunksink/chunksink/logging"
)

// Manager resolves, creates and conditionally updates dataset definitions
type Manager struct {
	store chunksink.MetaStore
	log   *slog.Logger
}

// CreateManager is a factory for Managers
func CreateManager(store chunksink.MetaStore, log *slog.Logger) *Manager {
	if log == nil {
		log = logging.CreateNopLogger()
	}
	return &Manager{store: store, log: log}
}

// Resolve returns the persisted definition for ref, or a NotFoundError
func (m *Manager) Resolve(ctx context.Context, ref chunksink.DatasetRef) (*chunksink.Dataset, error) {
	return m.store.GetDataset(ctx, ref)
}

// lifecycleAction is the outcome of dispatching over (existence, mode)
type lifecycleAction int

const (
	// actionCreate builds and persists a new dataset definition
	actionCreate lifecycleAction = iota
	// actionFail fails the request with an AlreadyExistsError, mutating nothing
	actionFail
	// actionRecreate deletes the existing definition and persists a rebuilt one
	actionRecreate
	// actionNoop leaves metadata untouched
	actionNoop
)

// resolveLifecycleAction is the exhaustive dispatch over every
// (existence, mode) pair. Each combination has distinct, load-bearing
// behavior; keep this a flat table rather than folding branches together.
func resolveLifecycleAction(exists bool, mode chunksink.WriteMode, resetSchema bool) (lifecycleAction, error) {
	if !exists {
		switch mode {
		case chunksink.Append, chunksink.Overwrite, chunksink.ErrorIfExists, chunksink.Ignore:
			return actionCreate, nil
		}
		return actionNoop, fmt.Errorf("Unknown write mode %v", mode)
	}
	switch mode {
	case chunksink.ErrorIfExists:
		return actionFail, nil
	case chunksink.Overwrite:
		if resetSchema {
			return actionRecreate, nil
		}
		return actionNoop, nil
	case chunksink.Append, chunksink.Ignore:
		return actionNoop, nil
	}
	return actionNoop, fmt.Errorf("Unknown write mode %v", mode)
}

// CreateOrUpdate resolves the dataset for ref and applies the lifecycle
// decision table: absent datasets are created (after key validation),
// ErrorIfExists on an existing dataset fails, Overwrite with resetSchema
// deletes and recreates, and every other combination is a metadata no-op.
// Key validation failures surface before any persistence occurs.
func (m *Manager) CreateOrUpdate(ctx context.Context, schema chunksink.Schema, ref chunksink.DatasetRef,
	rowKeys []string, segmentKey string, partitionKeys []string, chunkSize int,
	resetSchema bool, mode chunksink.WriteMode) error {
	_, err := m.store.GetDataset(ctx, ref)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	exists := err == nil

	action, err := resolveLifecycleAction(exists, mode, resetSchema)
	if err != nil {
		return err
	}
	switch action {
	case actionFail:
		return errors.AlreadyExistsError{Ref: ref.String()}
	case actionNoop:
		m.log.Debug("dataset definition unchanged", "dataset", ref.String(), "mode", mode.String())
		return nil
	case actionCreate:
		ds, err := buildDataset(schema, ref, rowKeys, segmentKey, partitionKeys, chunkSize)
		if err != nil {
			return err
		}
		m.log.Info("creating dataset", "dataset", ref.String())
		return m.store.CreateDataset(ctx, ds)
	case actionRecreate:
		// validate and build before deleting, so a bad request never leaves
		// the definition absent
		ds, err := buildDataset(schema, ref, rowKeys, segmentKey, partitionKeys, chunkSize)
		if err != nil {
			return err
		}
		m.log.Info("recreating dataset with reset schema", "dataset", ref.String())
		if err := m.store.DeleteDataset(ctx, ref); err != nil {
			return err
		}
		return m.store.CreateDataset(ctx, ds)
	}
	return fmt.Errorf("Unknown lifecycle action %d", action)
}

// buildDataset validates keys against the schema and assembles a new
// dataset definition, substituting the default constant partition key when
// none is supplied
func buildDataset(schema chunksink.Schema, ref chunksink.DatasetRef,
	rowKeys []string, segmentKey string, partitionKeys []string, chunkSize int) (*chunksink.Dataset, error) {
	if len(rowKeys) == 0 {
		return nil, errors.InvalidKeyError{Key: "", Kind: "row"}
	}
	for _, key := range rowKeys {
		if err := validateKey(key, "row", schema); err != nil {
			return nil, err
		}
	}
	if err := validateKey(segmentKey, "segment", schema); err != nil {
		return nil, err
	}
	if len(partitionKeys) == 0 {
		partitionKeys = []string{expr.DefaultPartitionKey}
	}
	for _, key := range partitionKeys {
		if err := validateKey(key, "partition", schema); err != nil {
			return nil, err
		}
	}
	defs, err := colmap.Map(schema)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]chunksink.StoreColumnType, len(defs))
	for _, def := range defs {
		columns[def.Name] = def.Type
	}
	return &chunksink.Dataset{
		Ref:           ref,
		RowKeys:       append([]string{}, rowKeys...),
		SegmentKey:    segmentKey,
		PartitionKeys: append([]string{}, partitionKeys...),
		ChunkSize:     chunkSize,
		Columns:       columns,
	}, nil
}

// validateKey checks that a key resolves to a schema column or parses as a
// recognized computed expression
func validateKey(key string, kind string, schema chunksink.Schema) error {
	if len(key) == 0 {
		return errors.InvalidKeyError{Key: key, Kind: kind}
	}
	if expr.IsComputed(key) {
		if err := expr.Validate(key, schema); err != nil {
			return errors.InvalidKeyError{Key: key, Kind: kind}
		}
		return nil
	}
	if !schema.HasColumn(key) {
		return errors.InvalidKeyError{Key: key, Kind: kind}
	}
	return nil
}
