package meta

import (
	"context"
	"sync"

	"github.com/chunksink/chunksink"
	"github.com/chunksink/chunksink/errors"
)

// memoryMetaStore persists dataset definitions in process memory,
// suitable for tests and embedded use
type memoryMetaStore struct {
	lock     sync.RWMutex
	datasets map[string]*chunksink.Dataset
}

// CreateMemoryMetaStore is a factory for in-memory MetaStores
func CreateMemoryMetaStore() chunksink.MetaStore {
	return &memoryMetaStore{datasets: make(map[string]*chunksink.Dataset)}
}

// GetDataset returns the persisted definition for ref, or a NotFoundError
func (m *memoryMetaStore) GetDataset(ctx context.Context, ref chunksink.DatasetRef) (*chunksink.Dataset, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	ds, ok := m.datasets[ref.String()]
	if !ok {
		return nil, errors.NotFoundError{Ref: ref.String()}
	}
	return ds.Clone(), nil
}

// CreateDataset persists a new definition, failing if one already exists
func (m *memoryMetaStore) CreateDataset(ctx context.Context, dataset *chunksink.Dataset) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	key := dataset.Ref.String()
	if _, ok := m.datasets[key]; ok {
		return errors.AlreadyExistsError{Ref: key}
	}
	m.datasets[key] = dataset.Clone()
	return nil
}

// DeleteDataset removes the definition for ref, if any
func (m *memoryMetaStore) DeleteDataset(ctx context.Context, ref chunksink.DatasetRef) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.datasets, ref.String())
	return nil
}

// AddColumn appends a column to the definition for ref
func (m *memoryMetaStore) AddColumn(ctx context.Context, ref chunksink.DatasetRef, col chunksink.ColumnDef) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	ds, ok := m.datasets[ref.String()]
	if !ok {
		return errors.NotFoundError{Ref: ref.String()}
	}
	ds.Columns[col.Name] = col.Type
	return nil
}
