// Package coordinator manages the process-scoped handle to the store
// coordinator. Worker processes lazily initialize a single handle which
// persists for the process's lifetime; there is no teardown.
package coordinator

import (
	"sync"

	"github.com/chunksink/chunksink"
)

var (
	handleLock sync.Mutex
	handle     chunksink.StoreCoordinator
)

// Init explicitly sets the process-wide coordinator handle, replacing any
// existing one. Intended for process startup, before partition tasks run.
func Init(h chunksink.StoreCoordinator) {
	handleLock.Lock()
	defer handleLock.Unlock()
	handle = h
}

// GetOrInit returns the process-wide coordinator handle, constructing it
// with factory on first call. Safe under concurrent and repeated invocation:
// racing first calls converge on a single handle, and factory runs at most
// once per successful initialization.
func GetOrInit(factory func() (chunksink.StoreCoordinator, error)) (chunksink.StoreCoordinator, error) {
	handleLock.Lock()
	defer handleLock.Unlock()
	if handle != nil {
		return handle, nil
	}
	h, err := factory()
	if err != nil {
		return nil, err
	}
	handle = h
	return handle, nil
}

// Reset clears the process-wide handle. Only useful in tests.
func Reset() {
	handleLock.Lock()
	defer handleLock.Unlock()
	handle = nil
}
