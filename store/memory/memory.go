// Package memory provides an in-memory ledger.KV (for testing/dev).
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/warp/sales-ledger/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte

	// FailWrites makes every write return this error. Tests use it to
	// exercise persistence failures.
	FailWrites error
}

var _ ledger.KV = (*Memory)(nil)

func New() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.values[key] = slices.Clone(value)
	return nil
}

// SaveBatch writes all entries or none of them.
func (m *Memory) SaveBatch(_ context.Context, entries []ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}

	// Stage into a copy and swap, so a partial batch is never visible.
	staged := maps.Clone(m.values)
	for _, e := range entries {
		staged[e.Key] = slices.Clone(e.Value)
	}
	m.values = staged
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Keys lists stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.values))
}
