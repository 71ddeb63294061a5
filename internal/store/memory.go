package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/tenure/internal/ledger"
)

var _ ledger.Storage = (*Memory)(nil)

// Memory keeps values in a map. It holds only the newest value per key.
//
// FailSaves makes every later Save fail, which tests use to exercise the
// ledger's rollback path.
type Memory struct {
	mu      sync.RWMutex
	values  map[string][]byte
	saveErr error
	saves   int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Load returns a copy of the value under key, or ErrNotFound.
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("load %q: %w", key, ErrNotFound)
	}
	return slices.Clone(value), nil
}

// Save stores a copy of value under key.
func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.values[key] = slices.Clone(value)
	m.saves++
	return nil
}

// Put seeds a raw value, bypassing FailSaves and the save counter.
func (m *Memory) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = slices.Clone(value)
}

// FailSaves makes subsequent saves return err. A nil err restores normal saves.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
