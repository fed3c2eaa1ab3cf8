package cache

import (
	"context"
	"sync"

	"outreach/pkg/types"
)

// Memory is the in-process cache used in tests and single-node deployments.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]*types.Request
}

var _ Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[Key]*types.Request)}
}

func (m *Memory) GetRequest(_ context.Context, key Key) (*types.Request, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	request, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return request.Clone(), true
}

func (m *Memory) Snapshot(_ context.Context, key Key) Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	request, ok := m.entries[key]
	return Snapshot{Key: key, Request: request.Clone(), Existed: ok}
}

func (m *Memory) SpeculativeWrite(_ context.Context, key Key, request *types.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = request.Clone()
}

func (m *Memory) Rollback(_ context.Context, snapshot Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !snapshot.Existed {
		delete(m.entries, snapshot.Key)
		return
	}
	m.entries[snapshot.Key] = snapshot.Request.Clone()
}

func (m *Memory) Invalidate(_ context.Context, keys ...Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
}
