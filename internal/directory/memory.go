package directory

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Directory, used for the single-node deployment and
// in tests.
type Memory struct {
	mu         sync.RWMutex
	byUsername map[string]*Principal
	byID       map[string]*Principal
}

var _ Directory = (*Memory)(nil)

// NewMemory builds a directory from the given principals.
func NewMemory(principals ...*Principal) *Memory {
	m := &Memory{
		byUsername: make(map[string]*Principal, len(principals)),
		byID:       make(map[string]*Principal, len(principals)),
	}
	for _, p := range principals {
		m.Add(p)
	}
	return m
}

// Add registers a principal. The last write wins on username collision;
// fixtures are expected to keep usernames unique.
func (m *Memory) Add(p *Principal) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byUsername[strings.ToLower(cp.Username)] = &cp
	m.byID[cp.ID] = &cp
}

// Remove deletes a principal by id. Used by tests to model a subject removed
// after token issuance.
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		delete(m.byUsername, strings.ToLower(p.Username))
		delete(m.byID, id)
	}
}

func (m *Memory) FindByUsername(ctx context.Context, username string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) FindByID(ctx context.Context, id string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}
