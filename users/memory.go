package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRegistry struct {
	mu    sync.RWMutex
	users map[int64]User
}

// NewMemoryRegistry returns an in-process registry, used in tests and
// single-node setups without a database.
func NewMemoryRegistry() Registry {
	return &memoryRegistry{users: make(map[int64]User)}
}

func (m *memoryRegistry) Ensure(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.users[u.ID]; ok {
		cur.Username = u.Username
		cur.FirstName = u.FirstName
		m.users[u.ID] = cur
		return nil
	}
	if u.JoinedAt.IsZero() {
		u.JoinedAt = time.Now()
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryRegistry) Get(_ context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memoryRegistry) List(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRegistry) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memoryRegistry) Warn(_ context.Context, id int64, now time.Time) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Warnings++
	if u.Warnings >= MaxWarnings {
		u.Warnings = 0
		u.BlockedTo = now.Add(AutoBlockFor)
	}
	m.users[id] = u
	return u, nil
}

func (m *memoryRegistry) SetBlocked(_ context.Context, id int64, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Blocked = blocked
	u.BlockedTo = time.Time{}
	m.users[id] = u
	return nil
}
