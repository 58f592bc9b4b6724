package snapshot

import (
	"sort"
	"sync"
	"time"

	"github.com/randalmurphal/flatyml/pkg/flatyml"
)

// MemoryStore is an in-memory snapshot store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]storedSnapshot // id -> snapshot
	closed bool
}

type storedSnapshot struct {
	info Info
	snap flatyml.Snapshot
}

// NewMemoryStore creates a new in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]storedSnapshot),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(source string, snap flatyml.Snapshot) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Info{}, ErrStoreClosed
	}

	seq := 1
	for _, s := range m.data {
		if s.info.Source == source && s.info.Sequence >= seq {
			seq = s.info.Sequence + 1
		}
	}

	info := Info{
		ID:        newID(),
		Source:    source,
		Sequence:  seq,
		Timestamp: time.Now().UTC(),
		Entries:   len(snap),
	}
	m.data[info.ID] = storedSnapshot{info: info, snap: append(flatyml.Snapshot(nil), snap...)}
	return info, nil
}

// Load implements Store.
func (m *MemoryStore) Load(id string) (flatyml.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	s, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append(flatyml.Snapshot(nil), s.snap...), nil
}

// List implements Store.
func (m *MemoryStore) List(source string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := []Info{}
	for _, s := range m.data {
		if s.info.Source == source {
			infos = append(infos, s.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.data, id)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
