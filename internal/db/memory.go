package db

import (
	"context"
	"sync"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// MemoryStore is the in-memory persistence gateway, used for tests and
// database-less runs. State is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.SessionSnapshot
	chunks   map[string]map[model.ChunkID][]model.OverlayPoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.SessionSnapshot),
		chunks:   make(map[string]map[model.ChunkID][]model.OverlayPoint),
	}
}

func (m *MemoryStore) SaveSession(_ context.Context, snap model.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[snap.GameID] = snap
	return nil
}

func (m *MemoryStore) LoadSession(_ context.Context, gameID string) (*model.SessionSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.sessions[gameID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *MemoryStore) SaveChunk(_ context.Context, gameID string, id model.ChunkID, overlay []model.OverlayPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.chunks[gameID]
	if !ok {
		byID = make(map[model.ChunkID][]model.OverlayPoint)
		m.chunks[gameID] = byID
	}
	if len(overlay) == 0 {
		delete(byID, id)
		return nil
	}
	byID[id] = append([]model.OverlayPoint(nil), overlay...)
	return nil
}

func (m *MemoryStore) LoadChunk(_ context.Context, gameID string, id model.ChunkID) ([]model.OverlayPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	overlay, ok := m.chunks[gameID][id]
	if !ok {
		return nil, nil
	}
	return append([]model.OverlayPoint(nil), overlay...), nil
}
