package game

import (
	"sort"
	"sync"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// SubscriptionRouter tracks which connection watches which chunks, in both
// directions. Mutations happen under the session lease; reads (recipient
// resolution during fan-out) run concurrently, hence the RWMutex.
type SubscriptionRouter struct {
	mu      sync.RWMutex
	byConn  map[string]map[model.ChunkID]struct{}
	byChunk map[model.ChunkID]map[string]struct{}
}

func NewSubscriptionRouter() *SubscriptionRouter {
	return &SubscriptionRouter{
		byConn:  make(map[string]map[model.ChunkID]struct{}),
		byChunk: make(map[model.ChunkID]map[string]struct{}),
	}
}

// Subscribe records the connection as a watcher of the chunk.
// Returns false when it already was one.
func (r *SubscriptionRouter) Subscribe(connID string, id model.ChunkID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	chunks, ok := r.byConn[connID]
	if !ok {
		chunks = make(map[model.ChunkID]struct{})
		r.byConn[connID] = chunks
	}
	if _, dup := chunks[id]; dup {
		return false
	}
	chunks[id] = struct{}{}
	conns, ok := r.byChunk[id]
	if !ok {
		conns = make(map[string]struct{})
		r.byChunk[id] = conns
	}
	conns[connID] = struct{}{}
	return true
}

// Unsubscribe removes the watch. Returns false when it did not exist.
func (r *SubscriptionRouter) Unsubscribe(connID string, id model.ChunkID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	chunks, ok := r.byConn[connID]
	if !ok {
		return false
	}
	if _, watching := chunks[id]; !watching {
		return false
	}
	delete(chunks, id)
	if len(chunks) == 0 {
		delete(r.byConn, connID)
	}
	if conns := r.byChunk[id]; conns != nil {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.byChunk, id)
		}
	}
	return true
}

// DropConn removes every subscription of the connection and returns the
// chunks it was watching, so the caller can release subscriber counts.
func (r *SubscriptionRouter) DropConn(connID string) []model.ChunkID {
	r.mu.Lock()
	defer r.mu.Unlock()
	chunks := r.byConn[connID]
	delete(r.byConn, connID)
	released := make([]model.ChunkID, 0, len(chunks))
	for id := range chunks {
		released = append(released, id)
		if conns := r.byChunk[id]; conns != nil {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(r.byChunk, id)
			}
		}
	}
	sortChunkIDs(released)
	return released
}

// Subscribers returns the connections watching the chunk.
func (r *SubscriptionRouter) Subscribers(id model.ChunkID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]string, 0, len(r.byChunk[id]))
	for c := range r.byChunk[id] {
		conns = append(conns, c)
	}
	sort.Strings(conns)
	return conns
}

// Watching returns the chunks the connection currently watches.
func (r *SubscriptionRouter) Watching(connID string) []model.ChunkID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]model.ChunkID, 0, len(r.byConn[connID]))
	for id := range r.byConn[connID] {
		ids = append(ids, id)
	}
	sortChunkIDs(ids)
	return ids
}

// ViewportDiff resolves a viewport change into subscribe/unsubscribe sets
// by intersecting the new chunk cover with the current subscriptions.
func (r *SubscriptionRouter) ViewportDiff(connID string, cover []model.ChunkID) (add, remove []model.ChunkID) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	next := make(map[model.ChunkID]struct{}, len(cover))
	for _, id := range cover {
		next[id] = struct{}{}
	}
	current := r.byConn[connID]
	for _, id := range cover {
		if _, ok := current[id]; !ok {
			add = append(add, id)
		}
	}
	for id := range current {
		if _, ok := next[id]; !ok {
			remove = append(remove, id)
		}
	}
	sortChunkIDs(add)
	sortChunkIDs(remove)
	return add, remove
}

func sortChunkIDs(ids []model.ChunkID) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].CY != ids[j].CY {
			return ids[i].CY < ids[j].CY
		}
		return ids[i].CX < ids[j].CX
	})
}
