package world

import (
	"sort"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// Manager owns every chunk of one game: creation, cross-chunk flood
// routing, pending fills and per-chunk subscriber counts.
//
// All methods must be called under the owning session's lease; the
// manager itself is not locked.
type Manager struct {
	gameID string
	board  model.BoardConfig
	gen    Generator

	chunks  map[model.ChunkID]*Chunk
	pending map[model.ChunkID]map[model.Local]struct{}
	subs    map[model.ChunkID]int
}

// NewManager creates the chunk manager for one game.
func NewManager(gameID string, board model.BoardConfig, gen Generator) *Manager {
	return &Manager{
		gameID:  gameID,
		board:   board,
		gen:     gen,
		chunks:  make(map[model.ChunkID]*Chunk),
		pending: make(map[model.ChunkID]map[model.Local]struct{}),
		subs:    make(map[model.ChunkID]int),
	}
}

func (m *Manager) Board() model.BoardConfig { return m.board }
func (m *Manager) Generator() Generator     { return m.gen }

// GetOrCreate returns the chunk at id, creating it empty on first touch.
func (m *Manager) GetOrCreate(id model.ChunkID) *Chunk {
	if c, ok := m.chunks[id]; ok {
		return c
	}
	c := NewChunk(id, m.board.ChunkSize)
	m.chunks[id] = c
	return c
}

// Lookup returns the chunk at id without creating it.
func (m *Manager) Lookup(id model.ChunkID) (*Chunk, bool) {
	c, ok := m.chunks[id]
	return c, ok
}

// CellAt composes the logical cell at a global coordinate.
func (m *Manager) CellAt(x, y int) model.Cell {
	id, l := model.ToLocal(x, y, m.board.ChunkSize)
	if c, ok := m.chunks[id]; ok {
		return c.CellAt(l, m.gen)
	}
	return model.Cell{
		X:             x,
		Y:             y,
		IsMine:        m.gen.IsMine(x, y),
		AdjacentMines: m.gen.AdjacentCount(x, y),
	}
}

// SetOverlay writes the overlay at a global coordinate.
func (m *Manager) SetOverlay(x, y int, o model.PointOverlay) {
	id, l := model.ToLocal(x, y, m.board.ChunkSize)
	m.GetOrCreate(id).Set(l, o)
}

// RevealAndPropagate runs one reveal intent from (x, y): flood the
// originating chunk, route crossings, and drain pending fills of every
// subscribed chunk to fixpoint.
//
// origin is the list of cells revealed in the originating chunk, which is
// what the caller scores. byChunk holds every chunk's reveals (the origin
// included) for per-chunk delta broadcasts.
func (m *Manager) RevealAndPropagate(x, y int) (origin []model.Cell, byChunk map[model.ChunkID][]model.Cell) {
	id, l := model.ToLocal(x, y, m.board.ChunkSize)
	chunk := m.GetOrCreate(id)

	visited := make(map[model.Coord]struct{})
	byChunk = make(map[model.ChunkID][]model.Cell)

	origin, crossings := chunk.FloodFill(l, visited, m.gen)
	if len(origin) > 0 {
		byChunk[id] = origin
	}
	m.addPending(crossings)
	m.drainSubscribed(visited, byChunk)
	return origin, byChunk
}

// ProcessPending drains the pending seeds of a single chunk using the
// shared visited set of the current propagation. New crossings are routed
// back into the pending queues.
func (m *Manager) ProcessPending(id model.ChunkID, visited map[model.Coord]struct{}) []model.Cell {
	seeds, ok := m.pending[id]
	if !ok || len(seeds) == 0 {
		return nil
	}
	delete(m.pending, id)

	ordered := make([]model.Local, 0, len(seeds))
	for s := range seeds {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y < ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	chunk := m.GetOrCreate(id)
	var revealed []model.Cell
	for _, seed := range ordered {
		cells, crossings := chunk.FloodFill(seed, visited, m.gen)
		revealed = append(revealed, cells...)
		m.addPending(crossings)
	}
	return revealed
}

// Subscribe increments the chunk's subscriber count. When the chunk (or,
// transitively, any subscribed chunk) holds pending fills, they drain now;
// the returned map carries the resulting reveals for broadcast. This is
// the lazy half of the back-pressure: unobserved floods materialise on
// first subscription.
func (m *Manager) Subscribe(id model.ChunkID) map[model.ChunkID][]model.Cell {
	m.GetOrCreate(id)
	m.subs[id]++

	revealed := make(map[model.ChunkID][]model.Cell)
	visited := make(map[model.Coord]struct{})
	m.drainSubscribed(visited, revealed)
	return revealed
}

// Unsubscribe decrements the chunk's subscriber count. The chunk keeps
// accepting pending fills; it just stops draining them eagerly.
func (m *Manager) Unsubscribe(id model.ChunkID) {
	if m.subs[id] <= 1 {
		delete(m.subs, id)
		return
	}
	m.subs[id]--
}

// HasSubscribers reports whether at least one connection watches the chunk.
func (m *Manager) HasSubscribers(id model.ChunkID) bool {
	return m.subs[id] > 0
}

// SubscriberCount returns the chunk's subscriber count.
func (m *Manager) SubscriberCount(id model.ChunkID) int {
	return m.subs[id]
}

// PendingCount returns the number of queued seeds for a chunk.
func (m *Manager) PendingCount(id model.ChunkID) int {
	return len(m.pending[id])
}

// DirtyChunks returns every chunk whose overlay changed since it was last
// marked clean, for the persistence pass.
func (m *Manager) DirtyChunks() []*Chunk {
	var dirty []*Chunk
	for _, c := range m.chunks {
		if c.Dirty() {
			dirty = append(dirty, c)
		}
	}
	sort.Slice(dirty, func(i, j int) bool {
		a, b := dirty[i].ID(), dirty[j].ID()
		if a.CY != b.CY {
			return a.CY < b.CY
		}
		return a.CX < b.CX
	})
	return dirty
}

// RestoreChunk loads a persisted overlay into the chunk at id.
func (m *Manager) RestoreChunk(id model.ChunkID, points []model.OverlayPoint) {
	m.GetOrCreate(id).RestoreOverlay(points)
}

// addPending merges flood crossings into the pending queues, de-duplicated.
func (m *Manager) addPending(crossings map[model.ChunkID][]model.Local) {
	for id, seeds := range crossings {
		set, ok := m.pending[id]
		if !ok {
			set = make(map[model.Local]struct{})
			m.pending[id] = set
		}
		for _, s := range seeds {
			set[s] = struct{}{}
		}
	}
}

// drainSubscribed loops until no subscribed chunk has pending seeds,
// accumulating reveals per chunk.
func (m *Manager) drainSubscribed(visited map[model.Coord]struct{}, acc map[model.ChunkID][]model.Cell) {
	for {
		var due []model.ChunkID
		for id, seeds := range m.pending {
			if len(seeds) > 0 && m.subs[id] > 0 {
				due = append(due, id)
			}
		}
		if len(due) == 0 {
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].CY != due[j].CY {
				return due[i].CY < due[j].CY
			}
			return due[i].CX < due[j].CX
		})
		for _, id := range due {
			if cells := m.ProcessPending(id, visited); len(cells) > 0 {
				acc[id] = append(acc[id], cells...)
			}
		}
	}
}
