package world

import (
	"sort"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// Chunk stores the sparse overlay for one fixed-size board region.
// Overlay keys are always within [0, size) and canonical: an entry with
// both flags false is removed on write.
//
// A chunk is uniquely owned by one Manager and mutated only under the
// owning session's lease, so it carries no lock of its own.
type Chunk struct {
	id      model.ChunkID
	size    int
	overlay map[model.Local]model.PointOverlay
	dirty   bool
	gen     uint64
}

// NewChunk creates an empty chunk.
func NewChunk(id model.ChunkID, size int) *Chunk {
	return &Chunk{
		id:      id,
		size:    size,
		overlay: make(map[model.Local]model.PointOverlay),
	}
}

func (c *Chunk) ID() model.ChunkID { return c.id }
func (c *Chunk) Size() int         { return c.size }

// Dirty reports whether the overlay changed since the last persistence pass.
func (c *Chunk) Dirty() bool { return c.dirty }

// Generation counts overlay mutations. A persistence pass records it
// alongside the exported overlay and hands it back to MarkClean, so a
// write that lands mid-save keeps the chunk dirty.
func (c *Chunk) Generation() uint64 { return c.gen }

// MarkClean clears the dirty bit, unless the overlay mutated since the
// given generation was observed.
func (c *Chunk) MarkClean(gen uint64) {
	if c.gen == gen {
		c.dirty = false
	}
}

func (c *Chunk) OverlayLen() int { return len(c.overlay) }

// Get returns the overlay at the local coordinate, if present.
func (c *Chunk) Get(l model.Local) (model.PointOverlay, bool) {
	o, ok := c.overlay[l]
	return o, ok
}

// Set writes an overlay entry, keeping the map canonical: empty overlays
// are deleted rather than stored.
func (c *Chunk) Set(l model.Local, o model.PointOverlay) {
	if !l.InBounds(c.size) {
		return
	}
	if o.Empty() {
		if _, ok := c.overlay[l]; !ok {
			return
		}
		delete(c.overlay, l)
	} else {
		c.overlay[l] = o
	}
	c.dirty = true
	c.gen++
}

// CellAt composes generator output with the overlay into a logical cell.
func (c *Chunk) CellAt(l model.Local, gen Generator) model.Cell {
	g := c.id.Global(l, c.size)
	o := c.overlay[l]
	return model.Cell{
		X:             g.X,
		Y:             g.Y,
		IsMine:        gen.IsMine(g.X, g.Y),
		AdjacentMines: gen.AdjacentCount(g.X, g.Y),
		Revealed:      o.Revealed,
		Flagged:       o.Flagged,
	}
}

// Snapshot returns the composed cells for every overlay entry, ordered
// row-major so repeated snapshots of the same chunk compare equal.
// Generator fields of unrevealed cells are masked out, as snapshots go
// straight into chunkData payloads.
func (c *Chunk) Snapshot(gen Generator) []model.Cell {
	cells := make([]model.Cell, 0, len(c.overlay))
	for l := range c.overlay {
		cells = append(cells, c.CellAt(l, gen).Masked())
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

// OverlayPoints exports the sparse overlay for persistence, row-major.
func (c *Chunk) OverlayPoints() []model.OverlayPoint {
	points := make([]model.OverlayPoint, 0, len(c.overlay))
	for l, o := range c.overlay {
		points = append(points, model.OverlayPoint{
			LocalX:   l.X,
			LocalY:   l.Y,
			Revealed: o.Revealed,
			Flagged:  o.Flagged,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].LocalY != points[j].LocalY {
			return points[i].LocalY < points[j].LocalY
		}
		return points[i].LocalX < points[j].LocalX
	})
	return points
}

// RestoreOverlay replaces the overlay from a persisted document.
// Non-canonical and out-of-range entries are dropped.
func (c *Chunk) RestoreOverlay(points []model.OverlayPoint) {
	c.overlay = make(map[model.Local]model.PointOverlay, len(points))
	for _, p := range points {
		l := model.Local{X: p.LocalX, Y: p.LocalY}
		o := model.PointOverlay{Revealed: p.Revealed, Flagged: p.Flagged}
		if !l.InBounds(c.size) || o.Empty() {
			continue
		}
		c.overlay[l] = o
	}
	c.dirty = false
	c.gen++
}

// FloodFill runs the Minesweeper cascade from seed inside this chunk.
//
// The visited set is shared across every chunk participating in one reveal
// intent and keys on global coordinates, which makes the method idempotent:
// a second run with the same set reveals nothing.
//
// Revealed cells are returned in BFS order. Neighbours of zero-adjacency
// cells that fall outside this chunk are returned as crossings, keyed by
// target chunk, as local seeds for the Manager to route.
func (c *Chunk) FloodFill(seed model.Local, visited map[model.Coord]struct{}, gen Generator) (revealed []model.Cell, crossings map[model.ChunkID][]model.Local) {
	crossings = make(map[model.ChunkID][]model.Local)
	if !seed.InBounds(c.size) {
		return nil, crossings
	}

	queue := []model.Local{seed}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]

		g := c.id.Global(l, c.size)
		if _, seen := visited[g]; seen {
			continue
		}
		visited[g] = struct{}{}

		o := c.overlay[l]
		if o.Revealed || o.Flagged || gen.IsMine(g.X, g.Y) {
			continue
		}

		o.Revealed = true
		c.Set(l, o)

		count := gen.AdjacentCount(g.X, g.Y)
		revealed = append(revealed, model.Cell{
			X:             g.X,
			Y:             g.Y,
			AdjacentMines: count,
			Revealed:      true,
		})

		if count != 0 {
			continue
		}
		for _, n := range model.Neighbors(g.X, g.Y) {
			targetID, targetLocal := model.ToLocal(n.X, n.Y, c.size)
			if targetID == c.id {
				if _, seen := visited[n]; !seen {
					queue = append(queue, targetLocal)
				}
				continue
			}
			crossings[targetID] = append(crossings[targetID], targetLocal)
		}
	}
	return revealed, crossings
}
