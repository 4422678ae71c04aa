package model

// Rect is an axis-aligned rectangle in world coordinates, inclusive on
// all edges. Clients send it as their current viewport.
type Rect struct {
	MinX int `json:"minX"`
	MinY int `json:"minY"`
	MaxX int `json:"maxX"`
	MaxY int `json:"maxY"`
}

// Valid reports whether the rectangle is non-degenerate.
func (r Rect) Valid() bool {
	return r.MinX <= r.MaxX && r.MinY <= r.MaxY
}

// ChunkCover returns every chunk the rectangle touches, row-major.
func (r Rect) ChunkCover(size int) []ChunkID {
	lo := ChunkIDAt(r.MinX, r.MinY, size)
	hi := ChunkIDAt(r.MaxX, r.MaxY, size)
	cover := make([]ChunkID, 0, (hi.CX-lo.CX+1)*(hi.CY-lo.CY+1))
	for cy := lo.CY; cy <= hi.CY; cy++ {
		for cx := lo.CX; cx <= hi.CX; cx++ {
			cover = append(cover, ChunkID{CX: cx, CY: cy})
		}
	}
	return cover
}
