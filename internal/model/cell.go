package model

// PointOverlay is the stored per-cell state. Everything else about a cell
// is derived from the world generator, so an overlay with both flags
// false carries no information and is never stored.
type PointOverlay struct {
	Revealed bool `json:"revealed"`
	Flagged  bool `json:"flagged"`
}

// Empty reports whether the overlay equals the untouched default.
func (o PointOverlay) Empty() bool {
	return !o.Revealed && !o.Flagged
}

// Cell is the composed logical view of one board position: generator
// output plus overlay. It is what events and snapshots carry.
type Cell struct {
	X             int  `json:"x"`
	Y             int  `json:"y"`
	IsMine        bool `json:"isMine,omitempty"`
	AdjacentMines int  `json:"adjacentMines,omitempty"`
	Revealed      bool `json:"revealed"`
	Flagged       bool `json:"flagged"`
}

// Coord returns the cell's global coordinate.
func (c Cell) Coord() Coord {
	return Coord{X: c.X, Y: c.Y}
}

// Masked strips the generator fields from an unrevealed cell, so outbound
// payloads describe only what a player can see.
func (c Cell) Masked() Cell {
	if c.Revealed {
		return c
	}
	c.IsMine = false
	c.AdjacentMines = 0
	return c
}
