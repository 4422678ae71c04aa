package model

// Coord is a global board coordinate. The board is unbounded; both axes
// run over the full int range.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ChunkID addresses one fixed-size chunk of the board.
type ChunkID struct {
	CX int `json:"cx"`
	CY int `json:"cy"`
}

// Local is a coordinate within a chunk, each axis in [0, size).
type Local struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// floorDiv divides rounding toward negative infinity, so chunk math is
// continuous across zero: floorDiv(-1, 16) == -1, not 0.
func floorDiv(a, size int) int {
	q := a / size
	if a%size != 0 && (a < 0) != (size < 0) {
		q--
	}
	return q
}

// ChunkIDAt returns the chunk containing the global coordinate.
func ChunkIDAt(x, y, size int) ChunkID {
	return ChunkID{CX: floorDiv(x, size), CY: floorDiv(y, size)}
}

// ToLocal splits a global coordinate into its chunk and local parts.
func ToLocal(x, y, size int) (ChunkID, Local) {
	id := ChunkIDAt(x, y, size)
	return id, Local{X: x - id.CX*size, Y: y - id.CY*size}
}

// Global is the inverse of ToLocal.
func (id ChunkID) Global(l Local, size int) Coord {
	return Coord{X: id.CX*size + l.X, Y: id.CY*size + l.Y}
}

// InBounds reports whether the local coordinate lies inside a chunk of
// the given size.
func (l Local) InBounds(size int) bool {
	return l.X >= 0 && l.X < size && l.Y >= 0 && l.Y < size
}

// Neighbors returns the eight Moore neighbours of (x, y), row-major.
func Neighbors(x, y int) [8]Coord {
	return [8]Coord{
		{x - 1, y - 1}, {x, y - 1}, {x + 1, y - 1},
		{x - 1, y}, {x + 1, y},
		{x - 1, y + 1}, {x, y + 1}, {x + 1, y + 1},
	}
}
