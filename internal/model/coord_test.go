package model

import "testing"

func TestChunkIDAt(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		size int
		want ChunkID
	}{
		{"origin", 0, 0, 16, ChunkID{0, 0}},
		{"inside first chunk", 15, 15, 16, ChunkID{0, 0}},
		{"first cell of next chunk", 16, 16, 16, ChunkID{1, 1}},
		{"negative one", -1, -1, 16, ChunkID{-1, -1}},
		{"negative chunk edge", -16, -16, 16, ChunkID{-1, -1}},
		{"past negative edge", -17, -17, 16, ChunkID{-2, -2}},
		{"mixed signs", -1, 16, 16, ChunkID{-1, 1}},
		{"large negative", -100, 0, 16, ChunkID{-7, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkIDAt(tt.x, tt.y, tt.size)
			if got != tt.want {
				t.Errorf("ChunkIDAt(%d, %d, %d) = %+v; want %+v", tt.x, tt.y, tt.size, got, tt.want)
			}
		})
	}
}

func TestToLocalRoundTrip(t *testing.T) {
	coords := []Coord{
		{0, 0}, {15, 15}, {16, 0}, {-1, -1}, {-16, -16}, {-17, 31}, {100, -100},
	}
	for _, c := range coords {
		id, l := ToLocal(c.X, c.Y, 16)
		if !l.InBounds(16) {
			t.Errorf("ToLocal(%d, %d) local %+v out of bounds", c.X, c.Y, l)
		}
		back := id.Global(l, 16)
		if back != c {
			t.Errorf("Global(ToLocal(%d, %d)) = %+v; want %+v", c.X, c.Y, back, c)
		}
	}
}

func TestLocalInBounds(t *testing.T) {
	tests := []struct {
		l    Local
		want bool
	}{
		{Local{0, 0}, true},
		{Local{15, 15}, true},
		{Local{16, 0}, false},
		{Local{0, 16}, false},
		{Local{-1, 0}, false},
	}
	for _, tt := range tests {
		if got := tt.l.InBounds(16); got != tt.want {
			t.Errorf("%+v.InBounds(16) = %v; want %v", tt.l, got, tt.want)
		}
	}
}

func TestNeighbors(t *testing.T) {
	ns := Neighbors(0, 0)
	if len(ns) != 8 {
		t.Fatalf("Neighbors returned %d entries; want 8", len(ns))
	}
	seen := make(map[Coord]struct{}, 8)
	for _, n := range ns {
		if n == (Coord{0, 0}) {
			t.Error("Neighbors includes the center cell")
		}
		if n.X < -1 || n.X > 1 || n.Y < -1 || n.Y > 1 {
			t.Errorf("neighbor %+v outside the Moore ring", n)
		}
		seen[n] = struct{}{}
	}
	if len(seen) != 8 {
		t.Errorf("Neighbors has duplicates: %d unique of 8", len(seen))
	}
}
