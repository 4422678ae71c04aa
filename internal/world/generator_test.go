package world

import (
	"testing"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

func testBoard() model.BoardConfig {
	b := model.DefaultBoardConfig()
	b.ChunkSize = 4
	b.MineCacheSize = 64
	b.CountCacheSize = 64
	return b
}

func TestSeedFromGameIDStable(t *testing.T) {
	a := SeedFromGameID("game-1")
	b := SeedFromGameID("game-1")
	if a != b {
		t.Errorf("same game id produced different seeds: %d vs %d", a, b)
	}
	if SeedFromGameID("game-2") == a {
		t.Error("different game ids produced the same seed")
	}
}

func TestNoiseGeneratorDeterministic(t *testing.T) {
	board := model.DefaultBoardConfig()
	g1 := NewNoiseGenerator("determinism", board)
	g2 := NewNoiseGenerator("determinism", board)

	for x := -20; x <= 20; x += 3 {
		for y := -20; y <= 20; y += 3 {
			if g1.IsMine(x, y) != g2.IsMine(x, y) {
				t.Fatalf("IsMine(%d, %d) differs between identically seeded generators", x, y)
			}
			if g1.AdjacentCount(x, y) != g2.AdjacentCount(x, y) {
				t.Fatalf("AdjacentCount(%d, %d) differs between identically seeded generators", x, y)
			}
		}
	}
}

func TestNoiseGeneratorRepeatedQueries(t *testing.T) {
	g := NewNoiseGenerator("cache-check", model.DefaultBoardConfig())
	// The caches must never change observable results.
	for i := 0; i < 3; i++ {
		if g.IsMine(7, -3) != g.IsMine(7, -3) {
			t.Fatal("IsMine unstable across repeated queries")
		}
		if g.AdjacentCount(7, -3) != g.AdjacentCount(7, -3) {
			t.Fatal("AdjacentCount unstable across repeated queries")
		}
	}
}

func TestNoiseGeneratorCountMatchesNeighbours(t *testing.T) {
	g := NewNoiseGenerator("count-check", model.DefaultBoardConfig())
	for x := -8; x <= 8; x += 2 {
		for y := -8; y <= 8; y += 2 {
			want := 0
			for _, n := range model.Neighbors(x, y) {
				if g.IsMine(n.X, n.Y) {
					want++
				}
			}
			got := g.AdjacentCount(x, y)
			if got != want {
				t.Errorf("AdjacentCount(%d, %d) = %d; counted %d mines", x, y, got, want)
			}
			if got < 0 || got > 8 {
				t.Errorf("AdjacentCount(%d, %d) = %d; outside 0..8", x, y, got)
			}
		}
	}
}

func TestNoiseGeneratorHasBothKinds(t *testing.T) {
	g := NewNoiseGenerator("density", model.DefaultBoardConfig())
	mines, safe := 0, 0
	for x := -50; x < 50; x++ {
		for y := -50; y < 50; y++ {
			if g.IsMine(x, y) {
				mines++
			} else {
				safe++
			}
		}
	}
	if mines == 0 {
		t.Error("no mines in a 100x100 region")
	}
	if safe == 0 {
		t.Error("no safe cells in a 100x100 region")
	}
	if mines > safe {
		t.Errorf("mines (%d) outnumber safe cells (%d); threshold mapping looks inverted", mines, safe)
	}
}
