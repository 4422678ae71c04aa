package world

import (
	"encoding/binary"

	"github.com/aquilax/go-perlin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// Generator answers the two procedural questions about any board cell.
// Implementations must be deterministic: for a fixed seed the answers are
// a pure function of (x, y). Concurrent calls are safe.
type Generator interface {
	IsMine(x, y int) bool
	// AdjacentCount is the number of mines among the eight Moore
	// neighbours of (x, y), 0..8.
	AdjacentCount(x, y int) int
}

// Noise generation parameters. Perlin noise vanishes on the integer
// lattice, so samples are taken off-lattice at a fixed frequency.
const (
	noiseAlpha     = 2.0
	noiseBeta      = 2.0
	noiseOctaves   = 3
	noiseFrequency = 0.3717
	noiseOffset    = 0.5
)

// NoiseGenerator derives cell contents from 2-D gradient noise seeded by
// the game id. Nothing is ever stored per cell; the two LRU caches are an
// optimisation only and never change observable results.
type NoiseGenerator struct {
	seed      int64
	threshold float64
	noise     *perlin.Perlin

	mineCache  *lru.Cache[model.Coord, bool]
	countCache *lru.Cache[model.Coord, int]
}

// SeedFromGameID hashes an arbitrary game id down to the int64 noise seed.
func SeedFromGameID(gameID string) int64 {
	sum := blake2b.Sum256([]byte(gameID))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// NewNoiseGenerator builds the generator for one game.
// threshold is the board's mine threshold: a cell is a mine when its noise
// value mapped to [0,1] falls below (1 − threshold).
func NewNoiseGenerator(gameID string, board model.BoardConfig) *NoiseGenerator {
	seed := SeedFromGameID(gameID)
	mineCache, _ := lru.New[model.Coord, bool](board.MineCacheSize)
	countCache, _ := lru.New[model.Coord, int](board.CountCacheSize)
	return &NoiseGenerator{
		seed:       seed,
		threshold:  board.MineThreshold,
		noise:      perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		mineCache:  mineCache,
		countCache: countCache,
	}
}

// Seed returns the derived int64 seed, mainly for logging.
func (g *NoiseGenerator) Seed() int64 { return g.seed }

// noiseValue maps the raw noise sample at (x, y) into [0, 1].
func (g *NoiseGenerator) noiseValue(x, y int) float64 {
	nx := (float64(x) + noiseOffset) * noiseFrequency
	ny := (float64(y) + noiseOffset) * noiseFrequency
	v := (g.noise.Noise2D(nx, ny) + 1) / 2
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v
}

// IsMine reports whether (x, y) holds a mine.
func (g *NoiseGenerator) IsMine(x, y int) bool {
	key := model.Coord{X: x, Y: y}
	if v, ok := g.mineCache.Get(key); ok {
		return v
	}
	mine := g.noiseValue(x, y) < (1 - g.threshold)
	g.mineCache.Add(key, mine)
	return mine
}

// AdjacentCount counts mines among the eight neighbours of (x, y).
func (g *NoiseGenerator) AdjacentCount(x, y int) int {
	key := model.Coord{X: x, Y: y}
	if v, ok := g.countCache.Get(key); ok {
		return v
	}
	count := 0
	for _, n := range model.Neighbors(x, y) {
		if g.IsMine(n.X, n.Y) {
			count++
		}
	}
	g.countCache.Add(key, count)
	return count
}
