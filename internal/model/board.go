package model

// BoardConfig holds the structural parameters of a game board. ChunkSize
// and MineThreshold are part of a game's identity: changing them for a
// running game would change which cells are mines.
type BoardConfig struct {
	// ChunkSize is the edge length of a chunk in cells.
	ChunkSize int `yaml:"chunk_size" json:"chunkSize"`
	// MineThreshold in (0, 1); higher means fewer mines. A cell is a
	// mine when its noise value falls below 1 - MineThreshold.
	MineThreshold float64 `yaml:"mine_threshold" json:"mineThreshold"`

	// Generator cache sizes, entries.
	MineCacheSize  int `yaml:"mine_cache_size" json:"mineCacheSize"`
	CountCacheSize int `yaml:"count_cache_size" json:"countCacheSize"`

	// Timer wheel resolution, milliseconds.
	TimerTickMs int `yaml:"timer_tick_ms" json:"timerTickMs"`
}

// DefaultBoardConfig returns the standard board parameters.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		ChunkSize:      16,
		MineThreshold:  0.85,
		MineCacheSize:  10000,
		CountCacheSize: 5000,
		TimerTickMs:    1000,
	}
}
