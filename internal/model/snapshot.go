package model

import "time"

// SessionSnapshot is the persisted form of a session's metadata.
// Chunk overlays are persisted separately per chunk.
type SessionSnapshot struct {
	GameID         string          `json:"gameId"`
	Board          BoardConfig     `json:"boardConfig"`
	Scoring        ScoringConfig   `json:"scoringConfig"`
	Players        []PlayerSummary `json:"players"`
	MineReveals    []MineReveal    `json:"mineReveals"`
	PendingReveals []Coord         `json:"pendingReveals"`
	GameOver       bool            `json:"gameOver"`
	Winner         string          `json:"winner,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// OverlayPoint is one sparse overlay entry of a persisted chunk.
// Absent cells are implied untouched.
type OverlayPoint struct {
	LocalX   int  `json:"localX"`
	LocalY   int  `json:"localY"`
	Revealed bool `json:"revealed"`
	Flagged  bool `json:"flagged"`
}
