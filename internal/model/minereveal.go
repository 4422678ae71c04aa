package model

import "time"

// Contributor is one correct flag on a mine, ordered by timestamp.
type Contributor struct {
	PlayerID  string    `json:"playerId"`
	Position  int       `json:"position"` // 1-based rank by flag time
	Timestamp time.Time `json:"timestamp"`
	Points    int       `json:"points"`
}

// MineReveal is the delayed multi-contributor reveal state for a single
// mine coordinate. It is created on the first correct flag and becomes
// terminal once the reveal timer fires.
//
// Invariants: contributors sorted by timestamp, at most one entry per
// player, Position is the 1-based index in that order, Points follows the
// scoring table (0 from fourth place on).
type MineReveal struct {
	X            int           `json:"x"`
	Y            int           `json:"y"`
	Contributors []Contributor `json:"contributors"`
	Revealed     bool          `json:"revealed"`
	RevealAt     time.Time     `json:"revealAt,omitempty"`
}

// NewMineReveal starts the state machine with its first contributor.
func NewMineReveal(x, y int, playerID string, now time.Time, scoring ScoringConfig, delay time.Duration) *MineReveal {
	r := &MineReveal{X: x, Y: y, RevealAt: now.Add(delay)}
	r.Contributors = append(r.Contributors, Contributor{
		PlayerID:  playerID,
		Position:  1,
		Timestamp: now,
		Points:    scoring.PlacePoints(1),
	})
	return r
}

// AddContributor records a further correct flag. Returns the created entry
// and true, or a zero Contributor and false when the player already
// contributed or the mine is revealed (both no-ops for the state machine).
func (r *MineReveal) AddContributor(playerID string, now time.Time, scoring ScoringConfig) (Contributor, bool) {
	if r.Revealed {
		return Contributor{}, false
	}
	for _, c := range r.Contributors {
		if c.PlayerID == playerID {
			return Contributor{}, false
		}
	}
	c := Contributor{
		PlayerID:  playerID,
		Position:  len(r.Contributors) + 1,
		Timestamp: now,
		Points:    scoring.PlacePoints(len(r.Contributors) + 1),
	}
	r.Contributors = append(r.Contributors, c)
	return c, true
}

// HasContributor reports whether the player already flagged this mine.
func (r *MineReveal) HasContributor(playerID string) bool {
	for _, c := range r.Contributors {
		if c.PlayerID == playerID {
			return true
		}
	}
	return false
}
