package model

// ScoringConfig holds every score delta the rules produce. A game fixes
// its scoring at creation; overrides merge over these defaults.
type ScoringConfig struct {
	// Flag-a-mine race rewards by contributor position.
	FirstPlacePoints  int `yaml:"first_place_points" json:"firstPlacePoints"`
	SecondPlacePoints int `yaml:"second_place_points" json:"secondPlacePoints"`
	ThirdPlacePoints  int `yaml:"third_place_points" json:"thirdPlacePoints"`

	// NumberRevealPoints is awarded per revealed numbered cell.
	NumberRevealPoints int `yaml:"number_reveal_points" json:"numberRevealPoints"`

	// MineHitPenalty is subtracted on a mine hit; scores floor at zero.
	MineHitPenalty int `yaml:"mine_hit_penalty" json:"mineHitPenalty"`

	// LockoutDurationMs is how long a mine hit locks the player out.
	LockoutDurationMs int `yaml:"lockout_duration_ms" json:"lockoutDurationMs"`
	// MineRevealDelayMs is the window between the first correct flag on a
	// mine and its public reveal.
	MineRevealDelayMs int `yaml:"mine_reveal_delay_ms" json:"mineRevealDelayMs"`

	// Flag toggle rewards for cells that are not mines.
	FlagPlacePoints  int `yaml:"flag_place_points" json:"flagPlacePoints"`
	FlagRemovePoints int `yaml:"flag_remove_points" json:"flagRemovePoints"`
}

// DefaultScoringConfig returns the standard scoring table.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		FirstPlacePoints:   5,
		SecondPlacePoints:  3,
		ThirdPlacePoints:   1,
		NumberRevealPoints: 1,
		MineHitPenalty:     10,
		LockoutDurationMs:  5000,
		MineRevealDelayMs:  3000,
		FlagPlacePoints:    2,
		FlagRemovePoints:   0,
	}
}

// PlacePoints returns the reward for the 1-based contributor position in
// a flag-a-mine race. Fourth place onward earns nothing.
func (c ScoringConfig) PlacePoints(position int) int {
	switch position {
	case 1:
		return c.FirstPlacePoints
	case 2:
		return c.SecondPlacePoints
	case 3:
		return c.ThirdPlacePoints
	default:
		return 0
	}
}
