package game

import (
	"time"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// ActionProcessor executes validated reveal / flag / chord intents and
// computes their score deltas. Every method runs with the session mutex
// held by the calling Session operation.
type ActionProcessor struct {
	session *Session
}

// reveal uncovers (x, y). Revealed or flagged cells are a no-op; a mine
// applies the penalty-and-lockout path; anything else floods.
func (a *ActionProcessor) reveal(p *model.Player, x, y int) error {
	s := a.session
	cell := s.chunks.CellAt(x, y)
	if cell.Revealed || cell.Flagged {
		return nil
	}
	if cell.IsMine {
		a.hitMine(p, cell)
		return nil
	}

	origin, byChunk := s.chunks.RevealAndPropagate(x, y)
	if len(origin) == 0 {
		return nil
	}
	points := 0
	for _, c := range origin {
		if c.AdjacentMines > 0 {
			points += s.scoring.NumberRevealPoints
		}
	}
	a.award(p, points, ReasonReveal)
	s.broadcastTiles(byChunk)
	return nil
}

// flag toggles the flag at (x, y). A correct flag on a mine drives the
// delayed mine-reveal state machine; other toggles award the flat flag
// points. Revealed cells are a no-op.
func (a *ActionProcessor) flag(p *model.Player, x, y int) error {
	s := a.session
	cell := s.chunks.CellAt(x, y)
	if cell.Revealed {
		return nil
	}

	// A flag on a mine that is already pending reveal joins the
	// contributors instead of clearing the first player's flag.
	if cell.Flagged && cell.IsMine {
		if _, ok := s.mineReveals[model.Coord{X: x, Y: y}]; ok {
			s.flagMine(p, cell, s.now())
			return nil
		}
	}

	flagged := !cell.Flagged
	s.chunks.SetOverlay(x, y, model.PointOverlay{Flagged: flagged})

	switch {
	case flagged && cell.IsMine:
		s.flagMine(p, cell, s.now())
	case flagged:
		a.award(p, s.scoring.FlagPlacePoints, ReasonFlagPlace)
	default:
		a.award(p, s.scoring.FlagRemovePoints, ReasonFlagRemove)
	}

	cell.Flagged = flagged
	chunkID := model.ChunkIDAt(x, y, s.board.ChunkSize)
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeChunk, Chunk: chunkID, Event: TileUpdate{Cell: cell.Masked()}})
	return nil
}

// chord reveals every hidden unflagged neighbour of a satisfied number
// cell, as if the player had clicked each one. The first mine encountered
// takes the mine-hit path and aborts the remaining neighbours.
func (a *ActionProcessor) chord(p *model.Player, x, y int) error {
	s := a.session
	cell := s.chunks.CellAt(x, y)
	if !cell.Revealed || cell.IsMine || cell.AdjacentMines == 0 {
		return nil
	}

	satisfied := 0
	var hidden []model.Coord
	for _, n := range model.Neighbors(x, y) {
		nc := s.chunks.CellAt(n.X, n.Y)
		switch {
		case nc.Flagged:
			satisfied++
		case nc.Revealed && nc.IsMine:
			satisfied++
		case !nc.Revealed:
			hidden = append(hidden, n)
		}
	}
	if satisfied != cell.AdjacentMines {
		return nil
	}

	points := 0
	merged := make(map[model.ChunkID][]model.Cell)
	var mineHit *model.Cell
	for _, n := range hidden {
		// an earlier neighbour's flood may have reached this one already
		cur := s.chunks.CellAt(n.X, n.Y)
		if cur.Revealed || cur.Flagged {
			continue
		}
		if cur.IsMine {
			mineHit = &cur
			break
		}
		origin, byChunk := s.chunks.RevealAndPropagate(n.X, n.Y)
		for _, c := range origin {
			if c.AdjacentMines > 0 {
				points += s.scoring.NumberRevealPoints
			}
		}
		for id, cells := range byChunk {
			merged[id] = append(merged[id], cells...)
		}
	}

	a.award(p, points, ReasonReveal)
	s.broadcastTiles(merged)
	if mineHit != nil {
		a.hitMine(p, *mineHit)
	}
	return nil
}

// hitMine applies the mine-hit outcome: reveal the mine, subtract the
// penalty (score floors at zero), lock the player out and schedule the
// lockout expiry. No flood propagates from a mine.
func (a *ActionProcessor) hitMine(p *model.Player, cell model.Cell) {
	s := a.session
	now := s.now()
	s.chunks.SetOverlay(cell.X, cell.Y, model.PointOverlay{Revealed: true})
	s.metaGen++

	newScore, applied := p.AddPoints(-s.scoring.MineHitPenalty)
	until := now.Add(time.Duration(s.scoring.LockoutDurationMs) * time.Millisecond)
	p.LockOut(until)
	s.sched.Schedule(lockoutTaskID(p.ID()), until, func(time.Time) {
		s.onLockoutExpiry(p.ID())
	})

	s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: ScoreUpdate{
		PlayerID: p.ID(),
		NewScore: newScore,
		Delta:    applied,
		Reason:   ReasonMineHit,
	}})
	lockedUntil := until
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: PlayerStatusUpdate{
		PlayerID:    p.ID(),
		Status:      model.StatusLockedOut,
		LockedUntil: &lockedUntil,
	}})

	cell.Revealed = true
	cell.Flagged = false
	chunkID := model.ChunkIDAt(cell.X, cell.Y, s.board.ChunkSize)
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeChunk, Chunk: chunkID, Event: TileUpdate{Cell: cell}})
}

// award applies a score delta and publishes the update. Zero deltas stay
// silent.
func (a *ActionProcessor) award(p *model.Player, points int, reason ScoreReason) {
	if points == 0 {
		return
	}
	s := a.session
	newScore, applied := p.AddPoints(points)
	s.metaGen++
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: ScoreUpdate{
		PlayerID: p.ID(),
		NewScore: newScore,
		Delta:    applied,
		Reason:   reason,
	}})
}
