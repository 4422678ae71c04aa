package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
	"github.com/mvb0005/SweepTogether-sub000/internal/world"
)

// Snapshot captures the persisted view of the session. Safe to call
// concurrently with intents; it holds the lease only while copying.
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() model.SessionSnapshot {
	snap := model.SessionSnapshot{
		GameID:    s.gameID,
		Board:     s.board,
		Scoring:   s.scoring,
		GameOver:  s.gameOver,
		Winner:    s.winner,
		UpdatedAt: s.now(),
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, p.Summary())
	}
	sort.Slice(snap.Players, func(i, j int) bool { return snap.Players[i].ID < snap.Players[j].ID })

	for _, r := range s.mineReveals {
		copied := *r
		copied.Contributors = append([]model.Contributor(nil), r.Contributors...)
		snap.MineReveals = append(snap.MineReveals, copied)
	}
	sort.Slice(snap.MineReveals, func(i, j int) bool {
		if snap.MineReveals[i].Y != snap.MineReveals[j].Y {
			return snap.MineReveals[i].Y < snap.MineReveals[j].Y
		}
		return snap.MineReveals[i].X < snap.MineReveals[j].X
	})

	for c := range s.pendingReveals {
		snap.PendingReveals = append(snap.PendingReveals, c)
	}
	sort.Slice(snap.PendingReveals, func(i, j int) bool {
		if snap.PendingReveals[i].Y != snap.PendingReveals[j].Y {
			return snap.PendingReveals[i].Y < snap.PendingReveals[j].Y
		}
		return snap.PendingReveals[i].X < snap.PendingReveals[j].X
	})
	return snap
}

// Restore loads session metadata from a snapshot and reschedules the
// reveal deadlines of still-pending mines. Past deadlines fire on the
// next tick.
func (s *Session) Restore(snap model.SessionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gameOver = snap.GameOver
	s.winner = snap.Winner

	s.players = make(map[string]*model.Player, len(snap.Players))
	for _, ps := range snap.Players {
		p := model.NewPlayer(ps.ID, ps.Username)
		p.SetScore(ps.Score)
		if ps.Status == model.StatusLockedOut {
			until := s.now()
			if ps.LockedUntil != nil {
				until = *ps.LockedUntil
			}
			p.LockOut(until)
		}
		s.players[ps.ID] = p
	}

	s.mineReveals = make(map[model.Coord]*model.MineReveal, len(snap.MineReveals))
	s.pendingReveals = make(map[model.Coord]struct{}, len(snap.PendingReveals))
	for i := range snap.MineReveals {
		r := snap.MineReveals[i]
		s.mineReveals[model.Coord{X: r.X, Y: r.Y}] = &r
	}
	for _, c := range snap.PendingReveals {
		coord := c
		if r, ok := s.mineReveals[coord]; ok && !r.Revealed {
			s.pendingReveals[coord] = struct{}{}
			s.sched.Schedule(revealTaskID(coord), r.RevealAt, func(time.Time) {
				s.onRevealDeadline(coord)
			})
		}
	}
	s.metaSaved = s.metaGen
}

// Persist writes the session metadata and every dirty chunk through the
// gateway, best-effort. Snapshots are taken under the lease; the blocking
// writes happen outside it. Chunks are only marked clean after a
// successful write, so a failed save retries on the next pass.
func (s *Session) Persist(ctx context.Context, gw Gateway) error {
	if gw == nil {
		return nil
	}

	s.mu.Lock()
	var snap *model.SessionSnapshot
	metaGen := s.metaGen
	if metaGen != s.metaSaved {
		copied := s.snapshotLocked()
		snap = &copied
	}
	type chunkWrite struct {
		chunk  *world.Chunk
		gen    uint64
		points []model.OverlayPoint
	}
	var writes []chunkWrite
	for _, c := range s.chunks.DirtyChunks() {
		writes = append(writes, chunkWrite{chunk: c, gen: c.Generation(), points: c.OverlayPoints()})
	}
	s.mu.Unlock()

	var firstErr error
	if snap != nil {
		if err := gw.SaveSession(ctx, *snap); err != nil {
			firstErr = fmt.Errorf("saving session %s: %w", s.gameID, err)
			slog.Warn("session save failed", "gameID", s.gameID, "error", err)
		} else {
			s.mu.Lock()
			if s.metaSaved < metaGen {
				s.metaSaved = metaGen
			}
			s.mu.Unlock()
		}
	}
	for _, w := range writes {
		id := w.chunk.ID()
		if err := gw.SaveChunk(ctx, s.gameID, id, w.points); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("saving chunk (%d,%d) of %s: %w", id.CX, id.CY, s.gameID, err)
			}
			slog.Warn("chunk save failed", "gameID", s.gameID, "cx", id.CX, "cy", id.CY, "error", err)
			continue
		}
		s.mu.Lock()
		w.chunk.MarkClean(w.gen)
		s.mu.Unlock()
	}
	return firstErr
}
