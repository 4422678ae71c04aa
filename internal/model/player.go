package model

import (
	"sync"
	"time"
)

// PlayerStatus is the lifecycle state of a player inside a session.
type PlayerStatus string

const (
	// StatusActive: the player may reveal, flag and chord.
	StatusActive PlayerStatus = "ACTIVE"
	// StatusLockedOut: the player hit a mine (or disconnected) and is
	// rejected until LockedUntil passes. Identity and score are kept.
	StatusLockedOut PlayerStatus = "LOCKED_OUT"
)

// Player is one participant of a session.
// Thread-safe: all fields behind an RWMutex. Mutations normally happen
// under the owning session's lease, but read paths (snapshots, fan-out)
// run concurrently.
type Player struct {
	mu sync.RWMutex

	id          string
	username    string
	score       int
	status      PlayerStatus
	lockedUntil time.Time
	viewport    *Rect
}

// NewPlayer creates an active player with zero score.
func NewPlayer(id, username string) *Player {
	return &Player{
		id:       id,
		username: username,
		status:   StatusActive,
	}
}

func (p *Player) ID() string { return p.id }

func (p *Player) Username() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.username
}

func (p *Player) Score() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.score
}

// AddPoints applies a score delta and returns the new score.
// Score never goes below zero; the clamped delta is what the caller
// should report in scoreUpdate.
func (p *Player) AddPoints(delta int) (newScore, applied int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.score
	p.score += delta
	if p.score < 0 {
		p.score = 0
	}
	return p.score, p.score - old
}

// SetScore overwrites the score, used when restoring from a snapshot.
func (p *Player) SetScore(score int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if score < 0 {
		score = 0
	}
	p.score = score
}

func (p *Player) Status() PlayerStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Player) LockedUntil() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lockedUntil
}

// LockOut puts the player into LOCKED_OUT until the given instant.
func (p *Player) LockOut(until time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusLockedOut
	p.lockedUntil = until
}

// Activate returns the player to ACTIVE and clears the lockout deadline.
func (p *Player) Activate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusActive
	p.lockedUntil = time.Time{}
}

// LockoutExpired reports whether a LOCKED_OUT player may act again at now.
func (p *Player) LockoutExpired(now time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status == StatusLockedOut && !now.Before(p.lockedUntil)
}

func (p *Player) Viewport() *Rect {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewport
}

func (p *Player) SetViewport(r *Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewport = r
}

// Summary is the wire/persistence form of a player.
type PlayerSummary struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Score       int          `json:"score"`
	Status      PlayerStatus `json:"status"`
	LockedUntil *time.Time   `json:"lockedUntil,omitempty"`
}

// Summary captures a consistent copy of the player for fan-out.
func (p *Player) Summary() PlayerSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := PlayerSummary{
		ID:       p.id,
		Username: p.username,
		Score:    p.score,
		Status:   p.status,
	}
	if !p.lockedUntil.IsZero() {
		t := p.lockedUntil
		s.LockedUntil = &t
	}
	return s
}
