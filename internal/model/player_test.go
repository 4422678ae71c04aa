package model

import (
	"testing"
	"time"
)

func TestPlayerAddPointsClampsAtZero(t *testing.T) {
	p := NewPlayer("p1", "alice")

	newScore, applied := p.AddPoints(5)
	if newScore != 5 || applied != 5 {
		t.Errorf("AddPoints(5) = (%d, %d); want (5, 5)", newScore, applied)
	}

	newScore, applied = p.AddPoints(-10)
	if newScore != 0 {
		t.Errorf("score after -10 = %d; want 0", newScore)
	}
	if applied != -5 {
		t.Errorf("applied delta = %d; want -5 (clamped)", applied)
	}

	newScore, applied = p.AddPoints(-3)
	if newScore != 0 || applied != 0 {
		t.Errorf("AddPoints(-3) at zero = (%d, %d); want (0, 0)", newScore, applied)
	}
}

func TestPlayerLockoutLifecycle(t *testing.T) {
	p := NewPlayer("p1", "alice")
	if p.Status() != StatusActive {
		t.Fatalf("new player status = %s; want %s", p.Status(), StatusActive)
	}

	now := time.Now()
	until := now.Add(5 * time.Second)
	p.LockOut(until)
	if p.Status() != StatusLockedOut {
		t.Errorf("status after LockOut = %s; want %s", p.Status(), StatusLockedOut)
	}
	if p.LockoutExpired(now) {
		t.Error("lockout reported expired before the deadline")
	}
	if !p.LockoutExpired(until) {
		t.Error("lockout not expired at the deadline")
	}

	p.Activate()
	if p.Status() != StatusActive {
		t.Errorf("status after Activate = %s; want %s", p.Status(), StatusActive)
	}
	if !p.LockedUntil().IsZero() {
		t.Error("Activate did not clear the lockout deadline")
	}
}

func TestPlayerSummaryOmitsZeroLockout(t *testing.T) {
	p := NewPlayer("p1", "alice")
	p.AddPoints(7)

	s := p.Summary()
	if s.ID != "p1" || s.Username != "alice" || s.Score != 7 {
		t.Errorf("Summary() = %+v; want id p1, alice, score 7", s)
	}
	if s.LockedUntil != nil {
		t.Error("active player summary carries a LockedUntil")
	}

	until := time.Now().Add(time.Second)
	p.LockOut(until)
	s = p.Summary()
	if s.LockedUntil == nil || !s.LockedUntil.Equal(until) {
		t.Errorf("locked summary LockedUntil = %v; want %v", s.LockedUntil, until)
	}
}
