package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
	"github.com/mvb0005/SweepTogether-sub000/internal/world"
)

// Registry maps game ids to sessions: creation, lookup, restore and
// retirement. It owns the per-game world generators.
// Thread-safe; lookups are concurrent.
type Registry struct {
	bus     *Bus
	gateway Gateway
	board   model.BoardConfig
	scoring model.ScoringConfig

	mu       sync.RWMutex
	sessions map[string]*Session
	gens     map[string]world.Generator

	ctx context.Context
}

// NewRegistry creates an empty registry. gateway may be nil for a
// persistence-less run (everything stays in memory).
func NewRegistry(board model.BoardConfig, scoring model.ScoringConfig, bus *Bus, gateway Gateway) *Registry {
	return &Registry{
		bus:      bus,
		gateway:  gateway,
		board:    board,
		scoring:  scoring,
		sessions: make(map[string]*Session),
		gens:     make(map[string]world.Generator),
		ctx:      context.Background(),
	}
}

// Start binds the registry to the process context. Session schedulers
// created afterwards stop when it is cancelled.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx = ctx
}

// Create makes a new session. An empty gameID gets a generated one.
// Creating an id that already runs is an error; use JoinOrCreate for the
// join-or-create flow.
func (r *Registry) Create(gameID string, scoring *model.ScoringConfig) (*Session, error) {
	if gameID == "" {
		gameID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[gameID]; ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrAlreadyExists)
	}
	s := r.newSessionLocked(gameID, scoring)
	slog.Info("session created", "gameID", gameID)
	return s, nil
}

// Scoring returns the default scoring config new sessions start from.
// Callers merge client overrides onto a copy of it.
func (r *Registry) Scoring() model.ScoringConfig { return r.scoring }

// Get returns a running session.
func (r *Registry) Get(gameID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[gameID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return s, nil
}

// JoinOrCreate returns the running session for gameID, restores it from
// persistence when a snapshot exists, or creates it fresh. Returns true
// when the session did not run before this call.
func (r *Registry) JoinOrCreate(gameID string) (*Session, bool, error) {
	if gameID == "" {
		return nil, false, fmt.Errorf("empty game id: %w", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[gameID]; ok {
		return s, false, nil
	}

	s := r.newSessionLocked(gameID, nil)
	if r.gateway != nil {
		ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
		snap, err := r.gateway.LoadSession(ctx, gameID)
		cancel()
		if err != nil {
			slog.Warn("session load failed, starting fresh", "gameID", gameID, "error", err)
		} else if snap != nil {
			s.Restore(*snap)
			slog.Info("session restored", "gameID", gameID, "players", len(snap.Players))
		}
	}
	return s, true, nil
}

// newSessionLocked wires generator, session, chunk loader and scheduler.
// Caller holds the registry lock.
func (r *Registry) newSessionLocked(gameID string, scoring *model.ScoringConfig) *Session {
	gen, ok := r.gens[gameID]
	if !ok {
		gen = world.NewNoiseGenerator(gameID, r.board)
		r.gens[gameID] = gen
	}

	sc := r.scoring
	if scoring != nil {
		sc = *scoring
	}
	s := NewSession(gameID, r.board, sc, gen, r.bus)
	if r.gateway != nil {
		gw := r.gateway
		s.SetChunkLoader(func(id model.ChunkID) []model.OverlayPoint {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			points, err := gw.LoadChunk(ctx, gameID, id)
			if err != nil {
				slog.Warn("chunk load failed, starting empty",
					"gameID", gameID, "cx", id.CX, "cy", id.CY, "error", err)
				return nil
			}
			return points
		})
	}
	r.sessions[gameID] = s

	ctx := r.ctx
	go func() {
		if err := s.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("session scheduler exited", "gameID", gameID, "error", err)
		}
	}()
	return s
}

// Retire stops a session's timers, persists its final snapshot and
// removes it from the registry.
func (r *Registry) Retire(ctx context.Context, gameID string) error {
	r.mu.Lock()
	s, ok := r.sessions[gameID]
	delete(r.sessions, gameID)
	delete(r.gens, gameID)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	s.Close()
	if err := s.Persist(ctx, r.gateway); err != nil {
		return fmt.Errorf("retiring %s: %w", gameID, err)
	}
	slog.Info("session retired", "gameID", gameID)
	return nil
}

// Sessions returns every running session.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// PersistAll flushes every dirty session, used by the periodic snapshot
// loop and on shutdown.
func (r *Registry) PersistAll(ctx context.Context) {
	for _, s := range r.Sessions() {
		if err := s.Persist(ctx, r.gateway); err != nil {
			slog.Warn("persist failed", "gameID", s.GameID(), "error", err)
		}
	}
}

// Shutdown stops all sessions after a final persistence pass.
func (r *Registry) Shutdown(ctx context.Context) {
	r.PersistAll(ctx)
	for _, s := range r.Sessions() {
		s.Close()
	}
}
