package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
	"github.com/mvb0005/SweepTogether-sub000/internal/world"
)

// ChunkLoader pulls a persisted chunk overlay when a chunk is first
// touched after a restore. Best-effort: returning nil means "start empty".
type ChunkLoader func(id model.ChunkID) []model.OverlayPoint

// Session is one running game: its players, board state, scoring and the
// delayed mine-reveal state machines.
//
// The session mutex is the unit of serialisation. Every mutating path
// (reveal, flag, chord, join, leave, timer fires, viewport changes) holds
// it exclusively; snapshot reads copy what they return.
type Session struct {
	gameID  string
	board   model.BoardConfig
	scoring model.ScoringConfig

	bus   *Bus
	sched *Scheduler
	now   func() time.Time

	mu             sync.Mutex
	players        map[string]*model.Player
	conns          map[string]string // connID → playerID
	chunks         *world.Manager
	subs           *SubscriptionRouter
	mineReveals    map[model.Coord]*model.MineReveal
	pendingReveals map[model.Coord]struct{}
	gameOver       bool
	winner         string
	loader         ChunkLoader

	// metaGen counts metadata mutations, metaSaved the last generation
	// persisted. They differ while the metadata document is dirty.
	metaGen   uint64
	metaSaved uint64

	actions *ActionProcessor
}

// NewSession creates a fresh session around the given generator.
func NewSession(gameID string, board model.BoardConfig, scoring model.ScoringConfig, gen world.Generator, bus *Bus) *Session {
	s := &Session{
		gameID:         gameID,
		board:          board,
		scoring:        scoring,
		bus:            bus,
		sched:          NewScheduler(time.Duration(board.TimerTickMs) * time.Millisecond),
		now:            time.Now,
		players:        make(map[string]*model.Player),
		conns:          make(map[string]string),
		chunks:         world.NewManager(gameID, board, gen),
		subs:           NewSubscriptionRouter(),
		mineReveals:    make(map[model.Coord]*model.MineReveal),
		pendingReveals: make(map[model.Coord]struct{}),
		metaGen:        1,
	}
	s.actions = &ActionProcessor{session: s}
	return s
}

func (s *Session) GameID() string               { return s.gameID }
func (s *Session) Board() model.BoardConfig     { return s.board }
func (s *Session) Scoring() model.ScoringConfig { return s.scoring }

// SetChunkLoader installs the lazy overlay loader used after a restore.
func (s *Session) SetChunkLoader(l ChunkLoader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loader = l
}

// Run drives the session scheduler until the context ends.
func (s *Session) Run(ctx context.Context) error {
	return s.sched.Run(ctx)
}

// Close stops the scheduler and cancels all pending timers.
func (s *Session) Close() {
	s.sched.Stop()
}

// Join adds a player identified by the connection id. An empty username
// gets a generated one. Rejected once the game is over.
func (s *Session) Join(connID, username string) (model.PlayerSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return model.PlayerSummary{}, fmt.Errorf("join %s: %w", s.gameID, ErrGameOver)
	}
	if playerID, ok := s.conns[connID]; ok {
		if p, ok := s.players[playerID]; ok {
			return p.Summary(), nil
		}
	}
	if username == "" {
		username = RandomUsername()
	}
	p := model.NewPlayer(connID, username)
	s.players[connID] = p
	s.conns[connID] = connID
	s.metaGen++

	summary := p.Summary()
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: PlayerJoined{Player: summary}})
	slog.Info("player joined", "gameID", s.gameID, "playerID", connID, "username", username)
	return summary, nil
}

// Reconnect binds a new connection to an existing player. The player keeps
// identity and score; if the disconnect lockout expired they act again on
// their next intent.
func (s *Session) Reconnect(connID, playerID string) (model.PlayerSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return model.PlayerSummary{}, fmt.Errorf("reconnect %s to %s: %w", playerID, s.gameID, ErrNotInGame)
	}
	s.conns[connID] = playerID
	return p.Summary(), nil
}

// Leave removes the player behind the connection. Returns true when the
// session is now empty, so the operator can retire it.
func (s *Session) Leave(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerID, ok := s.conns[connID]
	if !ok {
		return len(s.players) == 0
	}
	delete(s.conns, connID)
	p := s.players[playerID]
	delete(s.players, playerID)
	s.releaseSubscriptions(connID)
	s.metaGen++

	if p != nil {
		s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: PlayerLeft{
			PlayerID: playerID,
			Username: p.Username(),
		}})
		slog.Info("player left", "gameID", s.gameID, "playerID", playerID)
	}
	return len(s.players) == 0
}

// Disconnect handles a dropped connection: the player transitions to
// LOCKED_OUT but keeps identity and score for reconnection.
func (s *Session) Disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerID, ok := s.conns[connID]
	if !ok {
		return
	}
	delete(s.conns, connID)
	s.releaseSubscriptions(connID)

	if p, ok := s.players[playerID]; ok {
		p.LockOut(s.now())
		s.metaGen++
		s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: PlayerStatusUpdate{
			PlayerID: playerID,
			Status:   model.StatusLockedOut,
		}})
	}
}

// Reveal processes a reveal intent at (x, y).
func (s *Session) Reveal(connID string, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.validateActor(connID)
	if err != nil {
		return err
	}
	return s.actions.reveal(p, x, y)
}

// Flag processes a flag-toggle intent at (x, y).
func (s *Session) Flag(connID string, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.validateActor(connID)
	if err != nil {
		return err
	}
	return s.actions.flag(p, x, y)
}

// Chord processes a chord-click intent at (x, y).
func (s *Session) Chord(connID string, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.validateActor(connID)
	if err != nil {
		return err
	}
	return s.actions.chord(p, x, y)
}

// SetViewport resolves a viewport change into chunk subscription changes.
// Newly covered chunks get their pending fills drained and a chunkData
// snapshot sent to the connection.
func (s *Session) SetViewport(connID string, rect model.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerID, ok := s.conns[connID]
	if !ok {
		return fmt.Errorf("viewport for %s: %w", connID, ErrNotInGame)
	}
	if !rect.Valid() {
		return fmt.Errorf("viewport %+v: %w", rect, ErrInvalidInput)
	}
	if p, ok := s.players[playerID]; ok {
		r := rect
		p.SetViewport(&r)
	}

	add, remove := s.subs.ViewportDiff(connID, rect.ChunkCover(s.board.ChunkSize))
	for _, id := range remove {
		if s.subs.Unsubscribe(connID, id) {
			s.chunks.Unsubscribe(id)
		}
	}
	for _, id := range add {
		s.subscribeChunkLocked(connID, id)
	}
	return nil
}

// SubscribeChunk subscribes the connection to one chunk and answers with
// its snapshot. Pending fills drain first, so the snapshot is complete.
func (s *Session) SubscribeChunk(connID string, cx, cy int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[connID]; !ok {
		return fmt.Errorf("subscribe %s: %w", connID, ErrNotInGame)
	}
	s.subscribeChunkLocked(connID, model.ChunkID{CX: cx, CY: cy})
	return nil
}

// UnsubscribeChunk removes the connection's watch on one chunk.
func (s *Session) UnsubscribeChunk(connID string, cx, cy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := model.ChunkID{CX: cx, CY: cy}
	if s.subs.Unsubscribe(connID, id) {
		s.chunks.Unsubscribe(id)
	}
}

// EndGame marks the session finished. Further joins and intents are
// rejected with GameOver; the outcome is broadcast and persisted.
func (s *Session) EndGame(winner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameOver {
		return
	}
	s.gameOver = true
	s.winner = winner
	s.metaGen++
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: GameOver{Winner: winner}})
	slog.Info("game over", "gameID", s.gameID, "winner", winner)
}

// Players returns a consistent copy of all player summaries.
func (s *Session) Players() []model.PlayerSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PlayerSummary, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subscribers resolves the connections watching a chunk, for fan-out.
func (s *Session) Subscribers(id model.ChunkID) []string {
	return s.subs.Subscribers(id)
}

// Connections returns every connection currently bound to the session.
func (s *Session) Connections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.conns))
	for c := range s.conns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// validateActor runs the shared intent validation: game not over, player
// known, lockout expired. An expired lockout reactivates the player.
// Caller holds the session mutex.
func (s *Session) validateActor(connID string) (*model.Player, error) {
	if s.gameOver {
		return nil, fmt.Errorf("game %s: %w", s.gameID, ErrGameOver)
	}
	playerID, ok := s.conns[connID]
	if !ok {
		return nil, fmt.Errorf("conn %s: %w", connID, ErrNotInGame)
	}
	p, ok := s.players[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotInGame)
	}
	if p.Status() == model.StatusLockedOut {
		now := s.now()
		if now.Before(p.LockedUntil()) {
			return nil, fmt.Errorf("player %s until %s: %w", playerID, p.LockedUntil().Format(time.RFC3339), ErrLockedOut)
		}
		p.Activate()
		s.sched.Cancel(lockoutTaskID(playerID))
		s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: PlayerStatusUpdate{
			PlayerID: playerID,
			Status:   model.StatusActive,
		}})
	}
	return p, nil
}

// flagMine drives the delayed mine-reveal state machine for a correct
// flag at cell. First flag creates the entry and schedules the reveal;
// later flags by other players append contributors. Re-flagging by an
// existing contributor is a no-op for the machine.
// Caller holds the session mutex.
func (s *Session) flagMine(p *model.Player, cell model.Cell, now time.Time) {
	coord := model.Coord{X: cell.X, Y: cell.Y}
	var contributor model.Contributor
	awarded := false

	if r, ok := s.mineReveals[coord]; ok {
		contributor, awarded = r.AddContributor(p.ID(), now, s.scoring)
	} else {
		delay := time.Duration(s.scoring.MineRevealDelayMs) * time.Millisecond
		r := model.NewMineReveal(cell.X, cell.Y, p.ID(), now, s.scoring, delay)
		s.mineReveals[coord] = r
		s.pendingReveals[coord] = struct{}{}
		s.sched.Schedule(revealTaskID(coord), r.RevealAt, func(time.Time) {
			s.onRevealDeadline(coord)
		})
		contributor = r.Contributors[0]
		awarded = true
	}
	s.metaGen++

	if awarded && contributor.Points != 0 {
		newScore, applied := p.AddPoints(contributor.Points)
		s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: ScoreUpdate{
			PlayerID: p.ID(),
			NewScore: newScore,
			Delta:    applied,
			Reason:   ReasonFlagMine,
		}})
	}
}

// onRevealDeadline fires when a mine's delay elapses. Re-checks the state
// machine under the lock: a reveal that already happened, or a finished
// game, makes this a no-op.
func (s *Session) onRevealDeadline(coord model.Coord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameOver {
		return
	}
	r, ok := s.mineReveals[coord]
	if !ok || r.Revealed {
		return
	}
	if _, pending := s.pendingReveals[coord]; !pending {
		return
	}
	r.Revealed = true
	delete(s.pendingReveals, coord)
	s.chunks.SetOverlay(coord.X, coord.Y, model.PointOverlay{Revealed: true})
	s.metaGen++

	chunkID := model.ChunkIDAt(coord.X, coord.Y, s.board.ChunkSize)
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeChunk, Chunk: chunkID, Event: MineRevealed{
		X:            coord.X,
		Y:            coord.Y,
		Contributors: append([]model.Contributor(nil), r.Contributors...),
	}})
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeChunk, Chunk: chunkID, Event: TileUpdate{
		Cell: s.chunks.CellAt(coord.X, coord.Y),
	}})
	slog.Debug("mine revealed", "gameID", s.gameID, "x", coord.X, "y", coord.Y,
		"contributors", len(r.Contributors))
}

// onLockoutExpiry reactivates a player whose mine-hit lockout elapsed.
func (s *Session) onLockoutExpiry(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return
	}
	if !p.LockoutExpired(s.now()) {
		return
	}
	p.Activate()
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeSession, Event: PlayerStatusUpdate{
		PlayerID: playerID,
		Status:   model.StatusActive,
	}})
}

// subscribeChunkLocked adds a watch, drains pending fills to fixpoint and
// answers the connection with the chunk snapshot. Draining happens before
// the snapshot so the snapshot includes the drained reveals.
func (s *Session) subscribeChunkLocked(connID string, id model.ChunkID) {
	s.ensureChunkLoaded(id)
	if s.subs.Subscribe(connID, id) {
		revealed := s.chunks.Subscribe(id)
		s.broadcastTiles(revealed)
	}
	s.publish(Envelope{GameID: s.gameID, Scope: ScopeConn, ConnID: connID, Event: ChunkData{
		ChunkID: id,
		Cells:   s.chunks.GetOrCreate(id).Snapshot(s.chunks.Generator()),
	}})
}

// ensureChunkLoaded pulls the persisted overlay the first time a chunk is
// touched after a restore. Load failures fall back to an empty chunk.
func (s *Session) ensureChunkLoaded(id model.ChunkID) {
	if s.loader == nil {
		return
	}
	if _, ok := s.chunks.Lookup(id); ok {
		return
	}
	if points := s.loader(id); len(points) > 0 {
		s.chunks.RestoreChunk(id, points)
	} else {
		s.chunks.GetOrCreate(id)
	}
}

// releaseSubscriptions drops every chunk watch of a connection and
// releases the chunk subscriber counts. Caller holds the session mutex.
func (s *Session) releaseSubscriptions(connID string) {
	for _, id := range s.subs.DropConn(connID) {
		s.chunks.Unsubscribe(id)
	}
}

// broadcastTiles publishes one tilesUpdate per chunk, in chunk order.
func (s *Session) broadcastTiles(byChunk map[model.ChunkID][]model.Cell) {
	ids := make([]model.ChunkID, 0, len(byChunk))
	for id := range byChunk {
		ids = append(ids, id)
	}
	sortChunkIDs(ids)
	for _, id := range ids {
		cells := byChunk[id]
		if len(cells) == 0 {
			continue
		}
		s.publish(Envelope{GameID: s.gameID, Scope: ScopeChunk, Chunk: id, Event: TilesUpdate{
			ChunkID: id,
			Cells:   cells,
		}})
	}
}

// publish resolves recipients and fans the event out. Caller holds the
// session mutex, so conns may be read directly; the subscription router
// carries its own lock.
func (s *Session) publish(env Envelope) {
	if s.bus == nil {
		return
	}
	switch env.Scope {
	case ScopeSession:
		env.Recipients = make([]string, 0, len(s.conns))
		for c := range s.conns {
			env.Recipients = append(env.Recipients, c)
		}
		sort.Strings(env.Recipients)
	case ScopeChunk:
		env.Recipients = s.subs.Subscribers(env.Chunk)
	case ScopeConn:
		env.Recipients = []string{env.ConnID}
	}
	s.bus.Publish(env)
}

func revealTaskID(c model.Coord) string {
	return fmt.Sprintf("reveal:%d:%d", c.X, c.Y)
}

func lockoutTaskID(playerID string) string {
	return "lockout:" + playerID
}
