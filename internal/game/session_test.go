package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// safeRectGen is a deterministic generator for tests: cells inside the
// rectangle are clear, everything outside is a mine. The mines enclosing
// the rectangle bound every flood.
type safeRectGen struct {
	safe model.Rect
}

func (g safeRectGen) IsMine(x, y int) bool {
	return x < g.safe.MinX || x > g.safe.MaxX || y < g.safe.MinY || y > g.safe.MaxY
}

func (g safeRectGen) AdjacentCount(x, y int) int {
	count := 0
	for _, n := range model.Neighbors(x, y) {
		if g.IsMine(n.X, n.Y) {
			count++
		}
	}
	return count
}

// recorder captures every published envelope for assertions.
type recorder struct {
	mu   sync.Mutex
	envs []Envelope
}

func (r *recorder) Deliver(env Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
}

func (r *recorder) byKind(kind EventKind) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Envelope
	for _, e := range r.envs {
		if e.Event.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) last(kind EventKind) (Envelope, bool) {
	all := r.byKind(kind)
	if len(all) == 0 {
		return Envelope{}, false
	}
	return all[len(all)-1], true
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestSession(t *testing.T, safe model.Rect) (*Session, *recorder, *fakeClock) {
	t.Helper()
	board := model.DefaultBoardConfig()
	board.ChunkSize = 4
	bus := NewBus()
	rec := &recorder{}
	bus.Attach(rec)
	s := NewSession("test-game", board, model.DefaultScoringConfig(), safeRectGen{safe: safe}, bus)
	clk := &fakeClock{t: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)}
	s.now = clk.Now
	return s, rec, clk
}

func join(t *testing.T, s *Session, connID, username string) {
	t.Helper()
	if _, err := s.Join(connID, username); err != nil {
		t.Fatalf("Join(%s): %v", connID, err)
	}
}

func scoreOf(t *testing.T, s *Session, playerID string) int {
	t.Helper()
	for _, p := range s.Players() {
		if p.ID == playerID {
			return p.Score
		}
	}
	t.Fatalf("player %s not found", playerID)
	return 0
}

func TestSessionJoin(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})

	summary, err := s.Join("c1", "alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if summary.ID != "c1" || summary.Username != "alice" || summary.Score != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if joined := rec.byKind(EventPlayerJoined); len(joined) != 1 {
		t.Errorf("playerJoined events = %d; want 1", len(joined))
	}

	// Re-joining on the same connection is idempotent and silent.
	again, err := s.Join("c1", "ignored")
	if err != nil {
		t.Fatalf("second Join: %v", err)
	}
	if again.Username != "alice" {
		t.Errorf("second Join username = %s; want alice", again.Username)
	}
	if joined := rec.byKind(EventPlayerJoined); len(joined) != 1 {
		t.Errorf("playerJoined events after re-join = %d; want 1", len(joined))
	}

	// Empty usernames get a generated one.
	anon, err := s.Join("c2", "")
	if err != nil {
		t.Fatalf("Join c2: %v", err)
	}
	if anon.Username == "" {
		t.Error("empty username not generated")
	}
}

func TestSessionJoinRejectedAfterGameOver(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")
	s.EndGame("c1")

	if _, err := s.Join("c2", "bob"); !errors.Is(err, ErrGameOver) {
		t.Errorf("Join after game over = %v; want ErrGameOver", err)
	}
	if err := s.Reveal("c1", 1, 1); !errors.Is(err, ErrGameOver) {
		t.Errorf("Reveal after game over = %v; want ErrGameOver", err)
	}
	if over := rec.byKind(EventGameOver); len(over) != 1 {
		t.Errorf("gameOver events = %d; want 1", len(over))
	}

	// EndGame is idempotent.
	s.EndGame("c1")
	if over := rec.byKind(EventGameOver); len(over) != 1 {
		t.Error("second EndGame published another gameOver")
	}
}

func TestSessionRevealFloodScoresNumberedCells(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")
	if err := s.SubscribeChunk("c1", 0, 0); err != nil {
		t.Fatalf("SubscribeChunk: %v", err)
	}
	rec.reset()

	if err := s.Reveal("c1", 1, 1); err != nil {
		t.Fatalf("Reveal: %v", err)
	}

	// The safe 4x4 pocket floods entirely: 4 zero cells in the interior,
	// 12 numbered cells on the rim. Only numbered cells score.
	if got := scoreOf(t, s, "c1"); got != 12 {
		t.Errorf("score = %d; want 12", got)
	}
	env, ok := rec.last(EventScoreUpdate)
	if !ok {
		t.Fatal("no scoreUpdate published")
	}
	su := env.Event.(ScoreUpdate)
	if su.Delta != 12 || su.NewScore != 12 || su.Reason != ReasonReveal {
		t.Errorf("scoreUpdate = %+v", su)
	}

	tiles, ok := rec.last(EventTilesUpdate)
	if !ok {
		t.Fatal("no tilesUpdate published")
	}
	tu := tiles.Event.(TilesUpdate)
	if tu.ChunkID != (model.ChunkID{}) || len(tu.Cells) != 16 {
		t.Errorf("tilesUpdate chunk %+v with %d cells; want origin chunk, 16", tu.ChunkID, len(tu.Cells))
	}
	if len(tiles.Recipients) != 1 || tiles.Recipients[0] != "c1" {
		t.Errorf("tilesUpdate recipients = %v; want [c1]", tiles.Recipients)
	}

	// A second reveal of the same cell changes nothing.
	rec.reset()
	if err := s.Reveal("c1", 1, 1); err != nil {
		t.Fatalf("second Reveal: %v", err)
	}
	if got := scoreOf(t, s, "c1"); got != 12 {
		t.Errorf("score after repeat reveal = %d; want 12", got)
	}
	if _, ok := rec.last(EventScoreUpdate); ok {
		t.Error("repeat reveal published a scoreUpdate")
	}
}

func TestSessionCrossChunkScoresOriginOnly(t *testing.T) {
	// Safe strip spans chunks (0,0) and (1,0); both are watched so the
	// flood propagates eagerly, but only origin-chunk cells score.
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 7, MaxY: 3})
	join(t, s, "c1", "alice")
	if err := s.SubscribeChunk("c1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.SubscribeChunk("c1", 1, 0); err != nil {
		t.Fatal(err)
	}
	rec.reset()

	if err := s.Reveal("c1", 2, 2); err != nil {
		t.Fatalf("Reveal: %v", err)
	}

	// Origin chunk: 16 revealed, 6 zeros, 10 numbered.
	if got := scoreOf(t, s, "c1"); got != 10 {
		t.Errorf("score = %d; want 10 (origin chunk only)", got)
	}
	updates := rec.byKind(EventTilesUpdate)
	if len(updates) != 2 {
		t.Fatalf("tilesUpdate events = %d; want one per chunk", len(updates))
	}
	for _, env := range updates {
		tu := env.Event.(TilesUpdate)
		if len(tu.Cells) != 16 {
			t.Errorf("chunk %+v update carries %d cells; want 16", tu.ChunkID, len(tu.Cells))
		}
	}
}

func TestSessionSubscribeDrainsPendingFill(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 7, MaxY: 3})
	join(t, s, "c1", "alice")
	if err := s.SubscribeChunk("c1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Reveal("c1", 2, 2); err != nil {
		t.Fatal(err)
	}
	// Chunk (1,0) is unobserved: its fill is parked, not materialised.
	if cell := s.chunks.CellAt(4, 1); cell.Revealed {
		t.Fatal("unobserved chunk revealed eagerly")
	}
	rec.reset()

	if err := s.SubscribeChunk("c1", 1, 0); err != nil {
		t.Fatal(err)
	}

	env, ok := rec.last(EventTilesUpdate)
	if !ok {
		t.Fatal("subscription did not broadcast the drained fill")
	}
	tu := env.Event.(TilesUpdate)
	if tu.ChunkID != (model.ChunkID{CX: 1, CY: 0}) || len(tu.Cells) != 16 {
		t.Errorf("drained update = chunk %+v, %d cells; want (1,0), 16", tu.ChunkID, len(tu.Cells))
	}

	data, ok := rec.last(EventChunkData)
	if !ok {
		t.Fatal("no chunkData answer to the subscriber")
	}
	cd := data.Event.(ChunkData)
	if len(cd.Cells) != 16 {
		t.Errorf("chunkData carries %d cells; want the drained 16", len(cd.Cells))
	}
	if data.Scope != ScopeConn || len(data.Recipients) != 1 || data.Recipients[0] != "c1" {
		t.Errorf("chunkData routing = scope %v recipients %v; want conn c1", data.Scope, data.Recipients)
	}
}

func TestHiddenCellsMaskGeneratorFields(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")

	// Flagging a hidden mine must not leak its contents on the wire.
	if err := s.Flag("c1", -1, 0); err != nil {
		t.Fatal(err)
	}
	env, ok := rec.last(EventTileUpdate)
	if !ok {
		t.Fatal("no tileUpdate for the flag")
	}
	tu := env.Event.(TileUpdate)
	if !tu.Cell.Flagged || tu.Cell.Revealed {
		t.Fatalf("flag tileUpdate cell = %+v", tu.Cell)
	}
	if tu.Cell.IsMine || tu.Cell.AdjacentMines != 0 {
		t.Errorf("hidden cell leaks generator fields: %+v", tu.Cell)
	}

	// chunkData masks hidden cells the same way.
	rec.reset()
	if err := s.SubscribeChunk("c1", -1, 0); err != nil {
		t.Fatal(err)
	}
	data, ok := rec.last(EventChunkData)
	if !ok {
		t.Fatal("no chunkData for the subscription")
	}
	cd := data.Event.(ChunkData)
	if len(cd.Cells) != 1 {
		t.Fatalf("chunkData cells = %d; want the flagged mine only", len(cd.Cells))
	}
	if cell := cd.Cells[0]; cell.IsMine || cell.AdjacentMines != 0 || !cell.Flagged {
		t.Errorf("chunkData hidden cell = %+v", cell)
	}

	// Revealed cells keep their adjacency counts.
	if err := s.Reveal("c1", 1, 1); err != nil {
		t.Fatal(err)
	}
	rec.reset()
	if err := s.SubscribeChunk("c1", 0, 0); err != nil {
		t.Fatal(err)
	}
	data, ok = rec.last(EventChunkData)
	if !ok {
		t.Fatal("no chunkData for the revealed chunk")
	}
	numbered := 0
	for _, cell := range data.Event.(ChunkData).Cells {
		if cell.Revealed && cell.AdjacentMines > 0 {
			numbered++
		}
	}
	if numbered != 12 {
		t.Errorf("numbered revealed cells = %d; want 12", numbered)
	}
}

func TestSessionFlagRace(t *testing.T) {
	s, rec, clk := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")
	join(t, s, "c2", "bob")
	mine := model.Coord{X: -1, Y: 0}

	// First correct flag: 5 points, machine armed.
	if err := s.Flag("c1", mine.X, mine.Y); err != nil {
		t.Fatal(err)
	}
	if got := scoreOf(t, s, "c1"); got != 5 {
		t.Errorf("first contributor score = %d; want 5", got)
	}
	if s.sched.PendingCount() != 1 {
		t.Error("reveal deadline not scheduled")
	}

	// Bob's flag joins the pending reveal as second contributor; the
	// first flag stays in place.
	if err := s.Flag("c2", mine.X, mine.Y); err != nil {
		t.Fatal(err)
	}
	if got := scoreOf(t, s, "c2"); got != 3 {
		t.Errorf("second contributor score = %d; want 3", got)
	}
	if cell := s.chunks.CellAt(mine.X, mine.Y); !cell.Flagged {
		t.Error("second flag cleared the shared flag")
	}

	// Flagging again as an existing contributor earns nothing more.
	if err := s.Flag("c1", mine.X, mine.Y); err != nil {
		t.Fatal(err)
	}
	if got := scoreOf(t, s, "c1"); got != 5 {
		t.Errorf("score after re-flag by contributor = %d; want 5 still", got)
	}

	// The deadline reveals the mine with both contributors, in flag order.
	rec.reset()
	clk.Advance(4 * time.Second)
	s.onRevealDeadline(mine)

	env, ok := rec.last(EventMineRevealed)
	if !ok {
		t.Fatal("no mineRevealed published")
	}
	mr := env.Event.(MineRevealed)
	if len(mr.Contributors) != 2 {
		t.Fatalf("contributors = %d; want 2", len(mr.Contributors))
	}
	if mr.Contributors[0].PlayerID != "c1" || mr.Contributors[1].PlayerID != "c2" {
		t.Errorf("contributor order = %s, %s; want c1, c2", mr.Contributors[0].PlayerID, mr.Contributors[1].PlayerID)
	}
	if cell := s.chunks.CellAt(mine.X, mine.Y); !cell.Revealed || cell.Flagged {
		t.Errorf("mine cell after reveal = %+v; want revealed, unflagged", cell)
	}

	// The deadline is terminal: firing again is a no-op.
	rec.reset()
	s.onRevealDeadline(mine)
	if _, ok := rec.last(EventMineRevealed); ok {
		t.Error("second deadline fire published another mineRevealed")
	}
}

func TestSessionMineHitAndLockout(t *testing.T) {
	s, rec, clk := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 7})
	join(t, s, "c1", "alice")
	if err := s.SubscribeChunk("c1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Reveal("c1", 1, 1); err != nil {
		t.Fatal(err)
	}
	before := scoreOf(t, s, "c1")
	rec.reset()

	// Revealing a mine: penalty, reveal, lockout.
	if err := s.Reveal("c1", -1, 0); err != nil {
		t.Fatalf("mine reveal intent: %v", err)
	}
	want := before - 10
	if got := scoreOf(t, s, "c1"); got != want {
		t.Errorf("score after mine hit = %d; want %d", got, want)
	}
	env, ok := rec.last(EventScoreUpdate)
	if !ok {
		t.Fatal("no scoreUpdate for the mine hit")
	}
	if su := env.Event.(ScoreUpdate); su.Reason != ReasonMineHit || su.Delta != -10 {
		t.Errorf("scoreUpdate = %+v", su)
	}
	status, ok := rec.last(EventPlayerStatusUpdate)
	if !ok {
		t.Fatal("no playerStatusUpdate for the lockout")
	}
	psu := status.Event.(PlayerStatusUpdate)
	if psu.Status != model.StatusLockedOut || psu.LockedUntil == nil {
		t.Errorf("status update = %+v", psu)
	}
	if cell := s.chunks.CellAt(-1, 0); !cell.Revealed {
		t.Error("hit mine not revealed")
	}

	// Locked out: intents rejected, no state change.
	if err := s.Reveal("c1", 0, 4); !errors.Is(err, ErrLockedOut) {
		t.Errorf("Reveal while locked out = %v; want ErrLockedOut", err)
	}

	// After the lockout window the next intent reactivates the player.
	rec.reset()
	clk.Advance(6 * time.Second)
	if err := s.Flag("c1", 0, 5); err != nil {
		t.Fatalf("Flag after lockout expiry: %v", err)
	}
	reactivated, ok := rec.last(EventPlayerStatusUpdate)
	if !ok {
		t.Fatal("no reactivation status update")
	}
	if got := reactivated.Event.(PlayerStatusUpdate).Status; got != model.StatusActive {
		t.Errorf("status after expiry = %s; want %s", got, model.StatusActive)
	}
}

func TestSessionScoreFloorsAtZero(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")

	if err := s.Reveal("c1", -2, -2); err != nil {
		t.Fatal(err)
	}
	if got := scoreOf(t, s, "c1"); got != 0 {
		t.Errorf("score = %d; want 0 (floored)", got)
	}
	env, ok := rec.last(EventScoreUpdate)
	if !ok {
		t.Fatal("no scoreUpdate")
	}
	if su := env.Event.(ScoreUpdate); su.NewScore != 0 || su.Delta != 0 {
		t.Errorf("scoreUpdate = %+v; want new score 0, clamped delta 0", su)
	}
}

func TestSessionChord(t *testing.T) {
	s, _, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")

	// Block (1,0) with a flag so the flood leaves it hidden, reveal the
	// rest, then flag the three mines below (2,0) and clear the block.
	mustDo := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustDo(s.Flag("c1", 1, 0))
	mustDo(s.Reveal("c1", 2, 2))
	mustDo(s.Flag("c1", 1, -1))
	mustDo(s.Flag("c1", 2, -1))
	mustDo(s.Flag("c1", 3, -1))
	mustDo(s.Flag("c1", 1, 0)) // unflag the block

	if cell := s.chunks.CellAt(1, 0); cell.Revealed || cell.Flagged {
		t.Fatalf("setup: (1,0) = %+v; want hidden and unflagged", cell)
	}
	cell := s.chunks.CellAt(2, 0)
	if !cell.Revealed || cell.AdjacentMines != 3 {
		t.Fatalf("setup: (2,0) = %+v; want revealed number 3", cell)
	}
	before := scoreOf(t, s, "c1")

	// Three flags satisfy the 3: chord reveals the one hidden neighbour.
	mustDo(s.Chord("c1", 2, 0))
	if cell := s.chunks.CellAt(1, 0); !cell.Revealed {
		t.Error("chord did not reveal the hidden neighbour")
	}
	if got := scoreOf(t, s, "c1"); got != before+1 {
		t.Errorf("score after chord = %d; want %d", got, before+1)
	}

	// Chord on an unsatisfied number is a silent no-op.
	if err := s.Chord("c1", 0, 0); err != nil {
		t.Errorf("unsatisfied chord returned %v; want nil", err)
	}
	if got := scoreOf(t, s, "c1"); got != before+1 {
		t.Error("unsatisfied chord changed the score")
	}
}

func TestSessionChordHittingMine(t *testing.T) {
	s, _, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")

	mustDo := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	// A wrong flag on the safe (1,0) plus two correct mine flags satisfy
	// the 3 at (2,0); the remaining hidden neighbour (3,-1) is a mine.
	mustDo(s.Flag("c1", 1, 0))
	mustDo(s.Reveal("c1", 2, 2))
	mustDo(s.Flag("c1", 1, -1))
	mustDo(s.Flag("c1", 2, -1))

	mustDo(s.Chord("c1", 2, 0))

	if cell := s.chunks.CellAt(3, -1); !cell.Revealed {
		t.Error("chord did not reveal the hit mine")
	}
	for _, p := range s.Players() {
		if p.ID == "c1" && p.Status != model.StatusLockedOut {
			t.Errorf("player status after chord mine hit = %s; want %s", p.Status, model.StatusLockedOut)
		}
	}
}

func TestSessionDisconnectAndReconnect(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")
	if err := s.SubscribeChunk("c1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Flag("c1", 0, 0); err != nil {
		t.Fatal(err)
	}
	score := scoreOf(t, s, "c1")
	rec.reset()

	s.Disconnect("c1")
	env, ok := rec.last(EventPlayerStatusUpdate)
	if !ok {
		t.Fatal("no status update on disconnect")
	}
	if got := env.Event.(PlayerStatusUpdate).Status; got != model.StatusLockedOut {
		t.Errorf("status = %s; want %s", got, model.StatusLockedOut)
	}
	if subs := s.Subscribers(model.ChunkID{}); len(subs) != 0 {
		t.Errorf("subscriptions survive disconnect: %v", subs)
	}
	if conns := s.Connections(); len(conns) != 0 {
		t.Errorf("connections after disconnect: %v", conns)
	}

	// Reconnect binds a new connection to the same identity; the player
	// keeps score and acts again on the next intent.
	summary, err := s.Reconnect("c9", "c1")
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	if summary.Score != score {
		t.Errorf("score after reconnect = %d; want %d", summary.Score, score)
	}
	if err := s.Flag("c9", 0, 1); err != nil {
		t.Errorf("intent after reconnect = %v; want nil", err)
	}

	if _, err := s.Reconnect("c8", "ghost"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("Reconnect unknown player = %v; want ErrNotInGame", err)
	}
}

func TestSessionSetViewport(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")

	if err := s.SetViewport("c1", model.Rect{MinX: 0, MinY: 0, MaxX: 7, MaxY: 3}); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	for _, id := range []model.ChunkID{{CX: 0, CY: 0}, {CX: 1, CY: 0}} {
		if subs := s.Subscribers(id); len(subs) != 1 || subs[0] != "c1" {
			t.Errorf("Subscribers(%+v) = %v; want [c1]", id, subs)
		}
	}
	if data := rec.byKind(EventChunkData); len(data) != 2 {
		t.Errorf("chunkData answers = %d; want one per covered chunk", len(data))
	}

	// Shrinking the viewport drops the uncovered chunk.
	if err := s.SetViewport("c1", model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3}); err != nil {
		t.Fatal(err)
	}
	if subs := s.Subscribers(model.ChunkID{CX: 1, CY: 0}); len(subs) != 0 {
		t.Errorf("uncovered chunk still watched: %v", subs)
	}
	if subs := s.Subscribers(model.ChunkID{}); len(subs) != 1 {
		t.Errorf("covered chunk lost its watch: %v", subs)
	}

	if err := s.SetViewport("c1", model.Rect{MinX: 5, MinY: 0, MaxX: -5, MaxY: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("inverted viewport = %v; want ErrInvalidInput", err)
	}
	if err := s.SetViewport("ghost", model.Rect{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}); !errors.Is(err, ErrNotInGame) {
		t.Errorf("viewport for unknown conn = %v; want ErrNotInGame", err)
	}
}

func TestSessionLeave(t *testing.T) {
	s, rec, _ := newTestSession(t, model.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3})
	join(t, s, "c1", "alice")
	join(t, s, "c2", "bob")

	if empty := s.Leave("c1"); empty {
		t.Error("session reported empty with a player remaining")
	}
	env, ok := rec.last(EventPlayerLeft)
	if !ok {
		t.Fatal("no playerLeft published")
	}
	if pl := env.Event.(PlayerLeft); pl.PlayerID != "c1" || pl.Username != "alice" {
		t.Errorf("playerLeft = %+v", pl)
	}

	if empty := s.Leave("c2"); !empty {
		t.Error("session not reported empty after the last player left")
	}
}
