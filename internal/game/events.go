package game

import (
	"sync"
	"time"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// EventKind names an outbound domain event.
type EventKind string

const (
	EventTileUpdate         EventKind = "tileUpdate"
	EventTilesUpdate        EventKind = "tilesUpdate"
	EventScoreUpdate        EventKind = "scoreUpdate"
	EventPlayerStatusUpdate EventKind = "playerStatusUpdate"
	EventMineRevealed       EventKind = "mineRevealed"
	EventPlayerJoined       EventKind = "playerJoined"
	EventPlayerLeft         EventKind = "playerLeft"
	EventGameOver           EventKind = "gameOver"
	EventChunkData          EventKind = "chunkData"
)

// ScoreReason tags a scoreUpdate with what earned (or cost) the points.
type ScoreReason string

const (
	ReasonReveal     ScoreReason = "reveal"
	ReasonFlagPlace  ScoreReason = "flagPlace"
	ReasonFlagRemove ScoreReason = "flagRemove"
	ReasonFlagMine   ScoreReason = "flagMine"
	ReasonMineHit    ScoreReason = "mineHit"
)

// Event is one typed outbound domain event.
type Event interface {
	Kind() EventKind
}

// TileUpdate: one cell changed. Recipients: subscribers of the chunk.
type TileUpdate struct {
	Cell model.Cell `json:"cell"`
}

// TilesUpdate: a batch of cells in one chunk changed, e.g. a flood.
type TilesUpdate struct {
	ChunkID model.ChunkID `json:"chunkId"`
	Cells   []model.Cell  `json:"cells"`
}

// ScoreUpdate: a player's score changed. Recipients: whole session.
type ScoreUpdate struct {
	PlayerID string      `json:"playerId"`
	NewScore int         `json:"newScore"`
	Delta    int         `json:"delta"`
	Reason   ScoreReason `json:"reason"`
}

// PlayerStatusUpdate: ACTIVE/LOCKED_OUT transition. Recipients: session.
type PlayerStatusUpdate struct {
	PlayerID    string             `json:"playerId"`
	Status      model.PlayerStatus `json:"status"`
	LockedUntil *time.Time         `json:"lockedUntil,omitempty"`
}

// MineRevealed: the delayed reveal fired. Recipients: chunk subscribers.
type MineRevealed struct {
	X            int                 `json:"x"`
	Y            int                 `json:"y"`
	Contributors []model.Contributor `json:"contributors"`
}

// PlayerJoined / PlayerLeft: membership changes. Recipients: session.
type PlayerJoined struct {
	Player model.PlayerSummary `json:"player"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// GameOver: the session ended. Recipients: session (and leaderboard).
type GameOver struct {
	Winner string `json:"winner,omitempty"`
}

// ChunkData: full tile snapshot of one chunk. Recipient: the requester.
type ChunkData struct {
	ChunkID model.ChunkID `json:"chunkId"`
	Cells   []model.Cell  `json:"cells"`
}

func (TileUpdate) Kind() EventKind         { return EventTileUpdate }
func (TilesUpdate) Kind() EventKind        { return EventTilesUpdate }
func (ScoreUpdate) Kind() EventKind        { return EventScoreUpdate }
func (PlayerStatusUpdate) Kind() EventKind { return EventPlayerStatusUpdate }
func (MineRevealed) Kind() EventKind       { return EventMineRevealed }
func (PlayerJoined) Kind() EventKind       { return EventPlayerJoined }
func (PlayerLeft) Kind() EventKind         { return EventPlayerLeft }
func (GameOver) Kind() EventKind           { return EventGameOver }
func (ChunkData) Kind() EventKind          { return EventChunkData }

// Scope selects the recipients of an envelope.
type Scope int

const (
	// ScopeSession: every connection in the session.
	ScopeSession Scope = iota
	// ScopeChunk: every subscriber of Envelope.Chunk.
	ScopeChunk
	// ScopeConn: a single connection (chunkData responses).
	ScopeConn
)

// Envelope pairs an event with its routing information. Recipients is
// resolved by the publishing session while it still holds its lease, so
// sinks never have to reach back into session state.
type Envelope struct {
	GameID     string
	Scope      Scope
	Chunk      model.ChunkID
	ConnID     string
	Recipients []string
	Event      Event
}

// Sink receives published envelopes. The transport adapter resolves
// recipients from the scope; the leaderboard filters by event kind.
// Deliver must not block: slow consumers buffer or drop on their side.
type Sink interface {
	Deliver(Envelope)
}

// Bus is the typed dispatch of outbound domain events.
type Bus struct {
	mu    sync.RWMutex
	sinks []Sink
}

func NewBus() *Bus {
	return &Bus{}
}

// Attach registers a sink for all subsequent publishes.
func (b *Bus) Attach(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Publish fans the envelope out to every attached sink, in attach order.
func (b *Bus) Publish(env Envelope) {
	b.mu.RLock()
	sinks := b.sinks
	b.mu.RUnlock()
	for _, s := range sinks {
		s.Deliver(env)
	}
}
