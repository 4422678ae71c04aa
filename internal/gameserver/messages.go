package gameserver

import (
	"encoding/json"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// clientMessage is the inbound JSON envelope: a message name plus its
// payload. Unknown names answer with an invalidInput error event.
type clientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// serverMessage is the outbound JSON envelope.
type serverMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Inbound intent payloads.

type createGamePayload struct {
	GameID   string `json:"gameId,omitempty"`
	Username string `json:"username,omitempty"`

	// Scoring stays raw so partial overrides can be unmarshalled onto a
	// copy of the default config instead of zeroing absent fields.
	Scoring json.RawMessage `json:"scoringConfigOverrides,omitempty"`
}

type joinGamePayload struct {
	GameID   string `json:"gameId"`
	Username string `json:"username,omitempty"`
}

type reconnectPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type tileActionPayload struct {
	GameID string `json:"gameId"`
	X      *int   `json:"x"`
	Y      *int   `json:"y"`
}

type chunkSubPayload struct {
	GameID string `json:"gameId"`
	CX     *int   `json:"cx"`
	CY     *int   `json:"cy"`
}

type viewportPayload struct {
	GameID   string     `json:"gameId"`
	Viewport model.Rect `json:"viewport"`
}

type leaderboardPayload struct {
	Category string `json:"category,omitempty"`
	Metric   string `json:"metric"`
	Limit    int    `json:"limit,omitempty"`
}

// Outbound response payloads.

type gameCreatedPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type gameJoinedPayload struct {
	GameID   string                `json:"gameId"`
	PlayerID string                `json:"playerId"`
	Players  []model.PlayerSummary `json:"players"`
}

type gameStatePayload struct {
	GameID   string                `json:"gameId"`
	PlayerID string                `json:"playerId"`
	Players  []model.PlayerSummary `json:"players"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
