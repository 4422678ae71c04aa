package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mvb0005/SweepTogether-sub000/internal/config"
	"github.com/mvb0005/SweepTogether-sub000/internal/game"
	"github.com/mvb0005/SweepTogether-sub000/internal/leaderboard"
	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// Server is the websocket transport adapter: it binds client message
// names to the session core and fans bus events out to connections.
type Server struct {
	cfg      config.Server
	registry *game.Registry
	board    *leaderboard.Board
	upgrader websocket.Upgrader
	started  time.Time

	mu      sync.RWMutex
	clients map[string]*Client

	httpSrv *http.Server
}

// NewServer creates the transport adapter. Attach it to the update bus so
// it receives domain events.
func NewServer(cfg config.Server, registry *game.Registry, board *leaderboard.Board) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		board:    board,
		started:  time.Now(),
		clients:  make(map[string]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Views are served elsewhere; accept any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	return s
}

// Run serves websocket and health endpoints until the context ends, then
// shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("transport listening", "addr", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down transport: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving transport: %w", err)
		}
		return nil
	}
}

// Deliver implements game.Sink: marshal the event once and enqueue it on
// every recipient connection.
func (s *Server) Deliver(env game.Envelope) {
	if len(env.Recipients) == 0 {
		return
	}
	data, err := json.Marshal(serverMessage{Type: string(env.Event.Kind()), Payload: env.Event})
	if err != nil {
		slog.Error("marshalling event", "kind", env.Event.Kind(), "error", err)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, connID := range env.Recipients {
		if c, ok := s.clients[connID]; ok {
			c.enqueue(data)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := newClient(uuid.NewString(), conn, s)
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	slog.Debug("connection opened", "connID", c.id, "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"uptimeSeconds": int(time.Since(s.started).Seconds()),
	})
}

// onDisconnect runs when a connection's read pump exits.
func (s *Server) onDisconnect(c *Client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	close(c.send)

	if c.gameID != "" {
		if sess, err := s.registry.Get(c.gameID); err == nil {
			sess.Disconnect(c.id)
		}
	}
	slog.Debug("connection closed", "connID", c.id)
}

// handleMessage dispatches one inbound intent.
func (s *Server) handleMessage(c *Client, msg clientMessage) {
	switch msg.Type {
	case "createGame":
		s.handleCreateGame(c, msg.Payload)
	case "joinGame":
		s.handleJoinGame(c, msg.Payload)
	case "reconnect":
		s.handleReconnect(c, msg.Payload)
	case "revealTile":
		s.handleTileAction(c, msg.Payload, func(sess *game.Session, x, y int) error {
			return sess.Reveal(c.id, x, y)
		})
	case "flagTile":
		s.handleTileAction(c, msg.Payload, func(sess *game.Session, x, y int) error {
			return sess.Flag(c.id, x, y)
		})
	case "chordClick":
		s.handleTileAction(c, msg.Payload, func(sess *game.Session, x, y int) error {
			return sess.Chord(c.id, x, y)
		})
	case "subscribeToChunk":
		s.handleChunkSub(c, msg.Payload, true)
	case "unsubscribeFromChunk":
		s.handleChunkSub(c, msg.Payload, false)
	case "updateViewport":
		s.handleViewport(c, msg.Payload)
	case "requestLeaderboard":
		s.handleLeaderboard(c, msg.Payload)
	default:
		c.sendError("invalidInput", "unknown message type "+msg.Type)
	}
}

func (s *Server) handleCreateGame(c *Client, raw json.RawMessage) {
	var p createGamePayload
	if raw != nil {
		if err := json.Unmarshal(raw, &p); err != nil {
			c.sendError("invalidInput", "malformed createGame payload")
			return
		}
	}
	var scoring *model.ScoringConfig
	if len(p.Scoring) > 0 {
		sc := s.registry.Scoring()
		if err := json.Unmarshal(p.Scoring, &sc); err != nil {
			c.sendError("invalidInput", "malformed scoringConfigOverrides")
			return
		}
		scoring = &sc
	}
	sess, err := s.registry.Create(p.GameID, scoring)
	if err != nil {
		s.replyError(c, err)
		return
	}
	if _, err := sess.Join(c.id, p.Username); err != nil {
		s.replyError(c, err)
		return
	}
	c.gameID = sess.GameID()
	c.sendMessage("gameCreated", gameCreatedPayload{GameID: sess.GameID(), PlayerID: c.id})
}

func (s *Server) handleJoinGame(c *Client, raw json.RawMessage) {
	var p joinGamePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.GameID == "" {
		c.sendError("invalidInput", "malformed joinGame payload")
		return
	}
	sess, _, err := s.registry.JoinOrCreate(p.GameID)
	if err != nil {
		s.replyError(c, err)
		return
	}
	if _, err := sess.Join(c.id, p.Username); err != nil {
		s.replyError(c, err)
		return
	}
	c.gameID = sess.GameID()
	c.sendMessage("gameJoined", gameJoinedPayload{
		GameID:   sess.GameID(),
		PlayerID: c.id,
		Players:  sess.Players(),
	})
}

func (s *Server) handleReconnect(c *Client, raw json.RawMessage) {
	var p reconnectPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.GameID == "" || p.PlayerID == "" {
		c.sendError("invalidInput", "malformed reconnect payload")
		return
	}
	sess, err := s.registry.Get(p.GameID)
	if err != nil {
		s.replyError(c, err)
		return
	}
	if _, err := sess.Reconnect(c.id, p.PlayerID); err != nil {
		s.replyError(c, err)
		return
	}
	c.gameID = sess.GameID()
	c.sendMessage("gameState", gameStatePayload{
		GameID:   sess.GameID(),
		PlayerID: p.PlayerID,
		Players:  sess.Players(),
	})
}

func (s *Server) handleTileAction(c *Client, raw json.RawMessage, action func(*game.Session, int, int) error) {
	var p tileActionPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.X == nil || p.Y == nil {
		c.sendError("invalidInput", "tile action needs integer x and y")
		return
	}
	sess, err := s.registry.Get(p.GameID)
	if err != nil {
		s.replyError(c, err)
		return
	}
	if err := action(sess, *p.X, *p.Y); err != nil {
		s.replyError(c, err)
	}
}

func (s *Server) handleChunkSub(c *Client, raw json.RawMessage, subscribe bool) {
	var p chunkSubPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.CX == nil || p.CY == nil {
		c.sendError("invalidInput", "chunk subscription needs integer cx and cy")
		return
	}
	sess, err := s.registry.Get(p.GameID)
	if err != nil {
		s.replyError(c, err)
		return
	}
	if subscribe {
		if err := sess.SubscribeChunk(c.id, *p.CX, *p.CY); err != nil {
			s.replyError(c, err)
		}
		return
	}
	sess.UnsubscribeChunk(c.id, *p.CX, *p.CY)
}

func (s *Server) handleViewport(c *Client, raw json.RawMessage) {
	var p viewportPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("invalidInput", "malformed viewport payload")
		return
	}
	sess, err := s.registry.Get(p.GameID)
	if err != nil {
		s.replyError(c, err)
		return
	}
	if err := sess.SetViewport(c.id, p.Viewport); err != nil {
		s.replyError(c, err)
	}
}

func (s *Server) handleLeaderboard(c *Client, raw json.RawMessage) {
	var p leaderboardPayload
	if raw != nil {
		if err := json.Unmarshal(raw, &p); err != nil {
			c.sendError("invalidInput", "malformed leaderboard payload")
			return
		}
	}
	entries := s.board.Top(leaderboard.Metric(p.Metric), p.Limit)
	c.sendMessage("leaderboard", map[string]any{
		"metric":  p.Metric,
		"entries": entries,
	})
}

// replyError maps a core error to its wire kind for the connection.
func (s *Server) replyError(c *Client, err error) {
	kind := game.ErrorKind(err)
	if kind == "internal" {
		slog.Error("intent failed", "connID", c.id, "error", err)
		c.sendError(kind, "internal error")
		return
	}
	c.sendError(kind, err.Error())
}
